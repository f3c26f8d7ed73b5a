package ddbpath

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/dronedb/ddbcore/ddberrors"
)

// Frame describes the current entry visited by Walk.
type Frame struct {
	FullPath string
	RelPath  string
	Depth    int
	IsDir    bool

	pruned bool
}

// Prune marks the current frame's subtree as excluded from further
// traversal. Calling it on a non-directory frame is a no-op. Walk itself
// skips the .ddb marker, Windows hidden/system files, and directories
// beyond maxDepth without calling fn for them, so callers need Prune only
// for exclusions of their own.
func (f *Frame) Prune() {
	f.pruned = true
}

// WalkFunc is invoked once per visited entry, depth-first, directories
// before their children. A non-nil error aborts the walk.
type WalkFunc func(frame *Frame) error

// Walk performs an explicit depth-first traversal of root, invoking fn for
// root's children (not for root itself). maxDepth caps recursion; a
// negative maxDepth means unlimited. Siblings are visited in
// lexicographic order for deterministic processing, per §5's ordering
// guarantee.
func Walk(root string, maxDepth int, fn WalkFunc) error {
	return walkDir(root, root, 0, maxDepth, fn)
}

func walkDir(root, dir string, depth int, maxDepth int, fn WalkFunc) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ddberrors.New(ddberrors.KindFilesystem, "walk", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, ent := range entries {
		fullPath := filepath.Join(dir, ent.Name())

		relPath, err := Rel(root, fullPath)
		if err != nil {
			continue
		}

		frame := &Frame{
			FullPath: fullPath,
			RelPath:  relPath,
			Depth:    Depth(relPath),
			IsDir:    ent.IsDir(),
		}

		if IsMarkerName(ent.Name()) {
			continue
		}
		if IsHiddenOrSystem(fullPath) {
			continue
		}
		if maxDepth >= 0 && frame.Depth > maxDepth {
			continue
		}

		if err := fn(frame); err != nil {
			return err
		}

		if ent.IsDir() && !frame.pruned {
			if err := walkDir(root, fullPath, depth+1, maxDepth, fn); err != nil {
				return err
			}
		}
	}

	return nil
}
