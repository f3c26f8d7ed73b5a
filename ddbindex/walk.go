package ddbindex

import (
	"path/filepath"
	"sort"

	"github.com/dronedb/ddbcore/ddberrors"
	"github.com/dronedb/ddbcore/ddbpath"
)

// getIndexPathList expands a set of input paths against the working root,
// per §4.5: every input must be contained in the root; directories are
// recursively walked (the .ddb marker and, on Windows, hidden/system files
// are pruned by ddbpath.Walk); every ancestor directory up to the root is
// materialized as a synthetic entry appended after the depth-first
// traversal results, per §5's ordering guarantee.
func getIndexPathList(root string, inputs []string, maxRecursionDepth int) ([]string, error) {
	seen := make(map[string]bool)
	var collected []string

	add := func(fullPath string) {
		if !seen[fullPath] {
			seen[fullPath] = true
			collected = append(collected, fullPath)
		}
	}

	for _, input := range inputs {
		fullPath, err := filepath.Abs(input)
		if err != nil {
			return nil, ddberrors.New(ddberrors.KindFilesystem, "get-index-path-list", input, err)
		}

		if !ddbpath.IsWithin(root, fullPath) {
			return nil, ddberrors.New(ddberrors.KindFilesystem, "get-index-path-list", input, ddberrors.ErrPathOutsideRoot)
		}

		if ddbpath.IsDir(fullPath) {
			add(fullPath)
			err := ddbpath.Walk(fullPath, maxRecursionDepth, func(frame *ddbpath.Frame) error {
				add(frame.FullPath)
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if ddbpath.Exists(fullPath) {
			add(fullPath)
		}
		// Nonexistent inputs are silently dropped here; checkUpdate/add
		// treats a missing-but-previously-indexed path as Deleted via sync,
		// not add.
	}

	ancestors := missingAncestors(root, collected, seen)
	collected = append(collected, ancestors...)

	return collected, nil
}

// missingAncestors computes the full paths of every ancestor directory
// (up to, but excluding, root) of the collected paths that is not already
// present in the collected set, ordered shallowest-first so a synthesized
// parent always precedes its synthesized child directory.
func missingAncestors(root string, collected []string, seen map[string]bool) []string {
	need := make(map[string]bool)

	for _, fullPath := range collected {
		relPath, err := ddbpath.Rel(root, fullPath)
		if err != nil {
			continue
		}
		for dir := ddbpath.Dir(relPath); dir != ""; dir = ddbpath.Dir(dir) {
			ancestorFull := filepath.Join(root, dir)
			if seen[ancestorFull] || need[ancestorFull] {
				break
			}
			need[ancestorFull] = true
		}
	}

	out := make([]string, 0, len(need))
	for p := range need {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, _ := ddbpath.Rel(root, out[i])
		rj, _ := ddbpath.Rel(root, out[j])
		return ddbpath.Depth(ri) < ddbpath.Depth(rj) || (ddbpath.Depth(ri) == ddbpath.Depth(rj) && ri < rj)
	})
	return out
}
