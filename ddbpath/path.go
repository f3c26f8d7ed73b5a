// Package ddbpath implements the relative/absolute path algebra, depth
// accounting, containment checks, mtime access, and safe removal used by
// the rest of the index engine. All stored paths use forward slashes
// regardless of host OS, per §6.
package ddbpath

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dronedb/ddbcore/ddberrors"
)

// MarkerDir is the name of the working-tree marker directory.
const MarkerDir = ".ddb"

// DatabaseFile is the SQLite file name inside MarkerDir.
const DatabaseFile = "dbase.sqlite"

// BuildDir is the build-artifact cache subtree inside MarkerDir.
const BuildDir = "build"

// ToSlash normalizes an OS path to forward slashes.
func ToSlash(p string) string {
	return filepath.ToSlash(p)
}

// HasBackslashSegment reports whether any path segment (split on '/')
// contains a literal backslash — the signature of a corrupt entry carried
// over from a foreign-OS archive, per §4.3 step 1 and §7.
func HasBackslashSegment(relPath string) bool {
	for _, seg := range strings.Split(relPath, "/") {
		if strings.Contains(seg, "\\") {
			return true
		}
	}
	return false
}

// Rel computes the forward-slash relative path of target under root.
// Returns ddberrors.ErrPathOutsideRoot if target is not contained in root.
func Rel(root, target string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", ddberrors.New(ddberrors.KindFilesystem, "rel", target, err)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", ddberrors.New(ddberrors.KindFilesystem, "rel", target, err)
	}

	rel, err := filepath.Rel(absRoot, absTarget)
	if err != nil {
		return "", ddberrors.New(ddberrors.KindFilesystem, "rel", target, err)
	}

	rel = ToSlash(rel)
	if rel == "." {
		return "", nil
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", ddberrors.ErrPathOutsideRoot
	}

	return strings.TrimSuffix(rel, "/"), nil
}

// IsWithin reports whether target is root itself or a descendant of root.
func IsWithin(root, target string) bool {
	rel, err := Rel(root, target)
	if err != nil {
		return false
	}
	return rel == "" || !strings.HasPrefix(rel, "..")
}

// Depth returns the count of '/' separators in a relative path, per the
// Entry.depth invariant.
func Depth(relPath string) int {
	if relPath == "" {
		return 0
	}
	return strings.Count(relPath, "/")
}

// Dir returns the parent of a forward-slash relative path, or "" if relPath
// has no parent (it is a root-level entry).
func Dir(relPath string) string {
	idx := strings.LastIndex(relPath, "/")
	if idx < 0 {
		return ""
	}
	return relPath[:idx]
}

// Base returns the final path component.
func Base(relPath string) string {
	idx := strings.LastIndex(relPath, "/")
	if idx < 0 {
		return relPath
	}
	return relPath[idx+1:]
}

// Join joins a base directory and a relative path using forward slashes,
// mirroring filepath.Join but guaranteeing slash output regardless of GOOS.
func Join(elems ...string) string {
	cleaned := make([]string, 0, len(elems))
	for _, e := range elems {
		if e != "" {
			cleaned = append(cleaned, e)
		}
	}
	return strings.Join(cleaned, "/")
}

// IsMarkerName reports whether a path component is the working-tree marker.
func IsMarkerName(name string) bool {
	return name == MarkerDir
}

// Mtime reads a file's modification time as seconds since epoch.
func Mtime(fullPath string) (int64, error) {
	info, err := os.Stat(fullPath)
	if err != nil {
		return 0, ddberrors.New(ddberrors.KindFilesystem, "stat", fullPath, err)
	}
	return info.ModTime().Unix(), nil
}

// SetMtime sets a file's modification (and access) time from seconds since
// epoch. Used by tests exercising checkUpdate's mtime-first comparison.
func SetMtime(fullPath string, seconds int64) error {
	t := time.Unix(seconds, 0)
	if err := os.Chtimes(fullPath, t, t); err != nil {
		return ddberrors.New(ddberrors.KindFilesystem, "chtimes", fullPath, err)
	}
	return nil
}

// SafeRemove deletes fullPath (file or directory tree) but refuses to
// operate unless fullPath is contained in root — guards against a
// mis-resolved path from ever truncating something outside the tree.
func SafeRemove(root, fullPath string) error {
	if !IsWithin(root, fullPath) {
		return ddberrors.New(ddberrors.KindFilesystem, "remove", fullPath, ddberrors.ErrPathOutsideRoot)
	}
	if err := os.RemoveAll(fullPath); err != nil {
		return ddberrors.New(ddberrors.KindFilesystem, "remove", fullPath, err)
	}
	return nil
}

// Exists reports whether fullPath exists on disk (any type).
func Exists(fullPath string) bool {
	_, err := os.Lstat(fullPath)
	return err == nil
}

// IsDir reports whether fullPath exists and is a directory.
func IsDir(fullPath string) bool {
	info, err := os.Stat(fullPath)
	return err == nil && info.IsDir()
}
