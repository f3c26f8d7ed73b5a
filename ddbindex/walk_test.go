package ddbindex

import (
	"path/filepath"
	"testing"

	"github.com/dronedb/ddbcore/ddberrors"
)

func TestGetIndexPathListExpandsDirectoryAndSynthesizesAncestors(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/b/c.txt", "x")

	list, err := getIndexPathList(root, []string{filepath.Join(root, "a", "b", "c.txt")}, -1)
	if err != nil {
		t.Fatalf("getIndexPathList: %v", err)
	}

	want := map[string]bool{
		filepath.Join(root, "a", "b", "c.txt"): true,
		filepath.Join(root, "a"):               true,
		filepath.Join(root, "a", "b"):          true,
	}
	if len(list) != len(want) {
		t.Fatalf("getIndexPathList = %v, want exactly the file plus its two ancestors", list)
	}
	for _, p := range list {
		if !want[p] {
			t.Fatalf("unexpected path %q in result", p)
		}
	}

	// Synthesized ancestors are appended after the collected inputs and are
	// ordered shallowest-first among themselves.
	indexOf := func(p string) int {
		for i, v := range list {
			if v == p {
				return i
			}
		}
		return -1
	}
	if indexOf(filepath.Join(root, "a")) > indexOf(filepath.Join(root, "a", "b")) {
		t.Fatal("expected a/ to be synthesized before a/b/")
	}
	if indexOf(filepath.Join(root, "a", "b", "c.txt")) > indexOf(filepath.Join(root, "a")) {
		t.Fatal("expected the synthesized ancestors to be appended after a/b/c.txt")
	}
}

func TestGetIndexPathListWalksDirectoryRecursively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "dir/one.txt", "1")
	writeFile(t, root, "dir/sub/two.txt", "2")

	list, err := getIndexPathList(root, []string{filepath.Join(root, "dir")}, -1)
	if err != nil {
		t.Fatalf("getIndexPathList: %v", err)
	}

	seen := map[string]bool{}
	for _, p := range list {
		seen[p] = true
	}
	for _, want := range []string{"dir", "dir/one.txt", "dir/sub", "dir/sub/two.txt"} {
		if !seen[filepath.Join(root, want)] {
			t.Fatalf("expected %q in result, got %v", want, list)
		}
	}
}

func TestGetIndexPathListDeduplicatesOverlappingInputs(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "dir/one.txt", "1")

	list, err := getIndexPathList(root, []string{filepath.Join(root, "dir"), path}, -1)
	if err != nil {
		t.Fatalf("getIndexPathList: %v", err)
	}
	count := 0
	for _, p := range list {
		if p == path {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected %q to appear exactly once, appeared %d times", path, count)
	}
}

func TestGetIndexPathListRejectsPathOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	if _, err := getIndexPathList(root, []string{outside}, -1); !ddberrors.Is(err, ddberrors.ErrPathOutsideRoot) {
		t.Fatalf("expected ErrPathOutsideRoot, got %v", err)
	}
}

func TestGetIndexPathListSilentlyDropsMissingInput(t *testing.T) {
	root := t.TempDir()

	list, err := getIndexPathList(root, []string{filepath.Join(root, "missing.txt")}, -1)
	if err != nil {
		t.Fatalf("getIndexPathList: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected a missing input to be dropped silently, got %v", list)
	}
}

func TestGetIndexPathListHonorsMaxRecursionDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "dir/a/b/deep.txt", "x")

	list, err := getIndexPathList(root, []string{filepath.Join(root, "dir")}, 1)
	if err != nil {
		t.Fatalf("getIndexPathList: %v", err)
	}
	for _, p := range list {
		if filepath.Base(p) == "deep.txt" {
			t.Fatalf("expected deep.txt to be excluded by maxRecursionDepth=1, got %v", list)
		}
	}
}
