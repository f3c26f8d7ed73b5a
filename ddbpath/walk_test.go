package ddbpath

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func buildWalkTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dirs := []string{"a", "a/b", filepath.Join(MarkerDir)}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatalf("MkdirAll(%s): %v", d, err)
		}
	}
	files := []string{"a/1.txt", "a/b/2.txt", "top.txt", filepath.Join(MarkerDir, "dbase.sqlite")}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(root, f), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", f, err)
		}
	}
	return root
}

func TestWalkVisitsDepthFirstInLexicographicOrder(t *testing.T) {
	root := buildWalkTree(t)

	var visited []string
	err := Walk(root, -1, func(frame *Frame) error {
		visited = append(visited, frame.RelPath)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	want := []string{"a", "a/1.txt", "a/b", "a/b/2.txt", "top.txt"}
	if !reflect.DeepEqual(visited, want) {
		t.Fatalf("visited = %v, want %v", visited, want)
	}
}

func TestWalkSkipsMarkerDirectory(t *testing.T) {
	root := buildWalkTree(t)

	err := Walk(root, -1, func(frame *Frame) error {
		if frame.RelPath == MarkerDir || frame.Depth == 0 && frame.FullPath == filepath.Join(root, MarkerDir) {
			t.Fatalf("marker directory should never be visited: %+v", frame)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
}

func TestWalkHonorsMaxDepth(t *testing.T) {
	root := buildWalkTree(t)

	var visited []string
	err := Walk(root, 1, func(frame *Frame) error {
		visited = append(visited, frame.RelPath)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	for _, p := range visited {
		if Depth(p) > 1 {
			t.Fatalf("visited %q at depth %d, maxDepth was 1", p, Depth(p))
		}
	}
	for _, want := range []string{"a", "top.txt"} {
		found := false
		for _, v := range visited {
			if v == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected %q to be visited within maxDepth 1, visited=%v", want, visited)
		}
	}
}

func TestWalkPruneStopsDescentIntoSubtree(t *testing.T) {
	root := buildWalkTree(t)

	var visited []string
	err := Walk(root, -1, func(frame *Frame) error {
		visited = append(visited, frame.RelPath)
		if frame.RelPath == "a" {
			frame.Prune()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	for _, v := range visited {
		if v == "a/1.txt" || v == "a/b" || v == "a/b/2.txt" {
			t.Fatalf("expected descent into a/ to be pruned, but visited %q", v)
		}
	}
	if len(visited) != 2 {
		t.Fatalf("visited = %v, want exactly [a top.txt]", visited)
	}
}

func TestWalkPropagatesCallbackError(t *testing.T) {
	root := buildWalkTree(t)
	sentinel := os.ErrInvalid

	err := Walk(root, -1, func(frame *Frame) error {
		return sentinel
	})
	if err != sentinel {
		t.Fatalf("Walk error = %v, want the sentinel to propagate unchanged", err)
	}
}

func TestWalkReturnsFilesystemErrorForMissingRoot(t *testing.T) {
	if err := Walk(filepath.Join(t.TempDir(), "does-not-exist"), -1, func(*Frame) error { return nil }); err == nil {
		t.Fatal("expected an error for a missing root directory")
	}
}
