package ddbpath

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dronedb/ddbcore/ddberrors"
)

func TestHasBackslashSegment(t *testing.T) {
	cases := map[string]bool{
		"a/b/c":        false,
		"a\\b":         true,
		"folder/a\\b":  true,
		"":             false,
	}
	for in, want := range cases {
		if got := HasBackslashSegment(in); got != want {
			t.Errorf("HasBackslashSegment(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRel(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	rel, err := Rel(root, sub)
	if err != nil {
		t.Fatalf("Rel: %v", err)
	}
	if rel != "a/b" {
		t.Fatalf("Rel = %q, want %q", rel, "a/b")
	}

	rel, err = Rel(root, root)
	if err != nil {
		t.Fatalf("Rel(root, root): %v", err)
	}
	if rel != "" {
		t.Fatalf("Rel(root, root) = %q, want empty", rel)
	}
}

func TestRelRejectsOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	if _, err := Rel(root, outside); !ddberrors.Is(err, ddberrors.ErrPathOutsideRoot) {
		t.Fatalf("expected ErrPathOutsideRoot, got %v", err)
	}
	if IsWithin(root, outside) {
		t.Fatal("outside directory should not be within root")
	}
}

func TestDirAndBase(t *testing.T) {
	if got := Dir("a/b/c"); got != "a/b" {
		t.Fatalf("Dir = %q, want a/b", got)
	}
	if got := Dir("a"); got != "" {
		t.Fatalf("Dir(a) = %q, want empty", got)
	}
	if got := Base("a/b/c"); got != "c" {
		t.Fatalf("Base = %q, want c", got)
	}
	if got := Base("a"); got != "a" {
		t.Fatalf("Base(a) = %q, want a", got)
	}
}

func TestDepth(t *testing.T) {
	cases := map[string]int{
		"":        0,
		"a":       0,
		"a/b":     1,
		"a/b/c":   2,
	}
	for in, want := range cases {
		if got := Depth(in); got != want {
			t.Errorf("Depth(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestJoin(t *testing.T) {
	if got := Join("a", "", "b", "c"); got != "a/b/c" {
		t.Fatalf("Join = %q, want a/b/c", got)
	}
}

func TestMtimeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	want := time.Now().Add(-48 * time.Hour).Unix()
	if err := SetMtime(path, want); err != nil {
		t.Fatalf("SetMtime: %v", err)
	}
	got, err := Mtime(path)
	if err != nil {
		t.Fatalf("Mtime: %v", err)
	}
	if got != want {
		t.Fatalf("Mtime = %d, want %d", got, want)
	}
}

func TestSafeRemoveRejectsOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	target := filepath.Join(outside, "f.txt")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := SafeRemove(root, target); err == nil {
		t.Fatal("expected SafeRemove to refuse a path outside root")
	}
	if !Exists(target) {
		t.Fatal("file outside root should not have been removed")
	}
}

func TestSafeRemoveWithinRoot(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "f.txt")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := SafeRemove(root, target); err != nil {
		t.Fatalf("SafeRemove: %v", err)
	}
	if Exists(target) {
		t.Fatal("file within root should have been removed")
	}
}

func TestIsDir(t *testing.T) {
	root := t.TempDir()
	if !IsDir(root) {
		t.Fatal("temp dir should report as a directory")
	}
	file := filepath.Join(root, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if IsDir(file) {
		t.Fatal("regular file should not report as a directory")
	}
}

func TestIsHiddenOrSystemFalseOnNonWindows(t *testing.T) {
	if IsHiddenOrSystem(t.TempDir()) {
		t.Fatal("expected IsHiddenOrSystem to always be false on a non-Windows build")
	}
}
