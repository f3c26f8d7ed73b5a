package ddbhash

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestFileMatchesDirectDigest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payload.bin")
	content := make([]byte, 256*1024+17)
	for i := range content {
		content[i] = byte(i % 251)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	want := sha256.Sum256(content)
	wantHex := hex.EncodeToString(want[:])

	for _, chunkSize := range []int{0, 1, 17, DefaultChunkSize} {
		got, err := File(path, chunkSize)
		if err != nil {
			t.Fatalf("File(chunkSize=%d): %v", chunkSize, err)
		}
		if got != wantHex {
			t.Fatalf("File(chunkSize=%d) = %s, want %s", chunkSize, got, wantHex)
		}
	}
}

func TestFileEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := File(path, 0)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	want := sha256.Sum256(nil)
	if got != hex.EncodeToString(want[:]) {
		t.Fatalf("File(empty) = %s, want %s", got, hex.EncodeToString(want[:]))
	}
}

func TestFileMissing(t *testing.T) {
	dir := t.TempDir()
	if _, err := File(filepath.Join(dir, "missing.bin"), 0); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
