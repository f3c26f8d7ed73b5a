package geoimage

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "photo.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return path
}

func TestExtractReadsDimensionsFromPNG(t *testing.T) {
	path := writePNG(t, 64, 32)

	res, err := New().Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Document.GetInt("width") != 64 || res.Document.GetInt("height") != 32 {
		t.Fatalf("unexpected dims: %+v", res.Document)
	}
	// PNG carries no EXIF in this reader, so no GPS point should be derived.
	if res.Point != nil {
		t.Fatal("expected no derived point for a PNG without EXIF")
	}
}

func TestHasGPSFalseForNonJPEG(t *testing.T) {
	path := writePNG(t, 8, 8)
	if New().HasGPS(path) {
		t.Fatal("expected HasGPS to report false for a PNG file")
	}
}

func TestExtractDegradesOnUnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.jpg")
	res, err := New().Extract(path)
	if err != nil {
		t.Fatalf("Extract should degrade rather than error: %v", err)
	}
	if res.Document == nil {
		t.Fatal("expected a non-nil, possibly empty document")
	}
}
