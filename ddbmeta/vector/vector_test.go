package vector

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestExtractFeatureCollection(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "area.geojson", `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [8.68, 49.41]}},
			{"type": "Feature", "geometry": {"type": "Point", "coordinates": [8.70, 49.42]}}
		]
	}`)

	res, err := New().Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Document.GetInt("feature_count") != 2 {
		t.Fatalf("feature_count = %d, want 2", res.Document.GetInt("feature_count"))
	}
	if res.Point == nil {
		t.Fatal("expected a derived centroid point")
	}
	if res.Polygon == nil {
		t.Fatal("expected a derived bounding polygon")
	}
}

func TestExtractSingleFeature(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "single.geojson", `{
		"type": "Feature",
		"geometry": {"type": "Point", "coordinates": [1.0, 2.0]}
	}`)

	res, err := New().Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Point == nil {
		t.Fatal("expected a derived point for a single Feature")
	}
}

func TestExtractBareGeometry(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bare.geojson", `{"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`)

	res, err := New().Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Polygon == nil {
		t.Fatal("expected a bounding polygon for a bare geometry document")
	}
}

func TestExtractNonGeoJSONExtensionSkipped(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "area.shp", "not actually a shapefile")

	res, err := New().Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Point != nil || res.Polygon != nil {
		t.Fatal("shp extension should degrade to metadata-only, no geometry")
	}
}

func TestExtractMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.geojson", `{not valid json`)

	res, err := New().Extract(path)
	if err != nil {
		t.Fatalf("Extract should not error on malformed input: %v", err)
	}
	if res.Point != nil {
		t.Fatal("expected no derived point for malformed input")
	}
}
