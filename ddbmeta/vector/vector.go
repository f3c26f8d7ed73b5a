// Package vector implements the Vector metadata extractor contract from
// SPEC_FULL.md §4.2: combined feature bounds, a bounding-box polygon_geom,
// and a geometry-type histogram. The reference decoder handles GeoJSON
// directly (the format is already EPSG:4326 by specification, so no
// reprojection step is needed); other vector extensions in the classifier
// table (shp/gpkg/kml) satisfy the same contract but their binary/XML
// container formats are an out-of-scope external collaborator per §1, so
// they degrade to minimal metadata here.
package vector

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/dronedb/ddbcore/ddbgeo"
	"github.com/dronedb/ddbcore/ddbmeta"
)

// Extractor implements ddbmeta.Extractor for the Vector type.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Extract(path string) (ddbmeta.Result, error) {
	doc := ddbmeta.NewDocument()

	if !strings.EqualFold(extOf(path), "geojson") && !strings.EqualFold(extOf(path), "json") {
		return ddbmeta.Result{Document: doc}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return ddbmeta.Result{Document: doc}, nil
	}

	var fc featureCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		return ddbmeta.Result{Document: doc}, nil
	}

	histogram := map[string]int{}
	var points []ddbgeo.Point

	features := fc.Features
	if fc.Type == "Feature" {
		var single feature
		if err := json.Unmarshal(raw, &single); err == nil {
			features = []feature{single}
		}
	}
	if fc.Type == "" && fc.Geometry.Type != "" {
		features = []feature{{Geometry: fc.Geometry}}
	}
	if fc.Type != "" && fc.Type != "FeatureCollection" && fc.Type != "Feature" {
		// A bare geometry object (e.g. {"type":"Polygon","coordinates":...}).
		var bare geometry
		if err := json.Unmarshal(raw, &bare); err == nil {
			features = []feature{{Geometry: bare}}
		}
	}

	for _, f := range features {
		if f.Geometry.Type == "" {
			continue
		}
		histogram[f.Geometry.Type]++
		points = append(points, extractCoords(f.Geometry)...)
	}

	doc.Set("feature_count", len(features))
	if len(histogram) > 0 {
		doc.Set("geometry_types", histogram)
	}

	if len(points) == 0 {
		return ddbmeta.Result{Document: doc}, nil
	}

	polygon, err := ddbgeo.BoundingBox(points)
	if err != nil || !polygon.InBounds() {
		return ddbmeta.Result{Document: doc}, nil
	}

	point := polygon.Centroid()
	return ddbmeta.Result{Document: doc, Point: &point, Polygon: polygon}, nil
}

func extOf(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return ""
	}
	return path[idx+1:]
}

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
	Geometry geometry  `json:"geometry"`
}

type feature struct {
	Geometry geometry `json:"geometry"`
}

type geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// extractCoords walks a GeoJSON coordinates array of arbitrary nesting
// depth (Point through MultiPolygon) collecting every [lon, lat, ...] leaf.
func extractCoords(g geometry) []ddbgeo.Point {
	var out []ddbgeo.Point
	var walk func(v any)
	walk = func(v any) {
		arr, ok := v.([]any)
		if !ok {
			return
		}
		if len(arr) >= 2 {
			lon, lonOK := arr[0].(float64)
			lat, latOK := arr[1].(float64)
			if lonOK && latOK && !isNestedArray(arr) {
				out = append(out, ddbgeo.Point{Lon: lon, Lat: lat})
				return
			}
		}
		for _, item := range arr {
			walk(item)
		}
	}
	walk(g.Coordinates)
	return out
}

func isNestedArray(arr []any) bool {
	for _, v := range arr {
		if _, ok := v.([]any); ok {
			return true
		}
	}
	return false
}
