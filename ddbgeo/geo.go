// Package ddbgeo implements the geometry model used for an Entry's derived
// point/polygon attributes: 2D or 3D points and closed polygon rings in
// EPSG:4326, with WKT and GeoJSON adapters. The spatial extension able to
// parse WKT into native geometry columns is an external collaborator
// (§1); this package supplies the WKT/GeoJSON text that crosses that
// boundary.
package ddbgeo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dronedb/ddbcore/ddberrors"
)

// Point is a 2D or 3D coordinate in EPSG:4326 (lon, lat, [alt]).
type Point struct {
	Lon, Lat float64
	Alt      *float64
}

// Polygon is a single closed ring in EPSG:4326. The first and last
// coordinate must be equal; callers construct via NewPolygon which enforces
// this.
type Polygon struct {
	Ring []Point
}

// InBounds reports whether a point lies within [-180,180] x [-90,90], per
// invariant 4.
func (p Point) InBounds() bool {
	return p.Lon >= -180 && p.Lon <= 180 && p.Lat >= -90 && p.Lat <= 90
}

// InBounds reports whether every ring vertex lies within geographic bounds.
func (poly Polygon) InBounds() bool {
	for _, v := range poly.Ring {
		if !v.InBounds() {
			return false
		}
	}
	return true
}

// NewPolygon closes an open ring (appending the first point if needed) and
// validates that at least 3 points were given. Distinctness of the points
// is not checked.
func NewPolygon(ring []Point) (*Polygon, error) {
	if len(ring) < 3 {
		return nil, ddberrors.New(ddberrors.KindArgument, "new-polygon", "", fmt.Errorf("ring needs at least 3 points, got %d", len(ring)))
	}

	closed := make([]Point, len(ring))
	copy(closed, ring)
	first, last := closed[0], closed[len(closed)-1]
	if first.Lon != last.Lon || first.Lat != last.Lat {
		closed = append(closed, first)
	}

	return &Polygon{Ring: closed}, nil
}

// BoundingBox returns the axis-aligned rectangle polygon enclosing a set of
// points — used by the vector and point-cloud extractors for their
// reprojected-bounds-to-polygon step.
func BoundingBox(points []Point) (*Polygon, error) {
	if len(points) == 0 {
		return nil, ddberrors.New(ddberrors.KindArgument, "bounding-box", "", fmt.Errorf("no points"))
	}

	minLon, maxLon := points[0].Lon, points[0].Lon
	minLat, maxLat := points[0].Lat, points[0].Lat
	for _, p := range points[1:] {
		minLon = min(minLon, p.Lon)
		maxLon = max(maxLon, p.Lon)
		minLat = min(minLat, p.Lat)
		maxLat = max(maxLat, p.Lat)
	}

	return NewPolygon([]Point{
		{Lon: minLon, Lat: minLat},
		{Lon: maxLon, Lat: minLat},
		{Lon: maxLon, Lat: maxLat},
		{Lon: minLon, Lat: maxLat},
	})
}

// Centroid returns the arithmetic mean of a polygon's ring vertices
// (excluding the closing duplicate), used to derive an entry's point_geom
// from its polygon_geom.
func (poly Polygon) Centroid() Point {
	n := len(poly.Ring)
	if n > 1 && poly.Ring[0].Lon == poly.Ring[n-1].Lon && poly.Ring[0].Lat == poly.Ring[n-1].Lat {
		n--
	}

	var sumLon, sumLat float64
	for i := 0; i < n; i++ {
		sumLon += poly.Ring[i].Lon
		sumLat += poly.Ring[i].Lat
	}

	return Point{Lon: sumLon / float64(n), Lat: sumLat / float64(n)}
}

// WKT renders a point as "POINT (lon lat)" or "POINT Z (lon lat alt)".
func (p Point) WKT() string {
	if p.Alt != nil {
		return fmt.Sprintf("POINT Z (%s %s %s)", formatCoord(p.Lon), formatCoord(p.Lat), formatCoord(*p.Alt))
	}
	return fmt.Sprintf("POINT (%s %s)", formatCoord(p.Lon), formatCoord(p.Lat))
}

// WKT renders a polygon ring as "POLYGON ((lon lat, lon lat, ...))".
func (poly Polygon) WKT() string {
	parts := make([]string, len(poly.Ring))
	for i, v := range poly.Ring {
		parts[i] = fmt.Sprintf("%s %s", formatCoord(v.Lon), formatCoord(v.Lat))
	}
	return fmt.Sprintf("POLYGON ((%s))", strings.Join(parts, ", "))
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseWKT parses the subset of WKT this package emits: POINT, POINT Z, and
// POLYGON with a single ring. Used when reading geometries back from the
// store's TEXT columns.
func ParseWKT(wkt string) (point *Point, polygon *Polygon, err error) {
	wkt = strings.TrimSpace(wkt)
	switch {
	case strings.HasPrefix(wkt, "POINT Z"):
		p, perr := parsePointBody(strings.TrimPrefix(wkt, "POINT Z"), true)
		return p, nil, perr
	case strings.HasPrefix(wkt, "POINT"):
		p, perr := parsePointBody(strings.TrimPrefix(wkt, "POINT"), false)
		return p, nil, perr
	case strings.HasPrefix(wkt, "POLYGON"):
		poly, perr := parsePolygonBody(strings.TrimPrefix(wkt, "POLYGON"))
		return nil, poly, perr
	default:
		return nil, nil, ddberrors.New(ddberrors.KindParse, "parse-wkt", "", fmt.Errorf("unsupported WKT: %q", wkt))
	}
}

func parsePointBody(body string, withAlt bool) (*Point, error) {
	body = strings.TrimSpace(body)
	body = strings.TrimPrefix(body, "(")
	body = strings.TrimSuffix(body, ")")
	fields := strings.Fields(body)

	want := 2
	if withAlt {
		want = 3
	}
	if len(fields) < want {
		return nil, ddberrors.New(ddberrors.KindParse, "parse-wkt-point", "", fmt.Errorf("expected %d coordinates, got %d", want, len(fields)))
	}

	lon, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil, ddberrors.New(ddberrors.KindParse, "parse-wkt-point", "", err)
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return nil, ddberrors.New(ddberrors.KindParse, "parse-wkt-point", "", err)
	}

	p := &Point{Lon: lon, Lat: lat}
	if withAlt {
		alt, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, ddberrors.New(ddberrors.KindParse, "parse-wkt-point", "", err)
		}
		p.Alt = &alt
	}

	return p, nil
}

func parsePolygonBody(body string) (*Polygon, error) {
	body = strings.TrimSpace(body)
	body = strings.TrimPrefix(body, "((")
	body = strings.TrimSuffix(body, "))")

	pairs := strings.Split(body, ",")
	ring := make([]Point, 0, len(pairs))
	for _, pair := range pairs {
		fields := strings.Fields(strings.TrimSpace(pair))
		if len(fields) < 2 {
			continue
		}
		lon, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, ddberrors.New(ddberrors.KindParse, "parse-wkt-polygon", "", err)
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, ddberrors.New(ddberrors.KindParse, "parse-wkt-polygon", "", err)
		}
		ring = append(ring, Point{Lon: lon, Lat: lat})
	}

	if len(ring) < 3 {
		return nil, ddberrors.New(ddberrors.KindParse, "parse-wkt-polygon", "", fmt.Errorf("ring has too few points"))
	}

	return &Polygon{Ring: ring}, nil
}

// GeoJSON renders a point as a GeoJSON Point geometry object.
func (p Point) GeoJSON() string {
	if p.Alt != nil {
		return fmt.Sprintf(`{"type":"Point","coordinates":[%s,%s,%s]}`, formatCoord(p.Lon), formatCoord(p.Lat), formatCoord(*p.Alt))
	}
	return fmt.Sprintf(`{"type":"Point","coordinates":[%s,%s]}`, formatCoord(p.Lon), formatCoord(p.Lat))
}

// GeoJSON renders a polygon as a GeoJSON Polygon geometry object with a
// single ring.
func (poly Polygon) GeoJSON() string {
	coords := make([]string, len(poly.Ring))
	for i, v := range poly.Ring {
		coords[i] = fmt.Sprintf("[%s,%s]", formatCoord(v.Lon), formatCoord(v.Lat))
	}
	return fmt.Sprintf(`{"type":"Polygon","coordinates":[[%s]]}`, strings.Join(coords, ","))
}
