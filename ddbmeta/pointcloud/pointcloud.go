// Package pointcloud implements the PointCloud metadata extractor contract
// from SPEC_FULL.md §4.2: the LAS/LAZ public header block (point count and
// axis-aligned bounds). The SRS is not read and the bounds are not
// reprojected; they are used as EPSG:4326 coordinates as stored. LAZ compression
// itself is an explicit external collaborator — the reference decoder
// reads the uncompressed LAS 1.2-1.4 public header, which is identical in
// both formats, but cannot reach further into a compressed point stream.
package pointcloud

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"

	"github.com/dronedb/ddbcore/ddberrors"
	"github.com/dronedb/ddbcore/ddbgeo"
	"github.com/dronedb/ddbcore/ddbmeta"
)

const lasHeaderMinSize = 227

var errNotLAS = errors.New("pointcloud: not a LAS file")

// Extractor implements ddbmeta.Extractor for the PointCloud type.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

type lasHeader struct {
	pointCount             uint64
	minX, minY, minZ       float64
	maxX, maxY, maxZ       float64
	pointDataRecordFormat  uint8
}

// Extract reads the LAS public header block's extents and point count. The
// bounding rectangle is not reprojected and no SRS is recorded: LAS keeps
// its SRS in a variable-length record, which this reference decoder does
// not walk. The bounds are treated as already geographic; if any corner
// falls outside [-180,180]x[-90,90], geometries are omitted rather than
// emitted with bogus coordinates.
func (e *Extractor) Extract(path string) (ddbmeta.Result, error) {
	doc := ddbmeta.NewDocument()

	h, err := readLASHeader(path)
	if err != nil {
		return ddbmeta.Result{Document: doc}, nil
	}

	doc.Set("point_count", int(h.pointCount))
	doc.Set("point_format", int(h.pointDataRecordFormat))

	ring := []ddbgeo.Point{
		{Lon: h.minX, Lat: h.minY},
		{Lon: h.maxX, Lat: h.minY},
		{Lon: h.maxX, Lat: h.maxY},
		{Lon: h.minX, Lat: h.maxY},
	}

	polygon, err := ddbgeo.NewPolygon(ring)
	if err != nil || !polygon.InBounds() {
		return ddbmeta.Result{Document: doc}, nil
	}

	point := polygon.Centroid()
	alt := (h.minZ + h.maxZ) / 2
	point.Alt = &alt

	return ddbmeta.Result{Document: doc, Point: &point, Polygon: polygon}, nil
}

func readLASHeader(path string) (*lasHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ddberrors.New(ddberrors.KindFilesystem, "read-las-header", path, err)
	}
	defer f.Close()

	buf := make([]byte, lasHeaderMinSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, ddberrors.New(ddberrors.KindFilesystem, "read-las-header", path, err)
	}

	if string(buf[0:4]) != "LASF" {
		return nil, ddberrors.New(ddberrors.KindParse, "read-las-header", path, errNotLAS)
	}

	order := binary.LittleEndian
	versionMajor := buf[24]
	versionMinor := buf[25]

	h := &lasHeader{
		pointDataRecordFormat: buf[104],
	}

	if versionMajor == 1 && versionMinor >= 4 {
		// The 64-bit point count lives past the LAS 1.2 header block.
		ext := make([]byte, 255-lasHeaderMinSize)
		if _, err := io.ReadFull(f, ext); err != nil {
			return nil, ddberrors.New(ddberrors.KindFilesystem, "read-las-header", path, err)
		}
		buf = append(buf, ext...)
		h.pointCount = order.Uint64(buf[247:255])
	} else {
		h.pointCount = uint64(order.Uint32(buf[107:111]))
	}

	// Header bounds (offset 179) are stored as real-world IEEE-754 doubles,
	// unlike per-point coordinates which are scaled/offset integers.
	h.maxX = f64(order.Uint64(buf[179:187]))
	h.minX = f64(order.Uint64(buf[187:195]))
	h.maxY = f64(order.Uint64(buf[195:203]))
	h.minY = f64(order.Uint64(buf[203:211]))
	h.maxZ = f64(order.Uint64(buf[211:219]))
	h.minZ = f64(order.Uint64(buf[219:227]))

	return h, nil
}

func f64(bits uint64) float64 {
	return math.Float64frombits(bits)
}
