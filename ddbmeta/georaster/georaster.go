// Package georaster implements the GeoRaster metadata extractor contract
// from SPEC_FULL.md §4.2: TIFF geotransform/SRS reading and corner
// reprojection to EPSG:4326, plus the HasGeoTransform prober ddbtype uses
// to escalate raster extensions to GeoRaster.
package georaster

import (
	"os"

	"github.com/dronedb/ddbcore/ddberrors"
	"github.com/dronedb/ddbcore/ddbgeo"
	"github.com/dronedb/ddbcore/ddbmeta"
)

// GeoTIFF tag IDs this reader understands.
const (
	tagImageWidth        = 256
	tagImageHeight       = 257
	tagBitsPerSample     = 258
	tagSamplesPerPixel   = 277
	tagModelPixelScale   = 33550
	tagModelTiepoint     = 33922
	tagModelTransform    = 34264
	tagGeoKeyDirectory   = 34735
	tagGeoASCIIParams    = 34737
)

// GeoKey IDs (subset of the GeoTIFF spec needed to recover an EPSG code).
const (
	geoKeyGeographicType  = 2048
	geoKeyProjectedCSType = 3072
)

// Extractor implements ddbmeta.Extractor for the GeoRaster type.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

// HasGeoTransform implements ddbtype.GeoTransformProber.
func (e *Extractor) HasGeoTransform(path string) bool {
	g, err := readGeoTIFF(path)
	if err != nil {
		return false
	}
	_, ok := g.affine()
	return ok
}

// Extract reads raster size, band count, SRS, pixel resolution, and derives
// polygon_geom from the reprojected corner coordinates with point_geom as
// its centroid, per §4.2.
func (e *Extractor) Extract(path string) (ddbmeta.Result, error) {
	doc := ddbmeta.NewDocument()

	g, err := readGeoTIFF(path)
	if err != nil {
		return ddbmeta.Result{Document: doc}, nil
	}

	if g.width > 0 {
		doc.Set("width", g.width).Set("height", g.height)
	}
	if g.bandCount > 0 {
		doc.Set("band_count", g.bandCount)
	}
	if g.epsg != 0 {
		doc.Set("srs", g.epsg)
	}

	affine, ok := g.affine()
	if !ok {
		return ddbmeta.Result{Document: doc}, nil
	}

	doc.Set("pixel_size_x", affine.pixelW).Set("pixel_size_y", affine.pixelH)

	corners := [][2]float64{
		{0, 0},
		{float64(g.width), 0},
		{float64(g.width), float64(g.height)},
		{0, float64(g.height)},
	}

	ring := make([]ddbgeo.Point, 0, len(corners))
	for _, c := range corners {
		x, y := affine.toGeo(c[0], c[1])
		p, reprojOK := ddbgeo.ReprojectToWGS84(x, y, g.epsg)
		if !reprojOK && g.epsg != 0 && g.epsg != 4326 {
			// Unsupported SRS: keep metadata, skip geometries rather than
			// emit out-of-bounds coordinates.
			return ddbmeta.Result{Document: doc}, nil
		}
		ring = append(ring, p)
	}

	polygon, err := ddbgeo.NewPolygon(ring)
	if err != nil || !polygon.InBounds() {
		return ddbmeta.Result{Document: doc}, nil
	}

	point := polygon.Centroid()
	return ddbmeta.Result{Document: doc, Point: &point, Polygon: polygon}, nil
}

type geoTIFF struct {
	width, height, bandCount int
	epsg                     int
	pixelScale               []float64
	tiepoint                 []float64
	transform                []float64
}

type affineTransform struct {
	originX, originY, pixelW, pixelH float64
}

func (a affineTransform) toGeo(px, py float64) (float64, float64) {
	return a.originX + px*a.pixelW, a.originY - py*a.pixelH
}

// affine derives an affine transform from either ModelPixelScale+Tiepoint
// (the common axis-aligned case) or a full ModelTransformation matrix.
func (g *geoTIFF) affine() (affineTransform, bool) {
	if len(g.transform) == 16 {
		return affineTransform{
			originX: g.transform[3],
			originY: g.transform[7],
			pixelW:  g.transform[0],
			pixelH:  -g.transform[5],
		}, true
	}
	if len(g.pixelScale) == 3 && len(g.tiepoint) == 6 {
		return affineTransform{
			originX: g.tiepoint[3] - g.tiepoint[0]*g.pixelScale[0],
			originY: g.tiepoint[4] + g.tiepoint[1]*g.pixelScale[1],
			pixelW:  g.pixelScale[0],
			pixelH:  g.pixelScale[1],
		}, true
	}
	return affineTransform{}, false
}

func readGeoTIFF(path string) (*geoTIFF, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ddberrors.New(ddberrors.KindFilesystem, "read-geotiff", path, err)
	}

	reader, ifdOffset, err := ddbmeta.NewTIFFReader(raw)
	if err != nil {
		return nil, err
	}

	tags, _, err := reader.ReadIFD(ifdOffset)
	if err != nil {
		return nil, err
	}

	g := &geoTIFF{}
	var geoKeys []uint16
	for _, t := range tags {
		switch t.ID {
		case tagImageWidth:
			if v := t.Longs(reader.Order()); len(v) > 0 {
				g.width = int(v[0])
			} else if v := t.Shorts(reader.Order()); len(v) > 0 {
				g.width = int(v[0])
			}
		case tagImageHeight:
			if v := t.Longs(reader.Order()); len(v) > 0 {
				g.height = int(v[0])
			} else if v := t.Shorts(reader.Order()); len(v) > 0 {
				g.height = int(v[0])
			}
		case tagSamplesPerPixel:
			if v := t.Shorts(reader.Order()); len(v) > 0 {
				g.bandCount = int(v[0])
			}
		case tagModelPixelScale:
			g.pixelScale = t.Doubles(reader.Order())
		case tagModelTiepoint:
			g.tiepoint = t.Doubles(reader.Order())
		case tagModelTransform:
			g.transform = t.Doubles(reader.Order())
		case tagGeoKeyDirectory:
			geoKeys = t.Shorts(reader.Order())
		}
	}

	g.epsg = parseGeoKeys(geoKeys)
	return g, nil
}

// parseGeoKeys walks the GeoKeyDirectory's packed [keyID, tiffTagLocation,
// count, value] quadruples looking for the projected or geographic CS type
// key, which for the common "EPSG:<code> stored directly as SHORT value"
// case is the raster's EPSG code.
func parseGeoKeys(keys []uint16) int {
	if len(keys) < 4 {
		return 0
	}
	numKeys := int(keys[3])
	for i := 0; i < numKeys; i++ {
		base := 4 + i*4
		if base+4 > len(keys) {
			break
		}
		keyID := keys[base]
		tagLoc := keys[base+1]
		value := keys[base+3]
		if tagLoc != 0 {
			continue // value stored elsewhere (e.g. GeoASCIIParams); not handled
		}
		if keyID == geoKeyProjectedCSType || keyID == geoKeyGeographicType {
			if value != 0 && value != 32767 {
				return int(value)
			}
		}
	}
	return 0
}
