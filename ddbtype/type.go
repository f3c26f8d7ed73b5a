// Package ddbtype implements the type classifier from §4.1: extension and
// content sniffing that assigns a filesystem path one of the Entry type
// tags. Sniffing for GeoImage/GeoRaster escalation is delegated to small
// prober interfaces rather than importing the metadata extractor packages
// directly, keeping ddbtype free of a dependency on ddbmeta's subpackages.
package ddbtype

import (
	"strings"

	"golang.org/x/text/cases"
)

// Type tags an Entry with its semantic kind, per §3.
type Type int

const (
	Undefined Type = iota
	Directory
	Generic
	GeoImage
	GeoRaster
	PointCloud
	Image
	Vector
	DroneDB
)

func (t Type) String() string {
	switch t {
	case Directory:
		return "directory"
	case Generic:
		return "generic"
	case GeoImage:
		return "geoimage"
	case GeoRaster:
		return "georaster"
	case PointCloud:
		return "pointcloud"
	case Image:
		return "image"
	case Vector:
		return "vector"
	case DroneDB:
		return "dronedb"
	default:
		return "undefined"
	}
}

var imageExts = set("jpg", "jpeg", "tif", "tiff", "png", "webp")
var rasterExts = set("tif", "tiff", "img", "vrt")
var pointCloudExts = set("las", "laz", "ply")
var vectorExts = set("geojson", "json", "shp", "gpkg", "kml")

func set(vals ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}

var fold = cases.Fold()

// Ext returns the case-folded extension (no leading dot) of a path, using
// golang.org/x/text/cases so classification is Unicode-correct for
// non-ASCII extensions, per §4.1's implementation note.
func Ext(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx < 0 || idx == len(path)-1 {
		return ""
	}
	return fold.String(path[idx+1:])
}

// GPSProber reports whether a file carries parseable EXIF GPS coordinates,
// implemented by ddbmeta/geoimage.
type GPSProber interface {
	HasGPS(path string) bool
}

// GeoTransformProber reports whether a file carries a valid geotransform
// and spatial reference, implemented by ddbmeta/georaster.
type GeoTransformProber interface {
	HasGeoTransform(path string) bool
}

// Classify assigns a Type to path. isDir is the caller's stat result (the
// classifier never stats — ddbparse already has). gps and geo may be nil,
// in which case image/raster extensions never escalate past Image/Generic.
// Classification degrades to the most generic applicable tag on any probe
// failure, per §4.1 — probers are expected to swallow decode errors and
// report false rather than propagate them.
func Classify(path string, isDir bool, gps GPSProber, geo GeoTransformProber) Type {
	if isDir {
		return Directory
	}

	ext := Ext(path)

	if _, ok := pointCloudExts[ext]; ok {
		return PointCloud
	}
	if _, ok := vectorExts[ext]; ok {
		return Vector
	}

	_, isRaster := rasterExts[ext]
	_, isImage := imageExts[ext]

	if isRaster {
		if geo != nil && geo.HasGeoTransform(path) {
			return GeoRaster
		}
		// Not a valid raster; fall through to image/generic per §4.1.
	}

	if isImage {
		if gps != nil && gps.HasGPS(path) {
			return GeoImage
		}
		return Image
	}

	if isRaster {
		// Raster extension without a usable geotransform still looks like
		// an image (tif/img without georeferencing) rather than generic.
		return Image
	}

	return Generic
}
