// Package geoimage implements the GeoImage/Image metadata extractor
// contract from SPEC_FULL.md §4.2: EXIF GPS extraction and a small
// JPEG-dimension/capture-time reader, plus the HasGPS prober ddbtype uses
// to escalate image extensions to GeoImage.
package geoimage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/dronedb/ddbcore/ddberrors"
	"github.com/dronedb/ddbcore/ddbgeo"
	"github.com/dronedb/ddbcore/ddbmeta"
)

// EXIF tag IDs this reader understands, in the main IFD.
const (
	tagMake           = 0x010F
	tagModel          = 0x0110
	tagOrientation    = 0x0112
	tagDateTime       = 0x0132
	tagExifIFDPointer = 0x8769
	tagGPSIFDPointer  = 0x8825
)

// GPS sub-IFD tag IDs.
const (
	gpsTagLatRef  = 1
	gpsTagLat     = 2
	gpsTagLonRef  = 3
	gpsTagLon     = 4
	gpsTagAltRef  = 5
	gpsTagAlt     = 6
)

// Extractor implements ddbmeta.Extractor for the Image/GeoImage types.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

// HasGPS implements ddbtype.GPSProber: a cheap presence check used by the
// classifier, without building the full Result.
func (e *Extractor) HasGPS(path string) bool {
	exif, err := readEXIF(path)
	if err != nil {
		return false
	}
	_, _, ok := gpsPoint(exif)
	return ok
}

// Extract reads EXIF-derived metadata and the GPS point_geom, per the
// GeoImage contract in §4.2. XMP packets are not read, and no ground
// footprint polygon is derived. On any decode failure it degrades to minimal
// image-dimension metadata rather than returning an error, matching §4.1's
// "must not throw on unreadable files" rule for the classifier's sibling
// extraction step.
func (e *Extractor) Extract(path string) (ddbmeta.Result, error) {
	doc := ddbmeta.NewDocument()

	if w, h, err := dimensions(path); err == nil {
		doc.Set("width", w).Set("height", h)
	}

	exif, err := readEXIF(path)
	if err != nil {
		return ddbmeta.Result{Document: doc}, nil
	}

	if make_ := exif.ascii(tagMake); make_ != "" {
		doc.Set("make", make_)
	}
	if model := exif.ascii(tagModel); model != "" {
		doc.Set("model", model)
	}
	if orient := exif.short(tagOrientation); orient != 0 {
		doc.Set("orientation", int(orient))
	}
	if dt := exif.ascii(tagDateTime); dt != "" {
		if t, err := time.Parse("2006:01:02 15:04:05", dt); err == nil {
			doc.Set("capture_time", t.UTC())
		}
	}

	point, hasAlt, ok := gpsPoint(exif)
	if !ok {
		return ddbmeta.Result{Document: doc}, nil
	}
	_ = hasAlt

	if !point.InBounds() {
		return ddbmeta.Result{Document: doc}, nil
	}

	return ddbmeta.Result{Document: doc, Point: &point}, nil
}

func dimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// exifData holds the decoded main IFD and GPS IFD tags plus the byte order
// they were encoded with.
type exifData struct {
	order   binary.ByteOrder
	main    map[uint16]ddbmeta.TIFFTag
	gps     map[uint16]ddbmeta.TIFFTag
}

func (e *exifData) ascii(id uint16) string {
	if t, ok := e.main[id]; ok {
		return t.ASCII()
	}
	return ""
}

func (e *exifData) short(id uint16) uint16 {
	if t, ok := e.main[id]; ok {
		if vals := t.Shorts(e.order); len(vals) > 0 {
			return vals[0]
		}
	}
	return 0
}

// readEXIF locates the APP1 EXIF segment in a JPEG file (falling back to a
// no-op for PNG, which carries no EXIF) and decodes its main and GPS IFDs.
func readEXIF(path string) (*exifData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ddberrors.New(ddberrors.KindFilesystem, "read-exif", path, err)
	}

	segment, err := findEXIFSegment(raw)
	if err != nil {
		return nil, err
	}

	reader, ifdOffset, err := ddbmeta.NewTIFFReader(segment)
	if err != nil {
		return nil, err
	}

	main := make(map[uint16]ddbmeta.TIFFTag)
	tags, _, err := reader.ReadIFD(ifdOffset)
	if err != nil {
		return nil, err
	}
	var gpsOffset uint32
	var exifOffset uint32
	for _, t := range tags {
		main[t.ID] = t
		if t.ID == tagGPSIFDPointer {
			if vals := t.Longs(reader.Order()); len(vals) > 0 {
				gpsOffset = vals[0]
			}
		}
		if t.ID == tagExifIFDPointer {
			if vals := t.Longs(reader.Order()); len(vals) > 0 {
				exifOffset = vals[0]
			}
		}
	}

	if exifOffset != 0 {
		if sub, _, err := reader.ReadIFD(exifOffset); err == nil {
			for _, t := range sub {
				main[t.ID] = t
			}
		}
	}

	gps := make(map[uint16]ddbmeta.TIFFTag)
	if gpsOffset != 0 {
		if sub, _, err := reader.ReadIFD(gpsOffset); err == nil {
			for _, t := range sub {
				gps[t.ID] = t
			}
		}
	}

	return &exifData{order: reader.Order(), main: main, gps: gps}, nil
}

// findEXIFSegment scans a JPEG's marker segments for APP1 "Exif\0\0" and
// returns the embedded TIFF payload.
func findEXIFSegment(raw []byte) ([]byte, error) {
	if len(raw) < 4 || raw[0] != 0xFF || raw[1] != 0xD8 {
		return nil, fmt.Errorf("ddbmeta/geoimage: not a JPEG file")
	}

	pos := 2
	for pos+4 <= len(raw) {
		if raw[pos] != 0xFF {
			pos++
			continue
		}
		marker := raw[pos+1]
		if marker == 0xD8 || marker == 0xD9 || (marker >= 0xD0 && marker <= 0xD7) {
			pos += 2
			continue
		}
		if pos+4 > len(raw) {
			break
		}
		length := int(binary.BigEndian.Uint16(raw[pos+2 : pos+4]))
		segStart := pos + 4
		segEnd := pos + 2 + length
		if segEnd > len(raw) || segStart > len(raw) {
			break
		}

		if marker == 0xE1 && bytes.HasPrefix(raw[segStart:], []byte("Exif\x00\x00")) {
			return raw[segStart+6 : segEnd], nil
		}
		if marker == 0xDA { // start of scan: EXIF always precedes image data
			break
		}

		pos = segEnd
	}

	return nil, fmt.Errorf("ddbmeta/geoimage: no EXIF segment found")
}

// gpsPoint decodes the GPS sub-IFD into an ddbgeo.Point, converting the
// degree-minute-second rational triples and N/S/E/W reference tags to
// signed decimal degrees, per §4.2.
func gpsPoint(e *exifData) (point ddbgeo.Point, hasAlt bool, ok bool) {
	latVals, ok1 := e.dmsRational(gpsTagLat)
	lonVals, ok2 := e.dmsRational(gpsTagLon)
	if !ok1 || !ok2 {
		return ddbgeo.Point{}, false, false
	}

	lat := dmsToDecimal(latVals)
	lon := dmsToDecimal(lonVals)

	if ref := e.gps[gpsTagLatRef]; ref.Raw != nil && ref.ASCII() == "S" {
		lat = -lat
	}
	if ref := e.gps[gpsTagLonRef]; ref.Raw != nil && ref.ASCII() == "W" {
		lon = -lon
	}

	point = ddbgeo.Point{Lon: lon, Lat: lat}

	if altTag, has := e.gps[gpsTagAlt]; has {
		altVals := altTag.Rationals(e.order)
		if len(altVals) == 1 {
			alt := altVals[0]
			if refTag, hasRef := e.gps[gpsTagAltRef]; hasRef {
				if refBytes := refTag.Raw; len(refBytes) > 0 && refBytes[0] == 1 {
					alt = -alt
				}
			}
			point.Alt = &alt
			hasAlt = true
		}
	}

	return point, hasAlt, true
}

func (e *exifData) dmsRational(id uint16) ([]float64, bool) {
	t, has := e.gps[id]
	if !has {
		return nil, false
	}
	vals := t.Rationals(e.order)
	if len(vals) != 3 {
		return nil, false
	}
	return vals, true
}

func dmsToDecimal(dms []float64) float64 {
	return dms[0] + dms[1]/60 + dms[2]/3600
}
