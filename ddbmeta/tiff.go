package ddbmeta

import (
	"encoding/binary"
	"fmt"
	"math"
)

// TIFFTag is a single decoded Image File Directory entry. This minimal
// reader is shared by ddbmeta/geoimage (EXIF is a TIFF IFD embedded in a
// JPEG APP1 segment) and ddbmeta/georaster (GeoTIFF is a TIFF file with
// georeferencing tags), per SPEC_FULL.md §4.2's "small self-contained
// TIFF/EXIF IFD walker" note.
type TIFFTag struct {
	ID    uint16
	Type  uint16
	Count uint32
	Raw   []byte
}

// TIFFReader walks the IFD chain of an in-memory TIFF byte stream starting
// at the standard 8-byte header.
type TIFFReader struct {
	data  []byte
	order binary.ByteOrder
}

// NewTIFFReader parses the TIFF byte-order marker and returns a reader plus
// the offset of the first IFD, as given in the header.
func NewTIFFReader(data []byte) (*TIFFReader, uint32, error) {
	if len(data) < 8 {
		return nil, 0, fmt.Errorf("ddbmeta: tiff header too short")
	}

	var order binary.ByteOrder
	switch string(data[0:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil, 0, fmt.Errorf("ddbmeta: not a TIFF byte-order marker")
	}

	magic := order.Uint16(data[2:4])
	if magic != 42 {
		return nil, 0, fmt.Errorf("ddbmeta: unexpected TIFF magic %d", magic)
	}

	offset := order.Uint32(data[4:8])
	return &TIFFReader{data: data, order: order}, offset, nil
}

// Order returns the byte order detected from the header.
func (r *TIFFReader) Order() binary.ByteOrder { return r.order }

// ReadIFD decodes the directory at offset, returning its tags and the
// offset of the next IFD (0 if none).
func (r *TIFFReader) ReadIFD(offset uint32) ([]TIFFTag, uint32, error) {
	if int(offset)+2 > len(r.data) {
		return nil, 0, fmt.Errorf("ddbmeta: ifd offset out of range")
	}

	count := r.order.Uint16(r.data[offset : offset+2])
	tags := make([]TIFFTag, 0, count)

	base := offset + 2
	const entrySize = 12
	for i := uint16(0); i < count; i++ {
		entryOff := base + uint32(i)*entrySize
		if int(entryOff)+entrySize > len(r.data) {
			break
		}
		entry := r.data[entryOff : entryOff+entrySize]

		id := r.order.Uint16(entry[0:2])
		typ := r.order.Uint16(entry[2:4])
		cnt := r.order.Uint32(entry[4:8])
		valueField := entry[8:12]

		size := tagTypeSize(typ) * int(cnt)
		var raw []byte
		if size <= 4 {
			raw = valueField[:size]
		} else {
			valOff := r.order.Uint32(valueField)
			if int(valOff)+size > len(r.data) || size < 0 {
				continue
			}
			raw = r.data[valOff : int(valOff)+size]
		}

		tags = append(tags, TIFFTag{ID: id, Type: typ, Count: cnt, Raw: raw})
	}

	nextOff := uint32(0)
	nextFieldOff := base + uint32(count)*entrySize
	if int(nextFieldOff)+4 <= len(r.data) {
		nextOff = r.order.Uint32(r.data[nextFieldOff : nextFieldOff+4])
	}

	return tags, nextOff, nil
}

func tagTypeSize(typ uint16) int {
	switch typ {
	case 1, 2, 6, 7: // BYTE, ASCII, SBYTE, UNDEFINED
		return 1
	case 3, 8: // SHORT, SSHORT
		return 2
	case 4, 9, 11: // LONG, SLONG, FLOAT
		return 4
	case 5, 10, 12: // RATIONAL, SRATIONAL, DOUBLE
		return 8
	default:
		return 1
	}
}

// ASCII decodes an ASCII-type tag's raw value, trimming the trailing NUL.
func (t TIFFTag) ASCII() string {
	s := t.Raw
	for len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	return string(s)
}

// Rationals decodes a RATIONAL/SRATIONAL tag into its float64 values.
func (t TIFFTag) Rationals(order binary.ByteOrder) []float64 {
	out := make([]float64, 0, t.Count)
	signed := t.Type == 10
	for i := 0; i < int(t.Count); i++ {
		off := i * 8
		if off+8 > len(t.Raw) {
			break
		}
		if signed {
			num := int32(order.Uint32(t.Raw[off : off+4]))
			den := int32(order.Uint32(t.Raw[off+4 : off+8]))
			if den == 0 {
				out = append(out, 0)
			} else {
				out = append(out, float64(num)/float64(den))
			}
		} else {
			num := order.Uint32(t.Raw[off : off+4])
			den := order.Uint32(t.Raw[off+4 : off+8])
			if den == 0 {
				out = append(out, 0)
			} else {
				out = append(out, float64(num)/float64(den))
			}
		}
	}
	return out
}

// Shorts decodes a SHORT-type tag into its uint16 values.
func (t TIFFTag) Shorts(order binary.ByteOrder) []uint16 {
	out := make([]uint16, 0, t.Count)
	for i := 0; i < int(t.Count); i++ {
		off := i * 2
		if off+2 > len(t.Raw) {
			break
		}
		out = append(out, order.Uint16(t.Raw[off:off+2]))
	}
	return out
}

// Longs decodes a LONG-type tag into its uint32 values.
func (t TIFFTag) Longs(order binary.ByteOrder) []uint32 {
	out := make([]uint32, 0, t.Count)
	for i := 0; i < int(t.Count); i++ {
		off := i * 4
		if off+4 > len(t.Raw) {
			break
		}
		out = append(out, order.Uint32(t.Raw[off:off+4]))
	}
	return out
}

// Doubles decodes a DOUBLE-type tag into its float64 values.
func (t TIFFTag) Doubles(order binary.ByteOrder) []float64 {
	out := make([]float64, 0, t.Count)
	for i := 0; i < int(t.Count); i++ {
		off := i * 8
		if off+8 > len(t.Raw) {
			break
		}
		bits := order.Uint64(t.Raw[off : off+8])
		out = append(out, math.Float64frombits(bits))
	}
	return out
}
