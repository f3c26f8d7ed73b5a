// Package ddbmeta defines the metadata document type extractors hand back
// to ddbparse, the common Extractor contract implemented by the per-type
// subpackages (geoimage, georaster, pointcloud, vector), and a Result
// envelope bundling a Document with the optional derived geometries from
// §4.2.
package ddbmeta

import (
	"encoding/json"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/dronedb/ddbcore/ddbgeo"
)

// Document is the opaque "key -> value tree" from §3, persisted as a JSON
// text blob in the entries.meta column. A nil Document marshals to SQL NULL,
// matching invariant 5 for directories.
type Document map[string]any

// NewDocument returns an empty, non-nil Document ready for Set calls.
func NewDocument() Document {
	return Document{}
}

// Set stores a value under key, returning the document for chaining.
func (d Document) Set(key string, value any) Document {
	d[key] = value
	return d
}

// Sub returns a nested Document stored under key, or nil if absent or not
// map-shaped.
func (d Document) Sub(key string) Document {
	v, ok := d[key]
	if !ok {
		return nil
	}
	switch sub := v.(type) {
	case Document:
		return sub
	case map[string]any:
		return Document(sub)
	default:
		return nil
	}
}

// GetString returns the string at key, or "" if absent or not a string.
func (d Document) GetString(key string) string {
	v, _ := d[key].(string)
	return v
}

// GetInt returns the int at key, tolerating float64 (the shape
// encoding/json.Unmarshal produces for untyped numbers).
func (d Document) GetInt(key string) int {
	switch v := d[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// GetFloat64 returns the float64 at key, or 0 if absent or not numeric.
func (d Document) GetFloat64(key string) float64 {
	switch v := d[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// GetTime returns the time.Time at key, accepting either a time.Time value
// (set directly by an extractor) or an RFC3339 string (decoded JSON).
func (d Document) GetTime(key string) (time.Time, bool) {
	switch v := d[key].(type) {
	case time.Time:
		return v, true
	case string:
		t, err := time.Parse(time.RFC3339, v)
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

// MarshalText implements a stable JSON encoding for storage in the meta
// TEXT column.
func (d Document) MarshalText() ([]byte, error) {
	return json.Marshal(map[string]any(d))
}

// ParseDocument decodes a JSON blob (as read from the meta column) back
// into a Document.
func ParseDocument(raw []byte) (Document, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return Document(m), nil
}

// DecodeInto decodes a loosely-typed map (as produced by a reference
// decoder working from raw tag values) into dst, a pointer to a typed
// struct extractors can populate field-by-field before flattening back into
// a Document with FromStruct.
func DecodeInto(src map[string]any, dst any) error {
	return mapstructure.Decode(src, dst)
}

// FromStruct flattens a typed struct's `mapstructure` tagged fields into a
// Document, used by extractors that build a strongly-typed result
// internally and hand back the generic shape ddbparse expects.
func FromStruct(src any) (Document, error) {
	var out map[string]any
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: &out})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(src); err != nil {
		return nil, err
	}
	return Document(out), nil
}

// Result is what an Extractor hands back to ddbparse: the metadata document
// plus the optional derived geometries from §4.2.
type Result struct {
	Document Document
	Point    *ddbgeo.Point
	Polygon  *ddbgeo.Polygon
}

// Extractor is implemented by each per-type metadata reader. Extractors are
// side-effect free: they never mutate the file they read, per §4.2.
type Extractor interface {
	Extract(path string) (Result, error)
}
