// Package ddbconfig carries the explicit configuration handle threaded
// through the index engine. Per the core's design notes, nothing in
// ddbstore/ddbindex/ddbparse reads ambient global state; every constructor
// takes a *Config instead.
package ddbconfig

import "github.com/dronedb/ddbcore/ddblog"

// Config bundles the knobs the index engine needs. Zero value is usable;
// Default fills in the documented defaults for unset fields.
type Config struct {
	// HashChunkSize is the buffer size used while streaming SHA-256 over a
	// file. 0 means use the 64 KiB default from §4.3.
	HashChunkSize int

	// Workers bounds the concurrency of the hash/extract worker pool used
	// by ddbindex during add(). 0 or negative means sequential.
	Workers int

	// MaxRecursionDepth caps directory recursion during getIndexPathList.
	// Negative values are rejected by callers as an ArgumentError.
	MaxRecursionDepth int

	// CacheDir overrides the resolved user-wide thumbnail/tile cache root.
	// Empty means resolve via ~/.cache/ddb.
	CacheDir string

	// Logger receives structured log lines for every mutating operation.
	// A nil Logger is replaced with ddblog.Discard() by Default.
	Logger *ddblog.Logger
}

const (
	DefaultHashChunkSize     = 64 * 1024
	DefaultMaxRecursionDepth = 64
)

// Default returns a Config with the documented defaults applied on top of
// any fields already set on cfg. Passing nil returns a fresh default Config.
func Default(cfg *Config) *Config {
	out := Config{}
	if cfg != nil {
		out = *cfg
	}
	if out.HashChunkSize <= 0 {
		out.HashChunkSize = DefaultHashChunkSize
	}
	if out.MaxRecursionDepth == 0 {
		out.MaxRecursionDepth = DefaultMaxRecursionDepth
	}
	if out.Logger == nil {
		out.Logger = ddblog.Discard()
	}
	return &out
}
