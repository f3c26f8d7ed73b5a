// Package ddbparse implements the entry parser from §4.3: it orchestrates
// the type classifier, the per-type metadata extractor, and the hasher to
// produce a populated Entry for a single filesystem path. Parser never
// talks to the index store — the store never parses files — keeping the
// two sides decoupled per §9.
package ddbparse

import (
	"os"
	"time"

	"github.com/dronedb/ddbcore/ddbconfig"
	"github.com/dronedb/ddbcore/ddberrors"
	"github.com/dronedb/ddbcore/ddbgeo"
	"github.com/dronedb/ddbcore/ddbhash"
	"github.com/dronedb/ddbcore/ddbmeta"
	"github.com/dronedb/ddbcore/ddbmeta/geoimage"
	"github.com/dronedb/ddbcore/ddbmeta/georaster"
	"github.com/dronedb/ddbcore/ddbmeta/pointcloud"
	"github.com/dronedb/ddbcore/ddbmeta/vector"
	"github.com/dronedb/ddbcore/ddbpath"
	"github.com/dronedb/ddbcore/ddbtype"
)

// Entry is the unit of the index, per §3.
type Entry struct {
	Path        string
	Hash        string
	Type        ddbtype.Type
	Meta        ddbmeta.Document
	Mtime       int64
	Size        int64
	Depth       int
	PointGeom   *ddbgeo.Point
	PolygonGeom *ddbgeo.Polygon
}

// Parser orchestrates classification, extraction, and hashing for a single
// path, per §4.3. It takes an explicit *ddbconfig.Config rather than
// reading ambient global state, per §9's "Global logging and UserProfile
// singleton" design note.
type Parser struct {
	cfg *ddbconfig.Config

	geoimage   *geoimage.Extractor
	georaster  *georaster.Extractor
	pointcloud *pointcloud.Extractor
	vector     *vector.Extractor
}

// New constructs a Parser bound to cfg (used for the hash chunk size).
func New(cfg *ddbconfig.Config) *Parser {
	return &Parser{
		cfg:        ddbconfig.Default(cfg),
		geoimage:   geoimage.New(),
		georaster:  georaster.New(),
		pointcloud: pointcloud.New(),
		vector:     vector.New(),
	}
}

// Parse computes relPath by making fullPath relative to root, stats it,
// classifies it, optionally hashes it, and invokes the matching extractor,
// per the six steps of §4.3. A path containing a backslash segment is
// rejected with ddberrors.ErrBackslashSegment — callers in ddbindex.add
// treat this as a silent skip rather than a fatal error, per §4.5.
func (p *Parser) Parse(root, fullPath string, computeHash bool) (Entry, error) {
	relPath, err := ddbpath.Rel(root, fullPath)
	if err != nil {
		return Entry{}, err
	}
	if ddbpath.HasBackslashSegment(relPath) {
		return Entry{}, ddberrors.New(ddberrors.KindFilesystem, "parse", relPath, ddberrors.ErrBackslashSegment)
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return Entry{}, ddberrors.New(ddberrors.KindFilesystem, "parse", relPath, err)
	}

	entry := Entry{
		Path:  relPath,
		Mtime: info.ModTime().Unix(),
		Size:  info.Size(),
		Depth: ddbpath.Depth(relPath),
	}

	entry.Type = ddbtype.Classify(fullPath, info.IsDir(), p.geoimage, p.georaster)

	if entry.Type == ddbtype.Directory {
		entry.Size = 0
		return entry, nil
	}

	if computeHash {
		hash, err := ddbhash.File(fullPath, p.cfg.HashChunkSize)
		if err != nil {
			return Entry{}, err
		}
		entry.Hash = hash
	}

	result, err := p.extract(entry.Type, fullPath)
	if err != nil {
		// Extraction failures degrade rather than fail the whole parse,
		// per §4.1/§7 (ParseError -> skip metadata, keep the entry).
		return entry, nil
	}

	entry.Meta = result.Document
	entry.PointGeom = result.Point
	entry.PolygonGeom = result.Polygon

	return entry, nil
}

func (p *Parser) extract(t ddbtype.Type, fullPath string) (ddbmeta.Result, error) {
	switch t {
	case ddbtype.GeoImage, ddbtype.Image:
		return p.geoimage.Extract(fullPath)
	case ddbtype.GeoRaster:
		return p.georaster.Extract(fullPath)
	case ddbtype.PointCloud:
		return p.pointcloud.Extract(fullPath)
	case ddbtype.Vector:
		return p.vector.Extract(fullPath)
	default:
		return ddbmeta.Result{Document: ddbmeta.NewDocument()}, nil
	}
}

// NewDirectoryEntry synthesizes a Directory-type entry with the current
// time as mtime, used by createMissingFolders and RepairFolders to
// materialize ancestor directories, per invariant 2.
func NewDirectoryEntry(relPath string) Entry {
	return Entry{
		Path:  relPath,
		Type:  ddbtype.Directory,
		Mtime: time.Now().Unix(),
		Depth: ddbpath.Depth(relPath),
	}
}
