package ddbindex

import (
	"github.com/dronedb/ddbcore/ddbparse"
	"github.com/dronedb/ddbcore/ddbpath"
)

// List returns path itself (if indexed) plus every descendant beneath it,
// per §4.5's list operation. path is a filesystem path inside the working
// tree, converted with ddbpath.Rel; the root itself converts to "" and
// matches no entry.
func (idx *Index) List(path string) ([]ddbparse.Entry, error) {
	relPath, err := ddbpath.Rel(idx.Root, path)
	if err != nil {
		return nil, err
	}
	return idx.Store.List(relPath)
}

// Match runs a sanitized glob pattern against every indexed path, per
// §4.6. isFolder additionally matches every descendant of each match.
func (idx *Index) Match(pattern string, isFolder bool) ([]ddbparse.Entry, error) {
	return idx.Store.Match(pattern, isFolder)
}
