package ddbindex

import (
	"os"

	"github.com/dronedb/ddbcore/ddbhash"
	"github.com/dronedb/ddbcore/ddbparse"
	"github.com/dronedb/ddbcore/ddbtype"
)

// checkUpdate implements §4.5's checkUpdate: mtime-first change detection
// for an already-indexed entry. Hashing only happens when mtime disagrees
// with the stored value — §8's documented cost trade-off: content changed
// with mtime held constant is invisible to add/sync, by design.
func (idx *Index) checkUpdate(existing *ddbparse.Entry, fullPath string) (UpdateStatus, error) {
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Deleted, nil
		}
		return NotModified, err
	}

	if existing.Type == ddbtype.Directory {
		return NotModified, nil
	}

	mtime := info.ModTime().Unix()
	if mtime == existing.Mtime {
		return NotModified, nil
	}

	hash, err := ddbhash.File(fullPath, idx.Cfg.HashChunkSize)
	if err != nil {
		return NotModified, err
	}
	if hash == existing.Hash {
		return NotModified, nil
	}

	return Modified, nil
}
