package ddbindex

import (
	"time"

	"github.com/dronedb/ddbcore/ddbparse"
	"github.com/dronedb/ddbcore/ddbpath"
	"github.com/dronedb/ddbcore/ddbstore"
)

// createMissingFolders walks relPath's ancestor chain and synthesizes any
// Directory row missing between it and the root, inserting shallowest
// first so invariant 2 (every ancestor directory exists) holds after each
// insert rather than only at the end.
func createMissingFolders(tx *ddbstore.Tx, relPath string) error {
	var missing []string
	for dir := ddbpath.Dir(relPath); dir != ""; dir = ddbpath.Dir(dir) {
		if tx.HasPath(dir) {
			break
		}
		missing = append(missing, dir)
	}

	for i := len(missing) - 1; i >= 0; i-- {
		if err := tx.Insert(ddbparse.NewDirectoryEntry(missing[i])); err != nil {
			return err
		}
	}
	return nil
}

// RepairFolders scans the whole index for entries whose parent directory
// has no corresponding Directory row and synthesizes one, restoring
// invariant 2 after any operation that might have skipped it (notably a
// crash between a partial add and its folder synthesis). It is exposed as
// a standalone repair pass rather than run implicitly by every operation.
func (idx *Index) RepairFolders() (int, error) {
	tx, err := idx.Store.Begin()
	if err != nil {
		return 0, err
	}

	paths := tx.Paths()
	known := make(map[string]bool, len(paths))
	for _, pt := range paths {
		known[pt.Path] = true
	}

	created := 0
	for _, pt := range paths {
		for dir := ddbpath.Dir(pt.Path); dir != ""; dir = ddbpath.Dir(dir) {
			if known[dir] {
				break
			}
			if err := tx.Insert(ddbparse.NewDirectoryEntry(dir)); err != nil {
				tx.Rollback()
				return created, err
			}
			known[dir] = true
			created++
		}
	}

	if created > 0 {
		if err := tx.SetLastEditTime(time.Now().Unix()); err != nil {
			tx.Rollback()
			return created, err
		}
	}

	return created, tx.Commit()
}
