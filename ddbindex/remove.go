package ddbindex

import (
	"time"

	"github.com/dronedb/ddbcore/ddbcache"
	"github.com/dronedb/ddbcore/ddberrors"
	"github.com/dronedb/ddbcore/ddbpath"
)

type removeTarget struct {
	path string
	hash string
}

// Remove implements §4.5's remove operation: every input path is resolved
// relative to the root and matched exactly plus, for directories, every
// descendant beneath it. At least one match is required, per the
// ErrNoMatch edge case; everything else runs inside one exclusive
// transaction with the same cancel-and-rollback contract as Add.
func (idx *Index) Remove(paths []string, onRemoved RemovedFunc) error {
	op := idx.Log.Operation("remove")

	tx, err := idx.Store.Begin()
	if err != nil {
		return err
	}

	seen := make(map[string]bool)
	var invalidate []string
	matched := 0

	for _, input := range paths {
		relPath, err := ddbpath.Rel(idx.Root, input)
		if err != nil {
			tx.Rollback()
			return err
		}

		entry, err := tx.Get(relPath)
		if err == ddberrors.ErrNotExist {
			continue
		}
		if err != nil {
			tx.Rollback()
			return err
		}

		descendants, err := tx.List(relPath)
		if err != nil {
			tx.Rollback()
			return err
		}

		targets := []removeTarget{{path: entry.Path, hash: entry.Hash}}
		for _, d := range descendants {
			if d.Path == entry.Path {
				continue
			}
			targets = append(targets, removeTarget{path: d.Path, hash: d.Hash})
		}

		// Delete deepest-first so a directory row never outlives its
		// children mid-transaction.
		for i := len(targets) - 1; i >= 0; i-- {
			target := targets[i]
			if seen[target.path] {
				continue
			}
			seen[target.path] = true

			if onRemoved != nil && !onRemoved(target.path) {
				tx.Rollback()
				return ddberrors.ErrCancelled
			}

			if err := tx.Delete(target.path); err != nil {
				tx.Rollback()
				return err
			}
			matched++
			if target.hash != "" {
				invalidate = append(invalidate, target.hash)
			}
		}
	}

	if matched == 0 {
		tx.Rollback()
		return ddberrors.ErrNoMatch
	}

	if err := tx.SetLastEditTime(time.Now().Unix()); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for _, hash := range invalidate {
		if err := ddbcache.Invalidate(idx.Root, hash); err != nil {
			op.Warn("cache invalidation failed for %s: %v", hash, err)
		}
	}

	op.Info("removed %d entr(y/ies)", matched)
	return nil
}
