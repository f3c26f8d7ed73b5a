package ddbindex

import (
	"path/filepath"
	"time"

	"github.com/dronedb/ddbcore/ddbcache"
)

// SyncResult reports what sync did to a single path, per §4.5's D/U status
// lines.
type SyncResult struct {
	Path   string
	Status UpdateStatus
}

// Sync implements §4.5's sync operation: walk every indexed entry,
// re-run checkUpdate against the filesystem, delete the ones that vanished
// and re-parse the ones that changed. Unlike Add, sync never consults
// getIndexPathList — the index itself is the source of truth for what to
// check.
func (idx *Index) Sync() ([]SyncResult, error) {
	op := idx.Log.Operation("sync")

	tx, err := idx.Store.Begin()
	if err != nil {
		return nil, err
	}

	entries, err := tx.All()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var results []SyncResult
	changed := 0

	for _, existing := range entries {
		fullPath := filepath.Join(idx.Root, existing.Path)

		status, err := idx.checkUpdate(&existing, fullPath)
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		switch status {
		case NotModified:
			continue

		case Deleted:
			if err := tx.Delete(existing.Path); err != nil {
				tx.Rollback()
				return nil, err
			}
			if existing.Hash != "" {
				if err := ddbcache.Invalidate(idx.Root, existing.Hash); err != nil {
					tx.Rollback()
					return nil, err
				}
			}
			results = append(results, SyncResult{Path: existing.Path, Status: Deleted})
			op.Info("D\t%s", existing.Path)
			changed++

		case Modified:
			updated, err := idx.Parser.Parse(idx.Root, fullPath, true)
			if err != nil {
				tx.Rollback()
				return nil, err
			}
			if existing.Hash != "" && existing.Hash != updated.Hash {
				if err := ddbcache.Invalidate(idx.Root, existing.Hash); err != nil {
					tx.Rollback()
					return nil, err
				}
			}
			if err := tx.Update(updated); err != nil {
				tx.Rollback()
				return nil, err
			}
			results = append(results, SyncResult{Path: existing.Path, Status: Modified})
			op.Info("U\t%s", existing.Path)
			changed++
		}
	}

	if changed > 0 {
		if err := tx.SetLastEditTime(time.Now().Unix()); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	op.Info("sync complete: %d change(s)", changed)
	return results, nil
}
