package ddbindex

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/dronedb/ddbcore/ddbcache"
	"github.com/dronedb/ddbcore/ddberrors"
	"github.com/dronedb/ddbcore/ddbparse"
	"github.com/dronedb/ddbcore/ddbpath"
	"github.com/dronedb/ddbcore/ddbstore"
)

type addKind int

const (
	addInsert addKind = iota
	addUpdate
)

type addWorkItem struct {
	kind          addKind
	relPath       string
	fullPath      string
	previousHash  string
	entry         ddbparse.Entry
	err           error
}

// Add implements §4.5's add operation: expand inputs via getIndexPathList,
// classify each against the existing index with checkUpdate, hash/extract
// the ones that changed through a bounded worker pool, then apply every
// insert/update sequentially inside one exclusive transaction.
func (idx *Index) Add(paths []string, onProgress ProgressFunc) error {
	if idx.Cfg.MaxRecursionDepth < 0 {
		return ddberrors.New(ddberrors.KindArgument, "add", "", ddberrors.ErrInvalidArgument)
	}

	fullPaths, err := getIndexPathList(idx.Root, paths, idx.Cfg.MaxRecursionDepth)
	if err != nil {
		return err
	}

	op := idx.Log.Operation("add")

	tx, err := idx.Store.Begin()
	if err != nil {
		return err
	}

	items, err := idx.planAddWork(tx, fullPaths)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := idx.runAddWorkers(items); err != nil {
		tx.Rollback()
		return err
	}

	changed := 0
	var totalSize int64
	for _, item := range items {
		if item.err != nil {
			op.Warn("skip %s: %v", item.relPath, item.err)
			continue
		}

		switch item.kind {
		case addInsert:
			if err := tx.Insert(item.entry); err != nil {
				tx.Rollback()
				return err
			}
		case addUpdate:
			if item.previousHash != "" && item.previousHash != item.entry.Hash {
				if err := ddbcache.Invalidate(idx.Root, item.previousHash); err != nil {
					tx.Rollback()
					return err
				}
			}
			if err := tx.Update(item.entry); err != nil {
				tx.Rollback()
				return err
			}
		}
		changed++
		totalSize += item.entry.Size

		if onProgress != nil && !onProgress(item.entry, item.kind == addUpdate) {
			tx.Rollback()
			return ddberrors.ErrCancelled
		}
	}

	if changed > 0 {
		if err := tx.SetLastEditTime(time.Now().Unix()); err != nil {
			tx.Rollback()
			return err
		}
	}

	op.Info("processed %d path(s), %d change(s), %s", len(fullPaths), changed, humanize.Bytes(uint64(totalSize)))
	return tx.Commit()
}

// planAddWork looks up each collected path against the transaction's view
// of the store and decides whether it needs inserting, updating, or
// skipping (NotModified, Deleted-pending-sync, or a corrupt backslash
// segment per §4.5).
func (idx *Index) planAddWork(tx *ddbstore.Tx, fullPaths []string) ([]*addWorkItem, error) {
	var items []*addWorkItem

	for _, fullPath := range fullPaths {
		relPath, err := ddbpath.Rel(idx.Root, fullPath)
		if err != nil {
			return nil, err
		}
		if ddbpath.HasBackslashSegment(ddbpath.Base(relPath)) {
			continue // corrupt foreign-OS entry, silently skipped per §4.5
		}

		existing, err := tx.Get(relPath)
		if err == ddberrors.ErrNotExist {
			items = append(items, &addWorkItem{kind: addInsert, relPath: relPath, fullPath: fullPath})
			continue
		}
		if err != nil {
			return nil, err
		}

		status, err := idx.checkUpdate(existing, fullPath)
		if err != nil {
			return nil, err
		}

		switch status {
		case Deleted, NotModified:
			continue
		case Modified:
			items = append(items, &addWorkItem{
				kind:         addUpdate,
				relPath:      relPath,
				fullPath:     fullPath,
				previousHash: existing.Hash,
			})
		}
	}

	return items, nil
}

// runAddWorkers hashes and extracts metadata for every planned item
// through a bounded worker pool (golang.org/x/sync/errgroup), per
// SPEC_FULL.md §4.5. Workers only touch the filesystem; store writes
// happen afterward on the caller's goroutine.
func (idx *Index) runAddWorkers(items []*addWorkItem) error {
	if len(items) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(context.Background())
	if idx.Cfg.Workers > 0 {
		g.SetLimit(idx.Cfg.Workers)
	} else {
		g.SetLimit(1)
	}

	for _, item := range items {
		item := item
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			entry, err := idx.Parser.Parse(idx.Root, item.fullPath, true)
			if err != nil {
				item.err = err
				return nil
			}
			item.entry = entry
			return nil
		})
	}

	return g.Wait()
}
