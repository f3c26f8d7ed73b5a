package ddbindex

import (
	"strings"
	"time"

	"github.com/dronedb/ddbcore/ddberrors"
	"github.com/dronedb/ddbcore/ddbpath"
	"github.com/dronedb/ddbcore/ddbtype"
)

// Move implements §4.5's move operation: renaming or relocating a single
// entry. Files move by deleting any pre-existing row at the destination
// then rewriting the source's path; directories move by rewriting the
// path prefix of every descendant. Ancestor folders at the destination are
// synthesized afterward via createMissingFolders.
func (idx *Index) Move(source, dest string) error {
	sourceRel, err := ddbpath.Rel(idx.Root, source)
	if err != nil {
		return err
	}
	destRel, err := ddbpath.Rel(idx.Root, dest)
	if err != nil {
		return err
	}

	if err := validateMoveEndpoint(sourceRel); err != nil {
		return err
	}
	if err := validateMoveEndpoint(destRel); err != nil {
		return err
	}
	if sourceRel == destRel {
		return nil
	}

	op := idx.Log.Operation("move")

	tx, err := idx.Store.Begin()
	if err != nil {
		return err
	}

	entry, err := tx.Get(sourceRel)
	if err != nil {
		tx.Rollback()
		if err == ddberrors.ErrNotExist {
			return ddberrors.New(ddberrors.KindArgument, "move", sourceRel, ddberrors.ErrInvalidMove)
		}
		return err
	}

	if destEntry, err := tx.Get(destRel); err == nil {
		if entry.Type == ddbtype.Directory || destEntry.Type == ddbtype.Directory {
			tx.Rollback()
			return ddberrors.New(ddberrors.KindArgument, "move", destRel, ddberrors.ErrInvalidMove)
		}
		if err := tx.Delete(destRel); err != nil {
			tx.Rollback()
			return err
		}
	} else if err != ddberrors.ErrNotExist {
		tx.Rollback()
		return err
	}

	if entry.Type == ddbtype.Directory {
		descendants, err := tx.List(sourceRel)
		if err != nil {
			tx.Rollback()
			return err
		}
		for _, d := range descendants {
			if d.Path == sourceRel {
				continue
			}
			newPath := destRel + strings.TrimPrefix(d.Path, sourceRel)
			if err := tx.RewritePath(d.Path, newPath, ddbpath.Depth(newPath)); err != nil {
				tx.Rollback()
				return err
			}
		}
	}

	if err := tx.RewritePath(sourceRel, destRel, ddbpath.Depth(destRel)); err != nil {
		tx.Rollback()
		return err
	}

	if err := createMissingFolders(tx, destRel); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.SetLastEditTime(time.Now().Unix()); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	op.Info("moved %s -> %s", sourceRel, destRel)
	return nil
}

// validateMoveEndpoint rejects move endpoints with a trailing separator or
// a "." / ".." segment, per §4.5's move edge cases.
func validateMoveEndpoint(relPath string) error {
	if relPath == "" {
		return ddberrors.New(ddberrors.KindArgument, "move", relPath, ddberrors.ErrInvalidMove)
	}
	if strings.HasSuffix(relPath, "/") {
		return ddberrors.New(ddberrors.KindArgument, "move", relPath, ddberrors.ErrInvalidMove)
	}
	for _, seg := range strings.Split(relPath, "/") {
		if seg == "." || seg == ".." || seg == "" {
			return ddberrors.New(ddberrors.KindArgument, "move", relPath, ddberrors.ErrInvalidMove)
		}
	}
	return nil
}
