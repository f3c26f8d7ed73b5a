// Package ddbstore implements the index store facade from §4.4: typed
// queries over the relational store, schema verification and migration,
// and the transaction scope every mutating ddbindex operation runs inside.
// The spatial extension able to parse WKT into native geometry columns is
// an external collaborator per §1; ddbstore stores geometries as WKT TEXT
// and leans on ddbgeo for the codec.
package ddbstore

import (
	"database/sql"
	"sync"

	"github.com/tidwall/btree"
	_ "modernc.org/sqlite" // pure-Go SQLite driver, no cgo

	"github.com/dronedb/ddbcore/ddberrors"
	"github.com/dronedb/ddbcore/ddbtype"
)

// CurrentSchemaVersion is the schema revision ddbstore.Open migrates to.
const CurrentSchemaVersion = 1

// Store wraps a working tree's SQLite database with an in-memory path
// B-tree kept warm after Open, mirroring the teacher's three-layer
// SQLiteBackend architecture: the B-tree answers path-membership and
// type lookups in O(log n) without a round trip during bulk
// add/sync walks, while SQLite remains the single source of truth.
type Store struct {
	mu   sync.RWMutex
	db   *sql.DB
	tree *btree.Map[string, ddbtype.Type]
}

// Open connects to the SQLite database at dbPath, verifies/migrates its
// schema, and warms the in-memory path index. dbPath may be ":memory:" for
// ephemeral test stores.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, ddberrors.New(ddberrors.KindStore, "open", dbPath, err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, ddberrors.New(ddberrors.KindStore, "open", dbPath, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, ddberrors.New(ddberrors.KindStore, "open", dbPath, err)
	}

	s := &Store{
		db:   db,
		tree: btree.NewMap[string, ddbtype.Type](0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	if err := s.warm(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// warm loads every entry's path and type into the in-memory B-tree.
func (s *Store) warm() error {
	rows, err := s.db.Query("SELECT path, type FROM entries")
	if err != nil {
		return ddberrors.New(ddberrors.KindStore, "warm", "", err)
	}
	defer rows.Close()

	for rows.Next() {
		var path string
		var typ int
		if err := rows.Scan(&path, &typ); err != nil {
			return ddberrors.New(ddberrors.KindStore, "warm", "", err)
		}
		s.tree.Set(path, ddbtype.Type(typ))
	}
	return rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Clear()
	return s.db.Close()
}

// HasPath reports whether path is present, consulting the warm B-tree
// rather than issuing a query.
func (s *Store) HasPath(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tree.Get(path)
	return ok
}

// TypeOf returns the type recorded for path and whether it is present.
func (s *Store) TypeOf(path string) (ddbtype.Type, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Get(path)
}

// HasPath is the transaction-scoped equivalent of Store.HasPath, reading
// the warm B-tree directly since the Tx already holds the Store's write
// lock and no concurrent mutation can be in flight.
func (t *Tx) HasPath(path string) bool {
	_, ok := t.store.tree.Get(path)
	return ok
}

// TypeOf is the transaction-scoped equivalent of Store.TypeOf.
func (t *Tx) TypeOf(path string) (ddbtype.Type, bool) {
	return t.store.tree.Get(path)
}

// Paths returns every known path with its type, in ascending lexicographic
// order — the live view ddbindex's RepairFolders scans to restore
// invariant 2 without a query round trip.
func (t *Tx) Paths() []PathType {
	var out []PathType
	t.store.tree.Scan(func(path string, typ ddbtype.Type) bool {
		out = append(out, PathType{Path: path, Type: typ})
		return true
	})
	return out
}

type PathType struct {
	Path string
	Type ddbtype.Type
}

// Tx is a single exclusive transaction scope, held for the duration of a
// mutating ddbindex operation. Only one Tx may be open on a Store at a
// time: Begin takes the Store's write lock and releases it on Commit or
// Rollback, giving the single-writer-per-working-tree guarantee from §5
// without relying on SQLite's own locking. Store-level reads take the
// read side of the same lock, so they wait until the open Tx ends.
type Tx struct {
	store *Store
	tx    *sql.Tx
	done  bool
}

// Begin starts an exclusive transaction. Every write inside the returned
// Tx must go through its methods, not the Store's directly.
func (s *Store) Begin() (*Tx, error) {
	s.mu.Lock()

	tx, err := s.db.Begin()
	if err != nil {
		s.mu.Unlock()
		return nil, ddberrors.New(ddberrors.KindStore, "begin", "", err)
	}

	return &Tx{store: s, tx: tx}, nil
}

// Commit commits the transaction and releases the Store's write lock.
func (t *Tx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.store.mu.Unlock()

	if err := t.tx.Commit(); err != nil {
		return ddberrors.New(ddberrors.KindStore, "commit", "", err)
	}
	return nil
}

// Rollback aborts the transaction and releases the Store's write lock. It
// is the mechanism behind §9's fix for callback-cancellation: a false
// return from a caller's add/remove callback rolls back everything done so
// far in the current Tx instead of committing a partial result.
//
// Insert/Update/Delete/RewritePath apply their in-memory B-tree mutation
// optimistically as they run, ahead of Commit; a Rollback must therefore
// re-warm the B-tree from the database to discard whatever speculative
// mutations happened during the aborted transaction.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.store.mu.Unlock()

	if err := t.tx.Rollback(); err != nil {
		return ddberrors.New(ddberrors.KindStore, "rollback", "", err)
	}

	t.store.tree.Clear()
	return t.store.warm()
}
