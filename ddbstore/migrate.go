package ddbstore

import (
	"database/sql"

	"github.com/dronedb/ddbcore/ddberrors"
)

// migration upgrades the schema from one revision to the next inside a
// single transaction, per §4.4's "run the registered migrations to reach
// the current schema before returning a usable handle".
type migration struct {
	from, to int
	apply    func(*sql.Tx) error
}

var migrations = []migration{
	{
		from: 0,
		to:   1,
		apply: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS entries (
					path         TEXT PRIMARY KEY,
					hash         TEXT NOT NULL DEFAULT '',
					type         INTEGER NOT NULL,
					meta         TEXT,
					mtime        INTEGER NOT NULL DEFAULT 0,
					size         INTEGER NOT NULL DEFAULT 0,
					depth        INTEGER NOT NULL DEFAULT 0,
					point_geom   TEXT,
					polygon_geom TEXT
				);
				CREATE INDEX IF NOT EXISTS idx_entries_depth ON entries(depth);

				CREATE TABLE IF NOT EXISTS ddb_meta (
					id             INTEGER PRIMARY KEY CHECK (id = 0),
					last_edit_time INTEGER NOT NULL DEFAULT 0,
					schema_version INTEGER NOT NULL DEFAULT 0
				);
				INSERT OR IGNORE INTO ddb_meta (id, last_edit_time, schema_version) VALUES (0, 0, 0);
			`)
			return err
		},
	},
}

// migrate verifies the entries/ddb_meta tables exist and brings the schema
// up to CurrentSchemaVersion by applying every pending migration in a
// single transaction, per §4.4. Both InitIndex's from-scratch path and its
// template-copy path must yield the result of running these same
// migrations, so there is exactly one schema definition in the codebase.
func (s *Store) migrate() error {
	version, err := s.schemaVersion()
	if err != nil {
		return err
	}

	if version == CurrentSchemaVersion {
		return nil
	}
	if version > CurrentSchemaVersion {
		return ddberrors.New(ddberrors.KindStore, "migrate", "", ddberrors.ErrSchemaUnmigratable)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return ddberrors.New(ddberrors.KindStore, "migrate", "", err)
	}
	defer tx.Rollback()

	for _, m := range migrations {
		if m.from < version {
			continue
		}
		if m.from != version {
			return ddberrors.New(ddberrors.KindStore, "migrate", "", ddberrors.ErrSchemaUnmigratable)
		}
		if err := m.apply(tx); err != nil {
			return ddberrors.New(ddberrors.KindStore, "migrate", "", err)
		}
		version = m.to
	}

	if version != CurrentSchemaVersion {
		return ddberrors.New(ddberrors.KindStore, "migrate", "", ddberrors.ErrSchemaUnmigratable)
	}

	if _, err := tx.Exec(`
		INSERT INTO ddb_meta (id, last_edit_time, schema_version) VALUES (0, 0, ?)
		ON CONFLICT(id) DO UPDATE SET schema_version = excluded.schema_version
	`, version); err != nil {
		return ddberrors.New(ddberrors.KindStore, "migrate", "", err)
	}

	if err := tx.Commit(); err != nil {
		return ddberrors.New(ddberrors.KindStore, "migrate", "", err)
	}
	return nil
}

// schemaVersion returns the stored schema_version, or 0 if ddb_meta does
// not exist yet (a brand-new database).
func (s *Store) schemaVersion() (int, error) {
	var exists int
	err := s.db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='ddb_meta'`).Scan(&exists)
	if err != nil {
		return 0, ddberrors.New(ddberrors.KindStore, "schema-version", "", err)
	}
	if exists == 0 {
		return 0, nil
	}

	var version int
	err = s.db.QueryRow(`SELECT schema_version FROM ddb_meta WHERE id = 0`).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, ddberrors.New(ddberrors.KindStore, "schema-version", "", err)
	}
	return version, nil
}

// LastEditTime returns the stored last-edit timestamp, seconds since epoch.
func (s *Store) LastEditTime() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t int64
	err := s.db.QueryRow(`SELECT last_edit_time FROM ddb_meta WHERE id = 0`).Scan(&t)
	if err != nil {
		return 0, ddberrors.New(ddberrors.KindStore, "last-edit-time", "", err)
	}
	return t, nil
}

// SetLastEditTime updates the last-edit timestamp inside tx. Every
// mutating operation that makes at least one change calls this before
// Commit, per §4.5.
func (t *Tx) SetLastEditTime(seconds int64) error {
	_, err := t.tx.Exec(`UPDATE ddb_meta SET last_edit_time = ? WHERE id = 0`, seconds)
	if err != nil {
		return ddberrors.New(ddberrors.KindStore, "set-last-edit-time", "", err)
	}
	return nil
}
