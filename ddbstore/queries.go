package ddbstore

import (
	"database/sql"
	"strings"

	"github.com/dronedb/ddbcore/ddberrors"
	"github.com/dronedb/ddbcore/ddbgeo"
	"github.com/dronedb/ddbcore/ddbmeta"
	"github.com/dronedb/ddbcore/ddbparse"
	"github.com/dronedb/ddbcore/ddbtype"
)

// querier is satisfied by both *sql.DB and *sql.Tx. Store-level methods
// lock s.mu and query through s.db; Tx-level methods query directly
// through the already-exclusive t.tx with no extra locking — the two
// never nest, which is what keeps a transaction's own reads from
// deadlocking against the write lock it holds.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

const entryColumns = `path, hash, type, meta, mtime, size, depth, point_geom, polygon_geom`

func getEntry(q querier, path string) (*ddbparse.Entry, error) {
	row := q.QueryRow(`SELECT `+entryColumns+` FROM entries WHERE path = ?`, path)
	return scanEntry(row)
}

func listEntries(q querier, path string) ([]ddbparse.Entry, error) {
	prefix := escapeLike(path) + "//%"
	rows, err := q.Query(`
		SELECT `+entryColumns+` FROM entries WHERE path = ? OR path LIKE ? ESCAPE '/'
		ORDER BY path
	`, path, prefix)
	if err != nil {
		return nil, ddberrors.New(ddberrors.KindStore, "list", path, err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func matchEntries(q querier, pattern string, isFolder bool) ([]ddbparse.Entry, error) {
	sanitized := SanitizeLikePattern(pattern)
	if isFolder {
		sanitized += "//%"
	}

	rows, err := q.Query(`
		SELECT `+entryColumns+` FROM entries WHERE path LIKE ? ESCAPE '/'
		ORDER BY path
	`, sanitized)
	if err != nil {
		return nil, ddberrors.New(ddberrors.KindStore, "match", pattern, err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func allEntries(q querier) ([]ddbparse.Entry, error) {
	rows, err := q.Query(`SELECT ` + entryColumns + ` FROM entries ORDER BY rowid`)
	if err != nil {
		return nil, ddberrors.New(ddberrors.KindStore, "all", "", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Get looks up a single entry by path. Returns ddberrors.ErrNotExist if
// absent.
func (s *Store) Get(path string) (*ddbparse.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getEntry(s.db, path)
}

// List returns every entry whose path equals path or begins with "path/",
// per §4.5's list operation.
func (s *Store) List(path string) ([]ddbparse.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listEntries(s.db, path)
}

// Match runs the sanitized LIKE pattern from §4.6 against path, extending
// it with "//%" when isFolder to also match descendants.
func (s *Store) Match(pattern string, isFolder bool) ([]ddbparse.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return matchEntries(s.db, pattern, isFolder)
}

// All returns every entry in the store's natural row order (rowid order),
// per §5's ordering guarantee for sync.
func (s *Store) All() ([]ddbparse.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return allEntries(s.db)
}

// Get is the transaction-scoped equivalent of Store.Get, used by ddbindex
// operations that already hold the exclusive Tx lock.
func (t *Tx) Get(path string) (*ddbparse.Entry, error) {
	return getEntry(t.tx, path)
}

// List is the transaction-scoped equivalent of Store.List.
func (t *Tx) List(path string) ([]ddbparse.Entry, error) {
	return listEntries(t.tx, path)
}

// Match is the transaction-scoped equivalent of Store.Match.
func (t *Tx) Match(pattern string, isFolder bool) ([]ddbparse.Entry, error) {
	return matchEntries(t.tx, pattern, isFolder)
}

// All is the transaction-scoped equivalent of Store.All.
func (t *Tx) All() ([]ddbparse.Entry, error) {
	return allEntries(t.tx)
}

func scanEntry(row *sql.Row) (*ddbparse.Entry, error) {
	var (
		path, hash           string
		typ                  int
		meta                 sql.NullString
		mtime, size          int64
		depth                int
		pointWKT, polygonWKT sql.NullString
	)

	if err := row.Scan(&path, &hash, &typ, &meta, &mtime, &size, &depth, &pointWKT, &polygonWKT); err != nil {
		if err == sql.ErrNoRows {
			return nil, ddberrors.ErrNotExist
		}
		return nil, ddberrors.New(ddberrors.KindStore, "scan-entry", path, err)
	}

	e := &ddbparse.Entry{
		Path:  path,
		Hash:  hash,
		Type:  ddbtype.Type(typ),
		Mtime: mtime,
		Size:  size,
		Depth: depth,
	}

	if meta.Valid {
		doc, err := ddbmeta.ParseDocument([]byte(meta.String))
		if err != nil {
			return nil, ddberrors.New(ddberrors.KindStore, "scan-entry", path, err)
		}
		e.Meta = doc
	}

	if pointWKT.Valid && pointWKT.String != "" {
		p, _, err := ddbgeo.ParseWKT(pointWKT.String)
		if err != nil {
			return nil, ddberrors.New(ddberrors.KindStore, "scan-entry", path, err)
		}
		e.PointGeom = p
	}
	if polygonWKT.Valid && polygonWKT.String != "" {
		_, poly, err := ddbgeo.ParseWKT(polygonWKT.String)
		if err != nil {
			return nil, ddberrors.New(ddberrors.KindStore, "scan-entry", path, err)
		}
		e.PolygonGeom = poly
	}

	return e, nil
}

func scanEntries(rows *sql.Rows) ([]ddbparse.Entry, error) {
	var out []ddbparse.Entry
	for rows.Next() {
		var (
			path, hash           string
			typ                  int
			meta                 sql.NullString
			mtime, size          int64
			depth                int
			pointWKT, polygonWKT sql.NullString
		)
		if err := rows.Scan(&path, &hash, &typ, &meta, &mtime, &size, &depth, &pointWKT, &polygonWKT); err != nil {
			return nil, ddberrors.New(ddberrors.KindStore, "scan-entries", "", err)
		}

		e := ddbparse.Entry{
			Path:  path,
			Hash:  hash,
			Type:  ddbtype.Type(typ),
			Mtime: mtime,
			Size:  size,
			Depth: depth,
		}
		if meta.Valid {
			doc, err := ddbmeta.ParseDocument([]byte(meta.String))
			if err != nil {
				return nil, ddberrors.New(ddberrors.KindStore, "scan-entries", path, err)
			}
			e.Meta = doc
		}
		if pointWKT.Valid && pointWKT.String != "" {
			p, _, err := ddbgeo.ParseWKT(pointWKT.String)
			if err == nil {
				e.PointGeom = p
			}
		}
		if polygonWKT.Valid && polygonWKT.String != "" {
			_, poly, err := ddbgeo.ParseWKT(polygonWKT.String)
			if err == nil {
				e.PolygonGeom = poly
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func metaText(doc ddbmeta.Document) any {
	if doc == nil {
		return nil
	}
	raw, err := doc.MarshalText()
	if err != nil {
		return nil
	}
	return string(raw)
}

func geomText(wkt string) any {
	if wkt == "" {
		return nil
	}
	return wkt
}

// Insert adds a new entry row inside tx. It does not check that ancestor
// directories exist (invariant 2); ddbindex inserts any missing ancestors
// within the same transaction (add appends them after the paths it
// collected, move goes through createMissingFolders).
func (t *Tx) Insert(e ddbparse.Entry) error {
	pointWKT, polygonWKT := "", ""
	if e.PointGeom != nil {
		pointWKT = e.PointGeom.WKT()
	}
	if e.PolygonGeom != nil {
		polygonWKT = e.PolygonGeom.WKT()
	}

	_, err := t.tx.Exec(`
		INSERT INTO entries (path, hash, type, meta, mtime, size, depth, point_geom, polygon_geom)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Path, e.Hash, int(e.Type), metaText(e.Meta), e.Mtime, e.Size, e.Depth, geomText(pointWKT), geomText(polygonWKT))
	if err != nil {
		return ddberrors.New(ddberrors.KindStore, "insert", e.Path, err)
	}

	t.store.tree.Set(e.Path, e.Type)
	return nil
}

// Update overwrites an existing entry row inside tx (upsert semantics for
// add's Modified case and sync's re-parse case).
func (t *Tx) Update(e ddbparse.Entry) error {
	pointWKT, polygonWKT := "", ""
	if e.PointGeom != nil {
		pointWKT = e.PointGeom.WKT()
	}
	if e.PolygonGeom != nil {
		polygonWKT = e.PolygonGeom.WKT()
	}

	_, err := t.tx.Exec(`
		UPDATE entries
		SET hash = ?, type = ?, meta = ?, mtime = ?, size = ?, depth = ?, point_geom = ?, polygon_geom = ?
		WHERE path = ?
	`, e.Hash, int(e.Type), metaText(e.Meta), e.Mtime, e.Size, e.Depth, geomText(pointWKT), geomText(polygonWKT), e.Path)
	if err != nil {
		return ddberrors.New(ddberrors.KindStore, "update", e.Path, err)
	}

	t.store.tree.Set(e.Path, e.Type)
	return nil
}

// Delete removes a single entry row inside tx.
func (t *Tx) Delete(path string) error {
	_, err := t.tx.Exec(`DELETE FROM entries WHERE path = ?`, path)
	if err != nil {
		return ddberrors.New(ddberrors.KindStore, "delete", path, err)
	}
	t.store.tree.Delete(path)
	return nil
}

// RewritePath changes an entry's path and depth inside tx, used by move.
func (t *Tx) RewritePath(oldPath, newPath string, newDepth int) error {
	_, err := t.tx.Exec(`UPDATE entries SET path = ?, depth = ? WHERE path = ?`, newPath, newDepth, oldPath)
	if err != nil {
		return ddberrors.New(ddberrors.KindStore, "rewrite-path", oldPath, err)
	}

	if typ, ok := t.store.tree.Get(oldPath); ok {
		t.store.tree.Delete(oldPath)
		t.store.tree.Set(newPath, typ)
	}
	return nil
}

// SanitizeLikePattern applies §4.6's substitution order — '/' -> '//',
// '%' -> '/%', '_' -> '/_', then the glob-to-LIKE '*' -> '%' — using '/' as
// the LIKE ESCAPE character. An empty result becomes "%".
func SanitizeLikePattern(pattern string) string {
	var b strings.Builder
	for _, r := range pattern {
		switch r {
		case '/':
			b.WriteString("//")
		case '%':
			b.WriteString("/%")
		case '_':
			b.WriteString("/_")
		case '*':
			b.WriteByte('%')
		default:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		return "%"
	}
	return out
}

// escapeLike sanitizes a literal path (no glob characters expected) for use
// as a LIKE prefix operand, reusing the same '/' escape convention.
func escapeLike(literal string) string {
	return strings.NewReplacer("/", "//", "%", "/%", "_", "/_").Replace(literal)
}
