// Package ddb is the library-facing API: it resolves a working tree,
// wires together ddbstore, ddbindex, ddbparse and ddbcache, and exposes
// the index operations from §4.5 plus the derived-artifact lookups from
// §4.7 as methods on a single WorkingTree handle. It mirrors the
// teacher's top-level VirtualFileSystem: one RWMutex-guarded struct
// dispatching every operation, constructed with functional options.
package ddb

import (
	"sync"

	"github.com/dronedb/ddbcore/ddbcache"
	"github.com/dronedb/ddbcore/ddbconfig"
	"github.com/dronedb/ddbcore/ddberrors"
	"github.com/dronedb/ddbcore/ddbindex"
	"github.com/dronedb/ddbcore/ddbparse"
	"github.com/dronedb/ddbcore/ddbpath"
	"github.com/dronedb/ddbcore/ddbstore"
)

// WorkingTree is a handle to a single local, content-addressed index
// rooted at Root. It is not safe to share a WorkingTree across
// concurrently running processes pointed at the same root — per §5, the
// single-writer guarantee is enforced in-process by ddbstore.Store's
// exclusive transaction, not by any cross-process lock.
type WorkingTree struct {
	mu sync.RWMutex

	root      string
	store     *ddbstore.Store
	index     *ddbindex.Index
	cfg       *ddbconfig.Config
	cacheRoot string
}

// InitIndex creates a new working tree at dir: a .ddb marker directory
// holding dbase.sqlite, per §4.4's init operation. fromScratch is accepted
// for API parity with the original initIndex(dir, fromScratch) signature;
// ddbstore.Init always builds the schema directly since there is no
// bundled template database to copy.
func InitIndex(dir string, fromScratch bool, cfg *ddbconfig.Config, opts ...Option) (*WorkingTree, error) {
	cfg = applyOptions(cfg, opts)

	dbPath, err := ddbstore.Init(dir, fromScratch)
	if err != nil {
		return nil, err
	}

	return openAt(dir, dbPath, cfg)
}

// OpenWorkingTree locates an existing working tree starting at dir. If
// traverseUp is true, ancestor directories are searched until a .ddb
// marker is found or the filesystem root is reached, per §4.4.
func OpenWorkingTree(dir string, traverseUp bool, cfg *ddbconfig.Config, opts ...Option) (*WorkingTree, error) {
	cfg = applyOptions(cfg, opts)

	root, dbPath, err := ddbstore.Locate(dir, traverseUp)
	if err != nil {
		return nil, err
	}

	return openAt(root, dbPath, cfg)
}

func openAt(root, dbPath string, cfg *ddbconfig.Config) (*WorkingTree, error) {
	store, err := ddbstore.Open(dbPath)
	if err != nil {
		return nil, err
	}

	cacheRoot, err := ddbcache.UserCacheRoot(cfg.CacheDir)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &WorkingTree{
		root:      root,
		store:     store,
		index:     ddbindex.New(root, store, cfg),
		cfg:       cfg,
		cacheRoot: cacheRoot,
	}, nil
}

// Root returns the working tree's absolute root directory.
func (t *WorkingTree) Root() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

// ParseFiles classifies and extracts metadata for paths without touching
// the index, per §4.3 — used by callers that want a dry-run preview of
// what add() would record.
func (t *WorkingTree) ParseFiles(paths []string, computeHash bool) ([]ddbparse.Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entries := make([]ddbparse.Entry, 0, len(paths))
	for _, p := range paths {
		entry, err := t.index.Parser.Parse(t.root, p, computeHash)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// AddToIndex implements §4.5's add operation.
func (t *WorkingTree) AddToIndex(paths []string, onProgress ddbindex.ProgressFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index.Add(paths, onProgress)
}

// RemoveFromIndex implements §4.5's remove operation.
func (t *WorkingTree) RemoveFromIndex(paths []string, onRemoved ddbindex.RemovedFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index.Remove(paths, onRemoved)
}

// SyncIndex implements §4.5's sync operation.
func (t *WorkingTree) SyncIndex() ([]ddbindex.SyncResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index.Sync()
}

// MoveEntry implements §4.5's move operation.
func (t *WorkingTree) MoveEntry(source, dest string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index.Move(source, dest)
}

// List implements §4.5's list operation.
func (t *WorkingTree) List(path string) ([]ddbparse.Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.index.List(path)
}

// Match implements §4.5's match operation with §4.6's glob sanitization.
func (t *WorkingTree) Match(pattern string, isFolder bool) ([]ddbparse.Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.index.Match(pattern, isFolder)
}

// RepairFolders synthesizes any Directory rows missing between an indexed
// entry and the root, restoring invariant 2.
func (t *WorkingTree) RepairFolders() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.index.RepairFolders()
}

// GetThumbnail resolves the content-addressed cache path for a thumbnail
// of imagePath at the given edge size, per §4.7. If a fresh cached copy
// already exists (its cache mtime is at least mtime and forceRecreate is
// false) its path is returned directly. Otherwise the path is returned
// alongside ddberrors.ErrNotExist: the thumbnail producer — an external
// collaborator per §1 — is expected to render the image and publish it to
// that path via ddbcache.AtomicPublish.
func (t *WorkingTree) GetThumbnail(imagePath string, mtime int64, size int, forceRecreate bool) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	relPath, err := ddbpath.Rel(t.root, imagePath)
	if err != nil {
		return "", err
	}
	entry, err := t.index.Store.Get(relPath)
	if err != nil {
		return "", err
	}
	if entry.Hash == "" {
		return "", ddberrors.New(ddberrors.KindArgument, "get-thumbnail", imagePath, ddberrors.ErrInvalidArgument)
	}

	key := ddbcache.ThumbnailKey(entry.Hash, size)
	path := ddbcache.ThumbnailPath(t.cacheRoot, key)

	if !forceRecreate && cacheFresh(path, mtime) {
		return path, nil
	}
	return path, ddberrors.New(ddberrors.KindApp, "get-thumbnail", path, ddberrors.ErrNotExist)
}

// GetTile resolves the content-addressed cache path for a single z/x/y map
// tile rendered from geotiffPath, per §4.7. Follows the same
// cached-vs-needs-production contract as GetThumbnail.
func (t *WorkingTree) GetTile(geotiffPath string, z, x, y, tileSize int, tms, forceRecreate bool) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	relPath, err := ddbpath.Rel(t.root, geotiffPath)
	if err != nil {
		return "", err
	}
	entry, err := t.index.Store.Get(relPath)
	if err != nil {
		return "", err
	}
	if entry.Hash == "" {
		return "", ddberrors.New(ddberrors.KindArgument, "get-tile", geotiffPath, ddberrors.ErrInvalidArgument)
	}

	key := ddbcache.TileKey(entry.Hash, z, x, y, tileSize, tms)
	path := ddbcache.TilePath(t.cacheRoot, key)

	if !forceRecreate && cacheFresh(path, 0) {
		return path, nil
	}
	return path, ddberrors.New(ddberrors.KindApp, "get-tile", path, ddberrors.ErrNotExist)
}

// Close releases the underlying store handle.
func (t *WorkingTree) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Close()
}
