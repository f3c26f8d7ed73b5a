// Package ddbindex implements the index operations from §4.5:
// add/remove/sync/move/list/match and folder synthesis, driving one or
// more ddbparse.Parser calls per operation, consulting and mutating the
// ddbstore.Store, and invoking ddbcache invalidation whenever an entry's
// hash changes or an entry is removed, per §1's control-flow summary.
package ddbindex

import (
	"github.com/dronedb/ddbcore/ddbconfig"
	"github.com/dronedb/ddbcore/ddblog"
	"github.com/dronedb/ddbcore/ddbparse"
	"github.com/dronedb/ddbcore/ddbstore"
)

// Index drives the index operations for a single working tree rooted at
// Root, backed by Store and using Parser for classification/extraction.
type Index struct {
	Root   string
	Store  *ddbstore.Store
	Parser *ddbparse.Parser
	Cfg    *ddbconfig.Config
	Log    *ddblog.Logger
}

// New constructs an Index bound to an already-open Store. cfg may be nil,
// in which case ddbconfig.Default's fallbacks apply.
func New(root string, store *ddbstore.Store, cfg *ddbconfig.Config) *Index {
	cfg = ddbconfig.Default(cfg)
	return &Index{
		Root:   root,
		Store:  store,
		Parser: ddbparse.New(cfg),
		Cfg:    cfg,
		Log:    cfg.Logger,
	}
}

// UpdateStatus is the outcome of checkUpdate for an already-indexed path,
// per §4.5.
type UpdateStatus int

const (
	NotModified UpdateStatus = iota
	Modified
	Deleted
)

func (s UpdateStatus) String() string {
	switch s {
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return "not-modified"
	}
}

// ProgressFunc is invoked once per entry processed by Add. A false return
// cancels the operation: the enclosing transaction is rolled back and Add
// returns ddberrors.ErrCancelled, per §9.
type ProgressFunc func(entry ddbparse.Entry, wasUpdate bool) bool

// RemovedFunc is invoked once per entry matched by Remove, before it is
// scheduled for deletion. A false return cancels the operation the same
// way ProgressFunc does for Add.
type RemovedFunc func(path string) bool
