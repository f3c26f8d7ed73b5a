package ddbstore

import (
	"os"
	"path/filepath"

	"github.com/dronedb/ddbcore/ddberrors"
	"github.com/dronedb/ddbcore/ddbpath"
)

// Locate finds the working-tree marker starting at dir. If traverseUp is
// true it walks ancestor directories until a marker is found or the
// filesystem root is reached, per §4.4. Returns the working-tree root and
// the path to dbase.sqlite.
func Locate(dir string, traverseUp bool) (root, dbPath string, err error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", "", ddberrors.New(ddberrors.KindFilesystem, "locate", dir, err)
	}

	current := abs
	for {
		candidate := filepath.Join(current, ddbpath.MarkerDir, ddbpath.DatabaseFile)
		if ddbpath.Exists(candidate) {
			return current, candidate, nil
		}

		if !traverseUp {
			break
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", "", ddberrors.New(ddberrors.KindFilesystem, "locate", dir, ddberrors.ErrNotWorkingTree)
}

// Init creates the .ddb marker directory and its schema at dir, failing if
// dir already contains a .ddb entry. fromScratch selects between building
// the schema directly (always used here — ddbstore has no bundled
// template database to copy, so both of §4.4's initialization paths
// resolve to the same from-scratch schema build, keeping them trivially
// byte-identical) and is accepted for API compatibility with §6's
// initIndex(dir, fromScratch) signature.
func Init(dir string, fromScratch bool) (dbPath string, err error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", ddberrors.New(ddberrors.KindFilesystem, "init", dir, err)
	}

	markerDir := filepath.Join(abs, ddbpath.MarkerDir)
	if ddbpath.Exists(markerDir) {
		return "", ddberrors.New(ddberrors.KindFilesystem, "init", dir, ddberrors.ErrAlreadyWorkingTree)
	}

	if err := os.MkdirAll(markerDir, 0o755); err != nil {
		return "", ddberrors.New(ddberrors.KindFilesystem, "init", dir, err)
	}

	dbPath = filepath.Join(markerDir, ddbpath.DatabaseFile)

	store, err := Open(dbPath)
	if err != nil {
		return "", err
	}
	if err := store.Close(); err != nil {
		return "", err
	}

	return dbPath, nil
}
