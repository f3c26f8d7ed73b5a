// Package ddbcache implements the derived-artifact cache keying and
// invalidation contract from §4.7: thumbnail/tile cache paths keyed by a
// source entry's content hash plus type-specific parameters, and the
// per-tree build-artifact GC subtree invalidated on hash change or entry
// removal. The thumbnail and tile producers themselves are an external
// collaborator per §1 — this package only derives the cache key and the
// on-disk path they are expected to read from / write to.
package ddbcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"

	"github.com/dronedb/ddbcore/ddberrors"
	"github.com/dronedb/ddbcore/ddbpath"
)

// DefaultCacheDirName is the subdirectory created under the user's home
// for the user-wide thumbnail/tile cache, per §4.7.
const DefaultCacheDirName = ".cache/ddb"

// UserCacheRoot resolves the user-wide cache directory: override (if
// non-empty, e.g. from ddbconfig.Config.CacheDir) or ~/.cache/ddb via
// github.com/mitchellh/go-homedir. No environment variable is consulted.
func UserCacheRoot(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return "", ddberrors.New(ddberrors.KindFilesystem, "user-cache-root", "", err)
	}
	return filepath.Join(home, DefaultCacheDirName), nil
}

// ThumbnailKey derives the content-addressed cache key for a thumbnail of
// the given source hash at the given edge length, per §4.7.
func ThumbnailKey(sourceHash string, edge int) string {
	return paramKey(sourceHash, fmt.Sprintf("edge=%d", edge))
}

// TileKey derives the content-addressed cache key for a map tile of the
// given source hash and tile coordinates, per §4.7.
func TileKey(sourceHash string, z, x, y, tileSize int, tms bool) string {
	return paramKey(sourceHash, fmt.Sprintf("z=%d,x=%d,y=%d,ts=%d,tms=%t", z, x, y, tileSize, tms))
}

func paramKey(sourceHash, paramString string) string {
	h := sha256.Sum256([]byte(sourceHash + ":" + paramString))
	return hex.EncodeToString(h[:])
}

// ThumbnailPath resolves the on-disk cache path for a thumbnail key under
// cacheRoot.
func ThumbnailPath(cacheRoot, key string) string {
	return filepath.Join(cacheRoot, "thumbs", key[:2], key+".jpg")
}

// TilePath resolves the on-disk cache path for a tile key under cacheRoot.
func TilePath(cacheRoot, key string) string {
	return filepath.Join(cacheRoot, "tiles", key[:2], key+".png")
}

// BuildDir resolves the per-tree, hash-keyed build-artifact subtree for a
// working-tree root and entry hash: <root>/.ddb/build/<hash>/, per §4.7/§6.
func BuildDir(root, hash string) string {
	return filepath.Join(root, ddbpath.MarkerDir, ddbpath.BuildDir, hash)
}

// Invalidate removes the hash-keyed build subtree for hash, if non-empty.
// In ddbindex, add and sync call it for a modified entry before its row is
// updated; sync calls it after deleting the row of a vanished entry, and
// remove calls it after the transaction commits.
func Invalidate(root, hash string) error {
	if hash == "" {
		return nil
	}
	dir := BuildDir(root, hash)
	if !ddbpath.Exists(dir) {
		return nil
	}
	if err := ddbpath.SafeRemove(root, dir); err != nil {
		return err
	}
	return nil
}

// AtomicPublish writes data to the final cache path by first writing to a
// temporary sibling file and renaming it into place, so concurrent readers
// of the content-addressed cache never observe a partially written file,
// per §5's "writers use atomic directory replacement" allowance.
func AtomicPublish(finalPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return ddberrors.New(ddberrors.KindFilesystem, "publish-cache", finalPath, err)
	}

	tmp := finalPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return ddberrors.New(ddberrors.KindFilesystem, "publish-cache", finalPath, err)
	}
	if err := os.Rename(tmp, finalPath); err != nil {
		os.Remove(tmp)
		return ddberrors.New(ddberrors.KindFilesystem, "publish-cache", finalPath, err)
	}
	return nil
}
