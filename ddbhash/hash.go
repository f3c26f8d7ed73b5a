// Package ddbhash computes streaming SHA-256 digests of files without
// loading them fully into memory, per §4.1 and the performance note in
// §4.3 step 4.
package ddbhash

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/dronedb/ddbcore/ddberrors"
)

// DefaultChunkSize is the recommended streaming buffer size from §4.3.
const DefaultChunkSize = 64 * 1024

// File streams fullPath through SHA-256 in chunkSize-sized reads and
// returns the lowercase hex digest. chunkSize <= 0 uses DefaultChunkSize.
func File(fullPath string, chunkSize int) (string, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return "", ddberrors.New(ddberrors.KindFilesystem, "hash", fullPath, err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", ddberrors.New(ddberrors.KindFilesystem, "hash", fullPath, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
