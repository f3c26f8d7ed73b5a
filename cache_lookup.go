package ddb

import "os"

// cacheFresh reports whether the cached artifact at path exists and, when
// minMtime is non-zero, was written no earlier than minMtime — a coarse
// staleness check since the producer's own mtime is the only signal
// available to this package about the source artifact.
func cacheFresh(path string, minMtime int64) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if minMtime == 0 {
		return true
	}
	return info.ModTime().Unix() >= minMtime
}
