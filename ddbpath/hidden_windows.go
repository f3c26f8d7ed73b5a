//go:build windows

package ddbpath

import (
	"golang.org/x/sys/windows"
)

// IsHiddenOrSystem reports whether the file at fullPath carries the Windows
// FILE_ATTRIBUTE_HIDDEN or FILE_ATTRIBUTE_SYSTEM bit, per §8's boundary
// behavior: such files are skipped during recursive enumeration.
func IsHiddenOrSystem(fullPath string) bool {
	ptr, err := windows.UTF16PtrFromString(fullPath)
	if err != nil {
		return false
	}

	attrs, err := windows.GetFileAttributes(ptr)
	if err != nil || attrs == windows.INVALID_FILE_ATTRIBUTES {
		return false
	}

	return attrs&(windows.FILE_ATTRIBUTE_HIDDEN|windows.FILE_ATTRIBUTE_SYSTEM) != 0
}
