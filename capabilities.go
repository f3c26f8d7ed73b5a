package ddb

import "slices"

// Capability names a feature a WorkingTree supports, mirroring the
// teacher's VirtualMountCapability enum for advertising backend features.
type Capability string

const (
	CapabilityIndex     Capability = "Index"
	CapabilityThumbnail Capability = "Thumbnail"
	CapabilityTile      Capability = "Tile"
	CapabilityMatch     Capability = "Match"
)

// Capabilities lists every capability a WorkingTree opened by this package
// supports. Every working tree supports the same set today; the type
// exists so a future backend (e.g. remote index) can advertise a subset.
func Capabilities() []Capability {
	return []Capability{CapabilityIndex, CapabilityThumbnail, CapabilityTile, CapabilityMatch}
}

// HasCapability reports whether cap is present in a WorkingTree's
// advertised capability set.
func HasCapability(caps []Capability, cap Capability) bool {
	return slices.Contains(caps, cap)
}
