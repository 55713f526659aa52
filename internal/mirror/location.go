// Package mirror implements the mirrored tiered store: a write fan-out and
// ordered-fallback read across primary/mirror/glacier backends.
package mirror

import "context"

// VolumeType classifies a storage location's role in the tier hierarchy.
type VolumeType string

const (
	VolumePrimary   VolumeType = "primary"
	VolumeSecondary VolumeType = "secondary"
	VolumeMirror    VolumeType = "mirror"
	VolumeGlacier   VolumeType = "glacier"
)

// DefaultPriority returns the default priority for a volume type, used when
// a location's config does not set one explicitly.
func DefaultPriority(v VolumeType) int {
	switch v {
	case VolumePrimary:
		return 0
	case VolumeSecondary:
		return 100
	case VolumeMirror:
		return 150
	case VolumeGlacier:
		return 200
	default:
		return 1000
	}
}

// SpeedClass is an advisory label for a backend's expected latency.
type SpeedClass string

const (
	SpeedFast   SpeedClass = "fast"
	SpeedMedium SpeedClass = "medium"
	SpeedSlow   SpeedClass = "slow"
)

// Location describes one storage tier.
type Location struct {
	Path       string
	Label      string
	Required   bool
	Priority   int
	Speed      SpeedClass
	VolumeType VolumeType
}

// Backend is the capability a tier must provide to participate in the
// mirrored store. It mirrors chunkstore.Store's payload-level surface,
// decoupled so any backend (local filesystem, S3, Azure blob, GCS) can be
// plugged in without depending on chunkstore's organization/sidecar layer.
type Backend interface {
	Label() string
	ReadAll(ctx context.Context, id string) ([]byte, bool, error)
	Write(ctx context.Context, id string, data []byte) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	Size(ctx context.Context, id string) (int64, bool, error)
}

// Tier pairs a Backend with the role it plays in the mirrored store.
type Tier struct {
	Backend  Backend
	Location Location
}
