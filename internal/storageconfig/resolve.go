package storageconfig

import (
	"errors"
	"fmt"
	"sort"

	"vaultkeeper/internal/mirror"
)

// ErrNoPrimary is returned by Resolve when the policy has no available
// primary location and FailIfPrimaryUnavailable (or a required primary
// entry) demands one.
var ErrNoPrimary = errors.New("storageconfig: no primary location available")

// Resolved is the outcome of resolving a Policy against the local
// filesystem: which location plays which role.
type Resolved struct {
	Primary  mirror.Location
	Mirrors  []mirror.Location
	Glaciers []mirror.Location

	// Warnings records non-fatal resolution notes: a missing optional
	// tier, an unreachable non-required location, and so on.
	Warnings []string
}

// PathExists abstracts the filesystem existence check so Resolve can be
// exercised with a fake in tests.
type PathExists func(path string) bool

// Resolve filters policy's locations to those that exist, sorts by
// priority ascending, and assigns roles: the first primary location
// becomes Primary; all mirror and secondary locations become Mirrors;
// all glacier locations become Glaciers. A missing required primary is a
// configuration error; a missing optional tier is a warning only.
func Resolve(policy Policy, exists PathExists) (Resolved, error) {
	var available []LocationConfig
	var warnings []string

	for _, loc := range policy.Locations {
		if exists(loc.Path) {
			available = append(available, loc)
			continue
		}
		if loc.Required {
			if loc.VolumeType == mirror.VolumePrimary {
				return Resolved{}, fmt.Errorf("%w: required primary %q does not exist", ErrNoPrimary, loc.Path)
			}
			return Resolved{}, fmt.Errorf("storageconfig: required location %q does not exist", loc.Path)
		}
		warnings = append(warnings, fmt.Sprintf("storage location %q (%s) is unavailable, skipping", loc.Path, loc.VolumeType))
	}

	sort.SliceStable(available, func(i, j int) bool {
		return available[i].priority() < available[j].priority()
	})

	var result Resolved
	havePrimary := false
	for _, loc := range available {
		l := loc.toLocation()
		switch l.VolumeType {
		case mirror.VolumePrimary:
			if !havePrimary {
				result.Primary = l
				havePrimary = true
			} else {
				result.Mirrors = append(result.Mirrors, l)
			}
		case mirror.VolumeSecondary, mirror.VolumeMirror:
			result.Mirrors = append(result.Mirrors, l)
		case mirror.VolumeGlacier:
			result.Glaciers = append(result.Glaciers, l)
		default:
			warnings = append(warnings, fmt.Sprintf("storage location %q has unknown volumeType %q, treating as mirror", l.Path, l.VolumeType))
			result.Mirrors = append(result.Mirrors, l)
		}
	}

	if !havePrimary {
		if policy.FailIfPrimaryUnavailable {
			return Resolved{}, ErrNoPrimary
		}
		warnings = append(warnings, "no primary storage location is available")
	}

	if len(result.Mirrors) == 0 {
		warnings = append(warnings, "no mirror storage location is configured")
	}
	if len(result.Glaciers) == 0 {
		warnings = append(warnings, "no glacier storage location is configured")
	}

	result.Warnings = warnings
	return result, nil
}
