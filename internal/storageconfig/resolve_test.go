package storageconfig

import (
	"errors"
	"testing"

	"vaultkeeper/internal/mirror"
)

func existsSet(paths ...string) PathExists {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return func(path string) bool { return set[path] }
}

func TestResolveAssignsRolesAndSortsByPriority(t *testing.T) {
	policy := Policy{
		Locations: []LocationConfig{
			{Path: "/glacier", VolumeType: mirror.VolumeGlacier},
			{Path: "/primary", VolumeType: mirror.VolumePrimary},
			{Path: "/mirror", VolumeType: mirror.VolumeMirror},
		},
	}

	resolved, err := Resolve(policy, existsSet("/glacier", "/primary", "/mirror"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Primary.Path != "/primary" {
		t.Fatalf("Primary = %+v, want /primary", resolved.Primary)
	}
	if len(resolved.Mirrors) != 1 || resolved.Mirrors[0].Path != "/mirror" {
		t.Fatalf("Mirrors = %+v", resolved.Mirrors)
	}
	if len(resolved.Glaciers) != 1 || resolved.Glaciers[0].Path != "/glacier" {
		t.Fatalf("Glaciers = %+v", resolved.Glaciers)
	}
}

func TestResolveSkipsUnavailableOptionalLocations(t *testing.T) {
	policy := Policy{
		Locations: []LocationConfig{
			{Path: "/primary", VolumeType: mirror.VolumePrimary},
			{Path: "/missing-mirror", VolumeType: mirror.VolumeMirror},
		},
	}

	resolved, err := Resolve(policy, existsSet("/primary"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(resolved.Mirrors) != 0 {
		t.Fatalf("Mirrors = %+v, want none", resolved.Mirrors)
	}
	if len(resolved.Warnings) == 0 {
		t.Fatalf("expected a warning for the unavailable mirror")
	}
}

func TestResolveMissingRequiredPrimaryIsConfigurationError(t *testing.T) {
	policy := Policy{
		Locations: []LocationConfig{
			{Path: "/missing-primary", Required: true, VolumeType: mirror.VolumePrimary},
		},
	}

	_, err := Resolve(policy, existsSet())
	if !errors.Is(err, ErrNoPrimary) {
		t.Fatalf("err = %v, want ErrNoPrimary", err)
	}
}

func TestResolveMissingOptionalPrimaryIsWarningUnlessFailIfPrimaryUnavailable(t *testing.T) {
	policy := Policy{
		Locations: []LocationConfig{
			{Path: "/mirror-only", VolumeType: mirror.VolumeMirror},
		},
	}

	resolved, err := Resolve(policy, existsSet("/mirror-only"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Primary.Path != "" {
		t.Fatalf("expected no primary, got %+v", resolved.Primary)
	}

	policy.FailIfPrimaryUnavailable = true
	if _, err := Resolve(policy, existsSet("/mirror-only")); !errors.Is(err, ErrNoPrimary) {
		t.Fatalf("err = %v, want ErrNoPrimary when FailIfPrimaryUnavailable", err)
	}
}

func TestResolveSecondPrimaryDemotesToMirror(t *testing.T) {
	policy := Policy{
		Locations: []LocationConfig{
			{Path: "/primary-a", VolumeType: mirror.VolumePrimary, Priority: intp(0)},
			{Path: "/primary-b", VolumeType: mirror.VolumePrimary, Priority: intp(10)},
		},
	}

	resolved, err := Resolve(policy, existsSet("/primary-a", "/primary-b"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Primary.Path != "/primary-a" {
		t.Fatalf("Primary = %+v, want /primary-a", resolved.Primary)
	}
	if len(resolved.Mirrors) != 1 || resolved.Mirrors[0].Path != "/primary-b" {
		t.Fatalf("Mirrors = %+v, want [/primary-b]", resolved.Mirrors)
	}
}

func intp(n int) *int { return &n }
