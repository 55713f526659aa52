package storageconfig

import (
	"os"
	"path/filepath"
	"testing"

	"vaultkeeper/internal/mirror"
)

func writePolicy(t *testing.T, yamlContent string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storage.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write policy fixture: %v", err)
	}
	return path
}

func TestLoadParsesLocationsAndTopLevelKeys(t *testing.T) {
	path := writePolicy(t, `
locations:
  - path: /data/primary
    label: primary disk
    required: true
    volumeType: primary
  - path: /data/mirror
    label: mirror disk
    priority: 500
    volumeType: mirror
enableMirroring: true
failIfPrimaryUnavailable: true
maintenanceInterval: 1h
`)

	policy, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(policy.Locations) != 2 {
		t.Fatalf("Locations = %d, want 2", len(policy.Locations))
	}
	if !policy.EnableMirroring || !policy.FailIfPrimaryUnavailable {
		t.Fatalf("top-level flags not parsed: %+v", policy)
	}
	if policy.MaintenanceInterval != "1h" {
		t.Fatalf("MaintenanceInterval = %q, want 1h", policy.MaintenanceInterval)
	}
	if got := policy.Locations[1].priority(); got != 500 {
		t.Fatalf("explicit priority = %d, want 500", got)
	}
}

func TestLocationConfigDefaultPriorityFromVolumeType(t *testing.T) {
	l := LocationConfig{VolumeType: mirror.VolumeGlacier}
	if got := l.priority(); got != mirror.DefaultPriority(mirror.VolumeGlacier) {
		t.Fatalf("priority = %d, want default glacier priority", got)
	}
}
