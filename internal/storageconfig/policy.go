// Package storageconfig loads the YAML storage policy document and
// resolves it into the location set the mirrored store is built from.
package storageconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vaultkeeper/internal/mirror"
)

// LocationConfig is one entry of the storage policy's locations list. Path
// is either a filesystem directory or a cloud object-storage URL:
// "s3://bucket/prefix" (Region/AccessKeyID/SecretAccessKey configure the AWS
// credential chain), "azblob://container/prefix" (ConnectionString
// configures the account, falling back to the AZURE_STORAGE_CONNECTION_STRING
// environment variable), or "gs://bucket/prefix" (Application Default
// Credentials). These fields are ignored for filesystem locations.
type LocationConfig struct {
	Path             string            `yaml:"path"`
	Label            string            `yaml:"label"`
	Required         bool              `yaml:"required"`
	Priority         *int              `yaml:"priority"`
	Speed            mirror.SpeedClass `yaml:"speed"`
	VolumeType       mirror.VolumeType `yaml:"volumeType"`
	Region           string            `yaml:"region"`
	AccessKeyID      string            `yaml:"accessKeyId"`
	SecretAccessKey  string            `yaml:"secretAccessKey"`
	ConnectionString string            `yaml:"connectionString"`
}

// Policy is the top-level storage policy document.
type Policy struct {
	Locations                []LocationConfig `yaml:"locations"`
	EnableMirroring          bool             `yaml:"enableMirroring"`
	FailIfPrimaryUnavailable bool             `yaml:"failIfPrimaryUnavailable"`
	// MaintenanceInterval, if set, is a time.ParseDuration string (e.g.
	// "1h") driving a periodic hash-cache flush + glacier revalidation
	// sweep. Empty disables the sweep.
	MaintenanceInterval string `yaml:"maintenanceInterval"`
}

// Load reads and parses a storage policy document from path.
func Load(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("storageconfig: read %s: %w", path, err)
	}
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("storageconfig: parse %s: %w", path, err)
	}
	return p, nil
}

// priority returns the location's explicit priority if set, else the
// volume type's default.
func (l LocationConfig) priority() int {
	if l.Priority != nil {
		return *l.Priority
	}
	return mirror.DefaultPriority(l.VolumeType)
}

func (l LocationConfig) toLocation() mirror.Location {
	return mirror.Location{
		Path:       l.Path,
		Label:      l.Label,
		Required:   l.Required,
		Priority:   l.priority(),
		Speed:      l.Speed,
		VolumeType: l.VolumeType,
	}
}
