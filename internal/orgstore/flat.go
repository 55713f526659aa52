package orgstore

import "vaultkeeper/internal/chunkid"

// Flat stores every chunk directly under the storage root: path = <id>.
type Flat struct{}

// NewFlat returns the flat organization strategy.
func NewFlat() Flat { return Flat{} }

func (Flat) Build(id chunkid.ID) (string, error) {
	if err := chunkid.Validate(id); err != nil {
		return "", err
	}
	return string(id), nil
}

func (Flat) Parse(path string) (chunkid.ID, error) {
	id := chunkid.ID(path)
	if err := chunkid.Validate(id); err != nil {
		return "", ErrInvalidPath
	}
	return id, nil
}
