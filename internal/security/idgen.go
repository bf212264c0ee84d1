package security

import "github.com/google/uuid"

// IDGenerator produces unique opaque identifiers for sessions.
type IDGenerator interface {
	Generate() (string, error)
}

// UUIDGenerator generates random (version 4) UUIDs.
type UUIDGenerator struct{}

// Generate returns a new random UUID string.
func (UUIDGenerator) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// DefaultIDGenerator is the generator used when none is configured.
var DefaultIDGenerator IDGenerator = UUIDGenerator{}
