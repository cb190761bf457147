// uuid simple generator that allows mocking
package uuid

//go:generate mockgen -destination=mock/mock_generator.go -package=mockuuid -source=uuid.go

import (
	"strings"

	"github.com/google/uuid"
)

// Generator is an interface for generating ids
type Generator interface {
	New() string
}

// GoogleUUIDGenerator implements the Generator interface using Google's UUID package
type GoogleUUIDGenerator struct{}

// New generates a new UUID string
func (g *GoogleUUIDGenerator) New() string {
	return uuid.New().String()
}

// NewGoogleUUIDGenerator creates a new GoogleUUIDGenerator
func NewGoogleUUIDGenerator() *GoogleUUIDGenerator {
	return &GoogleUUIDGenerator{}
}

// PrefixedGenerator produces short ids such as "area_1a2b3c4d" or
// "combat_5e6f7a8b" for objects that show up in logs and snapshots.
type PrefixedGenerator struct {
	Prefix string
}

// NewPrefixedGenerator creates a generator for the given prefix
func NewPrefixedGenerator(prefix string) *PrefixedGenerator {
	return &PrefixedGenerator{Prefix: prefix}
}

// New returns prefix + "_" + the first 8 hex characters of a random UUID
func (g *PrefixedGenerator) New() string {
	short := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	if g.Prefix == "" {
		return short
	}
	return g.Prefix + "_" + short
}
