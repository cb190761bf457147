package encounters

//go:generate mockgen -destination=mock/mock_repository.go -package=mockencrepo -source=repository.go

import (
	"context"
	"time"

	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
)

// Record is one stored encounter snapshot
type Record struct {
	EncounterID string    `json:"encounter_id"`
	State       []byte    `json:"state"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository stores encounter snapshots and the long-running effects of
// combatants. It satisfies interfaces.Persister.
type Repository interface {
	// GetState returns the latest snapshot of an encounter
	GetState(ctx context.Context, encounterID string) ([]byte, error)

	// SaveState replaces the snapshot of an encounter
	SaveState(ctx context.Context, encounterID string, state []byte) error

	// UpdateEffects replaces the persistent effects of a combatant. An empty
	// list clears them.
	UpdateEffects(ctx context.Context, combatantID string, active []*effects.StatusEffect) error

	// GetEffects returns a combatant's persistent effects, empty when none
	// are stored
	GetEffects(ctx context.Context, combatantID string) ([]*effects.StatusEffect, error)

	// List returns every stored snapshot ordered by encounter id
	List(ctx context.Context) ([]*Record, error)

	// Delete removes an encounter's snapshot
	Delete(ctx context.Context, encounterID string) error
}
