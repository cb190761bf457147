// Package interfaces declares the collaborators an encounter calls out to.
// None of them is needed for correctness: every call is made after the
// in-memory state has changed and failures are only logged.
package interfaces

//go:generate mockgen -destination=mock/mock_interfaces.go -package=mockinterfaces -source=interfaces.go

import (
	"context"

	"github.com/KirkDiggler/dnd-combat-core/internal/domain/actions"
	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
	"github.com/KirkDiggler/dnd-combat-core/internal/events"
)

// Persister stores encounter snapshots and long-running effects. State is
// the JSON encoding of an encounter snapshot.
type Persister interface {
	GetState(ctx context.Context, encounterID string) ([]byte, error)
	SaveState(ctx context.Context, encounterID string, state []byte) error
	UpdateEffects(ctx context.Context, combatantID string, active []*effects.StatusEffect) error
}

// NarrativeSink records what happened for logs and story text
type NarrativeSink interface {
	LogEvent(ctx context.Context, encounterID string, event events.Event) error
	NarrateAction(ctx context.Context, actorID string, action *actions.Definition, outcome *actions.Result) error
}

// AnimationSink plays presentation for an action
type AnimationSink interface {
	PlayActionAnimation(kind string, sourceID string, targetIDs []string, params map[string]any) error
}

// ResourcePool hands back whatever an encounter borrowed once it ends
type ResourcePool interface {
	Release(ctx context.Context, encounterID string) error
}
