package encounters

import (
	"context"
	"sort"
	"sync"

	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
)

type inMemoryRepository struct {
	mu           sync.RWMutex
	states       map[string]*Record
	effects      map[string][]*effects.StatusEffect // combatantID -> persistent effects
	timeProvider TimeProvider
}

// NewInMemoryRepository creates a new in-memory encounter repository
func NewInMemoryRepository(timeProvider TimeProvider) Repository {
	return &inMemoryRepository{
		states:       make(map[string]*Record),
		effects:      make(map[string][]*effects.StatusEffect),
		timeProvider: orRealTime(timeProvider),
	}
}

func (r *inMemoryRepository) GetState(ctx context.Context, encounterID string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.states[encounterID]
	if !exists {
		return nil, dnderr.NotFoundf("encounter state not found: %s", encounterID)
	}
	return append([]byte(nil), rec.State...), nil
}

func (r *inMemoryRepository) SaveState(ctx context.Context, encounterID string, state []byte) error {
	if encounterID == "" {
		return dnderr.InvalidArgument("encounter ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[encounterID] = &Record{
		EncounterID: encounterID,
		State:       append([]byte(nil), state...),
		UpdatedAt:   r.timeProvider.Now(),
	}
	return nil
}

func (r *inMemoryRepository) UpdateEffects(ctx context.Context, combatantID string, active []*effects.StatusEffect) error {
	if combatantID == "" {
		return dnderr.InvalidArgument("combatant ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(active) == 0 {
		delete(r.effects, combatantID)
		return nil
	}
	r.effects[combatantID] = cloneEffects(active)
	return nil
}

func (r *inMemoryRepository) GetEffects(ctx context.Context, combatantID string) ([]*effects.StatusEffect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneEffects(r.effects[combatantID]), nil
}

func (r *inMemoryRepository) List(ctx context.Context) ([]*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*Record, 0, len(r.states))
	for _, rec := range r.states {
		copied := *rec
		copied.State = append([]byte(nil), rec.State...)
		records = append(records, &copied)
	}
	sortRecords(records)
	return records, nil
}

func (r *inMemoryRepository) Delete(ctx context.Context, encounterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.states[encounterID]; !exists {
		return dnderr.NotFoundf("encounter state not found: %s", encounterID)
	}
	delete(r.states, encounterID)
	return nil
}

func cloneEffects(list []*effects.StatusEffect) []*effects.StatusEffect {
	out := make([]*effects.StatusEffect, 0, len(list))
	for _, se := range list {
		out = append(out, se.Clone())
	}
	return out
}

func sortRecords(records []*Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].EncounterID < records[j].EncounterID
	})
}
