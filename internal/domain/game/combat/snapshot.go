package combat

import (
	"encoding/json"

	"github.com/KirkDiggler/dnd-combat-core/internal/domain/actions"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/area"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/fog"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/turnqueue"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
)

// CombatantState is one combatant as the current viewer sees it
type CombatantState struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	Team       string             `json:"team"`
	HP         int                `json:"hp"`
	MaxHP      int                `json:"max_hp"`
	MP         int                `json:"mp"`
	MaxMP      int                `json:"max_mp"`
	ArmorClass int                `json:"ac"`
	Alive      bool               `json:"alive"`
	Initiative int                `json:"initiative"`
	Status     []string           `json:"status_effects"`
	Position   *area.Position     `json:"position,omitempty"`
	Visibility fog.Visibility     `json:"visibility,omitempty"`
	Readied    *ReadiedAction     `json:"readied_action,omitempty"`
	Remaining  *actions.Remaining `json:"remaining_actions,omitempty"`
}

// Snapshot is the serialisable state of an encounter
type Snapshot struct {
	ID         string                               `json:"id"`
	Name       string                               `json:"name"`
	Status     EncounterStatus                      `json:"status"`
	Round      int                                  `json:"round"`
	Current    string                               `json:"current,omitempty"`
	TurnOrder  []turnqueue.Entry                    `json:"turn_order"`
	Combatants []*CombatantState                    `json:"combatants"`
	Area       *area.Snapshot                       `json:"area"`
	Visibility map[string]map[string]fog.Visibility `json:"visibility"`
	Ended      bool                                 `json:"ended"`
	Winner     string                               `json:"winner,omitempty"`
}

// Snapshot copies the encounter's state. Visibility on each combatant is
// from the acting combatant's point of view.
func (e *Encounter) Snapshot() *Snapshot {
	current, acting := e.queue.Current()
	ended := e.state.Is(string(EncounterStatusEnded))

	s := &Snapshot{
		ID:         e.id,
		Name:       e.name,
		Status:     e.Status(),
		Round:      e.round,
		Current:    current,
		TurnOrder:  e.queue.Order(),
		Combatants: make([]*CombatantState, 0, len(e.joined)),
		Area:       e.area.Snapshot(),
		Visibility: e.fog.Snapshot().Visibility,
		Ended:      ended,
		Winner:     e.winner,
	}

	for _, id := range e.joined {
		c := e.combatants[id]
		state := &CombatantState{
			ID:         c.ID,
			Name:       c.Name,
			Type:       string(c.Type),
			Team:       teamOf(c),
			HP:         c.HP,
			MaxHP:      c.MaxHP,
			MP:         c.MP,
			MaxMP:      c.MaxMP,
			ArmorClass: c.ArmorClass,
			Alive:      c.IsAlive(),
			Initiative: c.Initiative,
			Status:     c.StatusNames(),
		}
		if p, ok := e.area.Position(id); ok {
			state.Position = &p
		}
		if acting {
			state.Visibility = e.fog.CalculateVisibility(current, id, false)
		}
		if r, ok := e.Readied(id); ok {
			state.Readied = r
		}
		if !ended && c.IsAlive() {
			remaining := e.actions.Remaining(id)
			state.Remaining = &remaining
		}
		s.Combatants = append(s.Combatants, state)
	}
	return s
}

// MarshalSnapshot encodes the encounter's current snapshot as JSON
func (e *Encounter) MarshalSnapshot() ([]byte, error) {
	data, err := json.Marshal(e.Snapshot())
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to encode encounter %s", e.id)
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot written by MarshalSnapshot
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, dnderr.WrapWithCode(err, dnderr.CodeInvalidArgument, "failed to decode encounter snapshot")
	}
	return &s, nil
}
