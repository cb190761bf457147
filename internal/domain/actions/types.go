// Package actions tracks what each combatant may still do this turn and
// resolves registered actions against it.
package actions

import (
	"context"

	"github.com/KirkDiggler/dnd-combat-core/internal/dice"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/combatant"
	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
)

// ActionType is the slot of the action economy an action consumes
type ActionType string

const (
	TypeStandard ActionType = "standard"
	TypeBonus    ActionType = "bonus"
	TypeReaction ActionType = "reaction"
	TypeMovement ActionType = "movement"
	TypeFree     ActionType = "free"
)

// TargetType describes what an action may be aimed at
type TargetType string

const (
	TargetSelf   TargetType = "self"
	TargetSingle TargetType = "single"
	TargetMulti  TargetType = "multi"
	TargetArea   TargetType = "area"
	TargetGlobal TargetType = "global"
)

// DefaultMaxRange is the reach of an action that declares none
const DefaultMaxRange = 1.5

// Invocation is handed to Validate and Execute hooks
type Invocation struct {
	Source combatant.View
	// Target is nil for self and untargeted actions
	Target combatant.View
	Action *Definition
	State  *State
	Roller dice.Roller
}

// ValidateFunc may veto an action after the economy and capability checks
// pass. A false return carries the reason.
type ValidateFunc func(inv *Invocation) (bool, string)

// ExecuteFunc performs an action
type ExecuteFunc func(ctx context.Context, inv *Invocation) (*Result, error)

// Definition is a registered action
type Definition struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Type         ActionType     `json:"action_type"`
	Target       TargetType     `json:"target_type"`
	MinRange     float64        `json:"min_range"`
	MaxRange     float64        `json:"max_range"`
	Cooldown     int            `json:"cooldown"`
	ResourceCost map[string]int `json:"resource_cost,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Requirements []string       `json:"requirements,omitempty"`
	Categories   []string       `json:"categories,omitempty"`

	Validate ValidateFunc `json:"-"`
	Execute  ExecuteFunc  `json:"-"`
}

// HasTag reports whether the action carries tag
func (d *Definition) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// InRange reports whether distance lies within [MinRange, MaxRange]
func (d *Definition) InRange(distance float64) bool {
	return distance >= d.MinRange && distance <= d.MaxRange
}

// EffectTarget says who an EffectSpec lands on
type EffectTarget string

const (
	EffectOnSelf   EffectTarget = "self"
	EffectOnTarget EffectTarget = "target"
)

// EffectSpec is a status effect an action asks the encounter to apply
type EffectSpec struct {
	On     EffectTarget          `json:"on"`
	Effect *effects.StatusEffect `json:"effect"`
}

// Result is the outcome of using an action. A failed result is a normal
// outcome, not an error: Message says why.
type Result struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	ActionID   string         `json:"action_id,omitempty"`
	Effects    []EffectSpec   `json:"effects,omitempty"`
	Damage     int            `json:"damage,omitempty"`
	DamageType string         `json:"damage_type,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// Failed builds an unsuccessful result
func Failed(reason string) *Result {
	return &Result{Success: false, Message: reason}
}

// ReactionFunc answers a trigger. A nil result means no reaction.
type ReactionFunc func(ctx context.Context, source, target combatant.View, data map[string]any) (*Result, error)

// Remaining summarises the action economy left this turn
type Remaining struct {
	Standard bool    `json:"standard"`
	Bonus    bool    `json:"bonus"`
	Reaction bool    `json:"reaction"`
	Movement float64 `json:"movement"`
}
