package combatant

import (
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/area"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/turnqueue"
	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
)

// Type represents the type of combatant
type Type string

const (
	TypePlayer  Type = "player"
	TypeMonster Type = "monster"
	TypeNPC     Type = "npc"
)

const (
	// DefaultSense is the stealth and perception score of a combatant that
	// declares neither
	DefaultSense = 50.0

	// DefaultSpeed is the movement budget restored at turn start
	DefaultSpeed = 30.0

	defaultAttribute = 10
)

// Combatant represents a participant in combat
type Combatant struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       Type           `json:"type"`
	Team       string         `json:"team"`
	HP         int            `json:"hp"`
	MaxHP      int            `json:"max_hp"`
	MP         int            `json:"mp"`
	MaxMP      int            `json:"max_mp"`
	ArmorClass int            `json:"ac"`
	Level      int            `json:"level"`
	Attributes map[string]int `json:"attributes"` // STR, DEX, ... plus pools such as stamina, spell_slots_1
	Equipment  []string       `json:"equipment,omitempty"`
	Abilities  []string       `json:"abilities,omitempty"`
	Tags       []string       `json:"tags,omitempty"`

	Initiative         int  `json:"initiative"`
	InitiativeOverride *int `json:"initiative_override,omitempty"`

	Stealth    float64 `json:"stealth"`
	Perception float64 `json:"perception"`
	Speed      float64 `json:"speed"`

	// Position is the requested start position; nil lets the encounter place it
	Position *area.Position `json:"position,omitempty"`

	Effects []*effects.StatusEffect `json:"status_effects"`
}

// IsAlive returns true if the combatant has more than 0 HP
func (c *Combatant) IsAlive() bool {
	return c.HP > 0
}

// Attribute returns a named attribute, 10 when absent
func (c *Combatant) Attribute(name string) int {
	if v, ok := c.Attributes[name]; ok {
		return v
	}
	return defaultAttribute
}

// Modifier returns the ability modifier for an attribute, rounded down
func (c *Combatant) Modifier(name string) int {
	return AbilityModifier(c.Attribute(name))
}

// AbilityModifier converts a score to its modifier: (score-10)/2 rounded down
func AbilityModifier(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// DefaultInitiative is the override if present, else the queue's
// unrolled initiative for the combatant's dexterity
func (c *Combatant) DefaultInitiative() int {
	if c.InitiativeOverride != nil {
		return *c.InitiativeOverride
	}
	return turnqueue.DefaultInitiative(c.Attribute("DEX"))
}

// MovementBudget returns the speed restored each turn. Combatants without
// a speed get fallback, or DefaultSpeed when that is unset too.
func (c *Combatant) MovementBudget(fallback float64) float64 {
	switch {
	case c.Speed > 0:
		return c.Speed
	case fallback > 0:
		return fallback
	default:
		return DefaultSpeed
	}
}

// TakeDamage lowers HP, never below zero, and returns the damage dealt
func (c *Combatant) TakeDamage(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > c.HP {
		amount = c.HP
	}
	c.HP -= amount
	return amount
}

// Heal raises HP up to MaxHP and returns the amount healed
func (c *Combatant) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	if c.MaxHP > 0 && c.HP+amount > c.MaxHP {
		amount = c.MaxHP - c.HP
	}
	c.HP += amount
	return amount
}

// SpendMP lowers MP by cost when affordable
func (c *Combatant) SpendMP(cost int) bool {
	if cost > c.MP {
		return false
	}
	c.MP -= cost
	return true
}

// ApplyDefaults fills zero values with the stock ones
func (c *Combatant) ApplyDefaults() {
	if c.Attributes == nil {
		c.Attributes = make(map[string]int)
	}
	if c.Level <= 0 {
		c.Level = 1
	}
	if c.MaxHP == 0 {
		c.MaxHP = c.HP
	}
	if c.MaxMP == 0 {
		c.MaxMP = c.MP
	}
	if c.Stealth == 0 {
		c.Stealth = DefaultSense
	}
	if c.Perception == 0 {
		c.Perception = DefaultSense
	}
	if c.Type == "" {
		c.Type = TypeNPC
	}
}

// StatusNames lists the names of the combatant's active effects
func (c *Combatant) StatusNames() []string {
	names := make([]string, 0, len(c.Effects))
	for _, se := range c.Effects {
		names = append(names, se.Name)
	}
	return names
}

// Clone returns a deep copy
func (c *Combatant) Clone() *Combatant {
	out := *c
	out.Attributes = make(map[string]int, len(c.Attributes))
	for k, v := range c.Attributes {
		out.Attributes[k] = v
	}
	out.Equipment = append([]string(nil), c.Equipment...)
	out.Abilities = append([]string(nil), c.Abilities...)
	out.Tags = append([]string(nil), c.Tags...)
	if c.InitiativeOverride != nil {
		v := *c.InitiativeOverride
		out.InitiativeOverride = &v
	}
	if c.Position != nil {
		p := *c.Position
		out.Position = &p
	}
	out.Effects = make([]*effects.StatusEffect, len(c.Effects))
	for i, se := range c.Effects {
		out.Effects[i] = se.Clone()
	}
	return &out
}

// View adapts the combatant to the View interface
func (c *Combatant) View() View {
	return &structView{c: c}
}
