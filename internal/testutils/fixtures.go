package testutils

import (
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/area"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/combatant"
)

// CreateTestHero creates a player combatant on the "heroes" team
func CreateTestHero(id, name string) *combatant.Combatant {
	return &combatant.Combatant{
		ID:         id,
		Name:       name,
		Type:       combatant.TypePlayer,
		Team:       "heroes",
		HP:         20,
		MaxHP:      20,
		ArmorClass: 14,
		Level:      1,
		Attributes: map[string]int{
			"STR": 16,
			"DEX": 14,
			"CON": 12,
		},
		Equipment: []string{"longsword"},
	}
}

// CreateTestGoblin creates a monster combatant on the "goblins" team
func CreateTestGoblin(id string) *combatant.Combatant {
	return &combatant.Combatant{
		ID:         id,
		Name:       "Goblin",
		Type:       combatant.TypeMonster,
		Team:       "goblins",
		HP:         7,
		MaxHP:      7,
		ArmorClass: 12,
		Level:      1,
		Attributes: map[string]int{
			"STR": 10,
			"DEX": 12,
		},
		Equipment: []string{"scimitar"},
	}
}

// WithInitiative fixes the combatant's initiative so no roll is made
func WithInitiative(c *combatant.Combatant, initiative int) *combatant.Combatant {
	c.InitiativeOverride = &initiative
	return c
}

// WithPosition sets the combatant's requested start position
func WithPosition(c *combatant.Combatant, x, z float64) *combatant.Combatant {
	p := area.Pos(x, z)
	c.Position = &p
	return c
}
