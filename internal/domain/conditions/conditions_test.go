package conditions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlocks(t *testing.T) {
	tests := []struct {
		name       string
		effect     string
		actionType string
		tags       []string
		blocked    bool
	}{
		{name: "stunned blocks standard", effect: "stunned", actionType: "standard", blocked: true},
		{name: "stunned blocks movement", effect: "stunned", actionType: "movement", blocked: true},
		{name: "stunned allows reactions", effect: "stunned", actionType: "reaction", tags: []string{"attack"}},
		{name: "unconscious blocks bonus", effect: "unconscious", actionType: "bonus", blocked: true},
		{name: "paralyzed blocks free", effect: "Paralyzed", actionType: "free", blocked: true},
		{name: "silenced blocks spells", effect: "silenced", actionType: "standard", tags: []string{"spell", "fire"}, blocked: true},
		{name: "silence blocks spells", effect: "silence", actionType: "bonus", tags: []string{"Spell"}, blocked: true},
		{name: "silenced allows swords", effect: "silenced", actionType: "standard", tags: []string{"attack", "melee"}},
		{name: "grappled blocks movement", effect: "grappled", actionType: "movement", blocked: true},
		{name: "grappled allows attacks", effect: "grappled", actionType: "standard", tags: []string{"attack"}},
		{name: "blinded blocks ranged", effect: "blinded", actionType: "standard", tags: []string{"attack", "ranged"}, blocked: true},
		{name: "blinded allows melee", effect: "blinded", actionType: "standard", tags: []string{"attack", "melee"}},
		{name: "unknown effect", effect: "inspired", actionType: "standard", tags: []string{"spell"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocked, reason := Blocks(tt.effect, tt.actionType, tt.tags)
			assert.Equal(t, tt.blocked, blocked)
			if tt.blocked {
				assert.NotEmpty(t, reason)
			} else {
				assert.Empty(t, reason)
			}
		})
	}
}

func TestFirstBlocking(t *testing.T) {
	blocked, reason := FirstBlocking([]string{"poisoned", "grappled", "stunned"}, "movement", nil)
	assert.True(t, blocked)
	assert.Equal(t, "cannot move while grappled", reason)

	blocked, _ = FirstBlocking(nil, "standard", nil)
	assert.False(t, blocked)
}

func TestAttackModifiers(t *testing.T) {
	tests := []struct {
		name         string
		attacker     []string
		defender     []string
		advantage    bool
		disadvantage bool
	}{
		{name: "nothing"},
		{name: "helped", attacker: []string{"helped"}, advantage: true},
		{name: "poisoned", attacker: []string{"poisoned"}, disadvantage: true},
		{name: "defender dodging", defender: []string{"dodging"}, disadvantage: true},
		{name: "defender stunned", defender: []string{"stunned"}, advantage: true},
		{name: "cancel out", attacker: []string{"hidden"}, defender: []string{"dodging"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adv, dis := AttackModifiers(tt.attacker, tt.defender)
			assert.Equal(t, tt.advantage, adv)
			assert.Equal(t, tt.disadvantage, dis)
		})
	}
}
