package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilder(t *testing.T) {
	effect := NewBuilder("Bless").
		WithSource(SourceSpell, "cleric-1").
		WithDuration(10).
		WithValue(4, KindAdditive).
		WithPhase(PhaseTurnStart).
		Build()

	assert.Equal(t, "Bless", effect.Name)
	assert.Equal(t, SourceSpell, effect.Source)
	assert.Equal(t, "cleric-1", effect.SourceID)
	assert.Equal(t, 10, effect.Duration)
	assert.Equal(t, KindAdditive, effect.Kind)
	assert.Equal(t, PhaseTurnStart, effect.TickPhase())
}

func TestBuilderDefaults(t *testing.T) {
	effect := NewBuilder("dazed").Build()

	assert.Equal(t, 1, effect.Duration)
	assert.Equal(t, PhaseTurnEnd, effect.TickPhase())
	assert.False(t, effect.IsExpired())

	effect.Phase = ""
	assert.Equal(t, PhaseTurnEnd, effect.TickPhase())
}

func TestBasicActionEffects(t *testing.T) {
	tests := []struct {
		effect *StatusEffect
		name   string
		phase  Phase
	}{
		{effect: BuildDodging("a"), name: "dodging", phase: PhaseTurnStart},
		{effect: BuildDisengaged("a"), name: "disengaged", phase: PhaseTurnEnd},
		{effect: BuildHelped("a"), name: "helped", phase: PhaseTurnEnd},
		{effect: BuildHidden("a"), name: "hidden", phase: PhaseTurnStart},
		{effect: BuildPoisoned("a", 3), name: "poisoned", phase: PhaseTurnEnd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.effect.Name)
			assert.Equal(t, tt.phase, tt.effect.TickPhase())
			assert.Equal(t, "a", tt.effect.SourceID)
		})
	}
}
