package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_CanUse(t *testing.T) {
	standard := &Definition{ID: "strike", Type: TypeStandard}
	bonus := &Definition{ID: "offhand", Type: TypeBonus}
	reaction := &Definition{ID: "parry", Type: TypeReaction}
	movement := &Definition{ID: "step", Type: TypeMovement}
	free := &Definition{ID: "shout", Type: TypeFree}

	tests := []struct {
		name  string
		setup func(s *State)
		def   *Definition
		want  bool
	}{
		{name: "fresh standard", def: standard, want: true},
		{name: "standard used", setup: func(s *State) { s.StandardUsed = true }, def: standard},
		{name: "bonus unaffected by standard", setup: func(s *State) { s.StandardUsed = true }, def: bonus, want: true},
		{name: "bonus used", setup: func(s *State) { s.BonusUsed = true }, def: bonus},
		{name: "reaction used", setup: func(s *State) { s.ReactionUsed = true }, def: reaction},
		{name: "movement left", def: movement, want: true},
		{name: "movement spent", setup: func(s *State) { s.RemainingMovement = 0 }, def: movement},
		{name: "free always", setup: func(s *State) { s.StandardUsed, s.BonusUsed, s.ReactionUsed = true, true, true }, def: free, want: true},
		{name: "cooldown blocks free", setup: func(s *State) { s.Cooldowns["shout"] = 1 }, def: free},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState(30)
			if tt.setup != nil {
				tt.setup(s)
			}
			assert.Equal(t, tt.want, s.CanUse(tt.def))
		})
	}
}

func TestState_UseAndCooldown(t *testing.T) {
	s := NewState(30)
	fireball := &Definition{ID: "fireball", Type: TypeStandard, Cooldown: 2}

	s.Use(fireball, false)
	assert.True(t, s.StandardUsed, "flags are charged even on failure")
	assert.Equal(t, []string{"fireball"}, s.Used())
	assert.Empty(t, s.Cooldowns, "failed action starts no cooldown")

	s.Reset(30)
	s.Use(fireball, true)
	assert.Equal(t, 2, s.Cooldowns["fireball"])

	s.Reset(30)
	assert.False(t, s.StandardUsed)
	assert.Empty(t, s.Used())
	assert.Equal(t, 1, s.Cooldowns["fireball"])
	assert.False(t, s.CanUse(fireball))

	s.Reset(30)
	_, live := s.Cooldowns["fireball"]
	assert.False(t, live, "expired cooldowns are dropped")
	assert.True(t, s.CanUse(fireball))
}

func TestState_UseMovement(t *testing.T) {
	s := NewState(10)

	assert.Equal(t, 4.0, s.UseMovement(4))
	assert.Equal(t, 6.0, s.UseMovement(20), "spends at most what is left")
	assert.Equal(t, 0.0, s.UseMovement(1))
	assert.Equal(t, 0.0, s.UseMovement(-3))

	s.Reset(25)
	assert.Equal(t, Remaining{Standard: true, Bonus: true, Reaction: true, Movement: 25}, s.Remaining())
}

func TestState_CloneIsDeep(t *testing.T) {
	s := NewState(30)
	s.Use(&Definition{ID: "x", Type: TypeBonus, Cooldown: 3}, true)

	c := s.Clone()
	c.Cooldowns["x"] = 9
	c.UsedActions["y"] = true

	assert.Equal(t, 3, s.Cooldowns["x"])
	assert.False(t, s.UsedActions["y"])
}
