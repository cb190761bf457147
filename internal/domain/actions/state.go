package actions

import "sort"

// State is one combatant's action economy. Flags and the used set last a
// turn; cooldowns count down once per Reset.
type State struct {
	StandardUsed      bool            `json:"standard_used"`
	BonusUsed         bool            `json:"bonus_used"`
	ReactionUsed      bool            `json:"reaction_used"`
	RemainingMovement float64         `json:"remaining_movement"`
	BaseMovement      float64         `json:"base_movement"`
	UsedActions       map[string]bool `json:"used_actions"`
	Cooldowns         map[string]int  `json:"cooldowns"`
}

// NewState creates a fresh economy with the given movement budget
func NewState(movement float64) *State {
	return &State{
		RemainingMovement: movement,
		BaseMovement:      movement,
		UsedActions:       make(map[string]bool),
		Cooldowns:         make(map[string]int),
	}
}

// Reset starts a new turn: flags and the used set clear, movement is
// restored and every cooldown drops by one. Cooldowns at zero or below are
// dropped.
func (s *State) Reset(movement float64) {
	s.StandardUsed = false
	s.BonusUsed = false
	s.ReactionUsed = false
	s.RemainingMovement = movement
	s.BaseMovement = movement
	s.UsedActions = make(map[string]bool)

	for id, rounds := range s.Cooldowns {
		if rounds-1 <= 0 {
			delete(s.Cooldowns, id)
			continue
		}
		s.Cooldowns[id] = rounds - 1
	}
}

// CanUse checks the economy only, not the combatant's capabilities
func (s *State) CanUse(def *Definition) bool {
	ok, _ := s.check(def)
	return ok
}

func (s *State) check(def *Definition) (bool, string) {
	if rounds, ok := s.Cooldowns[def.ID]; ok && rounds > 0 {
		return false, "action is on cooldown"
	}

	switch def.Type {
	case TypeStandard:
		if s.StandardUsed {
			return false, "standard action already used this turn"
		}
	case TypeBonus:
		if s.BonusUsed {
			return false, "bonus action already used this turn"
		}
	case TypeReaction:
		if s.ReactionUsed {
			return false, "reaction already used this round"
		}
	case TypeMovement:
		if s.RemainingMovement <= 0 {
			return false, "no movement remaining"
		}
	case TypeFree:
	}
	return true, ""
}

// Use records that def was used. The cooldown only starts when the action
// succeeded.
func (s *State) Use(def *Definition, succeeded bool) {
	switch def.Type {
	case TypeStandard:
		s.StandardUsed = true
	case TypeBonus:
		s.BonusUsed = true
	case TypeReaction:
		s.ReactionUsed = true
	}
	if s.UsedActions == nil {
		s.UsedActions = make(map[string]bool)
	}
	s.UsedActions[def.ID] = true

	if succeeded && def.Cooldown > 0 {
		if s.Cooldowns == nil {
			s.Cooldowns = make(map[string]int)
		}
		s.Cooldowns[def.ID] = def.Cooldown
	}
}

// UseMovement spends up to distance and returns what was actually spent
func (s *State) UseMovement(distance float64) float64 {
	if distance <= 0 {
		return 0
	}
	spent := min(distance, s.RemainingMovement)
	s.RemainingMovement -= spent
	return spent
}

// Remaining reports the unused parts of the economy
func (s *State) Remaining() Remaining {
	return Remaining{
		Standard: !s.StandardUsed,
		Bonus:    !s.BonusUsed,
		Reaction: !s.ReactionUsed,
		Movement: s.RemainingMovement,
	}
}

// Used returns the ids used this turn, sorted
func (s *State) Used() []string {
	out := make([]string, 0, len(s.UsedActions))
	for id := range s.UsedActions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy
func (s *State) Clone() *State {
	c := *s
	c.UsedActions = make(map[string]bool, len(s.UsedActions))
	for k, v := range s.UsedActions {
		c.UsedActions[k] = v
	}
	c.Cooldowns = make(map[string]int, len(s.Cooldowns))
	for k, v := range s.Cooldowns {
		c.Cooldowns[k] = v
	}
	return &c
}
