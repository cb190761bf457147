// Package attack resolves a single weapon attack: the d20 roll against armor
// class and the damage roll on a hit.
package attack

import (
	"github.com/KirkDiggler/dnd-combat-core/internal/dice"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
)

// Input describes one attack
type Input struct {
	AttackBonus  int
	ArmorClass   int
	Damage       dice.Notation
	DamageBonus  int
	DamageType   string
	Advantage    bool
	Disadvantage bool
}

// Result is the outcome of Roll
type Result struct {
	AttackRoll   int              `json:"attack_roll"`
	AttackResult *dice.RollResult `json:"attack_result"`
	Hit          bool             `json:"hit"`
	Critical     bool             `json:"critical"`
	Fumble       bool             `json:"fumble"`
	DamageRoll   int              `json:"damage_roll"`
	DamageResult *dice.RollResult `json:"damage_result,omitempty"`
	DamageType   string           `json:"damage_type"`
}

// Roll resolves the attack. A natural 20 always hits and doubles the damage
// dice; a natural 1 always misses. Advantage and disadvantage together
// cancel out.
func Roll(roller dice.Roller, in *Input) (*Result, error) {
	if roller == nil {
		return nil, dnderr.InvalidArgument("roller is required")
	}
	if in == nil {
		return nil, dnderr.InvalidArgument("attack input is required")
	}

	var (
		attackRoll *dice.RollResult
		err        error
	)
	switch {
	case in.Advantage && !in.Disadvantage:
		attackRoll, err = roller.RollWithAdvantage(20, in.AttackBonus)
	case in.Disadvantage && !in.Advantage:
		attackRoll, err = roller.RollWithDisadvantage(20, in.AttackBonus)
	default:
		attackRoll, err = roller.Roll(1, 20, in.AttackBonus)
	}
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to roll attack")
	}

	result := &Result{
		AttackRoll:   attackRoll.Total,
		AttackResult: attackRoll,
		Critical:     attackRoll.IsCrit,
		Fumble:       attackRoll.IsFumble,
		DamageType:   in.DamageType,
	}
	result.Hit = !result.Fumble && (result.Critical || attackRoll.Total >= in.ArmorClass)
	if !result.Hit {
		return result, nil
	}

	count := in.Damage.Count
	if result.Critical {
		count *= 2
	}
	if count < 1 || in.Damage.Sides < 1 {
		result.DamageRoll = max(0, in.Damage.Bonus+in.DamageBonus)
		return result, nil
	}

	damageRoll, err := roller.Roll(count, in.Damage.Sides, in.Damage.Bonus+in.DamageBonus)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to roll damage")
	}
	result.DamageResult = damageRoll
	result.DamageRoll = max(0, damageRoll.Total)
	return result, nil
}
