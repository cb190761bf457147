package actions

import (
	"context"
	"fmt"

	"github.com/KirkDiggler/dnd-combat-core/internal/dice"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/combatant"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/conditions"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/game/combat/attack"
	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
)

// Basic action ids
const (
	ActionAttack            = "attack"
	ActionRangedAttack      = "ranged_attack"
	ActionDodge             = "dodge"
	ActionDash              = "dash"
	ActionDisengage         = "disengage"
	ActionHelp              = "help"
	ActionHide              = "hide"
	ActionOpportunityAttack = "opportunity_attack"
)

// Trigger types fired by encounters
const (
	TriggerMovement = "movement"
	TriggerDamage   = "damage"
)

// BasicActions returns fresh definitions of the stock action set
func BasicActions() []*Definition {
	return []*Definition{
		{
			ID:          ActionAttack,
			Name:        "Attack",
			Description: "Make a melee attack against a target",
			Type:        TypeStandard,
			Target:      TargetSingle,
			MaxRange:    1.5,
			Tags:        []string{"attack", "melee"},
			Categories:  []string{"basic", "offensive"},
			Validate:    requireTarget,
			Execute:     AttackExecutor("1d6", "STR", "slashing"),
		},
		{
			ID:          ActionRangedAttack,
			Name:        "Ranged Attack",
			Description: "Make a ranged attack against a target",
			Type:        TypeStandard,
			Target:      TargetSingle,
			MinRange:    1.5,
			MaxRange:    60,
			Tags:        []string{"attack", "ranged"},
			Categories:  []string{"basic", "offensive"},
			Validate:    requireTarget,
			Execute:     AttackExecutor("1d6", "DEX", "piercing"),
		},
		{
			ID:          ActionDodge,
			Name:        "Dodge",
			Description: "Focus on avoiding attacks until your next turn",
			Type:        TypeStandard,
			Target:      TargetSelf,
			Tags:        []string{"defensive"},
			Categories:  []string{"basic", "defensive"},
			Execute:     selfEffect(effects.BuildDodging, "takes a defensive stance"),
		},
		{
			ID:          ActionDash,
			Name:        "Dash",
			Description: "Gain extra movement for the turn",
			Type:        TypeStandard,
			Target:      TargetSelf,
			Tags:        []string{"movement"},
			Categories:  []string{"basic", "movement"},
			Execute:     dash,
		},
		{
			ID:          ActionDisengage,
			Name:        "Disengage",
			Description: "Move without provoking opportunity attacks",
			Type:        TypeStandard,
			Target:      TargetSelf,
			Tags:        []string{"movement", "defensive"},
			Categories:  []string{"basic", "movement", "defensive"},
			Execute:     selfEffect(effects.BuildDisengaged, "disengages"),
		},
		{
			ID:          ActionHelp,
			Name:        "Help",
			Description: "Aid an ally with their next task",
			Type:        TypeStandard,
			Target:      TargetSingle,
			MaxRange:    5,
			Tags:        []string{"utility", "support"},
			Categories:  []string{"basic", "support"},
			Validate:    requireTarget,
			Execute:     help,
		},
		{
			ID:          ActionHide,
			Name:        "Hide",
			Description: "Attempt to hide from enemies",
			Type:        TypeStandard,
			Target:      TargetSelf,
			Tags:        []string{"utility", "stealth"},
			Categories:  []string{"basic", "utility"},
			Execute:     selfEffect(effects.BuildHidden, "slips out of sight"),
		},
		{
			ID:          ActionOpportunityAttack,
			Name:        "Opportunity Attack",
			Description: "Strike an enemy leaving your reach",
			Type:        TypeReaction,
			Target:      TargetSingle,
			MaxRange:    1.5,
			Tags:        []string{"attack", "melee", "movement_trigger"},
			Categories:  []string{"reaction"},
			Validate:    requireTarget,
			Execute:     AttackExecutor("1d6", "STR", "slashing"),
		},
	}
}

// RegisterBasicActions registers the stock action set
func RegisterBasicActions(s *System) error {
	for _, def := range BasicActions() {
		if err := s.Register(def); err != nil {
			return dnderr.Wrapf(err, "failed to register %s", def.ID)
		}
	}
	return nil
}

func requireTarget(inv *Invocation) (bool, string) {
	if inv.Target == nil {
		return false, "a target is required"
	}
	if inv.Target.ID() == inv.Source.ID() {
		return false, "cannot target yourself"
	}
	return true, ""
}

func selfEffect(build func(sourceID string) *effects.StatusEffect, verb string) ExecuteFunc {
	return func(_ context.Context, inv *Invocation) (*Result, error) {
		return &Result{
			Success: true,
			Message: fmt.Sprintf("%s %s", inv.Source.ID(), verb),
			Effects: []EffectSpec{{On: EffectOnSelf, Effect: build(inv.Source.ID())}},
		}, nil
	}
}

func dash(_ context.Context, inv *Invocation) (*Result, error) {
	extra := inv.State.BaseMovement
	inv.State.RemainingMovement += extra
	return &Result{
		Success: true,
		Message: fmt.Sprintf("%s dashes", inv.Source.ID()),
		Data:    map[string]any{"extra_movement": extra},
	}, nil
}

func help(_ context.Context, inv *Invocation) (*Result, error) {
	return &Result{
		Success: true,
		Message: fmt.Sprintf("%s helps %s", inv.Source.ID(), inv.Target.ID()),
		Effects: []EffectSpec{{On: EffectOnTarget, Effect: effects.BuildHelped(inv.Source.ID())}},
	}, nil
}

// AttackExecutor rolls an attack with the given damage dice, adding the
// modifier of ability to both rolls. Without a roller it returns nil so the
// plain "used" result applies.
func AttackExecutor(damage, ability, damageType string) ExecuteFunc {
	notation, err := dice.ParseNotation(damage)
	if err != nil {
		panic(fmt.Sprintf("actions: bad damage notation %q: %v", damage, err))
	}

	return func(_ context.Context, inv *Invocation) (*Result, error) {
		if inv.Roller == nil || inv.Target == nil {
			return nil, nil
		}

		score, ok := inv.Source.Attributes()[ability]
		if !ok {
			score = defaultAttribute
		}
		mod := combatant.AbilityModifier(score)
		adv, dis := conditions.AttackModifiers(effects.Names(inv.Source), effects.Names(inv.Target))

		res, err := attack.Roll(inv.Roller, &attack.Input{
			AttackBonus:  mod,
			ArmorClass:   inv.Target.ArmorClass(),
			Damage:       notation,
			DamageBonus:  mod,
			DamageType:   damageType,
			Advantage:    adv,
			Disadvantage: dis,
		})
		if err != nil {
			return nil, err
		}

		data := map[string]any{
			"attack_roll": res.AttackRoll,
			"hit":         res.Hit,
			"critical":    res.Critical,
		}
		if !res.Hit {
			return &Result{
				Success: true,
				Message: fmt.Sprintf("%s misses %s (%d vs AC %d)", inv.Source.ID(), inv.Target.ID(), res.AttackRoll, inv.Target.ArmorClass()),
				Data:    data,
			}, nil
		}
		return &Result{
			Success:    true,
			Message:    fmt.Sprintf("%s hits %s for %d %s damage", inv.Source.ID(), inv.Target.ID(), res.DamageRoll, damageType),
			Damage:     res.DamageRoll,
			DamageType: damageType,
			Data:       data,
		}, nil
	}
}
