package conditions

import (
	"fmt"
	"strings"
)

const (
	actionTypeReaction = "reaction"
	actionTypeMovement = "movement"
)

// Blocks reports whether an active effect prevents an action of the given
// type and tags. The reason names the effect. Matching is case-insensitive.
func Blocks(effectName, actionType string, tags []string) (bool, string) {
	name := ConditionType(strings.ToLower(effectName))
	effect := GetStandardEffects(name)
	actionType = strings.ToLower(actionType)

	if effect.CantAct && actionType != actionTypeReaction {
		return true, fmt.Sprintf("cannot act while %s", name)
	}
	if effect.CantMove && actionType == actionTypeMovement {
		return true, fmt.Sprintf("cannot move while %s", name)
	}
	for _, blocked := range effect.BlockedTags {
		for _, tag := range tags {
			if strings.EqualFold(tag, blocked) {
				return true, fmt.Sprintf("cannot use %s actions while %s", blocked, name)
			}
		}
	}
	return false, ""
}

// FirstBlocking checks every effect name in order and returns the first
// blocking reason
func FirstBlocking(effectNames []string, actionType string, tags []string) (bool, string) {
	for _, name := range effectNames {
		if blocked, reason := Blocks(name, actionType, tags); blocked {
			return true, reason
		}
	}
	return false, ""
}

// AttackModifiers folds the attacker's and defender's effects into
// advantage and disadvantage. When both apply they cancel out.
func AttackModifiers(attacker, defender []string) (advantage, disadvantage bool) {
	for _, name := range attacker {
		e := GetStandardEffects(ConditionType(strings.ToLower(name)))
		advantage = advantage || e.AttackAdvantage
		disadvantage = disadvantage || e.AttackDisadvantage
	}
	for _, name := range defender {
		e := GetStandardEffects(ConditionType(strings.ToLower(name)))
		advantage = advantage || e.DefenseAdvantage
		disadvantage = disadvantage || e.DefenseDisadvantage
	}
	if advantage && disadvantage {
		return false, false
	}
	return advantage, disadvantage
}
