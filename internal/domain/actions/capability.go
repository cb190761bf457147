package actions

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/KirkDiggler/dnd-combat-core/internal/domain/combatant"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/conditions"
	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
)

const (
	DefaultStamina   = 100
	defaultAttribute = 10
)

var scoreAttributes = map[string]string{
	"str": "STR",
	"dex": "DEX",
	"con": "CON",
	"int": "INT",
	"wis": "WIS",
	"cha": "CHA",
}

// CheckCapability runs every check that depends on the combatant rather
// than on its turn economy: requirements, blocking conditions, resources
// and tag prerequisites. The reason is empty when the check passes.
func CheckCapability(v combatant.View, def *Definition) (bool, string) {
	for _, req := range def.Requirements {
		if !meetsRequirement(v, req) {
			return false, fmt.Sprintf("requirement %s not met", req)
		}
	}

	if blocked, reason := conditions.FirstBlocking(effects.Names(v), string(def.Type), def.Tags); blocked {
		return false, reason
	}

	if ok, reason := hasResources(v, def.ResourceCost); !ok {
		return false, reason
	}

	return meetsTagPrerequisites(v, def)
}

func levelOf(v combatant.View) int {
	if l := v.Level(); l > 0 {
		return l
	}
	return 1
}

// CasterLevel derives spellcasting level from abilities. Mastery grants the
// full level, initiate-tier abilities half, and minor magic a third.
func CasterLevel(v combatant.View) int {
	level := levelOf(v)
	best := 0
	for _, ability := range v.Abilities() {
		switch strings.ToLower(ability) {
		case "arcane_mastery", "divine_mastery":
			best = max(best, level)
		case "arcane_initiate", "divine_magic":
			best = max(best, level/2)
		case "minor_magic", "cantrip_adept":
			best = max(best, level/3)
		}
	}
	return best
}

func anyContains(list []string, needle string) bool {
	for _, item := range list {
		if strings.Contains(strings.ToLower(item), needle) {
			return true
		}
	}
	return false
}

func suffixInt(s, prefix string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(s, prefix))
	return n, err == nil
}

// meetsRequirement evaluates one requirement string. Unknown forms fail.
func meetsRequirement(v combatant.View, raw string) bool {
	req := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case strings.HasPrefix(req, "level_"):
		n, ok := suffixInt(req, "level_")
		return ok && levelOf(v) >= n
	case req == "weapon_equipped":
		return anyContains(v.Equipment(), "weapon")
	case req == "shield_equipped":
		return anyContains(v.Equipment(), "shield")
	case strings.HasPrefix(req, "weapon_"):
		return anyContains(v.Equipment(), strings.TrimPrefix(req, "weapon_"))
	case strings.HasPrefix(req, "spell_level_"):
		n, ok := suffixInt(req, "spell_level_")
		return ok && CasterLevel(v) >= n
	case strings.HasPrefix(req, "ability_"):
		return anyContains(v.Abilities(), strings.TrimPrefix(req, "ability_"))
	case strings.HasPrefix(req, "tag_"):
		want := strings.TrimPrefix(req, "tag_")
		for _, tag := range v.Tags() {
			if strings.ToLower(tag) == want {
				return true
			}
		}
		return false
	}

	if attr, threshold, found := strings.Cut(req, "_"); found {
		if key, ok := scoreAttributes[attr]; ok {
			n, err := strconv.Atoi(threshold)
			if err != nil {
				return false
			}
			score, present := v.Attributes()[key]
			if !present {
				score = defaultAttribute
			}
			return score >= n
		}
	}
	return false
}

// hasResources compares the declared cost against the combatant's pools.
// Unknown resources are assumed available.
func hasResources(v combatant.View, cost map[string]int) (bool, string) {
	if len(cost) == 0 {
		return true, ""
	}
	attrs := v.Attributes()

	resources := make([]string, 0, len(cost))
	for resource := range cost {
		resources = append(resources, resource)
	}
	sort.Strings(resources)

	for _, resource := range resources {
		amount := cost[resource]
		key := strings.ToLower(resource)
		var have int
		switch {
		case key == "mp" || key == "mana":
			have = attrs["mp"]
		case key == "stamina":
			var ok bool
			if have, ok = attrs["stamina"]; !ok {
				have = DefaultStamina
			}
		case strings.HasPrefix(key, "spell_slot_"):
			have = attrs["spell_slots_"+strings.TrimPrefix(key, "spell_slot_")]
		default:
			continue
		}
		if have < amount {
			return false, fmt.Sprintf("not enough %s (need %d, have %d)", resource, amount, have)
		}
	}
	return true, ""
}

// meetsTagPrerequisites: spells need a caster, and "<kind>_weapon" tags need
// matching equipment
func meetsTagPrerequisites(v combatant.View, def *Definition) (bool, string) {
	for _, tag := range def.Tags {
		t := strings.ToLower(tag)
		switch {
		case t == "spell":
			if CasterLevel(v) <= 0 {
				return false, "cannot cast spells"
			}
		case strings.HasSuffix(t, "_weapon"):
			kind := strings.TrimSuffix(t, "_weapon")
			if !anyContains(v.Equipment(), kind) {
				return false, fmt.Sprintf("requires a %s weapon", kind)
			}
		}
	}
	return true, ""
}
