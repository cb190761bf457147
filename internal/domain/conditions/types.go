package conditions

// ConditionType is the status effect name a condition is recognised by
type ConditionType string

// Standard conditions
const (
	Blinded       ConditionType = "blinded"
	Charmed       ConditionType = "charmed"
	Deafened      ConditionType = "deafened"
	Frightened    ConditionType = "frightened"
	Grappled      ConditionType = "grappled"
	Incapacitated ConditionType = "incapacitated"
	Invisible     ConditionType = "invisible"
	Paralyzed     ConditionType = "paralyzed"
	Petrified     ConditionType = "petrified"
	Poisoned      ConditionType = "poisoned"
	Prone         ConditionType = "prone"
	Restrained    ConditionType = "restrained"
	Silenced      ConditionType = "silenced"
	Silence       ConditionType = "silence"
	Stunned       ConditionType = "stunned"
	Unconscious   ConditionType = "unconscious"

	// Produced by the basic actions
	Dodging    ConditionType = "dodging"
	Disengaged ConditionType = "disengaged"
	Helped     ConditionType = "helped"
	Hidden     ConditionType = "hidden"
)

// Effect describes what a condition does in combat
type Effect struct {
	// Combat effects
	AttackAdvantage     bool `json:"attack_advantage"`     // Advantage on attacks
	AttackDisadvantage  bool `json:"attack_disadvantage"`  // Disadvantage on attacks
	DefenseAdvantage    bool `json:"defense_advantage"`    // Attackers have advantage
	DefenseDisadvantage bool `json:"defense_disadvantage"` // Attackers have disadvantage

	// Action effects
	CantAct     bool     `json:"cant_act"`               // Nothing but reactions
	CantMove    bool     `json:"cant_move"`              // Movement actions blocked
	BlockedTags []string `json:"blocked_tags,omitempty"` // Actions carrying any of these tags
}

var standardEffects = map[ConditionType]*Effect{
	Blinded: {
		AttackDisadvantage: true,
		DefenseAdvantage:   true,
		BlockedTags:        []string{"ranged"},
	},
	Frightened: {
		AttackDisadvantage: true,
	},
	Grappled: {
		CantMove: true,
	},
	Invisible: {
		AttackAdvantage:     true,
		DefenseDisadvantage: true,
	},
	Paralyzed: {
		CantAct:          true,
		DefenseAdvantage: true,
	},
	Poisoned: {
		AttackDisadvantage: true,
	},
	Prone: {
		AttackDisadvantage: true,
	},
	Restrained: {
		AttackDisadvantage: true,
		DefenseAdvantage:   true,
	},
	Silenced: {
		BlockedTags: []string{"spell"},
	},
	Silence: {
		BlockedTags: []string{"spell"},
	},
	Stunned: {
		CantAct:          true,
		DefenseAdvantage: true,
	},
	Unconscious: {
		CantAct:          true,
		DefenseAdvantage: true,
	},
	Dodging: {
		DefenseDisadvantage: true,
	},
	Helped: {
		AttackAdvantage: true,
	},
	Hidden: {
		AttackAdvantage: true,
	},
}

// GetStandardEffects returns the effects of a condition. Unknown names have
// no effect.
func GetStandardEffects(conditionType ConditionType) *Effect {
	if effect, exists := standardEffects[conditionType]; exists {
		return effect
	}
	return &Effect{}
}
