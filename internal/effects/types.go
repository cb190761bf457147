package effects

// Kind selects how an effect's value modifies a base number
type Kind string

const (
	KindNone           Kind = ""
	KindAdditive       Kind = "additive"
	KindMultiplicative Kind = "multiplicative"
	KindPercentage     Kind = "percentage"
)

// Phase is the point of a combatant's turn at which an effect ticks
type Phase string

const (
	PhaseTurnStart Phase = "turn_start"
	PhaseTurnEnd   Phase = "turn_end"
)

// EffectSource represents where an effect comes from
type EffectSource string

const (
	SourceAction    EffectSource = "action"
	SourceSpell     EffectSource = "spell"
	SourceItem      EffectSource = "item"
	SourceCondition EffectSource = "condition"
	SourceTerrain   EffectSource = "terrain"
	SourceOther     EffectSource = "other"
)

// StatusEffect is a timed modifier attached to a combatant
type StatusEffect struct {
	Name       string       `json:"name"`
	Duration   int          `json:"duration"`
	SourceID   string       `json:"source_id,omitempty"`
	Source     EffectSource `json:"source,omitempty"`
	Value      float64      `json:"value,omitempty"`
	Kind       Kind         `json:"kind,omitempty"`
	Phase      Phase        `json:"phase,omitempty"`
	Persistent bool         `json:"persistent,omitempty"`
}

// TickPhase returns the phase the effect ticks in, turn end by default
func (e *StatusEffect) TickPhase() Phase {
	if e.Phase == "" {
		return PhaseTurnEnd
	}
	return e.Phase
}

// IsExpired reports whether the effect has run out
func (e *StatusEffect) IsExpired() bool {
	return e.Duration <= 0
}

// Clone returns a copy that shares nothing with e
func (e *StatusEffect) Clone() *StatusEffect {
	c := *e
	return &c
}

// Holder is anything that carries an ordered list of active effects.
// combatant.View satisfies it.
type Holder interface {
	ID() string
	StatusEffects() []*StatusEffect
	SetStatusEffects(effects []*StatusEffect)
}
