package effects

// Builder helps create status effects
type Builder struct {
	effect *StatusEffect
}

// NewBuilder creates a new effect builder. Effects tick at turn end and last
// one turn unless told otherwise.
func NewBuilder(name string) *Builder {
	return &Builder{
		effect: &StatusEffect{
			Name:     name,
			Duration: 1,
			Phase:    PhaseTurnEnd,
		},
	}
}

// WithSource sets the effect source
func (b *Builder) WithSource(source EffectSource, sourceID string) *Builder {
	b.effect.Source = source
	b.effect.SourceID = sourceID
	return b
}

// WithDuration sets the number of ticks before expiry
func (b *Builder) WithDuration(turns int) *Builder {
	b.effect.Duration = turns
	return b
}

// WithValue attaches a numeric modifier and the way it combines
func (b *Builder) WithValue(value float64, kind Kind) *Builder {
	b.effect.Value = value
	b.effect.Kind = kind
	return b
}

// WithPhase sets when the effect ticks
func (b *Builder) WithPhase(phase Phase) *Builder {
	b.effect.Phase = phase
	return b
}

// Build returns the configured effect
func (b *Builder) Build() *StatusEffect {
	return b.effect
}

// Common effects produced by the basic actions

// BuildDodging marks a combatant that took the Dodge action until its next turn
func BuildDodging(sourceID string) *StatusEffect {
	return NewBuilder("dodging").
		WithSource(SourceAction, sourceID).
		WithPhase(PhaseTurnStart).
		Build()
}

// BuildDisengaged prevents opportunity attacks for the rest of the turn
func BuildDisengaged(sourceID string) *StatusEffect {
	return NewBuilder("disengaged").
		WithSource(SourceAction, sourceID).
		Build()
}

// BuildHelped grants advantage to the helped ally until its next turn ends
func BuildHelped(sourceID string) *StatusEffect {
	return NewBuilder("helped").
		WithSource(SourceAction, sourceID).
		Build()
}

// BuildHidden raises stealth by a percentage while it lasts
func BuildHidden(sourceID string) *StatusEffect {
	return NewBuilder("hidden").
		WithSource(SourceAction, sourceID).
		WithValue(25, KindPercentage).
		WithPhase(PhaseTurnStart).
		Build()
}

// BuildPoisoned is the standard poison condition, ticking at turn end
func BuildPoisoned(sourceID string, turns int) *StatusEffect {
	return NewBuilder("poisoned").
		WithSource(SourceCondition, sourceID).
		WithDuration(turns).
		Build()
}
