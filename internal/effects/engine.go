package effects

//go:generate mockgen -destination=mock/mock_persister.go -package=mockeffects -source=engine.go

import (
	"context"

	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/logger"
	"github.com/sirupsen/logrus"
)

// DefaultPersistentThreshold is the duration above which effects are handed
// to the persister.
const DefaultPersistentThreshold = 10

// Persister stores long-running effects outside the encounter
type Persister interface {
	UpdateEffects(ctx context.Context, combatantID string, effects []*StatusEffect) error
}

// EngineConfig configures an Engine
type EngineConfig struct {
	PersistentThreshold int
	Persister           Persister
	Logger              logrus.FieldLogger
}

// Engine applies, ticks and removes status effects on effect holders
type Engine struct {
	threshold int
	persister Persister
	log       logrus.FieldLogger
}

// NewEngine creates an Engine. A nil config gives the defaults with no persister.
func NewEngine(cfg *EngineConfig) *Engine {
	if cfg == nil {
		cfg = &EngineConfig{}
	}

	threshold := cfg.PersistentThreshold
	if threshold <= 0 {
		threshold = DefaultPersistentThreshold
	}

	return &Engine{
		threshold: threshold,
		persister: cfg.Persister,
		log:       logger.OrDiscard(cfg.Logger).WithField("component", "effects"),
	}
}

// Apply appends an effect built from the arguments to the holder
func (e *Engine) Apply(ctx context.Context, h Holder, name string, duration int, sourceID string) (*StatusEffect, error) {
	return e.ApplyEffect(ctx, h, NewBuilder(name).WithDuration(duration).WithSource(SourceOther, sourceID).Build())
}

// ApplyEffect appends a copy of effect to the holder. Effects lasting longer
// than the persistent threshold are flagged and stored through the
// persister; persister failures are logged only.
func (e *Engine) ApplyEffect(ctx context.Context, h Holder, effect *StatusEffect) (*StatusEffect, error) {
	if h == nil {
		return nil, dnderr.InvalidArgument("effect holder is required")
	}
	if effect == nil || effect.Name == "" {
		return nil, dnderr.InvalidArgument("effect name is required")
	}
	if effect.Duration < 1 {
		return nil, dnderr.InvalidArgumentf("effect %s duration must be positive, got %d", effect.Name, effect.Duration)
	}

	applied := effect.Clone()
	applied.Persistent = applied.Duration > e.threshold

	h.SetStatusEffects(append(h.StatusEffects(), applied))

	e.log.WithFields(logrus.Fields{
		"combatant_id": h.ID(),
		"effect":       applied.Name,
		"duration":     applied.Duration,
		"persistent":   applied.Persistent,
	}).Debug("Effect applied")

	if applied.Persistent {
		e.persist(ctx, h)
	}

	return applied, nil
}

// Tick decrements every active effect by one and removes the ones reaching
// zero. The names of removed effects are returned in list order.
func (e *Engine) Tick(ctx context.Context, h Holder) []string {
	return e.tick(ctx, h, func(*StatusEffect) bool { return true })
}

// TickPhase is Tick restricted to effects of the given phase
func (e *Engine) TickPhase(ctx context.Context, h Holder, phase Phase) []string {
	return e.tick(ctx, h, func(se *StatusEffect) bool { return se.TickPhase() == phase })
}

func (e *Engine) tick(ctx context.Context, h Holder, match func(*StatusEffect) bool) []string {
	current := h.StatusEffects()
	if len(current) == 0 {
		return nil
	}

	var expired []string
	stored := false
	kept := make([]*StatusEffect, 0, len(current))
	for _, se := range current {
		if !match(se) {
			kept = append(kept, se)
			continue
		}
		stored = stored || se.Persistent
		se.Duration--
		if se.IsExpired() {
			expired = append(expired, se.Name)
			continue
		}
		kept = append(kept, se)
	}
	h.SetStatusEffects(kept)
	if stored {
		e.persist(ctx, h)
	}

	if len(expired) > 0 {
		e.log.WithFields(logrus.Fields{
			"combatant_id": h.ID(),
			"expired":      expired,
		}).Debug("Effects expired")
	}
	return expired
}

// RemoveByName removes the first effect with the name, or all of them when
// all is set. It reports whether anything was removed.
func (e *Engine) RemoveByName(ctx context.Context, h Holder, name string, all bool) bool {
	current := h.StatusEffects()
	kept := make([]*StatusEffect, 0, len(current))
	removed, stored := false, false
	for _, se := range current {
		if se.Name == name && (all || !removed) {
			removed = true
			stored = stored || se.Persistent
			continue
		}
		kept = append(kept, se)
	}
	if removed {
		h.SetStatusEffects(kept)
	}
	if stored {
		e.persist(ctx, h)
	}
	return removed
}

// Active returns copies of the holder's current effects
func (e *Engine) Active(h Holder) []*StatusEffect {
	current := h.StatusEffects()
	out := make([]*StatusEffect, len(current))
	for i, se := range current {
		out[i] = se.Clone()
	}
	return out
}

// Clear drops every effect on the holder
func (e *Engine) Clear(ctx context.Context, h Holder) {
	stored := false
	for _, se := range h.StatusEffects() {
		stored = stored || se.Persistent
	}
	h.SetStatusEffects(nil)
	if stored {
		e.persist(ctx, h)
	}
}

// persist replaces the stored effects of the holder with its persistent
// ones at their current durations. An empty list clears the store.
func (e *Engine) persist(ctx context.Context, h Holder) {
	if e.persister == nil {
		return
	}
	var kept []*StatusEffect
	for _, se := range h.StatusEffects() {
		if se.Persistent {
			kept = append(kept, se.Clone())
		}
	}
	if err := e.persister.UpdateEffects(ctx, h.ID(), kept); err != nil {
		e.log.WithError(err).WithField("combatant_id", h.ID()).Warn("Failed to persist effects")
	}
}

// Has reports whether the holder carries an effect with the given name
func Has(h Holder, name string) bool {
	for _, se := range h.StatusEffects() {
		if se.Name == name {
			return true
		}
	}
	return false
}

// Names lists the names of the holder's effects in order
func Names(h Holder) []string {
	current := h.StatusEffects()
	names := make([]string, len(current))
	for i, se := range current {
		names[i] = se.Name
	}
	return names
}

// CalculateImpact applies the effect's value to base according to its kind
func CalculateImpact(effect *StatusEffect, base float64) float64 {
	if effect == nil {
		return base
	}
	switch effect.Kind {
	case KindAdditive:
		return base + effect.Value
	case KindMultiplicative:
		return base * effect.Value
	case KindPercentage:
		return base * (1 + effect.Value/100)
	default:
		return base
	}
}

// CalculateTotalImpact folds every effect with the given name over base
func CalculateTotalImpact(h Holder, name string, base float64) float64 {
	for _, se := range h.StatusEffects() {
		if se.Name == name {
			base = CalculateImpact(se, base)
		}
	}
	return base
}
