package combat

import (
	"context"

	"github.com/KirkDiggler/dnd-combat-core/internal/domain/actions"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/combatant"
	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/events"
	"github.com/sirupsen/logrus"
)

// ApplyDamage deals damage from outside the action flow, a trap or a
// narrator ruling. sourceID may be empty.
func (e *Encounter) ApplyDamage(ctx context.Context, targetID string, amount int, damageType, sourceID string) (int, error) {
	defer e.bind(ctx)()
	if amount < 0 {
		return 0, dnderr.InvalidArgumentf("damage must not be negative, got %d", amount)
	}
	target, err := e.Combatant(targetID)
	if err != nil {
		return 0, err
	}
	var source *combatant.Combatant
	if sourceID != "" {
		if source, err = e.Combatant(sourceID); err != nil {
			return 0, err
		}
	}

	dealt, _ := e.damage(ctx, target, amount, damageType, source)
	e.checkEnd(ctx)
	return dealt, nil
}

// damage lowers HP, reports it and runs the damage reaction triggers.
// source may be nil, in which case no reactions run.
func (e *Encounter) damage(ctx context.Context, target *combatant.Combatant, amount int, damageType string, source *combatant.Combatant) (int, []*actions.Result) {
	wasAlive := target.IsAlive()
	dealt := target.TakeDamage(amount)

	sourceID := ""
	if source != nil {
		sourceID = source.ID
	}
	e.emit(&events.HealthEvent{
		BaseEvent:  e.base(events.EventTypeDamage, sourceID, target.ID),
		Amount:     dealt,
		DamageType: damageType,
		HP:         target.HP,
		MaxHP:      target.MaxHP,
	})

	e.log.WithFields(logrus.Fields{
		"target_id":   target.ID,
		"source_id":   sourceID,
		"damage":      dealt,
		"damage_type": damageType,
		"hp":          target.HP,
	}).Debug("Damage applied")

	if wasAlive && !target.IsAlive() {
		e.handleDeath(target, sourceID)
	}

	var triggered []*actions.Result
	if source != nil && dealt > 0 {
		data := map[string]any{"damage": dealt, "damage_type": damageType}
		triggered = e.actions.Trigger(ctx, actions.TriggerDamage, source.View(), target.View(), data)
	}
	return dealt, triggered
}

// handleDeath takes a fallen combatant out of the turn order. It stays on
// the field.
func (e *Encounter) handleDeath(c *combatant.Combatant, killerID string) {
	e.queue.Remove(c.ID)
	delete(e.readied, c.ID)

	e.emit(&events.HealthEvent{
		BaseEvent: e.base(events.EventTypeDeath, killerID, c.ID),
		HP:        c.HP,
		MaxHP:     c.MaxHP,
	})
	e.animate("death", c.ID, nil, nil)

	e.log.WithFields(logrus.Fields{
		"combatant_id": c.ID,
		"killer_id":    killerID,
	}).Info("Combatant fell")
}

// ApplyHealing restores HP. A fallen combatant brought back above zero
// rejoins the turn order with fresh initiative.
func (e *Encounter) ApplyHealing(ctx context.Context, targetID string, amount int) (int, error) {
	defer e.bind(ctx)()
	if amount < 0 {
		return 0, dnderr.InvalidArgumentf("healing must not be negative, got %d", amount)
	}
	target, err := e.Combatant(targetID)
	if err != nil {
		return 0, err
	}

	wasAlive := target.IsAlive()
	healed := target.Heal(amount)

	e.emit(&events.HealthEvent{
		BaseEvent: e.base(events.EventTypeHeal, "", targetID),
		Amount:    healed,
		HP:        target.HP,
		MaxHP:     target.MaxHP,
	})

	if !wasAlive && target.IsAlive() && e.state.Is(string(EncounterStatusActive)) && !e.queue.Has(targetID) {
		initiative, err := e.rollInitiative(target)
		if err != nil {
			return healed, err
		}
		target.Initiative = initiative
		if err := e.queue.Add(targetID, initiative); err != nil {
			return healed, err
		}
	}
	return healed, nil
}

// ApplyEffect attaches a status effect to a combatant
func (e *Encounter) ApplyEffect(ctx context.Context, targetID string, effect *effects.StatusEffect) (*effects.StatusEffect, error) {
	defer e.bind(ctx)()
	target, err := e.Combatant(targetID)
	if err != nil {
		return nil, err
	}
	return e.applyEffect(ctx, target, effect)
}

func (e *Encounter) applyEffect(ctx context.Context, c *combatant.Combatant, effect *effects.StatusEffect) (*effects.StatusEffect, error) {
	applied, err := e.effects.ApplyEffect(ctx, c.View(), effect)
	if err != nil {
		return nil, err
	}
	if applied.Name == "hidden" {
		e.syncSenses(c)
	}
	e.emit(&events.EffectEvent{
		BaseEvent: e.base(events.EventTypeEffectApplied, applied.SourceID, c.ID),
		Effect:    applied.Name,
		Duration:  applied.Duration,
	})
	return applied, nil
}

// RemoveEffect drops the first effect called name, or every one when all
// is set. It reports whether anything was removed.
func (e *Encounter) RemoveEffect(ctx context.Context, targetID, name string, all bool) (bool, error) {
	defer e.bind(ctx)()
	target, err := e.Combatant(targetID)
	if err != nil {
		return false, err
	}
	if !e.effects.RemoveByName(ctx, target.View(), name, all) {
		return false, nil
	}
	if name == "hidden" {
		e.syncSenses(target)
	}
	e.emit(&events.EffectEvent{
		BaseEvent: e.base(events.EventTypeEffectRemoved, "", targetID),
		Effect:    name,
	})
	return true, nil
}
