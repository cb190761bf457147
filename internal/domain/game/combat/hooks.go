package combat

import (
	"context"

	"github.com/KirkDiggler/dnd-combat-core/internal/domain/combatant"
	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
	"github.com/KirkDiggler/dnd-combat-core/internal/events"
	"github.com/sirupsen/logrus"
)

// turnHooks is the encounter's own turn observer. It is registered before
// any caller observer so the economy is reset before they look at it.
type turnHooks struct {
	e        *Encounter
	ctx      context.Context
	newRound bool
}

// bind makes ctx the context seen by turn hooks and sinks until the
// returned func runs. A nested call keeps the outer context.
func (e *Encounter) bind(ctx context.Context) func() {
	if e.hooks.ctx != nil || ctx == nil {
		return func() {}
	}
	e.hooks.ctx = ctx
	return func() { e.hooks.ctx = nil }
}

func (h *turnHooks) context() context.Context {
	if h.ctx != nil {
		return h.ctx
	}
	return context.Background()
}

// OnTurnStart resets the economy and ticks turn-start effects, unless the
// combatant is picking up a delayed turn it already started this round
func (h *turnHooks) OnTurnStart(id string) {
	e := h.e
	if h.newRound {
		h.newRound = false
		e.startRound()
	}
	c, ok := e.combatants[id]
	if !ok {
		return
	}

	var expired []string
	if !e.queue.IsDelayed(id) {
		e.actions.Reset(id, e.movementFor(c))
		expired = e.effects.TickPhase(h.context(), c.View(), effects.PhaseTurnStart)
		e.expire(c, expired)
	}
	e.fog.UpdateAll()

	e.animate("turn_start", id, nil, map[string]any{"animation_type": "emphasis"})

	initiative, _ := e.queue.Initiative(id)
	e.emit(&events.TurnEvent{
		BaseEvent:  e.base(events.EventTypeTurnStart, id, ""),
		Initiative: initiative,
		Expired:    expired,
	})

	e.log.WithFields(logrus.Fields{
		"combatant_id": id,
		"round":        e.round,
	}).Debug("Turn started")
}

// OnTurnEnd ticks turn-end effects
func (h *turnHooks) OnTurnEnd(id string) {
	e := h.e
	c, ok := e.combatants[id]
	if !ok {
		return
	}

	expired := e.effects.TickPhase(h.context(), c.View(), effects.PhaseTurnEnd)
	e.expire(c, expired)

	initiative, _ := e.queue.Initiative(id)
	e.emit(&events.TurnEvent{
		BaseEvent:  e.base(events.EventTypeTurnEnd, id, ""),
		Initiative: initiative,
		Expired:    expired,
	})
}

func (e *Encounter) movementFor(c *combatant.Combatant) float64 {
	return c.MovementBudget(e.defaultMovement)
}

// expire reports effects that ran out and refreshes senses they changed
func (e *Encounter) expire(c *combatant.Combatant, names []string) {
	resync := false
	for _, name := range names {
		if name == "hidden" {
			resync = true
		}
		e.emit(&events.EffectEvent{
			BaseEvent: e.base(events.EventTypeEffectExpired, c.ID, ""),
			Effect:    name,
		})
	}
	if resync {
		e.syncSenses(c)
	}
}

func (e *Encounter) base(t events.EventType, actorID, targetID string) events.BaseEvent {
	return events.BaseEvent{
		Type:        t,
		EncounterID: e.id,
		ActorID:     actorID,
		TargetID:    targetID,
		Round:       e.round,
	}
}

// emit publishes on the bus. Listener failures never undo the mutation
// that produced the event.
func (e *Encounter) emit(event events.Event) {
	if err := e.bus.Emit(event); err != nil {
		e.log.WithError(err).WithField("event_type", event.GetType()).Warn("Event listener failed")
	}
}

func (e *Encounter) animate(kind, sourceID string, targets []string, params map[string]any) {
	if e.animation == nil {
		return
	}
	if err := e.animation.PlayActionAnimation(kind, sourceID, targets, params); err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"animation": kind,
			"source_id": sourceID,
		}).Warn("Animation sink failed")
	}
}

// narrativeListener forwards every event to the narrative sink
type narrativeListener struct {
	e *Encounter
}

func (l *narrativeListener) ID() string    { return "narrative" }
func (l *narrativeListener) Priority() int { return events.PriorityNarrative }

func (l *narrativeListener) HandleEvent(event events.Event) error {
	if err := l.e.narrative.LogEvent(l.e.hooks.context(), l.e.id, event); err != nil {
		l.e.log.WithError(err).WithField("event_type", event.GetType()).Warn("Narrative sink failed to log event")
	}
	return nil
}
