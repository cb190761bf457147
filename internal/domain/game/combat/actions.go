package combat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/KirkDiggler/dnd-combat-core/internal/domain/actions"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/area"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/combatant"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/fog"
	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/events"
	"github.com/sirupsen/logrus"
)

// movementEpsilon absorbs float error when a move costs exactly what is left
const movementEpsilon = 1e-9

// Outcome is what an action or move produced, including any readied
// actions and reactions it set off
type Outcome struct {
	Result    *actions.Result   `json:"result"`
	Triggered []*actions.Result `json:"triggered,omitempty"`
	Ended     bool              `json:"ended"`
	Winner    string            `json:"winner,omitempty"`
}

func (e *Encounter) outcome(result *actions.Result, triggered []*actions.Result) *Outcome {
	return &Outcome{
		Result:    result,
		Triggered: triggered,
		Ended:     e.Status() == EncounterStatusEnded,
		Winner:    e.winner,
	}
}

func refused(def *actions.Definition, reason string) *actions.Result {
	result := actions.Failed(reason)
	result.ActionID = def.ID
	return result
}

// TakeAction has actorID use an action, optionally against targetID.
// Reactions may be taken out of turn; everything else needs the actor's
// turn. Economy and capability refusals come back as a failed Result.
func (e *Encounter) TakeAction(ctx context.Context, actorID, actionID, targetID string) (*Outcome, error) {
	defer e.bind(ctx)()
	if err := e.requireActive(); err != nil {
		return nil, err
	}
	actor, err := e.Combatant(actorID)
	if err != nil {
		return nil, err
	}
	def, ok := e.actions.Get(actionID)
	if !ok {
		return nil, dnderr.NotFoundf("unknown action %s", actionID)
	}
	var target *combatant.Combatant
	if targetID != "" {
		if target, err = e.Combatant(targetID); err != nil {
			return nil, err
		}
	}

	if !actor.IsAlive() {
		return nil, dnderr.FailedPreconditionf("combatant %s is down", actorID)
	}
	if def.Type != actions.TypeReaction {
		if err := e.requireTurn(actorID); err != nil {
			return nil, err
		}
	}

	if target != nil && target != actor {
		if distance, known := e.distance(actor.ID, target.ID); known && !def.InRange(distance) {
			return e.outcome(refused(def, "target is out of range"), nil), nil
		}
	}

	result, err := e.actions.Use(ctx, actor.View(), actionID, viewOf(target))
	if err != nil {
		return nil, err
	}

	triggered := e.resolve(ctx, actor, target, def, result)
	if result.Success {
		keys := []string{def.ID}
		if def.HasTag("attack") && def.ID != "attack" {
			keys = append(keys, "attack")
		}
		triggered = append(triggered, e.fireReadied(ctx, actor.ID, keys...)...)
	}

	e.checkEnd(ctx)
	return e.outcome(result, triggered), nil
}

func viewOf(c *combatant.Combatant) combatant.View {
	if c == nil {
		return nil
	}
	return c.View()
}

func (e *Encounter) distance(a, b string) (float64, bool) {
	pa, okA := e.area.Position(a)
	pb, okB := e.area.Position(b)
	if !okA || !okB {
		return 0, false
	}
	return pa.DistanceTo(pb), true
}

// resolve applies what a used action produced: resource costs, effects and
// damage. Sinks hear about it afterwards. It returns the results of any
// reactions the damage set off.
func (e *Encounter) resolve(ctx context.Context, actor, target *combatant.Combatant, def *actions.Definition, result *actions.Result) []*actions.Result {
	eventType := events.EventTypeActionTaken
	if def.Type == actions.TypeReaction {
		eventType = events.EventTypeReaction
	}
	targetID := ""
	if target != nil {
		targetID = target.ID
	}

	var triggered []*actions.Result
	if result.Success {
		e.deductCosts(actor, def.ResourceCost)

		for _, spec := range result.Effects {
			holder := actor
			if spec.On == actions.EffectOnTarget {
				holder = target
			}
			if holder == nil || spec.Effect == nil {
				continue
			}
			if _, err := e.applyEffect(ctx, holder, spec.Effect); err != nil {
				e.log.WithError(err).WithField("effect", spec.Effect.Name).Warn("Could not apply action effect")
			}
		}

		if result.Damage > 0 && target != nil {
			_, triggered = e.damage(ctx, target, result.Damage, result.DamageType, actor)
		}
	}

	e.emit(&events.ActionEvent{
		BaseEvent: e.base(eventType, actor.ID, targetID),
		ActionID:  def.ID,
		Success:   result.Success,
		Message:   result.Message,
		Data:      result.Data,
	})

	if e.narrative != nil {
		if err := e.narrative.NarrateAction(ctx, actor.ID, def, result); err != nil {
			e.log.WithError(err).WithField("action_id", def.ID).Warn("Narrative sink failed to narrate action")
		}
	}
	var targets []string
	if targetID != "" {
		targets = []string{targetID}
	}
	e.animate(def.ID, actor.ID, targets, map[string]any{
		"action_type": string(def.Type),
		"success":     result.Success,
	})

	e.log.WithFields(logrus.Fields{
		"actor_id":  actor.ID,
		"action_id": def.ID,
		"target_id": targetID,
		"success":   result.Success,
		"damage":    result.Damage,
	}).Info("Action resolved")
	return triggered
}

// deductCosts spends the pools a successful action declared. Costs outside
// the known pools are ignored.
func (e *Encounter) deductCosts(c *combatant.Combatant, cost map[string]int) {
	for resource, amount := range cost {
		key := strings.ToLower(resource)
		switch {
		case key == "mp" || key == "mana":
			if !c.SpendMP(amount) {
				c.MP = 0
			}
		case key == "stamina":
			have, ok := c.Attributes["stamina"]
			if !ok {
				have = actions.DefaultStamina
			}
			c.Attributes["stamina"] = max(0, have-amount)
		case strings.HasPrefix(key, "spell_slot_"):
			slot := "spell_slots_" + strings.TrimPrefix(key, "spell_slot_")
			c.Attributes[slot] = max(0, c.Attributes[slot]-amount)
		}
	}
}

// matchesTrigger reports whether a readied condition mentions any key
func matchesTrigger(condition string, keys ...string) bool {
	condition = strings.ToLower(condition)
	for _, key := range keys {
		if key != "" && strings.Contains(condition, strings.ToLower(key)) {
			return true
		}
	}
	return false
}

// fireReadied runs every readied action whose condition mentions one of the
// keys. The readied action targets its chosen target, or whoever set it off.
// Readied actions set off by another readied action do not fire.
func (e *Encounter) fireReadied(ctx context.Context, subjectID string, keys ...string) []*actions.Result {
	if e.resolving || len(e.readied) == 0 {
		return nil
	}
	e.resolving = true
	defer func() { e.resolving = false }()

	owners := make([]string, 0, len(e.readied))
	for id := range e.readied {
		owners = append(owners, id)
	}
	sort.Strings(owners)

	var results []*actions.Result
	for _, ownerID := range owners {
		readied, ok := e.readied[ownerID]
		if !ok || ownerID == subjectID || !matchesTrigger(readied.Condition, keys...) {
			continue
		}
		owner, ok := e.combatants[ownerID]
		if !ok || !owner.IsAlive() {
			delete(e.readied, ownerID)
			continue
		}
		targetID := readied.TargetID
		if targetID == "" {
			targetID = subjectID
		}
		target, ok := e.combatants[targetID]
		if !ok {
			continue
		}
		def, ok := e.actions.Get(readied.ActionID)
		if !ok {
			delete(e.readied, ownerID)
			continue
		}
		if distance, known := e.distance(ownerID, targetID); known && ownerID != targetID && !def.InRange(distance) {
			continue
		}

		delete(e.readied, ownerID)
		result, err := e.actions.UseReadied(ctx, owner.View(), readied.ActionID, target.View())
		if err != nil {
			e.log.WithError(err).WithField("combatant_id", ownerID).Warn("Readied action failed")
			results = append(results, actions.Failed(err.Error()))
			continue
		}

		e.emit(&events.ReadyEvent{
			BaseEvent: e.base(events.EventTypeReadyTriggered, ownerID, targetID),
			ActionID:  readied.ActionID,
			Condition: readied.Condition,
		})
		results = append(results, result)
		results = append(results, e.resolve(ctx, owner, target, def, result)...)
	}
	return results
}

// Ready spends id's standard action to hold actionID until something
// matching condition happens
func (e *Encounter) Ready(ctx context.Context, id, actionID, condition, targetID string) (*actions.Result, error) {
	defer e.bind(ctx)()
	if err := e.requireActive(); err != nil {
		return nil, err
	}
	c, err := e.Combatant(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(condition) == "" {
		return nil, dnderr.InvalidArgument("a readied action needs a trigger condition")
	}
	if targetID != "" {
		if _, err := e.Combatant(targetID); err != nil {
			return nil, err
		}
	}
	if err := e.requireTurn(id); err != nil {
		return nil, err
	}

	ok, reason, err := e.actions.Ready(c.View(), actionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		result := actions.Failed(reason)
		result.ActionID = actionID
		return result, nil
	}

	e.readied[id] = &ReadiedAction{
		ActionID:  actionID,
		Condition: condition,
		TargetID:  targetID,
	}
	e.emit(&events.ReadyEvent{
		BaseEvent: e.base(events.EventTypeActionReadied, id, targetID),
		ActionID:  actionID,
		Condition: condition,
	})

	return &actions.Result{
		Success:  true,
		ActionID: actionID,
		Message:  fmt.Sprintf("%s readies %s to trigger on: %s", id, actionID, condition),
	}, nil
}

// Readied returns the action id is holding, if any
func (e *Encounter) Readied(id string) (*ReadiedAction, bool) {
	r, ok := e.readied[id]
	if !ok {
		return nil, false
	}
	copied := *r
	return &copied, true
}

// Move walks id to dest. The cost comes from the terrain between the two
// points. Enemies whose reach id leaves get an opportunity attack first
// unless id has disengaged.
func (e *Encounter) Move(ctx context.Context, id string, dest area.Position) (*Outcome, error) {
	defer e.bind(ctx)()
	if err := e.requireActive(); err != nil {
		return nil, err
	}
	mover, err := e.Combatant(id)
	if err != nil {
		return nil, err
	}
	if !mover.IsAlive() {
		return nil, dnderr.FailedPreconditionf("combatant %s is down", id)
	}
	if err := e.requireTurn(id); err != nil {
		return nil, err
	}
	from, ok := e.area.Position(id)
	if !ok {
		return nil, dnderr.FailedPreconditionf("combatant %s is not on the field", id)
	}

	if !e.area.CanMoveTo(dest) {
		return e.outcome(actions.Failed(fmt.Sprintf("cannot move to %s", dest)), nil), nil
	}
	cost := e.area.MovementCost(from, dest)
	remaining := e.actions.Remaining(id).Movement
	if cost > remaining+movementEpsilon {
		return e.outcome(actions.Failed(fmt.Sprintf("not enough movement (need %.1f, have %.1f)", cost, remaining)), nil), nil
	}

	triggered := e.provoke(ctx, mover, from, dest)
	if !mover.IsAlive() {
		e.checkEnd(ctx)
		return e.outcome(actions.Failed(fmt.Sprintf("%s fell before reaching %s", id, dest)), triggered), nil
	}

	e.actions.UseMovement(id, cost)
	if err := e.fog.UpdateEntity(id, fog.EntityUpdate{Position: &dest}); err != nil {
		return nil, err
	}

	e.emit(&events.MoveEvent{
		BaseEvent: e.base(events.EventTypeMove, id, ""),
		FromX:     from.X,
		FromZ:     from.Z,
		ToX:       dest.X,
		ToZ:       dest.Z,
		Cost:      cost,
	})
	e.animate("move", id, nil, map[string]any{
		"from": from,
		"to":   dest,
	})

	triggered = append(triggered, e.fireReadied(ctx, id, "move")...)
	e.checkEnd(ctx)

	result := &actions.Result{
		Success: true,
		Message: fmt.Sprintf("%s moves from %s to %s", id, from, dest),
		Data: map[string]any{
			"cost":      cost,
			"remaining": e.actions.Remaining(id).Movement,
		},
	}
	return e.outcome(result, triggered), nil
}

// provoke lets every living enemy whose reach the mover leaves respond:
// registered movement triggers run, then the enemy's first available
// movement reaction is used against the mover
func (e *Encounter) provoke(ctx context.Context, mover *combatant.Combatant, from, dest area.Position) []*actions.Result {
	if effects.Has(mover.View(), "disengaged") {
		return nil
	}

	var results []*actions.Result
	for _, enemyID := range e.area.EntitiesNear(from, actions.DefaultMaxRange) {
		enemy, ok := e.combatants[enemyID]
		if !ok || enemy == mover || !enemy.IsAlive() || teamOf(enemy) == teamOf(mover) {
			continue
		}
		pos, _ := e.area.Position(enemyID)
		if pos.DistanceTo(dest) <= actions.DefaultMaxRange {
			continue
		}

		data := map[string]any{"from": from, "to": dest}
		results = append(results, e.actions.Trigger(ctx, actions.TriggerMovement, mover.View(), enemy.View(), data)...)

		reactions := e.actions.AvailableReactions(enemy.View(), actions.TriggerMovement)
		if len(reactions) == 0 {
			continue
		}
		def := reactions[0]
		result, err := e.actions.Use(ctx, enemy.View(), def.ID, mover.View())
		if err != nil {
			e.log.WithError(err).WithField("combatant_id", enemyID).Warn("Opportunity reaction failed")
			continue
		}
		results = append(results, result)
		results = append(results, e.resolve(ctx, enemy, mover, def, result)...)

		if !mover.IsAlive() {
			break
		}
	}
	return results
}

// UseMovement spends movement without moving on the field
func (e *Encounter) UseMovement(ctx context.Context, id string, distance float64) (float64, error) {
	defer e.bind(ctx)()
	if err := e.requireActive(); err != nil {
		return 0, err
	}
	if _, err := e.Combatant(id); err != nil {
		return 0, err
	}
	if err := e.requireTurn(id); err != nil {
		return 0, err
	}
	return e.actions.UseMovement(id, distance), nil
}

// AvailableActions lists what id could do right now
func (e *Encounter) AvailableActions(id string) ([]*actions.Definition, error) {
	c, err := e.Combatant(id)
	if err != nil {
		return nil, err
	}
	if !c.IsAlive() {
		return nil, nil
	}
	return e.actions.ActionsFor(c.View()), nil
}

// Remaining summarises id's unused economy
func (e *Encounter) Remaining(id string) (actions.Remaining, error) {
	if _, err := e.Combatant(id); err != nil {
		return actions.Remaining{}, err
	}
	return e.actions.Remaining(id), nil
}

// VisibleEntities lists who observerID perceives at floor or better
func (e *Encounter) VisibleEntities(observerID string, floor fog.Visibility) ([]string, error) {
	if _, err := e.Combatant(observerID); err != nil {
		return nil, err
	}
	return e.fog.VisibleEntities(observerID, floor), nil
}

// PerceptionCheck has observerID actively search for targetID
func (e *Encounter) PerceptionCheck(ctx context.Context, observerID, targetID string, bonus float64) (bool, float64, error) {
	defer e.bind(ctx)()
	if _, err := e.Combatant(observerID); err != nil {
		return false, 0, err
	}
	if _, err := e.Combatant(targetID); err != nil {
		return false, 0, err
	}

	success, margin := e.fog.PerceptionCheck(observerID, targetID, bonus)
	visibility, _ := e.fog.Visibility(observerID, targetID)
	e.emit(&events.PerceptionEvent{
		BaseEvent:  e.base(events.EventTypePerception, observerID, targetID),
		Success:    success,
		Margin:     margin,
		Visibility: string(visibility),
	})
	return success, margin, nil
}
