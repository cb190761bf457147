package actions

import (
	"context"
	"fmt"
	"sort"

	"github.com/KirkDiggler/dnd-combat-core/internal/dice"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/combatant"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/logger"
	"github.com/sirupsen/logrus"
)

// DefaultMovement is the budget of a combatant that has never been reset
const DefaultMovement = 30.0

// Config configures a System
type Config struct {
	// Roller is handed to Execute hooks; attacks fall back to the plain
	// result without one
	Roller          dice.Roller
	DefaultMovement float64
	Logger          logrus.FieldLogger
}

// System owns the action registry, each combatant's economy and the
// reaction triggers of one encounter.
type System struct {
	definitions map[string]*Definition
	order       []string
	categories  map[string][]string
	states      map[string]*State
	triggers    map[string][]ReactionFunc

	roller          dice.Roller
	defaultMovement float64
	log             logrus.FieldLogger
}

// NewSystem creates an empty system. Call RegisterBasicActions for the
// stock action set.
func NewSystem(cfg *Config) *System {
	if cfg == nil {
		cfg = &Config{}
	}
	movement := cfg.DefaultMovement
	if movement <= 0 {
		movement = DefaultMovement
	}
	return &System{
		definitions:     make(map[string]*Definition),
		categories:      make(map[string][]string),
		states:          make(map[string]*State),
		triggers:        make(map[string][]ReactionFunc),
		roller:          cfg.Roller,
		defaultMovement: movement,
		log:             logger.OrDiscard(cfg.Logger).WithField("component", "actions"),
	}
}

// Register adds an action under its own categories plus any extra ones.
// A zero MaxRange becomes DefaultMaxRange.
func (s *System) Register(def *Definition, categories ...string) error {
	if def == nil || def.ID == "" {
		return dnderr.InvalidArgument("action id is required")
	}
	if _, exists := s.definitions[def.ID]; exists {
		return dnderr.AlreadyExistsf("action %s is already registered", def.ID)
	}
	if def.Name == "" {
		def.Name = def.ID
	}
	if def.Type == "" {
		def.Type = TypeStandard
	}
	if def.Target == "" {
		def.Target = TargetSingle
	}
	if def.MaxRange == 0 {
		def.MaxRange = DefaultMaxRange
	}
	if def.MinRange > def.MaxRange {
		return dnderr.InvalidArgumentf("action %s min range %.1f exceeds max range %.1f", def.ID, def.MinRange, def.MaxRange)
	}

	s.definitions[def.ID] = def
	s.order = append(s.order, def.ID)

	seen := make(map[string]bool)
	for _, cat := range append(append([]string{}, def.Categories...), categories...) {
		if seen[cat] {
			continue
		}
		seen[cat] = true
		s.categories[cat] = append(s.categories[cat], def.ID)
	}

	s.log.WithFields(logrus.Fields{
		"action_id": def.ID,
		"type":      def.Type,
	}).Debug("Action registered")
	return nil
}

// Get returns a registered action
func (s *System) Get(id string) (*Definition, bool) {
	def, ok := s.definitions[id]
	return def, ok
}

// ByCategory returns the actions in a category in registration order
func (s *System) ByCategory(category string) []*Definition {
	ids := s.categories[category]
	out := make([]*Definition, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.definitions[id])
	}
	return out
}

// Categories returns every category name, sorted
func (s *System) Categories() []string {
	out := make([]string, 0, len(s.categories))
	for cat := range s.categories {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// All returns every action in registration order
func (s *System) All() []*Definition {
	out := make([]*Definition, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.definitions[id])
	}
	return out
}

// State returns a combatant's economy, creating it with the default
// movement budget on first use
func (s *System) State(combatantID string) *State {
	st, ok := s.states[combatantID]
	if !ok {
		st = NewState(s.defaultMovement)
		s.states[combatantID] = st
	}
	return st
}

// Forget drops a combatant's economy
func (s *System) Forget(combatantID string) {
	delete(s.states, combatantID)
}

func (s *System) lookup(actionID string) (*Definition, error) {
	def, ok := s.definitions[actionID]
	if !ok {
		return nil, dnderr.NotFoundf("unknown action %s", actionID)
	}
	return def, nil
}

// check runs the economy, capability and Validate checks in that order
func (s *System) check(v combatant.View, def *Definition, target combatant.View) (bool, string) {
	st := s.State(v.ID())
	if ok, reason := st.check(def); !ok {
		return false, reason
	}
	if ok, reason := CheckCapability(v, def); !ok {
		return false, reason
	}
	if def.Validate != nil {
		if ok, reason := def.Validate(s.invocation(v, def, target)); !ok {
			return false, reason
		}
	}
	return true, ""
}

func (s *System) invocation(v combatant.View, def *Definition, target combatant.View) *Invocation {
	return &Invocation{
		Source: v,
		Target: target,
		Action: def,
		State:  s.State(v.ID()),
		Roller: s.roller,
	}
}

// CanUse reports whether v may use the action against target right now.
// target may be nil. An unknown action is a not-found error; every other
// refusal comes back as false with a reason.
func (s *System) CanUse(v combatant.View, actionID string, target combatant.View) (bool, string, error) {
	def, err := s.lookup(actionID)
	if err != nil {
		return false, "", err
	}
	ok, reason := s.check(v, def, target)
	return ok, reason, nil
}

// ActionsFor returns the registered actions v could use now, ignoring
// target-dependent Validate hooks
func (s *System) ActionsFor(v combatant.View) []*Definition {
	st := s.State(v.ID())
	var out []*Definition
	for _, id := range s.order {
		def := s.definitions[id]
		if !st.CanUse(def) {
			continue
		}
		if ok, _ := CheckCapability(v, def); ok {
			out = append(out, def)
		}
	}
	return out
}

// Use checks and performs an action. Refusals are returned as a failed
// Result; only an unknown action or a failing Execute hook is an error.
// The economy is charged whenever the action executes and the cooldown
// starts only when it succeeded.
func (s *System) Use(ctx context.Context, v combatant.View, actionID string, target combatant.View) (*Result, error) {
	def, err := s.lookup(actionID)
	if err != nil {
		return nil, err
	}
	return s.perform(ctx, v, def, target)
}

// Ready holds an action for later by spending the standard action now
func (s *System) Ready(v combatant.View, actionID string) (bool, string, error) {
	def, err := s.lookup(actionID)
	if err != nil {
		return false, "", err
	}
	st := s.State(v.ID())
	if st.StandardUsed {
		return false, "no standard action available to ready", nil
	}
	if ok, reason := CheckCapability(v, def); !ok {
		return false, reason, nil
	}
	st.StandardUsed = true
	return true, "", nil
}

// UseReadied performs an action readied on an earlier turn. It costs the
// combatant's reaction rather than the action's own slot.
func (s *System) UseReadied(ctx context.Context, v combatant.View, actionID string, target combatant.View) (*Result, error) {
	def, err := s.lookup(actionID)
	if err != nil {
		return nil, err
	}
	readied := *def
	readied.Type = TypeReaction
	return s.perform(ctx, v, &readied, target)
}

func (s *System) perform(ctx context.Context, v combatant.View, def *Definition, target combatant.View) (*Result, error) {
	log := s.log.WithFields(logrus.Fields{
		"combatant_id": v.ID(),
		"action_id":    def.ID,
	})

	if ok, reason := s.check(v, def, target); !ok {
		log.WithField("reason", reason).Debug("Action refused")
		result := Failed(reason)
		result.ActionID = def.ID
		return result, nil
	}

	inv := s.invocation(v, def, target)
	var result *Result
	if def.Execute != nil {
		var err error
		result, err = def.Execute(ctx, inv)
		if err != nil {
			return nil, dnderr.Wrapf(err, "action %s failed", def.ID)
		}
	}
	if result == nil {
		result = defaultResult(inv)
	}
	result.ActionID = def.ID

	inv.State.Use(def, result.Success)

	log.WithFields(logrus.Fields{
		"success": result.Success,
		"damage":  result.Damage,
	}).Debug("Action used")
	return result, nil
}

func defaultResult(inv *Invocation) *Result {
	msg := fmt.Sprintf("%s used %s", inv.Source.ID(), inv.Action.Name)
	if inv.Target != nil {
		msg = fmt.Sprintf("%s used %s on %s", inv.Source.ID(), inv.Action.Name, inv.Target.ID())
	}
	return &Result{Success: true, Message: msg}
}

// UseMovement spends movement outside of any action and returns the
// amount actually spent
func (s *System) UseMovement(combatantID string, distance float64) float64 {
	return s.State(combatantID).UseMovement(distance)
}

// Reset starts a combatant's turn. A movement budget of zero or less uses
// the system default.
func (s *System) Reset(combatantID string, movement float64) {
	if movement <= 0 {
		movement = s.defaultMovement
	}
	s.State(combatantID).Reset(movement)
}

// Remaining summarises a combatant's unused economy
func (s *System) Remaining(combatantID string) Remaining {
	return s.State(combatantID).Remaining()
}

// RegisterTrigger adds a callback for a trigger type such as "movement"
// or "damage"
func (s *System) RegisterTrigger(trigger string, fn ReactionFunc) {
	if fn == nil {
		return
	}
	s.triggers[trigger] = append(s.triggers[trigger], fn)
}

// Trigger runs every callback for the trigger and collects the non-nil
// results. A callback that errors or panics is logged and skipped.
func (s *System) Trigger(ctx context.Context, trigger string, source, target combatant.View, data map[string]any) []*Result {
	var results []*Result
	for i, fn := range s.triggers[trigger] {
		result, err := s.runTrigger(ctx, fn, source, target, data)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"trigger":  trigger,
				"callback": i,
			}).Warn("Reaction trigger failed")
			continue
		}
		if result != nil {
			results = append(results, result)
		}
	}
	return results
}

func (s *System) runTrigger(ctx context.Context, fn ReactionFunc, source, target combatant.View, data map[string]any) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = dnderr.Internalf("reaction callback panicked: %v", r)
		}
	}()
	return fn(ctx, source, target, data)
}

// AvailableReactions lists the reaction actions v could take now that are
// tagged with the trigger, either as "movement" or as "movement_trigger"
func (s *System) AvailableReactions(v combatant.View, trigger string) []*Definition {
	var out []*Definition
	for _, def := range s.ActionsFor(v) {
		if def.Type == TypeReaction && (def.HasTag(trigger) || def.HasTag(trigger+"_trigger")) {
			out = append(out, def)
		}
	}
	return out
}
