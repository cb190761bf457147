package encounter

import (
	"context"
	"strings"
	"sync"

	"github.com/KirkDiggler/dnd-combat-core/internal/dice"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/actions"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/area"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/combatant"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/game/combat"
	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/interfaces"
	"github.com/KirkDiggler/dnd-combat-core/internal/logger"
	"github.com/KirkDiggler/dnd-combat-core/internal/repositories/encounters"
	"github.com/KirkDiggler/dnd-combat-core/internal/telemetry"
	"github.com/KirkDiggler/dnd-combat-core/internal/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Service defines the encounter service interface
type Service interface {
	// CreateEncounter builds an encounter and places its combatants
	CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*combat.Snapshot, error)

	// GetEncounter returns the snapshot of a live encounter, or the last
	// stored snapshot of one that has finished
	GetEncounter(ctx context.Context, encounterID string) (*combat.Snapshot, error)

	// ListEncounters returns every stored snapshot
	ListEncounters(ctx context.Context) ([]*combat.Snapshot, error)

	// StartEncounter rolls initiative and starts the first turn
	StartEncounter(ctx context.Context, encounterID string) (*combat.Snapshot, error)

	// NextTurn advances to the next turn
	NextTurn(ctx context.Context, encounterID string) (*combat.Snapshot, error)

	// DelayTurn moves the acting combatant to the end of the round
	DelayTurn(ctx context.Context, encounterID, combatantID string) (*combat.Snapshot, error)

	// TakeAction performs an action for a combatant
	TakeAction(ctx context.Context, input *ActionInput) (*combat.Outcome, error)

	// ReadyAction holds an action until its trigger comes up
	ReadyAction(ctx context.Context, input *ReadyInput) (*actions.Result, error)

	// Move walks a combatant to a new position
	Move(ctx context.Context, encounterID, combatantID string, dest area.Position) (*combat.Outcome, error)

	// AvailableActions lists what a combatant could do right now
	AvailableActions(ctx context.Context, encounterID, combatantID string) ([]*actions.Definition, error)

	// AddCombatant brings a combatant into an encounter
	AddCombatant(ctx context.Context, encounterID string, c *combatant.Combatant) (*combat.Snapshot, error)

	// RemoveCombatant takes a combatant out of an encounter
	RemoveCombatant(ctx context.Context, encounterID, combatantID string) error

	// ApplyDamage applies damage to a combatant
	ApplyDamage(ctx context.Context, encounterID, combatantID string, amount int, damageType string) (int, error)

	// HealCombatant heals a combatant
	HealCombatant(ctx context.Context, encounterID, combatantID string, amount int) (int, error)

	// ApplyEffect attaches a status effect to a combatant
	ApplyEffect(ctx context.Context, encounterID, combatantID string, effect *effects.StatusEffect) (*effects.StatusEffect, error)

	// RemoveEffect drops every effect with the name from a combatant
	RemoveEffect(ctx context.Context, encounterID, combatantID, name string) (bool, error)

	// EndEncounter ends the encounter
	EndEncounter(ctx context.Context, encounterID string) (*combat.Snapshot, error)

	// DeleteEncounter drops an encounter and its stored snapshot
	DeleteEncounter(ctx context.Context, encounterID string) error
}

// CreateEncounterInput contains data for creating an encounter
type CreateEncounterInput struct {
	Name       string
	Combatants []*combatant.Combatant
	// Settings overrides the service defaults when non-nil
	Settings *combat.Settings
}

// ActionInput contains data for taking an action
type ActionInput struct {
	EncounterID string
	ActorID     string
	ActionID    string
	TargetID    string
}

// ReadyInput contains data for readying an action
type ReadyInput struct {
	EncounterID string
	ActorID     string
	ActionID    string
	Condition   string
	TargetID    string
}

// live is an encounter held in memory. One encounter is never used from
// two goroutines at once.
type live struct {
	mu  sync.Mutex
	enc *combat.Encounter
}

type service struct {
	mu   sync.RWMutex
	live map[string]*live

	repository encounters.Repository
	roller     dice.Roller
	settings   combat.Settings
	threshold  int

	narrative interfaces.NarrativeSink
	animation interfaces.AnimationSink
	resources interfaces.ResourcePool

	uuidGenerator uuid.Generator
	tracer        trace.Tracer
	log           logrus.FieldLogger
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository encounters.Repository
	Roller     dice.Roller
	Settings   combat.Settings

	PersistentEffectThreshold int

	Narrative interfaces.NarrativeSink
	Animation interfaces.AnimationSink
	Resources interfaces.ResourcePool

	UUIDGenerator uuid.Generator
	Tracer        trace.Tracer
	Logger        logrus.FieldLogger
}

// NewService creates a new encounter service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil || cfg.Repository == nil {
		panic("repository is required")
	}

	svc := &service{
		live:       make(map[string]*live),
		repository: cfg.Repository,
		roller:     cfg.Roller,
		settings:   cfg.Settings,
		threshold:  cfg.PersistentEffectThreshold,
		narrative:  cfg.Narrative,
		animation:  cfg.Animation,
		resources:  cfg.Resources,
		tracer:     cfg.Tracer,
		log:        logger.OrDiscard(cfg.Logger).WithField("component", "encounter_service"),
	}

	if svc.roller == nil {
		svc.roller = dice.NewRandomRoller()
	}
	if cfg.UUIDGenerator != nil {
		svc.uuidGenerator = cfg.UUIDGenerator
	} else {
		svc.uuidGenerator = uuid.NewPrefixedGenerator("enc")
	}
	if svc.tracer == nil {
		svc.tracer = telemetry.Tracer("encounter")
	}

	return svc
}

// CreateEncounter builds an encounter and places its combatants
func (s *service) CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*combat.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "encounter.create")
	defer span.End()

	if input == nil {
		return nil, fail(span, dnderr.InvalidArgument("input cannot be nil"))
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fail(span, dnderr.InvalidArgument("encounter name is required"))
	}

	for _, c := range input.Combatants {
		if c == nil {
			continue
		}
		if err := s.restoreEffects(ctx, c); err != nil {
			return nil, fail(span, err)
		}
	}

	settings := s.settings
	if input.Settings != nil {
		settings = *input.Settings
	}

	encounterID := s.uuidGenerator.New()
	span.SetAttributes(attribute.String("encounter.id", encounterID))

	enc, err := combat.NewEncounter(&combat.Config{
		ID:                        encounterID,
		Name:                      input.Name,
		Combatants:                input.Combatants,
		Settings:                  settings,
		Roller:                    s.roller,
		PersistentEffectThreshold: s.threshold,
		Persister:                 s.repository,
		Narrative:                 s.narrative,
		Animation:                 s.animation,
		Resources:                 s.resources,
		Logger:                    s.log,
	})
	if err != nil {
		return nil, fail(span, dnderr.Wrap(err, "failed to create encounter"))
	}

	s.mu.Lock()
	if _, exists := s.live[encounterID]; exists {
		s.mu.Unlock()
		return nil, fail(span, dnderr.AlreadyExistsf("encounter %s already exists", encounterID))
	}
	s.live[encounterID] = &live{enc: enc}
	s.mu.Unlock()

	s.save(ctx, enc)

	s.log.WithFields(logrus.Fields{
		"encounter_id": encounterID,
		"combatants":   len(input.Combatants),
	}).Info("Encounter created")

	return enc.Snapshot(), nil
}

// restoreEffects adds a combatant's stored long-running effects that it
// does not already carry
func (s *service) restoreEffects(ctx context.Context, c *combatant.Combatant) error {
	if c.ID == "" {
		return nil
	}
	stored, err := s.repository.GetEffects(ctx, c.ID)
	if err != nil {
		return dnderr.Wrapf(err, "failed to load effects for %s", c.ID)
	}
	for _, se := range stored {
		if !hasEffect(c, se.Name) {
			c.Effects = append(c.Effects, se)
		}
	}
	return nil
}

func hasEffect(c *combatant.Combatant, name string) bool {
	for _, se := range c.Effects {
		if se != nil && se.Name == name {
			return true
		}
	}
	return false
}

// GetEncounter returns the snapshot of a live encounter, or the last
// stored snapshot of one that has finished
func (s *service) GetEncounter(ctx context.Context, encounterID string) (*combat.Snapshot, error) {
	if strings.TrimSpace(encounterID) == "" {
		return nil, dnderr.InvalidArgument("encounter ID is required")
	}

	ctx, span := s.start(ctx, "encounter.get", encounterID)
	defer span.End()

	if l, ok := s.find(encounterID); ok {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.enc.Snapshot(), nil
	}

	state, err := s.repository.GetState(ctx, encounterID)
	if err != nil {
		return nil, fail(span, dnderr.Wrapf(err, "failed to get encounter '%s'", encounterID))
	}
	snap, err := combat.DecodeSnapshot(state)
	if err != nil {
		return nil, fail(span, err)
	}
	return snap, nil
}

// ListEncounters returns every stored snapshot
func (s *service) ListEncounters(ctx context.Context) ([]*combat.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "encounter.list")
	defer span.End()

	records, err := s.repository.List(ctx)
	if err != nil {
		return nil, fail(span, dnderr.Wrap(err, "failed to list encounters"))
	}

	snaps := make([]*combat.Snapshot, 0, len(records))
	for _, rec := range records {
		snap, err := combat.DecodeSnapshot(rec.State)
		if err != nil {
			s.log.WithError(err).WithField("encounter_id", rec.EncounterID).Warn("Skipping unreadable snapshot")
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// StartEncounter rolls initiative and starts the first turn
func (s *service) StartEncounter(ctx context.Context, encounterID string) (*combat.Snapshot, error) {
	var snap *combat.Snapshot
	err := s.with(ctx, "encounter.start", encounterID, func(ctx context.Context, enc *combat.Encounter) error {
		var err error
		snap, err = enc.Start(ctx)
		return err
	})
	return snap, err
}

// NextTurn advances to the next turn
func (s *service) NextTurn(ctx context.Context, encounterID string) (*combat.Snapshot, error) {
	var snap *combat.Snapshot
	err := s.with(ctx, "encounter.next_turn", encounterID, func(ctx context.Context, enc *combat.Encounter) error {
		var err error
		snap, err = enc.NextTurn(ctx)
		return err
	})
	return snap, err
}

// DelayTurn moves the acting combatant to the end of the round
func (s *service) DelayTurn(ctx context.Context, encounterID, combatantID string) (*combat.Snapshot, error) {
	var snap *combat.Snapshot
	err := s.with(ctx, "encounter.delay", encounterID, func(ctx context.Context, enc *combat.Encounter) error {
		var err error
		snap, err = enc.Delay(ctx, combatantID)
		return err
	})
	return snap, err
}

// TakeAction performs an action for a combatant
func (s *service) TakeAction(ctx context.Context, input *ActionInput) (*combat.Outcome, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}

	var outcome *combat.Outcome
	err := s.with(ctx, "encounter.take_action", input.EncounterID, func(ctx context.Context, enc *combat.Encounter) error {
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("combatant.id", input.ActorID),
			attribute.String("action.id", input.ActionID),
		)
		var err error
		outcome, err = enc.TakeAction(ctx, input.ActorID, input.ActionID, input.TargetID)
		return err
	})
	return outcome, err
}

// ReadyAction holds an action until its trigger comes up
func (s *service) ReadyAction(ctx context.Context, input *ReadyInput) (*actions.Result, error) {
	if input == nil {
		return nil, dnderr.InvalidArgument("input cannot be nil")
	}

	var result *actions.Result
	err := s.with(ctx, "encounter.ready_action", input.EncounterID, func(ctx context.Context, enc *combat.Encounter) error {
		var err error
		result, err = enc.Ready(ctx, input.ActorID, input.ActionID, input.Condition, input.TargetID)
		return err
	})
	return result, err
}

// Move walks a combatant to a new position
func (s *service) Move(ctx context.Context, encounterID, combatantID string, dest area.Position) (*combat.Outcome, error) {
	var outcome *combat.Outcome
	err := s.with(ctx, "encounter.move", encounterID, func(ctx context.Context, enc *combat.Encounter) error {
		var err error
		outcome, err = enc.Move(ctx, combatantID, dest)
		return err
	})
	return outcome, err
}

// AvailableActions lists what a combatant could do right now
func (s *service) AvailableActions(ctx context.Context, encounterID, combatantID string) ([]*actions.Definition, error) {
	ctx, span := s.start(ctx, "encounter.available_actions", encounterID)
	defer span.End()

	l, err := s.lookup(encounterID)
	if err != nil {
		return nil, fail(span, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	defs, err := l.enc.AvailableActions(combatantID)
	if err != nil {
		return nil, fail(span, err)
	}
	return defs, nil
}

// AddCombatant brings a combatant into an encounter
func (s *service) AddCombatant(ctx context.Context, encounterID string, c *combatant.Combatant) (*combat.Snapshot, error) {
	if c == nil {
		return nil, dnderr.InvalidArgument("combatant cannot be nil")
	}
	if err := s.restoreEffects(ctx, c); err != nil {
		return nil, err
	}

	var snap *combat.Snapshot
	err := s.with(ctx, "encounter.add_combatant", encounterID, func(ctx context.Context, enc *combat.Encounter) error {
		if err := enc.AddCombatant(ctx, c); err != nil {
			return err
		}
		snap = enc.Snapshot()
		return nil
	})
	return snap, err
}

// RemoveCombatant takes a combatant out of an encounter
func (s *service) RemoveCombatant(ctx context.Context, encounterID, combatantID string) error {
	return s.with(ctx, "encounter.remove_combatant", encounterID, func(ctx context.Context, enc *combat.Encounter) error {
		removed, err := enc.RemoveCombatant(ctx, combatantID)
		if err != nil {
			return err
		}
		if !removed {
			return dnderr.NotFoundf("combatant %s is not in encounter %s", combatantID, encounterID)
		}
		return nil
	})
}

// ApplyDamage applies damage to a combatant
func (s *service) ApplyDamage(ctx context.Context, encounterID, combatantID string, amount int, damageType string) (int, error) {
	var dealt int
	err := s.with(ctx, "encounter.apply_damage", encounterID, func(ctx context.Context, enc *combat.Encounter) error {
		var err error
		dealt, err = enc.ApplyDamage(ctx, combatantID, amount, damageType, "")
		return err
	})
	return dealt, err
}

// HealCombatant heals a combatant
func (s *service) HealCombatant(ctx context.Context, encounterID, combatantID string, amount int) (int, error) {
	var healed int
	err := s.with(ctx, "encounter.heal", encounterID, func(ctx context.Context, enc *combat.Encounter) error {
		var err error
		healed, err = enc.ApplyHealing(ctx, combatantID, amount)
		return err
	})
	return healed, err
}

// ApplyEffect attaches a status effect to a combatant
func (s *service) ApplyEffect(ctx context.Context, encounterID, combatantID string, effect *effects.StatusEffect) (*effects.StatusEffect, error) {
	var applied *effects.StatusEffect
	err := s.with(ctx, "encounter.apply_effect", encounterID, func(ctx context.Context, enc *combat.Encounter) error {
		var err error
		applied, err = enc.ApplyEffect(ctx, combatantID, effect)
		return err
	})
	return applied, err
}

// RemoveEffect drops every effect with the name from a combatant
func (s *service) RemoveEffect(ctx context.Context, encounterID, combatantID, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, dnderr.InvalidArgument("effect name is required")
	}
	var removed bool
	err := s.with(ctx, "encounter.remove_effect", encounterID, func(ctx context.Context, enc *combat.Encounter) error {
		var err error
		removed, err = enc.RemoveEffect(ctx, combatantID, name, true)
		return err
	})
	return removed, err
}

// EndEncounter ends the encounter
func (s *service) EndEncounter(ctx context.Context, encounterID string) (*combat.Snapshot, error) {
	var snap *combat.Snapshot
	err := s.with(ctx, "encounter.end", encounterID, func(ctx context.Context, enc *combat.Encounter) error {
		var err error
		snap, err = enc.End(ctx)
		return err
	})
	return snap, err
}

// DeleteEncounter drops an encounter and its stored snapshot
func (s *service) DeleteEncounter(ctx context.Context, encounterID string) error {
	ctx, span := s.start(ctx, "encounter.delete", encounterID)
	defer span.End()

	s.mu.Lock()
	_, wasLive := s.live[encounterID]
	delete(s.live, encounterID)
	s.mu.Unlock()

	err := s.repository.Delete(ctx, encounterID)
	if err != nil && !(wasLive && dnderr.IsNotFound(err)) {
		return fail(span, dnderr.Wrapf(err, "failed to delete encounter '%s'", encounterID))
	}
	return nil
}

// with runs fn on a live encounter under its lock, then stores the new
// snapshot. Encounters that have ended are dropped from memory; their last
// snapshot stays readable through GetEncounter.
func (s *service) with(ctx context.Context, op, encounterID string, fn func(context.Context, *combat.Encounter) error) error {
	ctx, span := s.start(ctx, op, encounterID)
	defer span.End()

	l, err := s.lookup(encounterID)
	if err != nil {
		return fail(span, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := fn(ctx, l.enc); err != nil {
		return fail(span, err)
	}

	s.save(ctx, l.enc)

	status := l.enc.Status()
	span.SetAttributes(
		attribute.String("encounter.status", string(status)),
		attribute.Int("encounter.round", l.enc.Round()),
	)
	if status == combat.EncounterStatusEnded {
		s.evict(encounterID, l)
	}
	return nil
}

func (s *service) start(ctx context.Context, op, encounterID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("encounter.id", encounterID)))
}

func (s *service) find(encounterID string) (*live, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.live[encounterID]
	return l, ok
}

func (s *service) lookup(encounterID string) (*live, error) {
	if strings.TrimSpace(encounterID) == "" {
		return nil, dnderr.InvalidArgument("encounter ID is required")
	}
	l, ok := s.find(encounterID)
	if !ok {
		return nil, dnderr.NotFoundf("encounter %s is not running", encounterID).
			WithMeta("encounter_id", encounterID)
	}
	return l, nil
}

func (s *service) evict(encounterID string, l *live) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live[encounterID] == l {
		delete(s.live, encounterID)
	}
}

// save stores the encounter's snapshot. Failures are logged and never
// undo the change that was just made.
func (s *service) save(ctx context.Context, enc *combat.Encounter) {
	data, err := enc.MarshalSnapshot()
	if err != nil {
		s.log.WithError(err).WithField("encounter_id", enc.ID()).Warn("Failed to encode snapshot")
		return
	}
	if err := s.repository.SaveState(ctx, enc.ID(), data); err != nil {
		s.log.WithError(err).WithField("encounter_id", enc.ID()).Warn("Failed to save snapshot")
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
