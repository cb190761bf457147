package combat

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/KirkDiggler/dnd-combat-core/internal/dice"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/actions"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/area"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/combatant"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/fog"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/turnqueue"
	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/events"
	"github.com/KirkDiggler/dnd-combat-core/internal/interfaces"
	"github.com/KirkDiggler/dnd-combat-core/internal/logger"
	"github.com/KirkDiggler/dnd-combat-core/internal/uuid"
	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"
)

// EncounterStatus represents the current state of an encounter
type EncounterStatus string

const (
	EncounterStatusPending EncounterStatus = "pending" // Built, initiative not rolled
	EncounterStatusActive  EncounterStatus = "active"  // Combat in progress
	EncounterStatusEnded   EncounterStatus = "ended"   // Encounter finished
)

// lifecycle transitions
const (
	transitionStart = "start"
	transitionEnd   = "end"
)

const (
	// nearLine and farLine are the depth fractions where the two sides
	// line up
	nearLine = 0.25
	farLine  = 0.75

	maxSpawnSpacing = 2.0
	spawnSearch     = 3.0
)

// Settings are the tunables of one encounter's battlefield
type Settings struct {
	AreaWidth       float64
	AreaDepth       float64
	GridSize        float64
	DefaultMovement float64
	LOSCacheTTL     time.Duration
	// DefaultTerrain adds the stock pillar, boulders and mud. TerrainSeed
	// places them; zero picks a seed from the clock.
	DefaultTerrain bool
	TerrainSeed    int64
	// StaticInitiative skips the d20: every combatant takes its default
	// initiative unless it carries an override.
	StaticInitiative bool
}

// Config configures a new Encounter. Only Combatants is required.
type Config struct {
	ID         string
	Name       string
	Combatants []*combatant.Combatant
	Settings   Settings

	Roller  dice.Roller
	Actions *actions.System
	Effects *effects.Engine
	Clock   fog.TimeProvider
	Bus     *events.Bus

	// PersistentEffectThreshold is used when Effects is nil
	PersistentEffectThreshold int
	Persister                 interfaces.Persister
	Narrative                 interfaces.NarrativeSink
	Animation                 interfaces.AnimationSink
	Resources                 interfaces.ResourcePool

	IDGenerator uuid.Generator
	Logger      logrus.FieldLogger
}

// ReadiedAction is an action held until its condition comes up
type ReadiedAction struct {
	ActionID  string `json:"action_id"`
	Condition string `json:"condition"`
	TargetID  string `json:"target_id,omitempty"`
}

// Encounter owns one fight: the battlefield, the turn order, what everyone
// can see, and each combatant's action economy and effects. It is not safe
// for concurrent use.
type Encounter struct {
	id   string
	name string

	combatants map[string]*combatant.Combatant
	joined     []string
	readied    map[string]*ReadiedAction
	round      int
	winner     string
	final      *Snapshot

	area    *area.Area
	fog     *fog.FogOfWar
	queue   *turnqueue.Queue
	actions *actions.System
	effects *effects.Engine
	roller  dice.Roller
	bus     *events.Bus
	state   *fsm.FSM
	hooks   *turnHooks

	defaultMovement  float64
	staticInitiative bool
	resolving        bool

	narrative interfaces.NarrativeSink
	animation interfaces.AnimationSink
	resources interfaces.ResourcePool

	log logrus.FieldLogger
}

// NewEncounter builds an encounter and places every combatant on the
// field: the first combatant's team along the near line, everyone else
// along the far line, unless a combatant asks for a position.
func NewEncounter(cfg *Config) (*Encounter, error) {
	if cfg == nil || len(cfg.Combatants) == 0 {
		return nil, dnderr.InvalidArgument("an encounter needs combatants")
	}

	id := cfg.ID
	if id == "" {
		gen := cfg.IDGenerator
		if gen == nil {
			gen = uuid.NewPrefixedGenerator("enc")
		}
		id = gen.New()
	}
	name := cfg.Name
	if name == "" {
		name = "Encounter"
	}

	log := logger.OrDiscard(cfg.Logger).WithFields(logrus.Fields{
		"component":    "encounter",
		"encounter_id": id,
	})

	settings := cfg.Settings
	if settings.DefaultMovement <= 0 {
		settings.DefaultMovement = actions.DefaultMovement
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.NewRandomRoller()
	}

	field := area.New(&area.Config{
		ID:       id + "-area",
		Name:     name,
		Width:    settings.AreaWidth,
		Depth:    settings.AreaDepth,
		GridSize: settings.GridSize,
		Logger:   cfg.Logger,
	})
	if settings.DefaultTerrain {
		seed := settings.TerrainSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		if err := field.AddDefaultTerrain(rand.New(rand.NewSource(seed))); err != nil {
			return nil, err
		}
	}

	sight, err := fog.New(&fog.Config{
		Area:         field,
		TimeProvider: cfg.Clock,
		LOSCacheTTL:  settings.LOSCacheTTL,
		Logger:       cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	system := cfg.Actions
	if system == nil {
		system = actions.NewSystem(&actions.Config{
			Roller:          roller,
			DefaultMovement: settings.DefaultMovement,
			Logger:          cfg.Logger,
		})
		if err := actions.RegisterBasicActions(system); err != nil {
			return nil, err
		}
	}

	engine := cfg.Effects
	if engine == nil {
		var persister effects.Persister
		if cfg.Persister != nil {
			persister = cfg.Persister
		}
		engine = effects.NewEngine(&effects.EngineConfig{
			PersistentThreshold: cfg.PersistentEffectThreshold,
			Persister:           persister,
			Logger:              cfg.Logger,
		})
	}

	bus := cfg.Bus
	if bus == nil {
		bus = events.NewBus(cfg.Logger)
	}

	e := &Encounter{
		id:               id,
		name:             name,
		combatants:       make(map[string]*combatant.Combatant, len(cfg.Combatants)),
		readied:          make(map[string]*ReadiedAction),
		area:             field,
		fog:              sight,
		queue:            turnqueue.New(&turnqueue.Config{Logger: cfg.Logger}),
		actions:          system,
		effects:          engine,
		roller:           roller,
		bus:              bus,
		defaultMovement:  settings.DefaultMovement,
		staticInitiative: settings.StaticInitiative,
		narrative:        cfg.Narrative,
		animation:        cfg.Animation,
		resources:        cfg.Resources,
		log:              log,
	}
	e.hooks = &turnHooks{e: e}
	e.queue.Register(e.hooks)
	e.state = fsm.NewFSM(
		string(EncounterStatusPending),
		fsm.Events{
			{Name: transitionStart, Src: []string{string(EncounterStatusPending)}, Dst: string(EncounterStatusActive)},
			{Name: transitionEnd, Src: []string{string(EncounterStatusPending), string(EncounterStatusActive)}, Dst: string(EncounterStatusEnded)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, ev *fsm.Event) {
				e.log.WithFields(logrus.Fields{
					"from": ev.Src,
					"to":   ev.Dst,
				}).Info("Encounter state changed")
			},
		},
	)

	if e.narrative != nil {
		e.bus.SubscribeAll(&narrativeListener{e: e})
	}

	for _, c := range cfg.Combatants {
		if err := e.register(c); err != nil {
			return nil, err
		}
	}
	e.placeAll(cfg.Combatants)

	log.WithField("combatants", len(e.combatants)).Info("Encounter created")
	return e, nil
}

// register validates a combatant and adds it to the roster
func (e *Encounter) register(c *combatant.Combatant) error {
	if c == nil {
		return dnderr.InvalidArgument("combatant is nil")
	}
	if c.ID == "" {
		return dnderr.InvalidArgument("combatant id is required")
	}
	if _, exists := e.combatants[c.ID]; exists {
		return dnderr.AlreadyExistsf("combatant %s is already in encounter %s", c.ID, e.id)
	}
	c.ApplyDefaults()
	e.combatants[c.ID] = c
	e.joined = append(e.joined, c.ID)
	return nil
}

// teamOf falls back to the combatant type for combatants without a team
func teamOf(c *combatant.Combatant) string {
	if c.Team != "" {
		return c.Team
	}
	return string(c.Type)
}

func (e *Encounter) placeAll(list []*combatant.Combatant) {
	width, depth := e.area.Bounds()
	home := teamOf(list[0])

	var near, far []*combatant.Combatant
	for _, c := range list {
		if teamOf(c) == home {
			near = append(near, c)
		} else {
			far = append(far, c)
		}
	}

	line := func(group []*combatant.Combatant, z float64) {
		spacing := min(maxSpawnSpacing, width/float64(max(len(group), 1)))
		for i, c := range group {
			e.place(c, area.Pos((float64(i)+0.5)*spacing, z))
		}
	}
	line(near, depth*nearLine)
	line(far, depth*farLine)
}

// place puts c on the field, at its requested position when it has one,
// nudged off terrain, and registers its senses with the fog of war
func (e *Encounter) place(c *combatant.Combatant, fallback area.Position) {
	p := fallback
	if c.Position != nil {
		p = *c.Position
	}
	p = e.area.NearestValidPosition(p, spawnSearch)
	if err := e.area.Add(c.ID, p); err != nil {
		e.log.WithError(err).WithField("combatant_id", c.ID).Warn("Could not place combatant")
	}
	e.syncSenses(c)
}

// syncSenses pushes stealth and perception, after effects, into the fog
func (e *Encounter) syncSenses(c *combatant.Combatant) {
	v := c.View()
	stealth := effects.CalculateTotalImpact(v, "hidden", c.Stealth)
	detection := c.Perception
	if err := e.fog.UpdateEntity(c.ID, fog.EntityUpdate{Stealth: &stealth, Detection: &detection}); err != nil {
		e.log.WithError(err).WithField("combatant_id", c.ID).Warn("Could not update senses")
	}
}

// ID returns the encounter id
func (e *Encounter) ID() string { return e.id }

// Name returns the encounter name
func (e *Encounter) Name() string { return e.name }

// Status returns the lifecycle state
func (e *Encounter) Status() EncounterStatus { return EncounterStatus(e.state.Current()) }

// Round returns the current round, zero before Start
func (e *Encounter) Round() int { return e.round }

// Winner returns the winning team once the encounter has ended
func (e *Encounter) Winner() string { return e.winner }

// Area exposes the battlefield
func (e *Encounter) Area() *area.Area { return e.area }

// Fog exposes the visibility engine
func (e *Encounter) Fog() *fog.FogOfWar { return e.fog }

// Actions exposes the action system
func (e *Encounter) Actions() *actions.System { return e.actions }

// Bus exposes the encounter's event bus
func (e *Encounter) Bus() *events.Bus { return e.bus }

// Current returns the acting combatant
func (e *Encounter) Current() (string, bool) { return e.queue.Current() }

// TurnOrder returns the queue entries in order
func (e *Encounter) TurnOrder() []turnqueue.Entry { return e.queue.Order() }

// Combatant returns a combatant by id
func (e *Encounter) Combatant(id string) (*combatant.Combatant, error) {
	c, ok := e.combatants[id]
	if !ok {
		return nil, dnderr.NotFoundf("combatant %s not found", id).WithMeta("encounter_id", e.id)
	}
	return c, nil
}

// Combatants returns every combatant in the order they joined
func (e *Encounter) Combatants() []*combatant.Combatant {
	out := make([]*combatant.Combatant, 0, len(e.joined))
	for _, id := range e.joined {
		out = append(out, e.combatants[id])
	}
	return out
}

// RegisterObserver adds a turn observer. Observers run after the
// encounter's own turn hooks.
func (e *Encounter) RegisterObserver(o turnqueue.TurnObserver) {
	e.queue.Register(o)
}

func (e *Encounter) requireActive() error {
	if !e.state.Is(string(EncounterStatusActive)) {
		return dnderr.FailedPreconditionf("encounter %s is %s", e.id, e.state.Current())
	}
	return nil
}

func (e *Encounter) requireTurn(id string) error {
	if cur, ok := e.queue.Current(); !ok || cur != id {
		return dnderr.NotYourTurn(id).WithMeta("encounter_id", e.id)
	}
	return nil
}

// rollInitiative is d20 plus the dexterity modifier, or the override.
// Static initiative never rolls.
func (e *Encounter) rollInitiative(c *combatant.Combatant) (int, error) {
	if c.InitiativeOverride != nil || e.staticInitiative {
		return c.DefaultInitiative(), nil
	}
	roll, err := e.roller.Roll(1, 20, 0)
	if err != nil {
		return 0, dnderr.Wrapf(err, "failed to roll initiative for %s", c.ID)
	}
	return roll.Total + c.Modifier("DEX"), nil
}

// Start rolls initiative, opens round one and starts the first turn
func (e *Encounter) Start(ctx context.Context) (*Snapshot, error) {
	defer e.bind(ctx)()
	if !e.state.Can(transitionStart) {
		return nil, dnderr.FailedPreconditionf("encounter %s is already %s", e.id, e.state.Current())
	}

	entries := make([]turnqueue.Entry, 0, len(e.joined))
	for _, id := range e.joined {
		c := e.combatants[id]
		if !c.IsAlive() {
			continue
		}
		entry := turnqueue.Entry{
			ID:        id,
			Dexterity: c.Attribute("DEX"),
			Override:  c.InitiativeOverride,
		}
		if entry.Override == nil && !e.staticInitiative {
			rolled, err := e.rollInitiative(c)
			if err != nil {
				return nil, err
			}
			entry.Override = &rolled
		}
		entries = append(entries, entry)
	}
	if err := e.queue.Initialize(entries); err != nil {
		return nil, err
	}
	for _, entry := range e.queue.Order() {
		e.combatants[entry.ID].Initiative = entry.Initiative
	}

	if err := e.state.Event(ctx, transitionStart); err != nil {
		return nil, dnderr.Wrap(err, "failed to start encounter")
	}
	e.round = 1
	e.emit(&events.CombatEvent{BaseEvent: e.base(events.EventTypeCombatStarted, "", "")})

	e.advance(ctx)
	e.fog.UpdateAll()

	e.log.WithFields(logrus.Fields{
		"turn_order": e.queue.Order(),
	}).Info("Encounter started")

	e.checkEnd(ctx)
	return e.Snapshot(), nil
}

// advance moves the queue on. A wrap is flagged up front so the new round
// opens between the last turn's end and the next turn's start.
func (e *Encounter) advance(ctx context.Context) {
	defer e.bind(ctx)()
	e.hooks.newRound = e.queue.WillWrap()
	defer func() { e.hooks.newRound = false }()
	e.queue.Advance()
}

func (e *Encounter) startRound() {
	e.round++
	e.emit(&events.RoundEvent{
		BaseEvent: e.base(events.EventTypeRoundStarted, "", ""),
		Order:     e.orderIDs(),
	})
	e.log.WithField("round", e.round).Info("Round started")
}

func (e *Encounter) orderIDs() []string {
	order := e.queue.Order()
	ids := make([]string, len(order))
	for i, entry := range order {
		ids[i] = entry.ID
	}
	return ids
}

// NextTurn ends the current turn and starts the next one
func (e *Encounter) NextTurn(ctx context.Context) (*Snapshot, error) {
	defer e.bind(ctx)()
	if err := e.requireActive(); err != nil {
		return nil, err
	}
	e.advance(ctx)
	return e.Snapshot(), nil
}

// Delay moves the acting combatant to the end of the round
func (e *Encounter) Delay(ctx context.Context, id string) (*Snapshot, error) {
	defer e.bind(ctx)()
	if err := e.requireActive(); err != nil {
		return nil, err
	}
	c, err := e.Combatant(id)
	if err != nil {
		return nil, err
	}

	next, err := e.queue.Delay(id)
	if err != nil {
		return nil, err
	}

	initiative, _ := e.queue.Initiative(id)
	c.Initiative = initiative
	e.emit(&events.TurnEvent{
		BaseEvent:  e.base(events.EventTypeTurnDelayed, id, next),
		Initiative: initiative,
	})
	return e.Snapshot(), nil
}

// RecomputeInitiative sets a new initiative, or rerolls it when initiative
// is nil
func (e *Encounter) RecomputeInitiative(ctx context.Context, id string, initiative *int) (int, error) {
	defer e.bind(ctx)()
	c, err := e.Combatant(id)
	if err != nil {
		return 0, err
	}
	value := 0
	if initiative != nil {
		value = *initiative
	} else if value, err = e.rollInitiative(&combatant.Combatant{ID: c.ID, Attributes: c.Attributes}); err != nil {
		return 0, err
	}
	if err := e.queue.RecomputeInitiative(id, value); err != nil {
		return 0, err
	}
	c.Initiative = value
	return value, nil
}

// AddCombatant brings a new combatant into the fight. Once combat is
// running it rolls initiative and joins the queue straight away.
func (e *Encounter) AddCombatant(ctx context.Context, c *combatant.Combatant) error {
	defer e.bind(ctx)()
	if e.state.Is(string(EncounterStatusEnded)) {
		return dnderr.FailedPreconditionf("encounter %s has ended", e.id)
	}
	if err := e.register(c); err != nil {
		return err
	}

	width, depth := e.area.Bounds()
	z := depth * farLine
	if len(e.joined) > 0 && teamOf(e.combatants[e.joined[0]]) == teamOf(c) {
		z = depth * nearLine
	}
	e.place(c, area.Pos(width/2, z))

	if e.state.Is(string(EncounterStatusActive)) && c.IsAlive() {
		initiative, err := e.rollInitiative(c)
		if err != nil {
			return err
		}
		c.Initiative = initiative
		if err := e.queue.Add(c.ID, initiative); err != nil {
			return err
		}
	}

	e.emit(&events.CombatEvent{BaseEvent: e.base(events.EventTypeCombatantJoined, c.ID, "")})
	return nil
}

// RemoveCombatant takes a combatant out of the encounter entirely
func (e *Encounter) RemoveCombatant(ctx context.Context, id string) (bool, error) {
	defer e.bind(ctx)()
	if _, ok := e.combatants[id]; !ok {
		return false, nil
	}

	delete(e.combatants, id)
	delete(e.readied, id)
	for i, joined := range e.joined {
		if joined == id {
			e.joined = append(e.joined[:i], e.joined[i+1:]...)
			break
		}
	}
	e.queue.Remove(id)
	e.area.Remove(id)
	e.fog.Forget(id)
	e.actions.Forget(id)

	e.emit(&events.CombatEvent{BaseEvent: e.base(events.EventTypeCombatantLeft, id, "")})
	e.checkEnd(ctx)
	return true, nil
}

// AddTerrain places a terrain feature and drops every cached sightline so
// the new feature blocks sight straight away
func (e *Encounter) AddTerrain(f *area.TerrainFeature) (string, error) {
	id, err := e.area.AddTerrain(f)
	if err != nil {
		return "", err
	}
	e.fog.InvalidateSightlines()
	return id, nil
}

// RemoveTerrain removes a terrain feature, reporting whether it existed
func (e *Encounter) RemoveTerrain(id string) bool {
	if !e.area.RemoveTerrain(id) {
		return false
	}
	e.fog.InvalidateSightlines()
	return true
}

// livingTeams returns every team with a combatant still standing, sorted
func (e *Encounter) livingTeams() []string {
	seen := make(map[string]bool)
	for _, c := range e.combatants {
		if c.IsAlive() {
			seen[teamOf(c)] = true
		}
	}
	teams := make([]string, 0, len(seen))
	for team := range seen {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	return teams
}

// CheckEnd reports whether at most one team is still standing, and which
func (e *Encounter) CheckEnd() (ended bool, winner string) {
	teams := e.livingTeams()
	if len(teams) > 1 {
		return false, ""
	}
	if len(teams) == 1 {
		winner = teams[0]
	}
	return true, winner
}

func (e *Encounter) checkEnd(ctx context.Context) {
	if !e.state.Is(string(EncounterStatusActive)) {
		return
	}
	if ended, _ := e.CheckEnd(); ended {
		if _, err := e.End(ctx); err != nil {
			e.log.WithError(err).Warn("Failed to end encounter")
		}
	}
}

// End finishes the encounter and returns the final snapshot. Calling it
// again returns the same snapshot.
func (e *Encounter) End(ctx context.Context) (*Snapshot, error) {
	defer e.bind(ctx)()
	if e.final != nil {
		return e.final, nil
	}
	if err := e.state.Event(ctx, transitionEnd); err != nil {
		return nil, dnderr.Wrap(err, "failed to end encounter")
	}

	_, e.winner = e.CheckEnd()
	e.final = e.Snapshot()
	e.queue.Clear()
	e.readied = make(map[string]*ReadiedAction)

	if e.resources != nil {
		if err := e.resources.Release(ctx, e.id); err != nil {
			e.log.WithError(err).Warn("Failed to release encounter resources")
		}
	}

	e.emit(&events.CombatEvent{
		BaseEvent: e.base(events.EventTypeCombatEnded, "", ""),
		Winner:    e.winner,
	})
	e.log.WithFields(logrus.Fields{
		"round":  e.round,
		"winner": e.winner,
	}).Info("Encounter ended")
	return e.final, nil
}
