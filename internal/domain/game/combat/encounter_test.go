package combat_test

import (
	"context"
	"testing"

	mockdice "github.com/KirkDiggler/dnd-combat-core/internal/dice/mock"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/actions"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/area"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/combatant"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/fog"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/game/combat"
	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/events"
	mockinterfaces "github.com/KirkDiggler/dnd-combat-core/internal/interfaces/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const encounterID = "enc-test"

type EncounterTestSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	roller    *mockdice.ManualMockRoller
	narrative *mockinterfaces.MockNarrativeSink
	animation *mockinterfaces.MockAnimationSink
	resources *mockinterfaces.MockResourcePool
	hero      *combatant.Combatant
	goblin    *combatant.Combatant
	seen      []events.Event
}

func (s *EncounterTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.roller = mockdice.NewManualMockRoller()
	s.narrative = mockinterfaces.NewMockNarrativeSink(s.ctrl)
	s.animation = mockinterfaces.NewMockAnimationSink(s.ctrl)
	s.resources = mockinterfaces.NewMockResourcePool(s.ctrl)
	s.seen = nil

	s.hero = &combatant.Combatant{
		ID:                 "hero",
		Name:               "Hero",
		Type:               combatant.TypePlayer,
		Team:               "heroes",
		HP:                 20,
		ArmorClass:         14,
		Attributes:         map[string]int{"STR": 16, "DEX": 14},
		InitiativeOverride: intPtr(18),
		Position:           posPtr(5, 5),
	}
	s.goblin = &combatant.Combatant{
		ID:                 "goblin",
		Name:               "Goblin",
		Type:               combatant.TypeMonster,
		Team:               "goblins",
		HP:                 7,
		ArmorClass:         12,
		Attributes:         map[string]int{"STR": 10, "DEX": 12},
		InitiativeOverride: intPtr(10),
		Position:           posPtr(6, 5),
	}
}

func (s *EncounterTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestEncounterTestSuite(t *testing.T) {
	suite.Run(t, new(EncounterTestSuite))
}

func intPtr(v int) *int { return &v }

func posPtr(x, z float64) *area.Position {
	p := area.Pos(x, z)
	return &p
}

// allowSinks accepts any sink traffic not already expected
func (s *EncounterTestSuite) allowSinks() {
	s.narrative.EXPECT().LogEvent(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.narrative.EXPECT().NarrateAction(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.animation.EXPECT().PlayActionAnimation(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func (s *EncounterTestSuite) newEncounter(list ...*combatant.Combatant) *combat.Encounter {
	enc, err := combat.NewEncounter(&combat.Config{
		ID:         encounterID,
		Name:       "Goblin Ambush",
		Combatants: list,
		Roller:     s.roller,
		Narrative:  s.narrative,
		Animation:  s.animation,
		Resources:  s.resources,
	})
	s.Require().NoError(err)
	enc.Bus().SubscribeAll(&events.ListenerFunc{
		Name:  "recorder",
		Order: events.PriorityState,
		Handle: func(e events.Event) error {
			s.seen = append(s.seen, e)
			return nil
		},
	})
	return enc
}

func (s *EncounterTestSuite) started(list ...*combatant.Combatant) *combat.Encounter {
	enc := s.newEncounter(list...)
	_, err := enc.Start(s.ctx)
	s.Require().NoError(err)
	return enc
}

func (s *EncounterTestSuite) seenTypes() []events.EventType {
	out := make([]events.EventType, 0, len(s.seen))
	for _, e := range s.seen {
		out = append(out, e.GetType())
	}
	return out
}

func (s *EncounterTestSuite) TestNewEncounterValidation() {
	_, err := combat.NewEncounter(&combat.Config{})
	s.True(dnderr.IsInvalidArgument(err))

	_, err = combat.NewEncounter(&combat.Config{
		Combatants: []*combatant.Combatant{{ID: "a", HP: 1}, {ID: "a", HP: 1}},
	})
	s.True(dnderr.IsAlreadyExists(err))

	_, err = combat.NewEncounter(&combat.Config{
		Combatants: []*combatant.Combatant{{HP: 1}},
	})
	s.True(dnderr.IsInvalidArgument(err))
}

func (s *EncounterTestSuite) TestPlacementLines() {
	enc := s.newEncounter(
		&combatant.Combatant{ID: "a", Team: "heroes", HP: 5},
		&combatant.Combatant{ID: "b", Team: "heroes", HP: 5},
		&combatant.Combatant{ID: "c", Team: "goblins", HP: 5},
	)

	tests := []struct {
		id   string
		want area.Position
	}{
		{id: "a", want: area.Pos(1, 5)},
		{id: "b", want: area.Pos(3, 5)},
		{id: "c", want: area.Pos(1, 15)},
	}
	for _, tt := range tests {
		got, ok := enc.Area().Position(tt.id)
		s.Require().True(ok, tt.id)
		s.Equal(tt.want, got, tt.id)
		s.True(enc.Fog().Has(tt.id))
	}
	s.Equal(combat.EncounterStatusPending, enc.Status())
}

func (s *EncounterTestSuite) TestStartRollsInitiative() {
	s.hero.InitiativeOverride = nil
	s.goblin.InitiativeOverride = nil
	s.roller.SetRolls([]int{10, 15}) // hero 10+2, goblin 15+1

	s.animation.EXPECT().
		PlayActionAnimation("turn_start", "goblin", nil, map[string]any{"animation_type": "emphasis"}).
		Return(nil)
	s.allowSinks()

	enc := s.newEncounter(s.hero, s.goblin)
	snap, err := enc.Start(s.ctx)
	s.Require().NoError(err)

	s.Equal(combat.EncounterStatusActive, snap.Status)
	s.Equal(1, snap.Round)
	s.Equal("goblin", snap.Current)
	s.Require().Len(snap.TurnOrder, 2)
	s.Equal("goblin", snap.TurnOrder[0].ID)
	s.Equal(16, snap.TurnOrder[0].Initiative)
	s.Equal(12, s.hero.Initiative)

	_, err = enc.Start(s.ctx)
	s.True(dnderr.IsFailedPrecondition(err))
}

func (s *EncounterTestSuite) TestStaticInitiativeNeverRolls() {
	// nothing is scripted on the roller, so any d20 would fail Start
	s.hero.InitiativeOverride = nil
	s.allowSinks()

	enc, err := combat.NewEncounter(&combat.Config{
		ID:         encounterID,
		Combatants: []*combatant.Combatant{s.hero, s.goblin},
		Roller:     s.roller,
		Settings:   combat.Settings{StaticInitiative: true},
		Narrative:  s.narrative,
		Animation:  s.animation,
		Resources:  s.resources,
	})
	s.Require().NoError(err)

	snap, err := enc.Start(s.ctx)
	s.Require().NoError(err)

	// hero DEX 14 takes 12, the goblin keeps its override of 10
	s.Equal("hero", snap.Current)
	s.Equal(12, snap.TurnOrder[0].Initiative)
	s.Equal(12, s.hero.Initiative)
	s.Equal(10, s.goblin.Initiative)

	wolf := &combatant.Combatant{ID: "wolf", Team: "goblins", HP: 11, Attributes: map[string]int{"DEX": 15}}
	s.Require().NoError(enc.AddCombatant(s.ctx, wolf))
	s.Equal(12, wolf.Initiative)
}

func (s *EncounterTestSuite) TestActingOutOfTurn() {
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	_, err := enc.TakeAction(s.ctx, "goblin", "attack", "hero")
	s.True(dnderr.IsNotYourTurn(err))

	_, err = enc.Move(s.ctx, "goblin", area.Pos(6, 7))
	s.True(dnderr.IsNotYourTurn(err))

	_, err = enc.TakeAction(s.ctx, "hero", "teleport", "")
	s.True(dnderr.IsNotFound(err))

	_, err = enc.TakeAction(s.ctx, "ghost", "attack", "hero")
	s.True(dnderr.IsNotFound(err))
}

func (s *EncounterTestSuite) TestRoundsAdvance() {
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	_, err := enc.NextTurn(s.ctx)
	s.Require().NoError(err)
	snap, err := enc.NextTurn(s.ctx)
	s.Require().NoError(err)

	s.Equal(2, snap.Round)
	s.Equal("hero", snap.Current)

	type seen struct {
		kind  events.EventType
		actor string
		round int
	}
	var got []seen
	for _, e := range s.seen {
		got = append(got, seen{kind: e.GetType(), actor: e.GetActorID(), round: e.GetRound()})
	}
	s.Equal([]seen{
		{kind: events.EventTypeCombatStarted, round: 1},
		{kind: events.EventTypeTurnStart, actor: "hero", round: 1},
		{kind: events.EventTypeTurnEnd, actor: "hero", round: 1},
		{kind: events.EventTypeTurnStart, actor: "goblin", round: 1},
		{kind: events.EventTypeTurnEnd, actor: "goblin", round: 1},
		{kind: events.EventTypeRoundStarted, round: 2},
		{kind: events.EventTypeTurnStart, actor: "hero", round: 2},
	}, got)
}

func (s *EncounterTestSuite) TestAttackKillsAndEnds() {
	s.narrative.EXPECT().NarrateAction(s.ctx, "hero", gomock.Any(), gomock.Any()).Return(nil)
	s.resources.EXPECT().Release(s.ctx, encounterID).Return(nil)
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	s.roller.SetRolls([]int{15, 6}) // 15+3 hits AC 12, 6+3 damage
	out, err := enc.TakeAction(s.ctx, "hero", "attack", "goblin")
	s.Require().NoError(err)

	s.True(out.Result.Success)
	s.Equal(9, out.Result.Damage)
	s.Zero(s.goblin.HP)
	s.True(out.Ended)
	s.Equal("heroes", out.Winner)
	s.Equal(combat.EncounterStatusEnded, enc.Status())
	s.Contains(s.seenTypes(), events.EventTypeDeath)
	s.Contains(s.seenTypes(), events.EventTypeCombatEnded)

	first, err := enc.End(s.ctx)
	s.Require().NoError(err)
	second, err := enc.End(s.ctx)
	s.Require().NoError(err)
	s.Same(first, second)
	s.True(first.Ended)
	s.Equal("heroes", first.Winner)

	_, err = enc.TakeAction(s.ctx, "hero", "dodge", "")
	s.True(dnderr.IsFailedPrecondition(err))
}

func (s *EncounterTestSuite) TestOutOfRangeIsRefused() {
	s.goblin.Position = posPtr(10, 5)
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	out, err := enc.TakeAction(s.ctx, "hero", "attack", "goblin")
	s.Require().NoError(err)
	s.False(out.Result.Success)
	s.Equal("target is out of range", out.Result.Message)

	remaining, err := enc.Remaining("hero")
	s.Require().NoError(err)
	s.True(remaining.Standard)
}

func (s *EncounterTestSuite) TestSecondStandardActionIsRefused() {
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	out, err := enc.TakeAction(s.ctx, "hero", "dodge", "")
	s.Require().NoError(err)
	s.True(out.Result.Success)
	s.Equal([]string{"dodging"}, s.hero.StatusNames())

	out, err = enc.TakeAction(s.ctx, "hero", "dash", "")
	s.Require().NoError(err)
	s.False(out.Result.Success)
	s.Equal("standard action already used this turn", out.Result.Message)
}

func (s *EncounterTestSuite) TestMoveProvokesOpportunityAttack() {
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	s.roller.SetRolls([]int{10}) // 10+0 misses AC 14
	out, err := enc.Move(s.ctx, "hero", area.Pos(5, 9))
	s.Require().NoError(err)

	s.True(out.Result.Success)
	s.Require().Len(out.Triggered, 1)
	s.Equal("opportunity_attack", out.Triggered[0].ActionID)
	s.Equal(false, out.Triggered[0].Data["hit"])

	pos, _ := enc.Area().Position("hero")
	s.Equal(area.Pos(5, 9), pos)

	hero, _ := enc.Remaining("hero")
	s.InDelta(26, hero.Movement, 1e-9)
	goblin, _ := enc.Remaining("goblin")
	s.False(goblin.Reaction)
	s.Contains(s.seenTypes(), events.EventTypeReaction)
	s.Contains(s.seenTypes(), events.EventTypeMove)
}

func (s *EncounterTestSuite) TestDisengagedMoveDoesNotProvoke() {
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	out, err := enc.TakeAction(s.ctx, "hero", "disengage", "")
	s.Require().NoError(err)
	s.Require().True(out.Result.Success)

	out, err = enc.Move(s.ctx, "hero", area.Pos(5, 9))
	s.Require().NoError(err)
	s.True(out.Result.Success)
	s.Empty(out.Triggered)
}

func (s *EncounterTestSuite) TestMoveRefusals() {
	s.hero.Speed = 10
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	out, err := enc.Move(s.ctx, "hero", area.Pos(25, 5))
	s.Require().NoError(err)
	s.False(out.Result.Success)

	out, err = enc.Move(s.ctx, "hero", area.Pos(5, 19))
	s.Require().NoError(err)
	s.False(out.Result.Success)
	s.Equal("not enough movement (need 14.0, have 10.0)", out.Result.Message)

	pos, _ := enc.Area().Position("hero")
	s.Equal(area.Pos(5, 5), pos)
}

func (s *EncounterTestSuite) TestReadiedActionFiresOnMove() {
	s.goblin.Position = posPtr(5, 8)
	s.resources.EXPECT().Release(gomock.Any(), encounterID).Return(nil)
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	result, err := enc.Ready(s.ctx, "hero", "attack", "when an enemy moves close", "")
	s.Require().NoError(err)
	s.True(result.Success)
	readied, ok := enc.Readied("hero")
	s.Require().True(ok)
	s.Equal("attack", readied.ActionID)

	_, err = enc.NextTurn(s.ctx)
	s.Require().NoError(err)

	s.roller.SetRolls([]int{15, 4}) // 15+3 hits AC 12, 4+3 damage
	out, err := enc.Move(s.ctx, "goblin", area.Pos(5, 6))
	s.Require().NoError(err)

	s.Require().Len(out.Triggered, 1)
	s.Equal(7, out.Triggered[0].Damage)
	s.False(s.goblin.IsAlive())
	s.True(out.Ended)
	s.Equal("heroes", out.Winner)
	s.Contains(s.seenTypes(), events.EventTypeReadyTriggered)

	_, ok = enc.Readied("hero")
	s.False(ok)
}

func (s *EncounterTestSuite) TestReadyNeedsCondition() {
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	_, err := enc.Ready(s.ctx, "hero", "attack", " ", "")
	s.True(dnderr.IsInvalidArgument(err))

	_, err = enc.TakeAction(s.ctx, "hero", "dodge", "")
	s.Require().NoError(err)
	result, err := enc.Ready(s.ctx, "hero", "attack", "enemy moves", "")
	s.Require().NoError(err)
	s.False(result.Success)
	s.Equal("no standard action available to ready", result.Message)
}

func (s *EncounterTestSuite) TestDelayKeepsTurnState() {
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	spent, err := enc.UseMovement(s.ctx, "hero", 10)
	s.Require().NoError(err)
	s.Equal(10.0, spent)

	snap, err := enc.Delay(s.ctx, "hero")
	s.Require().NoError(err)
	s.Equal("goblin", snap.Current)
	s.Equal("hero", snap.TurnOrder[1].ID)
	s.Equal(10, snap.TurnOrder[1].Initiative)
	s.Equal(10, snap.Combatants[0].Initiative, "combatant initiative follows the queue")
	s.Equal(10, s.hero.Initiative)

	snap, err = enc.NextTurn(s.ctx)
	s.Require().NoError(err)
	s.Equal("hero", snap.Current)
	s.Equal(1, snap.Round)
	remaining, _ := enc.Remaining("hero")
	s.Equal(20.0, remaining.Movement, "a delayed turn picks up where it left off")

	snap, err = enc.NextTurn(s.ctx)
	s.Require().NoError(err)
	s.Equal("goblin", snap.Current)
	s.Equal(2, snap.Round)

	_, err = enc.Delay(s.ctx, "hero")
	s.True(dnderr.IsNotYourTurn(err))
}

func (s *EncounterTestSuite) TestEffectsExpireAtTurnEnd() {
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	_, err := enc.ApplyEffect(s.ctx, "hero", effects.BuildPoisoned("goblin", 1))
	s.Require().NoError(err)
	s.Equal([]string{"poisoned"}, s.hero.StatusNames())

	_, err = enc.NextTurn(s.ctx)
	s.Require().NoError(err)
	s.Empty(s.hero.StatusNames())
	s.Contains(s.seenTypes(), events.EventTypeEffectExpired)
}

func (s *EncounterTestSuite) TestHiddenRaisesStealth() {
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	_, err := enc.ApplyEffect(s.ctx, "hero", effects.BuildHidden("hero"))
	s.Require().NoError(err)
	s.InDelta(62.5, enc.Fog().Stealth("hero"), 1e-9)

	removed, err := enc.RemoveEffect(s.ctx, "hero", "hidden", false)
	s.Require().NoError(err)
	s.True(removed)
	s.InDelta(50, enc.Fog().Stealth("hero"), 1e-9)

	removed, err = enc.RemoveEffect(s.ctx, "hero", "hidden", false)
	s.Require().NoError(err)
	s.False(removed)
}

func (s *EncounterTestSuite) TestDamageAndHealing() {
	second := &combatant.Combatant{ID: "goblin2", Team: "goblins", HP: 7, InitiativeOverride: intPtr(8)}
	s.allowSinks()
	enc := s.started(s.hero, s.goblin, second)

	_, err := enc.ApplyDamage(s.ctx, "goblin", -1, "fire", "")
	s.True(dnderr.IsInvalidArgument(err))

	dealt, err := enc.ApplyDamage(s.ctx, "goblin", 10, "fire", "")
	s.Require().NoError(err)
	s.Equal(7, dealt)
	s.False(s.goblin.IsAlive())
	s.Equal(combat.EncounterStatusActive, enc.Status())
	for _, entry := range enc.TurnOrder() {
		s.NotEqual("goblin", entry.ID)
	}

	healed, err := enc.ApplyHealing(s.ctx, "goblin", 5)
	s.Require().NoError(err)
	s.Equal(5, healed)
	s.True(s.goblin.IsAlive())
	s.Len(enc.TurnOrder(), 3)

	_, err = enc.ApplyHealing(s.ctx, "nobody", 5)
	s.True(dnderr.IsNotFound(err))
}

func (s *EncounterTestSuite) TestAddAndRemoveCombatants() {
	s.resources.EXPECT().Release(gomock.Any(), encounterID).Return(nil)
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	err := enc.AddCombatant(s.ctx, &combatant.Combatant{ID: "wolf", Team: "goblins", HP: 11, InitiativeOverride: intPtr(12)})
	s.Require().NoError(err)
	s.Len(enc.TurnOrder(), 3)
	s.Equal("wolf", enc.TurnOrder()[1].ID)
	s.Contains(s.seenTypes(), events.EventTypeCombatantJoined)

	err = enc.AddCombatant(s.ctx, &combatant.Combatant{ID: "wolf", HP: 1})
	s.True(dnderr.IsAlreadyExists(err))

	removed, err := enc.RemoveCombatant(s.ctx, "wolf")
	s.Require().NoError(err)
	s.True(removed)
	removed, err = enc.RemoveCombatant(s.ctx, "wolf")
	s.Require().NoError(err)
	s.False(removed)
	s.Equal(combat.EncounterStatusActive, enc.Status())

	_, err = enc.RemoveCombatant(s.ctx, "goblin")
	s.Require().NoError(err)
	s.Equal(combat.EncounterStatusEnded, enc.Status())
	s.Equal("heroes", enc.Winner())
}

func (s *EncounterTestSuite) TestPerceptionCheck() {
	s.hero.Perception = 80
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	success, margin, err := enc.PerceptionCheck(s.ctx, "hero", "goblin", 0)
	s.Require().NoError(err)
	s.True(success)
	s.InDelta(80*(1-1.0/15)-50, margin, 1e-9)

	visible, err := enc.VisibleEntities("hero", fog.Partially)
	s.Require().NoError(err)
	s.Contains(visible, "goblin")

	last := s.seen[len(s.seen)-1]
	perception, ok := last.(*events.PerceptionEvent)
	s.Require().True(ok)
	s.True(perception.Success)
	s.NotEmpty(perception.Visibility)
}

func (s *EncounterTestSuite) TestAvailableActions() {
	s.hero.Effects = []*effects.StatusEffect{{Name: "stunned", Duration: 3}}
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	defs, err := enc.AvailableActions("hero")
	s.Require().NoError(err)
	ids := make([]string, 0, len(defs))
	for _, def := range defs {
		ids = append(ids, def.ID)
	}
	s.Equal([]string{actions.ActionOpportunityAttack}, ids)
}

func (s *EncounterTestSuite) TestSinkFailuresAreNotFatal() {
	s.narrative.EXPECT().LogEvent(gomock.Any(), encounterID, gomock.Any()).Return(dnderr.Internalf("log store down")).AnyTimes()
	s.animation.EXPECT().PlayActionAnimation(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(dnderr.Internalf("no renderer")).AnyTimes()

	enc := s.newEncounter(s.hero, s.goblin)
	snap, err := enc.Start(s.ctx)
	s.Require().NoError(err)
	s.Equal("hero", snap.Current)
}

func (s *EncounterTestSuite) TestTerrainChangesBlockSightAtOnce() {
	s.allowSinks()
	s.goblin.Position = posPtr(15, 5)
	s.hero.Perception = 100
	enc := s.started(s.hero, s.goblin)
	s.Equal(fog.Partially, enc.Fog().CalculateVisibility("hero", "goblin", false))

	wall, err := enc.AddTerrain(&area.TerrainFeature{
		Name:       "Wall",
		Center:     area.Pos(10, 10),
		Size:       area.Size{Width: 1, Depth: 20},
		Kind:       area.KindObstacle,
		Properties: area.Impassable(true, "stone wall"),
	})
	s.Require().NoError(err)
	s.Equal(fog.Unaware, enc.Fog().CalculateVisibility("hero", "goblin", false))

	s.True(enc.RemoveTerrain(wall))
	s.Equal(fog.Partially, enc.Fog().CalculateVisibility("hero", "goblin", false))
	s.False(enc.RemoveTerrain(wall))
}

type traceKey struct{}

func (s *EncounterTestSuite) TestSinksSeeCallerContext() {
	var logged []context.Context
	s.narrative.EXPECT().LogEvent(gomock.Any(), encounterID, gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ events.Event) error {
			logged = append(logged, ctx)
			return nil
		}).AnyTimes()
	s.narrative.EXPECT().NarrateAction(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.animation.EXPECT().PlayActionAnimation(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	enc := s.started(s.hero, s.goblin)

	ctx := context.WithValue(s.ctx, traceKey{}, "damage-call")
	logged = nil
	_, err := enc.ApplyDamage(ctx, "goblin", 2, "fire", "")
	s.Require().NoError(err)
	s.Require().NotEmpty(logged)
	for _, got := range logged {
		s.Equal("damage-call", got.Value(traceKey{}))
	}

	ctx = context.WithValue(s.ctx, traceKey{}, "effect-call")
	logged = nil
	_, err = enc.ApplyEffect(ctx, "hero", effects.BuildPoisoned("goblin", 2))
	s.Require().NoError(err)
	s.Require().NotEmpty(logged)
	for _, got := range logged {
		s.Equal("effect-call", got.Value(traceKey{}))
	}
}

func (s *EncounterTestSuite) TestSnapshotRoundTrip() {
	s.allowSinks()
	enc := s.started(s.hero, s.goblin)

	data, err := enc.MarshalSnapshot()
	s.Require().NoError(err)
	snap, err := combat.DecodeSnapshot(data)
	s.Require().NoError(err)

	s.Equal(encounterID, snap.ID)
	s.Equal("hero", snap.Current)
	s.Require().Len(snap.Combatants, 2)
	s.Equal("heroes", snap.Combatants[0].Team)
	s.Require().NotNil(snap.Combatants[0].Position)
	s.Equal(area.Pos(5, 5), *snap.Combatants[0].Position)
	s.Require().NotNil(snap.Combatants[1].Remaining)
	s.True(snap.Combatants[1].Remaining.Reaction)
	s.Equal(fog.Visible, snap.Combatants[0].Visibility)

	_, err = combat.DecodeSnapshot([]byte("{"))
	s.True(dnderr.IsInvalidArgument(err))
}
