package fog

import (
	"math"
	"testing"
	"time"

	"github.com/KirkDiggler/dnd-combat-core/internal/domain/area"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/fog/mocks"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

func ptr(v float64) *float64 { return &v }

type FogTestSuite struct {
	suite.Suite
	ctrl  *gomock.Controller
	clock *mocks.MockTimeProvider
	area  *area.Area
	fog   *FogOfWar
	now   time.Time
}

func (s *FogTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.clock = mocks.NewMockTimeProvider(s.ctrl)
	s.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.area = area.New(&area.Config{ID: "field"})

	var err error
	s.fog, err = New(&Config{Area: s.area, TimeProvider: s.clock})
	s.Require().NoError(err)
}

func (s *FogTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestFogTestSuite(t *testing.T) {
	suite.Run(t, new(FogTestSuite))
}

// place puts an entity in both the area and the fog
func (s *FogTestSuite) place(id string, x, z float64, upd EntityUpdate) {
	s.Require().NoError(s.area.Add(id, area.Pos(x, z)))
	s.Require().NoError(s.fog.UpdateEntity(id, upd))
}

// wall runs north to south through x=10
func (s *FogTestSuite) wall() {
	_, err := s.area.AddTerrain(&area.TerrainFeature{
		Name:       "Wall",
		Center:     area.Pos(10, 10),
		Size:       area.Size{Width: 1, Depth: 20},
		Kind:       area.KindObstacle,
		Properties: area.Impassable(true, "stone wall"),
	})
	s.Require().NoError(err)
}

func (s *FogTestSuite) TestNewRequiresArea() {
	_, err := New(&Config{})
	s.True(dnderr.IsInvalidArgument(err))

	_, err = New(nil)
	s.True(dnderr.IsInvalidArgument(err))
}

func (s *FogTestSuite) TestSelfIsAlwaysVisible() {
	s.Equal(Visible, s.fog.CalculateVisibility("scout", "scout", true))
}

func (s *FogTestSuite) TestSameSpotPlainStealthIsVisible() {
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()
	s.place("scout", 5, 5, EntityUpdate{})
	s.place("rogue", 5, 5, EntityUpdate{Stealth: ptr(0)})

	s.Equal(Visible, s.fog.CalculateVisibility("scout", "rogue", true))
}

func (s *FogTestSuite) TestVisibilityFadesWithDistance() {
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()
	s.place("scout", 0.5, 10, EntityUpdate{})

	tests := []struct {
		id       string
		distance float64
		want     Visibility
	}{
		{id: "near", distance: 5, want: Visible},     // 50 * 0.8 = 40
		{id: "mid", distance: 10, want: Partially},   // 50 * 0.6 = 30
		{id: "far", distance: 14, want: Partially},   // 50 * 0.44 = 22
		{id: "distant", distance: 19, want: Unaware}, // 50 * 0.24 = 12
	}

	previous := Visible
	for _, tt := range tests {
		s.place(tt.id, 0.5+tt.distance, 10, EntityUpdate{Stealth: ptr(0)})
		got := s.fog.CalculateVisibility("scout", tt.id, true)
		s.Equal(tt.want, got, tt.id)
		s.LessOrEqual(got.Rank(), previous.Rank(), "visibility never improves with distance")
		previous = got
	}
}

func (s *FogTestSuite) TestAwarenessLiftsSighting() {
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()
	s.place("scout", 0.5, 10, EntityUpdate{})
	s.place("rogue", 19.5, 10, EntityUpdate{Stealth: ptr(0)})

	s.Equal(Unaware, s.fog.CalculateVisibility("scout", "rogue", true))

	s.fog.UpdateAwareness("scout", "rogue", 50)
	// 50 * 0.24 + 50 * 0.2 = 22
	s.Equal(Partially, s.fog.CalculateVisibility("scout", "rogue", true))
}

func (s *FogTestSuite) TestBehindWall() {
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()
	s.wall()
	s.place("scout", 5, 10, EntityUpdate{Detection: ptr(100)})
	s.place("rogue", 15, 10, EntityUpdate{Stealth: ptr(0)})

	s.Equal(Unaware, s.fog.CalculateVisibility("scout", "rogue", true))

	s.fog.UpdateAwareness("scout", "rogue", 74)
	s.Equal(Unaware, s.fog.CalculateVisibility("scout", "rogue", true))

	s.fog.UpdateAwareness("scout", "rogue", 1)
	s.Equal(Hidden, s.fog.CalculateVisibility("scout", "rogue", true))
}

func (s *FogTestSuite) TestHiddenThroughAwareness() {
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()
	s.place("scout", 0.5, 10, EntityUpdate{Detection: ptr(10)})
	s.place("rogue", 19.5, 10, EntityUpdate{Stealth: ptr(90)})

	s.fog.UpdateAwareness("scout", "rogue", 60)
	// chance is 12, below partial, but the scout knows it is there
	s.Equal(Hidden, s.fog.CalculateVisibility("scout", "rogue", true))
}

func (s *FogTestSuite) TestVisibilityIsDirectional() {
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()
	s.place("scout", 2, 2, EntityUpdate{Detection: ptr(90), Stealth: ptr(10)})
	s.place("rogue", 4, 2, EntityUpdate{Detection: ptr(10), Stealth: ptr(10)})

	s.Equal(Visible, s.fog.CalculateVisibility("scout", "rogue", true))
	s.Equal(Unaware, s.fog.CalculateVisibility("rogue", "scout", true))
}

func (s *FogTestSuite) TestUpdateEntityClamps() {
	s.Require().NoError(s.fog.UpdateEntity("ghost", EntityUpdate{Stealth: ptr(150), Detection: ptr(-5)}))
	s.Equal(100.0, s.fog.Stealth("ghost"))
	s.Equal(0.0, s.fog.Detection("ghost"))

	s.Require().NoError(s.fog.UpdateEntity("ghost", EntityUpdate{Detection: ptr(math.NaN())}))
	s.Equal(DefaultSense, s.fog.Detection("ghost"))

	s.Equal(DefaultSense, s.fog.Stealth("nobody"))
	s.True(dnderr.IsInvalidArgument(s.fog.UpdateEntity("", EntityUpdate{})))
}

func (s *FogTestSuite) TestAwarenessClamps() {
	s.Equal(100.0, s.fog.UpdateAwareness("a", "b", 250))
	s.Equal(0.0, s.fog.UpdateAwareness("a", "b", -400))
	s.Equal(0.0, s.fog.Awareness("b", "a"))
}

func (s *FogTestSuite) TestMissingPositionIsNotCached() {
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()
	s.place("scout", 5, 5, EntityUpdate{})
	s.Require().NoError(s.fog.UpdateEntity("spirit", EntityUpdate{}))

	s.Equal(Unaware, s.fog.CalculateVisibility("scout", "spirit", true))
	s.Empty(s.fog.los)
}

func (s *FogTestSuite) TestSightlineCacheExpires() {
	s.place("scout", 5, 10, EntityUpdate{})
	s.place("rogue", 15, 10, EntityUpdate{Stealth: ptr(0)})

	gomock.InOrder(
		s.clock.EXPECT().Now().Return(s.now),
		s.clock.EXPECT().Now().Return(s.now.Add(100*time.Millisecond)),
		s.clock.EXPECT().Now().Return(s.now.Add(600*time.Millisecond)),
	)

	// 50 * 0.6 = 30
	s.Equal(Partially, s.fog.CalculateVisibility("scout", "rogue", true))

	// terrain changes are not seen until the cached sightline ages out
	s.wall()
	s.Equal(Partially, s.fog.CalculateVisibility("scout", "rogue", true))
	s.Equal(Unaware, s.fog.CalculateVisibility("scout", "rogue", true))
}

func (s *FogTestSuite) TestInvalidateSightlinesSeesNewWall() {
	s.place("scout", 5, 10, EntityUpdate{})
	s.place("rogue", 15, 10, EntityUpdate{Stealth: ptr(0)})
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()

	s.Equal(Partially, s.fog.CalculateVisibility("scout", "rogue", false))

	s.wall()
	s.fog.InvalidateSightlines()
	_, cached := s.fog.Visibility("scout", "rogue")
	s.False(cached)
	s.Equal(Unaware, s.fog.CalculateVisibility("scout", "rogue", false))
}

func (s *FogTestSuite) TestUpdateEntityInvalidatesImmediately() {
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()
	s.wall()
	s.place("scout", 5, 10, EntityUpdate{})
	s.place("rogue", 8, 10, EntityUpdate{Stealth: ptr(0)})

	s.Equal(Visible, s.fog.CalculateVisibility("scout", "rogue", false))

	pos := area.Pos(12, 10)
	s.Require().NoError(s.fog.UpdateEntity("rogue", EntityUpdate{Position: &pos}))
	_, cached := s.fog.Visibility("scout", "rogue")
	s.False(cached)

	s.Equal(Unaware, s.fog.CalculateVisibility("scout", "rogue", false))
	moved, _ := s.area.Position("rogue")
	s.Equal(pos, moved)
}

func (s *FogTestSuite) TestUpdateEntityRejectsBlockedMove() {
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()
	s.wall()
	s.place("rogue", 8, 10, EntityUpdate{})

	pos := area.Pos(10, 10)
	err := s.fog.UpdateEntity("rogue", EntityUpdate{Position: &pos})
	s.True(dnderr.IsValidation(err))
}

func (s *FogTestSuite) TestPerceptionCheck() {
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()
	s.place("scout", 5, 5, EntityUpdate{})
	s.place("rogue", 10, 5, EntityUpdate{Stealth: ptr(20)})

	// 50 * (1 - 5/15) = 33.3 against 20
	ok, margin := s.fog.PerceptionCheck("scout", "rogue", 0)
	s.True(ok)
	s.InDelta(13.333, margin, 0.01)
	s.InDelta(16.667, s.fog.Awareness("scout", "rogue"), 0.01)

	// recomputed straight away: 30 * 0.8 + 16.67 * 0.2 = 27.3
	v, cached := s.fog.Visibility("scout", "rogue")
	s.True(cached)
	s.Equal(Partially, v)
}

func (s *FogTestSuite) TestPerceptionCheckFailure() {
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()
	s.place("scout", 5, 5, EntityUpdate{})
	s.place("rogue", 10, 5, EntityUpdate{Stealth: ptr(60)})

	ok, margin := s.fog.PerceptionCheck("scout", "rogue", 0)
	s.False(ok)
	s.Less(margin, 0.0)
	s.Equal(0.0, s.fog.Awareness("scout", "rogue"), "failures never lower awareness")

	ok, margin = s.fog.PerceptionCheck("scout", "rogue", 30)
	s.True(ok)
	s.InDelta(3.333, margin, 0.01)
}

func (s *FogTestSuite) TestPerceptionHalvedBehindWall() {
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()
	s.wall()
	s.place("scout", 8, 5, EntityUpdate{Detection: ptr(60)})
	s.place("rogue", 12, 5, EntityUpdate{Stealth: ptr(20)})

	// 30 * (1 - 4/15) = 22
	ok, margin := s.fog.PerceptionCheck("scout", "rogue", 0)
	s.True(ok)
	s.InDelta(2.0, margin, 0.01)
}

func (s *FogTestSuite) TestVisibleEntities() {
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()
	s.place("scout", 0.5, 10, EntityUpdate{})
	s.place("b_near", 3.5, 10, EntityUpdate{Stealth: ptr(0)})
	s.place("a_mid", 10.5, 10, EntityUpdate{Stealth: ptr(0)})
	s.place("c_far", 19.5, 10, EntityUpdate{Stealth: ptr(0)})

	s.Equal([]string{"b_near"}, s.fog.VisibleEntities("scout", Visible))
	s.Equal([]string{"a_mid", "b_near"}, s.fog.VisibleEntities("scout", Partially))
	s.Equal([]string{"a_mid", "b_near", "c_far"}, s.fog.VisibleEntities("scout", Unaware))
}

func (s *FogTestSuite) TestUpdateAllAndSnapshot() {
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()
	s.place("a", 2, 2, EntityUpdate{})
	s.place("b", 3, 2, EntityUpdate{})
	s.place("c", 4, 2, EntityUpdate{})

	s.fog.UpdateAll()
	snap := s.fog.Snapshot()
	s.Len(snap.Visibility, 3)
	for observer, seen := range snap.Visibility {
		s.Len(seen, 2, observer)
	}

	snap.Stealth["a"] = 1
	s.Equal(DefaultSense, s.fog.Stealth("a"))
}

func (s *FogTestSuite) TestForget() {
	s.clock.EXPECT().Now().Return(s.now).AnyTimes()
	s.place("a", 2, 2, EntityUpdate{})
	s.place("b", 3, 2, EntityUpdate{})
	s.fog.UpdateAll()
	s.fog.UpdateAwareness("a", "b", 30)

	s.fog.Forget("b")
	s.False(s.fog.Has("b"))
	s.Equal(0.0, s.fog.Awareness("a", "b"))
	_, cached := s.fog.Visibility("a", "b")
	s.False(cached)
	s.Empty(s.fog.los)

	s.fog.Reset()
	s.Empty(s.fog.Entities())
}

func TestVisibilityRank(t *testing.T) {
	assert.True(t, Visible.AtLeast(Partially))
	assert.True(t, Hidden.AtLeast(Hidden))
	assert.False(t, Unaware.AtLeast(Hidden))
	assert.Equal(t, 0, Visibility("bogus").Rank())
}
