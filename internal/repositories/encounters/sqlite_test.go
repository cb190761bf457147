package encounters_test

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/repositories/encounters"
	"github.com/KirkDiggler/dnd-combat-core/internal/repositories/encounters/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type SQLiteRepoTestSuite struct {
	suite.Suite
	ctx          context.Context
	mockCtrl     *gomock.Controller
	timeProvider *mocks.MockTimeProvider
	repo         encounters.Repository
	closeDB      func() error
	now          time.Time
}

func (s *SQLiteRepoTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.mockCtrl = gomock.NewController(s.T())
	s.timeProvider = mocks.NewMockTimeProvider(s.mockCtrl)
	s.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	repo, closeDB, err := encounters.NewSQLiteRepository(s.ctx, &encounters.SQLiteRepoConfig{
		Path:         ":memory:",
		TimeProvider: s.timeProvider,
	})
	s.Require().NoError(err)
	s.repo = repo
	s.closeDB = closeDB
}

func (s *SQLiteRepoTestSuite) TearDownTest() {
	s.NoError(s.closeDB())
	s.mockCtrl.Finish()
}

func TestSQLiteRepoTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteRepoTestSuite))
}

func (s *SQLiteRepoTestSuite) TestRequiresPath() {
	_, _, err := encounters.NewSQLiteRepository(s.ctx, &encounters.SQLiteRepoConfig{})
	s.True(dnderr.IsInvalidArgument(err))
}

func (s *SQLiteRepoTestSuite) TestSaveAndGetState() {
	_, err := s.repo.GetState(s.ctx, "enc-1")
	s.True(dnderr.IsNotFound(err))

	s.timeProvider.EXPECT().Now().Return(s.now)
	s.Require().NoError(s.repo.SaveState(s.ctx, "enc-1", []byte(`{"round":1}`)))

	state, err := s.repo.GetState(s.ctx, "enc-1")
	s.Require().NoError(err)
	s.Equal(`{"round":1}`, string(state))

	// Saving again replaces the row
	s.timeProvider.EXPECT().Now().Return(s.now.Add(time.Minute))
	s.Require().NoError(s.repo.SaveState(s.ctx, "enc-1", []byte(`{"round":2}`)))

	state, err = s.repo.GetState(s.ctx, "enc-1")
	s.Require().NoError(err)
	s.Equal(`{"round":2}`, string(state))

	err = s.repo.SaveState(s.ctx, "", nil)
	s.True(dnderr.IsInvalidArgument(err))
}

func (s *SQLiteRepoTestSuite) TestListAndDelete() {
	s.timeProvider.EXPECT().Now().Return(s.now).Times(2)
	s.Require().NoError(s.repo.SaveState(s.ctx, "enc-b", []byte("{}")))
	s.Require().NoError(s.repo.SaveState(s.ctx, "enc-a", []byte("{}")))

	records, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("enc-a", records[0].EncounterID)
	s.Equal("enc-b", records[1].EncounterID)
	s.True(records[0].UpdatedAt.Equal(s.now))

	s.Require().NoError(s.repo.Delete(s.ctx, "enc-a"))

	err = s.repo.Delete(s.ctx, "enc-a")
	s.True(dnderr.IsNotFound(err))

	records, err = s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *SQLiteRepoTestSuite) TestEffects() {
	active, err := s.repo.GetEffects(s.ctx, "hero")
	s.Require().NoError(err)
	s.Empty(active)

	s.timeProvider.EXPECT().Now().Return(s.now)
	hidden := effects.BuildHidden("hero")
	s.Require().NoError(s.repo.UpdateEffects(s.ctx, "hero", []*effects.StatusEffect{hidden}))

	active, err = s.repo.GetEffects(s.ctx, "hero")
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal(hidden, active[0])

	s.Require().NoError(s.repo.UpdateEffects(s.ctx, "hero", nil))

	active, err = s.repo.GetEffects(s.ctx, "hero")
	s.Require().NoError(err)
	s.Empty(active)
}
