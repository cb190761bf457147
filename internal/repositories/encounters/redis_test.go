package encounters

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/repositories/encounters/mocks"
	"github.com/go-redis/redismock/v9"
	"go.uber.org/mock/gomock"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mockClient   *redis.Client
	mock         redismock.ClientMock
	repo         Repository
	mockCtrl     *gomock.Controller
	timeProvider *mocks.MockTimeProvider
	now          time.Time
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.mockCtrl = gomock.NewController(s.T())
	s.timeProvider = mocks.NewMockTimeProvider(s.mockCtrl)
	s.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.repo = NewRedisRepository(&RedisRepoConfig{
		Client:       s.mockClient,
		TimeProvider: s.timeProvider,
		TTL:          time.Hour,
	})
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) record(id string, state string) []byte {
	data, err := json.Marshal(&Record{
		EncounterID: id,
		State:       []byte(state),
		UpdatedAt:   s.now,
	})
	s.Require().NoError(err)
	return data
}

func (s *RedisRepoTestSuite) TestSaveState() {
	ctx := context.Background()
	data := s.record("enc-1", `{"round":1}`)

	// Happy path
	s.timeProvider.EXPECT().Now().Return(s.now)
	s.mock.ExpectSet("encounter:enc-1", string(data), time.Hour).SetVal("OK")
	s.mock.ExpectSAdd("encounters", "enc-1").SetVal(1)

	err := s.repo.SaveState(ctx, "enc-1", []byte(`{"round":1}`))
	s.NoError(err)

	// Dependency error
	s.timeProvider.EXPECT().Now().Return(s.now)
	s.mock.ExpectSet("encounter:enc-1", string(data), time.Hour).SetVal("OK")
	s.mock.ExpectSAdd("encounters", "enc-1").SetErr(errors.New("redis error"))

	err = s.repo.SaveState(ctx, "enc-1", []byte(`{"round":1}`))
	s.Error(err)

	// Input validation
	err = s.repo.SaveState(ctx, "", nil)
	s.True(dnderr.IsInvalidArgument(err))
}

func (s *RedisRepoTestSuite) TestGetState() {
	ctx := context.Background()

	s.mock.ExpectGet("encounter:enc-1").SetVal(string(s.record("enc-1", `{"round":2}`)))

	state, err := s.repo.GetState(ctx, "enc-1")
	s.Require().NoError(err)
	s.Equal(`{"round":2}`, string(state))

	s.mock.ExpectGet("encounter:enc-2").RedisNil()

	_, err = s.repo.GetState(ctx, "enc-2")
	s.True(dnderr.IsNotFound(err))

	s.mock.ExpectGet("encounter:enc-3").SetErr(errors.New("connection refused"))

	_, err = s.repo.GetState(ctx, "enc-3")
	s.Error(err)
	s.False(dnderr.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestUpdateEffects() {
	ctx := context.Background()
	active := []*effects.StatusEffect{effects.BuildPoisoned("goblin", 3)}
	data, err := json.Marshal(active)
	s.Require().NoError(err)

	s.mock.ExpectSet("effects:hero", string(data), time.Hour).SetVal("OK")
	s.NoError(s.repo.UpdateEffects(ctx, "hero", active))

	s.mock.ExpectDel("effects:hero").SetVal(1)
	s.NoError(s.repo.UpdateEffects(ctx, "hero", nil))

	err = s.repo.UpdateEffects(ctx, "", active)
	s.True(dnderr.IsInvalidArgument(err))
}

func (s *RedisRepoTestSuite) TestGetEffects() {
	ctx := context.Background()
	data, err := json.Marshal([]*effects.StatusEffect{effects.BuildPoisoned("goblin", 3)})
	s.Require().NoError(err)

	s.mock.ExpectGet("effects:hero").SetVal(string(data))

	active, err := s.repo.GetEffects(ctx, "hero")
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal("poisoned", active[0].Name)
	s.Equal(3, active[0].Duration)

	s.mock.ExpectGet("effects:nobody").RedisNil()

	active, err = s.repo.GetEffects(ctx, "nobody")
	s.NoError(err)
	s.Empty(active)
}

func (s *RedisRepoTestSuite) TestList() {
	ctx := context.Background()

	s.mock.ExpectSMembers("encounters").SetVal([]string{"enc-a"})
	s.mock.ExpectGet("encounter:enc-a").SetVal(string(s.record("enc-a", "{}")))

	records, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("enc-a", records[0].EncounterID)
	s.Equal(s.now, records[0].UpdatedAt)

	// Expired snapshots are skipped
	s.mock.ExpectSMembers("encounters").SetVal([]string{"enc-gone"})
	s.mock.ExpectGet("encounter:enc-gone").RedisNil()

	records, err = s.repo.List(ctx)
	s.Require().NoError(err)
	s.Empty(records)

	s.mock.ExpectSMembers("encounters").SetErr(errors.New("redis error"))

	_, err = s.repo.List(ctx)
	s.Error(err)
}

func (s *RedisRepoTestSuite) TestDelete() {
	ctx := context.Background()

	s.mock.ExpectDel("encounter:enc-1").SetVal(1)
	s.mock.ExpectSRem("encounters", "enc-1").SetVal(1)
	s.NoError(s.repo.Delete(ctx, "enc-1"))

	s.mock.ExpectDel("encounter:enc-2").SetVal(0)
	s.mock.ExpectSRem("encounters", "enc-2").SetVal(0)
	err := s.repo.Delete(ctx, "enc-2")
	s.True(dnderr.IsNotFound(err))
}

func TestNewRedisRepository_RequiresClient(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic without a client")
		}
	}()
	NewRedisRepository(&RedisRepoConfig{})
}
