package encounters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	// Key patterns
	encounterKeyPrefix = "encounter:"
	effectsKeyPrefix   = "effects:"
	encounterIndexKey  = "encounters"

	// TTL for snapshots and effects (7 days)
	defaultTTL = 7 * 24 * time.Hour
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client       redis.UniversalClient
	TimeProvider TimeProvider
	TTL          time.Duration
}

// redisRepository implements Repository using Redis
type redisRepository struct {
	client       redis.UniversalClient
	timeProvider TimeProvider
	ttl          time.Duration
}

// NewRedisRepository creates a new Redis-backed encounter repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil || cfg.Client == nil {
		panic("redis client is required")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}

	return &redisRepository{
		client:       cfg.Client,
		timeProvider: orRealTime(cfg.TimeProvider),
		ttl:          ttl,
	}
}

// NewRedis creates a Redis-backed repository with default configuration
func NewRedis(client redis.UniversalClient) Repository {
	return NewRedisRepository(&RedisRepoConfig{Client: client})
}

func encounterKey(id string) string { return encounterKeyPrefix + id }
func effectsKey(id string) string   { return effectsKeyPrefix + id }

func (r *redisRepository) GetState(ctx context.Context, encounterID string) ([]byte, error) {
	rec, err := r.getRecord(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	return rec.State, nil
}

func (r *redisRepository) getRecord(ctx context.Context, encounterID string) (*Record, error) {
	data, err := r.client.Get(ctx, encounterKey(encounterID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, dnderr.NotFoundf("encounter state not found: %s", encounterID)
		}
		return nil, dnderr.Wrapf(err, "failed to get encounter %s", encounterID)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, dnderr.Wrapf(err, "failed to deserialize encounter %s", encounterID)
	}
	return &rec, nil
}

func (r *redisRepository) SaveState(ctx context.Context, encounterID string, state []byte) error {
	if encounterID == "" {
		return dnderr.InvalidArgument("encounter ID cannot be empty")
	}

	data, err := json.Marshal(&Record{
		EncounterID: encounterID,
		State:       state,
		UpdatedAt:   r.timeProvider.Now(),
	})
	if err != nil {
		return dnderr.Wrapf(err, "failed to serialize encounter %s", encounterID)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, encounterKey(encounterID), string(data), r.ttl)
	pipe.SAdd(ctx, encounterIndexKey, encounterID)

	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.Wrapf(err, "failed to save encounter %s", encounterID)
	}
	return nil
}

func (r *redisRepository) UpdateEffects(ctx context.Context, combatantID string, active []*effects.StatusEffect) error {
	if combatantID == "" {
		return dnderr.InvalidArgument("combatant ID cannot be empty")
	}

	if len(active) == 0 {
		if err := r.client.Del(ctx, effectsKey(combatantID)).Err(); err != nil {
			return dnderr.Wrapf(err, "failed to clear effects for %s", combatantID)
		}
		return nil
	}

	data, err := json.Marshal(active)
	if err != nil {
		return dnderr.Wrapf(err, "failed to serialize effects for %s", combatantID)
	}
	if err := r.client.Set(ctx, effectsKey(combatantID), string(data), r.ttl).Err(); err != nil {
		return dnderr.Wrapf(err, "failed to store effects for %s", combatantID)
	}
	return nil
}

func (r *redisRepository) GetEffects(ctx context.Context, combatantID string) ([]*effects.StatusEffect, error) {
	data, err := r.client.Get(ctx, effectsKey(combatantID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*effects.StatusEffect{}, nil
		}
		return nil, dnderr.Wrapf(err, "failed to get effects for %s", combatantID)
	}

	var active []*effects.StatusEffect
	if err := json.Unmarshal(data, &active); err != nil {
		return nil, dnderr.Wrapf(err, "failed to deserialize effects for %s", combatantID)
	}
	return active, nil
}

// List loads every indexed snapshot concurrently. Index entries whose
// snapshot has expired are skipped.
func (r *redisRepository) List(ctx context.Context) ([]*Record, error) {
	ids, err := r.client.SMembers(ctx, encounterIndexKey).Result()
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to list encounters")
	}

	loaded := make([]*Record, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			rec, err := r.getRecord(gctx, id)
			if err != nil {
				if dnderr.IsNotFound(err) {
					return nil
				}
				return fmt.Errorf("failed to get encounter %s: %w", id, err)
			}
			loaded[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]*Record, 0, len(loaded))
	for _, rec := range loaded {
		if rec != nil {
			records = append(records, rec)
		}
	}
	sortRecords(records)
	return records, nil
}

func (r *redisRepository) Delete(ctx context.Context, encounterID string) error {
	pipe := r.client.Pipeline()
	del := pipe.Del(ctx, encounterKey(encounterID))
	pipe.SRem(ctx, encounterIndexKey, encounterID)

	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.Wrapf(err, "failed to delete encounter %s", encounterID)
	}
	if del.Val() == 0 {
		return dnderr.NotFoundf("encounter state not found: %s", encounterID)
	}
	return nil
}
