package services

import (
	"context"

	"github.com/KirkDiggler/dnd-combat-core/internal/config"
	"github.com/KirkDiggler/dnd-combat-core/internal/dice"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/game/combat"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/interfaces"
	"github.com/KirkDiggler/dnd-combat-core/internal/logger"
	"github.com/KirkDiggler/dnd-combat-core/internal/repositories/encounters"
	encounterService "github.com/KirkDiggler/dnd-combat-core/internal/services/encounter"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// Provider holds all service instances
type Provider struct {
	EncounterService encounterService.Service
	Repository       encounters.Repository

	closers []func() error
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	Config *config.Config

	// RedisClient is used instead of dialling when the redis store is selected
	RedisClient redis.UniversalClient
	// Repository skips store selection entirely
	Repository encounters.Repository

	Roller    dice.Roller
	Narrative interfaces.NarrativeSink
	Animation interfaces.AnimationSink
	Resources interfaces.ResourcePool
	Tracer    trace.Tracer
	Logger    logrus.FieldLogger
}

// NewProvider opens the configured store and creates the services on top
func NewProvider(ctx context.Context, cfg *ProviderConfig) (*Provider, error) {
	if cfg == nil || cfg.Config == nil {
		return nil, dnderr.InvalidArgument("provider config is required")
	}
	log := logger.OrDiscard(cfg.Logger)

	p := &Provider{}

	repo := cfg.Repository
	if repo == nil {
		var err error
		repo, err = p.openStore(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
	}
	p.Repository = repo

	roller := cfg.Roller
	if roller == nil {
		if seed := cfg.Config.Combat.Seed; seed != 0 {
			roller = dice.NewSeededRoller(seed)
		} else {
			roller = dice.NewRandomRoller()
		}
	}

	combatCfg := cfg.Config.Combat
	p.EncounterService = encounterService.NewService(&encounterService.ServiceConfig{
		Repository: repo,
		Roller:     roller,
		Settings: combat.Settings{
			AreaWidth:        combatCfg.AreaWidth,
			AreaDepth:        combatCfg.AreaDepth,
			GridSize:         combatCfg.GridSize,
			DefaultMovement:  combatCfg.DefaultMovement,
			LOSCacheTTL:      combatCfg.LOSCacheTTL,
			DefaultTerrain:   combatCfg.DefaultTerrain,
			StaticInitiative: combatCfg.StaticInitiative,
			TerrainSeed:      combatCfg.Seed,
		},
		PersistentEffectThreshold: combatCfg.PersistentEffectThreshold,
		Narrative:                 cfg.Narrative,
		Animation:                 cfg.Animation,
		Resources:                 cfg.Resources,
		Tracer:                    cfg.Tracer,
		Logger:                    cfg.Logger,
	})

	return p, nil
}

func (p *Provider) openStore(ctx context.Context, cfg *ProviderConfig, log logrus.FieldLogger) (encounters.Repository, error) {
	switch store := cfg.Config.Store; store {
	case config.StoreMemory:
		log.Info("Using in-memory encounter store")
		return encounters.NewInMemoryRepository(nil), nil

	case config.StoreRedis:
		client := cfg.RedisClient
		if client == nil {
			dialled, err := dialRedis(ctx, &cfg.Config.Redis)
			if err != nil {
				return nil, err
			}
			p.closers = append(p.closers, dialled.Close)
			client = dialled
		}
		log.Info("Using Redis encounter store")
		return encounters.NewRedis(client), nil

	case config.StoreSQLite:
		repo, closeDB, err := encounters.NewSQLiteRepository(ctx, &encounters.SQLiteRepoConfig{
			Path: cfg.Config.SQLite.Path,
		})
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, closeDB)
		log.WithField("path", cfg.Config.SQLite.Path).Info("Using SQLite encounter store")
		return repo, nil

	default:
		return nil, dnderr.InvalidArgumentf("unknown store %q", store)
	}
}

// dialRedis connects using REDIS_URL when set, otherwise the address
func dialRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, dnderr.WrapWithCode(err, dnderr.CodeInvalidArgument, "failed to parse Redis URL")
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, dnderr.Unavailable(err, "failed to connect to Redis")
	}
	return client, nil
}

// Close releases the store's connections
func (p *Provider) Close() error {
	var first error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	p.closers = nil
	return first
}
