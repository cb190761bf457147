package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/dnd-combat-core/internal/config"
	"github.com/KirkDiggler/dnd-combat-core/internal/logger"
	"github.com/KirkDiggler/dnd-combat-core/internal/services"
	"github.com/KirkDiggler/dnd-combat-core/internal/telemetry"
)

func main() {
	count := flag.Int("encounters", 3, "number of encounters to run side by side")
	goblins := flag.Int("goblins", 2, "goblins per encounter")
	maxRounds := flag.Int("max-rounds", 20, "end an encounter after this many rounds")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logs := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Setup(ctx)
		if err != nil {
			logs.WithError(err).Fatal("Failed to set up telemetry")
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logs.WithError(err).Warn("Failed to flush traces")
			}
		}()
	}

	provider, err := services.NewProvider(ctx, &services.ProviderConfig{
		Config: cfg,
		Logger: logs,
	})
	if err != nil {
		logs.WithError(err).Fatal("Failed to create services")
	}
	defer func() {
		if err := provider.Close(); err != nil {
			logs.WithError(err).Warn("Failed to close store")
		}
	}()

	runner := &runner{
		svc:       provider.EncounterService,
		goblins:   *goblins,
		maxRounds: *maxRounds,
		log:       logs,
	}

	summaries := make([]*summary, *count)
	g, gctx := errgroup.WithContext(ctx)
	for i := range summaries {
		i := i
		g.Go(func() error {
			s, err := runner.run(gctx, i)
			if err != nil {
				return err
			}
			summaries[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logs.WithError(err).Error("Simulation failed")
		return
	}

	for _, s := range summaries {
		logs.WithFields(logrus.Fields{
			"encounter_id": s.ID,
			"rounds":       s.Rounds,
			"winner":       s.Winner,
		}).Info("Encounter finished")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summaries); err != nil {
		logs.WithError(err).Error("Failed to write results")
	}
}
