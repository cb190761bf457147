package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/KirkDiggler/dnd-combat-core/internal/config"
	"github.com/KirkDiggler/dnd-combat-core/internal/logger"
	"github.com/KirkDiggler/dnd-combat-core/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	provider, err := services.NewProvider(ctx, &services.ProviderConfig{
		Config: cfg,
		Logger: logger.New(&logger.Config{Level: "warn", Output: os.Stderr}),
	})
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() {
		if closeErr := provider.Close(); closeErr != nil {
			log.Printf("Failed to close store: %v", closeErr)
		}
	}()

	svc := provider.EncounterService

	// No id lists everything stored
	if len(os.Args) < 2 {
		snaps, err := svc.ListEncounters(ctx)
		if err != nil {
			log.Fatalf("Failed to list encounters: %v", err)
		}
		fmt.Printf("Found %d encounters:\n", len(snaps))
		for _, snap := range snaps {
			fmt.Printf("  %s: %s (%s, round %d", snap.ID, snap.Name, snap.Status, snap.Round)
			if snap.Winner != "" {
				fmt.Printf(", won by %s", snap.Winner)
			}
			fmt.Println(")")
		}
		return
	}

	snap, err := svc.GetEncounter(ctx, os.Args[1])
	if err != nil {
		log.Printf("Failed to get encounter: %v", err)
		return
	}

	fmt.Printf("Encounter ID: %s\n", snap.ID)
	fmt.Printf("Name: %s\n", snap.Name)
	fmt.Printf("Status: %s\n", snap.Status)
	fmt.Printf("Round: %d\n", snap.Round)
	fmt.Printf("Combatants: %d\n", len(snap.Combatants))
	for _, c := range snap.Combatants {
		fmt.Printf("  %s (%s): %d/%d HP, initiative %d, effects %v\n", c.Name, c.Team, c.HP, c.MaxHP, c.Initiative, c.Status)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		log.Printf("Failed to encode snapshot: %v", err)
		return
	}
	fmt.Println(string(data))
}
