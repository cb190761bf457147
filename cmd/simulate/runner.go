package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/KirkDiggler/dnd-combat-core/internal/domain/area"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/combatant"
	"github.com/KirkDiggler/dnd-combat-core/internal/domain/game/combat"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"
	"github.com/KirkDiggler/dnd-combat-core/internal/services/encounter"
)

const (
	// meleeReach is how close a combatant walks before swinging
	meleeReach   = 1.5
	moveAttempts = 3
)

type summary struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Rounds    int      `json:"rounds"`
	Winner    string   `json:"winner,omitempty"`
	Survivors []string `json:"survivors"`
}

type runner struct {
	svc       encounter.Service
	goblins   int
	maxRounds int
	log       logrus.FieldLogger
}

// run plays one encounter to the end: everyone walks at the nearest enemy
// and attacks when in reach
func (r *runner) run(ctx context.Context, n int) (*summary, error) {
	snap, err := r.svc.CreateEncounter(ctx, &encounter.CreateEncounterInput{
		Name:       fmt.Sprintf("Skirmish %d", n+1),
		Combatants: r.roster(n),
	})
	if err != nil {
		return nil, err
	}
	id := snap.ID

	if snap, err = r.svc.StartEncounter(ctx, id); err != nil {
		return nil, err
	}

	for !snap.Ended && snap.Round <= r.maxRounds {
		if err := r.takeTurn(ctx, snap); err != nil {
			return nil, err
		}
		if snap, err = r.svc.GetEncounter(ctx, id); err != nil {
			return nil, err
		}
		if snap.Ended {
			break
		}
		if snap, err = r.svc.NextTurn(ctx, id); err != nil {
			return nil, err
		}
	}

	if !snap.Ended {
		r.log.WithField("encounter_id", id).Info("Round limit reached")
		if snap, err = r.svc.EndEncounter(ctx, id); err != nil {
			return nil, err
		}
	}

	s := &summary{
		ID:        snap.ID,
		Name:      snap.Name,
		Rounds:    snap.Round,
		Winner:    snap.Winner,
		Survivors: []string{},
	}
	for _, c := range snap.Combatants {
		if c.Alive {
			s.Survivors = append(s.Survivors, c.Name)
		}
	}
	return s, nil
}

func (r *runner) roster(n int) []*combatant.Combatant {
	prefix := fmt.Sprintf("s%d", n+1)
	list := []*combatant.Combatant{
		{
			ID:         prefix + "-fighter",
			Name:       "Fighter",
			Type:       combatant.TypePlayer,
			Team:       "heroes",
			HP:         24,
			ArmorClass: 16,
			Attributes: map[string]int{"STR": 16, "DEX": 12, "CON": 14},
			Equipment:  []string{"longsword", "shield"},
		},
		{
			ID:         prefix + "-rogue",
			Name:       "Rogue",
			Type:       combatant.TypePlayer,
			Team:       "heroes",
			HP:         18,
			ArmorClass: 14,
			Attributes: map[string]int{"STR": 10, "DEX": 16},
			Equipment:  []string{"shortsword"},
			Stealth:    70,
		},
	}
	for i := 0; i < r.goblins; i++ {
		list = append(list, &combatant.Combatant{
			ID:         fmt.Sprintf("%s-goblin-%d", prefix, i+1),
			Name:       fmt.Sprintf("Goblin %d", i+1),
			Type:       combatant.TypeMonster,
			Team:       "goblins",
			HP:         7,
			ArmorClass: 13,
			Attributes: map[string]int{"STR": 8, "DEX": 14},
			Equipment:  []string{"scimitar"},
		})
	}
	return list
}

func (r *runner) takeTurn(ctx context.Context, snap *combat.Snapshot) error {
	actor := find(snap, snap.Current)
	if actor == nil || !actor.Alive || actor.Position == nil {
		return nil
	}
	target := nearestEnemy(snap, actor)
	if target == nil {
		return nil
	}

	if actor.Position.DistanceTo(*target.Position) > meleeReach && actor.Remaining != nil {
		// rough terrain can cost more than the straight-line distance, so
		// shorten the step until the move is accepted
		budget := actor.Remaining.Movement
		for attempt := 0; attempt < moveAttempts; attempt++ {
			out, err := r.svc.Move(ctx, snap.ID, actor.ID, approach(*actor.Position, *target.Position, budget))
			if err != nil {
				return err
			}
			if out.Ended || len(out.Triggered) > 0 && !out.Result.Success {
				// the encounter is over or the actor fell to a reaction
				return nil
			}
			if out.Result.Success {
				break
			}
			budget /= 2
		}
	}

	_, err := r.svc.TakeAction(ctx, &encounter.ActionInput{
		EncounterID: snap.ID,
		ActorID:     actor.ID,
		ActionID:    "attack",
		TargetID:    target.ID,
	})
	if dnderr.IsFailedPrecondition(err) {
		// knocked out by a readied action on the way in
		return nil
	}
	return err
}

func find(snap *combat.Snapshot, id string) *combat.CombatantState {
	for _, c := range snap.Combatants {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func nearestEnemy(snap *combat.Snapshot, actor *combat.CombatantState) *combat.CombatantState {
	var best *combat.CombatantState
	bestDist := 0.0
	for _, c := range snap.Combatants {
		if c.Team == actor.Team || !c.Alive || c.Position == nil {
			continue
		}
		d := actor.Position.DistanceTo(*c.Position)
		if best == nil || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// approach returns the point on the line from "from" to "to" that stops
// one unit short of "to", limited to budget
func approach(from, to area.Position, budget float64) area.Position {
	dist := from.DistanceTo(to)
	step := min(budget, dist-1)
	if step <= 0 || dist == 0 {
		return from
	}
	t := step / dist
	return area.Pos(from.X+(to.X-from.X)*t, from.Z+(to.Z-from.Z)*t)
}
