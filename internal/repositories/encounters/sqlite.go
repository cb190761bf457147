package encounters

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/KirkDiggler/dnd-combat-core/internal/effects"
	dnderr "github.com/KirkDiggler/dnd-combat-core/internal/errors"

	// registers the "sqlite" driver
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS encounter_states (
	encounter_id TEXT PRIMARY KEY,
	state        BLOB NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS combatant_effects (
	combatant_id TEXT PRIMARY KEY,
	effects      TEXT NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);`

// SQLiteRepoConfig holds configuration for the SQLite repository
type SQLiteRepoConfig struct {
	// Path is a file path or ":memory:"
	Path         string
	TimeProvider TimeProvider
}

type sqliteRepository struct {
	db           *sql.DB
	timeProvider TimeProvider
}

// NewSQLiteRepository opens the database and creates the tables it needs.
// Call the returned close function when done.
func NewSQLiteRepository(ctx context.Context, cfg *SQLiteRepoConfig) (Repository, func() error, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, nil, dnderr.InvalidArgument("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, nil, dnderr.Wrapf(err, "failed to open sqlite database %s", cfg.Path)
	}
	// an in-memory database lives only as long as its one connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, nil, dnderr.Wrap(err, "failed to create sqlite schema")
	}

	repo := &sqliteRepository{
		db:           db,
		timeProvider: orRealTime(cfg.TimeProvider),
	}
	return repo, db.Close, nil
}

func (r *sqliteRepository) GetState(ctx context.Context, encounterID string) ([]byte, error) {
	var state []byte
	err := r.db.QueryRowContext(ctx,
		"SELECT state FROM encounter_states WHERE encounter_id = ?", encounterID,
	).Scan(&state)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dnderr.NotFoundf("encounter state not found: %s", encounterID)
		}
		return nil, dnderr.Wrapf(err, "failed to get encounter %s", encounterID)
	}
	return state, nil
}

func (r *sqliteRepository) SaveState(ctx context.Context, encounterID string, state []byte) error {
	if encounterID == "" {
		return dnderr.InvalidArgument("encounter ID cannot be empty")
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO encounter_states (encounter_id, state, updated_at) VALUES (?, ?, ?)
ON CONFLICT(encounter_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		encounterID, state, r.timeProvider.Now())
	if err != nil {
		return dnderr.Wrapf(err, "failed to save encounter %s", encounterID)
	}
	return nil
}

func (r *sqliteRepository) UpdateEffects(ctx context.Context, combatantID string, active []*effects.StatusEffect) error {
	if combatantID == "" {
		return dnderr.InvalidArgument("combatant ID cannot be empty")
	}

	if len(active) == 0 {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM combatant_effects WHERE combatant_id = ?", combatantID); err != nil {
			return dnderr.Wrapf(err, "failed to clear effects for %s", combatantID)
		}
		return nil
	}

	data, err := json.Marshal(active)
	if err != nil {
		return dnderr.Wrapf(err, "failed to serialize effects for %s", combatantID)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO combatant_effects (combatant_id, effects, updated_at) VALUES (?, ?, ?)
ON CONFLICT(combatant_id) DO UPDATE SET effects = excluded.effects, updated_at = excluded.updated_at`,
		combatantID, string(data), r.timeProvider.Now())
	if err != nil {
		return dnderr.Wrapf(err, "failed to store effects for %s", combatantID)
	}
	return nil
}

func (r *sqliteRepository) GetEffects(ctx context.Context, combatantID string) ([]*effects.StatusEffect, error) {
	var data string
	err := r.db.QueryRowContext(ctx,
		"SELECT effects FROM combatant_effects WHERE combatant_id = ?", combatantID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*effects.StatusEffect{}, nil
		}
		return nil, dnderr.Wrapf(err, "failed to get effects for %s", combatantID)
	}

	var active []*effects.StatusEffect
	if err := json.Unmarshal([]byte(data), &active); err != nil {
		return nil, dnderr.Wrapf(err, "failed to deserialize effects for %s", combatantID)
	}
	return active, nil
}

func (r *sqliteRepository) List(ctx context.Context) ([]*Record, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT encounter_id, state, updated_at FROM encounter_states ORDER BY encounter_id")
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to list encounters")
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			rec       Record
			updatedAt time.Time
		)
		if err := rows.Scan(&rec.EncounterID, &rec.State, &updatedAt); err != nil {
			return nil, dnderr.Wrap(err, "failed to read encounter row")
		}
		rec.UpdatedAt = updatedAt
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, dnderr.Wrap(err, "failed to list encounters")
	}
	return records, nil
}

func (r *sqliteRepository) Delete(ctx context.Context, encounterID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM encounter_states WHERE encounter_id = ?", encounterID)
	if err != nil {
		return dnderr.Wrapf(err, "failed to delete encounter %s", encounterID)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return dnderr.NotFoundf("encounter state not found: %s", encounterID)
	}
	return nil
}
