package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Havocprime/Lowlife-New/internal/game/duel"
)

// ErrDuelNotFound is returned when an archived duel lookup yields no results.
var ErrDuelNotFound = errors.New("duel not found")

// DuelSummary is one archived duel as seen by one of its combatants.
type DuelSummary struct {
	ID         string
	Key        string
	Outcome    duel.OutcomeKind
	Winner     string
	Reason     string
	Turns      int
	Slot       int
	Opponent   string
	ArchivedAt time.Time
}

// DuelArchive stores completed duels.
type DuelArchive struct {
	db *pgxpool.Pool
}

// NewDuelArchive creates a DuelArchive backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewDuelArchive(db *pgxpool.Pool) *DuelArchive {
	return &DuelArchive{db: db}
}

// Save writes a resolved snapshot, its combatants and its turn log in one
// transaction. Saving a duel ID that is already archived is a no-op.
//
// Precondition: snap.Outcome is resolved and snap.ID is a UUID.
// Postcondition: the duel is archived exactly once, or a non-nil error is returned
// and nothing was written.
func (a *DuelArchive) Save(ctx context.Context, key string, snap duel.Snapshot) error {
	if !snap.Outcome.Resolved() {
		return fmt.Errorf("archiving duel %s: outcome is unresolved", snap.ID)
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding duel %s: %w", snap.ID, err)
	}

	tx, err := a.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		INSERT INTO duels (id, duel_key, seed, outcome, winner, reason, turns, snapshot)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		snap.ID, key, snap.Seed, snap.Outcome.Kind.String(), snap.Outcome.Winner,
		snap.Outcome.Reason, snap.Turn, body,
	)
	if err != nil {
		return fmt.Errorf("inserting duel %s: %w", snap.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for slot, c := range snap.Combatants {
		batch.Queue(`
			INSERT INTO duel_combatants (duel_id, slot, combatant_id, name, weapon, final_health)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			snap.ID, slot, c.ID, c.Name, c.Weapon, c.Health,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting combatants for duel %s: %w", snap.ID, err)
	}

	rows := make([][]any, len(snap.Log))
	for i, e := range snap.Log {
		rows[i] = []any{snap.ID, i, e.Turn, e.Actor, e.Action.String(), e.Band, e.Hit, e.Damage, e.Terminal}
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"duel_turns"},
		[]string{"duel_id", "seq", "turn", "actor", "action", "band", "hit", "damage", "terminal"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copying turn log for duel %s: %w", snap.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing duel %s: %w", snap.ID, err)
	}
	return nil
}

// Get returns the archived snapshot for id.
//
// Postcondition: Returns the snapshot or ErrDuelNotFound.
func (a *DuelArchive) Get(ctx context.Context, id string) (*duel.Snapshot, error) {
	var body []byte
	err := a.db.QueryRow(ctx, `SELECT snapshot FROM duels WHERE id = $1`, id).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDuelNotFound
		}
		return nil, fmt.Errorf("querying duel %s: %w", id, err)
	}
	var snap duel.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("decoding duel %s: %w", id, err)
	}
	return &snap, nil
}

// ListByCombatant returns the most recent duels combatantID took part in,
// newest first.
//
// Precondition: limit > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (a *DuelArchive) ListByCombatant(ctx context.Context, combatantID string, limit int) ([]DuelSummary, error) {
	rows, err := a.db.Query(ctx, `
		SELECT d.id, d.duel_key, d.outcome, COALESCE(d.winner, ''), d.reason, d.turns,
		       me.slot, them.combatant_id, d.archived_at
		FROM duel_combatants me
		JOIN duels d ON d.id = me.duel_id
		JOIN duel_combatants them ON them.duel_id = me.duel_id AND them.slot <> me.slot
		WHERE me.combatant_id = $1
		ORDER BY d.archived_at DESC, d.id
		LIMIT $2`,
		combatantID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing duels for %s: %w", combatantID, err)
	}
	defer rows.Close()

	out := make([]DuelSummary, 0)
	for rows.Next() {
		var (
			s       DuelSummary
			outcome string
		)
		if err := rows.Scan(&s.ID, &s.Key, &outcome, &s.Winner, &s.Reason, &s.Turns,
			&s.Slot, &s.Opponent, &s.ArchivedAt); err != nil {
			return nil, fmt.Errorf("scanning duel row: %w", err)
		}
		if err := s.Outcome.UnmarshalText([]byte(outcome)); err != nil {
			return nil, fmt.Errorf("duel %s: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
