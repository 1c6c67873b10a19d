package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Havocprime/Lowlife-New/internal/game/duel"
	"github.com/Havocprime/Lowlife-New/internal/storage/postgres"
	"github.com/Havocprime/Lowlife-New/internal/testutil"
)

func makeSnapshot(a, b string) duel.Snapshot {
	return duel.Snapshot{
		ID:   uuid.NewString(),
		Seed: 42,
		Settings: duel.Settings{
			Bands:        []string{"short", "medium", "long"},
			StartingBand: "medium",
			MaxTurns:     10,
			TurnLimit:    duel.TurnLimitDraw,
		},
		Band: "short",
		Turn: 2,
		Next: -1,
		Combatants: [2]duel.CombatantState{
			{ID: a, Name: "Ace", Health: 4, MaxHealth: 10, Weapon: "knife"},
			{ID: b, Name: "Bo", Health: 0, MaxHealth: 3, Weapon: "pistol"},
		},
		Log: []duel.Entry{
			{Turn: 1, Actor: a, Target: b, Action: duel.ActionAdvance, Band: "short", Note: "medium -> short", TargetHealth: 3, ActorHealth: 10},
			{Turn: 2, Actor: a, Target: b, Action: duel.ActionAttack, Band: "short", Weapon: "knife", Hit: true, HitDraw: 0.1, DamageDraw: 0.9, Damage: 3, TargetHealth: 0, ActorHealth: 4, Terminal: true},
		},
		Outcome: duel.Outcome{Kind: duel.OutcomeWinner, Winner: a, Reason: "knockout"},
	}
}

func TestDuelArchive_SaveAndGet(t *testing.T) {
	archive := postgres.NewDuelArchive(testutil.NewPool(t))
	ctx := context.Background()

	snap := makeSnapshot("ace", "bo")
	require.NoError(t, archive.Save(ctx, "guild:chan", snap))

	got, err := archive.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap, *got)
}

func TestDuelArchive_SaveIsIdempotent(t *testing.T) {
	pool := testutil.NewPool(t)
	archive := postgres.NewDuelArchive(pool)
	ctx := context.Background()

	snap := makeSnapshot("ace2", "bo2")
	require.NoError(t, archive.Save(ctx, "k", snap))
	require.NoError(t, archive.Save(ctx, "k", snap))

	var turns int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM duel_turns WHERE duel_id = $1`, snap.ID).Scan(&turns))
	assert.Equal(t, 2, turns)
}

func TestDuelArchive_RejectsUnresolved(t *testing.T) {
	archive := postgres.NewDuelArchive(testutil.NewPool(t))
	snap := makeSnapshot("x", "y")
	snap.Outcome = duel.Outcome{}
	assert.Error(t, archive.Save(context.Background(), "k", snap))

	_, err := archive.Get(context.Background(), snap.ID)
	assert.ErrorIs(t, err, postgres.ErrDuelNotFound)
}

func TestDuelArchive_GetNotFound(t *testing.T) {
	archive := postgres.NewDuelArchive(testutil.NewPool(t))
	_, err := archive.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, postgres.ErrDuelNotFound)
}

func TestDuelArchive_ListByCombatant(t *testing.T) {
	archive := postgres.NewDuelArchive(testutil.NewPool(t))
	ctx := context.Background()

	first := makeSnapshot("carol", "dave")
	require.NoError(t, archive.Save(ctx, "k1", first))
	time.Sleep(10 * time.Millisecond)
	second := makeSnapshot("erin", "carol")
	second.Outcome = duel.Outcome{Kind: duel.OutcomeDraw, Reason: "turn limit"}
	require.NoError(t, archive.Save(ctx, "k2", second))

	list, err := archive.ListByCombatant(ctx, "carol", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, duel.OutcomeDraw, list[0].Outcome)
	assert.Equal(t, 1, list[0].Slot)
	assert.Equal(t, "erin", list[0].Opponent)
	assert.Empty(t, list[0].Winner)

	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, "carol", list[1].Winner)
	assert.Equal(t, "dave", list[1].Opponent)
	assert.Equal(t, 2, list[1].Turns)

	limited, err := archive.ListByCombatant(ctx, "carol", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := archive.ListByCombatant(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
