package duels_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Havocprime/Lowlife-New/internal/game/duel"
	"github.com/Havocprime/Lowlife-New/internal/repositories/duels"
)

func TestInMemoryRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := duels.NewInMemoryRepository()
	rec := testRecord()

	_, err := repo.Get(ctx, "g1:c1")
	assert.ErrorIs(t, err, duels.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, "g1:c1", rec), duels.ErrNotFound)

	require.NoError(t, repo.Create(ctx, "g1:c1", rec))
	assert.ErrorIs(t, repo.Create(ctx, "g1:c1", rec), duels.ErrExists)

	got, err := repo.Get(ctx, "g1:c1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	rec.Moves = append(rec.Moves, duel.Move{Actor: 1, Action: duel.ActionPass})
	require.NoError(t, repo.Update(ctx, "g1:c1", rec))
	got, err = repo.Get(ctx, "g1:c1")
	require.NoError(t, err)
	assert.Len(t, got.Moves, 2)

	require.NoError(t, repo.Delete(ctx, "g1:c1"))
	require.NoError(t, repo.Delete(ctx, "g1:c1"))
	_, err = repo.Get(ctx, "g1:c1")
	assert.ErrorIs(t, err, duels.ErrNotFound)
}

func TestInMemoryRepository_StoresCopies(t *testing.T) {
	ctx := context.Background()
	repo := duels.NewInMemoryRepository()
	rec := testRecord()
	require.NoError(t, repo.Create(ctx, "k", rec))

	rec.Moves[0].Action = duel.ActionRetreat
	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, duel.ActionAttack, got.Moves[0].Action)

	got.Combatants[0].Health = 1
	again, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 10, again.Combatants[0].Health)
}

func TestInMemoryRepository_RejectsInvalidInput(t *testing.T) {
	repo := duels.NewInMemoryRepository()
	assert.Error(t, repo.Create(context.Background(), "", testRecord()))
	assert.Error(t, repo.Create(context.Background(), "k", nil))
}

func TestInMemoryRepository_ConcurrentCreateHasOneWinner(t *testing.T) {
	ctx := context.Background()
	repo := duels.NewInMemoryRepository()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := testRecord()
			rec.ID = fmt.Sprintf("duel-%d", i)
			if repo.Create(ctx, "contested", rec) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
