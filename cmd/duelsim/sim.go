package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Havocprime/Lowlife-New/internal/game/combat"
	"github.com/Havocprime/Lowlife-New/internal/game/duel"
	"github.com/Havocprime/Lowlife-New/internal/game/weapon"
	"github.com/Havocprime/Lowlife-New/internal/observability"
	"github.com/Havocprime/Lowlife-New/internal/services/duels"
)

// roster pairs every non-thrown weapon in a catalog against every other.
type roster struct {
	weapons   []string
	throwable string
	health    int
}

func newRoster(cat *weapon.Catalog, health int) (roster, error) {
	r := roster{health: health}
	for _, p := range cat.All() {
		if p.IsThrown() {
			if r.throwable == "" {
				r.throwable = p.ID
			}
			continue
		}
		r.weapons = append(r.weapons, p.ID)
	}
	if len(r.weapons) == 0 {
		return roster{}, errors.New("catalog has no usable weapons")
	}
	return r, nil
}

// matchup returns the loadouts for duel i.
func (r roster) matchup(i int) (combat.Loadout, combat.Loadout) {
	n := len(r.weapons)
	wa, wb := r.weapons[i%n], r.weapons[(i/n+i)%n]
	a := combat.Loadout{ID: fmt.Sprintf("red-%d", i), Name: "Red " + wa, Health: r.health, Weapon: wa}
	b := combat.Loadout{ID: fmt.Sprintf("blue-%d", i), Name: "Blue " + wb, Health: r.health, Weapon: wb}
	if r.throwable != "" {
		a.Throwable, a.Charges = r.throwable, 1
		b.Throwable, b.Charges = r.throwable, 1
	}
	return a, b
}

// tally aggregates duel outcomes by winning weapon.
type tally struct {
	mu      sync.Mutex
	Wins    map[string]int
	Draws   int
	Aborted int
	Turns   int
	Duels   int
}

func (t *tally) add(snap *duel.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Duels++
	t.Turns += snap.Turn
	switch snap.Outcome.Kind {
	case duel.OutcomeWinner:
		for _, c := range snap.Combatants {
			if c.ID == snap.Outcome.Winner {
				t.Wins[c.Weapon]++
			}
		}
	case duel.OutcomeDraw:
		t.Draws++
	case duel.OutcomeAborted:
		t.Aborted++
	}
}

// simulate runs n autopilot duels, at most concurrency at a time.
//
// Precondition: n >= 0 and concurrency >= 1.
// Postcondition: every started duel is resolved or aborted; the first
// failure cancels the rest.
func simulate(ctx context.Context, svc *duels.Service, cat *weapon.Catalog, r roster, n, concurrency int, logger *zap.Logger) (*tally, error) {
	t := &tally{Wins: make(map[string]int)}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			snap, err := playOne(ctx, svc, cat, fmt.Sprintf("sim:%d", i), r, i)
			if err != nil {
				return fmt.Errorf("duel %d: %w", i, err)
			}
			logger.Debug("duel finished",
				zap.Int("index", i),
				observability.DuelID(snap.ID),
				observability.Outcome(snap.Outcome),
			)
			t.add(snap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return t, err
	}
	return t, nil
}

func playOne(ctx context.Context, svc *duels.Service, cat *weapon.Catalog, key string, r roster, i int) (*duel.Snapshot, error) {
	a, b := r.matchup(i)
	snap, err := svc.Start(ctx, &duels.StartInput{Key: key, Challenger: a, Defender: b})
	if err != nil {
		return nil, err
	}
	for !snap.Outcome.Resolved() {
		if ctx.Err() != nil {
			if _, err := svc.Abort(context.WithoutCancel(ctx), key, "simulation interrupted"); err != nil {
				return nil, errors.Join(ctx.Err(), err)
			}
			return nil, ctx.Err()
		}
		res, err := svc.Submit(ctx, key, snap.Next, duel.Suggest(cat, *snap))
		if err != nil {
			return nil, err
		}
		if res.Done() {
			// the service archived and released the key; rebuild the final view locally
			snap.Turn = res.Entry.Turn
			snap.Outcome = res.Outcome
			snap.Log = append(snap.Log, res.Entry)
			break
		}
		if snap, err = svc.State(ctx, key); err != nil {
			return nil, err
		}
	}
	return snap, nil
}
