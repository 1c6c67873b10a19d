package duel

import (
	"fmt"

	"github.com/Havocprime/Lowlife-New/internal/game/combat"
	"github.com/Havocprime/Lowlife-New/internal/game/dice"
	"github.com/Havocprime/Lowlife-New/internal/game/weapon"
)

// Replay rebuilds a session from rec by re-running every recorded move
// against cat. Settings and the random stream come from rec; opts supplies
// Statuses and Logger. When rec carries recorded draws, later actions draw
// from opts.Source once those run out, or from a source seeded with rec.Seed.
//
// Precondition: cat holds every weapon rec references, with the same data
// it had when rec was taken.
// Postcondition: the returned session has the same ID, log and outcome as
// the one rec was taken from; on error nothing is returned.
func Replay(cat *weapon.Catalog, rec Record, opts Options) (*Session, error) {
	if rec.ID == "" {
		return nil, fmt.Errorf("%w: record has no id", ErrInvalidArgument)
	}
	var cs [2]*combat.Combatant
	for i, l := range rec.Combatants {
		c, err := l.Build(cat)
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", rec.ID, err)
		}
		cs[i] = c
	}

	opts.Bands = rec.Settings.Bands
	opts.StartingBand = rec.Settings.StartingBand
	opts.MaxTurns = rec.Settings.MaxTurns
	opts.TurnLimit = rec.Settings.TurnLimit
	then := opts.Source
	opts.Source = nil
	if rec.Draws != nil {
		submitted := 0
		for _, m := range rec.Moves {
			if m.Action.Submittable() {
				submitted++
			}
		}
		if len(rec.Draws) < 2*submitted {
			return nil, fmt.Errorf("%w: replay %s: %d draws recorded for %d actions",
				ErrInvalidArgument, rec.ID, len(rec.Draws), submitted)
		}
		if then == nil {
			then = dice.NewSeededSource(rec.Seed)
		}
		opts.Source = &replaySource{recorded: dice.NewScripted(rec.Draws...), then: then}
	}

	s, err := newSession(rec.ID, cs[0], cs[1], rec.Seed, opts)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", rec.ID, err)
	}
	for i, m := range rec.Moves {
		switch m.Action {
		case ActionAbort:
			err = s.Abort(m.Reason)
		case ActionForfeit:
			err = s.Forfeit(m.Actor)
		default:
			_, err = s.Submit(m.Actor, m.Action)
		}
		if err != nil {
			return nil, fmt.Errorf("replay %s move %d (%s): %w", rec.ID, i, m.Action, err)
		}
	}
	return s, nil
}

// replaySource yields recorded draws, then continues from another source.
type replaySource struct {
	recorded *dice.Scripted
	then     dice.Source
}

func (r *replaySource) Float64() float64 {
	if r.recorded.Remaining() > 0 {
		return r.recorded.Float64()
	}
	return r.then.Float64()
}
