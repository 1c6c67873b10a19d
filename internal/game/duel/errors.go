package duel

import (
	"errors"
	"fmt"

	"github.com/Havocprime/Lowlife-New/internal/game/combat"
)

var (
	// ErrOutOfTurn is returned when a combatant acts while the other is expected.
	ErrOutOfTurn = errors.New("out of turn")
	// ErrDuelAlreadyResolved is returned for any action on a finished duel.
	ErrDuelAlreadyResolved = errors.New("duel already resolved")
	// ErrActionUnavailable is returned when the actor cannot take the action
	// right now, e.g. advancing at the closest band or throwing with no charges.
	ErrActionUnavailable = errors.New("action unavailable")
	// ErrInvalidArgument is the resolver's misuse error, shared so callers
	// need one sentinel for both packages.
	ErrInvalidArgument = combat.ErrInvalidArgument
)

// OutOfTurnError reports which combatant was expected to act.
type OutOfTurnError struct {
	Expected int
	Got      int
}

func (e *OutOfTurnError) Error() string {
	return fmt.Sprintf("out of turn: combatant %d acted, expected %d", e.Got, e.Expected)
}

// Is makes errors.Is(err, ErrOutOfTurn) hold.
func (e *OutOfTurnError) Is(target error) bool {
	return target == ErrOutOfTurn
}
