package duel

import "fmt"

// Action is what a combatant does on its turn.
type Action int

const (
	// ActionAttack fires the equipped weapon at the current band.
	ActionAttack Action = iota
	// ActionAdvance closes the range by one band.
	ActionAdvance
	// ActionRetreat opens the range by one band.
	ActionRetreat
	// ActionThrow throws the combatant's throwable; damage lands at the
	// start of the target's next action.
	ActionThrow
	// ActionCover applies the cover status to the actor.
	ActionCover
	// ActionAim applies the aim status to the actor.
	ActionAim
	// ActionPass does nothing.
	ActionPass
	// ActionGrapple starts a grapple; only available at the closest band.
	ActionGrapple
	// ActionWrestle deals 1-2 damage and may gain positioning.
	ActionWrestle
	// ActionPunch deals 1-5 damage.
	ActionPunch
	// ActionChoke tries to secure a choke, or tightens one already held.
	ActionChoke
	// ActionBreakFree tries to end the grapple.
	ActionBreakFree
	// ActionRelease lets go of a held choke.
	ActionRelease
	// ActionForfeit and ActionAbort only appear in the log; they are
	// requested through Session.Forfeit and Session.Abort.
	ActionForfeit
	ActionAbort
)

var actionNames = [...]string{
	ActionAttack:    "attack",
	ActionAdvance:   "advance",
	ActionRetreat:   "retreat",
	ActionThrow:     "throw",
	ActionCover:     "cover",
	ActionAim:       "aim",
	ActionPass:      "pass",
	ActionGrapple:   "grapple",
	ActionWrestle:   "wrestle",
	ActionPunch:     "punch",
	ActionChoke:     "choke",
	ActionBreakFree: "break_free",
	ActionRelease:   "release",
	ActionForfeit:   "forfeit",
	ActionAbort:     "abort",
}

// String returns the action's lowercase name.
func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// Submittable reports whether a can be passed to Session.Submit.
func (a Action) Submittable() bool {
	return a >= ActionAttack && a < ActionForfeit
}

// ParseAction maps a name such as "attack" to its Action.
//
// Postcondition: returns an error wrapping ErrInvalidArgument for unknown names.
func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if name == s {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidArgument, s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	if a < 0 || int(a) >= len(actionNames) {
		return nil, fmt.Errorf("%w: unknown action %d", ErrInvalidArgument, int(a))
	}
	return []byte(actionNames[a]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Action) UnmarshalText(b []byte) error {
	v, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
