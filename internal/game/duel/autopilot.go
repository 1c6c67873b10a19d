package duel

import (
	"github.com/Havocprime/Lowlife-New/internal/game/weapon"
)

// Suggest picks an action for the combatant expected to act in snap. It is
// the bot's opponent policy:
//
//   - off its weapon's effective band with a throwable charge left, throw;
//   - off its effective band, move toward it unless the opponent just moved;
//   - otherwise attack.
//
// Inside a grapple it tightens a choke it holds, tries to break free from
// one it is caught in, and otherwise chokes with the leverage lead, breaks
// free when behind and wrestles when even. A combatant that wants range
// grapples instead of attacking when the opponent has just closed to the
// nearest band.
//
// An actor never moves right after its opponent moved, so two combatants
// preferring different bands still trade attacks.
//
// Postcondition: returns ActionPass for a resolved duel; every other result
// is available to the actor in snap.
func Suggest(cat *weapon.Catalog, snap Snapshot) Action {
	if snap.Outcome.Resolved() || snap.Next < 0 {
		return ActionPass
	}
	if snap.Grapple != nil {
		return grappleMove(snap.Grapple, snap.Next)
	}
	me := snap.Combatants[snap.Next]
	w, err := cat.Get(me.Weapon)
	if err != nil {
		return ActionAttack
	}
	cur := indexOf(snap.Settings.Bands, snap.Band)
	want := indexOf(snap.Settings.Bands, w.EffectiveBand())
	if cur < 0 || want < 0 || cur == want {
		return ActionAttack
	}
	if me.Throwable != "" && me.Charges > 0 {
		return ActionThrow
	}
	if opponentJustMoved(snap) {
		if cur == 0 && want > cur {
			return ActionGrapple
		}
		return ActionAttack
	}
	if want < cur {
		return ActionAdvance
	}
	return ActionRetreat
}

func opponentJustMoved(snap Snapshot) bool {
	if len(snap.Log) == 0 {
		return false
	}
	last := snap.Log[len(snap.Log)-1]
	return last.Actor != snap.Combatants[snap.Next].ID &&
		(last.Action == ActionAdvance || last.Action == ActionRetreat)
}

func grappleMove(g *Grapple, me int) Action {
	switch {
	case g.choking(me):
		return ActionChoke
	case g.held(me):
		return ActionBreakFree
	}
	switch lead := g.Positioning[me] - g.Positioning[1-me]; {
	case lead > 0:
		return ActionChoke
	case lead < 0:
		return ActionBreakFree
	default:
		return ActionWrestle
	}
}
