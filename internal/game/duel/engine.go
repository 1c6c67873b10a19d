package duel

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Havocprime/Lowlife-New/internal/game/combat"
	"github.com/Havocprime/Lowlife-New/internal/game/dice"
	"github.com/Havocprime/Lowlife-New/internal/game/status"
	"github.com/Havocprime/Lowlife-New/internal/game/weapon"
	"github.com/Havocprime/Lowlife-New/internal/observability"
)

// TurnResult reports one resolved action.
type TurnResult struct {
	Entry   Entry   `json:"entry"`
	Outcome Outcome `json:"outcome"`
	// Next is the combatant expected to act, or -1 once resolved.
	Next int `json:"next"`
}

// Done reports whether this action ended the duel.
func (r TurnResult) Done() bool { return r.Outcome.Resolved() }

// Submit resolves action for the combatant at index actor.
//
// Two draws are taken first (hit then damage) whatever the action, and both
// must lie in [0, 1). Then the actor's modifiers tick and expired ones drop,
// pending thrown damage detonates on the actor, the action applies and a
// log entry is appended. The duel then ends when either side is at 0 health
// or choked out, or when MaxTurns is reached; otherwise the other combatant
// is up.
//
// Precondition: the duel is unresolved and actor is the expected combatant.
// Postcondition: on error nothing in the session has changed. Errors are
// ErrDuelAlreadyResolved, *OutOfTurnError (matching ErrOutOfTurn),
// ErrActionUnavailable or ErrInvalidArgument, all wrapped.
func (s *Session) Submit(actor int, action Action) (TurnResult, error) {
	if s.outcome.Resolved() {
		return TurnResult{}, fmt.Errorf("duel %s: %w", s.id, ErrDuelAlreadyResolved)
	}
	if actor != s.next {
		return TurnResult{}, &OutOfTurnError{Expected: s.next, Got: actor}
	}
	if !action.Submittable() {
		return TurnResult{}, fmt.Errorf("%w: %s cannot be submitted", ErrInvalidArgument, action)
	}
	if err := s.available(actor, action); err != nil {
		return TurnResult{}, err
	}

	mark := s.recorder.mark()
	draws := combat.Draws{Hit: s.src.Float64(), Damage: s.src.Float64()}
	if err := draws.Validate(); err != nil {
		s.recorder.rewind(mark)
		return TurnResult{}, fmt.Errorf("duel %s source: %w", s.id, err)
	}

	t := s.begin(actor)
	e, err := t.apply(action, draws)
	if err != nil {
		s.recorder.rewind(mark)
		return TurnResult{}, fmt.Errorf("duel %s %s: %w", s.id, action, err)
	}
	s.commit(t)
	s.log = append(s.log, e)
	s.moves = append(s.moves, Move{Actor: actor, Action: action})

	s.logger.Debug("duel turn resolved",
		observability.Turn(e.Turn),
		zap.String("actor", e.Actor),
		zap.Stringer("action", action),
		zap.String("band", e.Band),
		zap.Bool("hit", e.Hit),
		zap.Int("damage", e.Damage),
		zap.Int("detonated", e.Detonated),
		zap.Int("target_health", e.TargetHealth),
		zap.Int("actor_health", e.ActorHealth),
	)

	s.settle(actor)
	return TurnResult{Entry: s.log[len(s.log)-1].clone(), Outcome: s.outcome, Next: s.Next()}, nil
}

// available checks that actor can take action without touching any state.
func (s *Session) available(actor int, action Action) error {
	me := s.combatants[actor]
	g := s.grapple
	if g != nil {
		switch action {
		case ActionPass, ActionBreakFree:
			return nil
		case ActionWrestle, ActionPunch:
			if g.Choke != nil {
				return fmt.Errorf("%w: %s is not possible while a choke is held", ErrActionUnavailable, action)
			}
			return nil
		case ActionChoke:
			if g.held(actor) {
				return fmt.Errorf("%w: combatant %q is being choked", ErrActionUnavailable, me.ID)
			}
			return nil
		case ActionRelease:
			if !g.choking(actor) {
				return fmt.Errorf("%w: combatant %q holds no choke", ErrActionUnavailable, me.ID)
			}
			return nil
		default:
			return fmt.Errorf("%w: %s is not possible while grappling", ErrActionUnavailable, action)
		}
	}

	switch action {
	case ActionAdvance:
		if s.band == 0 {
			return fmt.Errorf("%w: already at the closest band %q", ErrActionUnavailable, s.Band())
		}
	case ActionRetreat:
		if s.band == len(s.settings.Bands)-1 {
			return fmt.Errorf("%w: already at the furthest band %q", ErrActionUnavailable, s.Band())
		}
	case ActionThrow:
		if !me.CanThrow() {
			return fmt.Errorf("%w: combatant %q has nothing left to throw", ErrActionUnavailable, me.ID)
		}
	case ActionCover, ActionAim:
		id := status.CoverID
		if action == ActionAim {
			id = status.AimID
		}
		if _, ok := s.statuses.Get(id); !ok {
			return fmt.Errorf("%w: status %q is not defined", ErrActionUnavailable, id)
		}
	case ActionGrapple:
		if s.band != 0 {
			return fmt.Errorf("%w: grapples start at the closest band %q", ErrActionUnavailable, s.settings.Bands[0])
		}
	case ActionWrestle, ActionPunch, ActionChoke, ActionBreakFree, ActionRelease:
		return fmt.Errorf("%w: %s needs a grapple", ErrActionUnavailable, action)
	}
	return nil
}

// turn is the working copy of the state one Submit changes. It replaces the
// session's state only once the action has fully resolved.
type turn struct {
	s        *Session
	actor    int
	me, them *combat.Combatant
	band     int
	grapple  *Grapple
}

func (s *Session) begin(actor int) *turn {
	return &turn{
		s:       s,
		actor:   actor,
		me:      s.combatants[actor].Clone(),
		them:    s.combatants[1-actor].Clone(),
		band:    s.band,
		grapple: s.grapple.clone(),
	}
}

func (s *Session) commit(t *turn) {
	s.combatants[t.actor], s.combatants[1-t.actor] = t.me, t.them
	s.band = t.band
	s.grapple = t.grapple
	s.turn++
}

// apply resolves action on the working copy and returns its log entry.
func (t *turn) apply(action Action, d combat.Draws) (Entry, error) {
	me, them := t.me, t.them
	e := Entry{
		Turn:       t.s.turn + 1,
		Actor:      me.ID,
		Target:     them.ID,
		Action:     action,
		HitDraw:    d.Hit,
		DamageDraw: d.Damage,
		Expired:    me.Modifiers.Tick(),
	}
	e.Detonated = me.Detonate()

	switch action {
	case ActionAttack:
		e.Weapon = me.Weapon.ID
		res, err := t.resolve(me.Weapon, d)
		if err != nil {
			return Entry{}, err
		}
		e.Hit, e.Damage = res.Hit, res.Damage
		them.ApplyDamage(res.Damage)
	case ActionThrow:
		e.Weapon = me.Throwable.ID
		res, err := t.resolve(me.Throwable, d)
		if err != nil {
			return Entry{}, err
		}
		me.Charges--
		e.Hit, e.Damage = res.Hit, res.Damage
		if res.Hit && res.Damage > 0 {
			them.Pending += res.Damage
			them.PendingFrom = me.ID
			e.Queued = true
		}
	case ActionAdvance:
		t.band--
		e.Note = "closed to " + t.s.settings.Bands[t.band]
	case ActionRetreat:
		t.band++
		e.Note = "opened to " + t.s.settings.Bands[t.band]
	case ActionCover:
		def, _ := t.s.statuses.Get(status.CoverID)
		me.Modifiers.Apply(def)
	case ActionAim:
		def, _ := t.s.statuses.Get(status.AimID)
		me.Modifiers.Apply(def)
	case ActionPass:
	case ActionGrapple:
		t.grapple = newGrapple()
		e.Note = "grapple engaged"
	case ActionWrestle, ActionPunch, ActionChoke, ActionBreakFree, ActionRelease:
		t.grapplePhase(action, d, &e)
	}
	e.Band = t.s.settings.Bands[t.band]
	e.TargetHealth, e.ActorHealth = them.Health, me.Health
	return e, nil
}

// grapplePhase applies the actions available inside a grapple. The hit draw
// decides contested attempts and the damage draw sizes the effect.
func (t *turn) grapplePhase(action Action, d combat.Draws, e *Entry) {
	g := t.grapple
	switch action {
	case ActionWrestle:
		e.Hit, e.Damage = true, dice.Pick(d.Damage, 1, 2)
		t.them.ApplyDamage(e.Damage)
		if d.Hit < 0.5 {
			g.shift(t.actor, 10)
			e.Note = "position improved"
		}
	case ActionPunch:
		e.Hit, e.Damage = true, dice.Pick(d.Damage, 1, 5)
		t.them.ApplyDamage(e.Damage)
	case ActionChoke:
		if g.choking(t.actor) {
			g.Choke.squeeze(d)
			e.Hit = true
			e.Note = fmt.Sprintf("choke tightened: breath %d, bloodflow %d", g.Choke.Breath, g.Choke.Bloodflow)
			if g.Choke.Out() {
				e.Note += "; passed out"
			}
			return
		}
		e.Hit = d.Hit < g.odds(t.actor, 0.50, 0.20, 0.85)
		if e.Hit {
			g.Choke = &Choke{By: t.actor, Breath: startMeter, Bloodflow: startMeter}
			e.Note = "choke secured"
		} else {
			e.Note = "choke failed"
		}
	case ActionBreakFree:
		e.Hit = d.Hit < g.odds(t.actor, 0.40, 0.10, 0.90)
		if e.Hit {
			t.grapple = nil
			e.Note = "broke free"
		} else {
			g.shift(t.actor, -5)
			e.Note = "failed to break free"
		}
	case ActionRelease:
		g.Choke = nil
		e.Note = "choke released"
	}
}

// resolve runs the resolver with both combatants' modifiers applied.
func (t *turn) resolve(w *weapon.Profile, d combat.Draws) (combat.Result, error) {
	adj := combat.Adjustment{
		AccuracyBonus: status.AccuracyBonus(t.me.Modifiers),
		Cover:         combat.Clamp(1-status.CoverFactor(t.them.Modifiers), 0, 1),
		DamageBonus:   status.DamageBonus(t.me.Modifiers),
		Soak:          status.ArmorSoak(t.them.Modifiers),
	}
	return combat.ResolveWith(w, t.s.settings.Bands[t.band], d, adj)
}

// settle decides whether the action just resolved ended the duel. A
// combatant choked out counts as down.
func (s *Session) settle(actor int) {
	meDown, themDown := s.down(actor), s.down(1-actor)
	switch {
	case meDown && themDown:
		s.finish(Outcome{Kind: OutcomeDraw, Reason: "double knockout"})
	case themDown:
		s.finish(Outcome{Kind: OutcomeWinner, Winner: s.combatants[actor].ID, Reason: s.downReason(1 - actor)})
	case meDown:
		s.finish(Outcome{Kind: OutcomeWinner, Winner: s.combatants[1-actor].ID, Reason: s.downReason(actor)})
	default:
		s.next = 1 - actor
		if s.settings.MaxTurns > 0 && s.turn >= s.settings.MaxTurns {
			s.finish(s.turnLimitOutcome())
		}
	}
}

func (s *Session) down(i int) bool {
	return s.combatants[i].IsDown() || s.grapple.choked(i)
}

func (s *Session) downReason(i int) string {
	if !s.combatants[i].IsDown() && s.grapple.choked(i) {
		return "choked out"
	}
	return "knockout"
}

func (s *Session) turnLimitOutcome() Outcome {
	const reason = "turn limit"
	if s.settings.TurnLimit == TurnLimitHealthLead {
		a, b := s.combatants[0], s.combatants[1]
		switch {
		case a.Health > b.Health:
			return Outcome{Kind: OutcomeWinner, Winner: a.ID, Reason: reason}
		case b.Health > a.Health:
			return Outcome{Kind: OutcomeWinner, Winner: b.ID, Reason: reason}
		}
	}
	return Outcome{Kind: OutcomeDraw, Reason: reason}
}
