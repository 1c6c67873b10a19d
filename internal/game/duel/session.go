// Package duel runs a two-combatant duel: turn order, action application,
// termination, the turn log and replay.
//
// A Session is owned by a single caller and mutated sequentially; it is not
// safe for concurrent use. Independent sessions share nothing mutable and
// may run in parallel.
package duel

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Havocprime/Lowlife-New/internal/game/combat"
	"github.com/Havocprime/Lowlife-New/internal/game/dice"
	"github.com/Havocprime/Lowlife-New/internal/game/status"
	"github.com/Havocprime/Lowlife-New/internal/observability"
)

// Entry is one line of the append-only turn log.
type Entry struct {
	Turn   int    `json:"turn"`
	Actor  string `json:"actor"`
	Target string `json:"target,omitempty"`
	Action Action `json:"action"`
	// Band is the shared range band after the action resolved.
	Band       string  `json:"band"`
	Weapon     string  `json:"weapon,omitempty"`
	Hit        bool    `json:"hit"`
	HitDraw    float64 `json:"hit_draw"`
	DamageDraw float64 `json:"damage_draw"`
	Damage     int     `json:"damage"`
	// Queued is set when a throw landed; Damage is pending on the target.
	Queued bool `json:"queued,omitempty"`
	// Detonated is pending damage that hit the actor before it acted.
	Detonated    int      `json:"detonated,omitempty"`
	Expired      []string `json:"expired,omitempty"`
	TargetHealth int      `json:"target_health"`
	ActorHealth  int      `json:"actor_health"`
	Note         string   `json:"note,omitempty"`
	// Terminal marks the entry that completed the duel.
	Terminal bool `json:"terminal,omitempty"`
}

func (e Entry) clone() Entry {
	if e.Expired != nil {
		e.Expired = append([]string(nil), e.Expired...)
	}
	return e
}

// CombatantState is the read-only view of a combatant in a Snapshot.
type CombatantState struct {
	ID          string            `json:"id"`
	Name        string            `json:"name,omitempty"`
	Health      int               `json:"health"`
	MaxHealth   int               `json:"max_health"`
	Weapon      string            `json:"weapon"`
	Throwable   string            `json:"throwable,omitempty"`
	Charges     int               `json:"charges,omitempty"`
	Modifiers   []status.Modifier `json:"modifiers,omitempty"`
	Pending     int               `json:"pending,omitempty"`
	PendingFrom string            `json:"pending_from,omitempty"`
}

// Snapshot is a deep copy of a session's state for rendering or storage.
type Snapshot struct {
	ID         string            `json:"id"`
	Seed       int64             `json:"seed"`
	Settings   Settings          `json:"settings"`
	Band       string            `json:"band"`
	Turn       int               `json:"turn"`
	Next       int               `json:"next"` // -1 once resolved
	Combatants [2]CombatantState `json:"combatants"`
	// Grapple is set while the combatants are grappling.
	Grapple *Grapple `json:"grapple,omitempty"`
	Log     []Entry  `json:"log"`
	Outcome Outcome  `json:"outcome"`
}

// Move is one call made on a session, kept for replay.
type Move struct {
	Actor  int    `json:"actor"`
	Action Action `json:"action"`
	Reason string `json:"reason,omitempty"`
}

// Record is everything needed to rebuild a session with Replay.
type Record struct {
	ID         string            `json:"id"`
	Seed       int64             `json:"seed"`
	Settings   Settings          `json:"settings"`
	Combatants [2]combat.Loadout `json:"combatants"`
	Moves      []Move            `json:"moves"`
	// Draws holds the values consumed from a caller-supplied Source.
	// It is empty for seeded sessions.
	Draws []float64 `json:"draws,omitempty"`
}

// Session is a duel between two combatants.
type Session struct {
	id         string
	seed       int64
	settings   Settings
	statuses   *status.Registry
	logger     *zap.Logger
	src        dice.Source
	recorder   *recordingSource
	initial    [2]combat.Loadout
	combatants [2]*combat.Combatant
	band       int
	grapple    *Grapple
	turn       int
	next       int
	log        []Entry
	moves      []Move
	outcome    Outcome
}

// New starts a duel between a and b. Both combatants are copied; the
// caller's values are never mutated. Combatant 0 acts first.
//
// Precondition: a and b are non-nil with distinct IDs, health > 0 and
// weapons covering every band in opts.Bands.
// Postcondition: returns a session awaiting combatant 0, or an error
// wrapping ErrInvalidArgument.
func New(a, b *combat.Combatant, seed int64, opts Options) (*Session, error) {
	return newSession(uuid.NewString(), a, b, seed, opts)
}

func newSession(id string, a, b *combat.Combatant, seed int64, opts Options) (*Session, error) {
	settings, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	for i, c := range []*combat.Combatant{a, b} {
		if err := validateCombatant(i, c, settings.Bands); err != nil {
			return nil, err
		}
	}
	if a.ID == b.ID {
		return nil, fmt.Errorf("%w: combatants share id %q", ErrInvalidArgument, a.ID)
	}

	s := &Session{
		id:       id,
		seed:     seed,
		settings: settings,
		statuses: opts.Statuses,
		logger:   opts.Logger,
		band:     indexOf(settings.Bands, settings.StartingBand),
	}
	if s.statuses == nil {
		s.statuses = status.DefaultRegistry()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = observability.ForDuel(s.logger, "", s.id)

	if opts.Source != nil {
		s.recorder = &recordingSource{src: opts.Source}
		s.src = s.recorder
	} else {
		s.src = dice.NewSeededSource(seed)
	}
	if s.logger.Core().Enabled(zap.DebugLevel) {
		s.src = dice.NewLoggedSource(s.src, s.logger)
	}

	s.combatants[0], s.combatants[1] = a.Clone(), b.Clone()
	s.initial[0], s.initial[1] = combat.LoadoutOf(a), combat.LoadoutOf(b)
	s.logger.Info("duel started",
		zap.String("a", a.ID),
		zap.String("b", b.ID),
		zap.Int64("seed", seed),
		zap.String("band", settings.StartingBand),
	)
	return s, nil
}

func validateCombatant(i int, c *combat.Combatant, bands []string) error {
	if c == nil {
		return fmt.Errorf("%w: combatant %d is nil", ErrInvalidArgument, i)
	}
	if c.ID == "" {
		return fmt.Errorf("%w: combatant %d has no id", ErrInvalidArgument, i)
	}
	if c.Health <= 0 {
		return fmt.Errorf("%w: combatant %q must start with health > 0", ErrInvalidArgument, c.ID)
	}
	if c.Weapon == nil {
		return fmt.Errorf("%w: combatant %q has no weapon", ErrInvalidArgument, c.ID)
	}
	if c.Charges < 0 || c.Pending < 0 {
		return fmt.Errorf("%w: combatant %q has negative charges or pending damage", ErrInvalidArgument, c.ID)
	}
	for _, b := range bands {
		if _, ok := c.Weapon.Multiplier(b); !ok {
			return fmt.Errorf("%w: weapon %q has no multiplier for band %q", ErrInvalidArgument, c.Weapon.ID, b)
		}
		if c.Throwable != nil {
			if _, ok := c.Throwable.Multiplier(b); !ok {
				return fmt.Errorf("%w: throwable %q has no multiplier for band %q", ErrInvalidArgument, c.Throwable.ID, b)
			}
		}
	}
	return nil
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// Seed returns the seed the session was created with.
func (s *Session) Seed() int64 { return s.seed }

// Outcome returns the current outcome.
func (s *Session) Outcome() Outcome { return s.outcome }

// Next returns the index of the combatant expected to act, or -1 once the
// duel is resolved.
func (s *Session) Next() int {
	if s.outcome.Resolved() {
		return -1
	}
	return s.next
}

// Band returns the current shared range band.
func (s *Session) Band() string { return s.settings.Bands[s.band] }

// State returns a deep copy of the session for rendering.
//
// Postcondition: mutating the returned Snapshot never affects s.
func (s *Session) State() Snapshot {
	snap := Snapshot{
		ID:       s.id,
		Seed:     s.seed,
		Settings: s.settings,
		Band:     s.Band(),
		Turn:     s.turn,
		Next:     s.Next(),
		Grapple:  s.grapple.clone(),
		Outcome:  s.outcome,
	}
	snap.Settings.Bands = append([]string(nil), s.settings.Bands...)
	for i, c := range s.combatants {
		snap.Combatants[i] = stateOf(c)
	}
	if len(s.log) > 0 {
		snap.Log = make([]Entry, len(s.log))
		for i, e := range s.log {
			snap.Log[i] = e.clone()
		}
	}
	return snap
}

func stateOf(c *combat.Combatant) CombatantState {
	st := CombatantState{
		ID:          c.ID,
		Name:        c.Name,
		Health:      c.Health,
		MaxHealth:   c.MaxHealth,
		Weapon:      c.Weapon.ID,
		Charges:     c.Charges,
		Modifiers:   c.Modifiers.All(),
		Pending:     c.Pending,
		PendingFrom: c.PendingFrom,
	}
	if c.Throwable != nil {
		st.Throwable = c.Throwable.ID
	}
	return st
}

// Record returns the data Replay needs to rebuild this session.
func (s *Session) Record() Record {
	rec := Record{
		ID:         s.id,
		Seed:       s.seed,
		Settings:   s.settings,
		Combatants: s.initial,
		Moves:      append([]Move(nil), s.moves...),
	}
	rec.Settings.Bands = append([]string(nil), s.settings.Bands...)
	for i := range rec.Combatants {
		rec.Combatants[i].Modifiers = append([]status.Modifier(nil), s.initial[i].Modifiers...)
	}
	if s.recorder != nil {
		rec.Draws = append([]float64{}, s.recorder.draws...)
	}
	return rec
}

// Abort ends the duel without a winner.
//
// Postcondition: Outcome().Kind == OutcomeAborted, or ErrDuelAlreadyResolved.
func (s *Session) Abort(reason string) error {
	if s.outcome.Resolved() {
		return fmt.Errorf("abort duel %s: %w", s.id, ErrDuelAlreadyResolved)
	}
	s.moves = append(s.moves, Move{Actor: -1, Action: ActionAbort, Reason: reason})
	s.log = append(s.log, Entry{
		Turn:   s.turn,
		Action: ActionAbort,
		Band:   s.Band(),
		Note:   reason,
	})
	s.finish(Outcome{Kind: OutcomeAborted, Reason: reason})
	return nil
}

// Forfeit concedes the duel for actor; the other combatant wins. A
// combatant may forfeit out of turn.
//
// Precondition: actor is 0 or 1.
func (s *Session) Forfeit(actor int) error {
	if s.outcome.Resolved() {
		return fmt.Errorf("forfeit duel %s: %w", s.id, ErrDuelAlreadyResolved)
	}
	if actor != 0 && actor != 1 {
		return fmt.Errorf("%w: combatant index %d", ErrInvalidArgument, actor)
	}
	me, them := s.combatants[actor], s.combatants[1-actor]
	s.moves = append(s.moves, Move{Actor: actor, Action: ActionForfeit})
	s.log = append(s.log, Entry{
		Turn:         s.turn,
		Actor:        me.ID,
		Target:       them.ID,
		Action:       ActionForfeit,
		Band:         s.Band(),
		TargetHealth: them.Health,
		ActorHealth:  me.Health,
	})
	s.finish(Outcome{Kind: OutcomeWinner, Winner: them.ID, Reason: "forfeit"})
	return nil
}

// finish resolves the duel and marks the last log entry terminal.
func (s *Session) finish(o Outcome) {
	s.outcome = o
	if n := len(s.log); n > 0 {
		s.log[n-1].Terminal = true
	}
	s.logger.Info("duel resolved",
		observability.Outcome(o),
		observability.Turn(s.turn),
	)
}

// recordingSource keeps every value drawn from a caller-supplied Source.
type recordingSource struct {
	src   dice.Source
	draws []float64
}

// mark returns the number of draws recorded so far.
func (r *recordingSource) mark() int {
	if r == nil {
		return 0
	}
	return len(r.draws)
}

// rewind forgets draws recorded after mark n.
func (r *recordingSource) rewind(n int) {
	if r != nil {
		r.draws = r.draws[:n]
	}
}

func (r *recordingSource) Float64() float64 {
	v := r.src.Float64()
	r.draws = append(r.draws, v)
	return v
}
