// Package duels runs keyed duels on top of an active-duel repository.
//
// Each operation rebuilds the session from its stored record, applies one
// change and writes the record back. Completed duels are handed to the
// Archive and removed from the repository.
package duels

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Havocprime/Lowlife-New/internal/game/combat"
	"github.com/Havocprime/Lowlife-New/internal/game/dice"
	"github.com/Havocprime/Lowlife-New/internal/game/duel"
	"github.com/Havocprime/Lowlife-New/internal/game/status"
	"github.com/Havocprime/Lowlife-New/internal/game/weapon"
	"github.com/Havocprime/Lowlife-New/internal/observability"
	duelrepo "github.com/Havocprime/Lowlife-New/internal/repositories/duels"
)

// Repository is an alias for the active duel repository interface.
type Repository = duelrepo.Repository

// StartInput describes a new duel.
type StartInput struct {
	// Key identifies the duel slot, e.g. "guild:channel". One active duel per key.
	Key        string
	Challenger combat.Loadout
	Defender   combat.Loadout
	// StartingBand overrides the configured starting band when set.
	StartingBand string
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	Repository Repository      // Required
	Catalog    *weapon.Catalog // Required
	Archive    Archive         // Optional, completed duels are dropped if nil
	Statuses   *status.Registry
	Logger     *zap.Logger

	StartingBand string
	MaxTurns     int
	TurnLimit    duel.TurnLimitPolicy

	// Seeds supplies a seed per duel. Defaults to dice.NewSeed.
	Seeds func() (int64, error)
}

// Service runs duels keyed by a caller-chosen slot. Safe for concurrent use.
type Service struct {
	repo     Repository
	archive  Archive
	catalog  *weapon.Catalog
	statuses *status.Registry
	logger   *zap.Logger
	opts     duel.Options
	seeds    func() (int64, error)

	mu    sync.Mutex
	locks map[string]*keyLock
}

// keyLock serialises one duel key; it is dropped once no caller holds or
// waits on it.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewService creates a duel service.
//
// Precondition: cfg.Repository and cfg.Catalog are non-nil.
func NewService(cfg *ServiceConfig) *Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.Catalog == nil {
		panic("weapon catalog is required")
	}
	s := &Service{
		repo:     cfg.Repository,
		archive:  cfg.Archive,
		catalog:  cfg.Catalog,
		statuses: cfg.Statuses,
		logger:   cfg.Logger,
		seeds:    cfg.Seeds,
		locks:    make(map[string]*keyLock),
	}
	if s.statuses == nil {
		s.statuses = status.DefaultRegistry()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.seeds == nil {
		s.seeds = dice.NewSeed
	}
	s.opts = duel.Options{
		Bands:        cfg.Catalog.Bands(),
		StartingBand: cfg.StartingBand,
		MaxTurns:     cfg.MaxTurns,
		TurnLimit:    cfg.TurnLimit,
		Statuses:     s.statuses,
	}
	return s
}

func (s *Service) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &keyLock{}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}

// Start creates a duel under input.Key.
//
// Postcondition: the duel is stored and its initial snapshot returned, or
// an error wrapping duelrepo.ErrExists when the key already holds an
// unresolved duel.
func (s *Service) Start(ctx context.Context, input *StartInput) (*duel.Snapshot, error) {
	if input == nil || input.Key == "" {
		return nil, fmt.Errorf("%w: duel key is required", duel.ErrInvalidArgument)
	}
	defer s.lock(input.Key)()

	if err := s.clearResolved(ctx, input.Key); err != nil {
		return nil, err
	}

	a, err := input.Challenger.Build(s.catalog)
	if err != nil {
		return nil, fmt.Errorf("challenger: %w", err)
	}
	b, err := input.Defender.Build(s.catalog)
	if err != nil {
		return nil, fmt.Errorf("defender: %w", err)
	}
	seed, err := s.seeds()
	if err != nil {
		return nil, fmt.Errorf("failed to seed duel: %w", err)
	}

	opts := s.opts
	opts.Logger = observability.ForDuel(s.logger, input.Key, "")
	if input.StartingBand != "" {
		opts.StartingBand = input.StartingBand
	}
	sess, err := duel.New(a, b, seed, opts)
	if err != nil {
		return nil, err
	}

	rec := sess.Record()
	if err := s.repo.Create(ctx, input.Key, &rec); err != nil {
		return nil, err
	}
	snap := sess.State()
	return &snap, nil
}

// clearResolved archives and removes a resolved duel left under key by an
// earlier failed archive.
func (s *Service) clearResolved(ctx context.Context, key string) error {
	rec, err := s.repo.Get(ctx, key)
	if errors.Is(err, duelrepo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	sess, err := s.replay(rec)
	if err != nil {
		return err
	}
	if !sess.Outcome().Resolved() {
		return fmt.Errorf("%w: %s", duelrepo.ErrExists, key)
	}
	return s.complete(ctx, key, sess)
}

// Submit applies action for actor in the duel under key.
//
// Postcondition: on success the stored record includes the action; a
// rejected action leaves storage untouched.
func (s *Service) Submit(ctx context.Context, key string, actor int, action duel.Action) (duel.TurnResult, error) {
	defer s.lock(key)()

	sess, err := s.load(ctx, key)
	if err != nil {
		return duel.TurnResult{}, err
	}
	res, err := sess.Submit(actor, action)
	if err != nil {
		return duel.TurnResult{}, err
	}
	s.logger.Debug("duel action submitted",
		observability.DuelKey(key),
		observability.DuelID(sess.ID()),
		zap.Int("actor", actor),
		zap.Stringer("action", action),
		observability.Outcome(res.Outcome),
	)
	return res, s.save(ctx, key, sess)
}

// State returns the current snapshot of the duel under key.
func (s *Service) State(ctx context.Context, key string) (*duel.Snapshot, error) {
	defer s.lock(key)()

	sess, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	snap := sess.State()
	return &snap, nil
}

// Abort ends the duel under key without a winner.
func (s *Service) Abort(ctx context.Context, key, reason string) (*duel.Snapshot, error) {
	return s.end(ctx, key, func(sess *duel.Session) error { return sess.Abort(reason) })
}

// Forfeit concedes the duel under key on behalf of actor.
func (s *Service) Forfeit(ctx context.Context, key string, actor int) (*duel.Snapshot, error) {
	return s.end(ctx, key, func(sess *duel.Session) error { return sess.Forfeit(actor) })
}

func (s *Service) end(ctx context.Context, key string, fn func(*duel.Session) error) (*duel.Snapshot, error) {
	defer s.lock(key)()

	sess, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	snap := sess.State()
	return &snap, s.save(ctx, key, sess)
}

func (s *Service) load(ctx context.Context, key string) (*duel.Session, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: duel key is required", duel.ErrInvalidArgument)
	}
	rec, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.replay(rec)
}

func (s *Service) replay(rec *duel.Record) (*duel.Session, error) {
	// replayed turns were logged when they first ran
	opts := duel.Options{Statuses: s.statuses, Logger: zap.NewNop()}
	sess, err := duel.Replay(s.catalog, *rec, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild duel %s: %w", rec.ID, err)
	}
	return sess, nil
}

// save writes an unresolved session back, or completes a resolved one.
func (s *Service) save(ctx context.Context, key string, sess *duel.Session) error {
	if sess.Outcome().Resolved() {
		return s.complete(ctx, key, sess)
	}
	rec := sess.Record()
	return s.repo.Update(ctx, key, &rec)
}

// complete archives a resolved session and frees its key. When archiving
// fails the record stays stored, resolved, until the next Start on key.
func (s *Service) complete(ctx context.Context, key string, sess *duel.Session) error {
	snap := sess.State()
	if s.archive != nil {
		if err := s.archive.Save(ctx, key, snap); err != nil {
			s.logger.Error("failed to archive duel",
				observability.DuelKey(key),
				observability.DuelID(sess.ID()),
				zap.Error(err),
			)
			rec := sess.Record()
			if uerr := s.repo.Update(ctx, key, &rec); uerr != nil {
				return errors.Join(fmt.Errorf("failed to archive duel %s: %w", sess.ID(), err), uerr)
			}
			return fmt.Errorf("failed to archive duel %s: %w", sess.ID(), err)
		}
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return err
	}
	s.logger.Info("duel completed",
		observability.DuelKey(key),
		observability.DuelID(sess.ID()),
		observability.Outcome(snap.Outcome),
		observability.Turn(snap.Turn),
	)
	return nil
}
