// Package duels stores the records of duels in progress, keyed by a
// caller-chosen duel key such as "guild:channel".
package duels

//go:generate mockgen -destination=mock/mock_repository.go -package=mockduels -source=repository.go

import (
	"context"
	"errors"

	"github.com/Havocprime/Lowlife-New/internal/game/duel"
)

var (
	// ErrNotFound is returned when no active duel is stored under a key.
	ErrNotFound = errors.New("active duel not found")
	// ErrExists is returned by Create when the key already holds a duel.
	ErrExists = errors.New("active duel already exists")
)

// Repository defines storage for active duel records.
type Repository interface {
	// Create stores rec under key; fails with ErrExists if key is taken.
	Create(ctx context.Context, key string, rec *duel.Record) error

	// Get returns the record under key or ErrNotFound.
	Get(ctx context.Context, key string) (*duel.Record, error)

	// Update replaces the record under key; fails with ErrNotFound if absent.
	Update(ctx context.Context, key string, rec *duel.Record) error

	// Delete removes the record under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
