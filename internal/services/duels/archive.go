package duels

//go:generate mockgen -destination=mock/mock_archive.go -package=mockduelsvc -source=archive.go

import (
	"context"

	"github.com/Havocprime/Lowlife-New/internal/game/duel"
)

// Archive keeps completed duels.
type Archive interface {
	// Save stores a resolved snapshot taken under key. Saving the same duel
	// ID twice must not create a second copy.
	Save(ctx context.Context, key string, snap duel.Snapshot) error
}
