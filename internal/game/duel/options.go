package duel

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Havocprime/Lowlife-New/internal/game/dice"
	"github.com/Havocprime/Lowlife-New/internal/game/status"
)

// TurnLimitPolicy decides the outcome when MaxTurns is reached.
type TurnLimitPolicy string

const (
	// TurnLimitDraw ends the duel as a draw.
	TurnLimitDraw TurnLimitPolicy = "draw"
	// TurnLimitHealthLead awards the win to the healthier combatant; equal
	// health is a draw.
	TurnLimitHealthLead TurnLimitPolicy = "health_lead"
)

// Options configures a Session.
type Options struct {
	// Bands is the ordered band list, closest first. Required.
	Bands []string
	// StartingBand defaults to the middle of Bands.
	StartingBand string
	// MaxTurns caps the number of resolved actions; 0 means unbounded.
	MaxTurns int
	// TurnLimit applies when MaxTurns is reached. Defaults to TurnLimitDraw.
	TurnLimit TurnLimitPolicy
	// Statuses supplies the cover and aim definitions. Defaults to
	// status.DefaultRegistry().
	Statuses *status.Registry
	// Source overrides the seeded source. Draws from it are kept in the
	// Record so the duel can still be replayed.
	Source dice.Source
	Logger *zap.Logger
}

// Settings is the serialisable part of Options.
type Settings struct {
	Bands        []string        `json:"bands"`
	StartingBand string          `json:"starting_band"`
	MaxTurns     int             `json:"max_turns"`
	TurnLimit    TurnLimitPolicy `json:"turn_limit"`
}

// normalize fills defaults and validates o.
//
// Postcondition: returns the resolved Settings or an error wrapping
// ErrInvalidArgument.
func (o Options) normalize() (Settings, error) {
	if len(o.Bands) == 0 {
		return Settings{}, fmt.Errorf("%w: at least one range band is required", ErrInvalidArgument)
	}
	s := Settings{
		Bands:        append([]string(nil), o.Bands...),
		StartingBand: o.StartingBand,
		MaxTurns:     o.MaxTurns,
		TurnLimit:    o.TurnLimit,
	}
	if s.StartingBand == "" {
		s.StartingBand = s.Bands[len(s.Bands)/2]
	}
	if indexOf(s.Bands, s.StartingBand) < 0 {
		return Settings{}, fmt.Errorf("%w: starting band %q is not one of %v", ErrInvalidArgument, s.StartingBand, s.Bands)
	}
	if s.MaxTurns < 0 {
		return Settings{}, fmt.Errorf("%w: max turns must be >= 0, got %d", ErrInvalidArgument, s.MaxTurns)
	}
	switch s.TurnLimit {
	case "":
		s.TurnLimit = TurnLimitDraw
	case TurnLimitDraw, TurnLimitHealthLead:
	default:
		return Settings{}, fmt.Errorf("%w: unknown turn limit policy %q", ErrInvalidArgument, s.TurnLimit)
	}
	return s, nil
}

func indexOf(bands []string, band string) int {
	for i, b := range bands {
		if b == band {
			return i
		}
	}
	return -1
}
