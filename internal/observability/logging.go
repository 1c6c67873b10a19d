// Package observability builds the duel runtime's zap loggers and the
// field set every duel log line shares, so one duel's lines can be pulled
// out of a busy stream by duel_key or duel_id.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Havocprime/Lowlife-New/internal/config"
)

// Field names shared by every component that logs about a duel.
const (
	FieldDuelKey = "duel_key"
	FieldDuelID  = "duel_id"
	FieldOutcome = "outcome"
	FieldTurn    = "turn"
)

// NewLogger creates a structured logger from the given logging configuration.
// Every entry carries an "app" field naming the binary. At debug level
// sampling is off, so every turn and draw of a duel is kept.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(app string, cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if level == zapcore.DebugLevel {
		zapCfg.Sampling = nil
	}
	if len(cfg.Output) > 0 {
		zapCfg.OutputPaths = cfg.Output
	}
	if app != "" {
		zapCfg.InitialFields = map[string]any{"app": app}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// DuelKey tags a line with the caller's duel key, e.g. guild:channel.
func DuelKey(key string) zap.Field { return zap.String(FieldDuelKey, key) }

// DuelID tags a line with a duel session's id.
func DuelID(id string) zap.Field { return zap.String(FieldDuelID, id) }

// Outcome tags a line with a duel outcome.
func Outcome(o fmt.Stringer) zap.Field { return zap.Stringer(FieldOutcome, o) }

// Turn tags a line with a turn number.
func Turn(n int) zap.Field { return zap.Int(FieldTurn, n) }

// ForDuel returns logger scoped to one duel. An empty key or id is left out.
func ForDuel(logger *zap.Logger, key, id string) *zap.Logger {
	fields := make([]zap.Field, 0, 2)
	if key != "" {
		fields = append(fields, DuelKey(key))
	}
	if id != "" {
		fields = append(fields, DuelID(id))
	}
	return logger.With(fields...)
}
