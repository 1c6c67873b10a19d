package dice

import "go.uber.org/zap"

// LoggedSource wraps a Source and logs every draw at debug level with its
// position in the stream.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
	n      int
}

// NewLoggedSource creates a Source that draws from src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Float64 draws from the wrapped source and logs the value.
func (l *LoggedSource) Float64() float64 {
	v := l.src.Float64()
	l.logger.Debug("dice draw",
		zap.Int("index", l.n),
		zap.Float64("value", v),
	)
	l.n++
	return v
}

// Draws returns how many values have been drawn through l.
func (l *LoggedSource) Draws() int {
	return l.n
}
