package duel

import "fmt"

// OutcomeKind is the terminal state of a duel.
type OutcomeKind int

const (
	OutcomeUnresolved OutcomeKind = iota
	OutcomeWinner
	OutcomeDraw
	OutcomeAborted
)

var outcomeNames = [...]string{
	OutcomeUnresolved: "unresolved",
	OutcomeWinner:     "winner",
	OutcomeDraw:       "draw",
	OutcomeAborted:    "aborted",
}

func (k OutcomeKind) String() string {
	if k < 0 || int(k) >= len(outcomeNames) {
		return fmt.Sprintf("outcome(%d)", int(k))
	}
	return outcomeNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(outcomeNames) {
		return nil, fmt.Errorf("%w: unknown outcome %d", ErrInvalidArgument, int(k))
	}
	return []byte(outcomeNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *OutcomeKind) UnmarshalText(b []byte) error {
	for i, name := range outcomeNames {
		if name == string(b) {
			*k = OutcomeKind(i)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown outcome %q", ErrInvalidArgument, string(b))
}

// Outcome is the result of a duel. Winner is set only for OutcomeWinner.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Winner string      `json:"winner,omitempty"`
	Reason string      `json:"reason,omitempty"`
}

// Resolved reports whether the duel has ended.
func (o Outcome) Resolved() bool { return o.Kind != OutcomeUnresolved }

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeWinner:
		return fmt.Sprintf("winner(%s)", o.Winner)
	case OutcomeAborted:
		if o.Reason != "" {
			return fmt.Sprintf("aborted(%s)", o.Reason)
		}
	}
	return o.Kind.String()
}
