// Package status defines the timed modifiers a combatant can carry during a
// duel: cover, aim and similar effects that adjust the combat math.
package status

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDef is returned when a status definition violates its invariants.
var ErrInvalidDef = errors.New("invalid status definition")

// Kind selects which part of the combat math a modifier adjusts.
type Kind string

const (
	// KindAccuracy adds Magnitude to the owner's outgoing accuracy.
	KindAccuracy Kind = "accuracy"
	// KindDamage adds Magnitude to the owner's outgoing damage on a hit.
	KindDamage Kind = "damage"
	// KindCover scales accuracy of attacks against the owner by (1 - Magnitude).
	KindCover Kind = "cover"
	// KindArmor subtracts Magnitude from damage the owner takes.
	KindArmor Kind = "armor"
)

// Permanent is the Duration of a modifier that never expires.
const Permanent = -1

// Well-known definition IDs used by the duel actions.
const (
	CoverID = "cover"
	AimID   = "aim"
)

// Def is the static definition of a status modifier, loaded from YAML.
type Def struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Kind        Kind    `yaml:"kind"`
	Magnitude   float64 `yaml:"magnitude"`
	Duration    int     `yaml:"duration"` // owner turns; -1 = permanent
}

// Validate checks the definition's invariants.
//
// Postcondition: returns nil iff the definition is usable; otherwise an error
// wrapping ErrInvalidDef.
func (d *Def) Validate() error {
	var errs []string
	if d.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	switch d.Kind {
	case KindAccuracy, KindDamage, KindArmor:
	case KindCover:
		if d.Magnitude < 0 || d.Magnitude > 1 {
			errs = append(errs, fmt.Sprintf("cover magnitude must be in [0, 1], got %v", d.Magnitude))
		}
	default:
		errs = append(errs, fmt.Sprintf("kind must be one of [accuracy, damage, cover, armor], got %q", d.Kind))
	}
	if d.Duration == 0 || d.Duration < Permanent {
		errs = append(errs, fmt.Sprintf("duration must be positive or -1, got %d", d.Duration))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: status %q: %s", ErrInvalidDef, d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Registry holds all known Defs keyed by ID.
// It is read-only once loaded and safe for concurrent lookups.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register validates def and adds it, overwriting any entry with the same ID.
//
// Precondition: def must not be nil.
func (r *Registry) Register(def *Def) error {
	if err := def.Validate(); err != nil {
		return err
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns every registered Def sorted by ID.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DefaultRegistry returns the built-in cover and aim definitions.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(&Def{ID: CoverID, Name: "In Cover", Kind: KindCover, Magnitude: 0.4, Duration: 1})
	_ = r.Register(&Def{ID: AimID, Name: "Aiming", Kind: KindAccuracy, Magnitude: 0.15, Duration: 2})
	return r
}

// Load parses a YAML document of the form `statuses: [...]` from r.
//
// Postcondition: returns a Registry holding every definition, or an error
// wrapping ErrInvalidDef naming each bad entry.
func Load(r io.Reader) (*Registry, error) {
	var doc struct {
		Statuses []*Def `yaml:"statuses"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parsing statuses: %v", ErrInvalidDef, err)
	}
	reg := NewRegistry()
	var errs []string
	for _, d := range doc.Statuses {
		if err := reg.Register(d); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDef, strings.Join(errs, " | "))
	}
	return reg, nil
}

// LoadFile reads a status document from path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	reg, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	return reg, nil
}
