// Package weapon provides the weapon profile catalog used by the duel engine.
// Profiles are loaded once from YAML and are read-only afterwards.
package weapon

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidProfile is returned when weapon data violates a catalog invariant.
// It is fatal at load time.
var ErrInvalidProfile = errors.New("invalid weapon profile")

// ErrNotFound is returned when a weapon id is not in the catalog.
var ErrNotFound = errors.New("weapon not found")

// Kind classifies how a weapon is used.
type Kind string

const (
	// KindFirearm is a gun of any size.
	KindFirearm Kind = "firearm"
	// KindMelee is a hand weapon, including fists.
	KindMelee Kind = "melee"
	// KindThrown is a single-use thrown weapon such as a grenade.
	KindThrown Kind = "thrown"
)

// DamageRange is the inclusive damage interval of a weapon before band scaling.
type DamageRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Profile defines the static properties of a weapon loaded from YAML.
//
// A Profile handed out by a Catalog is shared by every duel; callers must not
// modify it.
type Profile struct {
	ID       string             `yaml:"id"`
	Name     string             `yaml:"name"`
	Kind     Kind               `yaml:"kind"`
	Damage   DamageRange        `yaml:"damage"`
	Accuracy float64            `yaml:"accuracy"`
	Bands    map[string]float64 `yaml:"bands"`
	Traits   []string           `yaml:"traits"`
}

// Multiplier returns the damage/accuracy multiplier for band.
//
// Postcondition: ok is false iff the profile names no multiplier for band.
func (p *Profile) Multiplier(band string) (float64, bool) {
	m, ok := p.Bands[band]
	return m, ok
}

// EffectiveBand returns the band whose multiplier is at least 1.
// On a validated profile exactly one such band exists.
func (p *Profile) EffectiveBand() string {
	names := make([]string, 0, len(p.Bands))
	for name := range p.Bands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if p.Bands[name] >= 1 {
			return name
		}
	}
	return ""
}

// IsThrown reports whether the profile is a thrown weapon.
func (p *Profile) IsThrown() bool {
	return p.Kind == KindThrown
}

// Validate checks that the profile satisfies its invariants against the
// catalog's band list.
//
// Precondition: p is non-nil.
// Postcondition: returns nil iff all fields are valid; otherwise an error
// wrapping ErrInvalidProfile that lists every violation.
func (p *Profile) Validate(bands []string) error {
	var errs []string
	if p.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if p.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	switch p.Kind {
	case KindFirearm, KindMelee, KindThrown:
	default:
		errs = append(errs, fmt.Sprintf("kind must be one of [firearm, melee, thrown], got %q", p.Kind))
	}
	if p.Damage.Min < 0 {
		errs = append(errs, fmt.Sprintf("damage.min must be >= 0, got %d", p.Damage.Min))
	}
	if p.Damage.Min > p.Damage.Max {
		errs = append(errs, fmt.Sprintf("damage.min %d exceeds damage.max %d", p.Damage.Min, p.Damage.Max))
	}
	if p.Accuracy < 0 || p.Accuracy > 1 {
		errs = append(errs, fmt.Sprintf("accuracy must be in [0, 1], got %v", p.Accuracy))
	}

	known := make(map[string]bool, len(bands))
	effective := 0
	for _, b := range bands {
		known[b] = true
		m, ok := p.Bands[b]
		if !ok {
			errs = append(errs, fmt.Sprintf("missing multiplier for band %q", b))
			continue
		}
		if m < 0 {
			errs = append(errs, fmt.Sprintf("band %q multiplier must be >= 0, got %v", b, m))
		}
		if m >= 1 {
			effective++
		}
	}
	for b := range p.Bands {
		if !known[b] {
			errs = append(errs, fmt.Sprintf("unknown band %q", b))
		}
	}
	if effective != 1 {
		errs = append(errs, fmt.Sprintf("exactly one band must have multiplier >= 1, got %d", effective))
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("%w: weapon %q: %s", ErrInvalidProfile, p.ID, strings.Join(errs, "; "))
	}
	return nil
}
