package combat

import (
	"errors"
	"fmt"
	"math"

	"github.com/Havocprime/Lowlife-New/internal/game/dice"
	"github.com/Havocprime/Lowlife-New/internal/game/weapon"
)

// ErrInvalidArgument signals caller misuse: a nil weapon, a band the weapon
// does not know, or draws outside [0, 1).
var ErrInvalidArgument = errors.New("invalid argument")

// Draws are the two uniform values in [0, 1) consumed by one resolution,
// always taken in this order: Hit first, Damage second.
type Draws struct {
	Hit    float64 `json:"hit"`
	Damage float64 `json:"damage"`
}

// Adjustment carries status effects into a resolution. The zero value
// changes nothing.
type Adjustment struct {
	// AccuracyBonus is added to weapon accuracy × band multiplier.
	AccuracyBonus float64
	// Cover is the fraction of accuracy removed by the target's cover, in [0, 1].
	Cover float64
	// DamageBonus is added to the band-scaled damage.
	DamageBonus int
	// Soak is subtracted from damage; it never reduces a hit below 1.
	Soak int
}

// Result is the outcome of one resolution.
type Result struct {
	Hit               bool    `json:"hit"`
	Damage            int     `json:"damage"`
	EffectiveAccuracy float64 `json:"effective_accuracy"`
	// Roll is the unscaled damage roll in [min, max]; 0 on a miss.
	Roll int `json:"roll"`
	// Soaked is the damage removed by armor.
	Soaked int `json:"soaked"`
}

// Resolve is ResolveWith using the zero Adjustment.
func Resolve(w *weapon.Profile, band string, d Draws) (Result, error) {
	return ResolveWith(w, band, d, Adjustment{})
}

// ResolveWith computes the hit and damage for w fired at band.
//
// Effective accuracy is clamp((accuracy × mult + AccuracyBonus) × (1 − Cover), 0, 1)
// and the attack hits iff d.Hit is below it. On a hit the damage is the
// roll picked from [min, max] by d.Damage, scaled by mult and rounded down,
// plus DamageBonus, floored at 0, then reduced by Soak down to no less than 1.
//
// Precondition: w is non-nil and names a multiplier for band; both draws in [0, 1).
// Postcondition: on a miss Damage == 0; otherwise Damage >= 0. Errors wrap
// ErrInvalidArgument.
func ResolveWith(w *weapon.Profile, band string, d Draws, adj Adjustment) (Result, error) {
	if w == nil {
		return Result{}, fmt.Errorf("%w: nil weapon", ErrInvalidArgument)
	}
	mult, ok := w.Multiplier(band)
	if !ok {
		return Result{}, fmt.Errorf("%w: weapon %q has no multiplier for band %q", ErrInvalidArgument, w.ID, band)
	}
	if err := d.Validate(); err != nil {
		return Result{}, err
	}
	if adj.Cover < 0 || adj.Cover > 1 {
		return Result{}, fmt.Errorf("%w: cover must be in [0, 1], got %v", ErrInvalidArgument, adj.Cover)
	}

	res := Result{EffectiveAccuracy: EffectiveAccuracy(w.Accuracy, mult, adj)}
	res.Hit = d.Hit < res.EffectiveAccuracy
	if !res.Hit {
		return res, nil
	}

	res.Roll = dice.Pick(d.Damage, w.Damage.Min, w.Damage.Max)
	dmg := Scale(res.Roll, mult) + adj.DamageBonus
	if dmg < 0 {
		dmg = 0
	}
	if adj.Soak > 0 && dmg > 1 {
		res.Soaked = min(adj.Soak, dmg-1)
		dmg -= res.Soaked
	}
	res.Damage = dmg
	return res, nil
}

// EffectiveAccuracy returns the clamped hit probability for a weapon of the
// given base accuracy at a band multiplier.
//
// Postcondition: Returns a value in [0, 1].
func EffectiveAccuracy(accuracy, mult float64, adj Adjustment) float64 {
	return Clamp((accuracy*mult+adj.AccuracyBonus)*(1-adj.Cover), 0, 1)
}

// Scale multiplies points by mult and rounds down. A small epsilon keeps
// products such as 3 × 0.7 from landing just under the whole number.
//
// Postcondition: Returns >= 0.
func Scale(points int, mult float64) int {
	v := int(math.Floor(float64(points)*mult + 1e-9))
	if v < 0 {
		return 0
	}
	return v
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Validate reports whether both draws lie in [0, 1).
//
// Postcondition: returns nil or an error wrapping ErrInvalidArgument.
func (d Draws) Validate() error {
	if !validDraw(d.Hit) || !validDraw(d.Damage) {
		return fmt.Errorf("%w: draws must be in [0, 1), got %v", ErrInvalidArgument, d)
	}
	return nil
}

func validDraw(v float64) bool {
	return v >= 0 && v < 1
}
