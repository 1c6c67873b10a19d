package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Havocprime/Lowlife-New/internal/game/combat"
	"github.com/Havocprime/Lowlife-New/internal/game/status"
	"github.com/Havocprime/Lowlife-New/internal/game/weapon"
)

var bands = []string{"short", "medium", "long"}

func knife() *weapon.Profile {
	return &weapon.Profile{
		ID: "knife", Name: "Knife", Kind: weapon.KindMelee,
		Damage: weapon.DamageRange{Min: 1, Max: 3}, Accuracy: 0.9,
		Bands: map[string]float64{"short": 1.0, "medium": 0.5, "long": 0.2},
	}
}

func rifle() *weapon.Profile {
	return &weapon.Profile{
		ID: "rifle", Name: "Rifle", Kind: weapon.KindFirearm,
		Damage: weapon.DamageRange{Min: 6, Max: 10}, Accuracy: 0.8,
		Bands: map[string]float64{"short": 0.7, "medium": 0.9, "long": 1.5},
	}
}

func catalog(t *testing.T) *weapon.Catalog {
	t.Helper()
	cat, err := weapon.NewCatalog(bands, []*weapon.Profile{knife(), rifle()})
	require.NoError(t, err)
	return cat
}

func TestResolve_KnifeShortRange(t *testing.T) {
	res, err := combat.Resolve(knife(), "short", combat.Draws{Hit: 0.1, Damage: 0.5})
	require.NoError(t, err)
	assert.True(t, res.Hit)
	assert.Equal(t, 2, res.Roll)
	assert.Equal(t, 2, res.Damage)
	assert.InDelta(t, 0.9, res.EffectiveAccuracy, 1e-9)
}

func TestResolve_KnifeLongRangeMisses(t *testing.T) {
	// 0.9 × 0.2 = 0.18
	res, err := combat.Resolve(knife(), "long", combat.Draws{Hit: 0.2, Damage: 0.99})
	require.NoError(t, err)
	assert.False(t, res.Hit)
	assert.Equal(t, 0, res.Damage)
	assert.Equal(t, 0, res.Roll)
}

func TestResolve_ScalesAndFloors(t *testing.T) {
	// knife at medium: roll 3 × 0.5 = 1.5 → 1
	res, err := combat.Resolve(knife(), "medium", combat.Draws{Hit: 0.0, Damage: 0.99})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Roll)
	assert.Equal(t, 1, res.Damage)
}

func TestResolve_AccuracyClamped(t *testing.T) {
	// rifle at long: 0.8 × 1.5 = 1.2 → 1
	res, err := combat.Resolve(rifle(), "long", combat.Draws{Hit: 0.999, Damage: 0})
	require.NoError(t, err)
	assert.True(t, res.Hit)
	assert.Equal(t, 1.0, res.EffectiveAccuracy)
	assert.Equal(t, 9, res.Damage) // 6 × 1.5
}

func TestResolve_InvalidArguments(t *testing.T) {
	cases := []struct {
		name string
		w    *weapon.Profile
		band string
		d    combat.Draws
	}{
		{"nil weapon", nil, "short", combat.Draws{}},
		{"unknown band", knife(), "orbit", combat.Draws{}},
		{"hit draw is one", knife(), "short", combat.Draws{Hit: 1}},
		{"negative damage draw", knife(), "short", combat.Draws{Damage: -0.1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := combat.Resolve(tc.w, tc.band, tc.d)
			assert.ErrorIs(t, err, combat.ErrInvalidArgument)
		})
	}
	_, err := combat.ResolveWith(knife(), "short", combat.Draws{}, combat.Adjustment{Cover: 1.5})
	assert.ErrorIs(t, err, combat.ErrInvalidArgument)
}

func TestResolveWith_CoverTurnsHitIntoMiss(t *testing.T) {
	d := combat.Draws{Hit: 0.6, Damage: 0.5}
	res, err := combat.Resolve(knife(), "short", d)
	require.NoError(t, err)
	require.True(t, res.Hit)

	// 0.9 × (1 − 0.4) = 0.54
	res, err = combat.ResolveWith(knife(), "short", d, combat.Adjustment{Cover: 0.4})
	require.NoError(t, err)
	assert.False(t, res.Hit)
	assert.InDelta(t, 0.54, res.EffectiveAccuracy, 1e-9)
}

func TestResolveWith_AimAndDamageBonus(t *testing.T) {
	// knife at long: 0.18 + 0.15 = 0.33
	res, err := combat.ResolveWith(knife(), "long", combat.Draws{Hit: 0.3, Damage: 0.99},
		combat.Adjustment{AccuracyBonus: 0.15, DamageBonus: 2})
	require.NoError(t, err)
	assert.True(t, res.Hit)
	assert.Equal(t, 2, res.Damage) // floor(3 × 0.2) + 2
}

func TestResolveWith_SoakNeverBelowOne(t *testing.T) {
	res, err := combat.ResolveWith(rifle(), "short", combat.Draws{Hit: 0, Damage: 0.99},
		combat.Adjustment{Soak: 100})
	require.NoError(t, err)
	assert.True(t, res.Hit)
	assert.Equal(t, 1, res.Damage)
	assert.Equal(t, 6, res.Soaked) // floor(10 × 0.7) = 7, soak to 1
}

func TestScale(t *testing.T) {
	assert.Equal(t, 2, combat.Scale(3, 0.7))
	assert.Equal(t, 7, combat.Scale(10, 0.7))
	assert.Equal(t, 0, combat.Scale(1, 0.2))
	assert.Equal(t, 0, combat.Scale(-3, 1))
}

// TestPropertyResolve_DamageWithinScaledBounds verifies a hit deals damage in
// [floor(min × mult), floor(max × mult)] and a miss deals exactly 0.
func TestPropertyResolve_DamageWithinScaledBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(0, 30).Draw(rt, "min")
		hi := rapid.IntRange(lo, lo+30).Draw(rt, "max")
		mult := rapid.Float64Range(0, 2).Draw(rt, "mult")
		w := &weapon.Profile{
			ID: "w", Accuracy: rapid.Float64Range(0, 1).Draw(rt, "accuracy"),
			Damage: weapon.DamageRange{Min: lo, Max: hi},
			Bands:  map[string]float64{"b": mult},
		}
		d := combat.Draws{
			Hit:    rapid.Float64Range(0, 0.999999).Draw(rt, "hit"),
			Damage: rapid.Float64Range(0, 0.999999).Draw(rt, "damage"),
		}
		res, err := combat.Resolve(w, "b", d)
		if err != nil {
			rt.Fatalf("Resolve: %v", err)
		}
		if res.EffectiveAccuracy < 0 || res.EffectiveAccuracy > 1 {
			rt.Fatalf("effective accuracy %v outside [0, 1]", res.EffectiveAccuracy)
		}
		if !res.Hit {
			if res.Damage != 0 {
				rt.Fatalf("miss dealt %d", res.Damage)
			}
			return
		}
		if res.Damage < combat.Scale(lo, mult) || res.Damage > combat.Scale(hi, mult) {
			rt.Fatalf("damage %d outside [%d, %d]", res.Damage, combat.Scale(lo, mult), combat.Scale(hi, mult))
		}
	})
}

func TestPropertyEffectiveAccuracy_Clamped(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		acc := rapid.Float64Range(0, 1).Draw(rt, "accuracy")
		mult := rapid.Float64Range(0, 5).Draw(rt, "mult")
		bonus := rapid.Float64Range(-1, 1).Draw(rt, "bonus")
		cover := rapid.Float64Range(0, 1).Draw(rt, "cover")
		v := combat.EffectiveAccuracy(acc, mult, combat.Adjustment{AccuracyBonus: bonus, Cover: cover})
		if v < 0 || v > 1 {
			rt.Fatalf("EffectiveAccuracy = %v", v)
		}
	})
}

func TestCombatant_ApplyDamage_FloorsAtZero(t *testing.T) {
	c := &combat.Combatant{ID: "a", Health: 5}
	c.ApplyDamage(3)
	assert.Equal(t, 2, c.Health)
	c.ApplyDamage(10)
	assert.Equal(t, 0, c.Health)
	assert.True(t, c.IsDown())
}

func TestCombatant_Detonate(t *testing.T) {
	c := &combat.Combatant{ID: "a", Health: 10, Pending: 4, PendingFrom: "b"}
	assert.Equal(t, 4, c.Detonate())
	assert.Equal(t, 6, c.Health)
	assert.Equal(t, 0, c.Pending)
	assert.Empty(t, c.PendingFrom)
	assert.Equal(t, 0, c.Detonate())
}

func TestCombatant_CloneIsIndependent(t *testing.T) {
	c := &combat.Combatant{ID: "a", Health: 10}
	c.Modifiers.Apply(status.DefaultRegistry().All()[0])
	cp := c.Clone()
	cp.ApplyDamage(4)
	cp.Modifiers.Tick()
	cp.Modifiers.Tick()
	assert.Equal(t, 10, c.Health)
	assert.Equal(t, 1, c.Modifiers.Len())
	assert.Equal(t, 0, cp.Modifiers.Len())
}

func TestLoadout_BuildAndCapture(t *testing.T) {
	cat := catalog(t)
	l := combat.Loadout{ID: "a", Name: "Ace", Health: 12, Weapon: "rifle", Throwable: "knife", Charges: 2}
	c, err := l.Build(cat)
	require.NoError(t, err)
	assert.Equal(t, 12, c.MaxHealth)
	assert.Equal(t, "rifle", c.Weapon.ID)
	assert.True(t, c.CanThrow())

	got := combat.LoadoutOf(c)
	l.MaxHealth = 12
	assert.Equal(t, l, got)
}

func TestLoadout_CarriesPendingDamage(t *testing.T) {
	cat := catalog(t)
	l := combat.Loadout{ID: "b", Health: 20, Weapon: "rifle", Pending: 7, PendingFrom: "a"}
	c, err := l.Build(cat)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Pending)
	assert.Equal(t, "a", c.PendingFrom)

	got := combat.LoadoutOf(c)
	assert.Equal(t, 7, got.Pending)
	assert.Equal(t, "a", got.PendingFrom)
}

func TestLoadout_BuildErrors(t *testing.T) {
	cat := catalog(t)
	_, err := combat.Loadout{ID: "a", Health: 5, Weapon: "spoon"}.Build(cat)
	assert.ErrorIs(t, err, weapon.ErrNotFound)

	_, err = combat.Loadout{ID: "a", Health: 5, Weapon: "knife", Throwable: "spoon"}.Build(cat)
	assert.ErrorIs(t, err, weapon.ErrNotFound)

	_, err = combat.Loadout{Health: 5, Weapon: "knife"}.Build(cat)
	assert.ErrorIs(t, err, combat.ErrInvalidArgument)

	_, err = combat.Loadout{ID: "a", Health: -1, Weapon: "knife"}.Build(cat)
	assert.ErrorIs(t, err, combat.ErrInvalidArgument)
}
