package duel_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Havocprime/Lowlife-New/internal/game/combat"
	"github.com/Havocprime/Lowlife-New/internal/game/dice"
	"github.com/Havocprime/Lowlife-New/internal/game/duel"
	"github.com/Havocprime/Lowlife-New/internal/game/weapon"
)

var bands = []string{"short", "medium", "long"}

func newCatalog(t *testing.T) *weapon.Catalog {
	t.Helper()
	cat, err := weapon.NewCatalog(bands, []*weapon.Profile{
		{
			ID: "knife", Name: "Knife", Kind: weapon.KindMelee,
			Damage: weapon.DamageRange{Min: 1, Max: 3}, Accuracy: 0.9,
			Bands: map[string]float64{"short": 1.0, "medium": 0.5, "long": 0.2},
		},
		{
			ID: "pistol", Name: "Pistol", Kind: weapon.KindFirearm,
			Damage: weapon.DamageRange{Min: 3, Max: 6}, Accuracy: 0.7,
			Bands: map[string]float64{"short": 0.8, "medium": 1.0, "long": 0.5},
		},
		{
			ID: "rifle", Name: "Rifle", Kind: weapon.KindFirearm,
			Damage: weapon.DamageRange{Min: 6, Max: 10}, Accuracy: 0.8,
			Bands: map[string]float64{"short": 0.7, "medium": 0.9, "long": 1.5},
		},
		{
			ID: "frag", Name: "Frag Grenade", Kind: weapon.KindThrown,
			Damage: weapon.DamageRange{Min: 30, Max: 40}, Accuracy: 0.8,
			Bands: map[string]float64{"short": 0.6, "medium": 1.0, "long": 0.5},
		},
	})
	require.NoError(t, err)
	return cat
}

func fighter(t *testing.T, cat *weapon.Catalog, l combat.Loadout) *combat.Combatant {
	t.Helper()
	c, err := l.Build(cat)
	require.NoError(t, err)
	return c
}

// knifePair returns two knife fighters with the given health.
func knifePair(t *testing.T, cat *weapon.Catalog, ha, hb int) (*combat.Combatant, *combat.Combatant) {
	t.Helper()
	return fighter(t, cat, combat.Loadout{ID: "a", Name: "Ace", Health: ha, Weapon: "knife"}),
		fighter(t, cat, combat.Loadout{ID: "b", Name: "Bo", Health: hb, Weapon: "knife"})
}

func newSession(t *testing.T, a, b *combat.Combatant, opts duel.Options) *duel.Session {
	t.Helper()
	if opts.Bands == nil {
		opts.Bands = bands
	}
	s, err := duel.New(a, b, 42, opts)
	require.NoError(t, err)
	return s
}

func scripted(draws ...float64) dice.Source {
	return dice.NewScripted(draws...)
}

func submit(t *testing.T, s *duel.Session, actor int, a duel.Action) duel.TurnResult {
	t.Helper()
	res, err := s.Submit(actor, a)
	require.NoError(t, err)
	return res
}
