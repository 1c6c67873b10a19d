package status_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Havocprime/Lowlife-New/internal/game/status"
)

func cover() *status.Def {
	return &status.Def{ID: "cover", Name: "In Cover", Kind: status.KindCover, Magnitude: 0.4, Duration: 1}
}

func aim() *status.Def {
	return &status.Def{ID: "aim", Name: "Aiming", Kind: status.KindAccuracy, Magnitude: 0.15, Duration: 2}
}

func plating() *status.Def {
	return &status.Def{ID: "plating", Name: "Plating", Kind: status.KindArmor, Magnitude: 2, Duration: status.Permanent}
}

func TestDef_Validate(t *testing.T) {
	cases := []struct {
		name string
		def  status.Def
		ok   bool
	}{
		{"cover", *cover(), true},
		{"permanent armor", *plating(), true},
		{"empty id", status.Def{Kind: status.KindDamage, Duration: 1}, false},
		{"unknown kind", status.Def{ID: "x", Kind: "luck", Duration: 1}, false},
		{"zero duration", status.Def{ID: "x", Kind: status.KindDamage, Duration: 0}, false},
		{"cover above one", status.Def{ID: "x", Kind: status.KindCover, Magnitude: 1.5, Duration: 1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.def.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, status.ErrInvalidDef)
			}
		})
	}
}

func TestRegistry_RegisterGetAll(t *testing.T) {
	reg := status.NewRegistry()
	require.NoError(t, reg.Register(cover()))
	require.NoError(t, reg.Register(aim()))
	assert.Error(t, reg.Register(&status.Def{ID: "bad"}))

	got, ok := reg.Get("cover")
	require.True(t, ok)
	assert.Equal(t, 0.4, got.Magnitude)
	_, ok = reg.Get("bad")
	assert.False(t, ok)

	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "aim", all[0].ID)
}

func TestDefaultRegistry_HasActionStatuses(t *testing.T) {
	reg := status.DefaultRegistry()
	for _, id := range []string{status.CoverID, status.AimID} {
		_, ok := reg.Get(id)
		assert.True(t, ok, id)
	}
}

func TestLoad_ParsesYAML(t *testing.T) {
	doc := `statuses:
  - id: cover
    name: In Cover
    kind: cover
    magnitude: 0.5
    duration: 1
  - id: stim
    name: Stim
    kind: damage
    magnitude: 2
    duration: 3
`
	reg, err := status.Load(strings.NewReader(doc))
	require.NoError(t, err)
	stim, ok := reg.Get("stim")
	require.True(t, ok)
	assert.Equal(t, status.KindDamage, stim.Kind)
	assert.Equal(t, 3, stim.Duration)
}

func TestLoad_RejectsUnknownFieldsAndBadDefs(t *testing.T) {
	_, err := status.Load(strings.NewReader("statuses:\n  - id: x\n    kind: damage\n    duration: 1\n    stacks: 2\n"))
	assert.ErrorIs(t, err, status.ErrInvalidDef)

	_, err = status.Load(strings.NewReader("statuses:\n  - id: x\n    kind: damage\n    duration: 0\n"))
	assert.ErrorIs(t, err, status.ErrInvalidDef)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statuses.yaml")
	require.NoError(t, os.WriteFile(path, []byte("statuses:\n  - id: aim\n    kind: accuracy\n    magnitude: 0.2\n    duration: 2\n"), 0644))
	reg, err := status.LoadFile(path)
	require.NoError(t, err)
	_, ok := reg.Get("aim")
	assert.True(t, ok)
}

func TestSet_ApplyAndTick(t *testing.T) {
	var s status.Set
	s.Apply(cover())
	s.Apply(aim())
	assert.Equal(t, 2, s.Len())

	expired := s.Tick()
	assert.Equal(t, []string{"cover"}, expired)
	assert.False(t, s.Has("cover"))
	assert.True(t, s.Has("aim"))

	expired = s.Tick()
	assert.Equal(t, []string{"aim"}, expired)
	assert.Equal(t, 0, s.Len())
}

func TestSet_Tick_PermanentNotExpired(t *testing.T) {
	var s status.Set
	s.Apply(plating())
	for i := 0; i < 5; i++ {
		assert.Empty(t, s.Tick())
	}
	assert.True(t, s.Has("plating"))
}

func TestSet_Apply_RefreshesInPlace(t *testing.T) {
	var s status.Set
	s.Apply(aim())
	s.Apply(cover())
	s.Tick() // aim 1, cover expired
	s.Apply(cover())
	s.Apply(aim())

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "aim", all[0].ID, "refresh must keep application order")
	assert.Equal(t, 2, all[0].Remaining)
	assert.Equal(t, "cover", all[1].ID)
}

func TestSet_Remove(t *testing.T) {
	s := status.NewSet(status.Modifier{ID: "a", Kind: status.KindDamage, Remaining: 2})
	s.Remove("missing")
	s.Remove("a")
	assert.False(t, s.Has("a"))
}

func TestSet_CloneIsIndependent(t *testing.T) {
	var s status.Set
	s.Apply(aim())
	c := s.Clone()
	c.Tick()
	c.Tick()
	assert.True(t, s.Has("aim"))
	assert.False(t, c.Has("aim"))
}

func TestAggregates(t *testing.T) {
	s := status.NewSet(
		status.Modifier{ID: "aim", Kind: status.KindAccuracy, Magnitude: 0.15, Remaining: 1},
		status.Modifier{ID: "stim", Kind: status.KindDamage, Magnitude: 2.5, Remaining: 1},
		status.Modifier{ID: "plating", Kind: status.KindArmor, Magnitude: 2, Remaining: -1},
		status.Modifier{ID: "cover", Kind: status.KindCover, Magnitude: 0.4, Remaining: 1},
		status.Modifier{ID: "smoke", Kind: status.KindCover, Magnitude: 0.5, Remaining: 1},
	)
	assert.InDelta(t, 0.15, status.AccuracyBonus(s), 1e-9)
	assert.Equal(t, 2, status.DamageBonus(s))
	assert.Equal(t, 2, status.ArmorSoak(s))
	assert.InDelta(t, 0.3, status.CoverFactor(s), 1e-9)

	var empty status.Set
	assert.Equal(t, 1.0, status.CoverFactor(empty))
	assert.Equal(t, 0, status.ArmorSoak(empty))
}

// TestPropertySet_TickNeverBelowMinusOne verifies timed modifiers disappear
// instead of going negative, and permanent ones survive any number of ticks.
func TestPropertySet_TickNeverBelowMinusOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		duration := rapid.IntRange(1, 10).Draw(rt, "duration")
		ticks := rapid.IntRange(0, 20).Draw(rt, "ticks")
		var s status.Set
		s.Apply(&status.Def{ID: "timed", Kind: status.KindDamage, Magnitude: 1, Duration: duration})
		s.Apply(plating())
		for i := 0; i < ticks; i++ {
			s.Tick()
		}
		for _, m := range s.All() {
			if m.Remaining < -1 || m.Remaining == 0 {
				rt.Fatalf("modifier %q has Remaining %d", m.ID, m.Remaining)
			}
		}
		if s.Has("timed") != (ticks < duration) {
			rt.Fatalf("timed present=%v after %d ticks of %d", s.Has("timed"), ticks, duration)
		}
		if !s.Has("plating") {
			rt.Fatal("permanent modifier expired")
		}
	})
}

func TestPropertyCoverFactor_InUnitInterval(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 5).Draw(rt, "n")
		var mods []status.Modifier
		for i := 0; i < n; i++ {
			mods = append(mods, status.Modifier{
				ID:        "c",
				Kind:      status.KindCover,
				Magnitude: rapid.Float64Range(-1, 2).Draw(rt, "mag"),
				Remaining: 1,
			})
		}
		f := status.CoverFactor(status.NewSet(mods...))
		if f < 0 || f > 1 {
			rt.Fatalf("CoverFactor = %v", f)
		}
	})
}
