package ripple

import (
	"strings"
	"testing"

	"github.com/talgya/crowdwave/internal/spectator"
	"github.com/talgya/crowdwave/internal/stadium"
	"github.com/talgya/crowdwave/internal/tuning"
)

func rippleCfg() *tuning.Ripple {
	return &tuning.Ripple{
		BaseEffect:         40,
		MaxRadius:          4,
		DisinterestedBonus: 5,
		DecayType:          DecayLinear,
	}
}

func engCfg() *tuning.Engagement {
	cfg := tuning.Default().Engagement
	return &cfg
}

func seat(id uint64, row, col int, happiness, attention float64) *spectator.Spectator {
	return &spectator.Spectator{
		ID:    spectator.ID(id),
		Row:   row,
		Col:   col,
		Stats: spectator.EngagementState{Happiness: happiness, Thirst: 50, Attention: attention},
	}
}

// rowSection seats spectators on one row at increasing columns, so
// Manhattan distance to the origin equals the column offset.
func rowSection() (*stadium.Section, *spectator.Spectator) {
	sec := stadium.NewSection("A", 0, 1, 8)
	origin := seat(1, 0, 0, 80, 80)
	sec.Place(origin)
	for col := 1; col < 6; col++ {
		sec.Place(seat(uint64(col+1), 0, col, 80, 80))
	}
	return sec, origin
}

func TestCompute_LinearDistanceDecay(t *testing.T) {
	sec, origin := rowSection()

	eff, err := Compute(sec, origin, rippleCfg(), engCfg())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	want := map[int]float64{0: 40, 1: 30, 2: 20, 3: 10}
	for col, boost := range want {
		sp := sec.SpectatorAt(0, col)
		got, ok := eff.Boosts[sp.ID]
		if !ok {
			t.Fatalf("distance %d missing from boosts", col)
		}
		if got != boost {
			t.Fatalf("distance %d boost=%v want %v", col, got, boost)
		}
	}

	// At and beyond the radius: absent, not zero-valued.
	for col := 4; col < 6; col++ {
		sp := sec.SpectatorAt(0, col)
		if _, ok := eff.Boosts[sp.ID]; ok {
			t.Fatalf("distance %d should be absent from boosts", col)
		}
	}
}

func TestCompute_DisinterestedBonusIsAdditive(t *testing.T) {
	sec, origin := rowSection()

	// Make the distance-2 spectator disinterested.
	sp := sec.SpectatorAt(0, 2)
	sp.Stats.Happiness = 10
	sp.Stats.Attention = 10

	eff, err := Compute(sec, origin, rippleCfg(), engCfg())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if got := eff.Boosts[sp.ID]; got != 25 {
		t.Fatalf("disinterested boost=%v want 20+5", got)
	}
}

func TestCompute_ZeroRadius(t *testing.T) {
	sec, origin := rowSection()

	cfg := rippleCfg()
	cfg.MaxRadius = 0
	eff, err := Compute(sec, origin, cfg, engCfg())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(eff.Boosts) != 0 {
		t.Fatalf("zero radius should boost nobody, got %d entries", len(eff.Boosts))
	}
}

func TestCompute_ExponentialFailsLoudly(t *testing.T) {
	sec, origin := rowSection()

	cfg := rippleCfg()
	cfg.DecayType = DecayExponential
	_, err := Compute(sec, origin, cfg, engCfg())
	if err == nil {
		t.Fatal("exponential decay should fail, not fall back to linear")
	}
	if !strings.Contains(err.Error(), "not implemented") {
		t.Fatalf("error=%q want a not-implemented error", err)
	}
}

func TestCompute_OriginNotInSection(t *testing.T) {
	sec, _ := rowSection()
	stray := seat(99, 0, 0, 80, 80)

	eff, err := Compute(sec, stray, rippleCfg(), engCfg())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(eff.Boosts) != 0 {
		t.Fatal("missing origin should yield an empty mapping")
	}
	if eff.OriginSeat != stadium.SentinelCoord {
		t.Fatalf("origin seat=%v want sentinel", eff.OriginSeat)
	}
}

func TestCombine_SumsBeforeClamp(t *testing.T) {
	sec, origin := rowSection()
	cfg := rippleCfg()

	a, err := Compute(sec, origin, cfg, engCfg())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	b, err := Compute(sec, origin, cfg, engCfg())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	total := Combine(a, b)
	if got := total[origin.ID]; got != 80 {
		t.Fatalf("combined boost=%v want 80 (no per-ripple clamp)", got)
	}

	// A single clamped write at apply time.
	Apply(sec, total)
	if origin.Stats.Happiness != 100 {
		t.Fatalf("happiness=%v want 100", origin.Stats.Happiness)
	}
	if origin.Stats.Attention != 100 {
		t.Fatalf("attention=%v want 100", origin.Stats.Attention)
	}
}
