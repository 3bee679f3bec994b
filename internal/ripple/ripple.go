// Package ripple computes the re-engagement stimulus that radiates from
// a spectator who caught a reward: a distance-decayed stat boost across
// the origin's section, with a flat bonus for disengaged fans. Ripples
// are ephemeral: computed, optionally combined with concurrent ripples,
// applied, and discarded.
package ripple

import (
	"fmt"
	"math"

	"github.com/talgya/crowdwave/internal/spectator"
	"github.com/talgya/crowdwave/internal/stadium"
	"github.com/talgya/crowdwave/internal/tuning"
)

// DecayLinear is the only implemented decay curve. DecayExponential is
// declared for forward compatibility and fails loudly when requested.
const (
	DecayLinear      = "linear"
	DecayExponential = "exponential"
)

// Effect is one computed ripple: the origin seat and the per-spectator
// boost magnitudes. Spectators at or beyond the radius are absent from
// the map, not present with zero.
type Effect struct {
	Origin     spectator.ID
	OriginSeat stadium.SeatCoord
	Boosts     map[spectator.ID]float64
}

// Compute builds the ripple for an origin spectator within its section.
// An origin that can't be located in its claimed section yields an empty
// effect with sentinel coordinates — a recoverable no-op, not an error.
func Compute(sec *stadium.Section, origin *spectator.Spectator, cfg *tuning.Ripple, eng *tuning.Engagement) (Effect, error) {
	eff := Effect{
		Origin:     origin.ID,
		OriginSeat: stadium.SentinelCoord,
		Boosts:     make(map[spectator.ID]float64),
	}

	switch cfg.DecayType {
	case DecayLinear:
	case DecayExponential:
		return eff, fmt.Errorf("ripple decay type %q not implemented", cfg.DecayType)
	default:
		return eff, fmt.Errorf("unknown ripple decay type %q", cfg.DecayType)
	}

	seat := sec.Locate(origin.ID)
	if seat == stadium.SentinelCoord {
		return eff, nil
	}
	eff.OriginSeat = seat

	// Zero radius degenerates to no effect for anyone, origin included.
	if cfg.MaxRadius <= 0 {
		return eff, nil
	}

	for _, sp := range sec.Spectators {
		d := stadium.Manhattan(stadium.SeatCoord{Row: sp.Row, Col: sp.Col}, seat)
		if d >= cfg.MaxRadius {
			continue
		}
		boost := math.Round(cfg.BaseEffect * (1 - float64(d)/float64(cfg.MaxRadius)))
		if sp.Stats.Disinterested(eng) {
			boost += cfg.DisinterestedBonus
		}
		eff.Boosts[sp.ID] = boost
	}
	return eff, nil
}

// Combine flat-sums concurrent ripples per spectator. No clamping here:
// stacking is preserved and the [0,100] clamp happens once at apply time.
func Combine(effects ...Effect) map[spectator.ID]float64 {
	total := make(map[spectator.ID]float64)
	for _, eff := range effects {
		for id, boost := range eff.Boosts {
			total[id] += boost
		}
	}
	return total
}

// Apply writes combined boosts onto the section's spectators, raising
// happiness and attention with a single clamped write each.
func Apply(sec *stadium.Section, boosts map[spectator.ID]float64) {
	for _, sp := range sec.Spectators {
		if boost, ok := boosts[sp.ID]; ok {
			sp.Stats.AddHappiness(boost)
			sp.Stats.AddAttention(boost)
		}
	}
}
