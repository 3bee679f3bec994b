// Cluster decay — the periodic localized disengagement process. A random
// seed spectator anchors a Manhattan-radius pool, a cluster of 8–16 is
// drawn from it, and happiness/attention degrade scaled by the time
// since the previous event. Both the check interval and the decay rate
// tighten as the session wears on, so late sessions spiral: attention
// loss is capped per event, happiness loss deliberately is not.
package engine

import (
	"fmt"

	"github.com/talgya/crowdwave/internal/events"
	"github.com/talgya/crowdwave/internal/spectator"
)

// sessionFraction maps the session clock to [0,1] elapsed.
func (s *Simulation) sessionFraction(now float64) float64 {
	if s.Cfg.Session.LengthSec <= 0 {
		return 0
	}
	frac := now / s.Cfg.Session.LengthSec
	if frac > 1 {
		frac = 1
	}
	return frac
}

// clusterDecayInterval tightens across the two session breakpoints.
func (s *Simulation) clusterDecayInterval(now float64) float64 {
	cfg := &s.Cfg.ClusterDecay
	switch frac := s.sessionFraction(now); {
	case frac >= 0.7:
		return cfg.BaseIntervalSec * cfg.LatePhaseMult
	case frac >= 0.3:
		return cfg.BaseIntervalSec * cfg.MidPhaseMult
	default:
		return cfg.BaseIntervalSec
	}
}

// clusterDecayRate steps up across the early/mid/late session bands.
func (s *Simulation) clusterDecayRate(now float64) float64 {
	cfg := &s.Cfg.ClusterDecay
	switch frac := s.sessionFraction(now); {
	case frac >= 0.7:
		return cfg.RateLate
	case frac >= 0.3:
		return cfg.RateMid
	default:
		return cfg.RateEarly
	}
}

func (s *Simulation) clusterDecayCheck(now float64, tick uint64) {
	if now-s.lastClusterDecayAt < s.clusterDecayInterval(now) {
		return
	}

	all := s.Stadium.AllSpectators()
	if len(all) == 0 {
		return
	}

	seed := all[s.rng.Intn(len(all))]
	pool := s.Stadium.WithinRadius(seed, s.Cfg.ClusterDecay.Radius)
	cluster := s.drawCluster(pool)

	sinceLast := now - s.lastClusterDecayAt
	s.lastClusterDecayAt = now

	cfg := &s.Cfg.ClusterDecay
	rate := s.clusterDecayRate(now)
	variance := cfg.VarianceMin + s.rng.Float64()*(cfg.VarianceMax-cfg.VarianceMin)

	happinessLoss := rate * sinceLast * variance
	attentionLoss := happinessLoss * cfg.AttentionFactor
	if attentionLoss > cfg.AttentionCap {
		attentionLoss = cfg.AttentionCap
	}

	// No exemptions: spectators mid-transaction decay like everyone else.
	for _, sp := range cluster {
		sp.Stats.AddHappiness(-happinessLoss)
		sp.Stats.AddAttention(-attentionLoss)
	}
	s.Stadium.Invalidate()

	s.stats.ClusterDecays++
	s.Bus.Publish(events.Event{
		Kind:    events.KindClusterDecay,
		Tick:    tick,
		Section: seed.Section,
		Detail:  fmt.Sprintf("%d fans lost %.1f happiness", len(cluster), happinessLoss),
	})
}

// drawCluster randomly selects between ClusterMin and ClusterMax
// spectators from the pool, or the whole pool when it's smaller.
func (s *Simulation) drawCluster(pool []*spectator.Spectator) []*spectator.Spectator {
	cfg := &s.Cfg.ClusterDecay
	size := cfg.ClusterMin + s.rng.Intn(cfg.ClusterMax-cfg.ClusterMin+1)
	if size >= len(pool) {
		return pool
	}
	shuffled := make([]*spectator.Spectator, len(pool))
	copy(shuffled, pool)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:size]
}
