// Session statistics and the read-side snapshot accessors used by the
// HTTP API.
package engine

import (
	"github.com/talgya/crowdwave/internal/stadium"
	"github.com/talgya/crowdwave/internal/wave"
)

// SimStats tracks aggregate session statistics.
type SimStats struct {
	WavesStarted   int `json:"waves_started"`
	WavesSucceeded int `json:"waves_succeeded"`
	WavesFailed    int `json:"waves_failed"`
	TotalScore     int `json:"total_score"`

	AbilitiesFired int `json:"abilities_fired"`
	UltimatesFired int `json:"ultimates_fired"`
	RewardsCaught  int `json:"rewards_caught"`
	ClusterDecays  int `json:"cluster_decays"`

	Population    int     `json:"population"`
	Disinterested int     `json:"disinterested"`
	AvgHappiness  float64 `json:"avg_happiness"`
	AvgThirst     float64 `json:"avg_thirst"`
	AvgAttention  float64 `json:"avg_attention"`
}

// updateStats refreshes the crowd-wide averages. Callers hold the lock.
func (s *Simulation) updateStats() {
	all := s.Stadium.AllSpectators()
	s.stats.Population = len(all)
	s.stats.Disinterested = 0

	if len(all) == 0 {
		s.stats.AvgHappiness, s.stats.AvgThirst, s.stats.AvgAttention = 0, 0, 0
		return
	}

	var h, t, a float64
	for _, sp := range all {
		h += sp.Stats.Happiness
		t += sp.Stats.Thirst
		a += sp.Stats.Attention
		if sp.Stats.Disinterested(&s.Cfg.Engagement) {
			s.stats.Disinterested++
		}
	}
	n := float64(len(all))
	s.stats.AvgHappiness = h / n
	s.stats.AvgThirst = t / n
	s.stats.AvgAttention = a / n
}

// Stats returns a copy of the current session statistics.
func (s *Simulation) Stats() SimStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateStats()
	return s.stats
}

// SectionSummary is the per-section view served by the API.
type SectionSummary struct {
	ID         string             `json:"id"`
	Index      int                `json:"index"`
	Aggregates stadium.Aggregates `json:"aggregates"`
}

// SectionSummaries returns the per-section aggregates in canonical order.
func (s *Simulation) SectionSummaries() []SectionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SectionSummary, 0, len(s.Stadium.Sections))
	for _, sec := range s.Stadium.Sections {
		out = append(out, SectionSummary{
			ID:         sec.ID,
			Index:      sec.Index,
			Aggregates: s.Stadium.Aggregates(sec),
		})
	}
	return out
}

// ActiveWave returns a detached snapshot of the in-flight wave, or nil.
// The live wave keeps mutating on the tick goroutine; handing it out
// would race with section resolution.
func (s *Simulation) ActiveWave() *wave.Wave {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return nil
	}
	return s.active.Snapshot()
}

// RecentWaves returns up to n most recent completed waves, newest first.
func (s *Simulation) RecentWaves(n int) []*wave.Wave {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.completed) {
		n = len(s.completed)
	}
	out := make([]*wave.Wave, 0, n)
	for i := len(s.completed) - 1; i >= len(s.completed)-n; i-- {
		out = append(out, s.completed[i])
	}
	return out
}

// HypeSnapshot is the actor state served by the API.
type HypeSnapshot struct {
	State             string  `json:"state"`
	Phase             string  `json:"phase"`
	Streak            int     `json:"streak"`
	Effectiveness     float64 `json:"effectiveness"`
	Bank              float64 `json:"bank"`
	UltimateReady     bool    `json:"ultimate_ready"`
	EffectiveCooldown float64 `json:"effective_cooldown_sec"`
}

// HypeState returns a snapshot of the actor's attention-economy state.
func (s *Simulation) HypeState() HypeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return HypeSnapshot{
		State:             s.Hype.State.String(),
		Phase:             s.Hype.Phase.String(),
		Streak:            s.Hype.Streak,
		Effectiveness:     s.Hype.Effectiveness,
		Bank:              s.Hype.Bank,
		UltimateReady:     s.Hype.UltimateReady,
		EffectiveCooldown: s.Hype.EffectiveCooldown(),
	}
}
