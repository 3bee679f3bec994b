// Targeting-phase selection. The three phases rotate in a fixed cycle:
// the actor's current section, the whole stadium, then the low-attention
// cluster.
package hype

import "github.com/talgya/crowdwave/internal/spectator"

func (a *Actor) selectTargets(phase Phase) []*spectator.Spectator {
	switch phase {
	case PhaseSection:
		return a.sectionTargets()
	case PhaseStadium:
		return a.st.AllSpectators()
	default:
		return a.clusterTargets()
	}
}

func (a *Actor) sectionTargets() []*spectator.Spectator {
	id, _, _ := a.pos.Position()
	sec := a.st.Section(id)
	if sec == nil {
		// Actor somewhere off-grid — fall back to a random section.
		if len(a.st.Sections) == 0 {
			return nil
		}
		sec = a.st.Sections[a.rng.Intn(len(a.st.Sections))]
	}
	return sec.Spectators
}

// clusterTargets finds the spectators most in need of attention: seed on
// the single lowest-attention spectator under the threshold and gather
// every candidate within the grid radius. Clusters under the minimum
// size fall back to the entire lowest-average-attention section.
func (a *Actor) clusterTargets() []*spectator.Spectator {
	var seed *spectator.Spectator
	var candidates []*spectator.Spectator
	for _, sp := range a.st.AllSpectators() {
		if sp.Stats.Attention >= a.cfg.ClusterAttentionThreshold {
			continue
		}
		candidates = append(candidates, sp)
		if seed == nil || sp.Stats.Attention < seed.Stats.Attention {
			seed = sp
		}
	}

	var cluster []*spectator.Spectator
	if seed != nil {
		inRange := make(map[spectator.ID]bool)
		for _, sp := range a.st.WithinRadius(seed, a.cfg.ClusterRadius) {
			inRange[sp.ID] = true
		}
		for _, sp := range candidates {
			if inRange[sp.ID] {
				cluster = append(cluster, sp)
			}
		}
	}

	if len(cluster) < a.cfg.ClusterMinSize {
		if sec := a.st.LowestAttentionSection(); sec != nil {
			return sec.Spectators
		}
		return nil
	}
	return cluster
}
