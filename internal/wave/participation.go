// Per-column participation rolling. Each occupied seat gets one
// Bernoulli trial from the shared simulation rand source; peer pressure
// then converts hold-outs in columns that cleared the threshold, at half
// intensity. Classification always uses the pre-peer-pressure rate.
package wave

import (
	"math/rand"

	"github.com/talgya/crowdwave/internal/spectator"
	"github.com/talgya/crowdwave/internal/stadium"
	"github.com/talgya/crowdwave/internal/tuning"
)

// Calculator rolls participation for sections of a wave.
type Calculator struct {
	cfg *tuning.Participation
	rng *rand.Rand
}

// NewCalculator creates a calculator over the shared rand source.
func NewCalculator(cfg *tuning.Participation, rng *rand.Rand) *Calculator {
	return &Calculator{cfg: cfg, rng: rng}
}

// Probability returns the participation chance (0–100 scale) for one
// spectator: weighted happiness and attention, a thirst penalty, a flat
// base, the section-wide engagement bonus, and the wave-strength
// modifier centered at 50.
func (c *Calculator) Probability(sp *spectator.Spectator, sectionBonus, strength float64) float64 {
	return sp.Stats.Happiness*c.cfg.HappinessWeight +
		sp.Stats.Attention*c.cfg.AttentionWeight -
		sp.Stats.Thirst*c.cfg.ThirstPenalty +
		c.cfg.BaseChance +
		sectionBonus +
		(strength-50)*c.cfg.StrengthModifier
}

// RollColumn rolls one seating column. Spectator flags are rewritten in
// place for the renderer handoff; the returned result carries the
// pre-peer-pressure rate and classification.
func (c *Calculator) RollColumn(index int, occupants []*spectator.Spectator, sectionBonus, strength float64) ColumnResult {
	res := ColumnResult{Index: index, Occupied: len(occupants)}
	if len(occupants) == 0 {
		res.Outcome = OutcomeFailed
		return res
	}

	joined := 0
	for _, sp := range occupants {
		p := c.Probability(sp, sectionBonus, strength)
		sp.WillParticipate = c.rng.Float64()*100 < p
		sp.ReducedEffort = false
		if sp.WillParticipate {
			joined++
		}
	}

	res.Rate = float64(joined) / float64(len(occupants))
	res.Outcome = classify(res.Rate, c.cfg.ColumnSuccessThreshold, c.cfg.ColumnReducedThreshold)

	// Peer pressure: a column that cleared the threshold drags its
	// hold-outs along at reduced intensity. The classification above is
	// never revisited.
	if res.Rate >= c.cfg.PeerPressureThreshold {
		for _, sp := range occupants {
			if !sp.WillParticipate {
				sp.WillParticipate = true
				sp.ReducedEffort = true
			}
		}
	}

	for _, sp := range occupants {
		if sp.WillParticipate {
			res.Participants = append(res.Participants, Participant{
				Spectator: uint64(sp.ID),
				Row:       sp.Row,
				Intensity: sp.Intensity(),
			})
		}
	}
	return res
}

// RunSection rolls every column of a section and classifies the section
// against its own threshold pair on the section-wide pre-peer-pressure
// rate.
func (c *Calculator) RunSection(sec *stadium.Section, agg stadium.Aggregates, strength float64) SectionResult {
	res := SectionResult{Section: sec.ID}
	bonus := agg.EngagementBonus()

	joined, occupied := 0, 0
	for col := 0; col < sec.Cols; col++ {
		occupants := sec.Column(col)
		if len(occupants) == 0 {
			continue
		}
		cr := c.RollColumn(col, occupants, bonus, strength)
		res.Columns = append(res.Columns, cr)
		joined += int(cr.Rate*float64(cr.Occupied) + 0.5)
		occupied += cr.Occupied
	}

	if occupied > 0 {
		res.Rate = float64(joined) / float64(occupied)
	}
	res.Outcome = classify(res.Rate, c.cfg.SectionSuccessThreshold, c.cfg.SectionReducedThreshold)
	return res
}

// classify maps a participation rate onto the ordered threshold pair.
func classify(rate, success, reduced float64) Outcome {
	switch {
	case rate >= success:
		return OutcomeSuccess
	case rate >= reduced:
		return OutcomeReduced
	default:
		return OutcomeFailed
	}
}
