// Spectator spawning — fills a section's seat grid with randomized
// engagement stats. Initial values are driven by smooth noise over the
// seat coordinates so neighbouring fans arrive with correlated moods,
// with per-seat jitter on top.
package spectator

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/crowdwave/internal/tuning"
)

// noiseFreq controls how quickly mood varies across neighbouring seats.
const noiseFreq = 0.15

// Spawner creates spectators for the simulation.
type Spawner struct {
	rng    *rand.Rand
	nextID ID

	happinessNoise opensimplex.Noise
	thirstNoise    opensimplex.Noise
	attentionNoise opensimplex.Noise
}

// NewSpawner creates a spectator spawner with the given seed.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		rng:    rand.New(rand.NewSource(seed + 100)),
		nextID: 1,

		happinessNoise: opensimplex.NewNormalized(seed),
		thirstNoise:    opensimplex.NewNormalized(seed + 1),
		attentionNoise: opensimplex.NewNormalized(seed + 2),
	}
}

// SpawnSection populates one section's grid. sectionIdx offsets the noise
// field so sections don't repeat each other. Seats are filled at the
// configured occupancy rate; empty seats are simply absent.
func (s *Spawner) SpawnSection(sectionID string, sectionIdx, rows, cols int, cfg *tuning.Tuning) []*Spectator {
	specs := make([]*Spectator, 0, rows*cols)
	xOff := float64(sectionIdx * cols)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if s.rng.Float64() >= cfg.Stadium.OccupancyRate {
				continue
			}
			x := (xOff + float64(col)) * noiseFreq
			y := float64(row) * noiseFreq

			sp := &Spectator{
				ID:      s.nextID,
				Section: sectionID,
				Row:     row,
				Col:     col,
				Stats: EngagementState{
					Happiness: s.initial(s.happinessNoise, x, y, cfg.Engagement.InitialHappinessMin, cfg.Engagement.InitialHappinessMax),
					Thirst:    s.initial(s.thirstNoise, x, y, cfg.Engagement.InitialThirstMin, cfg.Engagement.InitialThirstMax),
					Attention: s.initial(s.attentionNoise, x, y, cfg.Engagement.InitialAttentionMin, cfg.Engagement.InitialAttentionMax),
				},
			}
			s.nextID++
			specs = append(specs, sp)
		}
	}
	return specs
}

// initial maps normalized noise into [min,max] with a little jitter.
func (s *Spawner) initial(n opensimplex.Noise, x, y, min, max float64) float64 {
	base := min + n.Eval2(x, y)*(max-min)
	jitter := (s.rng.Float64() - 0.5) * (max - min) * 0.2
	return clampStat(base + jitter)
}
