// Package stadium models the seating layout: ordered sections, the seat
// grid inside each, and cached per-section stat aggregates. Aggregates
// are invalidated with a generation counter bumped after every
// stat-mutating pass, so readers never see mid-tick staleness and the
// recompute cost is paid once per generation, not per spectator.
package stadium

import (
	"github.com/talgya/crowdwave/internal/spectator"
	"github.com/talgya/crowdwave/internal/tuning"
)

// Stadium is the full seating arrangement in canonical section order.
type Stadium struct {
	Sections []*Section

	byID map[string]*Section
	gen  uint64 // Bumped by Invalidate; sections recompute lazily against it
}

// Section is one seating block: a rows×cols grid, partially occupied.
type Section struct {
	ID    string
	Index int
	Rows  int
	Cols  int

	Spectators []*spectator.Spectator

	grid map[SeatCoord]*spectator.Spectator

	agg    Aggregates
	aggGen uint64
}

// Aggregates holds a section's cached average stats.
type Aggregates struct {
	AvgHappiness float64 `json:"avg_happiness"`
	AvgThirst    float64 `json:"avg_thirst"`
	AvgAttention float64 `json:"avg_attention"`
	Count        int     `json:"count"`
}

// EngagementBonus is the section-wide bonus fed into each spectator's
// participation probability.
func (a Aggregates) EngagementBonus() float64 {
	return a.AvgHappiness*0.2 + a.AvgAttention*0.2 - a.AvgThirst*0.15
}

// Engagement is the blended happiness/attention average used by the
// autonomous wave trigger.
func (a Aggregates) Engagement() float64 {
	return (a.AvgHappiness + a.AvgAttention) / 2
}

// New builds a stadium with the configured number of sections, named
// "A", "B", ... in canonical order, populated by the spawner.
func New(cfg *tuning.Tuning, spawner *spectator.Spawner) *Stadium {
	st := &Stadium{byID: make(map[string]*Section, cfg.Stadium.Sections)}
	for i := 0; i < cfg.Stadium.Sections; i++ {
		id := sectionName(i)
		sec := &Section{
			ID:    id,
			Index: i,
			Rows:  cfg.Stadium.Rows,
			Cols:  cfg.Stadium.Cols,
			grid:  make(map[SeatCoord]*spectator.Spectator),
		}
		sec.Spectators = spawner.SpawnSection(id, i, sec.Rows, sec.Cols, cfg)
		for _, sp := range sec.Spectators {
			sec.grid[SeatCoord{Row: sp.Row, Col: sp.Col}] = sp
		}
		st.Sections = append(st.Sections, sec)
		st.byID[id] = sec
	}
	// Generation 1 so freshly built sections (aggGen 0) compute on first read.
	st.gen = 1
	return st
}

// NewSection creates an empty section grid.
func NewSection(id string, index, rows, cols int) *Section {
	return &Section{
		ID:    id,
		Index: index,
		Rows:  rows,
		Cols:  cols,
		grid:  make(map[SeatCoord]*spectator.Spectator),
	}
}

// Place seats a spectator in the section, overwriting any prior occupant
// of that seat.
func (s *Section) Place(sp *spectator.Spectator) {
	sp.Section = s.ID
	s.Spectators = append(s.Spectators, sp)
	s.grid[SeatCoord{Row: sp.Row, Col: sp.Col}] = sp
}

// FromSections builds a stadium over pre-populated sections, in the
// order given.
func FromSections(secs ...*Section) *Stadium {
	st := &Stadium{byID: make(map[string]*Section, len(secs)), gen: 1}
	for _, sec := range secs {
		st.Sections = append(st.Sections, sec)
		st.byID[sec.ID] = sec
	}
	return st
}

func sectionName(i int) string {
	name := string(rune('A' + i%26))
	for i >= 26 {
		i = i/26 - 1
		name = string(rune('A'+i%26)) + name
	}
	return name
}

// Section returns the section with the given ID, or nil.
func (st *Stadium) Section(id string) *Section {
	return st.byID[id]
}

// SectionIDs returns the canonical ordered section ID list.
func (st *Stadium) SectionIDs() []string {
	ids := make([]string, len(st.Sections))
	for i, s := range st.Sections {
		ids[i] = s.ID
	}
	return ids
}

// Invalidate marks all cached aggregates stale. Call once after any pass
// that mutates spectator stats.
func (st *Stadium) Invalidate() {
	st.gen++
}

// Aggregates returns the section's averages, recomputing only when the
// stadium generation has moved past the cached one.
func (st *Stadium) Aggregates(sec *Section) Aggregates {
	if sec.aggGen != st.gen {
		sec.agg = computeAggregates(sec.Spectators)
		sec.aggGen = st.gen
	}
	return sec.agg
}

func computeAggregates(specs []*spectator.Spectator) Aggregates {
	if len(specs) == 0 {
		return Aggregates{}
	}
	var h, t, a float64
	for _, sp := range specs {
		h += sp.Stats.Happiness
		t += sp.Stats.Thirst
		a += sp.Stats.Attention
	}
	n := float64(len(specs))
	return Aggregates{
		AvgHappiness: h / n,
		AvgThirst:    t / n,
		AvgAttention: a / n,
		Count:        len(specs),
	}
}

// AllSpectators returns every spectator across all sections, in section
// then seat order.
func (st *Stadium) AllSpectators() []*spectator.Spectator {
	var all []*spectator.Spectator
	for _, sec := range st.Sections {
		all = append(all, sec.Spectators...)
	}
	return all
}

// Population returns the total occupied-seat count.
func (st *Stadium) Population() int {
	n := 0
	for _, sec := range st.Sections {
		n += len(sec.Spectators)
	}
	return n
}

// LowestAttentionSection returns the section with the lowest average
// attention, or nil for an empty stadium.
func (st *Stadium) LowestAttentionSection() *Section {
	var worst *Section
	worstAvg := 0.0
	for _, sec := range st.Sections {
		agg := st.Aggregates(sec)
		if agg.Count == 0 {
			continue
		}
		if worst == nil || agg.AvgAttention < worstAvg {
			worst = sec
			worstAvg = agg.AvgAttention
		}
	}
	return worst
}
