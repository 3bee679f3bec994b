// Package wave provides the wave entity — an ordered traversal of
// seating sections with per-section results and scoring — and the
// per-column participation calculator that populates it.
package wave

import (
	"time"

	"github.com/google/uuid"
)

// Type tags a wave's flavor.
type Type string

const (
	TypeNormal    Type = "normal"
	TypeBoosted   Type = "boosted"   // Started while the hype actor is mid-hype
	TypeReversing Type = "reversing" // Externally commanded reverse wave
)

// Direction is the travel direction of a wave across the section order.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Outcome classifies a column or section result.
type Outcome uint8

const (
	OutcomeSuccess Outcome = iota
	OutcomeReduced
	OutcomeFailed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeReduced:
		return "reduced"
	default:
		return "failed"
	}
}

// Wave is one traversal of the gesture across the stadium. Path and
// direction are fixed at construction; results accumulate section by
// section and the wave is immutable once ended.
type Wave struct {
	ID        uuid.UUID `json:"id"`
	Type      Type      `json:"type"`
	Origin    string    `json:"origin"`
	Path      []string  `json:"path"`
	Direction Direction `json:"direction"`

	Strength float64 `json:"strength"` // 0–100, evolves as sections resolve

	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	Results []SectionResult `json:"results"`

	basePoints int
}

// SectionResult records one traversed section's outcome.
type SectionResult struct {
	Section string         `json:"section"`
	Outcome Outcome        `json:"outcome"`
	Rate    float64        `json:"rate"` // Pre-peer-pressure participation rate
	Columns []ColumnResult `json:"columns"`
}

// ColumnResult records one seating column's roll.
type ColumnResult struct {
	Index        int           `json:"index"`
	Rate         float64       `json:"rate"` // Pre-peer-pressure
	Outcome      Outcome       `json:"outcome"`
	Occupied     int           `json:"occupied"`
	Participants []Participant `json:"participants"`
}

// Participant is the renderer handoff: who moves, and how hard.
type Participant struct {
	Spectator uint64  `json:"spectator"`
	Row       int     `json:"row"`
	Intensity float64 `json:"intensity"`
}

// DefaultBasePoints is the per-section score when no override is given.
const DefaultBasePoints = 100

// New creates a wave starting at origin over the given canonical section
// order. basePoints overrides the per-section score; zero or negative
// selects the default.
func New(typ Type, origin string, sections []string, strength float64, basePoints int, at time.Time) *Wave {
	if basePoints <= 0 {
		basePoints = DefaultBasePoints
	}
	path := CalculatePath(sections, origin)
	return &Wave{
		ID:         uuid.New(),
		Type:       typ,
		Origin:     origin,
		Path:       path,
		Direction:  pathDirection(path, sections),
		Strength:   strength,
		StartedAt:  at,
		basePoints: basePoints,
	}
}

// CalculatePath computes the traversal for a wave starting at origin:
// the leftward prefix and the rightward suffix are compared and the
// longer one wins, with exact ties resolved rightward. Returns nil when
// origin isn't in the section list.
func CalculatePath(sections []string, origin string) []string {
	idx := -1
	for i, s := range sections {
		if s == origin {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	left := make([]string, 0, idx+1)
	for i := idx; i >= 0; i-- {
		left = append(left, sections[i])
	}
	right := make([]string, len(sections)-idx)
	copy(right, sections[idx:])

	if len(left) > len(right) {
		return left
	}
	return right
}

// pathDirection derives travel direction from the first two path
// elements against the canonical order. Single-section paths default to
// right.
func pathDirection(path, sections []string) Direction {
	if len(path) < 2 {
		return DirectionRight
	}
	if indexOf(sections, path[1]) > indexOf(sections, path[0]) {
		return DirectionRight
	}
	return DirectionLeft
}

func indexOf(sections []string, id string) int {
	for i, s := range sections {
		if s == id {
			return i
		}
	}
	return -1
}

// Snapshot returns a detached deep copy. Readers on other goroutines
// use this while the tick goroutine is still resolving sections.
func (w *Wave) Snapshot() *Wave {
	cp := *w
	if w.EndedAt != nil {
		ended := *w.EndedAt
		cp.EndedAt = &ended
	}
	cp.Path = append([]string(nil), w.Path...)
	cp.Results = make([]SectionResult, len(w.Results))
	for i, r := range w.Results {
		r.Columns = append([]ColumnResult(nil), r.Columns...)
		for j, c := range r.Columns {
			r.Columns[j].Participants = append([]Participant(nil), c.Participants...)
		}
		cp.Results[i] = r
	}
	return &cp
}

// RecordResult appends a section result. Ignored once the wave has ended.
func (w *Wave) RecordResult(r SectionResult) {
	if w.EndedAt != nil {
		return
	}
	w.Results = append(w.Results, r)
}

// Complete marks the wave finished. Idempotent; the first end time wins.
func (w *Wave) Complete(at time.Time) {
	if w.EndedAt != nil {
		return
	}
	w.EndedAt = &at
}

// IsFailed reports whether any traversed section failed, either by its
// own classification or by containing a failed column.
func (w *Wave) IsFailed() bool {
	for _, r := range w.Results {
		if r.Outcome == OutcomeFailed {
			return true
		}
		for _, c := range r.Columns {
			if c.Outcome == OutcomeFailed {
				return true
			}
		}
	}
	return false
}

// IsSuccess is the complement of IsFailed: reduced sections pass, and a
// wave with no recorded results is vacuously successful.
func (w *Wave) IsSuccess() bool {
	return !w.IsFailed()
}

// Score totals the recorded results: success and reduced sections each
// count basePointsPerSection, failed sections score nothing. Pure over
// the recorded results.
func (w *Wave) Score() int {
	score := 0
	for _, r := range w.Results {
		if r.Outcome != OutcomeFailed {
			score += w.basePoints
		}
	}
	return score
}

// MaxPossibleScore is basePointsPerSection times the path length.
func (w *Wave) MaxPossibleScore() int {
	return w.basePoints * len(w.Path)
}
