// Package spectator provides the per-fan engagement model: the three-stat
// state, its decay rules, and the spawner that populates seating sections.
package spectator

// ID is a unique identifier for a spectator.
type ID uint64

// Stat enumerates the engagement stats.
type Stat uint8

const (
	StatHappiness Stat = iota
	StatThirst
	StatAttention
)

// Spectator is an individual crowd member occupying one seat.
type Spectator struct {
	ID      ID     `json:"id"`
	Section string `json:"section"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`

	Stats EngagementState `json:"stats"`

	// Wave participation flags, rewritten by each column roll.
	WillParticipate bool `json:"will_participate"`
	ReducedEffort   bool `json:"reduced_effort"`

	// Set while a vendor transaction is in progress. Cluster decay
	// deliberately does not exempt spectators mid-transaction.
	InTransaction bool `json:"in_transaction"`
}

// Intensity returns the visual participation intensity for the renderer:
// 1.0 for a genuine participant, 0.5 for a peer-pressured late joiner,
// 0 for a hold-out.
func (s *Spectator) Intensity() float64 {
	if !s.WillParticipate {
		return 0
	}
	if s.ReducedEffort {
		return 0.5
	}
	return 1.0
}

// EngagementState holds the three scalar stats, each clamped to [0,100],
// plus the bookkeeping that drives decay: per-stat freeze deadlines and
// the attention-stagnation clock. Times are session-clock seconds.
type EngagementState struct {
	Happiness float64 `json:"happiness"`
	Thirst    float64 `json:"thirst"`
	Attention float64 `json:"attention"`

	frozenUntil    [3]float64
	stagnantSince  float64
	stagnantActive bool
}

// Frozen reports whether decay of the given stat is currently suppressed.
func (e *EngagementState) Frozen(s Stat, now float64) bool {
	return now < e.frozenUntil[s]
}

// Freeze suppresses decay of the given stat until now+duration. Freezes
// are independent per stat; a later freeze simply moves the deadline.
func (e *EngagementState) Freeze(s Stat, now, duration float64) {
	e.frozenUntil[s] = now + duration
}

func clampStat(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// AddHappiness adjusts happiness by delta, clamping to [0,100].
func (e *EngagementState) AddHappiness(delta float64) {
	e.Happiness = clampStat(e.Happiness + delta)
}

// AddThirst adjusts thirst by delta, clamping to [0,100].
func (e *EngagementState) AddThirst(delta float64) {
	e.Thirst = clampStat(e.Thirst + delta)
}

// AddAttention adjusts attention by delta, clamping to [0,100].
func (e *EngagementState) AddAttention(delta float64) {
	e.Attention = clampStat(e.Attention + delta)
}
