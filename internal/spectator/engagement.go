// Engagement decay rules. Thirst grows on a two-phase schedule, happiness
// erodes only once thirst crosses its trigger, and attention drifts down
// to a floor. All mutations clamp to [0,100].
package spectator

import "github.com/talgya/crowdwave/internal/tuning"

// Decay advances the engagement state by dt seconds of session time.
// now is the current session clock, used for freeze and stagnation timers.
func (e *EngagementState) Decay(dt, now float64, cfg *tuning.Engagement) {
	e.decayThirst(dt, now, cfg)
	e.decayHappiness(dt, now, cfg)
	e.decayAttention(dt, now, cfg)
	e.trackStagnation(now, cfg)
}

func (e *EngagementState) decayThirst(dt, now float64, cfg *tuning.Engagement) {
	if e.Frozen(StatThirst, now) {
		return
	}
	rate := cfg.ThirstRateSlow
	if e.Thirst >= cfg.ThirstFastThreshold {
		rate = cfg.ThirstRateFast
	}
	// Prolonged low attention escalates thirst growth on top of the
	// two-phase schedule.
	if e.stagnantActive && now-e.stagnantSince >= cfg.StagnationDurationSec {
		rate *= cfg.StagnationThirstMult
	}
	e.Thirst = clampStat(e.Thirst + rate*dt)
}

func (e *EngagementState) decayHappiness(dt, now float64, cfg *tuning.Engagement) {
	if e.Frozen(StatHappiness, now) {
		return
	}
	if e.Thirst <= cfg.HappinessThirstTrigger {
		return
	}
	e.Happiness = clampStat(e.Happiness - cfg.HappinessDecayRate*dt)
}

func (e *EngagementState) decayAttention(dt, now float64, cfg *tuning.Engagement) {
	if e.Frozen(StatAttention, now) {
		return
	}
	next := e.Attention - cfg.AttentionDecayRate*dt
	// Continuous decay stops at the floor; other subsystems may still
	// push attention below it.
	if next < cfg.AttentionFloor {
		next = cfg.AttentionFloor
		if e.Attention < cfg.AttentionFloor {
			next = e.Attention
		}
	}
	e.Attention = clampStat(next)
}

func (e *EngagementState) trackStagnation(now float64, cfg *tuning.Engagement) {
	if e.Attention < cfg.StagnationThreshold {
		if !e.stagnantActive {
			e.stagnantActive = true
			e.stagnantSince = now
		}
		return
	}
	e.stagnantActive = false
}

// Disinterested reports the derived disengagement state: both attention
// and happiness below their thresholds.
func (e *EngagementState) Disinterested(cfg *tuning.Engagement) bool {
	return e.Attention < cfg.DisinterestedAttention && e.Happiness < cfg.DisinterestedHappiness
}
