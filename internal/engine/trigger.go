// Autonomous wave triggering and active-wave advancement. Sections are
// chosen by edge-favoring position weights and start a wave when their
// cached average engagement clears the trigger threshold. An active wave
// resolves one section per configured tick stride and runs to completion;
// there is no cancellation.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/crowdwave/internal/events"
	"github.com/talgya/crowdwave/internal/stadium"
	"github.com/talgya/crowdwave/internal/wave"
)

func (s *Simulation) triggerCheck(now float64, tick uint64) {
	if s.active != nil {
		return
	}
	if now-s.lastWaveEndedAt < s.Cfg.Wave.CooldownSec && s.lastWaveEndedAt > 0 {
		return
	}
	if now-s.lastTriggerAt < s.Cfg.Wave.TriggerIntervalSec {
		return
	}
	s.lastTriggerAt = now

	sec := s.pickSection()
	if sec == nil {
		return
	}
	if s.Stadium.Aggregates(sec).Engagement() < s.Cfg.Wave.TriggerEngagement {
		return
	}

	typ := wave.TypeNormal
	if s.Hype.OnField() && s.Hype.Streak >= 2 {
		typ = wave.TypeBoosted
	}
	s.startWave(typ, sec.ID, tick)
}

// pickSection draws a section weighted by position. The single-section
// stadium is special-cased: the weight formula is NaN at n=1.
func (s *Simulation) pickSection() *stadium.Section {
	sections := s.Stadium.Sections
	n := len(sections)
	switch n {
	case 0:
		return nil
	case 1:
		return sections[0]
	}

	total := 0.0
	ws := make([]float64, n)
	for i := range sections {
		ws[i] = s.weights.Weight(i, n)
		total += ws[i]
	}
	if total <= 0 {
		return sections[s.rng.Intn(n)]
	}

	r := s.rng.Float64() * total
	for i, w := range ws {
		r -= w
		if r <= 0 {
			return sections[i]
		}
	}
	return sections[n-1]
}

func (s *Simulation) startWave(typ wave.Type, origin string, tick uint64) {
	w := wave.New(typ, origin, s.Stadium.SectionIDs(), s.Cfg.Wave.StartStrength, s.Cfg.Wave.BasePointsPerSection, time.Now())
	if len(w.Path) == 0 {
		return
	}

	s.active = w
	s.nextSection = 0
	s.lastSectionTick = tick
	s.Hype.SetWaveActive(true)
	s.stats.WavesStarted++

	slog.Info("wave started", "id", w.ID, "type", w.Type, "origin", origin, "direction", w.Direction, "path_len", len(w.Path))
	s.Bus.Publish(events.Event{
		Kind:    events.KindWaveStarted,
		Tick:    tick,
		WaveID:  w.ID.String(),
		Section: origin,
		Detail:  fmt.Sprintf("%s wave travelling %s across %d sections", w.Type, w.Direction, len(w.Path)),
	})
}

func (s *Simulation) advanceWave(now float64, tick uint64) {
	w := s.active
	if w == nil {
		return
	}
	if tick-s.lastSectionTick < s.Cfg.Wave.SectionTickStride {
		return
	}
	s.lastSectionTick = tick

	sec := s.Stadium.Section(w.Path[s.nextSection])
	if sec == nil {
		// Section vanished from under the path; treat as traversed.
		s.nextSection++
	} else {
		s.resolveSection(w, sec, tick)
		s.nextSection++
	}

	if s.nextSection >= len(w.Path) {
		s.completeWave(w, now, tick)
	}
}

// resolveSection rolls one section, applies outcome boosts, and adjusts
// the travelling strength.
func (s *Simulation) resolveSection(w *wave.Wave, sec *stadium.Section, tick uint64) {
	agg := s.Stadium.Aggregates(sec)
	res := s.calc.RunSection(sec, agg, w.Strength)
	w.RecordResult(res)

	switch res.Outcome {
	case wave.OutcomeSuccess:
		s.applyOutcomeBoost(sec, s.Cfg.Wave.SuccessHappinessBoost)
		w.Strength = clampStrength(w.Strength + s.Cfg.Wave.StrengthGainOnSuccess)
	case wave.OutcomeReduced:
		s.applyOutcomeBoost(sec, s.Cfg.Wave.SuccessHappinessBoost)
		w.Strength = clampStrength(w.Strength - s.Cfg.Wave.StrengthLossOnReduced)
	case wave.OutcomeFailed:
		for _, sp := range sec.Spectators {
			sp.Stats.AddHappiness(-s.Cfg.Wave.FailureHappinessPenalty)
		}
	}
	s.Stadium.Invalidate()

	s.Bus.Publish(events.Event{
		Kind:    events.KindSectionResolved,
		Tick:    tick,
		WaveID:  w.ID.String(),
		Section: sec.ID,
		Rate:    res.Rate,
		Detail:  fmt.Sprintf("section %s %s at %.0f%% participation", sec.ID, res.Outcome, res.Rate*100),
	})
}

// applyOutcomeBoost rewards participants; peer-pressured joiners get
// half, hold-outs nothing.
func (s *Simulation) applyOutcomeBoost(sec *stadium.Section, boost float64) {
	for _, sp := range sec.Spectators {
		if sp.WillParticipate {
			sp.Stats.AddHappiness(boost * sp.Intensity())
		}
	}
}

func (s *Simulation) completeWave(w *wave.Wave, now float64, tick uint64) {
	w.Complete(time.Now())
	success := w.IsSuccess()

	s.Hype.OnWaveResult(success)
	s.Hype.SetWaveActive(false)

	s.active = nil
	s.lastWaveEndedAt = now

	s.completed = append(s.completed, w)
	if len(s.completed) > maxCompletedWaves {
		s.completed = s.completed[1:]
	}

	score := w.Score()
	s.stats.TotalScore += score
	kind := events.KindWaveSucceeded
	if success {
		s.stats.WavesSucceeded++
	} else {
		s.stats.WavesFailed++
		kind = events.KindWaveFailed
	}

	if s.sink != nil {
		if err := s.sink.SaveWave(w); err != nil {
			slog.Error("failed to persist wave", "id", w.ID, "error", err)
		}
	}

	slog.Info("wave complete", "id", w.ID, "success", success, "score", score, "max", w.MaxPossibleScore())
	s.Bus.Publish(events.Event{
		Kind:   kind,
		Tick:   tick,
		WaveID: w.ID.String(),
		Score:  score,
		Detail: fmt.Sprintf("scored %d of %d", score, w.MaxPossibleScore()),
	})
}

func clampStrength(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
