// Simulation ties the crowd subsystems together and runs them each tick
// in a fixed order: stat decay, aggregate invalidation, cluster decay,
// the hype actor, the autonomous wave trigger, active wave advancement,
// then vendor deliveries. All mutation happens synchronously on the tick
// goroutine; readers go through the snapshot accessors.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/talgya/crowdwave/internal/events"
	"github.com/talgya/crowdwave/internal/hype"
	"github.com/talgya/crowdwave/internal/ripple"
	"github.com/talgya/crowdwave/internal/spectator"
	"github.com/talgya/crowdwave/internal/stadium"
	"github.com/talgya/crowdwave/internal/tuning"
	"github.com/talgya/crowdwave/internal/wave"
	"github.com/talgya/crowdwave/internal/weather"
)

// maxCompletedWaves bounds the in-memory completed-wave ring.
const maxCompletedWaves = 64

// Simulation holds the complete session state.
type Simulation struct {
	mu sync.RWMutex

	Cfg     *tuning.Tuning
	Stadium *stadium.Stadium
	Bus     *events.Bus
	Hype    *hype.Actor

	// The single shared pseudorandom source for the whole run.
	rng *rand.Rand

	// Engagement config with weather modifiers applied. Rebuilt from the
	// read-only base whenever the weather changes.
	engCfg tuning.Engagement

	calc    *wave.Calculator
	weights wave.WeightTable

	tickSec  float64
	lastTick uint64

	sink WaveSink

	active          *wave.Wave
	nextSection     int
	lastSectionTick uint64

	lastClusterDecayAt float64
	lastTriggerAt      float64
	lastWaveEndedAt    float64

	pendingServices []pendingService

	completed []*wave.Wave
	stats     SimStats
}

// NewSimulation wires a session together. weights may be nil for the
// computed position-weight defaults.
func NewSimulation(cfg *tuning.Tuning, st *stadium.Stadium, bus *events.Bus, actor *hype.Actor, rng *rand.Rand, weights wave.WeightTable) *Simulation {
	s := &Simulation{
		Cfg:     cfg,
		Stadium: st,
		Bus:     bus,
		Hype:    actor,
		rng:     rng,
		calc:    wave.NewCalculator(&cfg.Participation, rng),
		weights: weights,
		tickSec: float64(cfg.Session.TickMs) / 1000,
		engCfg:  cfg.Engagement,
	}
	s.updateStats()
	return s
}

// SetWeather applies real-weather modifiers to the decay rates. The base
// tuning stays untouched; only the derived copy changes.
func (s *Simulation) SetWeather(m weather.Modifiers) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.engCfg = s.Cfg.Engagement
	s.engCfg.ThirstRateSlow *= m.ThirstMult
	s.engCfg.ThirstRateFast *= m.ThirstMult
	s.engCfg.HappinessDecayRate *= m.HappinessDecayMult
	slog.Info("weather modifiers applied", "desc", m.Description, "thirst_mult", m.ThirstMult, "happiness_mult", m.HappinessDecayMult)
}

// WaveSink receives completed waves, typically for persistence. Saving
// happens synchronously at wave completion, inside the tick.
type WaveSink interface {
	SaveWave(w *wave.Wave) error
}

// SetWaveSink installs the completed-wave receiver.
func (s *Simulation) SetWaveSink(sink WaveSink) {
	s.sink = sink
}

// Now converts a tick into session-clock seconds.
func (s *Simulation) Now(tick uint64) float64 {
	return float64(tick) * s.tickSec
}

// CurrentTick returns the most recently processed tick.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastTick
}

// TickFrame advances the whole session by one logic frame.
func (s *Simulation) TickFrame(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastTick = tick
	now := s.Now(tick)

	// 1. Per-spectator stat decay.
	for _, sp := range s.Stadium.AllSpectators() {
		sp.Stats.Decay(s.tickSec, now, &s.engCfg)
	}

	// 2. Aggregates recompute lazily against the new generation.
	s.Stadium.Invalidate()

	// 3. Periodic cluster disengagement.
	s.clusterDecayCheck(now, tick)

	// 4. Hype actor: patrol, crowd work, ultimate.
	s.hypeTick(now, tick)

	// 5. Autonomous wave trigger.
	s.triggerCheck(now, tick)

	// 6. Advance the active wave.
	s.advanceWave(now, tick)

	// 7. Complete vendor runs that have arrived.
	s.serviceCheck(now)

	if tick%s.Cfg.Session.SnapshotTicks == 0 {
		s.updateStats()
	}
}

// hypeTick runs the actor and fans out its results: reward catches spawn
// ripples, ultimates get announced.
func (s *Simulation) hypeTick(now float64, tick uint64) {
	for _, res := range s.Hype.Tick(now) {
		switch res.Kind {
		case hype.ResultAbility:
			s.stats.AbilitiesFired++
			if res.Catcher != nil {
				s.rewardCatch(res.Catcher, now, tick)
			}
		case hype.ResultUltimate:
			s.stats.UltimatesFired++
			s.Bus.Publish(events.Event{
				Kind:   events.KindUltimateFired,
				Tick:   tick,
				Detail: fmt.Sprintf("ultimate fired, %s phase, %d targets", res.Phase, res.Targets),
			})
		}
		s.Stadium.Invalidate()
	}
}

// rewardCatch handles a spectator catching the actor's tossed reward:
// a brief happiness freeze for the catcher and a ripple of renewed
// engagement spreading from the catch seat.
func (s *Simulation) rewardCatch(catcher *spectator.Spectator, now float64, tick uint64) {
	catcher.Stats.Freeze(spectator.StatHappiness, now, s.Cfg.Engagement.FreezeDurationSec)

	sec := s.Stadium.Section(catcher.Section)
	if sec == nil {
		return
	}
	eff, err := ripple.Compute(sec, catcher, &s.Cfg.Ripple, &s.Cfg.Engagement)
	if err != nil {
		slog.Error("ripple compute failed", "error", err)
		return
	}
	ripple.Apply(sec, ripple.Combine(eff))
	s.Stadium.Invalidate()

	s.stats.RewardsCaught++
	s.Bus.Publish(events.Event{
		Kind:    events.KindRewardCaught,
		Tick:    tick,
		Section: catcher.Section,
		Detail:  fmt.Sprintf("reward caught at row %d col %d, %d fans boosted", catcher.Row, catcher.Col, len(eff.Boosts)),
	})
}

// pendingService is a dispatched vendor run awaiting arrival.
type pendingService struct {
	id     spectator.ID
	refill float64
	dueAt  float64
}

// RequestService dispatches a vendor to a spectator. The spectator is
// marked in-transaction immediately; the refill lands after the
// configured travel delay, on the tick path.
func (s *Simulation) RequestService(id spectator.ID, refill float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp := s.findSpectator(id)
	if sp == nil {
		return fmt.Errorf("unknown spectator %d", id)
	}
	if sp.InTransaction {
		return fmt.Errorf("spectator %d already has a vendor en route", id)
	}

	sp.InTransaction = true
	s.pendingServices = append(s.pendingServices, pendingService{
		id:     id,
		refill: refill,
		dueAt:  s.Now(s.lastTick) + s.Cfg.Engagement.ServiceDelaySec,
	})
	return nil
}

// serviceCheck completes vendor runs whose travel delay has elapsed.
func (s *Simulation) serviceCheck(now float64) {
	if len(s.pendingServices) == 0 {
		return
	}
	remaining := s.pendingServices[:0]
	for _, p := range s.pendingServices {
		if now < p.dueAt {
			remaining = append(remaining, p)
			continue
		}
		s.deliver(p.id, p.refill, now)
	}
	s.pendingServices = remaining
}

// DeliverService completes a vendor transaction immediately: the served
// spectator gets their thirst quenched and both thirst and happiness
// frozen for the configured duration.
func (s *Simulation) DeliverService(id spectator.ID, refill float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deliver(id, refill, s.Now(s.lastTick))
}

func (s *Simulation) deliver(id spectator.ID, refill, now float64) bool {
	sp := s.findSpectator(id)
	if sp == nil {
		return false
	}
	sp.InTransaction = false
	sp.Stats.AddThirst(-refill)
	sp.Stats.Freeze(spectator.StatThirst, now, s.Cfg.Engagement.FreezeDurationSec)
	sp.Stats.Freeze(spectator.StatHappiness, now, s.Cfg.Engagement.FreezeDurationSec)
	s.Stadium.Invalidate()
	return true
}

func (s *Simulation) findSpectator(id spectator.ID) *spectator.Spectator {
	for _, sp := range s.Stadium.AllSpectators() {
		if sp.ID == id {
			return sp
		}
	}
	return nil
}

// CommandWave starts a wave externally, bypassing the autonomous
// trigger. Fails when a wave is already running or the origin is
// unknown.
func (s *Simulation) CommandWave(typ wave.Type, origin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		return fmt.Errorf("wave %s already in progress", s.active.ID)
	}
	if s.Stadium.Section(origin) == nil {
		return fmt.Errorf("unknown section %q", origin)
	}
	s.startWave(typ, origin, s.lastTick)
	return nil
}
