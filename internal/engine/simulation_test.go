package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/talgya/crowdwave/internal/events"
	"github.com/talgya/crowdwave/internal/hype"
	"github.com/talgya/crowdwave/internal/spectator"
	"github.com/talgya/crowdwave/internal/stadium"
	"github.com/talgya/crowdwave/internal/tuning"
	"github.com/talgya/crowdwave/internal/wave"
)

type parkedActor struct{}

func (parkedActor) Position() (string, int, int) { return "A", 0, 0 }

// quietCfg returns tuning with every background process silenced so
// individual tests can enable just the piece under test.
func quietCfg() *tuning.Tuning {
	cfg := tuning.Default()
	cfg.Engagement.ThirstRateSlow = 0
	cfg.Engagement.ThirstRateFast = 0
	cfg.Engagement.HappinessDecayRate = 0
	cfg.Engagement.AttentionDecayRate = 0
	cfg.ClusterDecay.BaseIntervalSec = 1e9
	cfg.Wave.TriggerEngagement = 1000
	cfg.Hype.EntranceDurationSec = 1e9 // Actor stays off the field
	return cfg
}

func seatedStadium(sections, rows, cols int) *stadium.Stadium {
	var secs []*stadium.Section
	var id uint64 = 1
	for i := 0; i < sections; i++ {
		sec := stadium.NewSection(string(rune('A'+i)), i, rows, cols)
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				sec.Place(&spectator.Spectator{
					ID:    spectator.ID(id),
					Row:   row,
					Col:   col,
					Stats: spectator.EngagementState{Happiness: 90, Thirst: 20, Attention: 80},
				})
				id++
			}
		}
		secs = append(secs, sec)
	}
	return stadium.FromSections(secs...)
}

func newTestSim(cfg *tuning.Tuning, sections, rows, cols int) *Simulation {
	st := seatedStadium(sections, rows, cols)
	rng := rand.New(rand.NewSource(42))
	actor := hype.NewActor(&cfg.Hype, st, parkedActor{}, rng)
	return NewSimulation(cfg, st, events.NewBus(), actor, rng, nil)
}

func TestClusterDecay_PhaseSchedule(t *testing.T) {
	cfg := quietCfg()
	cfg.Session.LengthSec = 1000
	cfg.ClusterDecay.BaseIntervalSec = 20
	s := newTestSim(cfg, 1, 2, 4)

	cases := []struct {
		now      float64
		interval float64
		rate     float64
	}{
		{now: 0, interval: 20, rate: 0.4},
		{now: 100, interval: 20, rate: 0.4}, // 10% elapsed: early
		{now: 300, interval: 14, rate: 0.7}, // exactly 30%: mid
		{now: 500, interval: 14, rate: 0.7}, // 50%: mid
		{now: 700, interval: 9, rate: 1.1},  // exactly 70%: late
		{now: 2000, interval: 9, rate: 1.1}, // past the end clamps to late
	}
	for _, c := range cases {
		if got := s.clusterDecayInterval(c.now); math.Abs(got-c.interval) > 1e-9 {
			t.Errorf("interval at now=%v: got %v want %v", c.now, got, c.interval)
		}
		if got := s.clusterDecayRate(c.now); got != c.rate {
			t.Errorf("rate at now=%v: got %v want %v", c.now, got, c.rate)
		}
	}
}

func TestClusterDecay_CappedAttentionLoss(t *testing.T) {
	cfg := quietCfg()
	cfg.ClusterDecay.BaseIntervalSec = 50
	cfg.ClusterDecay.Radius = 20 // Pool covers the whole section
	cfg.ClusterDecay.VarianceMin = 1
	cfg.ClusterDecay.VarianceMax = 1
	s := newTestSim(cfg, 1, 2, 4)

	// 100 seconds since the last event at the early rate: happiness loses
	// 0.4*100 = 40 points, attention would lose 2.5x that but hits the cap.
	s.clusterDecayCheck(100, 1)

	if s.stats.ClusterDecays != 1 {
		t.Fatalf("decays=%d want 1", s.stats.ClusterDecays)
	}
	// Eight spectators, cluster min 8: the whole section is hit.
	for _, sp := range s.Stadium.AllSpectators() {
		if sp.Stats.Happiness != 50 {
			t.Fatalf("happiness=%v want 50", sp.Stats.Happiness)
		}
		if sp.Stats.Attention != 55 {
			t.Fatalf("attention=%v want 55 (capped loss of 25)", sp.Stats.Attention)
		}
	}

	// Inside the interval nothing fires.
	s.clusterDecayCheck(120, 2)
	if s.stats.ClusterDecays != 1 {
		t.Fatal("second event fired inside the interval")
	}
}

func TestWaveLifecycle_CommandedWave(t *testing.T) {
	cfg := quietCfg()
	cfg.Wave.SectionTickStride = 1
	// Guaranteed participation: probability is 100 + section bonus.
	cfg.Participation.HappinessWeight = 0
	cfg.Participation.AttentionWeight = 0
	cfg.Participation.ThirstPenalty = 0
	cfg.Participation.StrengthModifier = 0
	cfg.Participation.BaseChance = 100
	s := newTestSim(cfg, 2, 2, 4)

	var kinds []events.Kind
	s.Bus.Subscribe(func(ev events.Event) { kinds = append(kinds, ev.Kind) })

	if err := s.CommandWave(wave.TypeNormal, "A"); err != nil {
		t.Fatalf("CommandWave: %v", err)
	}
	if err := s.CommandWave(wave.TypeNormal, "B"); err == nil {
		t.Fatal("expected error starting a wave over an active one")
	}
	if err := s.CommandWave(wave.TypeNormal, "Z"); err == nil {
		t.Fatal("expected error for unknown origin")
	}

	s.TickFrame(1) // Resolves A
	if s.active == nil || len(s.active.Results) != 1 {
		t.Fatal("wave should be mid-flight with one section resolved")
	}
	s.TickFrame(2) // Resolves B, completes

	if s.active != nil {
		t.Fatal("wave should be complete")
	}
	if len(s.completed) != 1 {
		t.Fatalf("completed=%d want 1", len(s.completed))
	}
	w := s.completed[0]
	if !w.IsSuccess() {
		t.Fatal("both sections maxed out; wave should succeed")
	}
	if got := w.Score(); got != 200 {
		t.Fatalf("score=%d want 200", got)
	}
	if s.stats.WavesSucceeded != 1 {
		t.Fatalf("succeeded=%d want 1", s.stats.WavesSucceeded)
	}
	if s.Hype.Streak != 1 {
		t.Fatalf("streak=%d want 1 after the success", s.Hype.Streak)
	}

	want := []events.Kind{
		events.KindWaveStarted,
		events.KindSectionResolved,
		events.KindSectionResolved,
		events.KindWaveSucceeded,
	}
	if len(kinds) != len(want) {
		t.Fatalf("event kinds %v want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("event[%d]=%s want %s", i, kinds[i], want[i])
		}
	}
}

func TestActiveWave_SnapshotIsDetached(t *testing.T) {
	cfg := quietCfg()
	cfg.Wave.SectionTickStride = 1
	cfg.Participation.HappinessWeight = 0
	cfg.Participation.AttentionWeight = 0
	cfg.Participation.ThirstPenalty = 0
	cfg.Participation.StrengthModifier = 0
	cfg.Participation.BaseChance = 100
	s := newTestSim(cfg, 2, 2, 4)

	if err := s.CommandWave(wave.TypeNormal, "A"); err != nil {
		t.Fatalf("CommandWave: %v", err)
	}

	snap := s.ActiveWave()
	if snap == nil || len(snap.Results) != 0 {
		t.Fatal("fresh wave snapshot should carry no results")
	}

	// Resolving a section on the tick path must not mutate the snapshot a
	// reader already holds.
	s.TickFrame(1)
	if len(snap.Results) != 0 {
		t.Fatal("tick mutation reached a previously taken snapshot")
	}
	if got := s.ActiveWave(); len(got.Results) != 1 {
		t.Fatalf("new snapshot results=%d want 1", len(got.Results))
	}
}

func TestTrigger_StartsWaveOnHighEngagement(t *testing.T) {
	cfg := quietCfg()
	cfg.Wave.TriggerIntervalSec = 0
	cfg.Wave.TriggerEngagement = 55 // Seated crowd averages 85
	s := newTestSim(cfg, 2, 2, 4)

	s.TickFrame(1)
	if s.active == nil {
		t.Fatal("trigger should have started a wave")
	}
	if s.active.Type != wave.TypeNormal {
		t.Fatalf("type=%s want normal with no hype streak", s.active.Type)
	}
}

func TestTrigger_BlockedByLowEngagement(t *testing.T) {
	cfg := quietCfg()
	cfg.Wave.TriggerIntervalSec = 0
	cfg.Wave.TriggerEngagement = 95
	s := newTestSim(cfg, 2, 2, 4)

	s.TickFrame(1)
	if s.active != nil {
		t.Fatal("engagement below threshold should not start a wave")
	}
}

func TestTrigger_CooldownAfterWave(t *testing.T) {
	cfg := quietCfg()
	cfg.Wave.SectionTickStride = 1
	cfg.Wave.TriggerIntervalSec = 0
	cfg.Wave.TriggerEngagement = 55
	cfg.Wave.CooldownSec = 1000
	cfg.Participation.BaseChance = 100
	cfg.Participation.HappinessWeight = 0
	cfg.Participation.AttentionWeight = 0
	cfg.Participation.ThirstPenalty = 0
	cfg.Participation.StrengthModifier = 0
	s := newTestSim(cfg, 2, 2, 4)

	s.TickFrame(1)
	if s.active == nil {
		t.Fatal("first wave should start")
	}
	s.TickFrame(2)
	s.TickFrame(3)
	if s.active != nil {
		t.Fatal("first wave should be done")
	}

	s.TickFrame(4)
	if s.active != nil {
		t.Fatal("cooldown should block the next trigger")
	}
}

func TestPickSection_SingleSection(t *testing.T) {
	s := newTestSim(quietCfg(), 1, 2, 4)
	if sec := s.pickSection(); sec == nil || sec.ID != "A" {
		t.Fatal("single-section stadium should pick its only section")
	}
}

func TestDeliverService(t *testing.T) {
	cfg := quietCfg()
	s := newTestSim(cfg, 1, 2, 4)

	if !s.DeliverService(spectator.ID(1), 15) {
		t.Fatal("service to a seated spectator should succeed")
	}
	sp := s.Stadium.AllSpectators()[0]
	if sp.Stats.Thirst != 5 {
		t.Fatalf("thirst=%v want 5 after refill", sp.Stats.Thirst)
	}
	if !sp.Stats.Frozen(spectator.StatThirst, 0) {
		t.Fatal("thirst should be frozen after service")
	}
	if !sp.Stats.Frozen(spectator.StatHappiness, 0) {
		t.Fatal("happiness should be frozen after service")
	}

	if s.DeliverService(spectator.ID(9999), 15) {
		t.Fatal("unknown spectator should not be servable")
	}
}

func TestRequestService_DeliversAfterDelay(t *testing.T) {
	cfg := quietCfg()
	cfg.Engagement.ServiceDelaySec = 0.15 // Lands on the second tick
	s := newTestSim(cfg, 1, 2, 4)
	sp := s.Stadium.AllSpectators()[0]

	if err := s.RequestService(sp.ID, 15); err != nil {
		t.Fatalf("request for a seated spectator failed: %v", err)
	}
	if !sp.InTransaction {
		t.Fatal("spectator should be in-transaction while the vendor travels")
	}
	if err := s.RequestService(sp.ID, 15); err == nil {
		t.Fatal("second request while a vendor is en route should fail")
	}
	if err := s.RequestService(spectator.ID(9999), 15); err == nil {
		t.Fatal("request for an unknown spectator should fail")
	}

	s.TickFrame(1) // now=0.1, vendor still traveling
	if sp.Stats.Thirst != 20 {
		t.Fatalf("thirst=%v changed before the vendor arrived", sp.Stats.Thirst)
	}

	s.TickFrame(2) // now=0.2, vendor arrives
	if sp.Stats.Thirst != 5 {
		t.Fatalf("thirst=%v want 5 after delivery", sp.Stats.Thirst)
	}
	if sp.InTransaction {
		t.Fatal("transaction should be closed on delivery")
	}
	if !sp.Stats.Frozen(spectator.StatThirst, 0.2) {
		t.Fatal("thirst should be frozen after delivery")
	}
	if !sp.Stats.Frozen(spectator.StatHappiness, 0.2) {
		t.Fatal("happiness should be frozen after delivery")
	}

	// The queue is drained: a fresh request goes through again.
	if err := s.RequestService(sp.ID, 5); err != nil {
		t.Fatalf("request after delivery failed: %v", err)
	}
}
