// Command crowdsim runs the stadium crowd-engagement simulation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/crowdwave/internal/api"
	"github.com/talgya/crowdwave/internal/engine"
	"github.com/talgya/crowdwave/internal/entropy"
	"github.com/talgya/crowdwave/internal/events"
	"github.com/talgya/crowdwave/internal/hype"
	"github.com/talgya/crowdwave/internal/persistence"
	"github.com/talgya/crowdwave/internal/spectator"
	"github.com/talgya/crowdwave/internal/stadium"
	"github.com/talgya/crowdwave/internal/tuning"
	"github.com/talgya/crowdwave/internal/weather"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to tuning.yaml (empty = built-in defaults)")
		dbPath     = flag.String("db", "data/crowdwave.db", "SQLite database path")
		apiPort    = flag.Int("port", 8080, "HTTP API port")
		seedFlag   = flag.Int64("seed", 0, "simulation seed (0 = fetch from entropy source)")
		speed      = flag.Float64("speed", 1.0, "tick speed multiplier")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("crowdwave — stadium crowd-engagement simulation")

	// ── Tuning ────────────────────────────────────────────────────────
	cfg := tuning.Default()
	if *configPath != "" {
		loaded, err := tuning.Load(*configPath)
		if err != nil {
			slog.Error("failed to load tuning", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
		slog.Info("tuning loaded", "path", *configPath)
	}

	// ── Seed ──────────────────────────────────────────────────────────
	seed := *seedFlag
	if seed == 0 {
		seed = entropy.NewClient(os.Getenv("RANDOM_ORG_KEY")).SessionSeed()
	}
	rng := rand.New(rand.NewSource(seed))
	slog.Info("session seed", "seed", seed)

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(*dbPath), 0755)
	db, err := persistence.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", *dbPath)

	// ── Stadium & Crowd ───────────────────────────────────────────────
	spawner := spectator.NewSpawner(seed)
	st := stadium.New(cfg, spawner)
	slog.Info("stadium populated",
		"sections", len(st.Sections),
		"spectators", st.Population(),
	)

	// ── Hype Actor ────────────────────────────────────────────────────
	patrol := &patroller{sections: st.SectionIDs(), interval: 20 * time.Second, start: time.Now()}
	actor := hype.NewActor(&cfg.Hype, st, patrol, rng)

	// ── Simulation ────────────────────────────────────────────────────
	bus := events.NewBus()
	sim := engine.NewSimulation(cfg, st, bus, actor, rng, nil)
	sim.SetWaveSink(db)

	// ── Weather ───────────────────────────────────────────────────────
	if wc := weather.NewClient(os.Getenv("OPENWEATHER_KEY"), os.Getenv("STADIUM_LOCATION")); wc != nil {
		applyWeather := func() {
			cond, err := wc.Fetch()
			if err != nil {
				slog.Warn("weather fetch failed", "error", err)
				return
			}
			sim.SetWeather(weather.MapToCrowd(cond))
		}
		applyWeather()
		go func() {
			ticker := time.NewTicker(10 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				applyWeather()
			}
		}()
	}

	// Commentary hook: the dialogue collaborator consumes these same
	// notifications; here they land in the structured log.
	bus.Subscribe(func(ev events.Event) {
		slog.Info("event", "kind", ev.Kind, "section", ev.Section, "detail", ev.Detail)
	})

	// ── Engine ────────────────────────────────────────────────────────
	tickInterval := time.Duration(cfg.Session.TickMs) * time.Millisecond
	eng := engine.NewEngine(tickInterval)
	eng.Speed = *speed
	eng.MaxTicks = uint64(cfg.Session.LengthSec / tickInterval.Seconds())
	eng.OnTick = sim.TickFrame

	// ── API ───────────────────────────────────────────────────────────
	server := &api.Server{
		Sim:      sim,
		Eng:      eng,
		Bus:      bus,
		DB:       db,
		Port:     *apiPort,
		AdminKey: os.Getenv("CROWDWAVE_ADMIN_KEY"),
	}
	server.Start()

	// Periodic stat snapshots, off the tick goroutine.
	snapshotEvery := time.Duration(float64(cfg.Session.SnapshotTicks)) * tickInterval
	go func() {
		ticker := time.NewTicker(snapshotEvery)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.SaveSnapshot(sim.CurrentTick(), sim.Stats()); err != nil {
				slog.Error("snapshot save failed", "error", err)
			}
		}
	}()

	// ── Signals ───────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, stopping", "signal", sig)
		eng.Stop()
	}()

	eng.Run()

	// Final snapshot and session summary.
	stats := sim.Stats()
	if err := db.SaveSnapshot(sim.CurrentTick(), stats); err != nil {
		slog.Error("final snapshot failed", "error", err)
	}
	db.SetMeta("last_seed", strconv.FormatInt(seed, 10))
	db.SetMeta("last_tick", strconv.FormatUint(sim.CurrentTick(), 10))

	slog.Info("session complete",
		"waves", stats.WavesStarted,
		"succeeded", stats.WavesSucceeded,
		"failed", stats.WavesFailed,
		"score", stats.TotalScore,
		"ultimates", stats.UltimatesFired,
	)
	fmt.Println("session over")
}

// patroller is a stand-in for the external movement collaborator: the
// actor walks the sections in order, switching on a fixed cadence.
type patroller struct {
	sections []string
	interval time.Duration
	start    time.Time
}

func (p *patroller) Position() (string, int, int) {
	if len(p.sections) == 0 {
		return "", -1, -1
	}
	idx := int(time.Since(p.start)/p.interval) % len(p.sections)
	return p.sections[idx], 0, 0
}
