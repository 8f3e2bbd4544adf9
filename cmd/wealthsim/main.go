// Command wealthsim runs the Boltzmann wealth-exchange simulation service.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/talgya/wealthsim/internal/api"
	"github.com/talgya/wealthsim/internal/config"
	"github.com/talgya/wealthsim/internal/engine"
	"github.com/talgya/wealthsim/internal/entropy"
	"github.com/talgya/wealthsim/internal/model"
	"github.com/talgya/wealthsim/internal/persistence"
	"github.com/talgya/wealthsim/internal/snapshot"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	// Pin the seed now so the whole run (and its metadata) shares one value.
	seed := cfg.Seed
	if seed == 0 {
		seed = entropy.Seed()
		slog.Info("no seed configured, drew one", "seed", seed)
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	mcfg := model.Config{
		Agents:     cfg.Agents,
		GridWidth:  cfg.GridWidth,
		GridHeight: cfg.GridHeight,
		Torus:      cfg.Torus,
		Seed:       seed,
		Placement:  model.Placement(cfg.Placement),
		Backing:    model.Backing(cfg.Backing),
	}

	// ── Load or Create Model ──────────────────────────────────────────
	var sim *engine.Simulation
	var startTick uint64

	if db.HasState() {
		slog.Info("found saved state, restoring...")

		agents, err := db.LoadAgents()
		if err != nil {
			slog.Error("failed to load agents", "error", err)
			os.Exit(1)
		}
		if tickStr, err := db.GetMeta("last_tick"); err == nil {
			if t, err := strconv.ParseUint(tickStr, 10, 64); err == nil {
				startTick = t
			}
		}

		m, err := model.Restore(mcfg, agents, startTick)
		if err != nil {
			slog.Error("failed to restore model", "error", err)
			os.Exit(1)
		}
		sim = engine.NewSimulationFrom(m)

		slog.Info("state restored",
			"agents", len(agents),
			"tick", startTick,
			"total_wealth", sim.TotalWealth(),
		)
	} else {
		slog.Info("no saved state, creating new model...",
			"agents", cfg.Agents,
			"grid", fmt.Sprintf("%dx%d", cfg.GridWidth, cfg.GridHeight),
			"torus", cfg.Torus,
			"placement", cfg.Placement,
		)

		sim, err = engine.NewSimulation(mcfg)
		if err != nil {
			slog.Error("failed to create model", "error", err)
			os.Exit(1)
		}
	}

	// Persist the baseline record (tick 0 on a fresh run).
	if err := db.InsertMetric(sim.RunID(), sim.Latest()); err != nil {
		slog.Error("baseline metric save failed", "error", err)
	}

	// ── Engine ────────────────────────────────────────────────────────
	hub := api.NewHub()

	eng := engine.NewEngine()
	eng.Tick = startTick
	eng.Interval = cfg.TickInterval()
	eng.MaxTicks = cfg.MaxTicks

	eng.OnTick = func(tick uint64) {
		rec := sim.AdvanceTick()

		if err := db.InsertMetric(sim.RunID(), rec); err != nil {
			slog.Error("metric save failed", "tick", rec.Tick, "error", err)
		}

		hub.Broadcast(api.Frame{
			Tick:       rec.Tick,
			Gini:       rec.Gini,
			Portrayals: sim.Portrayals(),
		})

		if cfg.SaveEveryTicks > 0 && tick%cfg.SaveEveryTicks == 0 {
			saveState(db, sim)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.Env.AdminKey == "" {
		slog.Warn("WEALTHSIM_ADMIN_KEY not set — control endpoints will be disabled")
	}

	apiServer := &api.Server{
		Sim:         sim,
		Eng:         eng,
		DB:          db,
		Hub:         hub,
		Port:        cfg.APIPort,
		AdminKey:    cfg.Env.AdminKey,
		CORSOrigins: cfg.Env.CORSOrigins,
		SnapshotDir: cfg.SnapshotDir,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("wealthsim: %d agents on a %dx%d grid (seed %d)\n",
		cfg.Agents, cfg.GridWidth, cfg.GridHeight, seed)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	if startTick > 0 {
		fmt.Printf("Resuming from tick %d\n", startTick)
	}

	eng.Run()

	// Final save and history export on shutdown.
	slog.Info("final save...")
	saveState(db, sim)

	scfg := sim.Config()
	path, err := snapshot.Write(cfg.SnapshotDir, snapshot.HistoryV1{
		RunID:   sim.RunID(),
		Seed:    scfg.Seed,
		Agents:  scfg.Agents,
		Ticks:   sim.Tick(),
		Records: sim.Records(),
	})
	if err != nil {
		slog.Error("history export failed", "error", err)
	} else {
		slog.Info("history exported", "path", path)
	}

	fmt.Println("Simulation stopped. State saved.")
}

func saveState(db *persistence.DB, sim *engine.Simulation) {
	agents, tick := sim.Snapshot()
	if err := db.SaveAgents(agents); err != nil {
		slog.Error("agent save failed", "error", err)
		return
	}
	if err := db.SetMeta("last_tick", strconv.FormatUint(tick, 10)); err != nil {
		slog.Error("meta save failed", "error", err)
	}
	if err := db.SetMeta("run_id", sim.RunID()); err != nil {
		slog.Error("meta save failed", "error", err)
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
