// Command ecosim runs a grid ecosystem simulation: organisms stage movement
// proposals every tick, conflicts are resolved, and the grid commits
// atomically. State is observable over HTTP and a websocket live feed.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huokedu/ecosystem/internal/api"
	"github.com/huokedu/ecosystem/internal/engine"
	"github.com/huokedu/ecosystem/internal/organism"
	"github.com/huokedu/ecosystem/internal/scenario"
)

func main() {
	var (
		scenarioPath = flag.String("scenario", "", "scenario YAML file (empty = built-in meadow)")
		seed         = flag.Int64("seed", 0, "override the scenario seed (0 = keep)")
		ticks        = flag.Uint64("ticks", 0, "stop after this many ticks (0 = scenario value)")
		interval     = flag.Duration("interval", 0, "tick interval (0 = scenario value)")
		port         = flag.Int("port", 8080, "HTTP API port (0 = disabled)")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	sc := scenario.Default()
	if *scenarioPath != "" {
		loaded, err := scenario.Load(*scenarioPath)
		if err != nil {
			slog.Error("failed to load scenario", "error", err)
			os.Exit(1)
		}
		sc = loaded
	}
	if *seed != 0 {
		sc.Seed = *seed
	}
	if *ticks != 0 {
		sc.Ticks = *ticks
	}
	if *interval != 0 {
		sc.TickInterval = *interval
	}
	if sc.TickInterval <= 0 {
		sc.TickInterval = 250 * time.Millisecond
	}

	g, orgs, usedSeed, err := scenario.Build(sc)
	if err != nil {
		slog.Error("failed to build scenario", "error", err)
		os.Exit(1)
	}

	plants, animals := 0, 0
	for _, o := range orgs {
		if o.Kind == organism.KindPlant {
			plants++
		} else {
			animals++
		}
	}
	slog.Info("world ready",
		"scenario", sc.Name,
		"grid", fmt.Sprintf("%dx%d", sc.Width, sc.Height),
		"seed", usedSeed,
		"plants", plants,
		"animals", animals,
	)

	sim := engine.NewSimulation(g, orgs)
	sim.Handlers = engine.DefaultHandlers()

	eng := engine.NewEngine()
	eng.Interval = sc.TickInterval
	eng.MaxTicks = sc.Ticks

	var server *api.Server
	if *port > 0 {
		server = &api.Server{Eng: eng, Port: *port}
		server.Publish(sim)
		server.Start()
	}

	eng.OnTick = func(tick uint64) {
		sim.Step(tick)
		if server != nil {
			server.Publish(sim)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("%s: %d organisms on a %dx%d grid (seed %d)\n",
		sc.Name, len(orgs), sc.Width, sc.Height, usedSeed)
	if *port > 0 {
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", *port)
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	slog.Info("simulation finished",
		"ticks", eng.Tick,
		"alive", sim.Stats.Alive,
		"deaths", sim.Stats.Deaths,
		"conflicts_resolved", sim.Stats.ConflictsResolved,
	)
}
