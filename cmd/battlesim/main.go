// Package main provides the headless battle simulator: it loads content and a
// map, then lets the party autopilot fight the enemies on it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/content"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/overworld"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/scripting"
	"github.com/cory-johannsen/skirmish/internal/telemetry"
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

// realMain runs the simulator and returns the exit code once every deferred
// shutdown has run.
func realMain(args []string) int {
	fs := flag.NewFlagSet("battlesim", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to configuration file; empty uses defaults")
	battles := fs.Int("battles", 1, "battles to fight; 0 fights until the map is clear or the party falls")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Not fatal: variables may be set directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("loading config: %v", err)
		return 2
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Printf("initializing logger: %v", err)
		return 2
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.Warn("telemetry disabled", zap.Error(err))
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("shutting down telemetry", zap.Error(err))
			}
		}()
	}

	sim, scene, cleanup, err := build(cfg, logger)
	if err != nil {
		logger.Error("initializing simulator", zap.Error(err))
		return 2
	}
	defer cleanup()

	return run(ctx, sim, scene, *battles)
}

// build wires content, scripts, dice and the map from cfg.
func build(cfg config.Config, logger *zap.Logger) (*simulator, *overworld.Scene, func(), error) {
	tables := content.Default()
	if cfg.Content.Dir != "" {
		var err error
		if tables, err = content.LoadDir(cfg.Content.Dir); err != nil {
			return nil, nil, nil, err
		}
	}

	var src dice.Source = dice.NewCryptoSource()
	if cfg.Sim.Seed != 0 {
		src = dice.NewSeededSource(cfg.Sim.Seed)
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		src = dice.NewLoggedSource(src, logger)
	}

	cleanup := func() {}
	var opts []ai.Option
	if cfg.Content.ScriptsDir != "" {
		mgr := scripting.NewManager(src, logger)
		scopes, err := mgr.LoadTree(cfg.Content.ScriptsDir, cfg.Content.InstructionLimit)
		if err != nil {
			mgr.Close()
			return nil, nil, nil, err
		}
		logger.Info("scripts loaded", zap.Strings("scopes", scopes))
		opts = append(opts, ai.WithFilter(ai.NewScriptedPreconditions(mgr, logger)))
		cleanup = mgr.Close
	}

	var (
		scene *overworld.Scene
		err   error
	)
	if cfg.Content.Map != "" {
		scene, err = overworld.LoadScene(cfg.Content.Map, tables, src, cfg.Battle.ApproachStep, logger)
	} else {
		scene, err = overworld.DefaultScene(tables, src, cfg.Battle.ApproachStep, logger)
	}
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	sim := &simulator{
		cfg:    cfg,
		tables: tables,
		src:    src,
		enemy:  ai.NewRandomPolicy(tables, src, opts...),
		pilot:  ai.NewAutopilot(ai.NewRandomPolicy(tables, src, opts...), logger),
		logger: logger,
		tracer: telemetry.Tracer("battlesim"),
	}
	return sim, scene, cleanup, nil
}

// run fights up to n battles and returns the process exit code.
func run(ctx context.Context, sim *simulator, scene *overworld.Scene, n int) int {
	for i := 0; n <= 0 || i < n; i++ {
		out, err := sim.fight(ctx, scene)
		if errors.Is(err, errNoEnemies) {
			fmt.Println("The map is clear.")
			return 0
		}
		if out.ID != "" {
			printOutcome(out)
		}
		if err != nil {
			sim.logger.Error("battle aborted", zap.Error(err))
			return 2
		}
		if out.State == combat.StateDefeat {
			return 1
		}
		if ctx.Err() != nil {
			return 2
		}
	}
	return 0
}

func printOutcome(out outcome) {
	fmt.Printf("== battle %s (%s) ==\n", out.ID, out.Trigger)
	for _, line := range out.Log {
		fmt.Println(line)
	}
	fmt.Printf("-- %s after %s\n", out.State, out.Elapsed)
}
