package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/content"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/loop"
	"github.com/cory-johannsen/skirmish/internal/game/overworld"
	"github.com/cory-johannsen/skirmish/internal/observability"
)

var (
	errNoEnemies = errors.New("no enemies left on the map")
	errTimedOut  = errors.New("battle did not finish in time")
)

// outcome summarizes one finished battle.
type outcome struct {
	ID       string
	Trigger  string
	State    combat.State
	Rewards  combat.Rewards
	Elapsed  time.Duration
	Log      []string
	Defeated []string
}

// simulator fights battles on a scene with both sides on autopilot.
type simulator struct {
	cfg    config.Config
	tables *content.Tables
	src    dice.Source
	enemy  *ai.RandomPolicy
	pilot  *ai.Autopilot
	logger *zap.Logger
	tracer trace.Tracer
}

// fight runs one battle against the enemy nearest to the player and hands
// the result back to the scene.
func (s *simulator) fight(ctx context.Context, scene *overworld.Scene) (outcome, error) {
	trigger := scene.NearestEnemy()
	if trigger == nil {
		return outcome{}, errNoEnemies
	}
	setup, err := scene.StartBattle(trigger)
	if err != nil {
		return outcome{}, fmt.Errorf("starting battle: %w", err)
	}

	out := outcome{ID: uuid.NewString(), Trigger: trigger.ID()}
	ctx, span := s.tracer.Start(ctx, "battle", trace.WithAttributes(
		attribute.String("battle.id", out.ID),
		attribute.String("battle.trigger", trigger.ID()),
		attribute.String("battle.trigger_type", trigger.Type),
		attribute.String("battle.formation", setup.Squads[0].Formation.ID),
	))
	defer span.End()

	engine, err := combat.NewEngine(combat.Deps{
		Settings:  s.cfg.Battle.Settings(),
		Tables:    s.tables,
		Policy:    s.enemy,
		Source:    s.src,
		Overworld: scene,
		Logger:    observability.BattleLogger(s.logger, out.ID, trigger.ID()),
	})
	if err != nil {
		scene.EndBattle(nil, false)
		span.SetStatus(codes.Error, err.Error())
		return outcome{}, err
	}
	engine.OnTransition(func(from, to combat.State) {
		span.AddEvent("transition", trace.WithAttributes(
			attribute.String("from", from.String()),
			attribute.String("to", to.String()),
		))
	})
	engine.Init(setup)

	update := func(delta time.Duration) bool {
		if _, err := s.pilot.Act(engine); err != nil {
			s.logger.Warn("autopilot command rejected", zap.Error(err))
		}
		engine.Update(delta)
		out.Elapsed += delta
		return !engine.State().Terminal()
	}

	if s.cfg.Sim.Realtime {
		err = s.runRealtime(ctx, update)
	} else {
		ticker := loop.New(s.cfg.Sim.Tick, s.cfg.Battle.DeltaCap)
		if _, done := loop.Simulate(ticker.Clamp(s.cfg.Sim.Tick), s.cfg.Sim.MaxDuration, update); !done {
			err = errTimedOut
		}
	}

	out.State = engine.State()
	out.Rewards = engine.Rewards()
	out.Log = engine.Log()
	out.Defeated = engine.DefeatedOverworldIDs()
	scene.EndBattle(out.Defeated, out.State == combat.StateVictory)

	span.SetAttributes(
		attribute.String("battle.outcome", out.State.String()),
		attribute.Int("battle.exp", out.Rewards.Exp),
		attribute.Int("battle.gold", out.Rewards.Gold),
		attribute.Int64("battle.elapsed_ms", out.Elapsed.Milliseconds()),
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}
	s.logger.Info("battle finished",
		zap.String("battle_id", out.ID),
		zap.Stringer("outcome", out.State),
		zap.Duration("elapsed", out.Elapsed),
		zap.Int("exp", out.Rewards.Exp),
		zap.Int("gold", out.Rewards.Gold),
	)
	return out, nil
}

func (s *simulator) runRealtime(ctx context.Context, update loop.UpdateFunc) error {
	if s.cfg.Sim.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Sim.MaxDuration)
		defer cancel()
	}
	err := loop.New(s.cfg.Sim.Tick, s.cfg.Battle.DeltaCap).Run(ctx, update)
	if errors.Is(err, context.DeadlineExceeded) {
		return errTimedOut
	}
	return err
}
