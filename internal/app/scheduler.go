package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// StartScheduler registers the pipeline sweep on Config.Scheduler.PipelineCron
// (six fields, seconds first) and starts the cron runner. Runs stop when ctx
// is cancelled or StopScheduler is called.
func (a *App) StartScheduler(ctx context.Context) error {
	if a.scheduler != nil {
		return errors.New("scheduler already running")
	}
	spec := a.Config.Scheduler.PipelineCron
	if len(a.Config.Scheduler.Users) == 0 {
		return errors.New("scheduler has no users configured")
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(spec, func() { a.SweepPipeline(ctx) }); err != nil {
		return fmt.Errorf("register pipeline sweep %q: %w", spec, err)
	}
	c.Start()
	a.scheduler = c

	a.Logger.Info().
		Str("cron", spec).
		Int("users", len(a.Config.Scheduler.Users)).
		Msg("Scheduler: started")
	return nil
}

// StopScheduler stops the cron runner and waits for a running sweep to finish
func (a *App) StopScheduler() {
	if a.scheduler == nil {
		return
	}
	<-a.scheduler.Stop().Done()
	a.scheduler = nil
	a.Logger.Info().Msg("Scheduler: stopped")
}

// SweepPipeline runs the pipeline for every configured user in turn. A failed
// run is logged and the sweep moves on.
func (a *App) SweepPipeline(ctx context.Context) (succeeded, failed int) {
	start := time.Now()

	for _, userID := range a.Config.Scheduler.Users {
		if ctx.Err() != nil {
			a.Logger.Info().Msg("Scheduler: sweep cancelled")
			break
		}
		result, err := a.RunAgentPipeline(ctx, userID)
		if err != nil {
			failed++
			a.Logger.Warn().Str("user_id", userID).Err(err).Msg("Scheduler: pipeline run failed")
			continue
		}
		succeeded++
		a.Logger.Info().
			Str("user_id", userID).
			Str("run_id", result.RunID).
			Int("alerts", len(result.Notification)).
			Msg("Scheduler: pipeline run complete")
	}

	a.Logger.Info().
		Int("succeeded", succeeded).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduler: sweep complete")
	return succeeded, failed
}
