// Voodoo Quality - Perfume Catalog Data Quality Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/voodoo-quality

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/voodoo-quality/internal/config"
	"github.com/tomtom215/voodoo-quality/internal/dashboard"
	"github.com/tomtom215/voodoo-quality/internal/logging"
	"github.com/tomtom215/voodoo-quality/internal/metrics"
	"github.com/tomtom215/voodoo-quality/internal/models"
)

// DefaultSpec regenerates statistics at 03:00 every night.
const DefaultSpec = "0 3 * * *"

// Refresher runs a refresh for one timeframe and waits for it.
type Refresher interface {
	RefreshTimeframe(ctx context.Context, tf models.Timeframe, force bool) dashboard.View
}

// Scheduler periodically asks the catalog to regenerate its statistics so the
// first dashboard visit after the run is served warm. Each run goes through
// the forced refresh path, which also updates the normal cache entries.
type Scheduler struct {
	spec       string
	schedule   cron.Schedule
	timeframes []models.Timeframe
	refresher  Refresher
	logger     zerolog.Logger
}

// New validates cfg and creates a Scheduler. An empty cron spec uses
// DefaultSpec and an empty timeframe list means every timeframe.
func New(cfg *config.SchedulerConfig, refresher Refresher) (*Scheduler, error) {
	spec := cfg.Cron
	if spec == "" {
		spec = DefaultSpec
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	timeframes := models.Timeframes()
	if len(cfg.Timeframes) > 0 {
		timeframes = make([]models.Timeframe, 0, len(cfg.Timeframes))
		for _, s := range cfg.Timeframes {
			tf, err := models.ParseTimeframe(s)
			if err != nil {
				return nil, fmt.Errorf("scheduler timeframes: %w", err)
			}
			timeframes = append(timeframes, tf)
		}
	}

	return &Scheduler{
		spec:       spec,
		schedule:   schedule,
		timeframes: timeframes,
		refresher:  refresher,
		logger:     logging.WithComponent("scheduler"),
	}, nil
}

// Timeframes returns the timeframes refreshed on every run.
func (s *Scheduler) Timeframes() []models.Timeframe {
	return append([]models.Timeframe(nil), s.timeframes...)
}

// Next returns the first run time after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// RunOnce force-refreshes every configured timeframe in order and returns the
// number that failed.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(ctx)
	start := time.Now()
	failed := 0

	for _, tf := range s.timeframes {
		if ctx.Err() != nil {
			break
		}
		view := s.refresher.RefreshTimeframe(ctx, tf, true)
		switch {
		case view.Error != nil:
			failed++
			metrics.ScheduledRefreshes.WithLabelValues(tf.String(), "failure").Inc()
			log.Warn().Str("timeframe", tf.String()).Str("error", *view.Error).Msg("Scheduled refresh failed")
		case view.Loading:
			failed++
			metrics.ScheduledRefreshes.WithLabelValues(tf.String(), "timeout").Inc()
			log.Warn().Str("timeframe", tf.String()).Msg("Scheduled refresh still loading at shutdown")
		default:
			metrics.ScheduledRefreshes.WithLabelValues(tf.String(), "success").Inc()
		}
	}

	log.Info().
		Int("timeframes", len(s.timeframes)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Scheduled refresh run finished")
	return failed
}

// Serve runs the cron loop until ctx is canceled, then waits for a running
// job to finish. It implements suture.Service.
func (s *Scheduler) Serve(ctx context.Context) error {
	c := cron.New(cron.WithLogger(cronLogger{logger: s.logger}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger: s.logger})))
	c.Schedule(s.schedule, cron.FuncJob(func() { s.RunOnce(ctx) }))
	c.Start()

	s.logger.Info().
		Str("cron", s.spec).
		Time("next_run", s.Next(time.Now())).
		Msg("Scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
	return ctx.Err()
}

// String implements fmt.Stringer for suture logging.
func (s *Scheduler) String() string {
	return "scheduler"
}

// cronLogger routes cron's internal logging to zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
