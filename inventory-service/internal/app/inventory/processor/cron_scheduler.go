package processor

import (
	"context"

	"inventory/pkg/logger"

	"github.com/robfig/cron/v3"
)

// cronLogger routes cron's own messages to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

// CronScheduler periodically rebuilds the dashboard snapshot from scratch,
// repairing any drift left by dropped events.
type CronScheduler struct {
	cron  *cron.Cron
	stats StatsRecomputer
}

func NewCronScheduler(stats StatsRecomputer) *CronScheduler {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)

	return &CronScheduler{
		cron:  c,
		stats: stats,
	}
}

// Start registers the repair job and runs it once immediately. schedule uses
// six fields, seconds first, or a descriptor such as "@every 10m".
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.repair(ctx, "Scheduled stats repair")
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Str("schedule", schedule).Msg("Cron scheduler started")

	s.repair(ctx, "Initial stats repair")
	return nil
}

func (s *CronScheduler) repair(ctx context.Context, what string) {
	snapshot, err := s.stats.Recompute(ctx)
	if err != nil {
		logger.Error().Err(err).Msg(what + " failed")
		return
	}
	logger.Info().
		Int64("total_products", snapshot.TotalProducts).
		Msg(what + " completed")
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
