package noshow

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler запускает Sweeper по cron-расписанию. Запуск пропускается, если предыдущий еще идет.
type Scheduler struct {
	cron    *cron.Cron
	sweeper *Sweeper
	timeout time.Duration
	logger  Logger
}

// NewScheduler создает планировщик. schedule - выражение cron или дескриптор вида "@every 1h".
func NewScheduler(sweeper *Sweeper, schedule string, timeout time.Duration, logger Logger) (*Scheduler, error) {
	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	s := &Scheduler{
		cron:    c,
		sweeper: sweeper,
		timeout: timeout,
		logger:  logger,
	}

	if _, err := c.AddFunc(schedule, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

// Start запускает планировщик в фоне
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("NoShowSweep: scheduler started")
}

// Stop останавливает планировщик и ждет завершения текущего запуска или отмены ctx
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("NoShowSweep: scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("NoShowSweep: scheduler stop timed out: %v", ctx.Err())
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.sweeper.RunOnce(ctx); err != nil {
		s.logger.Error("NoShowSweep: run failed: %v", err)
	}
}
