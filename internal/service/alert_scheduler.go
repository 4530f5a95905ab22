package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"cryptiq/config"
	"cryptiq/internal/strategy"
	"cryptiq/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ErrCycleRunning = errors.New("an alert cycle is already running")

type AlertScheduler interface {
	// Start runs a first cycle right away and then one per interval until
	// Stop is called or ctx ends.
	Start(ctx context.Context) error
	// Stop prevents new cycles and waits for the running one, at most one
	// cycle timeout.
	Stop()
	// RunOnce runs a single cycle now. It fails with ErrCycleRunning instead
	// of overlapping a cycle in progress.
	RunOnce(ctx context.Context) (strategy.JobResult, error)
}

type alertScheduler struct {
	cfg  *config.Config
	log  *logger.Logger
	job  strategy.JobExecutionStrategy
	cron *cron.Cron

	running sync.Mutex
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewAlertScheduler(cfg *config.Config, log *logger.Logger, job strategy.JobExecutionStrategy) AlertScheduler {
	cl := cronLogger{log: log}
	return &alertScheduler{
		cfg: cfg,
		log: log,
		job: job,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
}

func (s *alertScheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.cron.Schedule(cron.Every(s.cfg.Alert.Interval), cron.FuncJob(s.runScheduled))
	s.cron.Start()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runScheduled()
	}()

	s.log.Info("Alert scheduler started", logger.DurationField("interval", s.cfg.Alert.Interval))
	return nil
}

func (s *alertScheduler) Stop() {
	s.log.Info("Stopping alert scheduler...")
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("Alert scheduler stopped")
	case <-time.After(s.cfg.Alert.CycleTimeout):
		s.log.Warn("Timeout while waiting for alert cycle, cancelling it")
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *alertScheduler) runScheduled() {
	if s.ctx.Err() != nil {
		return
	}

	result, err := s.RunOnce(s.ctx)
	switch {
	case errors.Is(err, ErrCycleRunning):
		s.log.Debug("Alert cycle still running, skipping tick")
	case err != nil:
		s.log.ErrorContextWithAlert(s.ctx, "Alert cycle failed",
			logger.ErrorField(err),
			logger.IntField("exit_code", int(result.ExitCode)),
		)
	}
}

func (s *alertScheduler) RunOnce(ctx context.Context) (strategy.JobResult, error) {
	if !s.running.TryLock() {
		return strategy.JobResult{}, ErrCycleRunning
	}
	defer s.running.Unlock()

	return s.job.Execute(ctx)
}

// cronLogger adapts the zap logger to cron's key/value logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(kvFields(keysAndValues), logger.ErrorField(err))...)
}

func kvFields(keysAndValues []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, logger.Field(key, keysAndValues[i+1]))
	}
	return fields
}
