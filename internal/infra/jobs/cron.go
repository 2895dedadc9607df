package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"staybook/internal/app/schedule"
)

// Cron runs registered jobs with robfig/cron. Overlapping runs of the same
// job are skipped.
type Cron struct {
	cron    *cron.Cron
	timeout time.Duration
	logger  *slog.Logger
	ctx     context.Context
}

// New builds a scheduler whose jobs each get at most timeout to finish.
func New(ctx context.Context, timeout time.Duration, logger *slog.Logger) *Cron {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{logger}),
		cron.SkipIfStillRunning(cronLogger{logger}),
	))
	return &Cron{cron: c, timeout: timeout, logger: logger, ctx: ctx}
}

func (c *Cron) Register(name, spec string, job schedule.Job) error {
	_, err := c.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
		defer cancel()
		start := time.Now()
		if err := job(ctx); err != nil {
			c.logger.Warn("job failed", "job", name, "err", err)
			return
		}
		c.logger.Debug("job finished", "job", name, "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

func (c *Cron) Start() {
	c.cron.Start()
}

// Stop prevents new runs and waits for running jobs to return.
func (c *Cron) Stop() {
	<-c.cron.Stop().Done()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}

var _ schedule.Scheduler = (*Cron)(nil)
