package scheduler_service

import (
	"context"
	"fmt"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Start validates the configured schedule and starts the cron runner. ctx
// is passed to every scheduled run.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.Fleet == nil || s.Reminders == nil {
		panic("scheduler expects non-nil fleet syncer and inactivity checker")
	}
	s.logger = logrus.WithFields(
		logrus.Fields{
			"from": schedulerServiceName,
		},
	)

	if s.Schedule == "" {
		s.Schedule = DefaultSchedule
	}
	if s.Timezone == "" {
		s.Timezone = DefaultTimezone
	}

	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		err = fmt.Errorf("%w, unknown timezone %q, %w", spm_errors.ErrInvalidSchedule, s.Timezone, err)
		s.logger.Error(err)
		return err
	}

	cronLogger := cronLogger{logger: s.logger}
	s.ctx = ctx
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithParser(parser),
		cron.WithLogger(cronLogger),
	)
	s.job = cron.NewChain(
		cron.Recover(cronLogger),
		cron.SkipIfStillRunning(cronLogger),
	).Then(cron.FuncJob(s.scheduledRun))

	if _, err = s.SetSchedule(s.Schedule); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Infof("scheduler started with %q in %s", s.Schedule, s.Timezone)
	return nil
}

// Stop stops scheduling new runs and waits for a run in progress.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()

	s.scheduleLock.Lock()
	s.running = false
	s.scheduleLock.Unlock()
	s.logger.Info("scheduler stopped")
}

// cronLogger routes robfig/cron logs through logrus
type cronLogger struct {
	logger *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.WithFields(fields(keysAndValues)).Errorf("%s, %v", msg, err)
}

func fields(keysAndValues []any) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
