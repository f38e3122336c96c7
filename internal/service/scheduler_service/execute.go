package scheduler_service

import (
	"context"
	"time"
)

// RunNow runs a fleet sync followed by the inactivity check and waits for
// both. It does not wait for, or block, a scheduled run.
func (s *Scheduler) RunNow(ctx context.Context) (RunResult, error) {
	s.logger.Info("running sync on demand")
	return s.run(ctx)
}

// LastRun is the result of the most recent completed run.
func (s *Scheduler) LastRun() (RunResult, bool) {
	s.scheduleLock.RLock()
	defer s.scheduleLock.RUnlock()
	if s.lastRun == nil {
		return RunResult{}, false
	}
	return *s.lastRun, true
}

func (s *Scheduler) scheduledRun() {
	s.logger.Info("running scheduled sync")
	if _, err := s.run(s.ctx); err != nil {
		s.logger.Errorf("scheduled sync failed, %v", err)
		return
	}
	s.logger.Info("scheduled sync completed")
}

// a failed fleet sync skips the inactivity check
func (s *Scheduler) run(ctx context.Context) (RunResult, error) {
	res := RunResult{StartTime: time.Now()}
	defer func() {
		res.FinishTime = time.Now()
		s.scheduleLock.Lock()
		last := res
		s.lastRun = &last
		s.scheduleLock.Unlock()
	}()

	summary, err := s.Fleet.SyncAll(ctx)
	res.Sync = summary
	if err != nil {
		res.Error = err.Error()
		return res, err
	}

	reminders, err := s.Reminders.CheckInactive(ctx)
	res.Reminders = reminders
	if err != nil {
		res.Error = err.Error()
		return res, err
	}

	return res, nil
}
