package scheduler_service

import (
	"fmt"
	"strings"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
)

// Describe returns a human readable description of a known schedule.
func Describe(expr string) string {
	if d, ok := descriptions[expr]; ok {
		return d
	}
	return customDescription
}

// ValidateSchedule checks that expr is a standard 5 field cron expression.
func ValidateSchedule(expr string) error {
	if _, err := parser.Parse(strings.TrimSpace(expr)); err != nil {
		return fmt.Errorf("%w, %q, %w", spm_errors.ErrInvalidSchedule, expr, err)
	}
	return nil
}

func (s *Scheduler) GetSchedule() ScheduleInfo {
	s.scheduleLock.RLock()
	defer s.scheduleLock.RUnlock()

	return ScheduleInfo{
		Schedule:    s.schedule,
		IsRunning:   s.running,
		Description: Describe(s.schedule),
	}
}

// SetSchedule replaces the running schedule without restarting the runner.
// An invalid expression leaves the current schedule untouched.
func (s *Scheduler) SetSchedule(expr string) (ScheduleInfo, error) {
	expr = strings.TrimSpace(expr)
	sched, err := parser.Parse(expr)
	if err != nil {
		err = fmt.Errorf("%w, %q, %w", spm_errors.ErrInvalidSchedule, expr, err)
		s.logger.Warn(err)
		return ScheduleInfo{}, err
	}

	s.scheduleLock.Lock()
	old := s.schedule
	if s.running {
		s.cron.Remove(s.entryID)
	}
	s.entryID = s.cron.Schedule(sched, s.job)
	s.schedule = expr
	s.running = true
	s.scheduleLock.Unlock()

	if old != "" {
		s.logger.Infof("schedule changed from %q to %q", old, expr)
	}
	return s.GetSchedule(), nil
}
