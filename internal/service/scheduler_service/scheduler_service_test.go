package scheduler_service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/reminder_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/sync_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	"github.com/sirupsen/logrus"
)

func TestMain(m *testing.M) {
	logrus.SetLevel(logrus.FatalLevel)
	os.Exit(m.Run())
}

type fakeFleet struct {
	mu    sync.Mutex
	calls int
	err   error
	ran   chan struct{}
}

func (f *fakeFleet) SyncAll(ctx context.Context) (sync_service.FleetSyncSummary, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.ran != nil {
		select {
		case f.ran <- struct{}{}:
		default:
		}
	}
	if f.err != nil {
		return sync_service.FleetSyncSummary{}, f.err
	}
	return sync_service.FleetSyncSummary{Total: 3, Successful: 2, Failed: 1}, nil
}

type fakeReminders struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeReminders) CheckInactive(ctx context.Context) (reminder_service.InactivityResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return reminder_service.InactivityResult{TotalInactive: 2, EmailsSent: 1}, nil
}

func newScheduler(t *testing.T, fleet *fakeFleet, schedule string) (*Scheduler, *fakeReminders) {
	t.Helper()
	reminders := &fakeReminders{}
	s := &Scheduler{
		Fleet:     fleet,
		Reminders: reminders,
		Schedule:  schedule,
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("cannot start scheduler: %v", err)
	}
	t.Cleanup(s.Stop)
	return s, reminders
}

func TestStartUsesDefaultSchedule(t *testing.T) {
	s, _ := newScheduler(t, &fakeFleet{}, "")

	info := s.GetSchedule()
	if info.Schedule != DefaultSchedule || !info.IsRunning {
		t.Errorf("unexpected schedule info %+v", info)
	}
	if info.Description != "Daily at 2:00 AM" {
		t.Errorf("unexpected description %q", info.Description)
	}
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	cases := []*Scheduler{
		{Schedule: "not a cron"},
		{Schedule: "0 2 * * *", Timezone: "Mars/Olympus"},
	}
	for _, c := range cases {
		c.Fleet = &fakeFleet{}
		c.Reminders = &fakeReminders{}
		if err := c.Start(context.Background()); !errors.Is(err, spm_errors.ErrInvalidSchedule) {
			t.Errorf("%q in %q: expected ErrInvalidSchedule, got %v", c.Schedule, c.Timezone, err)
		}
	}
}

func TestSetSchedule(t *testing.T) {
	s, _ := newScheduler(t, &fakeFleet{}, DefaultSchedule)

	info, err := s.SetSchedule("0 */6 * * *")
	if err != nil {
		t.Fatal(err)
	}
	if info.Schedule != "0 */6 * * *" || info.Description != "Every 6 hours" {
		t.Errorf("unexpected schedule info %+v", info)
	}
	if n := len(s.cron.Entries()); n != 1 {
		t.Errorf("expected a single cron entry, got %d", n)
	}

	info, err = s.SetSchedule("15 3 * * 1-5")
	if err != nil {
		t.Fatal(err)
	}
	if info.Description != customDescription {
		t.Errorf("expected custom description, got %q", info.Description)
	}
}

func TestSetScheduleKeepsCurrentOnInvalidExpression(t *testing.T) {
	s, _ := newScheduler(t, &fakeFleet{}, DefaultSchedule)

	for _, expr := range []string{"", "every day", "0 2 * *", "0 0 2 * * *", "61 * * * *"} {
		if _, err := s.SetSchedule(expr); !errors.Is(err, spm_errors.ErrInvalidSchedule) {
			t.Errorf("%q: expected ErrInvalidSchedule, got %v", expr, err)
		}
	}
	if got := s.GetSchedule().Schedule; got != DefaultSchedule {
		t.Errorf("schedule changed to %q", got)
	}
}

func TestRunNowSyncsThenChecksInactivity(t *testing.T) {
	fleet := &fakeFleet{}
	s, reminders := newScheduler(t, fleet, DefaultSchedule)

	res, err := s.RunNow(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Sync.Total != 3 || res.Reminders.EmailsSent != 1 {
		t.Errorf("unexpected run result %+v", res)
	}
	if fleet.calls != 1 || reminders.calls != 1 {
		t.Errorf("expected one call each, got fleet %d reminders %d", fleet.calls, reminders.calls)
	}

	last, ok := s.LastRun()
	if !ok || last.Sync.Total != 3 || last.FinishTime.Before(last.StartTime) {
		t.Errorf("unexpected last run %+v", last)
	}
}

func TestRunNowSkipsRemindersWhenSyncFails(t *testing.T) {
	fleet := &fakeFleet{err: spm_errors.ErrPersistence}
	s, reminders := newScheduler(t, fleet, DefaultSchedule)

	res, err := s.RunNow(context.Background())
	if !errors.Is(err, spm_errors.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if reminders.calls != 0 {
		t.Errorf("reminders must not run after a failed sync, got %d calls", reminders.calls)
	}
	if res.Error == "" {
		t.Error("expected the error in the run result")
	}
}

func TestScheduledRunUsesStartContext(t *testing.T) {
	fleet := &fakeFleet{ran: make(chan struct{}, 1)}
	s, reminders := newScheduler(t, fleet, DefaultSchedule)

	s.scheduledRun()
	select {
	case <-fleet.ran:
	default:
		t.Fatal("scheduled run did not sync the fleet")
	}
	if reminders.calls != 1 {
		t.Errorf("expected reminders after the scheduled sync, got %d calls", reminders.calls)
	}
	if _, ok := s.LastRun(); !ok {
		t.Error("expected the scheduled run to be recorded")
	}
}

func TestDescribe(t *testing.T) {
	cases := map[string]string{
		"0 2 * * *":    "Daily at 2:00 AM",
		"*/30 * * * *": "Every 30 minutes",
		"0 1 * * 0":    "Weekly on Sunday at 1:00 AM",
		"5 4 * * *":    customDescription,
	}
	for expr, want := range cases {
		if got := Describe(expr); got != want {
			t.Errorf("%q: expected %q, got %q", expr, want, got)
		}
	}
}
