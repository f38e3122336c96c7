package scheduler_service

import (
	"context"
	"sync"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/reminder_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/sync_service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	schedulerServiceName = "scheduler_service"
	DefaultSchedule      = "0 2 * * *"
	DefaultTimezone      = "UTC"
	customDescription    = "Custom schedule"
)

var descriptions = map[string]string{
	"0 2 * * *":    "Daily at 2:00 AM",
	"0 */6 * * *":  "Every 6 hours",
	"0 0 */2 * *":  "Every 2 days at midnight",
	"0 1 * * 0":    "Weekly on Sunday at 1:00 AM",
	"*/30 * * * *": "Every 30 minutes",
}

// standard 5 field cron, no seconds and no descriptors
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

type FleetSyncer interface {
	SyncAll(ctx context.Context) (sync_service.FleetSyncSummary, error)
}

type InactivityChecker interface {
	CheckInactive(ctx context.Context) (reminder_service.InactivityResult, error)
}

// Scheduler periodically syncs every student and then mails the inactive
// ones. The schedule can be replaced at runtime.
type Scheduler struct {
	Fleet     FleetSyncer
	Reminders InactivityChecker
	Schedule  string
	Timezone  string

	cron *cron.Cron
	job  cron.Job
	ctx  context.Context

	// guards schedule and entryID
	scheduleLock sync.RWMutex
	schedule     string
	entryID      cron.EntryID
	running      bool
	lastRun      *RunResult
	logger       *logrus.Entry
}

type ScheduleInfo struct {
	Schedule    string `json:"schedule"`
	IsRunning   bool   `json:"isRunning"`
	Description string `json:"description"`
}

type UpdateScheduleRequest struct {
	Schedule string `json:"schedule" validate:"required,cron"`
}

type RunResult struct {
	Sync       sync_service.FleetSyncSummary     `json:"sync"`
	Reminders  reminder_service.InactivityResult `json:"reminders"`
	StartTime  time.Time                         `json:"startTime"`
	FinishTime time.Time                         `json:"finishTime"`
	Error      string                            `json:"error,omitempty"`
}
