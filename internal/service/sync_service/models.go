package sync_service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/database"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/codeforces_service"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

const (
	syncServiceName = "sync_service"
	syncQueueName   = "sync_queue"

	stageContests    = "contests"
	stageSubmissions = "submissions"

	defaultSubmissionFetchCount = 10000
	defaultProblemRating        = 800
)

type CodeforcesClient interface {
	UserInfo(ctx context.Context, handle string) (codeforces_service.User, error)
	UserRating(ctx context.Context, handle string) ([]codeforces_service.RatingChange, error)
	UserStatus(ctx context.Context, handle string, from int, count int) ([]codeforces_service.Submission, error)
}

type SyncService struct {
	DB                   database.Querier
	CF                   CodeforcesClient
	FleetPacing          time.Duration
	SubmissionFetchCount int
	DefaultProblemRating int32
	Now                  func() time.Time
	logger               *logrus.Entry
}

type SyncOutcome struct {
	Handle        string `json:"handle"`
	CurrentRating int32  `json:"currentRating"`
	MaxRating     int32  `json:"maxRating"`
	Synced        bool   `json:"synced"`
}

// SyncError is returned by SyncOne when the profile of a student could not
// be fetched or stored. Err wraps the underlying sentinel.
type SyncError struct {
	StudentID uuid.UUID
	Handle    string
	Err       error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed for %s: %v", e.Handle, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

type FleetSyncResult struct {
	StudentID     uuid.UUID `json:"studentId"`
	Handle        string    `json:"handle"`
	Success       bool      `json:"success"`
	CurrentRating int32     `json:"currentRating,omitempty"`
	MaxRating     int32     `json:"maxRating,omitempty"`
	Synced        bool      `json:"synced,omitempty"`
	Error         string    `json:"error,omitempty"`
}

type FleetSyncSummary struct {
	Total      int               `json:"total"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	Results    []FleetSyncResult `json:"results"`
}

type TaskReason string

const (
	ReasonCreated       TaskReason = "student_created"
	ReasonHandleChanged TaskReason = "handle_changed"
)

type TaskState int

const (
	StateQueued TaskState = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s TaskState) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s TaskState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Task struct {
	TaskID    uuid.UUID  `json:"taskId"`
	StudentID uuid.UUID  `json:"studentId"`
	Handle    string     `json:"handle"`
	Reason    TaskReason `json:"reason"`
	QueueTime time.Time  `json:"queueTime"`
}

func (t Task) String() string {
	return fmt.Sprintf(
		"[TaskID=%s StudentID=%s Handle=%s Reason=%s QueueTime=%s]",
		t.TaskID, t.StudentID, t.Handle, t.Reason, t.QueueTime,
	)
}

// TaskOutcome is the observable result of a background sync.
type TaskOutcome struct {
	Task
	State      TaskState    `json:"state"`
	Outcome    *SyncOutcome `json:"outcome,omitempty"`
	Error      string       `json:"error,omitempty"`
	FinishTime time.Time    `json:"finishTime"`
}

type Syncer interface {
	SyncOne(ctx context.Context, studentID uuid.UUID, handle string) (SyncOutcome, error)
}

// Queue runs background syncs one at a time, in submission order.
type Queue struct {
	Syncer      Syncer
	QueueBuffer int
	CacheSize   int
	// Completed, when set, receives every outcome. The worker blocks on it
	// so it must be drained.
	Completed chan<- TaskOutcome

	tasks    chan Task
	outcomes *lru.Cache[uuid.UUID, TaskOutcome]
	// guards tasks against a send after close
	stateLock sync.RWMutex
	stopped   bool
	wg        sync.WaitGroup
	logger    *logrus.Entry
}
