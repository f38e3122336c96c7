package sync_service

import (
	"context"
	"fmt"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/metrics"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

const (
	defaultQueueBuffer = 100
	defaultCacheSize   = 512
)

// Start launches the worker. ctx bounds every sync the worker runs.
func (q *Queue) Start(ctx context.Context) error {
	if q.Syncer == nil {
		panic("sync queue expects non-nil syncer")
	}
	if q.QueueBuffer <= 0 {
		q.QueueBuffer = defaultQueueBuffer
	}
	if q.CacheSize <= 0 {
		q.CacheSize = defaultCacheSize
	}

	q.logger = logrus.WithFields(
		logrus.Fields{
			"from": syncQueueName,
		},
	)

	outcomes, err := lru.New[uuid.UUID, TaskOutcome](q.CacheSize)
	if err != nil {
		err = fmt.Errorf("%w, cannot create outcome cache, %w", spm_errors.ErrInternal, err)
		q.logger.Error(err)
		return err
	}
	q.outcomes = outcomes

	q.logger.Info("initializing sync queue with buffer size ", q.QueueBuffer)
	q.tasks = make(chan Task, q.QueueBuffer)

	q.wg.Add(1)
	go q.launch(ctx)
	return nil
}

// Submit enqueues a background sync without blocking. A full queue is
// reported with ErrQueueFull so the caller can log it.
func (q *Queue) Submit(studentID uuid.UUID, handle string, reason TaskReason) (Task, error) {
	task := Task{
		TaskID:    uuid.New(),
		StudentID: studentID,
		Handle:    handle,
		Reason:    reason,
		QueueTime: time.Now(),
	}

	q.stateLock.RLock()
	defer q.stateLock.RUnlock()

	if q.stopped || q.tasks == nil {
		return Task{}, fmt.Errorf("%w, cannot queue %v", spm_errors.ErrQueueStopped, task)
	}

	select {
	case q.tasks <- task:
		metrics.BackgroundQueueDepth.Set(float64(len(q.tasks)))
		q.outcomes.Add(studentID, TaskOutcome{Task: task, State: StateQueued})
		q.logger.Debugf("queued %v", task)
		return task, nil
	default:
		err := fmt.Errorf(
			"%w, dropping sync of %s, %d tasks pending",
			spm_errors.ErrQueueFull,
			handle,
			len(q.tasks),
		)
		q.logger.Warn(err)
		return Task{}, err
	}
}

// LastOutcome is the state of the most recent background sync of a student.
func (q *Queue) LastOutcome(studentID uuid.UUID) (TaskOutcome, bool) {
	if q.outcomes == nil {
		return TaskOutcome{}, false
	}
	return q.outcomes.Get(studentID)
}

// Stop closes the queue and waits for the pending tasks to finish.
func (q *Queue) Stop() {
	q.stateLock.Lock()
	if q.stopped || q.tasks == nil {
		q.stateLock.Unlock()
		return
	}
	q.stopped = true
	close(q.tasks)
	q.stateLock.Unlock()

	q.wg.Wait()
	q.logger.Info("sync queue stopped")
}

func (q *Queue) launch(ctx context.Context) {
	defer q.wg.Done()
	for task := range q.tasks {
		metrics.BackgroundQueueDepth.Set(float64(len(q.tasks)))
		q.execute(ctx, task)
	}
}

func (q *Queue) execute(ctx context.Context, task Task) {
	taskLogger := q.logger.WithFields(logrus.Fields{
		"task_id":    task.TaskID,
		"student_id": task.StudentID,
		"handle":     task.Handle,
		"reason":     task.Reason,
	})

	// a newer task may already have replaced the cached entry
	if current, ok := q.outcomes.Peek(task.StudentID); !ok || current.TaskID == task.TaskID {
		q.outcomes.Add(task.StudentID, TaskOutcome{Task: task, State: StateRunning})
	}

	res := TaskOutcome{Task: task}
	outcome, err := q.Syncer.SyncOne(ctx, task.StudentID, task.Handle)
	res.FinishTime = time.Now()
	if err != nil {
		res.State = StateFailed
		res.Error = err.Error()
		taskLogger.Errorf("background sync failed, %v", err)
	} else {
		res.State = StateCompleted
		res.Outcome = &outcome
		taskLogger.Info("background sync completed")
	}

	if current, ok := q.outcomes.Peek(task.StudentID); !ok || current.TaskID == task.TaskID {
		q.outcomes.Add(task.StudentID, res)
	}

	if q.Completed != nil {
		select {
		case q.Completed <- res:
		case <-ctx.Done():
		}
	}
}
