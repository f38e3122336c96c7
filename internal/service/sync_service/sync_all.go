package sync_service

import (
	"context"
	"errors"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/metrics"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
)

// SyncAll syncs every active student one after another, pausing FleetPacing
// between students. A failing student becomes a failed result entry. The run
// is detached from the cancellation of ctx and always covers every student.
// The returned error is non nil only when the students cannot be listed.
func (s *SyncService) SyncAll(ctx context.Context) (FleetSyncSummary, error) {
	ctx = context.WithoutCancel(ctx)

	students, err := s.DB.ListActiveStudents(ctx)
	if err != nil {
		err = spm_errors.HandleDBErrors(err, nil, "cannot list active students")
		return FleetSyncSummary{}, err
	}
	s.logger.Infof("starting fleet sync of %d students", len(students))

	summary := FleetSyncSummary{
		Total:   len(students),
		Results: make([]FleetSyncResult, 0, len(students)),
	}

	for i, student := range students {
		if i > 0 {
			time.Sleep(s.FleetPacing)
		}

		result := FleetSyncResult{
			StudentID: student.ID,
			Handle:    student.CodeforcesHandle,
		}

		outcome, err := s.SyncOne(ctx, student.ID, student.CodeforcesHandle)
		if err != nil {
			var syncErr *SyncError
			if errors.As(err, &syncErr) {
				result.Error = syncErr.Err.Error()
			} else {
				result.Error = err.Error()
			}
			summary.Failed++
		} else {
			result.Success = true
			result.CurrentRating = outcome.CurrentRating
			result.MaxRating = outcome.MaxRating
			result.Synced = outcome.Synced
			summary.Successful++
		}
		summary.Results = append(summary.Results, result)
	}

	s.recordFleetRun(summary)
	s.logger.Infof(
		"fleet sync completed: %d successful, %d failed",
		summary.Successful,
		summary.Failed,
	)

	return summary, nil
}

func (s *SyncService) recordFleetRun(summary FleetSyncSummary) {
	metrics.FleetLastRunSuccessful.Set(float64(summary.Successful))
	metrics.FleetLastRunFailed.Set(float64(summary.Failed))
}
