package sync_service

import (
	"context"
	"fmt"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/database"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/metrics"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SyncOne pulls the profile, contest history and submissions of a student.
// Only a failure to fetch or store the profile fails the sync, and even then
// lastSynced is updated before the error is returned.
func (s *SyncService) SyncOne(ctx context.Context, studentID uuid.UUID, handle string) (SyncOutcome, error) {
	start := time.Now()
	logger := s.logger.WithFields(logrus.Fields{
		"handle":     handle,
		"student_id": studentID,
	})
	logger.Info("syncing student")

	outcome, err := s.syncProfile(ctx, studentID, handle)
	if err != nil {
		s.touchLastSynced(ctx, studentID, logger)
		metrics.StudentSyncs.WithLabelValues("failure").Inc()
		metrics.StudentSyncDuration.Observe(time.Since(start).Seconds())
		logger.Errorf("sync failed, %v", err)
		return SyncOutcome{}, &SyncError{StudentID: studentID, Handle: handle, Err: err}
	}

	if err = s.syncContests(ctx, studentID, handle); err != nil {
		s.stageFailed(logger, stageContests, err)
	}
	if err = s.syncSubmissions(ctx, studentID, handle); err != nil {
		s.stageFailed(logger, stageSubmissions, err)
	}

	metrics.StudentSyncs.WithLabelValues("success").Inc()
	metrics.StudentSyncDuration.Observe(time.Since(start).Seconds())
	logger.Infof("sync completed, rating %d, max rating %d", outcome.CurrentRating, outcome.MaxRating)

	return outcome, nil
}

func (s *SyncService) syncProfile(ctx context.Context, studentID uuid.UUID, handle string) (SyncOutcome, error) {
	user, err := s.CF.UserInfo(ctx, handle)
	if err != nil {
		return SyncOutcome{}, err
	}

	now := s.Now()
	err = s.DB.UpdateStudentRating(ctx, database.UpdateStudentRatingParams{
		ID:            studentID,
		CurrentRating: max(user.Rating, 0),
		MaxRating:     max(user.MaxRating, 0),
		LastSynced:    &now,
	})
	if err != nil {
		return SyncOutcome{}, spm_errors.HandleDBErrors(
			err,
			nil,
			fmt.Sprintf("cannot update rating of %s", handle),
		)
	}

	return SyncOutcome{
		Handle:        handle,
		CurrentRating: max(user.Rating, 0),
		MaxRating:     max(user.MaxRating, 0),
		Synced:        true,
	}, nil
}

// the time of the last attempt stays observable on failure, even when the
// failure is ctx itself
func (s *SyncService) touchLastSynced(ctx context.Context, studentID uuid.UUID, logger *logrus.Entry) {
	now := s.Now()
	err := s.DB.TouchStudentLastSynced(context.WithoutCancel(ctx), database.TouchStudentLastSyncedParams{
		ID:         studentID,
		LastSynced: &now,
	})
	if err != nil {
		logger.Errorf("cannot record sync attempt, %v", err)
	}
}

func (s *SyncService) stageFailed(logger *logrus.Entry, stage string, err error) {
	metrics.SyncStageFailures.WithLabelValues(stage).Inc()
	logger.WithField("stage", stage).Errorf("sync stage failed, %v", err)
}
