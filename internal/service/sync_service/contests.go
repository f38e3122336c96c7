package sync_service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/database"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/codeforces_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// syncContests upserts the full rating history of handle, keyed by
// (student, contest). A FAILED status from codeforces means the handle
// has no contest history and is not an error.
func (s *SyncService) syncContests(ctx context.Context, studentID uuid.UUID, handle string) error {
	logger := s.logger.WithFields(logrus.Fields{
		"handle":     handle,
		"student_id": studentID,
	})

	changes, err := s.CF.UserRating(ctx, handle)
	if err != nil {
		if isNoData(err) {
			logger.Warnf("no contest history found, %v", err)
			return nil
		}
		return fmt.Errorf("cannot fetch contest history, %w", err)
	}

	for _, change := range changes {
		_, err = s.DB.UpsertContestRecord(ctx, contestRecordParams(studentID, change))
		if err != nil {
			return spm_errors.HandleDBErrors(
				err,
				nil,
				fmt.Sprintf("cannot upsert contest %d for %s", change.ContestID, handle),
			)
		}
	}

	logger.Infof("synced %d contests", len(changes))
	return nil
}

func contestRecordParams(studentID uuid.UUID, change codeforces_service.RatingChange) database.UpsertContestRecordParams {
	return database.UpsertContestRecordParams{
		StudentID:    studentID,
		ContestID:    strconv.FormatInt(change.ContestID, 10),
		ContestName:  change.ContestName,
		Rank:         change.Rank,
		RatingChange: change.NewRating - change.OldRating,
		NewRating:    change.NewRating,
		Date:         time.Unix(change.RatingUpdateTimeSeconds, 0).UTC(),
		ContestType:  database.ContestTypeCF,
	}
}

// an explicit non-OK answer, as opposed to an unreachable api
func isNoData(err error) bool {
	return errors.Is(err, spm_errors.ErrRemoteAPI) &&
		!errors.Is(err, spm_errors.ErrMalformedResponse) &&
		!errors.Is(err, spm_errors.ErrTransport)
}
