package sync_service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/database"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/codeforces_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// syncSubmissions stores the first accepted solve of every problem and the
// time of the latest accepted submission. The latter is written even when
// it is nil so a student without accepted submissions is cleared.
func (s *SyncService) syncSubmissions(ctx context.Context, studentID uuid.UUID, handle string) error {
	logger := s.logger.WithFields(logrus.Fields{
		"handle":     handle,
		"student_id": studentID,
	})

	submissions, err := s.CF.UserStatus(ctx, handle, 1, s.SubmissionFetchCount)
	if err != nil {
		if isNoData(err) {
			logger.Warnf("no submissions found, %v", err)
			return nil
		}
		return fmt.Errorf("cannot fetch submissions, %w", err)
	}

	firstSolves, lastSubmission := dedupeAccepted(submissions)

	err = s.DB.SetStudentLastSubmission(ctx, database.SetStudentLastSubmissionParams{
		ID:                 studentID,
		LastSubmissionDate: lastSubmission,
	})
	if err != nil {
		return spm_errors.HandleDBErrors(
			err,
			nil,
			fmt.Sprintf("cannot update last submission date of %s", handle),
		)
	}

	// sorted for a stable write order
	for _, key := range slices.Sorted(maps.Keys(firstSolves)) {
		params := s.solvedProblemParams(studentID, key, firstSolves[key])
		if _, err = s.DB.UpsertSolvedProblem(ctx, params); err != nil {
			return spm_errors.HandleDBErrors(
				err,
				nil,
				fmt.Sprintf("cannot upsert solved problem %s for %s", key, handle),
			)
		}
	}

	logger.Infof("synced %d solved problems out of %d submissions", len(firstSolves), len(submissions))
	return nil
}

// dedupeAccepted makes one pass over the accepted submissions and runs two
// independent folds on it: the earliest submission per problem key and the
// latest submission time overall.
func dedupeAccepted(
	submissions []codeforces_service.Submission,
) (map[string]codeforces_service.Submission, *time.Time) {
	firstSolves := make(map[string]codeforces_service.Submission)
	var lastSubmission *time.Time

	for _, sub := range submissions {
		if sub.Verdict != codeforces_service.VerdictAccepted {
			continue
		}
		foldEarliest(firstSolves, sub)
		lastSubmission = foldLatest(lastSubmission, sub)
	}

	return firstSolves, lastSubmission
}

// keeps the earlier submission per key, ties go to the lower submission id
func foldEarliest(firstSolves map[string]codeforces_service.Submission, sub codeforces_service.Submission) {
	key := sub.ProblemKey()
	kept, ok := firstSolves[key]
	if !ok ||
		sub.CreationTimeSeconds < kept.CreationTimeSeconds ||
		(sub.CreationTimeSeconds == kept.CreationTimeSeconds && sub.ID < kept.ID) {
		firstSolves[key] = sub
	}
}

func foldLatest(latest *time.Time, sub codeforces_service.Submission) *time.Time {
	at := submittedAt(sub)
	if latest == nil || at.After(*latest) {
		return &at
	}
	return latest
}

func submittedAt(sub codeforces_service.Submission) time.Time {
	return time.Unix(sub.CreationTimeSeconds, 0).UTC()
}

func (s *SyncService) solvedProblemParams(
	studentID uuid.UUID,
	key string,
	sub codeforces_service.Submission,
) database.UpsertSolvedProblemParams {
	rating := sub.Problem.Rating
	if rating <= 0 {
		rating = s.DefaultProblemRating
	}

	tags := sub.Problem.Tags
	if tags == nil {
		tags = []string{}
	}

	return database.UpsertSolvedProblemParams{
		StudentID:    studentID,
		Date:         submittedAt(sub),
		Rating:       rating,
		Solved:       true,
		ProblemName:  sub.Problem.Name,
		ProblemID:    key,
		Tags:         tags,
		ContestID:    sub.Problem.ContestIDString(),
		ProblemIndex: optional(sub.Problem.Index),
		SubmissionID: strconv.FormatInt(sub.ID, 10),
		Language:     optional(sub.ProgrammingLanguage),
		Verdict:      sub.Verdict,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
