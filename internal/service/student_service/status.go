package student_service

import (
	"context"
	"math"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/database"
	"github.com/google/uuid"
)

const day = 24 * time.Hour

// DaysSinceLastSync is the number of whole days since lastSynced, nil when
// the student was never synced.
func DaysSinceLastSync(lastSynced *time.Time, now time.Time) *int {
	if lastSynced == nil {
		return nil
	}
	days := wholeDays(now.Sub(*lastSynced))
	return &days
}

// IsInactive reports whether more than thresholdDays whole days passed since
// the last accepted submission. Exactly thresholdDays is still active.
func IsInactive(lastSubmission *time.Time, now time.Time, thresholdDays int) bool {
	if lastSubmission == nil {
		return true
	}
	return wholeDays(now.Sub(*lastSubmission)) > thresholdDays
}

func wholeDays(d time.Duration) int {
	return int(math.Floor(float64(d) / float64(day)))
}

// Status reports when a student was last synced and the state of its most
// recent background sync.
func (s *StudentService) Status(ctx context.Context, id uuid.UUID) (SyncStatus, error) {
	dbStudent, err := s.getActive(ctx, id)
	if err != nil {
		return SyncStatus{}, err
	}

	now := s.Now()
	status := SyncStatus{
		StudentID:         dbStudent.ID,
		Handle:            dbStudent.CodeforcesHandle,
		LastSynced:        dbStudent.LastSynced,
		DaysSinceLastSync: DaysSinceLastSync(dbStudent.LastSynced, now),
		IsInactive:        IsInactive(dbStudent.LastSubmissionDate, now, s.InactivityDays),
	}
	if outcome, ok := s.Queue.LastOutcome(id); ok {
		status.LastBackgroundSync = &outcome
	}
	return status, nil
}

func (s *StudentService) toStudent(st database.Student) Student {
	now := s.Now()
	return Student{
		ID:                 st.ID,
		Name:               st.Name,
		Email:              st.Email,
		Phone:              st.Phone,
		CodeforcesHandle:   st.CodeforcesHandle,
		CurrentRating:      st.CurrentRating,
		MaxRating:          st.MaxRating,
		LastSynced:         st.LastSynced,
		LastSubmissionDate: st.LastSubmissionDate,
		AutoEmailEnabled:   st.AutoEmailEnabled,
		ReminderCount:      st.ReminderCount,
		IsActive:           st.IsActive,
		CreatedAt:          st.CreatedAt,
		UpdatedAt:          st.UpdatedAt,
		DaysSinceLastSync:  DaysSinceLastSync(st.LastSynced, now),
		IsInactive:         IsInactive(st.LastSubmissionDate, now, s.InactivityDays),
	}
}
