package student_service

import (
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/database"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/sync_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	studentServiceName    = "student_service"
	defaultInactivityDays = 7
	defaultWindowDays     = 30
)

var (
	errMsgs = map[string]map[string]string{
		spm_errors.CodeUniqueConstraint: {
			"uq_students_email":  "student with this email already exists",
			"uq_students_handle": "student with this codeforces handle already exists",
		},
	}
)

type BackgroundSyncer interface {
	Submit(studentID uuid.UUID, handle string, reason sync_service.TaskReason) (sync_service.Task, error)
	LastOutcome(studentID uuid.UUID) (sync_service.TaskOutcome, bool)
}

type StudentService struct {
	DB             database.Querier
	Queue          BackgroundSyncer
	InactivityDays int
	Now            func() time.Time
	logger         *logrus.Entry
}

type CreateStudentRequest struct {
	Name             string `json:"name" validate:"required,max=100"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required,phone"`
	CodeforcesHandle string `json:"codeforcesHandle" validate:"required,max=50"`
}

type UpdateStudentRequest struct {
	Name             string `json:"name" validate:"required,max=100"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required,phone"`
	CodeforcesHandle string `json:"codeforcesHandle" validate:"required,max=50"`
	AutoEmailEnabled *bool  `json:"autoEmailEnabled"`
}

type AnalyticsRequest struct {
	ContestDays int `json:"contestDays" validate:"gte=0,lte=3650"`
	ProblemDays int `json:"problemDays" validate:"gte=0,lte=3650"`
}

type Student struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	CodeforcesHandle   string     `json:"codeforcesHandle"`
	CurrentRating      int32      `json:"currentRating"`
	MaxRating          int32      `json:"maxRating"`
	LastSynced         *time.Time `json:"lastSynced"`
	LastSubmissionDate *time.Time `json:"lastSubmissionDate"`
	AutoEmailEnabled   bool       `json:"autoEmailEnabled"`
	ReminderCount      int32      `json:"reminderCount"`
	IsActive           bool       `json:"isActive"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	DaysSinceLastSync  *int       `json:"daysSinceLastSync"`
	IsInactive         bool       `json:"isInactive"`
}

type ContestRecord struct {
	ContestID    string    `json:"contestId"`
	ContestName  string    `json:"contestName"`
	Rank         int32     `json:"rank"`
	RatingChange int32     `json:"ratingChange"`
	NewRating    int32     `json:"newRating"`
	Date         time.Time `json:"date"`
	ContestType  string    `json:"contestType"`
}

type SolvedProblem struct {
	ProblemID    string    `json:"problemId"`
	ProblemName  string    `json:"problemName"`
	Rating       int32     `json:"rating"`
	Tags         []string  `json:"tags"`
	ContestID    *string   `json:"contestId"`
	ProblemIndex *string   `json:"index"`
	SubmissionID string    `json:"submissionId"`
	Language     *string   `json:"language"`
	Verdict      string    `json:"verdict"`
	Date         time.Time `json:"date"`
}

type SyncStatus struct {
	StudentID          uuid.UUID                 `json:"studentId"`
	Handle             string                    `json:"handle"`
	LastSynced         *time.Time                `json:"lastSynced"`
	DaysSinceLastSync  *int                      `json:"daysSinceLastSync"`
	IsInactive         bool                      `json:"isInactive"`
	LastBackgroundSync *sync_service.TaskOutcome `json:"lastBackgroundSync,omitempty"`
}

type ContestStats struct {
	TotalContests int `json:"totalContests"`
	AverageRank   int `json:"averageRank"`
	RatingGain    int `json:"ratingGain"`
}

type ProblemStats struct {
	TotalSolved   int     `json:"totalSolved"`
	AverageRating int     `json:"averageRating"`
	MaxRating     int32   `json:"maxRating"`
	AveragePerDay float64 `json:"averagePerDay"`
}

type Analytics struct {
	ContestStats ContestStats `json:"contestStats"`
	ProblemStats ProblemStats `json:"problemStats"`
}

type StudentData struct {
	Student        Student         `json:"student"`
	ContestHistory []ContestRecord `json:"contestHistory"`
	ProblemStats   []SolvedProblem `json:"problemStats"`
	Analytics      Analytics       `json:"analytics"`
	RatingBuckets  map[string]int  `json:"ratingBuckets"`
}
