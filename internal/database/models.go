package database

import (
	"time"

	"github.com/google/uuid"
)

type ContestType string

const (
	ContestTypeCF   ContestType = "CF"
	ContestTypeIOI  ContestType = "IOI"
	ContestTypeICPC ContestType = "ICPC"
)

type Student struct {
	ID                 uuid.UUID
	Name               string
	Email              string
	Phone              string
	CodeforcesHandle   string
	CurrentRating      int32
	MaxRating          int32
	LastSynced         *time.Time
	LastSubmissionDate *time.Time
	AutoEmailEnabled   bool
	ReminderCount      int32
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type ContestRecord struct {
	ID           uuid.UUID
	StudentID    uuid.UUID
	ContestID    string
	ContestName  string
	Rank         int32
	RatingChange int32
	NewRating    int32
	Date         time.Time
	ContestType  ContestType
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type SolvedProblem struct {
	ID           uuid.UUID
	StudentID    uuid.UUID
	Date         time.Time
	Rating       int32
	Solved       bool
	ProblemName  string
	ProblemID    string
	Tags         []string
	ContestID    *string
	ProblemIndex *string
	SubmissionID string
	Language     *string
	Verdict      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
