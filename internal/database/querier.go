package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Querier interface {
	CreateStudent(ctx context.Context, arg CreateStudentParams) (Student, error)
	DeactivateStudent(ctx context.Context, id uuid.UUID) error
	FindActiveStudentConflict(ctx context.Context, arg FindActiveStudentConflictParams) (Student, error)
	GetActiveStudentByHandle(ctx context.Context, codeforcesHandle string) (Student, error)
	GetStudentByID(ctx context.Context, id uuid.UUID) (Student, error)
	IncrementReminderCount(ctx context.Context, id uuid.UUID) error
	ListActiveStudents(ctx context.Context) ([]Student, error)
	ListContestRecords(ctx context.Context, arg ListContestRecordsParams) ([]ContestRecord, error)
	ListReminderCandidates(ctx context.Context, lastSubmissionBefore time.Time) ([]Student, error)
	ListSolvedProblems(ctx context.Context, arg ListSolvedProblemsParams) ([]SolvedProblem, error)
	SetStudentLastSubmission(ctx context.Context, arg SetStudentLastSubmissionParams) error
	TouchStudentLastSynced(ctx context.Context, arg TouchStudentLastSyncedParams) error
	UpdateStudentContact(ctx context.Context, arg UpdateStudentContactParams) (Student, error)
	UpdateStudentRating(ctx context.Context, arg UpdateStudentRatingParams) error
	UpsertContestRecord(ctx context.Context, arg UpsertContestRecordParams) (ContestRecord, error)
	UpsertSolvedProblem(ctx context.Context, arg UpsertSolvedProblemParams) (SolvedProblem, error)
}

var _ Querier = (*Queries)(nil)
