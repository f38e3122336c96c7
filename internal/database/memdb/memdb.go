// Package memdb is an in-memory database.Querier. It backs the service when no
// DB_URL is configured and is the store used by the service tests. It honours
// the same natural-key uniqueness rules as the postgres schema.
package memdb

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/database"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type contestKey struct {
	studentID uuid.UUID
	contestID string
}

type Store struct {
	sync.Mutex
	Now func() time.Time

	seq      int64
	students map[uuid.UUID]*studentRow
	contests map[contestKey]database.ContestRecord
	problems map[string]database.SolvedProblem
}

type studentRow struct {
	database.Student
	seq int64
}

var _ database.Querier = (*Store)(nil)

func New() *Store {
	return &Store{
		Now:      time.Now,
		students: make(map[uuid.UUID]*studentRow),
		contests: make(map[contestKey]database.ContestRecord),
		problems: make(map[string]database.SolvedProblem),
	}
}

func (s *Store) CreateStudent(ctx context.Context, arg database.CreateStudentParams) (database.Student, error) {
	s.Lock()
	defer s.Unlock()

	if err := s.checkUnique(uuid.Nil, arg.Email, arg.CodeforcesHandle); err != nil {
		return database.Student{}, err
	}

	now := s.Now()
	s.seq++
	row := &studentRow{
		Student: database.Student{
			ID:               uuid.New(),
			Name:             arg.Name,
			Email:            arg.Email,
			Phone:            arg.Phone,
			CodeforcesHandle: arg.CodeforcesHandle,
			AutoEmailEnabled: true,
			IsActive:         true,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		seq: s.seq,
	}
	s.students[row.ID] = row

	return copyStudent(row.Student), nil
}

func (s *Store) GetStudentByID(ctx context.Context, id uuid.UUID) (database.Student, error) {
	s.Lock()
	defer s.Unlock()

	row, ok := s.students[id]
	if !ok {
		return database.Student{}, pgx.ErrNoRows
	}
	return copyStudent(row.Student), nil
}

func (s *Store) GetActiveStudentByHandle(ctx context.Context, codeforcesHandle string) (database.Student, error) {
	s.Lock()
	defer s.Unlock()

	for _, row := range s.sortedStudents() {
		if row.IsActive && row.CodeforcesHandle == codeforcesHandle {
			return copyStudent(row.Student), nil
		}
	}
	return database.Student{}, pgx.ErrNoRows
}

func (s *Store) FindActiveStudentConflict(
	ctx context.Context,
	arg database.FindActiveStudentConflictParams,
) (database.Student, error) {
	s.Lock()
	defer s.Unlock()

	for _, row := range s.sortedStudents() {
		if !row.IsActive {
			continue
		}
		if arg.ExcludeID.Valid && row.ID == arg.ExcludeID.UUID {
			continue
		}
		if strings.EqualFold(row.Email, arg.Email) || row.CodeforcesHandle == arg.CodeforcesHandle {
			return copyStudent(row.Student), nil
		}
	}
	return database.Student{}, pgx.ErrNoRows
}

func (s *Store) ListActiveStudents(ctx context.Context) ([]database.Student, error) {
	s.Lock()
	defer s.Unlock()

	res := make([]database.Student, 0)
	for _, row := range s.sortedStudents() {
		if row.IsActive {
			res = append(res, copyStudent(row.Student))
		}
	}
	return res, nil
}

func (s *Store) UpdateStudentContact(
	ctx context.Context,
	arg database.UpdateStudentContactParams,
) (database.Student, error) {
	s.Lock()
	defer s.Unlock()

	row, ok := s.students[arg.ID]
	if !ok {
		return database.Student{}, pgx.ErrNoRows
	}
	if row.IsActive {
		if err := s.checkUnique(arg.ID, arg.Email, arg.CodeforcesHandle); err != nil {
			return database.Student{}, err
		}
	}

	row.Name = arg.Name
	row.Email = arg.Email
	row.Phone = arg.Phone
	row.CodeforcesHandle = arg.CodeforcesHandle
	row.AutoEmailEnabled = arg.AutoEmailEnabled
	row.UpdatedAt = s.Now()

	return copyStudent(row.Student), nil
}

func (s *Store) UpdateStudentRating(ctx context.Context, arg database.UpdateStudentRatingParams) error {
	return s.mutateStudent(arg.ID, func(st *database.Student) {
		st.CurrentRating = arg.CurrentRating
		st.MaxRating = arg.MaxRating
		st.LastSynced = copyTime(arg.LastSynced)
	})
}

func (s *Store) TouchStudentLastSynced(ctx context.Context, arg database.TouchStudentLastSyncedParams) error {
	return s.mutateStudent(arg.ID, func(st *database.Student) {
		st.LastSynced = copyTime(arg.LastSynced)
	})
}

func (s *Store) SetStudentLastSubmission(ctx context.Context, arg database.SetStudentLastSubmissionParams) error {
	return s.mutateStudent(arg.ID, func(st *database.Student) {
		st.LastSubmissionDate = copyTime(arg.LastSubmissionDate)
	})
}

func (s *Store) IncrementReminderCount(ctx context.Context, id uuid.UUID) error {
	return s.mutateStudent(id, func(st *database.Student) {
		st.ReminderCount++
	})
}

func (s *Store) DeactivateStudent(ctx context.Context, id uuid.UUID) error {
	return s.mutateStudent(id, func(st *database.Student) {
		st.IsActive = false
	})
}

func (s *Store) ListReminderCandidates(ctx context.Context, lastSubmissionBefore time.Time) ([]database.Student, error) {
	s.Lock()
	defer s.Unlock()

	res := make([]database.Student, 0)
	for _, row := range s.sortedStudents() {
		if !row.IsActive || !row.AutoEmailEnabled {
			continue
		}
		if row.LastSubmissionDate == nil || row.LastSubmissionDate.Before(lastSubmissionBefore) {
			res = append(res, copyStudent(row.Student))
		}
	}
	return res, nil
}

func (s *Store) UpsertContestRecord(
	ctx context.Context,
	arg database.UpsertContestRecordParams,
) (database.ContestRecord, error) {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.students[arg.StudentID]; !ok {
		return database.ContestRecord{}, fmt.Errorf(
			"%w, student %v does not exist", spm_errors.ErrInvalidRequest, arg.StudentID,
		)
	}

	now := s.Now()
	key := contestKey{studentID: arg.StudentID, contestID: arg.ContestID}
	record, ok := s.contests[key]
	if !ok {
		record = database.ContestRecord{
			ID:        uuid.New(),
			StudentID: arg.StudentID,
			ContestID: arg.ContestID,
			CreatedAt: now,
		}
	}
	record.ContestName = arg.ContestName
	record.Rank = arg.Rank
	record.RatingChange = arg.RatingChange
	record.NewRating = arg.NewRating
	record.Date = arg.Date
	record.ContestType = arg.ContestType
	record.UpdatedAt = now
	s.contests[key] = record

	return record, nil
}

func (s *Store) ListContestRecords(
	ctx context.Context,
	arg database.ListContestRecordsParams,
) ([]database.ContestRecord, error) {
	s.Lock()
	defer s.Unlock()

	res := make([]database.ContestRecord, 0)
	for _, record := range s.contests {
		if record.StudentID == arg.StudentID && !record.Date.Before(arg.Since) {
			res = append(res, record)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.After(res[j].Date) })
	return res, nil
}

func (s *Store) UpsertSolvedProblem(
	ctx context.Context,
	arg database.UpsertSolvedProblemParams,
) (database.SolvedProblem, error) {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.students[arg.StudentID]; !ok {
		return database.SolvedProblem{}, fmt.Errorf(
			"%w, student %v does not exist", spm_errors.ErrInvalidRequest, arg.StudentID,
		)
	}

	now := s.Now()
	problem, ok := s.problems[arg.SubmissionID]
	if !ok {
		problem = database.SolvedProblem{
			ID:           uuid.New(),
			SubmissionID: arg.SubmissionID,
			CreatedAt:    now,
		}
	}
	problem.StudentID = arg.StudentID
	problem.Date = arg.Date
	problem.Rating = arg.Rating
	problem.Solved = arg.Solved
	problem.ProblemName = arg.ProblemName
	problem.ProblemID = arg.ProblemID
	problem.Tags = slices.Clone(arg.Tags)
	problem.ContestID = copyString(arg.ContestID)
	problem.ProblemIndex = copyString(arg.ProblemIndex)
	problem.Language = copyString(arg.Language)
	problem.Verdict = arg.Verdict
	problem.UpdatedAt = now
	s.problems[arg.SubmissionID] = problem

	return copyProblem(problem), nil
}

func (s *Store) ListSolvedProblems(
	ctx context.Context,
	arg database.ListSolvedProblemsParams,
) ([]database.SolvedProblem, error) {
	s.Lock()
	defer s.Unlock()

	res := make([]database.SolvedProblem, 0)
	for _, problem := range s.problems {
		if problem.StudentID == arg.StudentID && problem.Solved && !problem.Date.Before(arg.Since) {
			res = append(res, copyProblem(problem))
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.After(res[j].Date) })
	return res, nil
}

// not thread safe
func (s *Store) checkUnique(self uuid.UUID, email, handle string) error {
	for _, row := range s.students {
		if !row.IsActive || row.ID == self {
			continue
		}
		if strings.EqualFold(row.Email, email) {
			return fmt.Errorf("%w, student with that email already exist", spm_errors.ErrEntityAlreadyExist)
		}
		if row.CodeforcesHandle == handle {
			return fmt.Errorf("%w, student with that handle already exist", spm_errors.ErrEntityAlreadyExist)
		}
	}
	return nil
}

// newest first, as ORDER BY created_at DESC
// not thread safe
func (s *Store) sortedStudents() []*studentRow {
	rows := make([]*studentRow, 0, len(s.students))
	for _, row := range s.students {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })
	return rows
}

func (s *Store) mutateStudent(id uuid.UUID, mutate func(st *database.Student)) error {
	s.Lock()
	defer s.Unlock()

	row, ok := s.students[id]
	if !ok {
		// UPDATE on a missing row is not an error in postgres either
		return nil
	}
	mutate(&row.Student)
	row.UpdatedAt = s.Now()
	return nil
}

func copyStudent(st database.Student) database.Student {
	st.LastSynced = copyTime(st.LastSynced)
	st.LastSubmissionDate = copyTime(st.LastSubmissionDate)
	return st
}

func copyProblem(p database.SolvedProblem) database.SolvedProblem {
	p.Tags = slices.Clone(p.Tags)
	p.ContestID = copyString(p.ContestID)
	p.ProblemIndex = copyString(p.ProblemIndex)
	p.Language = copyString(p.Language)
	return p
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
