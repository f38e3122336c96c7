package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const studentColumns = `id, name, email, phone, codeforces_handle, current_rating, max_rating, last_synced,
    last_submission_date, auto_email_enabled, reminder_count, is_active, created_at, updated_at`

func scanStudent(row pgx.Row) (Student, error) {
	var i Student
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Email,
		&i.Phone,
		&i.CodeforcesHandle,
		&i.CurrentRating,
		&i.MaxRating,
		&i.LastSynced,
		&i.LastSubmissionDate,
		&i.AutoEmailEnabled,
		&i.ReminderCount,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanStudents(rows pgx.Rows) ([]Student, error) {
	defer rows.Close()
	items := []Student{}
	for rows.Next() {
		i, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createStudent = `
INSERT INTO students (name, email, phone, codeforces_handle)
VALUES ($1, $2, $3, $4)
RETURNING ` + studentColumns

type CreateStudentParams struct {
	Name             string
	Email            string
	Phone            string
	CodeforcesHandle string
}

func (q *Queries) CreateStudent(ctx context.Context, arg CreateStudentParams) (Student, error) {
	row := q.db.QueryRow(ctx, createStudent,
		arg.Name,
		arg.Email,
		arg.Phone,
		arg.CodeforcesHandle,
	)
	return scanStudent(row)
}

const getStudentByID = `
SELECT ` + studentColumns + ` FROM students
WHERE id = $1`

func (q *Queries) GetStudentByID(ctx context.Context, id uuid.UUID) (Student, error) {
	row := q.db.QueryRow(ctx, getStudentByID, id)
	return scanStudent(row)
}

const getActiveStudentByHandle = `
SELECT ` + studentColumns + ` FROM students
WHERE codeforces_handle = $1 AND is_active
LIMIT 1`

func (q *Queries) GetActiveStudentByHandle(ctx context.Context, codeforcesHandle string) (Student, error) {
	row := q.db.QueryRow(ctx, getActiveStudentByHandle, codeforcesHandle)
	return scanStudent(row)
}

const findActiveStudentConflict = `
SELECT ` + studentColumns + ` FROM students
WHERE is_active
  AND ($1::uuid IS NULL OR id <> $1::uuid)
  AND (lower(email) = lower($2) OR codeforces_handle = $3)
LIMIT 1`

type FindActiveStudentConflictParams struct {
	ExcludeID        uuid.NullUUID
	Email            string
	CodeforcesHandle string
}

func (q *Queries) FindActiveStudentConflict(ctx context.Context, arg FindActiveStudentConflictParams) (Student, error) {
	row := q.db.QueryRow(ctx, findActiveStudentConflict, arg.ExcludeID, arg.Email, arg.CodeforcesHandle)
	return scanStudent(row)
}

const listActiveStudents = `
SELECT ` + studentColumns + ` FROM students
WHERE is_active
ORDER BY created_at DESC`

func (q *Queries) ListActiveStudents(ctx context.Context) ([]Student, error) {
	rows, err := q.db.Query(ctx, listActiveStudents)
	if err != nil {
		return nil, err
	}
	return scanStudents(rows)
}

const updateStudentContact = `
UPDATE students
SET name = $2, email = $3, phone = $4, codeforces_handle = $5,
    auto_email_enabled = $6, updated_at = now()
WHERE id = $1
RETURNING ` + studentColumns

type UpdateStudentContactParams struct {
	ID               uuid.UUID
	Name             string
	Email            string
	Phone            string
	CodeforcesHandle string
	AutoEmailEnabled bool
}

func (q *Queries) UpdateStudentContact(ctx context.Context, arg UpdateStudentContactParams) (Student, error) {
	row := q.db.QueryRow(ctx, updateStudentContact,
		arg.ID,
		arg.Name,
		arg.Email,
		arg.Phone,
		arg.CodeforcesHandle,
		arg.AutoEmailEnabled,
	)
	return scanStudent(row)
}

const updateStudentRating = `
UPDATE students
SET current_rating = $2, max_rating = $3, last_synced = $4, updated_at = now()
WHERE id = $1`

type UpdateStudentRatingParams struct {
	ID            uuid.UUID
	CurrentRating int32
	MaxRating     int32
	LastSynced    *time.Time
}

func (q *Queries) UpdateStudentRating(ctx context.Context, arg UpdateStudentRatingParams) error {
	_, err := q.db.Exec(ctx, updateStudentRating,
		arg.ID,
		arg.CurrentRating,
		arg.MaxRating,
		arg.LastSynced,
	)
	return err
}

const touchStudentLastSynced = `
UPDATE students
SET last_synced = $2, updated_at = now()
WHERE id = $1`

type TouchStudentLastSyncedParams struct {
	ID         uuid.UUID
	LastSynced *time.Time
}

func (q *Queries) TouchStudentLastSynced(ctx context.Context, arg TouchStudentLastSyncedParams) error {
	_, err := q.db.Exec(ctx, touchStudentLastSynced, arg.ID, arg.LastSynced)
	return err
}

const setStudentLastSubmission = `
UPDATE students
SET last_submission_date = $2, updated_at = now()
WHERE id = $1`

type SetStudentLastSubmissionParams struct {
	ID                 uuid.UUID
	LastSubmissionDate *time.Time
}

func (q *Queries) SetStudentLastSubmission(ctx context.Context, arg SetStudentLastSubmissionParams) error {
	_, err := q.db.Exec(ctx, setStudentLastSubmission, arg.ID, arg.LastSubmissionDate)
	return err
}

const incrementReminderCount = `
UPDATE students
SET reminder_count = reminder_count + 1, updated_at = now()
WHERE id = $1`

func (q *Queries) IncrementReminderCount(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, incrementReminderCount, id)
	return err
}

const deactivateStudent = `
UPDATE students
SET is_active = FALSE, updated_at = now()
WHERE id = $1`

func (q *Queries) DeactivateStudent(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deactivateStudent, id)
	return err
}

const listReminderCandidates = `
SELECT ` + studentColumns + ` FROM students
WHERE is_active
  AND auto_email_enabled
  AND (last_submission_date IS NULL OR last_submission_date < $1)
ORDER BY created_at DESC`

func (q *Queries) ListReminderCandidates(ctx context.Context, lastSubmissionBefore time.Time) ([]Student, error) {
	rows, err := q.db.Query(ctx, listReminderCandidates, lastSubmissionBefore)
	if err != nil {
		return nil, err
	}
	return scanStudents(rows)
}
