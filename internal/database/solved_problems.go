package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const solvedProblemColumns = `id, student_id, date, rating, solved, problem_name, problem_id, tags, contest_id,
    problem_index, submission_id, language, verdict, created_at, updated_at`

func scanSolvedProblem(row pgx.Row) (SolvedProblem, error) {
	var i SolvedProblem
	err := row.Scan(
		&i.ID,
		&i.StudentID,
		&i.Date,
		&i.Rating,
		&i.Solved,
		&i.ProblemName,
		&i.ProblemID,
		&i.Tags,
		&i.ContestID,
		&i.ProblemIndex,
		&i.SubmissionID,
		&i.Language,
		&i.Verdict,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertSolvedProblem = `
INSERT INTO solved_problems (
    student_id, date, rating, solved, problem_name, problem_id, tags,
    contest_id, problem_index, submission_id, language, verdict
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (submission_id) DO UPDATE
SET student_id = EXCLUDED.student_id,
    date = EXCLUDED.date,
    rating = EXCLUDED.rating,
    solved = EXCLUDED.solved,
    problem_name = EXCLUDED.problem_name,
    problem_id = EXCLUDED.problem_id,
    tags = EXCLUDED.tags,
    contest_id = EXCLUDED.contest_id,
    problem_index = EXCLUDED.problem_index,
    language = EXCLUDED.language,
    verdict = EXCLUDED.verdict,
    updated_at = now()
RETURNING ` + solvedProblemColumns

type UpsertSolvedProblemParams struct {
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
}

func (q *Queries) UpsertSolvedProblem(ctx context.Context, arg UpsertSolvedProblemParams) (SolvedProblem, error) {
	row := q.db.QueryRow(ctx, upsertSolvedProblem,
		arg.StudentID,
		arg.Date,
		arg.Rating,
		arg.Solved,
		arg.ProblemName,
		arg.ProblemID,
		arg.Tags,
		arg.ContestID,
		arg.ProblemIndex,
		arg.SubmissionID,
		arg.Language,
		arg.Verdict,
	)
	return scanSolvedProblem(row)
}

const listSolvedProblems = `
SELECT ` + solvedProblemColumns + ` FROM solved_problems
WHERE student_id = $1 AND date >= $2 AND solved
ORDER BY date DESC`

type ListSolvedProblemsParams struct {
	StudentID uuid.UUID
	Since     time.Time
}

func (q *Queries) ListSolvedProblems(ctx context.Context, arg ListSolvedProblemsParams) ([]SolvedProblem, error) {
	rows, err := q.db.Query(ctx, listSolvedProblems, arg.StudentID, arg.Since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []SolvedProblem{}
	for rows.Next() {
		i, err := scanSolvedProblem(rows)
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
