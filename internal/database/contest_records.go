package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const contestRecordColumns = `id, student_id, contest_id, contest_name, rank, rating_change, new_rating, date,
    contest_type, created_at, updated_at`

func scanContestRecord(row pgx.Row) (ContestRecord, error) {
	var i ContestRecord
	err := row.Scan(
		&i.ID,
		&i.StudentID,
		&i.ContestID,
		&i.ContestName,
		&i.Rank,
		&i.RatingChange,
		&i.NewRating,
		&i.Date,
		&i.ContestType,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertContestRecord = `
INSERT INTO contest_records (
    student_id, contest_id, contest_name, rank, rating_change, new_rating, date, contest_type
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (student_id, contest_id) DO UPDATE
SET contest_name = EXCLUDED.contest_name,
    rank = EXCLUDED.rank,
    rating_change = EXCLUDED.rating_change,
    new_rating = EXCLUDED.new_rating,
    date = EXCLUDED.date,
    contest_type = EXCLUDED.contest_type,
    updated_at = now()
RETURNING ` + contestRecordColumns

type UpsertContestRecordParams struct {
	StudentID    uuid.UUID
	ContestID    string
	ContestName  string
	Rank         int32
	RatingChange int32
	NewRating    int32
	Date         time.Time
	ContestType  ContestType
}

func (q *Queries) UpsertContestRecord(ctx context.Context, arg UpsertContestRecordParams) (ContestRecord, error) {
	row := q.db.QueryRow(ctx, upsertContestRecord,
		arg.StudentID,
		arg.ContestID,
		arg.ContestName,
		arg.Rank,
		arg.RatingChange,
		arg.NewRating,
		arg.Date,
		string(arg.ContestType),
	)
	return scanContestRecord(row)
}

const listContestRecords = `
SELECT ` + contestRecordColumns + ` FROM contest_records
WHERE student_id = $1 AND date >= $2
ORDER BY date DESC`

type ListContestRecordsParams struct {
	StudentID uuid.UUID
	Since     time.Time
}

func (q *Queries) ListContestRecords(ctx context.Context, arg ListContestRecordsParams) ([]ContestRecord, error) {
	rows, err := q.db.Query(ctx, listContestRecords, arg.StudentID, arg.Since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ContestRecord{}
	for rows.Next() {
		i, err := scanContestRecord(rows)
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
