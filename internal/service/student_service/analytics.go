package student_service

import (
	"context"
	"fmt"
	"math"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/database"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	"github.com/google/uuid"
)

type ratingBucket struct {
	label string
	upper int32 // inclusive, 0 means unbounded
}

var ratingBuckets = []ratingBucket{
	{"800-1000", 1000},
	{"1001-1200", 1200},
	{"1201-1400", 1400},
	{"1401-1600", 1600},
	{"1601-1800", 1800},
	{"1801-2000", 2000},
	{"2000+", 0},
}

// Analytics returns the contests and solved problems of a student within the
// requested windows, newest first, with aggregate stats over them.
func (s *StudentService) Analytics(ctx context.Context, id uuid.UUID, req AnalyticsRequest) (StudentData, error) {
	if err := service.ValidateInput(req); err != nil {
		return StudentData{}, err
	}
	if req.ContestDays == 0 {
		req.ContestDays = defaultWindowDays
	}
	if req.ProblemDays == 0 {
		req.ProblemDays = defaultWindowDays
	}

	dbStudent, err := s.getActive(ctx, id)
	if err != nil {
		return StudentData{}, err
	}

	now := s.Now()
	contests, err := s.DB.ListContestRecords(ctx, database.ListContestRecordsParams{
		StudentID: id,
		Since:     now.AddDate(0, 0, -req.ContestDays),
	})
	if err != nil {
		return StudentData{}, spm_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot list contests of %v", id))
	}

	problems, err := s.DB.ListSolvedProblems(ctx, database.ListSolvedProblemsParams{
		StudentID: id,
		Since:     now.AddDate(0, 0, -req.ProblemDays),
	})
	if err != nil {
		return StudentData{}, spm_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot list problems of %v", id))
	}

	data := StudentData{
		Student:        s.toStudent(dbStudent),
		ContestHistory: make([]ContestRecord, 0, len(contests)),
		ProblemStats:   make([]SolvedProblem, 0, len(problems)),
		Analytics: Analytics{
			ContestStats: contestStats(contests),
			ProblemStats: problemStats(problems, req.ProblemDays),
		},
		RatingBuckets: bucketRatings(problems),
	}
	for _, c := range contests {
		data.ContestHistory = append(data.ContestHistory, ContestRecord{
			ContestID:    c.ContestID,
			ContestName:  c.ContestName,
			Rank:         c.Rank,
			RatingChange: c.RatingChange,
			NewRating:    c.NewRating,
			Date:         c.Date,
			ContestType:  string(c.ContestType),
		})
	}
	for _, p := range problems {
		data.ProblemStats = append(data.ProblemStats, SolvedProblem{
			ProblemID:    p.ProblemID,
			ProblemName:  p.ProblemName,
			Rating:       p.Rating,
			Tags:         p.Tags,
			ContestID:    p.ContestID,
			ProblemIndex: p.ProblemIndex,
			SubmissionID: p.SubmissionID,
			Language:     p.Language,
			Verdict:      p.Verdict,
			Date:         p.Date,
		})
	}

	return data, nil
}

func contestStats(contests []database.ContestRecord) ContestStats {
	stats := ContestStats{TotalContests: len(contests)}
	if len(contests) == 0 {
		return stats
	}

	rankSum := 0
	for _, c := range contests {
		rankSum += int(c.Rank)
		stats.RatingGain += int(c.RatingChange)
	}
	stats.AverageRank = int(math.Round(float64(rankSum) / float64(len(contests))))
	return stats
}

func problemStats(problems []database.SolvedProblem, days int) ProblemStats {
	stats := ProblemStats{TotalSolved: len(problems)}
	if len(problems) == 0 {
		return stats
	}

	ratingSum := 0
	for _, p := range problems {
		ratingSum += int(p.Rating)
		stats.MaxRating = max(stats.MaxRating, p.Rating)
	}
	stats.AverageRating = int(math.Round(float64(ratingSum) / float64(len(problems))))
	stats.AveragePerDay = math.Round(float64(len(problems))/float64(days)*100) / 100
	return stats
}

func bucketRatings(problems []database.SolvedProblem) map[string]int {
	buckets := make(map[string]int, len(ratingBuckets))
	for _, b := range ratingBuckets {
		buckets[b.label] = 0
	}

	for _, p := range problems {
		for _, b := range ratingBuckets {
			if b.upper == 0 || p.Rating <= b.upper {
				buckets[b.label]++
				break
			}
		}
	}
	return buckets
}
