package student_service

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/database"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
)

func TestAnalytics(t *testing.T) {
	s, store, _ := newTestService(t)
	ctx := context.Background()

	st, err := s.Create(ctx, validCreate("judy"))
	if err != nil {
		t.Fatal(err)
	}

	contests := []struct {
		daysAgo int
		rank    int32
		delta   int32
	}{
		{5, 100, 40}, {20, 201, -15}, {45, 50, 100},
	}
	for i, c := range contests {
		_, err = store.UpsertContestRecord(ctx, database.UpsertContestRecordParams{
			StudentID:    st.ID,
			ContestID:    strconv.Itoa(1000 + i),
			ContestName:  "Round",
			Rank:         c.rank,
			RatingChange: c.delta,
			NewRating:    1500,
			Date:         testNow.AddDate(0, 0, -c.daysAgo),
			ContestType:  database.ContestTypeCF,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	problems := []struct {
		daysAgo int
		rating  int32
	}{
		{1, 800}, {2, 1000}, {3, 1001}, {4, 1650}, {6, 2000}, {8, 2400}, {40, 1200},
	}
	for i, p := range problems {
		_, err = store.UpsertSolvedProblem(ctx, database.UpsertSolvedProblemParams{
			StudentID:    st.ID,
			Date:         testNow.AddDate(0, 0, -p.daysAgo),
			Rating:       p.rating,
			Solved:       true,
			ProblemName:  "p",
			ProblemID:    strconv.Itoa(i) + "-A",
			SubmissionID: strconv.Itoa(5000 + i),
			Verdict:      "OK",
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	data, err := s.Analytics(ctx, st.ID, AnalyticsRequest{})
	if err != nil {
		t.Fatal(err)
	}

	if len(data.ContestHistory) != 2 || !data.ContestHistory[0].Date.After(data.ContestHistory[1].Date) {
		t.Errorf("expected 2 contests newest first, got %+v", data.ContestHistory)
	}
	wantContests := ContestStats{TotalContests: 2, AverageRank: 151, RatingGain: 25}
	if data.Analytics.ContestStats != wantContests {
		t.Errorf("expected %+v, got %+v", wantContests, data.Analytics.ContestStats)
	}

	// 800+1000+1001+1650+2000+2400 = 8851, 8851/6 = 1475.17
	wantProblems := ProblemStats{TotalSolved: 6, AverageRating: 1475, MaxRating: 2400, AveragePerDay: 0.2}
	if data.Analytics.ProblemStats != wantProblems {
		t.Errorf("expected %+v, got %+v", wantProblems, data.Analytics.ProblemStats)
	}

	wantBuckets := map[string]int{
		"800-1000": 2, "1001-1200": 1, "1201-1400": 0, "1401-1600": 0,
		"1601-1800": 1, "1801-2000": 1, "2000+": 1,
	}
	for label, want := range wantBuckets {
		if data.RatingBuckets[label] != want {
			t.Errorf("bucket %s: expected %d, got %d", label, want, data.RatingBuckets[label])
		}
	}

	wide, err := s.Analytics(ctx, st.ID, AnalyticsRequest{ContestDays: 60, ProblemDays: 7})
	if err != nil {
		t.Fatal(err)
	}
	if len(wide.ContestHistory) != 3 || len(wide.ProblemStats) != 5 {
		t.Errorf("windows not applied: %d contests, %d problems", len(wide.ContestHistory), len(wide.ProblemStats))
	}
	if wide.Analytics.ProblemStats.AveragePerDay != 0.71 {
		t.Errorf("expected 5/7 rounded to 0.71, got %v", wide.Analytics.ProblemStats.AveragePerDay)
	}
}

func TestAnalyticsEmptyAndInvalid(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	st, err := s.Create(ctx, validCreate("ken"))
	if err != nil {
		t.Fatal(err)
	}

	data, err := s.Analytics(ctx, st.ID, AnalyticsRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if data.Analytics.ProblemStats != (ProblemStats{}) || data.Analytics.ContestStats != (ContestStats{}) {
		t.Errorf("expected zero stats, got %+v", data.Analytics)
	}
	if len(data.RatingBuckets) != 7 {
		t.Errorf("expected all buckets present, got %v", data.RatingBuckets)
	}

	if _, err = s.Analytics(ctx, st.ID, AnalyticsRequest{ContestDays: -1}); !errors.Is(err, spm_errors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
