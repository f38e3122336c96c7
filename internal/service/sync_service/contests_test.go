package sync_service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/database"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/codeforces_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
)

func TestSyncContestsUpsertsInPlace(t *testing.T) {
	store := newStore()
	client := newFakeClient()
	s := newTestService(t, store, client)
	st := mustCreateStudent(t, store, "alice")
	ctx := context.Background()

	client.ratings["alice"] = []codeforces_service.RatingChange{
		{ContestID: 1900, ContestName: "Round 1", Rank: 120, RatingUpdateTimeSeconds: day(3), OldRating: 1500, NewRating: 1560},
		{ContestID: 1901, ContestName: "Round 2", Rank: 300, RatingUpdateTimeSeconds: day(8), OldRating: 1560, NewRating: 1530},
	}
	if err := s.syncContests(ctx, st.ID, "alice"); err != nil {
		t.Fatal(err)
	}

	records := listContests(t, s, st)
	if len(records) != 2 {
		t.Fatalf("expected 2 contests, got %d", len(records))
	}
	// newest first
	if records[0].ContestID != "1901" || records[0].RatingChange != -30 {
		t.Errorf("unexpected newest record %+v", records[0])
	}
	if records[1].RatingChange != 60 || records[1].ContestType != database.ContestTypeCF {
		t.Errorf("unexpected oldest record %+v", records[1])
	}
	if !records[1].Date.Equal(time.Unix(day(3), 0)) {
		t.Errorf("expected date from epoch seconds, got %v", records[1].Date)
	}
	oldID := records[0].ID

	// the remote record is authoritative
	client.ratings["alice"][1].Rank = 250
	client.ratings["alice"][1].NewRating = 1545
	if err := s.syncContests(ctx, st.ID, "alice"); err != nil {
		t.Fatal(err)
	}

	records = listContests(t, s, st)
	if len(records) != 2 {
		t.Fatalf("expected an update in place, got %d records", len(records))
	}
	if records[0].ID != oldID || records[0].Rank != 250 || records[0].RatingChange != -15 {
		t.Errorf("expected record %v updated in place, got %+v", oldID, records[0])
	}
}

func TestSyncContestsTreatsFailedStatusAsNoHistory(t *testing.T) {
	store := newStore()
	client := newFakeClient()
	s := newTestService(t, store, client)
	st := mustCreateStudent(t, store, "bob")

	client.ratingErr["bob"] = fmt.Errorf("%w, user.rating returned \"FAILED\" status", spm_errors.ErrRemoteAPI)
	if err := s.syncContests(context.Background(), st.ID, "bob"); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if n := len(listContests(t, s, st)); n != 0 {
		t.Errorf("expected no contests, got %d", n)
	}
}

func TestSyncContestsReportsTransportFailure(t *testing.T) {
	store := newStore()
	client := newFakeClient()
	s := newTestService(t, store, client)
	st := mustCreateStudent(t, store, "carol")

	client.ratingErr["carol"] = fmt.Errorf("%w, %w, circuit open", spm_errors.ErrCircuitOpen, spm_errors.ErrTransport)
	if err := s.syncContests(context.Background(), st.ID, "carol"); !errors.Is(err, spm_errors.ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
}

func listContests(t *testing.T, s *SyncService, st database.Student) []database.ContestRecord {
	t.Helper()
	records, err := s.DB.ListContestRecords(context.Background(), database.ListContestRecordsParams{
		StudentID: st.ID,
		Since:     time.Time{},
	})
	if err != nil {
		t.Fatal(err)
	}
	return records
}
