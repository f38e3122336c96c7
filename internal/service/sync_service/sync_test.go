package sync_service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/database"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/database/memdb"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/service/codeforces_service"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
)

// fakeCodeforces answers user.info for every handle except the failing ones,
// which get 503 on every attempt.
type fakeCodeforces struct {
	sync.Mutex
	failing map[string]bool
	calls   map[string]int
}

func (f *fakeCodeforces) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handle := r.URL.Query().Get("handles")
	if handle == "" {
		handle = r.URL.Query().Get("handle")
	}

	f.Lock()
	f.calls[handle]++
	failing := f.failing[handle]
	f.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, "/user.info"):
		if failing {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, `{"status":"OK","result":[{"handle":%q,"rating":1500,"maxRating":1700}]}`, handle)
	case strings.HasSuffix(r.URL.Path, "/user.rating"):
		fmt.Fprint(w, `{"status":"OK","result":[]}`)
	case strings.HasSuffix(r.URL.Path, "/user.status"):
		fmt.Fprint(w, `{"status":"OK","result":[]}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeCodeforces) callsFor(handle string) int {
	f.Lock()
	defer f.Unlock()
	return f.calls[handle]
}

func newCodeforces(t *testing.T, failing ...string) (*fakeCodeforces, *codeforces_service.Client) {
	t.Helper()
	fake := &fakeCodeforces{failing: make(map[string]bool), calls: make(map[string]int)}
	for _, h := range failing {
		fake.failing[h] = true
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := codeforces_service.NewClient(codeforces_service.Config{
		BaseURL:        srv.URL + "/api",
		MaxAttempts:    3,
		RetryBaseDelay: time.Millisecond,
		RequestTimeout: time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	return fake, client
}

func TestSyncOneUpdatesProfile(t *testing.T) {
	store := newStore()
	client := newFakeClient()
	s := newTestService(t, store, client)
	st := mustCreateStudent(t, store, "alice")

	client.users["alice"] = codeforces_service.User{Handle: "alice", Rating: 1820, MaxRating: 1904}
	client.ratings["alice"] = []codeforces_service.RatingChange{
		{ContestID: 1, ContestName: "Round 1", Rank: 10, RatingUpdateTimeSeconds: day(2), OldRating: 1800, NewRating: 1820},
	}
	client.submissions["alice"] = []codeforces_service.Submission{accepted(1, 1, "A", day(2))}

	outcome, err := s.SyncOne(context.Background(), st.ID, "alice")
	if err != nil {
		t.Fatal(err)
	}
	want := SyncOutcome{Handle: "alice", CurrentRating: 1820, MaxRating: 1904, Synced: true}
	if outcome != want {
		t.Errorf("expected %+v, got %+v", want, outcome)
	}

	got := mustGetStudent(t, store, st)
	if got.CurrentRating != 1820 || got.MaxRating != 1904 {
		t.Errorf("ratings not stored, %+v", got)
	}
	if got.LastSynced == nil || !got.LastSynced.Equal(testNow) {
		t.Errorf("expected lastSynced %v, got %v", testNow, got.LastSynced)
	}
	if len(listContests(t, s, st)) != 1 || len(listProblems(t, s, st)) != 1 {
		t.Error("expected contest and problem to be synced")
	}
}

func TestSyncOneSurvivesStageFailures(t *testing.T) {
	store := newStore()
	client := newFakeClient()
	s := newTestService(t, store, client)
	st := mustCreateStudent(t, store, "bob")

	client.users["bob"] = codeforces_service.User{Handle: "bob", Rating: 1200, MaxRating: 1300}
	client.ratingErr["bob"] = fmt.Errorf("%w, connection reset", spm_errors.ErrTransport)
	client.statusErr["bob"] = fmt.Errorf("%w, connection reset", spm_errors.ErrTransport)

	outcome, err := s.SyncOne(context.Background(), st.ID, "bob")
	if err != nil {
		t.Fatalf("contest and submission failures must not fail the sync, got %v", err)
	}
	if !outcome.Synced || outcome.CurrentRating != 1200 {
		t.Errorf("unexpected outcome %+v", outcome)
	}
}

func TestSyncOneProfileFailureRecordsAttempt(t *testing.T) {
	fake, client := newCodeforces(t, "ghost")
	store := memdb.New()
	s := &SyncService{DB: store, CF: client}
	s.Start()
	st := mustCreateStudent(t, store, "ghost")

	start := time.Now()
	_, err := s.SyncOne(context.Background(), st.ID, "ghost")

	var syncErr *SyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("expected *SyncError, got %v", err)
	}
	if syncErr.Handle != "ghost" || !errors.Is(err, spm_errors.ErrTransport) {
		t.Errorf("unexpected sync error %v", err)
	}
	if fake.callsFor("ghost") != 3 {
		t.Errorf("expected 3 profile attempts, got %d", fake.callsFor("ghost"))
	}

	got := mustGetStudent(t, store, st)
	if got.LastSynced == nil || got.LastSynced.Before(start) {
		t.Errorf("expected lastSynced >= %v, got %v", start, got.LastSynced)
	}
	if got.CurrentRating != 0 {
		t.Errorf("rating must not change on failure, got %d", got.CurrentRating)
	}
}

func TestSyncOneFailsOnApiError(t *testing.T) {
	store := newStore()
	client := newFakeClient()
	s := newTestService(t, store, client)
	st := mustCreateStudent(t, store, "nobody")

	_, err := s.SyncOne(context.Background(), st.ID, "nobody")
	if !errors.Is(err, spm_errors.ErrRemoteAPI) {
		t.Fatalf("expected ErrRemoteAPI, got %v", err)
	}
	if mustGetStudent(t, store, st).LastSynced == nil {
		t.Error("expected the attempt to be recorded")
	}
}

func TestSyncAllIsolatesFailures(t *testing.T) {
	fake, client := newCodeforces(t, "s3")
	store := memdb.New()
	s := &SyncService{DB: store, CF: client}
	s.Start()

	handles := []string{"s1", "s2", "s3", "s4", "s5"}
	for _, h := range handles {
		mustCreateStudent(t, store, h)
	}

	summary, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Total != 5 || summary.Successful != 4 || summary.Failed != 1 {
		t.Fatalf("expected {5 4 1}, got {%d %d %d}", summary.Total, summary.Successful, summary.Failed)
	}
	if len(summary.Results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(summary.Results))
	}

	for _, res := range summary.Results {
		if res.Handle == "s3" {
			if res.Success || res.Error == "" {
				t.Errorf("expected s3 to fail with an error message, got %+v", res)
			}
			continue
		}
		if !res.Success || res.CurrentRating != 1500 {
			t.Errorf("expected %s to succeed, got %+v", res.Handle, res)
		}
	}

	for _, h := range handles {
		if fake.callsFor(h) == 0 {
			t.Errorf("student %s was never attempted", h)
		}
	}
	if fake.callsFor("s3") != 3 {
		t.Errorf("expected 3 profile attempts for s3, got %d", fake.callsFor("s3"))
	}
}

func TestSyncAllPacesStudents(t *testing.T) {
	store := newStore()
	client := newFakeClient()
	s := newTestService(t, store, client)
	s.FleetPacing = 20 * time.Millisecond

	for _, h := range []string{"a", "b", "c"} {
		mustCreateStudent(t, store, h)
		client.users[h] = codeforces_service.User{Handle: h}
	}

	start := time.Now()
	summary, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Successful != 3 {
		t.Errorf("expected 3 successful syncs, got %+v", summary)
	}
	if elapsed := time.Since(start); elapsed < 2*s.FleetPacing {
		t.Errorf("expected at least %v between students, took %v", 2*s.FleetPacing, elapsed)
	}
}

func TestSyncAllRunsPastCallerDeadline(t *testing.T) {
	store := newStore()
	client := newFakeClient()
	s := &SyncService{
		DB:          ctxStore{store},
		CF:          client,
		FleetPacing: 20 * time.Millisecond,
		Now:         func() time.Time { return testNow },
	}
	s.Start()

	handles := []string{"a", "b", "c", "d", "e"}
	students := make([]database.Student, 0, len(handles))
	for _, h := range handles {
		students = append(students, mustCreateStudent(t, store, h))
		client.users[h] = codeforces_service.User{Handle: h, Rating: 1200}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	summary, err := s.SyncAll(ctx)
	if err != nil {
		t.Fatalf("a fleet sync must not be cut short, got %v", err)
	}
	if summary.Total != 5 || summary.Successful != 5 || summary.Failed != 0 || len(summary.Results) != 5 {
		t.Fatalf("expected every student synced, got %+v", summary)
	}
	for _, st := range students {
		got := mustGetStudent(t, store, st)
		if got.CurrentRating != 1200 || got.LastSynced == nil {
			t.Errorf("%s was not stored, got %+v", st.CodeforcesHandle, got)
		}
	}
}

func TestSyncOneRecordsAttemptWhenContextEnds(t *testing.T) {
	_, client := newCodeforces(t, "ghost")
	store := memdb.New()
	s := &SyncService{DB: ctxStore{store}, CF: client}
	s.Start()
	st := mustCreateStudent(t, store, "ghost")

	cases := map[string]func() (context.Context, context.CancelFunc){
		"cancelled": func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		},
		"deadline": func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 2*time.Millisecond)
		},
	}

	for name, newCtx := range cases {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := newCtx()
			defer cancel()

			start := time.Now()
			_, err := s.SyncOne(ctx, st.ID, "ghost")
			var syncErr *SyncError
			if !errors.As(err, &syncErr) {
				t.Fatalf("expected *SyncError, got %v", err)
			}

			got := mustGetStudent(t, store, st)
			if got.LastSynced == nil || got.LastSynced.Before(start) {
				t.Errorf("expected lastSynced >= %v, got %v", start, got.LastSynced)
			}
		})
	}
}

func TestSyncAllWithoutStudents(t *testing.T) {
	s := newTestService(t, newStore(), newFakeClient())
	summary, err := s.SyncAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Total != 0 || summary.Results == nil {
		t.Errorf("expected an empty summary with results, got %+v", summary)
	}
}
