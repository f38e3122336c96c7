package reminder_service

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/database"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/database/memdb"
	"github.com/sirupsen/logrus"
)

var testNow = time.Date(2025, time.March, 20, 9, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.DebugLevel)
	os.Exit(m.Run())
}

type fakeSender struct {
	sync.Mutex
	sent []string
	fail map[string]bool
}

func (f *fakeSender) SendReminder(ctx context.Context, student database.Student) error {
	f.Lock()
	defer f.Unlock()
	if f.fail[student.Email] {
		return errors.New("smtp: connection refused")
	}
	f.sent = append(f.sent, student.Email)
	return nil
}

type fixture struct {
	store  *memdb.Store
	sender *fakeSender
	svc    *ReminderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memdb.New()
	store.Now = func() time.Time { return testNow }
	sender := &fakeSender{fail: make(map[string]bool)}
	svc := &ReminderService{
		DB:     store,
		Sender: sender,
		Now:    func() time.Time { return testNow },
	}
	svc.Start()
	return &fixture{store: store, sender: sender, svc: svc}
}

// addStudent creates a student whose last accepted submission was daysAgo
// days before testNow, or never when daysAgo is negative.
func (f *fixture) addStudent(t *testing.T, handle string, daysAgo int, autoEmail bool) database.Student {
	t.Helper()
	ctx := context.Background()
	st, err := f.store.CreateStudent(ctx, database.CreateStudentParams{
		Name:             handle,
		Email:            handle + "@example.com",
		Phone:            "123",
		CodeforcesHandle: handle,
	})
	if err != nil {
		t.Fatal(err)
	}

	if daysAgo >= 0 {
		last := testNow.AddDate(0, 0, -daysAgo)
		err = f.store.SetStudentLastSubmission(ctx, database.SetStudentLastSubmissionParams{
			ID:                 st.ID,
			LastSubmissionDate: &last,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	if !autoEmail {
		_, err = f.store.UpdateStudentContact(ctx, database.UpdateStudentContactParams{
			ID:               st.ID,
			Name:             st.Name,
			Email:            st.Email,
			Phone:            st.Phone,
			CodeforcesHandle: st.CodeforcesHandle,
			AutoEmailEnabled: false,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	return st
}

func (f *fixture) reminderCount(t *testing.T, st database.Student) int32 {
	t.Helper()
	got, err := f.store.GetStudentByID(context.Background(), st.ID)
	if err != nil {
		t.Fatal(err)
	}
	return got.ReminderCount
}

func TestCheckInactiveSkipsOptedOutStudents(t *testing.T) {
	f := newFixture(t)
	a := f.addStudent(t, "a", -1, true)
	b := f.addStudent(t, "b", 10, false)

	res, err := f.svc.CheckInactive(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalInactive != 1 || res.EmailsSent != 1 {
		t.Errorf("expected {1 1}, got %+v", res)
	}
	if len(f.sender.sent) != 1 || f.sender.sent[0] != a.Email {
		t.Errorf("expected only %s to be mailed, got %v", a.Email, f.sender.sent)
	}
	if f.reminderCount(t, a) != 1 || f.reminderCount(t, b) != 0 {
		t.Error("unexpected reminder counts")
	}
}

func TestCheckInactiveSelectsByLastSubmission(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "recent", 2, true)
	f.addStudent(t, "week", 7, true)
	stale := f.addStudent(t, "stale", 8, true)
	deleted := f.addStudent(t, "deleted", 30, true)
	if err := f.store.DeactivateStudent(context.Background(), deleted.ID); err != nil {
		t.Fatal(err)
	}

	res, err := f.svc.CheckInactive(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// exactly 7 days ago is not before the cutoff
	if res.TotalInactive != 1 || f.sender.sent[0] != stale.Email {
		t.Errorf("expected only the stale student, got %+v and %v", res, f.sender.sent)
	}
}

func TestCheckInactiveIsolatesSendFailures(t *testing.T) {
	f := newFixture(t)
	first := f.addStudent(t, "first", -1, true)
	broken := f.addStudent(t, "broken", 20, true)
	last := f.addStudent(t, "last", 15, true)
	f.sender.fail[broken.Email] = true

	res, err := f.svc.CheckInactive(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalInactive != 3 || res.EmailsSent != 2 {
		t.Errorf("expected {3 2}, got %+v", res)
	}
	if f.reminderCount(t, broken) != 0 {
		t.Error("a failed send must not count as a reminder")
	}
	if f.reminderCount(t, first) != 1 || f.reminderCount(t, last) != 1 {
		t.Error("delivered reminders must be counted")
	}

	// a later scan tries again
	delete(f.sender.fail, broken.Email)
	if _, err = f.svc.CheckInactive(context.Background()); err != nil {
		t.Fatal(err)
	}
	if f.reminderCount(t, broken) != 1 || f.reminderCount(t, first) != 2 {
		t.Error("expected counts to grow on the next scan")
	}
}

func TestCheckInactivePacesSends(t *testing.T) {
	f := newFixture(t)
	f.svc.Pacing = 15 * time.Millisecond
	for _, h := range []string{"x", "y", "z"} {
		f.addStudent(t, h, -1, true)
	}

	start := time.Now()
	res, err := f.svc.CheckInactive(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.EmailsSent != 3 {
		t.Errorf("expected 3 sends, got %+v", res)
	}
	if elapsed := time.Since(start); elapsed < 2*f.svc.Pacing {
		t.Errorf("expected pacing between sends, took %v", elapsed)
	}
}
