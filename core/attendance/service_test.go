package attendance

import (
	"context"
	"net/mail"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/aptcrew/rollbook/core"
	"github.com/aptcrew/rollbook/core/roster"
)

// fakeStore implements Store and SweepLog in memory.
type fakeStore struct {
	mu      sync.Mutex
	records []Record
	seq     int64
	sweeps  map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{sweeps: make(map[string]bool)}
}

func (s *fakeStore) AppendRecord(_ context.Context, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	rec.Seq = s.seq
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *fakeStore) QueryRecords(_ context.Context, filter RecordFilter) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := make([]Record, 0)
	for _, rec := range s.records {
		if filter.Section != "" && rec.Section != filter.Section {
			continue
		}
		if filter.Date != "" && rec.Date != filter.Date {
			continue
		}
		matches = append(matches, rec)
	}
	return matches, nil
}

func (s *fakeStore) ClaimSweep(_ context.Context, section, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := section + "|" + date
	if s.sweeps[key] {
		return false, nil
	}
	s.sweeps[key] = true
	return true, nil
}

type fakeRosterRepo struct {
	sections []roster.Section
	members  []roster.Member
}

func (r *fakeRosterRepo) QuerySections(_ context.Context) ([]roster.Section, error) {
	return r.sections, nil
}

func (r *fakeRosterRepo) QueryMembers(_ context.Context, section string) ([]roster.Member, error) {
	members := make([]roster.Member, 0)
	for _, m := range r.members {
		if m.Section == section {
			members = append(members, m)
		}
	}
	return members, nil
}

func (r *fakeRosterRepo) GetMember(_ context.Context, section, name string) (roster.Member, error) {
	for _, m := range r.members {
		if m.Section == section && m.Name == name {
			return m, nil
		}
	}
	return roster.Member{}, roster.ErrMemberNotFound
}

func (r *fakeRosterRepo) FindMember(_ context.Context, name string) (roster.Member, error) {
	for _, m := range r.members {
		if m.Name == name {
			return m, nil
		}
	}
	return roster.Member{}, roster.ErrMemberNotFound
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type fakeMail struct {
	mu       sync.Mutex
	messages []core.EmailMessage
}

func (m *fakeMail) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range messages {
		m.messages = append(m.messages, *msg)
	}
}

const testSection = "Core Adults"

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeMail) {
	t.Helper()

	store := newFakeStore()
	mailSvc := &fakeMail{}
	rosterSvc := roster.NewService(&fakeRosterRepo{
		sections: []roster.Section{{Name: testSection, Position: 1}},
		members: []roster.Member{
			{ID: "1", Section: testSection, Name: "Abi", Position: 1},
			{ID: "2", Section: testSection, Name: "Bala", Position: 2},
			{ID: "3", Section: testSection, Name: "Chandra", Position: 3},
		},
	})
	return NewService(store, store, rosterSvc, mailSvc, nopLogger{}), store, mailSvc
}

func mockNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := NowFunc
	NowFunc = func() time.Time { return now }
	t.Cleanup(func() { NowFunc = orig })
}

func TestService_Mark(t *testing.T) {
	mockNow(t, time.Date(2026, 8, 28, 23, 0, 0, 0, time.UTC))
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	t.Run("invalid status", func(t *testing.T) {
		if _, err := svc.Mark(ctx, testSection, "Abi", Status("late"), "tester"); err != ErrInvalidStatus {
			t.Errorf("Mark() error = %v, want %v", err, ErrInvalidStatus)
		}
	})

	t.Run("unknown member", func(t *testing.T) {
		if _, err := svc.Mark(ctx, testSection, "Nobody", StatusPresent, "tester"); errors.Cause(err) != roster.ErrMemberNotFound {
			t.Errorf("Mark() error = %v, want %v", err, roster.ErrMemberNotFound)
		}
	})

	t.Run("marks for today", func(t *testing.T) {
		rec, err := svc.Mark(ctx, testSection, "Abi", StatusPresent, "tester")
		if err != nil {
			t.Fatalf("Mark() failed, %v", err)
		}
		if rec.Seq == 0 {
			t.Error("expected an assigned Seq")
		}
		if rec.Date != svc.Today() {
			t.Errorf("Date = %s, want %s", rec.Date, svc.Today())
		}
		if rec.RecordedBy != "tester" {
			t.Errorf("RecordedBy = %s, want tester", rec.RecordedBy)
		}
	})
}

func TestService_Toggle(t *testing.T) {
	mockNow(t, time.Date(2026, 8, 28, 23, 0, 0, 0, time.UTC))
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// unrecorded toggles to present
	rec, err := svc.Toggle(ctx, testSection, "Abi", "tester")
	if err != nil {
		t.Fatalf("Toggle() failed, %v", err)
	}
	if rec.Status != StatusPresent {
		t.Errorf("Status = %s, want %s", rec.Status, StatusPresent)
	}

	// present toggles to absent
	if rec, err = svc.Toggle(ctx, testSection, "Abi", "tester"); err != nil {
		t.Fatalf("Toggle() failed, %v", err)
	}
	if rec.Status != StatusAbsent {
		t.Errorf("Status = %s, want %s", rec.Status, StatusAbsent)
	}

	// absent toggles back to present
	if rec, err = svc.Toggle(ctx, testSection, "Abi", "tester"); err != nil {
		t.Fatalf("Toggle() failed, %v", err)
	}
	if rec.Status != StatusPresent {
		t.Errorf("Status = %s, want %s", rec.Status, StatusPresent)
	}

	statuses, err := svc.TodayStatus(ctx, testSection)
	if err != nil {
		t.Fatalf("TodayStatus() failed, %v", err)
	}
	if statuses["Abi"] != StatusPresent {
		t.Errorf("TodayStatus()[Abi] = %s, want %s", statuses["Abi"], StatusPresent)
	}
}

func TestService_EmailReport(t *testing.T) {
	mockNow(t, time.Date(2026, 8, 28, 23, 0, 0, 0, time.UTC))
	svc, _, mailSvc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Mark(ctx, testSection, "Abi", StatusAbsent, "tester"); err != nil {
		t.Fatalf("Mark() failed, %v", err)
	}
	to := []mail.Address{{Name: "Boss", Address: "boss@test.cd"}}
	if err := svc.EmailReport(ctx, testSection, to); err != nil {
		t.Fatalf("EmailReport() failed, %v", err)
	}

	if len(mailSvc.messages) != 1 {
		t.Fatalf("sent %d messages, want 1", len(mailSvc.messages))
	}
	msg := mailSvc.messages[0]
	if msg.Subject != "Absence Report - "+testSection {
		t.Errorf("Subject = %s", msg.Subject)
	}
	if msg.TemplateName != "absence-report" {
		t.Errorf("TemplateName = %s, want absence-report", msg.TemplateName)
	}
}
