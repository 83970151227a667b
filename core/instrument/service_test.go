package instrument

import (
	"context"
	"testing"
	"time"

	"github.com/aptcrew/rollbook/core/roster"
)

type fakeRepo struct {
	table map[string]Instrument
}

func (r *fakeRepo) QueryInstruments(_ context.Context) ([]Instrument, error) {
	instruments := make([]Instrument, 0, len(r.table))
	for _, inst := range r.table {
		instruments = append(instruments, inst)
	}
	return instruments, nil
}

func (r *fakeRepo) GetInstrument(_ context.Context, id string) (Instrument, error) {
	inst, ok := r.table[id]
	if !ok {
		return Instrument{}, ErrNotFound
	}
	return inst, nil
}

func (r *fakeRepo) UpdateInstrument(_ context.Context, inst Instrument) (Instrument, error) {
	if _, ok := r.table[inst.ID]; !ok {
		return Instrument{}, ErrNotFound
	}
	r.table[inst.ID] = inst
	return inst, nil
}

type fakeRosterRepo struct {
	members []roster.Member
}

func (r *fakeRosterRepo) QuerySections(_ context.Context) ([]roster.Section, error) {
	return nil, nil
}

func (r *fakeRosterRepo) QueryMembers(_ context.Context, _ string) ([]roster.Member, error) {
	return r.members, nil
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

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()

	repo := &fakeRepo{table: map[string]Instrument{
		"1": {ID: "1", Name: "Irumbu Parai", Type: "Parai"},
		"2": {ID: "2", Name: "Melam", Type: "Melam"},
	}}
	rosterSvc := roster.NewService(&fakeRosterRepo{
		members: []roster.Member{{ID: "1", Section: "Core Adults", Name: "Abi", Position: 1}},
	})
	return NewService(repo, rosterSvc), repo
}

func mockNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := NowFunc
	NowFunc = func() time.Time { return now }
	t.Cleanup(func() { NowFunc = orig })
}

func TestService_CheckOut(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	mockNow(t, now)
	ctx := context.Background()

	t.Run("unknown member", func(t *testing.T) {
		svc, _ := newTestService(t)
		if _, err := svc.CheckOut(ctx, "1", "Nobody"); err != roster.ErrMemberNotFound {
			t.Errorf("CheckOut() error = %v, want %v", err, roster.ErrMemberNotFound)
		}
	})

	t.Run("unknown instrument", func(t *testing.T) {
		svc, _ := newTestService(t)
		if _, err := svc.CheckOut(ctx, "99", "Abi"); err != ErrNotFound {
			t.Errorf("CheckOut() error = %v, want %v", err, ErrNotFound)
		}
	})

	t.Run("checks out", func(t *testing.T) {
		svc, repo := newTestService(t)
		inst, err := svc.CheckOut(ctx, "1", "Abi")
		if err != nil {
			t.Fatalf("CheckOut() failed, %v", err)
		}
		if !inst.IsCheckedOut() {
			t.Fatal("expected instrument to be checked out")
		}
		if *inst.CheckedOutBy != "Abi" {
			t.Errorf("CheckedOutBy = %s, want Abi", *inst.CheckedOutBy)
		}
		if !inst.CheckedOutAt.Equal(now) {
			t.Errorf("CheckedOutAt = %v, want %v", inst.CheckedOutAt, now)
		}
		if saved := repo.table["1"]; !saved.IsCheckedOut() {
			t.Error("checkout was not persisted")
		}
	})

	t.Run("already checked out", func(t *testing.T) {
		svc, _ := newTestService(t)
		if _, err := svc.CheckOut(ctx, "1", "Abi"); err != nil {
			t.Fatalf("CheckOut() failed, %v", err)
		}
		if _, err := svc.CheckOut(ctx, "1", "Abi"); err != ErrAlreadyCheckedOut {
			t.Errorf("CheckOut() error = %v, want %v", err, ErrAlreadyCheckedOut)
		}
	})
}

func TestService_CheckIn(t *testing.T) {
	mockNow(t, time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	t.Run("not checked out", func(t *testing.T) {
		svc, _ := newTestService(t)
		if _, err := svc.CheckIn(ctx, "1"); err != ErrNotCheckedOut {
			t.Errorf("CheckIn() error = %v, want %v", err, ErrNotCheckedOut)
		}
	})

	t.Run("checks in", func(t *testing.T) {
		svc, repo := newTestService(t)
		if _, err := svc.CheckOut(ctx, "1", "Abi"); err != nil {
			t.Fatalf("CheckOut() failed, %v", err)
		}
		inst, err := svc.CheckIn(ctx, "1")
		if err != nil {
			t.Fatalf("CheckIn() failed, %v", err)
		}
		if inst.IsCheckedOut() {
			t.Error("expected instrument to be checked in")
		}
		if saved := repo.table["1"]; saved.IsCheckedOut() {
			t.Error("checkin was not persisted")
		}
	})
}

func TestInstrument_DaysOut(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	var inst Instrument
	if got := inst.DaysOut(now); got != 0 {
		t.Errorf("DaysOut() = %d, want 0", got)
	}

	at := now.Add(-2 * time.Hour) // same day
	inst.CheckedOutAt = &at
	if got := inst.DaysOut(now); got != 1 {
		t.Errorf("DaysOut() = %d, want 1", got)
	}

	at2 := now.AddDate(0, 0, -3)
	inst.CheckedOutAt = &at2
	if got := inst.DaysOut(now); got != 4 {
		t.Errorf("DaysOut() = %d, want 4", got)
	}
}
