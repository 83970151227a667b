package instrument

import (
	"context"
	"errors"
	"time"

	"github.com/aptcrew/rollbook/core/roster"
)

var (
	// errors
	ErrNotFound          = errors.New("instrument not found")
	ErrAlreadyCheckedOut = errors.New("instrument is already checked out")
	ErrNotCheckedOut     = errors.New("instrument is not checked out")

	// NowFunc is mockable for tests.
	NowFunc = time.Now
)

type (
	Repository interface {
		QueryInstruments(ctx context.Context) ([]Instrument, error)
		GetInstrument(ctx context.Context, id string) (Instrument, error)
		UpdateInstrument(ctx context.Context, inst Instrument) (Instrument, error)
	}

	Service struct {
		repo   Repository
		roster *roster.Service
	}
)

func NewService(repo Repository, rosterSvc *roster.Service) *Service {
	return &Service{repo: repo, roster: rosterSvc}
}

func (svc *Service) QueryAll(ctx context.Context) ([]Instrument, error) {
	return svc.repo.QueryInstruments(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Instrument, error) {
	return svc.repo.GetInstrument(ctx, id)
}

// CheckOut hands an instrument to a roster member. The member must exist in
// some section's roster; an instrument already out stays with its holder.
func (svc *Service) CheckOut(ctx context.Context, id, memberName string) (Instrument, error) {
	if _, err := svc.roster.FindMember(ctx, memberName); err != nil {
		return Instrument{}, err
	}

	inst, err := svc.repo.GetInstrument(ctx, id)
	if err != nil {
		return Instrument{}, err
	}
	if inst.IsCheckedOut() {
		return Instrument{}, ErrAlreadyCheckedOut
	}

	now := NowFunc().UTC()
	inst.CheckedOutBy = &memberName
	inst.CheckedOutAt = &now
	inst.UpdatedAt = now
	return svc.repo.UpdateInstrument(ctx, inst)
}

// CheckIn returns an instrument to the available pool.
func (svc *Service) CheckIn(ctx context.Context, id string) (Instrument, error) {
	inst, err := svc.repo.GetInstrument(ctx, id)
	if err != nil {
		return Instrument{}, err
	}
	if !inst.IsCheckedOut() {
		return Instrument{}, ErrNotCheckedOut
	}

	inst.CheckedOutBy = nil
	inst.CheckedOutAt = nil
	inst.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateInstrument(ctx, inst)
}
