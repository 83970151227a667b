package finance

import (
	"context"
	"errors"
	"time"

	"github.com/aptcrew/rollbook/core/roster"
)

var (
	// errors
	ErrInvalidStatus = errors.New("invalid payment status")

	// NowFunc is mockable for tests.
	NowFunc = time.Now
)

type (
	Repository interface {
		QueryPayments(ctx context.Context, section string) ([]PaymentRecord, error)
		UpsertPayment(ctx context.Context, rec PaymentRecord) (PaymentRecord, error)
	}

	Service struct {
		repo   Repository
		roster *roster.Service
	}
)

func NewService(repo Repository, rosterSvc *roster.Service) *Service {
	return &Service{repo: repo, roster: rosterSvc}
}

// Statuses returns the member -> payment status map for a section.
// Members without a record are missing from the map and default to unpaid
// at the presentation layer.
func (svc *Service) Statuses(ctx context.Context, section string) (map[string]PaymentStatus, error) {
	records, err := svc.repo.QueryPayments(ctx, section)
	if err != nil {
		return nil, err
	}
	statuses := make(map[string]PaymentStatus, len(records))
	for _, rec := range records {
		statuses[rec.MemberName] = rec.Status
	}
	return statuses, nil
}

// SetStatus updates one member's payment state. A member not on the
// section's roster aborts the operation with roster.ErrMemberNotFound and
// changes nothing.
func (svc *Service) SetStatus(ctx context.Context, section, memberName string, status PaymentStatus, updatedBy string) (PaymentRecord, error) {
	if !status.Valid() {
		return PaymentRecord{}, ErrInvalidStatus
	}
	if _, err := svc.roster.GetMember(ctx, section, memberName); err != nil {
		return PaymentRecord{}, err
	}
	return svc.repo.UpsertPayment(ctx, PaymentRecord{
		Section:    section,
		MemberName: memberName,
		Status:     status,
		UpdatedBy:  updatedBy,
		UpdatedAt:  NowFunc().UTC(),
	})
}
