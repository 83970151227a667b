package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/aptcrew/rollbook/core"
	"github.com/aptcrew/rollbook/core/finance"
)

type financeRepository struct {
	exec core.DBExecutor
}

var _ finance.Repository = (*financeRepository)(nil) // interface compliance check

func NewFinanceRepository(exec core.DBExecutor) *financeRepository {
	return &financeRepository{exec: exec}
}

func (repo financeRepository) QueryPayments(ctx context.Context, section string) ([]finance.PaymentRecord, error) {
	var records []finance.PaymentRecord
	q := `SELECT section, member_name, status, updated_by, updated_at FROM payment_status WHERE section = $1`
	if err := repo.exec.SelectContext(ctx, &records, q, section); err != nil {
		return nil, errors.Wrap(err, "querying payment statuses")
	}
	return records, nil
}

// UpsertPayment keeps one row per (section, member); the latest write wins.
func (repo financeRepository) UpsertPayment(ctx context.Context, rec finance.PaymentRecord) (finance.PaymentRecord, error) {
	q := `
INSERT INTO payment_status (section, member_name, status, updated_by, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (section, member_name)
DO UPDATE SET status = EXCLUDED.status, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	if _, err := repo.exec.ExecContext(ctx, q, rec.Section, rec.MemberName, rec.Status, rec.UpdatedBy, rec.UpdatedAt.UTC()); err != nil {
		return finance.PaymentRecord{}, errors.Wrap(err, "upserting payment status")
	}
	return rec, nil
}
