package inmemdb

import (
	"context"

	"github.com/aptcrew/rollbook/core/finance"
)

type financeRepository struct {
	db *financeTable
}

var _ finance.Repository = (*financeRepository)(nil) // interface compliance check

func NewFinanceRepository(db *DB) *financeRepository {
	return &financeRepository{db: db.finance}
}

func (repo *financeRepository) QueryPayments(ctx context.Context, section string) ([]finance.PaymentRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var records []finance.PaymentRecord
	for _, rec := range repo.db.table {
		if rec.Section == section {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (repo *financeRepository) UpsertPayment(ctx context.Context, rec finance.PaymentRecord) (finance.PaymentRecord, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[rec.Section+"|"+rec.MemberName] = rec
	return rec, nil
}
