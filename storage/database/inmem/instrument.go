package inmemdb

import (
	"context"
	"sort"

	"github.com/aptcrew/rollbook/core/instrument"
)

type instrumentRepository struct {
	db *instrumentTable
}

var _ instrument.Repository = (*instrumentRepository)(nil) // interface compliance check

func NewInstrumentRepository(db *DB) *instrumentRepository {
	return &instrumentRepository{db: db.instrument}
}

func (repo *instrumentRepository) QueryInstruments(ctx context.Context) ([]instrument.Instrument, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	instruments := make([]instrument.Instrument, 0, len(repo.db.table))
	for _, inst := range repo.db.table {
		instruments = append(instruments, *inst)
	}
	sort.Slice(instruments, func(i, j int) bool { return instruments[i].Name < instruments[j].Name })
	return instruments, nil
}

func (repo *instrumentRepository) GetInstrument(ctx context.Context, id string) (instrument.Instrument, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if inst, ok := repo.db.table[id]; ok {
		return *inst, nil
	}
	return instrument.Instrument{}, instrument.ErrNotFound
}

func (repo *instrumentRepository) UpdateInstrument(ctx context.Context, inst instrument.Instrument) (instrument.Instrument, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[inst.ID]; !ok {
		return instrument.Instrument{}, instrument.ErrNotFound
	}
	repo.db.table[inst.ID] = &inst
	return inst, nil
}
