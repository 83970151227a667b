package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/aptcrew/rollbook/core"
	"github.com/aptcrew/rollbook/core/instrument"
)

type instrumentRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Type         string      `db:"type"`
	ImageURL     null.String `db:"image_url"`
	CheckedOutBy null.String `db:"checked_out_by"`
	CheckedOutAt null.Time   `db:"checked_out_at"`
	UpdatedAt    null.Time   `db:"updated_at"`
}

type instrumentRepository struct {
	exec core.DBExecutor
}

var _ instrument.Repository = (*instrumentRepository)(nil) // interface compliance check

func NewInstrumentRepository(exec core.DBExecutor) *instrumentRepository {
	return &instrumentRepository{exec: exec}
}

func (repo instrumentRepository) unrow(row instrumentRow) instrument.Instrument {
	inst := instrument.Instrument{
		ID:        row.ID,
		Name:      row.Name,
		Type:      row.Type,
		ImageURL:  row.ImageURL.String,
		UpdatedAt: row.UpdatedAt.Time,
	}
	if row.CheckedOutBy.Valid {
		by := row.CheckedOutBy.String
		inst.CheckedOutBy = &by
	}
	if row.CheckedOutAt.Valid {
		at := row.CheckedOutAt.Time
		inst.CheckedOutAt = &at
	}
	return inst
}

func (repo instrumentRepository) QueryInstruments(ctx context.Context) ([]instrument.Instrument, error) {
	var rows []instrumentRow
	q := `SELECT * FROM instrument ORDER BY name`
	if err := repo.exec.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying instruments")
	}
	instruments := make([]instrument.Instrument, 0, len(rows))
	for _, row := range rows {
		instruments = append(instruments, repo.unrow(row))
	}
	return instruments, nil
}

func (repo instrumentRepository) GetInstrument(ctx context.Context, id string) (instrument.Instrument, error) {
	var row instrumentRow
	q := `SELECT * FROM instrument WHERE id = $1 LIMIT 1`
	if err := repo.exec.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return instrument.Instrument{}, instrument.ErrNotFound
		}
		return instrument.Instrument{}, errors.Wrap(err, "getting instrument")
	}
	return repo.unrow(row), nil
}

func (repo instrumentRepository) UpdateInstrument(ctx context.Context, inst instrument.Instrument) (instrument.Instrument, error) {
	q := `
UPDATE instrument
SET checked_out_by = $1, checked_out_at = $2, updated_at = $3
WHERE id = $4`
	res, err := repo.exec.ExecContext(ctx, q,
		null.StringFromPtr(inst.CheckedOutBy), null.TimeFromPtr(inst.CheckedOutAt), inst.UpdatedAt.UTC(), inst.ID)
	if err != nil {
		return instrument.Instrument{}, errors.Wrap(err, "updating instrument")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return instrument.Instrument{}, instrument.ErrNotFound
	}
	return inst, nil
}
