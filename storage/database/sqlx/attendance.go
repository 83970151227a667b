package sqlxrepos

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/aptcrew/rollbook/core"
	"github.com/aptcrew/rollbook/core/attendance"
)

type attendanceStore struct {
	exec core.DBExecutor
}

var (
	_ attendance.Store    = (*attendanceStore)(nil) // interface compliance check
	_ attendance.SweepLog = (*attendanceStore)(nil)
)

func NewAttendanceStore(exec core.DBExecutor) *attendanceStore {
	return &attendanceStore{exec: exec}
}

// AppendRecord inserts a new record; seq is assigned by the database so
// later writes always carry a higher seq.
func (st attendanceStore) AppendRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := `
INSERT INTO attendance_record (date, section, member_name, status, recorded_by, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING seq`
	row := st.exec.QueryRowxContext(ctx, q, rec.Date, rec.Section, rec.MemberName, rec.Status, rec.RecordedBy, rec.RecordedAt.UTC())
	if err := row.Scan(&rec.Seq); err != nil {
		return attendance.Record{}, errors.Wrap(err, "inserting attendance record")
	}
	return rec, nil
}

// QueryRecords returns matching records in seq (insertion) order.
func (st attendanceStore) QueryRecords(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Section != "" {
		conds = append(conds, "section = "+arg(filter.Section))
	}
	if filter.Date != "" {
		conds = append(conds, "date = "+arg(filter.Date))
	}

	q := `SELECT seq, date, section, member_name, status, recorded_by, recorded_at FROM attendance_record`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY seq"

	var records []attendance.Record
	if err := st.exec.SelectContext(ctx, &records, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	return records, nil
}

// ClaimSweep records that the auto-absence sweep ran for (section, date).
// The first caller gets true; concurrent or repeated claims get false.
func (st attendanceStore) ClaimSweep(ctx context.Context, section, date string) (bool, error) {
	q := `
INSERT INTO sweep_log (section, date, swept_at)
VALUES ($1, $2, NOW())
ON CONFLICT (section, date) DO NOTHING`
	res, err := st.exec.ExecContext(ctx, q, section, date)
	if err != nil {
		return false, errors.Wrap(err, "claiming sweep")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "claiming sweep")
	}
	return n > 0, nil
}
