package inmemdb

import (
	"context"

	"github.com/aptcrew/rollbook/core/attendance"
)

type attendanceStore struct {
	db *attendanceTable
}

var (
	_ attendance.Store    = (*attendanceStore)(nil) // interface compliance check
	_ attendance.SweepLog = (*attendanceStore)(nil)
)

func NewAttendanceStore(db *DB) *attendanceStore {
	return &attendanceStore{db: db.attendance}
}

func (st *attendanceStore) AppendRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	st.db.mutex.Lock()
	defer st.db.mutex.Unlock()

	st.db.seq++
	rec.Seq = st.db.seq
	st.db.records = append(st.db.records, rec)
	return rec, nil
}

func (st *attendanceStore) QueryRecords(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, error) {
	st.db.mutex.RLock()
	defer st.db.mutex.RUnlock()

	var records []attendance.Record
	for _, rec := range st.db.records {
		if filter.Section != "" && rec.Section != filter.Section {
			continue
		}
		if filter.Date != "" && rec.Date != filter.Date {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (st *attendanceStore) ClaimSweep(ctx context.Context, section, date string) (bool, error) {
	st.db.mutex.Lock()
	defer st.db.mutex.Unlock()

	key := section + "|" + date
	if st.db.sweeps[key] {
		return false, nil
	}
	st.db.sweeps[key] = true
	return true, nil
}
