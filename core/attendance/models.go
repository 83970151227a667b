package attendance

import (
	"context"
	"errors"
	"time"
)

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"

	// RecorderAutoAbsence marks records appended by the end-of-day sweep.
	RecorderAutoAbsence = "System Auto-Absence"

	// DateLayout is the calendar-date wire format used throughout.
	DateLayout = "2006-01-02"

	// ReportWindowDays is the absence report lookback, inclusive on both ends.
	ReportWindowDays = 60
)

var (
	// errors
	ErrInvalidStatus = errors.New("invalid attendance status")
	ErrInvalidDate   = errors.New("invalid attendance date")
)

type Status string

func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// Record is one append-only attendance event. Seq is assigned by the store
// and is strictly monotonic: the record with the highest Seq for a
// (date, section, member) key holds that key's current status.
type Record struct {
	Seq        int64     `json:"seq" db:"seq"`
	Date       string    `json:"date" db:"date"` // YYYY-MM-DD
	Section    string    `json:"section" db:"section"`
	MemberName string    `json:"member_name" db:"member_name"`
	Status     Status    `json:"status" db:"status"`
	RecordedBy string    `json:"recorded_by" db:"recorded_by"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"` // UTC
}

// RecordFilter narrows QueryRecords; zero-valued fields are ignored.
type RecordFilter struct {
	Section string
	Date    string
}

// StatusMap is the derived member -> current status view for one day.
// Members missing from the map default to absent at the presentation layer.
type StatusMap map[string]Status

// ReportEntry is one row of the 60-day absence report; derived, never stored.
type ReportEntry struct {
	MemberName          string `json:"member_name"`
	Section             string `json:"section"`
	TotalAbsences       int    `json:"total_absences"`
	ConsecutiveAbsences int    `json:"consecutive_absences"`
	LastAbsentDate      string `json:"last_absent_date"`
}

type (
	// Store is the append-only record store. Records are never updated or
	// deleted; appends fail atomically (auth, transport) with no retry.
	Store interface {
		AppendRecord(ctx context.Context, rec Record) (Record, error)
		// QueryRecords returns matching records ordered by ascending Seq;
		// an empty result is an empty slice, never an error.
		QueryRecords(ctx context.Context, filter RecordFilter) ([]Record, error)
	}

	// SweepLog makes the auto-absence sweep idempotent: a (section, date)
	// key can be claimed exactly once, surviving restarts and double fires.
	SweepLog interface {
		ClaimSweep(ctx context.Context, section, date string) (bool, error)
	}
)
