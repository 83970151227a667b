package attendance

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/aptcrew/rollbook/core"
	"github.com/aptcrew/rollbook/core/roster"
)

// NowFunc is mockable for tests.
var NowFunc = time.Now

type Service struct {
	store  Store
	sweeps SweepLog
	roster *roster.Service
	mail   core.EmailService
	log    core.Logger

	loc  *time.Location
	keys *keyedMutex
}

func NewService(store Store, sweeps SweepLog, rosterSvc *roster.Service, mailSvc core.EmailService, logger core.Logger) *Service {
	loc, err := time.LoadLocation(core.Conf.Sweep.Timezone)
	if err != nil {
		logger.Warn("loading troupe timezone, falling back to UTC", err)
		loc = time.UTC
	}
	return &Service{
		store:  store,
		sweeps: sweeps,
		roster: rosterSvc,
		mail:   mailSvc,
		log:    logger,
		loc:    loc,
		keys:   newKeyedMutex(),
	}
}

// Today is the current calendar date in the troupe's timezone.
func (svc *Service) Today() string {
	return NowFunc().In(svc.loc).Format(DateLayout)
}

// Mark appends a status record for a roster member, today.
// Appends on the same (date, section, member) key are serialized; the
// store's Seq assignment then makes the last writer deterministic.
func (svc *Service) Mark(ctx context.Context, section, memberName string, status Status, recordedBy string) (Record, error) {
	if !status.Valid() {
		return Record{}, ErrInvalidStatus
	}
	if _, err := svc.roster.GetMember(ctx, section, memberName); err != nil {
		return Record{}, err
	}
	return svc.append(ctx, Record{
		Date:       svc.Today(),
		Section:    section,
		MemberName: memberName,
		Status:     status,
		RecordedBy: recordedBy,
	})
}

// Toggle flips a member's current status for today: present becomes absent,
// anything else (absent or unrecorded) becomes present.
func (svc *Service) Toggle(ctx context.Context, section, memberName, recordedBy string) (Record, error) {
	statuses, err := svc.TodayStatus(ctx, section)
	if err != nil {
		return Record{}, err
	}
	next := StatusPresent
	if statuses[memberName] == StatusPresent {
		next = StatusAbsent
	}
	return svc.Mark(ctx, section, memberName, next, recordedBy)
}

// TodayStatus computes the member -> status view from today's records for
// the section. Unrecorded members are simply missing from the map.
func (svc *Service) TodayStatus(ctx context.Context, section string) (StatusMap, error) {
	records, err := svc.store.QueryRecords(ctx, RecordFilter{Section: section, Date: svc.Today()})
	if err != nil {
		return nil, errors.Wrap(err, "querying today's records")
	}
	return CurrentStatus(records), nil
}

// Report builds the section's rolling 60-day absence report. The store is
// queried unsectioned; filtering happens during aggregation. On a store
// error nothing is returned: no partial report is ever produced.
func (svc *Service) Report(ctx context.Context, section string) ([]ReportEntry, error) {
	records, err := svc.store.QueryRecords(ctx, RecordFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "querying records for report")
	}
	return BuildReport(records, section, NowFunc().In(svc.loc)), nil
}

// EmailReport mails the current absence report to the given recipients.
func (svc *Service) EmailReport(ctx context.Context, section string, to []mail.Address) error {
	report, err := svc.Report(ctx, section)
	if err != nil {
		return err
	}
	svc.mail.SendMessages(&core.EmailMessage{
		To:           to,
		Subject:      "Absence Report - " + section,
		TemplateName: "absence-report",
		TemplateData: struct {
			Section string
			Date    string
			Entries []ReportEntry
		}{section, svc.Today(), report},
	})
	return nil
}

func (svc *Service) append(ctx context.Context, rec Record) (Record, error) {
	unlock := svc.keys.lock(rec.Date + "|" + rec.Section + "|" + rec.MemberName)
	defer unlock()

	rec.RecordedAt = NowFunc().UTC()
	saved, err := svc.store.AppendRecord(ctx, rec)
	if err != nil {
		return Record{}, errors.Wrap(err, "appending attendance record")
	}
	return saved, nil
}
