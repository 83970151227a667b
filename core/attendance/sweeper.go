package attendance

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/aptcrew/rollbook/core"
)

// Sweeper runs the end-of-day auto-absence sweep: every member of a section
// that met today (has at least one record) but was never marked present is
// recorded absent. The wall clock is polled once per check interval and the
// sweep fires on an exact hour:minute match in the configured timezone.
//
// A sweep is at-most-once per (section, date): the SweepLog key is claimed
// before any append, so double fires within the boundary minute and process
// restarts are no-ops.
type Sweeper struct {
	svc    *Service
	roster rosterSource
	log    core.Logger

	interval time.Duration
	hour     int
	minute   int

	running int32 // overlap guard
}

type rosterSource interface {
	SectionNames(ctx context.Context) ([]string, error)
	MemberNames(ctx context.Context, section string) ([]string, error)
}

func NewSweeper(svc *Service, rosterSrc rosterSource, logger core.Logger) *Sweeper {
	return &Sweeper{
		svc:      svc,
		roster:   rosterSrc,
		log:      logger,
		interval: core.Conf.Sweep.CheckInterval,
		hour:     core.Conf.Sweep.Hour,
		minute:   core.Conf.Sweep.Minute,
	}
}

// Run blocks, checking the clock on every tick until ctx is cancelled.
func (sw *Sweeper) Run(ctx context.Context) {
	sw.log.Info("auto-absence sweeper started")
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sw.log.Info("auto-absence sweeper stopped")
			return
		case <-ticker.C:
			if !sw.due() {
				continue
			}
			if n, err := sw.Sweep(ctx, sw.svc.Today()); err != nil {
				sw.log.Error("auto-absence sweep failed", err)
			} else if n > 0 {
				sw.log.Info("auto-absence sweep done", map[string]interface{}{"marked": n})
			}
		}
	}
}

func (sw *Sweeper) due() bool {
	now := NowFunc().In(sw.svc.loc)
	return now.Hour() == sw.hour && now.Minute() == sw.minute
}

// Sweep marks the absentees of every section for the given date and returns
// how many absence records were appended. A section with no record that day
// had no meeting and is skipped; a section whose (section, date) key was
// already claimed has been swept and is skipped too.
func (sw *Sweeper) Sweep(ctx context.Context, date string) (int, error) {
	if !atomic.CompareAndSwapInt32(&sw.running, 0, 1) {
		return 0, nil // previous sweep still in flight
	}
	defer atomic.StoreInt32(&sw.running, 0)

	sections, err := sw.roster.SectionNames(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "listing sections")
	}

	var marked int
	for _, section := range sections {
		n, err := sw.sweepSection(ctx, section, date)
		if err != nil {
			// all-or-nothing per section; move on to the next one
			sw.log.Error("sweeping section "+section, err)
			continue
		}
		marked += n
	}
	return marked, nil
}

func (sw *Sweeper) sweepSection(ctx context.Context, section, date string) (int, error) {
	records, err := sw.svc.store.QueryRecords(ctx, RecordFilter{Section: section, Date: date})
	if err != nil {
		return 0, errors.Wrap(err, "querying day records")
	}
	if len(records) == 0 {
		return 0, nil // no meeting that day
	}

	claimed, err := sw.svc.sweeps.ClaimSweep(ctx, section, date)
	if err != nil {
		return 0, errors.Wrap(err, "claiming sweep")
	}
	if !claimed {
		return 0, nil // already swept
	}

	present := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.Status == StatusPresent {
			present[rec.MemberName] = true
		}
	}

	names, err := sw.roster.MemberNames(ctx, section)
	if err != nil {
		return 0, errors.Wrap(err, "listing roster members")
	}

	var marked int
	for _, name := range names {
		if present[name] {
			continue
		}
		if _, err := sw.svc.append(ctx, Record{
			Date:       date,
			Section:    section,
			MemberName: name,
			Status:     StatusAbsent,
			RecordedBy: RecorderAutoAbsence,
		}); err != nil {
			return marked, err
		}
		marked++
	}
	return marked, nil
}
