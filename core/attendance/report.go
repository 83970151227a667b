package attendance

import (
	"sort"
	"time"
)

// CurrentStatus folds a day's records into the member -> status view.
// Records are scanned in ascending Seq order so the last writer wins;
// out-of-order input is tolerated by tracking the max Seq per member.
// An empty record list yields an empty, non-nil map.
func CurrentStatus(records []Record) StatusMap {
	statuses := make(StatusMap, len(records))
	maxSeq := make(map[string]int64, len(records))
	for _, rec := range records {
		if seq, ok := maxSeq[rec.MemberName]; ok && rec.Seq < seq {
			continue
		}
		maxSeq[rec.MemberName] = rec.Seq
		statuses[rec.MemberName] = rec.Status
	}
	return statuses
}

// Counts splits a roster of `total` members against a status map:
// present = members currently marked present, absent = everyone else.
// Members without any record count as absent by convention.
func Counts(memberNames []string, statuses StatusMap) (present, absent int) {
	for _, name := range memberNames {
		if statuses[name] == StatusPresent {
			present++
		}
	}
	return present, len(memberNames) - present
}

// memberDays groups one member's records by date, keeping the order dates
// were first encountered for stable report output.
type memberDays struct {
	member  string
	section string
	dates   []string            // encounter order
	byDate  map[string][]Record // date -> that day's records
}

func (md *memberDays) add(rec Record) {
	if _, ok := md.byDate[rec.Date]; !ok {
		md.dates = append(md.dates, rec.Date)
	}
	md.byDate[rec.Date] = append(md.byDate[rec.Date], rec)
}

// isAbsenceDay reports whether any record that day is an absence.
// A co-existing present record does not cancel it out; surfacing the
// conflict is intended.
func (md *memberDays) isAbsenceDay(date string) bool {
	for _, rec := range md.byDate[date] {
		if rec.Status == StatusAbsent {
			return true
		}
	}
	return false
}

// BuildReport derives the rolling absence report for one section from the
// full (unsectioned) record list. The window is [today-60d, today], both
// ends inclusive. Members without a single absence day are left out.
// Entries are sorted by TotalAbsences descending; ties keep the order
// members were first encountered in the record list.
func BuildReport(records []Record, section string, today time.Time) []ReportEntry {
	from := today.AddDate(0, 0, -ReportWindowDays)
	fromDate := from.Format(DateLayout)
	toDate := today.Format(DateLayout)

	// group the windowed section records per member, preserving encounter order
	members := make([]string, 0)
	byMember := make(map[string]*memberDays)
	for _, rec := range records {
		if rec.Section != section {
			continue
		}
		// YYYY-MM-DD compares chronologically as a plain string
		if rec.Date < fromDate || rec.Date > toDate {
			continue
		}
		md, ok := byMember[rec.MemberName]
		if !ok {
			md = &memberDays{member: rec.MemberName, section: rec.Section, byDate: make(map[string][]Record)}
			byMember[rec.MemberName] = md
			members = append(members, rec.MemberName)
		}
		md.add(rec)
	}

	report := make([]ReportEntry, 0, len(members))
	for _, name := range members {
		md := byMember[name]

		var total int
		var lastAbsent string
		for _, date := range md.dates {
			if md.isAbsenceDay(date) {
				total++
				if date > lastAbsent {
					lastAbsent = date
				}
			}
		}
		if total == 0 {
			continue
		}

		report = append(report, ReportEntry{
			MemberName:          md.member,
			Section:             md.section,
			TotalAbsences:       total,
			ConsecutiveAbsences: consecutiveAbsences(md),
			LastAbsentDate:      lastAbsent,
		})
	}

	sort.SliceStable(report, func(i, j int) bool {
		return report[i].TotalAbsences > report[j].TotalAbsences
	})
	return report
}

// consecutiveAbsences counts absence days scanning backward from the
// member's most recent recorded date, stopping at the first day that is
// not an absence day.
func consecutiveAbsences(md *memberDays) int {
	dates := make([]string, len(md.dates))
	copy(dates, md.dates)
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	var streak int
	for _, date := range dates {
		if !md.isAbsenceDay(date) {
			break
		}
		streak++
	}
	return streak
}
