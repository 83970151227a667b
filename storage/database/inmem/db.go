package inmemdb

import (
	"sync"

	"github.com/aptcrew/rollbook/core/attendance"
	"github.com/aptcrew/rollbook/core/finance"
	"github.com/aptcrew/rollbook/core/instrument"
	"github.com/aptcrew/rollbook/core/roster"
	"github.com/aptcrew/rollbook/core/user"
)

type (
	DB struct {
		user       *userTable
		roster     *rosterTable
		attendance *attendanceTable
		instrument *instrumentTable
		finance    *financeTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}

	rosterTable struct {
		sections []roster.Section
		members  []roster.Member
		mutex    sync.RWMutex
	}

	attendanceTable struct {
		records []attendance.Record
		sweeps  map[string]bool // "section|date"
		seq     int64
		mutex   sync.RWMutex
	}

	instrumentTable struct {
		table map[string]*instrument.Instrument
		mutex sync.RWMutex
	}

	financeTable struct {
		table map[string]finance.PaymentRecord // "section|member"
		mutex sync.RWMutex
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		roster:     &rosterTable{},
		attendance: &attendanceTable{sweeps: make(map[string]bool)},
		instrument: &instrumentTable{table: make(map[string]*instrument.Instrument)},
		finance:    &financeTable{table: make(map[string]finance.PaymentRecord)},
	}
	return db, nil
}

// AddSections seeds sections; mainly test support.
func (db *DB) AddSections(sections ...roster.Section) {
	db.roster.mutex.Lock()
	defer db.roster.mutex.Unlock()
	db.roster.sections = append(db.roster.sections, sections...)
}

// AddMembers seeds roster members; mainly test support.
func (db *DB) AddMembers(members ...roster.Member) {
	db.roster.mutex.Lock()
	defer db.roster.mutex.Unlock()
	db.roster.members = append(db.roster.members, members...)
}

// AddInstruments seeds instruments; mainly test support.
func (db *DB) AddInstruments(instruments ...instrument.Instrument) {
	db.instrument.mutex.Lock()
	defer db.instrument.mutex.Unlock()
	for i := range instruments {
		inst := instruments[i]
		db.instrument.table[inst.ID] = &inst
	}
}
