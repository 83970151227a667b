package inmemdb

import (
	"context"

	"github.com/aptcrew/rollbook/core/roster"
)

type rosterRepository struct {
	db *rosterTable
}

var _ roster.Repository = (*rosterRepository)(nil) // interface compliance check

func NewRosterRepository(db *DB) *rosterRepository {
	return &rosterRepository{db: db.roster}
}

func (repo *rosterRepository) QuerySections(ctx context.Context) ([]roster.Section, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sections := make([]roster.Section, len(repo.db.sections))
	copy(sections, repo.db.sections)
	return sections, nil
}

func (repo *rosterRepository) QueryMembers(ctx context.Context, section string) ([]roster.Member, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var members []roster.Member
	for _, m := range repo.db.members {
		if m.Section == section {
			members = append(members, m)
		}
	}
	return members, nil
}

func (repo *rosterRepository) GetMember(ctx context.Context, section, name string) (roster.Member, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, m := range repo.db.members {
		if m.Section == section && m.Name == name {
			return m, nil
		}
	}
	return roster.Member{}, roster.ErrMemberNotFound
}

func (repo *rosterRepository) FindMember(ctx context.Context, name string) (roster.Member, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, m := range repo.db.members {
		if m.Name == name {
			return m, nil
		}
	}
	return roster.Member{}, roster.ErrMemberNotFound
}
