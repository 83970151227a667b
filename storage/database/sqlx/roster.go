package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/aptcrew/rollbook/core"
	"github.com/aptcrew/rollbook/core/roster"
)

type rosterRepository struct {
	exec core.DBExecutor
}

var _ roster.Repository = (*rosterRepository)(nil) // interface compliance check

func NewRosterRepository(exec core.DBExecutor) *rosterRepository {
	return &rosterRepository{exec: exec}
}

func (repo rosterRepository) QuerySections(ctx context.Context) ([]roster.Section, error) {
	var sections []roster.Section
	q := `SELECT name, position FROM section ORDER BY position`
	if err := repo.exec.SelectContext(ctx, &sections, q); err != nil {
		return nil, errors.Wrap(err, "querying sections")
	}
	return sections, nil
}

func (repo rosterRepository) QueryMembers(ctx context.Context, section string) ([]roster.Member, error) {
	var members []roster.Member
	q := `SELECT id, section, name, position FROM member WHERE section = $1 ORDER BY position`
	if err := repo.exec.SelectContext(ctx, &members, q, section); err != nil {
		return nil, errors.Wrap(err, "querying members")
	}
	return members, nil
}

func (repo rosterRepository) GetMember(ctx context.Context, section, name string) (roster.Member, error) {
	var m roster.Member
	q := `SELECT id, section, name, position FROM member WHERE section = $1 AND name = $2 LIMIT 1`
	if err := repo.exec.GetContext(ctx, &m, q, section, name); err != nil {
		if err == sql.ErrNoRows {
			return roster.Member{}, roster.ErrMemberNotFound
		}
		return roster.Member{}, errors.Wrap(err, "getting member")
	}
	return m, nil
}

func (repo rosterRepository) FindMember(ctx context.Context, name string) (roster.Member, error) {
	var m roster.Member
	q := `SELECT id, section, name, position FROM member WHERE name = $1 ORDER BY position LIMIT 1`
	if err := repo.exec.GetContext(ctx, &m, q, name); err != nil {
		if err == sql.ErrNoRows {
			return roster.Member{}, roster.ErrMemberNotFound
		}
		return roster.Member{}, errors.Wrap(err, "finding member")
	}
	return m, nil
}
