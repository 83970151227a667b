package roster

import (
	"context"
	"errors"
)

var (
	// errors
	ErrSectionNotFound = errors.New("section not found")
	ErrMemberNotFound  = errors.New("member not found")
)

type (
	Repository interface {
		QuerySections(ctx context.Context) ([]Section, error)
		QueryMembers(ctx context.Context, section string) ([]Member, error)
		GetMember(ctx context.Context, section, name string) (Member, error)
		FindMember(ctx context.Context, name string) (Member, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Sections(ctx context.Context) ([]Section, error) {
	return svc.repo.QuerySections(ctx)
}

func (svc *Service) SectionNames(ctx context.Context) ([]string, error) {
	sections, err := svc.repo.QuerySections(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(sections))
	for _, s := range sections {
		names = append(names, s.Name)
	}
	return names, nil
}

// Members returns a section's roster in display order.
// ErrSectionNotFound is returned for an unknown section.
func (svc *Service) Members(ctx context.Context, section string) ([]Member, error) {
	if err := svc.checkSection(ctx, section); err != nil {
		return nil, err
	}
	return svc.repo.QueryMembers(ctx, section)
}

// MemberNames returns a section's member display names in display order.
func (svc *Service) MemberNames(ctx context.Context, section string) ([]string, error) {
	members, err := svc.Members(ctx, section)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	return names, nil
}

// GetMember looks a member up within a section by display name.
func (svc *Service) GetMember(ctx context.Context, section, name string) (Member, error) {
	return svc.repo.GetMember(ctx, section, name)
}

// FindMember looks a member up across all sections; first match wins.
func (svc *Service) FindMember(ctx context.Context, name string) (Member, error) {
	return svc.repo.FindMember(ctx, name)
}

func (svc *Service) checkSection(ctx context.Context, section string) error {
	sections, err := svc.repo.QuerySections(ctx)
	if err != nil {
		return err
	}
	for _, s := range sections {
		if s.Name == section {
			return nil
		}
	}
	return ErrSectionNotFound
}
