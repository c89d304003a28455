package family

import (
	"context"
	"log/slog"

	familyDatamodel "github.com/coparently/coparently/internal/core/datamodel/family"
)

type Repository interface {
	GetParent(ctx context.Context, id string) (*familyDatamodel.Parent, error)
	CoParentOf(ctx context.Context, parentID string) (string, error)
	ListChildren(ctx context.Context, parentID string) ([]*familyDatamodel.Child, error)
}

// Circle is the view a parent sees of their own family.
type Circle struct {
	Parent   *familyDatamodel.Parent  `json:"parent"`
	CoParent *familyDatamodel.Parent  `json:"co_parent,omitempty"`
	Children []*familyDatamodel.Child `json:"children"`
}

// Service answers who is linked to whom. It implements the co-parent
// resolution the expense lifecycle depends on.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CoParentOf returns the id of the other parent in the circle, or
// internal.ErrCoParentNotLinked when the account has no link.
func (s *Service) CoParentOf(ctx context.Context, parentID string) (string, error) {
	return s.repo.CoParentOf(ctx, parentID)
}

func (s *Service) GetParent(ctx context.Context, id string) (*familyDatamodel.Parent, error) {
	return s.repo.GetParent(ctx, id)
}

// ParentEmail returns the address share emails go to.
func (s *Service) ParentEmail(ctx context.Context, parentID string) (string, error) {
	parent, err := s.repo.GetParent(ctx, parentID)
	if err != nil {
		return "", err
	}
	return parent.Email, nil
}

// CircleFor assembles the family view. A missing co-parent link is not an
// error here; the circle just has one parent.
func (s *Service) CircleFor(ctx context.Context, parentID string) (*Circle, error) {
	parent, err := s.repo.GetParent(ctx, parentID)
	if err != nil {
		return nil, err
	}

	circle := &Circle{Parent: parent}

	coParentID, err := s.repo.CoParentOf(ctx, parentID)
	if err == nil {
		coParent, coErr := s.repo.GetParent(ctx, coParentID)
		if coErr != nil {
			s.logger.Warn("co-parent record missing for link",
				"parent_id", parentID, "co_parent_id", coParentID)
		} else {
			circle.CoParent = coParent
		}
	}

	children, err := s.repo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	circle.Children = children

	return circle, nil
}
