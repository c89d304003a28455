package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/coparently/coparently/internal"
	familyDatamodel "github.com/coparently/coparently/internal/core/datamodel/family"
	"github.com/coparently/coparently/internal/family"
)

type FamilyRepository struct {
	db *gorm.DB
}

func NewFamilyRepository(db *gorm.DB) family.Repository {
	return &FamilyRepository{db: db}
}

func (r *FamilyRepository) GetParent(ctx context.Context, id string) (*familyDatamodel.Parent, error) {
	var row familyDatamodel.Parent
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrParentNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *FamilyRepository) CoParentOf(ctx context.Context, parentID string) (string, error) {
	var link familyDatamodel.CoParentLink
	err := r.db.WithContext(ctx).Where("parent_id = ?", parentID).First(&link).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", internal.ErrCoParentNotLinked
		}
		return "", err
	}
	return link.CoParentID, nil
}

func (r *FamilyRepository) ListChildren(ctx context.Context, parentID string) ([]*familyDatamodel.Child, error) {
	var rows []*familyDatamodel.Child
	err := r.db.WithContext(ctx).
		Where("family_of = ?", parentID).
		Order("birth_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
