package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tracker/internal/model"
)

type StatusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

func (r *StatusRepository) GetAll(ctx context.Context) ([]model.Status, error) {
	var statuses []model.Status
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order, name").
		Find(&statuses).Error
	return statuses, err
}

func (r *StatusRepository) GetByName(ctx context.Context, name string) (*model.Status, error) {
	var status model.Status
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&status).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStatusNotFound
		}
		return nil, err
	}
	return &status, nil
}

// GetForEntityType lists the statuses applicable to a kind. entity_types is
// a comma-separated column, so this matches on containment.
func (r *StatusRepository) GetForEntityType(ctx context.Context, kind string) ([]model.Status, error) {
	var statuses []model.Status
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND (',' || entity_types || ',') LIKE ?", true, "%,"+kind+",%").
		Order("sort_order, name").
		Find(&statuses).Error
	return statuses, err
}

// ValidFor reports whether the named status may be used on the given kind.
func (r *StatusRepository) ValidFor(ctx context.Context, name, kind string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Status{}).
		Where("name = ? AND is_active = ? AND (',' || entity_types || ',') LIKE ?", name, true, "%,"+kind+",%").
		Count(&count).Error
	return count > 0, err
}
