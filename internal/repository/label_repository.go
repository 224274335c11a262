package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tracker/internal/model"
)

type LabelRepository struct {
	db *gorm.DB
}

func NewLabelRepository(db *gorm.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

func (r *LabelRepository) GetAll(ctx context.Context) ([]model.Label, error) {
	var labels []model.Label
	err := r.db.WithContext(ctx).Order("name").Find(&labels).Error
	return labels, err
}

// FindOrCreate returns the label with the given normalized name, creating
// it on first use.
func (r *LabelRepository) FindOrCreate(ctx context.Context, name string) (*model.Label, error) {
	var label model.Label
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&label).Error
	if err == nil {
		return &label, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	label = model.Label{Name: name}
	if err := r.db.WithContext(ctx).Create(&label).Error; err != nil {
		return nil, err
	}
	return &label, nil
}

// AddToEntity tags an entity with a label, ignoring duplicates.
func (r *LabelRepository) AddToEntity(ctx context.Context, entityType, entityID string, labelID uint) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO entity_label_links (entity_type, entity_id, label_id, created_at) VALUES (?, ?, ?, NOW()) ON CONFLICT DO NOTHING",
		entityType, entityID, labelID,
	).Error
}

// RemoveFromEntity removes a label tag from an entity.
func (r *LabelRepository) RemoveFromEntity(ctx context.Context, entityType, entityID string, labelID uint) error {
	return r.db.WithContext(ctx).Exec(
		"DELETE FROM entity_label_links WHERE entity_type = ? AND entity_id = ? AND label_id = ?",
		entityType, entityID, labelID,
	).Error
}

func (r *LabelRepository) GetForEntity(ctx context.Context, entityType, entityID string) ([]model.Label, error) {
	var labels []model.Label
	err := r.db.WithContext(ctx).
		Joins("JOIN entity_label_links l ON l.label_id = labels.id").
		Where("l.entity_type = ? AND l.entity_id = ?", entityType, entityID).
		Order("labels.name").
		Find(&labels).Error
	return labels, err
}

func (r *LabelRepository) GetByName(ctx context.Context, name string) (*model.Label, error) {
	var label model.Label
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&label).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabelNotFound
		}
		return nil, err
	}
	return &label, nil
}
