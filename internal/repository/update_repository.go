package repository

import (
	"context"

	"gorm.io/gorm"

	"tracker/internal/model"
)

type UpdateRepository struct {
	db *gorm.DB
}

func NewUpdateRepository(db *gorm.DB) *UpdateRepository {
	return &UpdateRepository{db: db}
}

func (r *UpdateRepository) Add(ctx context.Context, update *model.Update) error {
	return r.db.WithContext(ctx).Create(update).Error
}

// GetByEntityID lists an entity's updates newest first. updateType filters
// to "user" or "system" when non-empty.
func (r *UpdateRepository) GetByEntityID(ctx context.Context, entityID, updateType string) ([]model.Update, error) {
	var updates []model.Update
	q := r.db.WithContext(ctx).Where("entity_id = ?", entityID).Order("timestamp DESC, id DESC")
	if updateType != "" {
		q = q.Where("type = ?", updateType)
	}
	err := q.Find(&updates).Error
	return updates, err
}

// ReplaceForEntity swaps an entity's full update history, used when the
// migration re-imports a file.
func (r *UpdateRepository) ReplaceForEntity(ctx context.Context, entityID string, updates []model.Update) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entity_id = ?", entityID).Delete(&model.Update{}).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Create(&updates).Error
	})
}

// ProjectActivity merges the feeds of a project and all of its descendants,
// newest first.
func (r *UpdateRepository) ProjectActivity(ctx context.Context, projectID string, limit int) ([]model.Update, error) {
	if limit <= 0 {
		limit = 50
	}
	var updates []model.Update
	err := r.db.WithContext(ctx).
		Where(`entity_id = ?
			OR entity_id IN (SELECT id FROM epics WHERE project_id = ?)
			OR entity_id IN (SELECT id FROM tasks WHERE project_id = ?)
			OR entity_id IN (SELECT id FROM subtasks WHERE project_id = ?)`,
			projectID, projectID, projectID, projectID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&updates).Error
	return updates, err
}
