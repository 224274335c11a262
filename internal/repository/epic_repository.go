package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tracker/internal/model"
)

type EpicRepository struct {
	db *gorm.DB
}

func NewEpicRepository(db *gorm.DB) *EpicRepository {
	return &EpicRepository{db: db}
}

func (r *EpicRepository) Create(ctx context.Context, epic *model.Epic) error {
	return r.db.WithContext(ctx).Create(epic).Error
}

func (r *EpicRepository) GetByID(ctx context.Context, id string) (*model.Epic, error) {
	var epic model.Epic
	if err := r.db.WithContext(ctx).First(&epic, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEpicNotFound
		}
		return nil, err
	}
	return &epic, nil
}

func (r *EpicRepository) GetByProjectID(ctx context.Context, projectID string, includeArchived bool) ([]model.Epic, error) {
	var epics []model.Epic
	q := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("seq_id")
	if !includeArchived {
		q = q.Where("archived = ?", false)
	}
	err := q.Find(&epics).Error
	return epics, err
}

// GetInboxEpic finds the quick-capture epic of a project, if any.
func (r *EpicRepository) GetInboxEpic(ctx context.Context, projectID string) (*model.Epic, error) {
	var epic model.Epic
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND is_inbox_epic = ?", projectID, true).
		First(&epic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &epic, nil
}

func (r *EpicRepository) Update(ctx context.Context, epic *model.Epic) error {
	result := r.db.WithContext(ctx).Save(epic)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEpicNotFound
	}
	return nil
}

func (r *EpicRepository) Archive(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&model.Epic{}).
		Where("id = ?", id).
		Update("archived", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEpicNotFound
	}
	return nil
}

// TaskCounts returns done and total counts of the epic's live tasks.
// Epic progress is always derived from these on read, never stored.
func (r *EpicRepository) TaskCounts(ctx context.Context, epicID string) (done, total int64, err error) {
	db := r.db.WithContext(ctx).Model(&model.Task{})
	if err = db.Where("epic_id = ? AND archived = ?", epicID, false).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = r.db.WithContext(ctx).Model(&model.Task{}).
		Where("epic_id = ? AND archived = ? AND status = ?", epicID, false, model.StatusDone).
		Count(&done).Error
	return done, total, err
}
