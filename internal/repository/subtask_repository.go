package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tracker/internal/model"
)

type SubtaskRepository struct {
	db *gorm.DB
}

func NewSubtaskRepository(db *gorm.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

func (r *SubtaskRepository) Create(ctx context.Context, subtask *model.Subtask) error {
	return r.db.WithContext(ctx).Create(subtask).Error
}

func (r *SubtaskRepository) GetByID(ctx context.Context, id string) (*model.Subtask, error) {
	var subtask model.Subtask
	if err := r.db.WithContext(ctx).First(&subtask, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubtaskNotFound
		}
		return nil, err
	}
	return &subtask, nil
}

func (r *SubtaskRepository) GetByTaskID(ctx context.Context, taskID string, includeArchived bool) ([]model.Subtask, error) {
	var subtasks []model.Subtask
	q := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("seq_id")
	if !includeArchived {
		q = q.Where("archived = ?", false)
	}
	err := q.Find(&subtasks).Error
	return subtasks, err
}

func (r *SubtaskRepository) Update(ctx context.Context, subtask *model.Subtask) error {
	result := r.db.WithContext(ctx).Save(subtask)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubtaskNotFound
	}
	return nil
}

func (r *SubtaskRepository) UpdateStatus(ctx context.Context, id, status, updated string) error {
	result := r.db.WithContext(ctx).Model(&model.Subtask{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated": updated})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubtaskNotFound
	}
	return nil
}

func (r *SubtaskRepository) Archive(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&model.Subtask{}).
		Where("id = ?", id).
		Update("archived", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubtaskNotFound
	}
	return nil
}

// Counts returns done and total counts of a task's live subtasks, feeding
// the task's overall progress roll-up.
func (r *SubtaskRepository) Counts(ctx context.Context, taskID string) (done, total int64, err error) {
	if err = r.db.WithContext(ctx).Model(&model.Subtask{}).
		Where("task_id = ? AND archived = ?", taskID, false).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = r.db.WithContext(ctx).Model(&model.Subtask{}).
		Where("task_id = ? AND archived = ? AND status = ?", taskID, false, model.StatusDone).
		Count(&done).Error
	return done, total, err
}
