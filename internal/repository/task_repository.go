package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tracker/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// GetByProjectID retrieves tasks of a project; epicID narrows to one epic
// when non-empty.
func (r *TaskRepository) GetByProjectID(ctx context.Context, projectID, epicID string, includeArchived bool) ([]model.Task, error) {
	var tasks []model.Task
	q := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("seq_id")
	if epicID != "" {
		q = q.Where("epic_id = ?", epicID)
	}
	if !includeArchived {
		q = q.Where("archived = ?", false)
	}
	err := q.Find(&tasks).Error
	return tasks, err
}

// GetDirect retrieves a project's tasks that sit outside any epic.
func (r *TaskRepository) GetDirect(ctx context.Context, projectID string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND epic_id IS NULL AND archived = ?", projectID, false).
		Order("seq_id").
		Find(&tasks).Error
	return tasks, err
}

// GetByStatus retrieves all live tasks in the given status.
func (r *TaskRepository) GetByStatus(ctx context.Context, status string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("status = ? AND archived = ?", status, false).
		Order("project_id, seq_id").
		Find(&tasks).Error
	return tasks, err
}

// Update updates an existing task
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Save(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// UpdateStatus sets only the status and updated columns.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id, status, updated string) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated": updated})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Archive soft-deletes a task.
func (r *TaskRepository) Archive(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Update("archived", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
