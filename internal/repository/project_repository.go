package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"tracker/internal/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// GetAll lists projects, skipping archived ones unless asked for.
func (r *ProjectRepository) GetAll(ctx context.Context, includeArchived bool) ([]model.Project, error) {
	var projects []model.Project
	q := r.db.WithContext(ctx).Order("created")
	if !includeArchived {
		q = q.Where("archived = ?", false)
	}
	err := q.Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	result := r.db.WithContext(ctx).Save(project)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// Archive soft-deletes a project.
func (r *ProjectRepository) Archive(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ?", id).
		Update("archived", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// Stats aggregates child counts for a project. Archived children are
// excluded so completion reflects live work only.
func (r *ProjectRepository) Stats(ctx context.Context, projectID string) (*model.ProjectStats, error) {
	stats := &model.ProjectStats{}
	db := r.db.WithContext(ctx)

	var epics, tasks, doneTasks, subtasks, doneSubtasks int64

	if err := db.Model(&model.Epic{}).
		Where("project_id = ? AND archived = ?", projectID, false).
		Count(&epics).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Task{}).
		Where("project_id = ? AND archived = ?", projectID, false).
		Count(&tasks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Task{}).
		Where("project_id = ? AND archived = ? AND status = ?", projectID, false, model.StatusDone).
		Count(&doneTasks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Subtask{}).
		Where("project_id = ? AND archived = ?", projectID, false).
		Count(&subtasks).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Subtask{}).
		Where("project_id = ? AND archived = ? AND status = ?", projectID, false, model.StatusDone).
		Count(&doneSubtasks).Error; err != nil {
		return nil, err
	}

	stats.EpicsCount = int(epics)
	stats.TasksCount = int(tasks)
	stats.DoneTasksCount = int(doneTasks)
	stats.SubtasksCount = int(subtasks)
	stats.DoneSubtasksCount = int(doneSubtasks)
	if tasks > 0 {
		stats.CompletionPercentage = int(doneTasks * 100 / tasks)
	}
	return stats, nil
}

// StatsVersion is bumped when the shape of the cached stats blob changes,
// so stale caches can be told apart from fresh ones.
const StatsVersion = 1

// CacheStats writes the last computed roll-up onto the project row.
func (r *ProjectRepository) CacheStats(ctx context.Context, id string, stats *model.ProjectStats) error {
	return r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stats":         *stats,
			"stats_version": StatsVersion,
			"stats_updated": time.Now(),
		}).Error
}

// NextSeqID returns the next per-project sequence tag: e1/e2... for epics,
// t1/t2... for tasks, st1/st2... for subtasks.
func (r *ProjectRepository) NextSeqID(ctx context.Context, projectID, kind string) (string, error) {
	var prefix, table string
	switch kind {
	case model.KindEpic:
		prefix, table = "e", "epics"
	case model.KindTask:
		prefix, table = "t", "tasks"
	case model.KindSubtask:
		prefix, table = "st", "subtasks"
	default:
		return "", fmt.Errorf("no sequence for kind %q", kind)
	}

	var seqIDs []string
	err := r.db.WithContext(ctx).Table(table).
		Where("project_id = ? AND seq_id <> ''", projectID).
		Pluck("seq_id", &seqIDs).Error
	if err != nil {
		return "", err
	}

	max := 0
	for _, seq := range seqIDs {
		if !strings.HasPrefix(seq, prefix) {
			continue
		}
		if n, err := strconv.Atoi(seq[len(prefix):]); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%d", prefix, max+1), nil
}
