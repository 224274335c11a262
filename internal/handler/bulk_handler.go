package handler

import (
	"errors"
	"net/http"

	"tracker/internal/activity"
	"tracker/internal/model"
	"tracker/internal/repository"
	"tracker/internal/search"

	"github.com/gin-gonic/gin"
)

// BulkHandler applies one status change to a batch of tasks and subtasks.
type BulkHandler struct {
	taskRepo    *repository.TaskRepository
	subtaskRepo *repository.SubtaskRepository
	statusRepo  *repository.StatusRepository
	updateRepo  *repository.UpdateRepository
	indexer     *search.Indexer
}

func NewBulkHandler(
	taskRepo *repository.TaskRepository,
	subtaskRepo *repository.SubtaskRepository,
	statusRepo *repository.StatusRepository,
	updateRepo *repository.UpdateRepository,
	indexer *search.Indexer,
) *BulkHandler {
	return &BulkHandler{
		taskRepo:    taskRepo,
		subtaskRepo: subtaskRepo,
		statusRepo:  statusRepo,
		updateRepo:  updateRepo,
		indexer:     indexer,
	}
}

type BulkUpdateRequest struct {
	IDs    []string `json:"ids" binding:"required,min=1"`
	Status string   `json:"status" binding:"required"`
}

type BulkUpdateResponse struct {
	Updated int               `json:"updated"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Update godoc
// @Summary Set one status on a batch of task and subtask IDs
// @Tags bulk
// @Accept json
// @Produce json
// @Param request body BulkUpdateRequest true "IDs and target status"
// @Success 200 {object} BulkUpdateResponse
// @Router /bulk-update [post]
// @Security BearerAuth
func (h *BulkHandler) Update(c *gin.Context) {
	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Tasks and subtasks share the same status set, one check covers both.
	if ok, err := h.statusRepo.ValidFor(c, req.Status, model.KindTask); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate status"})
		return
	} else if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	resp := BulkUpdateResponse{Errors: map[string]string{}}
	now := nowStamp()
	for _, id := range req.IDs {
		if err := h.updateOne(c, id, req.Status, now); err != nil {
			resp.Errors[id] = err.Error()
			continue
		}
		resp.Updated++
	}
	if len(resp.Errors) == 0 {
		resp.Errors = nil
	}

	c.JSON(http.StatusOK, resp)
}

func (h *BulkHandler) updateOne(c *gin.Context, id, status, now string) error {
	switch kindFromID(id) {
	case model.KindTask:
		task, err := h.taskRepo.GetByID(c, id)
		if err != nil {
			return err
		}
		if task.Status == status {
			return nil
		}
		if err := h.taskRepo.UpdateStatus(c, id, status, now); err != nil {
			return err
		}
		recordActivity(c, h.updateRepo, id, activity.New(activity.StatusChanged, task.Status, status))
		h.indexer.SyncEntity(c, model.KindTask, id, task.Title, task.Content)
		return nil

	case model.KindSubtask:
		subtask, err := h.subtaskRepo.GetByID(c, id)
		if err != nil {
			return err
		}
		if subtask.Status == status {
			return nil
		}
		if err := h.subtaskRepo.UpdateStatus(c, id, status, now); err != nil {
			return err
		}
		recordActivity(c, h.updateRepo, id, activity.New(activity.StatusChanged, subtask.Status, status))
		h.indexer.SyncEntity(c, model.KindSubtask, id, subtask.Title, subtask.Content)
		return nil
	}
	return errors.New("only task and subtask IDs can be bulk updated")
}
