package handler

import (
	"errors"
	"net/http"

	"tracker/internal/activity"
	"tracker/internal/mdfile"
	"tracker/internal/model"
	"tracker/internal/progress"
	"tracker/internal/repository"
	"tracker/internal/search"

	"github.com/gin-gonic/gin"
)

type SubtaskHandler struct {
	subtaskRepo *repository.SubtaskRepository
	taskRepo    *repository.TaskRepository
	projectRepo *repository.ProjectRepository
	statusRepo  *repository.StatusRepository
	updateRepo  *repository.UpdateRepository
	indexer     *search.Indexer
}

func NewSubtaskHandler(
	subtaskRepo *repository.SubtaskRepository,
	taskRepo *repository.TaskRepository,
	projectRepo *repository.ProjectRepository,
	statusRepo *repository.StatusRepository,
	updateRepo *repository.UpdateRepository,
	indexer *search.Indexer,
) *SubtaskHandler {
	return &SubtaskHandler{
		subtaskRepo: subtaskRepo,
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		statusRepo:  statusRepo,
		updateRepo:  updateRepo,
		indexer:     indexer,
	}
}

type SubtaskRequest struct {
	TaskID  string `json:"task_id" binding:"required"`
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
	Status  string `json:"status"`
}

type SubtaskUpdateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	DueDate *string `json:"due_date"`
}

type SubtaskResponse struct {
	model.Subtask
	ChecklistProgress progress.Report `json:"checklist_progress"`
	MarkdownProgress  progress.Report `json:"markdown_progress"`
}

// Create godoc
// @Summary Create a subtask under a task
// @Tags subtasks
// @Accept json
// @Produce json
// @Param request body SubtaskRequest true "Subtask data"
// @Success 201 {object} model.Subtask
// @Failure 404 {object} map[string]string
// @Router /subtasks [post]
// @Security BearerAuth
func (h *SubtaskHandler) Create(c *gin.Context) {
	var req SubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.taskRepo.GetByID(c, req.TaskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		return
	}

	status := req.Status
	if status == "" {
		status = model.DefaultStatus(model.KindSubtask)
	}
	if ok, err := h.statusRepo.ValidFor(c, status, model.KindSubtask); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate status"})
		return
	} else if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status for subtask"})
		return
	}

	seqID, err := h.projectRepo.NextSeqID(c, task.ProjectID, model.KindSubtask)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate sequence ID"})
		return
	}

	now := nowStamp()
	subtask := &model.Subtask{
		EntityFields: model.EntityFields{
			ID:      mdfile.NewID(model.KindSubtask),
			Title:   req.Title,
			Status:  status,
			Created: now,
			Updated: now,
			Content: req.Content,
			SeqID:   seqID,
		},
		TaskID:    task.ID,
		ProjectID: task.ProjectID,
		EpicID:    task.EpicID,
	}

	if err := h.subtaskRepo.Create(c, subtask); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subtask"})
		return
	}

	recordActivity(c, h.updateRepo, subtask.ID, activity.New(activity.Created, "", model.KindSubtask))
	h.indexer.SyncEntity(c, model.KindSubtask, subtask.ID, subtask.Title, subtask.Content)

	c.JSON(http.StatusCreated, subtask)
}

// GetByTask godoc
// @Summary List a task's subtasks
// @Tags subtasks
// @Produce json
// @Param task_id query string true "Task ID"
// @Param include_archived query bool false "Include archived subtasks"
// @Success 200 {array} model.Subtask
// @Router /subtasks [get]
// @Security BearerAuth
func (h *SubtaskHandler) GetByTask(c *gin.Context) {
	taskID := c.Query("task_id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task_id is required"})
		return
	}
	includeArchived := c.Query("include_archived") == "true"

	subtasks, err := h.subtaskRepo.GetByTaskID(c, taskID, includeArchived)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subtasks"})
		return
	}

	c.JSON(http.StatusOK, subtasks)
}

// GetByID godoc
// @Summary Get a subtask with its checklist roll-up
// @Tags subtasks
// @Produce json
// @Param id path string true "Subtask ID"
// @Success 200 {object} SubtaskResponse
// @Failure 404 {object} map[string]string
// @Router /subtasks/{id} [get]
// @Security BearerAuth
func (h *SubtaskHandler) GetByID(c *gin.Context) {
	subtask, err := h.subtaskRepo.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrSubtaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subtask not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subtask"})
		return
	}

	c.JSON(http.StatusOK, SubtaskResponse{
		Subtask:           *subtask,
		ChecklistProgress: progress.Checklist(checklistStatuses(subtask.Checklist)),
		MarkdownProgress:  progress.Markdown(subtask.Content),
	})
}

// Update godoc
// @Summary Update a subtask's fields
// @Tags subtasks
// @Accept json
// @Produce json
// @Param id path string true "Subtask ID"
// @Param request body SubtaskUpdateRequest true "Fields to change"
// @Success 200 {object} model.Subtask
// @Failure 404 {object} map[string]string
// @Router /subtasks/{id} [put]
// @Security BearerAuth
func (h *SubtaskHandler) Update(c *gin.Context) {
	var req SubtaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	subtask, err := h.subtaskRepo.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrSubtaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subtask not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subtask"})
		return
	}

	if req.Title != nil && *req.Title != "" {
		subtask.Title = *req.Title
	}
	if req.Content != nil {
		subtask.Content = *req.Content
	}
	if req.DueDate != nil {
		recordActivity(c, h.updateRepo, subtask.ID, activity.New(activity.DueDateChanged, deref(subtask.DueDate), *req.DueDate))
		subtask.DueDate = emptyToNil(req.DueDate)
	}
	subtask.Updated = nowStamp()

	if err := h.subtaskRepo.Update(c, subtask); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subtask"})
		return
	}

	h.indexer.SyncEntity(c, model.KindSubtask, subtask.ID, subtask.Title, subtask.Content)

	c.JSON(http.StatusOK, subtask)
}

// SetStatus godoc
// @Summary Change a subtask's status
// @Tags subtasks
// @Accept json
// @Produce json
// @Param id path string true "Subtask ID"
// @Param request body StatusRequest true "New status"
// @Success 200 {object} model.Subtask
// @Failure 404 {object} map[string]string
// @Router /subtasks/{id}/status [put]
// @Security BearerAuth
func (h *SubtaskHandler) SetStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	subtask, err := h.subtaskRepo.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrSubtaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subtask not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subtask"})
		return
	}

	if req.Status == subtask.Status {
		c.JSON(http.StatusOK, subtask)
		return
	}
	if ok, err := h.statusRepo.ValidFor(c, req.Status, model.KindSubtask); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate status"})
		return
	} else if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status for subtask"})
		return
	}

	now := nowStamp()
	if err := h.subtaskRepo.UpdateStatus(c, subtask.ID, req.Status, now); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	recordActivity(c, h.updateRepo, subtask.ID, activity.New(activity.StatusChanged, subtask.Status, req.Status))
	h.indexer.SyncEntity(c, model.KindSubtask, subtask.ID, subtask.Title, subtask.Content)

	subtask.Status = req.Status
	subtask.Updated = now
	c.JSON(http.StatusOK, subtask)
}

// Archive godoc
// @Summary Archive a subtask
// @Tags subtasks
// @Produce json
// @Param id path string true "Subtask ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /subtasks/{id}/archive [post]
// @Security BearerAuth
func (h *SubtaskHandler) Archive(c *gin.Context) {
	id := c.Param("id")

	if err := h.subtaskRepo.Archive(c, id); err != nil {
		if errors.Is(err, repository.ErrSubtaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subtask not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive subtask"})
		return
	}

	recordActivity(c, h.updateRepo, id, activity.New(activity.Archived, "", model.KindSubtask))

	c.JSON(http.StatusOK, gin.H{"message": "Subtask archived"})
}

// Checklist godoc
// @Summary Add, toggle or delete a subtask checklist item
// @Tags subtasks
// @Accept json
// @Produce json
// @Param id path string true "Subtask ID"
// @Param request body ChecklistRequest true "Checklist mutation"
// @Success 200 {object} model.Subtask
// @Failure 404 {object} map[string]string
// @Router /subtasks/{id}/checklist [post]
// @Security BearerAuth
func (h *SubtaskHandler) Checklist(c *gin.Context) {
	var req ChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	subtask, err := h.subtaskRepo.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrSubtaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subtask not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subtask"})
		return
	}

	items, err := applyChecklist(subtask.Checklist, req)
	if err != nil {
		if errors.Is(err, errChecklistItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Checklist item not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	subtask.Checklist = items
	subtask.Updated = nowStamp()

	if err := h.subtaskRepo.Update(c, subtask); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subtask"})
		return
	}

	c.JSON(http.StatusOK, subtask)
}
