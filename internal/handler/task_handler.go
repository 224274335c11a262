package handler

import (
	"errors"
	"net/http"
	"strconv"

	"tracker/internal/activity"
	"tracker/internal/mdfile"
	"tracker/internal/model"
	"tracker/internal/progress"
	"tracker/internal/repository"
	"tracker/internal/search"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskRepo    *repository.TaskRepository
	subtaskRepo *repository.SubtaskRepository
	epicRepo    *repository.EpicRepository
	projectRepo *repository.ProjectRepository
	statusRepo  *repository.StatusRepository
	updateRepo  *repository.UpdateRepository
	personRepo  *repository.PersonRepository
	labelRepo   *repository.LabelRepository
	indexer     *search.Indexer
}

func NewTaskHandler(
	taskRepo *repository.TaskRepository,
	subtaskRepo *repository.SubtaskRepository,
	epicRepo *repository.EpicRepository,
	projectRepo *repository.ProjectRepository,
	statusRepo *repository.StatusRepository,
	updateRepo *repository.UpdateRepository,
	personRepo *repository.PersonRepository,
	labelRepo *repository.LabelRepository,
	indexer *search.Indexer,
) *TaskHandler {
	return &TaskHandler{
		taskRepo:    taskRepo,
		subtaskRepo: subtaskRepo,
		epicRepo:    epicRepo,
		projectRepo: projectRepo,
		statusRepo:  statusRepo,
		updateRepo:  updateRepo,
		personRepo:  personRepo,
		labelRepo:   labelRepo,
		indexer:     indexer,
	}
}

type TaskRequest struct {
	ProjectID string  `json:"project_id" binding:"required"`
	EpicID    *string `json:"epic_id"`
	Title     string  `json:"title" binding:"required"`
	Content   string  `json:"content"`
	Status    string  `json:"status"`
	Priority  *int    `json:"priority"`
	DueDate   *string `json:"due_date"`
}

type TaskUpdateRequest struct {
	Title         *string             `json:"title"`
	Content       *string             `json:"content"`
	Priority      *int                `json:"priority"`
	DueDate       *string             `json:"due_date"`
	ScheduleStart *string             `json:"schedule_start"`
	ScheduleEnd   *string             `json:"schedule_end"`
	Dependencies  *model.Dependencies `json:"dependencies"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type TaskResponse struct {
	model.Task

	ChecklistProgress progress.Report `json:"checklist_progress"`
	SubtaskProgress   progress.Report `json:"subtask_progress"`
	MarkdownProgress  progress.Report `json:"markdown_progress"`
	OverallProgress   progress.Report `json:"overall_progress"`
	Labels            []model.Label   `json:"labels"`
	People            []model.Person  `json:"people"`
}

// Create godoc
// @Summary Create a task in a project, optionally under an epic
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body TaskRequest true "Task data"
// @Success 201 {object} model.Task
// @Failure 404 {object} map[string]string
// @Router /tasks [post]
// @Security BearerAuth
func (h *TaskHandler) Create(c *gin.Context) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if _, err := h.projectRepo.GetByID(c, req.ProjectID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project"})
		return
	}

	if req.EpicID != nil && *req.EpicID != "" {
		epic, err := h.epicRepo.GetByID(c, *req.EpicID)
		if err != nil {
			if errors.Is(err, repository.ErrEpicNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Epic not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch epic"})
			return
		}
		if epic.ProjectID != req.ProjectID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Epic belongs to a different project"})
			return
		}
	} else {
		req.EpicID = nil
	}

	status := req.Status
	if status == "" {
		status = model.DefaultStatus(model.KindTask)
	}
	if ok, err := h.statusRepo.ValidFor(c, status, model.KindTask); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate status"})
		return
	} else if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status for task"})
		return
	}

	seqID, err := h.projectRepo.NextSeqID(c, req.ProjectID, model.KindTask)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate sequence ID"})
		return
	}

	now := nowStamp()
	task := &model.Task{
		EntityFields: model.EntityFields{
			ID:       mdfile.NewID(model.KindTask),
			Title:    req.Title,
			Status:   status,
			Priority: req.Priority,
			Created:  now,
			Updated:  now,
			DueDate:  req.DueDate,
			Content:  req.Content,
			SeqID:    seqID,
		},
		ProjectID: req.ProjectID,
		EpicID:    req.EpicID,
	}

	if err := h.taskRepo.Create(c, task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	recordActivity(c, h.updateRepo, task.ID, activity.New(activity.Created, "", model.KindTask))
	h.indexer.SyncEntity(c, model.KindTask, task.ID, task.Title, task.Content)

	c.JSON(http.StatusCreated, task)
}

// GetByProject godoc
// @Summary List tasks for a project, or all live tasks in a status
// @Tags tasks
// @Produce json
// @Param project_id query string false "Project ID"
// @Param epic_id query string false "Epic ID, or 'none' for tasks outside any epic"
// @Param status query string false "Status filter, for the cross-project view when project_id is absent"
// @Param include_archived query bool false "Include archived tasks"
// @Success 200 {array} model.Task
// @Router /tasks [get]
// @Security BearerAuth
func (h *TaskHandler) GetByProject(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		// Without a project the only supported view is "all my work in
		// this status" across projects.
		status := c.Query("status")
		if status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project_id is required"})
			return
		}
		tasks, err := h.taskRepo.GetByStatus(c, status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
			return
		}
		c.JSON(http.StatusOK, tasks)
		return
	}
	includeArchived := c.Query("include_archived") == "true"

	var tasks []model.Task
	var err error
	if c.Query("epic_id") == "none" {
		tasks, err = h.taskRepo.GetDirect(c, projectID)
	} else {
		tasks, err = h.taskRepo.GetByProjectID(c, projectID, c.Query("epic_id"), includeArchived)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// GetByID godoc
// @Summary Get a task with roll-ups, labels and assigned people
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} TaskResponse
// @Failure 404 {object} map[string]string
// @Router /tasks/{id} [get]
// @Security BearerAuth
func (h *TaskHandler) GetByID(c *gin.Context) {
	task, err := h.taskRepo.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		return
	}

	resp, err := h.taskResponse(c, task)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build task view"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Update a task's fields
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body TaskUpdateRequest true "Fields to change"
// @Success 200 {object} model.Task
// @Failure 404 {object} map[string]string
// @Router /tasks/{id} [put]
// @Security BearerAuth
func (h *TaskHandler) Update(c *gin.Context) {
	var req TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.taskRepo.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		return
	}

	if req.Title != nil && *req.Title != "" {
		task.Title = *req.Title
	}
	if req.Content != nil {
		task.Content = *req.Content
	}
	if req.Priority != nil {
		old := ""
		if task.Priority != nil {
			old = strconv.Itoa(*task.Priority)
		}
		recordActivity(c, h.updateRepo, task.ID, activity.New(activity.PriorityChanged, old, strconv.Itoa(*req.Priority)))
		task.Priority = req.Priority
	}
	if req.DueDate != nil {
		recordActivity(c, h.updateRepo, task.ID, activity.New(activity.DueDateChanged, deref(task.DueDate), *req.DueDate))
		task.DueDate = emptyToNil(req.DueDate)
	}
	if req.ScheduleStart != nil {
		recordActivity(c, h.updateRepo, task.ID, activity.New(activity.ScheduleStartChanged, deref(task.ScheduleStart), *req.ScheduleStart))
		task.ScheduleStart = emptyToNil(req.ScheduleStart)
	}
	if req.ScheduleEnd != nil {
		recordActivity(c, h.updateRepo, task.ID, activity.New(activity.ScheduleEndChanged, deref(task.ScheduleEnd), *req.ScheduleEnd))
		task.ScheduleEnd = emptyToNil(req.ScheduleEnd)
	}
	if req.Dependencies != nil {
		h.applyDependencies(c, task, *req.Dependencies)
	}
	task.Updated = nowStamp()

	if err := h.taskRepo.Update(c, task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	h.indexer.SyncEntity(c, model.KindTask, task.ID, task.Title, task.Content)

	c.JSON(http.StatusOK, task)
}

// SetStatus godoc
// @Summary Change a task's status
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body StatusRequest true "New status"
// @Success 200 {object} model.Task
// @Failure 404 {object} map[string]string
// @Router /tasks/{id}/status [put]
// @Security BearerAuth
func (h *TaskHandler) SetStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.taskRepo.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		return
	}

	if req.Status == task.Status {
		c.JSON(http.StatusOK, task)
		return
	}
	if ok, err := h.statusRepo.ValidFor(c, req.Status, model.KindTask); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate status"})
		return
	} else if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status for task"})
		return
	}

	now := nowStamp()
	if err := h.taskRepo.UpdateStatus(c, task.ID, req.Status, now); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	recordActivity(c, h.updateRepo, task.ID, activity.New(activity.StatusChanged, task.Status, req.Status))
	h.indexer.SyncEntity(c, model.KindTask, task.ID, task.Title, task.Content)

	task.Status = req.Status
	task.Updated = now
	c.JSON(http.StatusOK, task)
}

// Archive godoc
// @Summary Archive a task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tasks/{id}/archive [post]
// @Security BearerAuth
func (h *TaskHandler) Archive(c *gin.Context) {
	id := c.Param("id")

	if err := h.taskRepo.Archive(c, id); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive task"})
		return
	}

	recordActivity(c, h.updateRepo, id, activity.New(activity.Archived, "", model.KindTask))

	c.JSON(http.StatusOK, gin.H{"message": "Task archived"})
}

// Checklist godoc
// @Summary Add, toggle or delete a checklist item
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body ChecklistRequest true "Checklist mutation"
// @Success 200 {object} model.Task
// @Failure 404 {object} map[string]string
// @Router /tasks/{id}/checklist [post]
// @Security BearerAuth
func (h *TaskHandler) Checklist(c *gin.Context) {
	var req ChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.taskRepo.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		return
	}

	items, err := applyChecklist(task.Checklist, req)
	if err != nil {
		if errors.Is(err, errChecklistItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Checklist item not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task.Checklist = items
	task.Updated = nowStamp()

	if err := h.taskRepo.Update(c, task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	c.JSON(http.StatusOK, task)
}

// applyDependencies replaces the task's dependency edges, mirroring each
// change onto the counterpart task and recording the activity.
func (h *TaskHandler) applyDependencies(c *gin.Context, task *model.Task, next model.Dependencies) {
	h.syncEdges(c, task.ID, task.Dependencies.Blocks, next.Blocks, true)
	h.syncEdges(c, task.ID, task.Dependencies.BlockedBy, next.BlockedBy, false)
	task.Dependencies = next
}

func (h *TaskHandler) syncEdges(c *gin.Context, taskID string, old, next []string, blocks bool) {
	added, removed := diffValues(old, next)
	for _, other := range added {
		h.mirrorEdge(c, other, taskID, blocks, true)
		recordActivity(c, h.updateRepo, taskID, activity.New(activity.DependencyAdded, "", other))
	}
	for _, other := range removed {
		h.mirrorEdge(c, other, taskID, blocks, false)
		recordActivity(c, h.updateRepo, taskID, activity.New(activity.DependencyRemoved, other, ""))
	}
}

// mirrorEdge keeps the reverse direction stored on the other task, so both
// sides of a blocks/blocked_by pair always agree. A missing counterpart is
// skipped; the edge still lands on the task being edited.
func (h *TaskHandler) mirrorEdge(c *gin.Context, otherID, taskID string, blocks, add bool) {
	other, err := h.taskRepo.GetByID(c, otherID)
	if err != nil {
		return
	}

	list := other.Dependencies.BlockedBy
	if !blocks {
		list = other.Dependencies.Blocks
	}
	var changed bool
	if add {
		list, changed = appendUnique(list, taskID)
	} else {
		list, changed = removeValue(list, taskID)
	}
	if !changed {
		return
	}

	if blocks {
		other.Dependencies.BlockedBy = list
	} else {
		other.Dependencies.Blocks = list
	}
	other.Updated = nowStamp()
	_ = h.taskRepo.Update(c, other)
}

// taskResponse assembles the full task view with roll-ups and tags.
func (h *TaskHandler) taskResponse(c *gin.Context, task *model.Task) (*TaskResponse, error) {
	subDone, subTotal, err := h.subtaskRepo.Counts(c, task.ID)
	if err != nil {
		return nil, err
	}

	labels, err := h.labelRepo.GetForEntity(c, model.KindTask, task.ID)
	if err != nil {
		return nil, err
	}
	people, err := h.personRepo.GetForEntity(c, model.KindTask, task.ID)
	if err != nil {
		return nil, err
	}

	checklist := progress.Checklist(checklistStatuses(task.Checklist))
	subtasks := progress.Children(int(subDone), int(subTotal))

	return &TaskResponse{
		Task:              *task,
		ChecklistProgress: checklist,
		SubtaskProgress:   subtasks,
		MarkdownProgress:  progress.Markdown(task.Content),
		OverallProgress:   progress.Combined(checklist, subtasks),
		Labels:            labels,
		People:            people,
	}, nil
}
