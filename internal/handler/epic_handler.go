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

type EpicHandler struct {
	epicRepo    *repository.EpicRepository
	projectRepo *repository.ProjectRepository
	statusRepo  *repository.StatusRepository
	updateRepo  *repository.UpdateRepository
	indexer     *search.Indexer
}

func NewEpicHandler(
	epicRepo *repository.EpicRepository,
	projectRepo *repository.ProjectRepository,
	statusRepo *repository.StatusRepository,
	updateRepo *repository.UpdateRepository,
	indexer *search.Indexer,
) *EpicHandler {
	return &EpicHandler{
		epicRepo:    epicRepo,
		projectRepo: projectRepo,
		statusRepo:  statusRepo,
		updateRepo:  updateRepo,
		indexer:     indexer,
	}
}

type EpicRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content"`
	Status    string `json:"status"`
}

type EpicUpdateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Status  *string `json:"status"`
}

type EpicResponse struct {
	model.Epic
	Progress         progress.Report `json:"progress"`
	MarkdownProgress progress.Report `json:"markdown_progress"`
}

// Create godoc
// @Summary Create an epic in a project
// @Tags epics
// @Accept json
// @Produce json
// @Param request body EpicRequest true "Epic data"
// @Success 201 {object} model.Epic
// @Failure 404 {object} map[string]string
// @Router /epics [post]
// @Security BearerAuth
func (h *EpicHandler) Create(c *gin.Context) {
	var req EpicRequest
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

	status := req.Status
	if status == "" {
		status = model.DefaultStatus(model.KindEpic)
	}
	if ok, err := h.statusRepo.ValidFor(c, status, model.KindEpic); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate status"})
		return
	} else if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status for epic"})
		return
	}

	seqID, err := h.projectRepo.NextSeqID(c, req.ProjectID, model.KindEpic)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate sequence ID"})
		return
	}

	now := nowStamp()
	epic := &model.Epic{
		EntityFields: model.EntityFields{
			ID:      mdfile.NewID(model.KindEpic),
			Title:   req.Title,
			Status:  status,
			Created: now,
			Updated: now,
			Content: req.Content,
			SeqID:   seqID,
		},
		ProjectID: req.ProjectID,
	}

	if err := h.epicRepo.Create(c, epic); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create epic"})
		return
	}

	recordActivity(c, h.updateRepo, epic.ID, activity.New(activity.Created, "", model.KindEpic))
	h.indexer.SyncEntity(c, model.KindEpic, epic.ID, epic.Title, epic.Content)

	c.JSON(http.StatusCreated, epic)
}

// GetByProject godoc
// @Summary List a project's epics with task roll-ups
// @Tags epics
// @Produce json
// @Param project_id query string true "Project ID"
// @Param include_archived query bool false "Include archived epics"
// @Success 200 {array} EpicResponse
// @Router /epics [get]
// @Security BearerAuth
func (h *EpicHandler) GetByProject(c *gin.Context) {
	projectID := c.Query("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id is required"})
		return
	}
	includeArchived := c.Query("include_archived") == "true"

	epics, err := h.epicRepo.GetByProjectID(c, projectID, includeArchived)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch epics"})
		return
	}

	responses := make([]EpicResponse, 0, len(epics))
	for _, e := range epics {
		report, err := h.epicProgress(c, &e)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute epic progress"})
			return
		}
		responses = append(responses, EpicResponse{
			Epic:             e,
			Progress:         report,
			MarkdownProgress: progress.Markdown(e.Content),
		})
	}

	c.JSON(http.StatusOK, responses)
}

// GetByID godoc
// @Summary Get an epic with its task roll-up
// @Tags epics
// @Produce json
// @Param id path string true "Epic ID"
// @Success 200 {object} EpicResponse
// @Failure 404 {object} map[string]string
// @Router /epics/{id} [get]
// @Security BearerAuth
func (h *EpicHandler) GetByID(c *gin.Context) {
	epic, err := h.epicRepo.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrEpicNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Epic not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch epic"})
		return
	}

	report, err := h.epicProgress(c, epic)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute epic progress"})
		return
	}

	c.JSON(http.StatusOK, EpicResponse{
		Epic:             *epic,
		Progress:         report,
		MarkdownProgress: progress.Markdown(epic.Content),
	})
}

// Update godoc
// @Summary Update an epic
// @Tags epics
// @Accept json
// @Produce json
// @Param id path string true "Epic ID"
// @Param request body EpicUpdateRequest true "Fields to change"
// @Success 200 {object} model.Epic
// @Failure 404 {object} map[string]string
// @Router /epics/{id} [put]
// @Security BearerAuth
func (h *EpicHandler) Update(c *gin.Context) {
	var req EpicUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	epic, err := h.epicRepo.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrEpicNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Epic not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch epic"})
		return
	}

	if req.Title != nil && *req.Title != "" {
		epic.Title = *req.Title
	}
	if req.Content != nil {
		epic.Content = *req.Content
	}
	if req.Status != nil && *req.Status != epic.Status {
		if ok, err := h.statusRepo.ValidFor(c, *req.Status, model.KindEpic); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate status"})
			return
		} else if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status for epic"})
			return
		}
		recordActivity(c, h.updateRepo, epic.ID, activity.New(activity.StatusChanged, epic.Status, *req.Status))
		epic.Status = *req.Status
	}
	epic.Updated = nowStamp()

	if err := h.epicRepo.Update(c, epic); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update epic"})
		return
	}

	h.indexer.SyncEntity(c, model.KindEpic, epic.ID, epic.Title, epic.Content)

	c.JSON(http.StatusOK, epic)
}

// Archive godoc
// @Summary Archive an epic
// @Tags epics
// @Produce json
// @Param id path string true "Epic ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /epics/{id}/archive [post]
// @Security BearerAuth
func (h *EpicHandler) Archive(c *gin.Context) {
	id := c.Param("id")

	epic, err := h.epicRepo.GetByID(c, id)
	if err != nil {
		if errors.Is(err, repository.ErrEpicNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Epic not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch epic"})
		return
	}
	if epic.IsInboxEpic {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Inbox epic cannot be archived"})
		return
	}

	if err := h.epicRepo.Archive(c, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive epic"})
		return
	}

	recordActivity(c, h.updateRepo, id, activity.New(activity.Archived, "", model.KindEpic))

	c.JSON(http.StatusOK, gin.H{"message": "Epic archived"})
}

// epicProgress is the share of the epic's non-archived tasks that are done.
func (h *EpicHandler) epicProgress(c *gin.Context, epic *model.Epic) (progress.Report, error) {
	done, total, err := h.epicRepo.TaskCounts(c, epic.ID)
	if err != nil {
		return progress.Report{}, err
	}
	return progress.Children(int(done), int(total)), nil
}
