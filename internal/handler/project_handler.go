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

type ProjectHandler struct {
	projectRepo *repository.ProjectRepository
	statusRepo  *repository.StatusRepository
	updateRepo  *repository.UpdateRepository
	indexer     *search.Indexer
}

func NewProjectHandler(
	projectRepo *repository.ProjectRepository,
	statusRepo *repository.StatusRepository,
	updateRepo *repository.UpdateRepository,
	indexer *search.Indexer,
) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
		statusRepo:  statusRepo,
		updateRepo:  updateRepo,
		indexer:     indexer,
	}
}

type ProjectRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
	Color   string `json:"color"`
	Status  string `json:"status"`
}

type ProjectUpdateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Color   *string `json:"color"`
	Status  *string `json:"status"`
}

type ProjectResponse struct {
	model.Project
	Stats            model.ProjectStats `json:"stats"`
	MarkdownProgress progress.Report    `json:"markdown_progress"`
}

// recordActivity appends a system entry to an entity's feed. Feed write
// failures do not fail the request that caused them.
func recordActivity(c *gin.Context, updateRepo *repository.UpdateRepository, entityID string, entry activity.Entry) {
	_ = updateRepo.Add(c, &model.Update{
		EntityID:     entityID,
		Content:      entry.Content,
		Timestamp:    entry.Timestamp,
		Type:         model.UpdateTypeSystem,
		ActivityType: entry.ActivityType,
	})
}

// Create godoc
// @Summary Create a project
// @Tags projects
// @Accept json
// @Produce json
// @Param request body ProjectRequest true "Project data"
// @Success 201 {object} model.Project
// @Router /projects [post]
// @Security BearerAuth
func (h *ProjectHandler) Create(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	status := req.Status
	if status == "" {
		status = model.DefaultStatus(model.KindProject)
	}
	if ok, err := h.statusRepo.ValidFor(c, status, model.KindProject); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate status"})
		return
	} else if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status for project"})
		return
	}

	now := nowStamp()
	project := &model.Project{
		EntityFields: model.EntityFields{
			ID:      mdfile.NewID(model.KindProject),
			Title:   req.Title,
			Status:  status,
			Created: now,
			Updated: now,
			Content: req.Content,
		},
	}
	project.Color = projectColor(project.ID, req.Color)

	if err := h.projectRepo.Create(c, project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	recordActivity(c, h.updateRepo, project.ID, activity.New(activity.Created, "", model.KindProject))
	h.indexer.SyncEntity(c, model.KindProject, project.ID, project.Title, project.Content)

	c.JSON(http.StatusCreated, project)
}

// GetAll godoc
// @Summary List projects with their completion stats
// @Tags projects
// @Produce json
// @Param include_archived query bool false "Include archived projects"
// @Success 200 {array} ProjectResponse
// @Router /projects [get]
// @Security BearerAuth
func (h *ProjectHandler) GetAll(c *gin.Context) {
	includeArchived := c.Query("include_archived") == "true"

	projects, err := h.projectRepo.GetAll(c, includeArchived)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	responses := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		stats, err := h.projectRepo.Stats(c, p.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute project stats"})
			return
		}
		// Cache refresh is best effort; the response carries fresh numbers
		// either way.
		_ = h.projectRepo.CacheStats(c, p.ID, stats)
		responses = append(responses, ProjectResponse{
			Project:          p,
			Stats:            *stats,
			MarkdownProgress: progress.Markdown(p.Content),
		})
	}

	c.JSON(http.StatusOK, responses)
}

// GetByID godoc
// @Summary Get a project with its completion stats
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} ProjectResponse
// @Failure 404 {object} map[string]string
// @Router /projects/{id} [get]
// @Security BearerAuth
func (h *ProjectHandler) GetByID(c *gin.Context) {
	project, err := h.projectRepo.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project"})
		return
	}

	stats, err := h.projectRepo.Stats(c, project.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute project stats"})
		return
	}
	_ = h.projectRepo.CacheStats(c, project.ID, stats)

	c.JSON(http.StatusOK, ProjectResponse{
		Project:          *project,
		Stats:            *stats,
		MarkdownProgress: progress.Markdown(project.Content),
	})
}

// Update godoc
// @Summary Update a project
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body ProjectUpdateRequest true "Fields to change"
// @Success 200 {object} model.Project
// @Failure 404 {object} map[string]string
// @Router /projects/{id} [put]
// @Security BearerAuth
func (h *ProjectHandler) Update(c *gin.Context) {
	var req ProjectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, err := h.projectRepo.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project"})
		return
	}

	if req.Title != nil && *req.Title != "" {
		project.Title = *req.Title
	}
	if req.Content != nil {
		project.Content = *req.Content
	}
	if req.Color != nil {
		project.Color = *req.Color
	}
	if req.Status != nil && *req.Status != project.Status {
		if ok, err := h.statusRepo.ValidFor(c, *req.Status, model.KindProject); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate status"})
			return
		} else if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status for project"})
			return
		}
		recordActivity(c, h.updateRepo, project.ID, activity.New(activity.StatusChanged, project.Status, *req.Status))
		project.Status = *req.Status
	}
	project.Updated = nowStamp()

	if err := h.projectRepo.Update(c, project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	h.indexer.SyncEntity(c, model.KindProject, project.ID, project.Title, project.Content)

	c.JSON(http.StatusOK, project)
}

// Archive godoc
// @Summary Archive a project
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /projects/{id}/archive [post]
// @Security BearerAuth
func (h *ProjectHandler) Archive(c *gin.Context) {
	id := c.Param("id")
	if id == model.InboxProjectID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Inbox project cannot be archived"})
		return
	}

	if err := h.projectRepo.Archive(c, id); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive project"})
		return
	}

	// Archived projects stay in the search index.
	recordActivity(c, h.updateRepo, id, activity.New(activity.Archived, "", model.KindProject))

	c.JSON(http.StatusOK, gin.H{"message": "Project archived"})
}

// Activity godoc
// @Summary Recent activity across a project's epics, tasks and subtasks
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Param limit query int false "Max entries (default 50)"
// @Success 200 {array} model.Update
// @Router /projects/{id}/activity [get]
// @Security BearerAuth
func (h *ProjectHandler) Activity(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	updates, err := h.updateRepo.ProjectActivity(c, c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activity"})
		return
	}

	c.JSON(http.StatusOK, updates)
}
