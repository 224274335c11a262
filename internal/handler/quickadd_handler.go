package handler

import (
	"errors"
	"net/http"

	"tracker/internal/activity"
	"tracker/internal/mdfile"
	"tracker/internal/model"
	"tracker/internal/repository"
	"tracker/internal/search"

	"github.com/gin-gonic/gin"
)

// QuickAddHandler captures one-liners into the inbox project's inbox epic
// without making the caller pick a destination first.
type QuickAddHandler struct {
	projectRepo *repository.ProjectRepository
	epicRepo    *repository.EpicRepository
	taskRepo    *repository.TaskRepository
	noteRepo    *repository.NoteRepository
	updateRepo  *repository.UpdateRepository
	indexer     *search.Indexer
}

func NewQuickAddHandler(
	projectRepo *repository.ProjectRepository,
	epicRepo *repository.EpicRepository,
	taskRepo *repository.TaskRepository,
	noteRepo *repository.NoteRepository,
	updateRepo *repository.UpdateRepository,
	indexer *search.Indexer,
) *QuickAddHandler {
	return &QuickAddHandler{
		projectRepo: projectRepo,
		epicRepo:    epicRepo,
		taskRepo:    taskRepo,
		noteRepo:    noteRepo,
		updateRepo:  updateRepo,
		indexer:     indexer,
	}
}

type QuickAddRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
	Target  string `json:"target" binding:"omitempty,oneof=task note"`
}

// Add godoc
// @Summary Capture a task or note into the inbox
// @Tags quick-add
// @Accept json
// @Produce json
// @Param request body QuickAddRequest true "Capture data"
// @Success 201 {object} map[string]interface{}
// @Router /quick-add [post]
// @Security BearerAuth
func (h *QuickAddHandler) Add(c *gin.Context) {
	var req QuickAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	now := nowStamp()

	if req.Target == "note" {
		note := &model.Note{
			EntityFields: model.EntityFields{
				ID:      mdfile.NewID(model.KindNote),
				Title:   req.Title,
				Status:  model.DefaultStatus(model.KindNote),
				Created: now,
				Updated: now,
				Content: req.Content,
			},
		}
		if err := h.noteRepo.Create(c, note); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create note"})
			return
		}
		h.indexer.SyncEntity(c, model.KindNote, note.ID, note.Title, note.Content)
		c.JSON(http.StatusCreated, note)
		return
	}

	epic, err := h.ensureInbox(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare inbox"})
		return
	}

	seqID, err := h.projectRepo.NextSeqID(c, model.InboxProjectID, model.KindTask)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate sequence ID"})
		return
	}

	task := &model.Task{
		EntityFields: model.EntityFields{
			ID:      mdfile.NewID(model.KindTask),
			Title:   req.Title,
			Status:  model.DefaultStatus(model.KindTask),
			Created: now,
			Updated: now,
			Content: req.Content,
			SeqID:   seqID,
		},
		ProjectID: model.InboxProjectID,
		EpicID:    &epic.ID,
	}
	if err := h.taskRepo.Create(c, task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	recordActivity(c, h.updateRepo, task.ID, activity.New(activity.Created, "", model.KindTask))
	h.indexer.SyncEntity(c, model.KindTask, task.ID, task.Title, task.Content)

	c.JSON(http.StatusCreated, task)
}

// ensureInbox creates the inbox project and its inbox epic on first use.
func (h *QuickAddHandler) ensureInbox(c *gin.Context) (*model.Epic, error) {
	_, err := h.projectRepo.GetByID(c, model.InboxProjectID)
	if errors.Is(err, repository.ErrProjectNotFound) {
		now := nowStamp()
		project := &model.Project{
			EntityFields: model.EntityFields{
				ID:      model.InboxProjectID,
				Title:   "Inbox",
				Status:  model.StatusActive,
				Created: now,
				Updated: now,
			},
			IsInbox: true,
		}
		project.Color = projectColor(project.ID, "")
		if err := h.projectRepo.Create(c, project); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	epic, err := h.epicRepo.GetInboxEpic(c, model.InboxProjectID)
	if err != nil {
		return nil, err
	}
	if epic != nil {
		return epic, nil
	}

	now := nowStamp()
	epic = &model.Epic{
		EntityFields: model.EntityFields{
			ID:      mdfile.NewID(model.KindEpic),
			Title:   "Inbox",
			Status:  model.StatusActive,
			Created: now,
			Updated: now,
			SeqID:   "e1",
		},
		ProjectID:   model.InboxProjectID,
		IsInboxEpic: true,
	}
	if err := h.epicRepo.Create(c, epic); err != nil {
		return nil, err
	}
	return epic, nil
}
