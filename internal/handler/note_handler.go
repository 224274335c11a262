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

type NoteHandler struct {
	noteRepo    *repository.NoteRepository
	projectRepo *repository.ProjectRepository
	epicRepo    *repository.EpicRepository
	taskRepo    *repository.TaskRepository
	subtaskRepo *repository.SubtaskRepository
	personRepo  *repository.PersonRepository
	updateRepo  *repository.UpdateRepository
	indexer     *search.Indexer
}

func NewNoteHandler(
	noteRepo *repository.NoteRepository,
	projectRepo *repository.ProjectRepository,
	epicRepo *repository.EpicRepository,
	taskRepo *repository.TaskRepository,
	subtaskRepo *repository.SubtaskRepository,
	personRepo *repository.PersonRepository,
	updateRepo *repository.UpdateRepository,
	indexer *search.Indexer,
) *NoteHandler {
	return &NoteHandler{
		noteRepo:    noteRepo,
		projectRepo: projectRepo,
		epicRepo:    epicRepo,
		taskRepo:    taskRepo,
		subtaskRepo: subtaskRepo,
		personRepo:  personRepo,
		updateRepo:  updateRepo,
		indexer:     indexer,
	}
}

type NoteRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

type NoteUpdateRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type NoteLinkRequest struct {
	EntityID string `json:"entity_id" binding:"required"`
	NoteID   string `json:"note_id" binding:"required"`
}

type NoteResponse struct {
	model.Note
	Backlinks []repository.Backlink `json:"backlinks"`
}

// Create godoc
// @Summary Create a note
// @Tags notes
// @Accept json
// @Produce json
// @Param request body NoteRequest true "Note data"
// @Success 201 {object} model.Note
// @Router /notes [post]
// @Security BearerAuth
func (h *NoteHandler) Create(c *gin.Context) {
	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	now := nowStamp()
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
}

// GetAll godoc
// @Summary List notes
// @Tags notes
// @Produce json
// @Param include_archived query bool false "Include archived notes"
// @Success 200 {array} model.Note
// @Router /notes [get]
// @Security BearerAuth
func (h *NoteHandler) GetAll(c *gin.Context) {
	notes, err := h.noteRepo.GetAll(c, c.Query("include_archived") == "true")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notes"})
		return
	}
	c.JSON(http.StatusOK, notes)
}

// GetByID godoc
// @Summary Get a note with its backlinks
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} NoteResponse
// @Failure 404 {object} map[string]string
// @Router /notes/{id} [get]
// @Security BearerAuth
func (h *NoteHandler) GetByID(c *gin.Context) {
	note, err := h.noteRepo.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch note"})
		return
	}

	backlinks, err := h.noteRepo.Backlinks(c, note.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch backlinks"})
		return
	}

	c.JSON(http.StatusOK, NoteResponse{Note: *note, Backlinks: backlinks})
}

// Update godoc
// @Summary Update a note
// @Tags notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body NoteUpdateRequest true "Fields to change"
// @Success 200 {object} model.Note
// @Failure 404 {object} map[string]string
// @Router /notes/{id} [put]
// @Security BearerAuth
func (h *NoteHandler) Update(c *gin.Context) {
	var req NoteUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	note, err := h.noteRepo.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch note"})
		return
	}

	if req.Title != nil && *req.Title != "" {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	note.Updated = nowStamp()

	if err := h.noteRepo.Update(c, note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update note"})
		return
	}

	h.indexer.SyncEntity(c, model.KindNote, note.ID, note.Title, note.Content)

	c.JSON(http.StatusOK, note)
}

// Delete godoc
// @Summary Delete a note
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /notes/{id} [delete]
// @Security BearerAuth
func (h *NoteHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.noteRepo.Delete(c, id); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete note"})
		return
	}

	h.indexer.Remove(c, id)

	c.JSON(http.StatusOK, gin.H{"message": "Note deleted"})
}

// Link godoc
// @Summary Link a note to any entity
// @Tags notes
// @Accept json
// @Produce json
// @Param request body NoteLinkRequest true "Entity and note"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /notes/link [post]
// @Security BearerAuth
func (h *NoteHandler) Link(c *gin.Context) {
	var req NoteLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if _, err := h.noteRepo.GetByID(c, req.NoteID); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch note"})
		return
	}

	changed, err := h.setNoteLink(c, req.EntityID, req.NoteID, true)
	if err != nil {
		h.linkError(c, err)
		return
	}
	if changed {
		recordActivity(c, h.updateRepo, req.EntityID, activity.New(activity.NoteLinked, "", req.NoteID))
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note linked"})
}

// Unlink godoc
// @Summary Remove a note link from an entity
// @Tags notes
// @Accept json
// @Produce json
// @Param request body NoteLinkRequest true "Entity and note"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /notes/unlink [post]
// @Security BearerAuth
func (h *NoteHandler) Unlink(c *gin.Context) {
	var req NoteLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	changed, err := h.setNoteLink(c, req.EntityID, req.NoteID, false)
	if err != nil {
		h.linkError(c, err)
		return
	}
	if !changed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Note link not found"})
		return
	}
	recordActivity(c, h.updateRepo, req.EntityID, activity.New(activity.NoteUnlinked, req.NoteID, ""))

	c.JSON(http.StatusOK, gin.H{"message": "Note unlinked"})
}

func (h *NoteHandler) linkError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errUnknownKind):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entity ID"})
	case errors.Is(err, repository.ErrProjectNotFound),
		errors.Is(err, repository.ErrEpicNotFound),
		errors.Is(err, repository.ErrTaskNotFound),
		errors.Is(err, repository.ErrSubtaskNotFound),
		errors.Is(err, repository.ErrNoteNotFound),
		errors.Is(err, repository.ErrPersonNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update note links"})
	}
}

// setNoteLink mutates the note list stored on the target entity. It reports
// whether the list actually changed, so a repeated link is a no-op.
func (h *NoteHandler) setNoteLink(c *gin.Context, entityID, noteID string, add bool) (bool, error) {
	mutate := func(list model.StringList) (model.StringList, bool) {
		if add {
			next, changed := appendUnique(list, noteID)
			return next, changed
		}
		next, changed := removeValue(list, noteID)
		return next, changed
	}

	switch kindFromID(entityID) {
	case model.KindProject:
		p, err := h.projectRepo.GetByID(c, entityID)
		if err != nil {
			return false, err
		}
		next, changed := mutate(p.NoteIDs)
		if !changed {
			return false, nil
		}
		p.NoteIDs = next
		p.Updated = nowStamp()
		return true, h.projectRepo.Update(c, p)
	case model.KindEpic:
		e, err := h.epicRepo.GetByID(c, entityID)
		if err != nil {
			return false, err
		}
		next, changed := mutate(e.NoteIDs)
		if !changed {
			return false, nil
		}
		e.NoteIDs = next
		e.Updated = nowStamp()
		return true, h.epicRepo.Update(c, e)
	case model.KindTask:
		t, err := h.taskRepo.GetByID(c, entityID)
		if err != nil {
			return false, err
		}
		next, changed := mutate(t.NoteIDs)
		if !changed {
			return false, nil
		}
		t.NoteIDs = next
		t.Updated = nowStamp()
		return true, h.taskRepo.Update(c, t)
	case model.KindSubtask:
		s, err := h.subtaskRepo.GetByID(c, entityID)
		if err != nil {
			return false, err
		}
		next, changed := mutate(s.NoteIDs)
		if !changed {
			return false, nil
		}
		s.NoteIDs = next
		s.Updated = nowStamp()
		return true, h.subtaskRepo.Update(c, s)
	case model.KindNote:
		n, err := h.noteRepo.GetByID(c, entityID)
		if err != nil {
			return false, err
		}
		next, changed := mutate(n.NoteIDs)
		if !changed {
			return false, nil
		}
		n.NoteIDs = next
		n.Updated = nowStamp()
		return true, h.noteRepo.Update(c, n)
	case model.KindPerson:
		p, err := h.personRepo.GetByID(c, entityID)
		if err != nil {
			return false, err
		}
		next, changed := mutate(p.NoteIDs)
		if !changed {
			return false, nil
		}
		p.NoteIDs = next
		return true, h.personRepo.Update(c, p)
	}
	return false, errUnknownKind
}
