package handler

import (
	"net/http"

	"tracker/internal/model"
	"tracker/internal/repository"
	"tracker/internal/search"

	"github.com/gin-gonic/gin"
)

type UpdateHandler struct {
	updateRepo *repository.UpdateRepository
	lookup     *EntityLookup
	indexer    *search.Indexer
}

func NewUpdateHandler(updateRepo *repository.UpdateRepository, lookup *EntityLookup, indexer *search.Indexer) *UpdateHandler {
	return &UpdateHandler{updateRepo: updateRepo, lookup: lookup, indexer: indexer}
}

type UpdateRequest struct {
	EntityID string `json:"entity_id" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

// Add godoc
// @Summary Append a user update to an entity's feed
// @Tags updates
// @Accept json
// @Produce json
// @Param request body UpdateRequest true "Entity and update text"
// @Success 201 {object} model.Update
// @Failure 404 {object} map[string]string
// @Router /updates [post]
// @Security BearerAuth
func (h *UpdateHandler) Add(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	kind := kindFromID(req.EntityID)
	if kind == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entity ID"})
		return
	}

	title, content, err := h.lookup.titleContent(c, kind, req.EntityID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entity not found"})
		return
	}

	update := &model.Update{
		EntityID:  req.EntityID,
		Content:   req.Content,
		Timestamp: nowStamp(),
		Type:      model.UpdateTypeUser,
	}
	if err := h.updateRepo.Add(c, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add update"})
		return
	}

	// Update text is part of the entity's search document.
	h.indexer.SyncEntity(c, kind, req.EntityID, title, content)

	c.JSON(http.StatusCreated, update)
}

// GetForEntity godoc
// @Summary List an entity's updates, newest first
// @Tags updates
// @Produce json
// @Param entity_id query string true "Entity ID"
// @Param type query string false "Filter by update type (user or system)"
// @Success 200 {array} model.Update
// @Router /updates [get]
// @Security BearerAuth
func (h *UpdateHandler) GetForEntity(c *gin.Context) {
	entityID := c.Query("entity_id")
	if entityID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity_id is required"})
		return
	}

	updateType := c.Query("type")
	if updateType != "" && updateType != model.UpdateTypeUser && updateType != model.UpdateTypeSystem {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be user or system"})
		return
	}

	updates, err := h.updateRepo.GetByEntityID(c, entityID, updateType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch updates"})
		return
	}

	c.JSON(http.StatusOK, updates)
}
