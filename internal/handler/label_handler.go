package handler

import (
	"errors"
	"net/http"

	"tracker/internal/activity"
	"tracker/internal/repository"
	"tracker/internal/search"

	"github.com/gin-gonic/gin"
)

type LabelHandler struct {
	labelRepo  *repository.LabelRepository
	updateRepo *repository.UpdateRepository
	lookup     *EntityLookup
	indexer    *search.Indexer
}

func NewLabelHandler(
	labelRepo *repository.LabelRepository,
	updateRepo *repository.UpdateRepository,
	lookup *EntityLookup,
	indexer *search.Indexer,
) *LabelHandler {
	return &LabelHandler{
		labelRepo:  labelRepo,
		updateRepo: updateRepo,
		lookup:     lookup,
		indexer:    indexer,
	}
}

type LabelLinkRequest struct {
	EntityID string `json:"entity_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// GetAll godoc
// @Summary List all labels
// @Tags labels
// @Produce json
// @Success 200 {array} model.Label
// @Router /labels [get]
// @Security BearerAuth
func (h *LabelHandler) GetAll(c *gin.Context) {
	labels, err := h.labelRepo.GetAll(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch labels"})
		return
	}
	c.JSON(http.StatusOK, labels)
}

// ForEntity godoc
// @Summary List an entity's labels
// @Tags labels
// @Produce json
// @Param entity_id query string true "Entity ID"
// @Success 200 {array} model.Label
// @Router /labels/for [get]
// @Security BearerAuth
func (h *LabelHandler) ForEntity(c *gin.Context) {
	entityID := c.Query("entity_id")
	kind := kindFromID(entityID)
	if kind == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entity ID"})
		return
	}

	labels, err := h.labelRepo.GetForEntity(c, kind, entityID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch labels"})
		return
	}
	c.JSON(http.StatusOK, labels)
}

// Attach godoc
// @Summary Attach a label to an entity, creating the label on demand
// @Tags labels
// @Accept json
// @Produce json
// @Param request body LabelLinkRequest true "Entity and label name"
// @Success 200 {object} model.Label
// @Failure 404 {object} map[string]string
// @Router /labels/attach [post]
// @Security BearerAuth
func (h *LabelHandler) Attach(c *gin.Context) {
	var req LabelLinkRequest
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

	label, err := h.labelRepo.FindOrCreate(c, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create label"})
		return
	}
	if err := h.labelRepo.AddToEntity(c, kind, req.EntityID, label.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach label"})
		return
	}

	recordActivity(c, h.updateRepo, req.EntityID, activity.New(activity.LabelAdded, "", label.Name))
	h.indexer.SyncEntity(c, kind, req.EntityID, title, content)

	c.JSON(http.StatusOK, label)
}

// Detach godoc
// @Summary Detach a label from an entity
// @Tags labels
// @Accept json
// @Produce json
// @Param request body LabelLinkRequest true "Entity and label name"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /labels/detach [post]
// @Security BearerAuth
func (h *LabelHandler) Detach(c *gin.Context) {
	var req LabelLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	kind := kindFromID(req.EntityID)
	if kind == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entity ID"})
		return
	}

	label, err := h.labelRepo.GetByName(c, req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrLabelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Label not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch label"})
		return
	}

	if err := h.labelRepo.RemoveFromEntity(c, kind, req.EntityID, label.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to detach label"})
		return
	}

	recordActivity(c, h.updateRepo, req.EntityID, activity.New(activity.LabelRemoved, label.Name, ""))
	if title, content, err := h.lookup.titleContent(c, kind, req.EntityID); err == nil {
		h.indexer.SyncEntity(c, kind, req.EntityID, title, content)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Label detached"})
}
