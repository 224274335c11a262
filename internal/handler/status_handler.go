package handler

import (
	"net/http"

	"tracker/internal/repository"

	"github.com/gin-gonic/gin"
)

type StatusHandler struct {
	statusRepo *repository.StatusRepository
}

func NewStatusHandler(statusRepo *repository.StatusRepository) *StatusHandler {
	return &StatusHandler{statusRepo: statusRepo}
}

// GetAll godoc
// @Summary List statuses, optionally for one entity kind
// @Tags statuses
// @Produce json
// @Param entity_type query string false "Entity kind (project, epic, task, subtask, note)"
// @Success 200 {array} model.Status
// @Router /statuses [get]
// @Security BearerAuth
func (h *StatusHandler) GetAll(c *gin.Context) {
	if kind := c.Query("entity_type"); kind != "" {
		statuses, err := h.statusRepo.GetForEntityType(c, kind)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statuses"})
			return
		}
		c.JSON(http.StatusOK, statuses)
		return
	}

	statuses, err := h.statusRepo.GetAll(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statuses"})
		return
	}
	c.JSON(http.StatusOK, statuses)
}
