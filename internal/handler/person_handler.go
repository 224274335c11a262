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

type PersonHandler struct {
	personRepo *repository.PersonRepository
	updateRepo *repository.UpdateRepository
	lookup     *EntityLookup
	indexer    *search.Indexer
}

func NewPersonHandler(
	personRepo *repository.PersonRepository,
	updateRepo *repository.UpdateRepository,
	lookup *EntityLookup,
	indexer *search.Indexer,
) *PersonHandler {
	return &PersonHandler{
		personRepo: personRepo,
		updateRepo: updateRepo,
		lookup:     lookup,
		indexer:    indexer,
	}
}

type PersonRequest struct {
	Name        string `json:"name" binding:"required"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	JobTitle    string `json:"job_title"`
	Company     string `json:"company"`
	Content     string `json:"content"`
}

type PersonUpdateRequest struct {
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	JobTitle    *string `json:"job_title"`
	Company     *string `json:"company"`
	Content     *string `json:"content"`
}

type PersonLinkRequest struct {
	EntityID string `json:"entity_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

type PersonResponse struct {
	model.Person
	References []repository.Reference `json:"references"`
}

// Create godoc
// @Summary Create a person
// @Tags people
// @Accept json
// @Produce json
// @Param request body PersonRequest true "Person data"
// @Success 201 {object} model.Person
// @Failure 409 {object} map[string]string
// @Router /people [post]
// @Security BearerAuth
func (h *PersonHandler) Create(c *gin.Context) {
	var req PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	name := normalizeName(req.Name)
	existing, err := h.personRepo.FindByName(c, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check person"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Person with this name already exists"})
		return
	}

	person := &model.Person{
		ID:          mdfile.NewID(model.KindPerson),
		Name:        name,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Phone:       req.Phone,
		JobTitle:    req.JobTitle,
		Company:     req.Company,
		Content:     req.Content,
	}

	if err := h.personRepo.Create(c, person); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create person"})
		return
	}

	h.indexer.SyncEntity(c, model.KindPerson, person.ID, person.Name, person.Content)

	c.JSON(http.StatusCreated, person)
}

// GetAll godoc
// @Summary List people
// @Tags people
// @Produce json
// @Success 200 {array} model.Person
// @Router /people [get]
// @Security BearerAuth
func (h *PersonHandler) GetAll(c *gin.Context) {
	persons, err := h.personRepo.GetAll(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch people"})
		return
	}
	c.JSON(http.StatusOK, persons)
}

// GetByID godoc
// @Summary Get a person with the entities referencing them
// @Tags people
// @Produce json
// @Param id path string true "Person ID"
// @Success 200 {object} PersonResponse
// @Failure 404 {object} map[string]string
// @Router /people/{id} [get]
// @Security BearerAuth
func (h *PersonHandler) GetByID(c *gin.Context) {
	person, err := h.personRepo.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrPersonNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Person not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch person"})
		return
	}

	refs, err := h.personRepo.References(c, person.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch references"})
		return
	}

	c.JSON(http.StatusOK, PersonResponse{Person: *person, References: refs})
}

// Update godoc
// @Summary Update a person's profile
// @Tags people
// @Accept json
// @Produce json
// @Param id path string true "Person ID"
// @Param request body PersonUpdateRequest true "Fields to change"
// @Success 200 {object} model.Person
// @Failure 404 {object} map[string]string
// @Router /people/{id} [put]
// @Security BearerAuth
func (h *PersonHandler) Update(c *gin.Context) {
	var req PersonUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	person, err := h.personRepo.GetByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrPersonNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Person not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch person"})
		return
	}

	if req.DisplayName != nil {
		person.DisplayName = *req.DisplayName
	}
	if req.Email != nil {
		person.Email = *req.Email
	}
	if req.Phone != nil {
		person.Phone = *req.Phone
	}
	if req.JobTitle != nil {
		person.JobTitle = *req.JobTitle
	}
	if req.Company != nil {
		person.Company = *req.Company
	}
	if req.Content != nil {
		person.Content = *req.Content
	}

	if err := h.personRepo.Update(c, person); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update person"})
		return
	}

	name := person.DisplayName
	if name == "" {
		name = person.Name
	}
	h.indexer.SyncEntity(c, model.KindPerson, person.ID, name, person.Content)

	c.JSON(http.StatusOK, person)
}

// Assign godoc
// @Summary Assign a person to an entity, creating the person on demand
// @Tags people
// @Accept json
// @Produce json
// @Param request body PersonLinkRequest true "Entity and person name"
// @Success 200 {object} model.Person
// @Failure 404 {object} map[string]string
// @Router /people/assign [post]
// @Security BearerAuth
func (h *PersonHandler) Assign(c *gin.Context) {
	var req PersonLinkRequest
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

	name := normalizeName(req.Name)
	person, err := h.personRepo.FindByName(c, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch person"})
		return
	}
	if person == nil {
		person = &model.Person{
			ID:   mdfile.NewID(model.KindPerson),
			Name: name,
		}
		if err := h.personRepo.Create(c, person); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create person"})
			return
		}
	}

	if err := h.personRepo.Assign(c, kind, req.EntityID, person.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign person"})
		return
	}

	recordActivity(c, h.updateRepo, req.EntityID, activity.New(activity.PersonAdded, "", person.Name))
	h.indexer.SyncEntity(c, kind, req.EntityID, title, content)

	c.JSON(http.StatusOK, person)
}

// Unassign godoc
// @Summary Remove a person from an entity
// @Tags people
// @Accept json
// @Produce json
// @Param request body PersonLinkRequest true "Entity and person name"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /people/unassign [post]
// @Security BearerAuth
func (h *PersonHandler) Unassign(c *gin.Context) {
	var req PersonLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	kind := kindFromID(req.EntityID)
	if kind == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entity ID"})
		return
	}

	person, err := h.personRepo.FindByName(c, normalizeName(req.Name))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch person"})
		return
	}
	if person == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Person not found"})
		return
	}

	if err := h.personRepo.Unassign(c, kind, req.EntityID, person.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unassign person"})
		return
	}

	recordActivity(c, h.updateRepo, req.EntityID, activity.New(activity.PersonRemoved, person.Name, ""))
	if title, content, err := h.lookup.titleContent(c, kind, req.EntityID); err == nil {
		h.indexer.SyncEntity(c, kind, req.EntityID, title, content)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Person unassigned"})
}
