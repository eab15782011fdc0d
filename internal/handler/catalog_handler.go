package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/business-school/campus-api/internal/models"
	appErrors "github.com/business-school/campus-api/pkg/errors"
	"github.com/business-school/campus-api/pkg/response"
)

type catalogService interface {
	Status(ctx context.Context) (*models.CatalogStatus, error)
	Departments(ctx context.Context) ([]models.Department, error)
	Department(ctx context.Context, id int) (*models.DepartmentDetail, error)
	Club(ctx context.Context, id int) (*models.ClubRoster, error)
	Events(ctx context.Context) ([]models.EventSummary, error)
	Event(ctx context.Context, id int) (*models.EventDetail, error)
}

// CatalogHandler exposes read-only catalog endpoints.
type CatalogHandler struct {
	catalog catalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog catalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Status godoc
// @Summary Schema and seed status
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /status [get]
func (h *CatalogHandler) Status(c *gin.Context) {
	status, err := h.catalog.Status(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}

// ListDepartments godoc
// @Summary List departments
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *CatalogHandler) ListDepartments(c *gin.Context) {
	departments, err := h.catalog.Departments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, departments)
}

// GetDepartment godoc
// @Summary Department with its clubs
// @Tags Catalog
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /departments/{id} [get]
func (h *CatalogHandler) GetDepartment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	department, err := h.catalog.Department(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, department)
}

// GetClub godoc
// @Summary Club roster
// @Tags Catalog
// @Produce json
// @Param id path int true "Club ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /clubs/{id} [get]
func (h *CatalogHandler) GetClub(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	roster, err := h.catalog.Club(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster)
}

// ListEvents godoc
// @Summary List events with registration counts
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *CatalogHandler) ListEvents(c *gin.Context) {
	events, err := h.catalog.Events(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, events)
}

// GetEvent godoc
// @Summary Event with clubs and registrations
// @Tags Catalog
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *CatalogHandler) GetEvent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	event, err := h.catalog.Event(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "id must be a positive integer"))
		return 0, false
	}
	return id, true
}
