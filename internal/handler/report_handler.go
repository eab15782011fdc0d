package handler

import (
	"context"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/business-school/campus-api/internal/models"
	"github.com/business-school/campus-api/internal/service"
	"github.com/business-school/campus-api/pkg/export"
	"github.com/business-school/campus-api/pkg/response"
)

type standingsService interface {
	Standings(ctx context.Context) ([]models.PointsStanding, error)
	Export(ctx context.Context, format export.Format) (*service.ReportResult, error)
}

// ReportHandler exposes reporting endpoints.
type ReportHandler struct {
	reports standingsService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports standingsService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Standings godoc
// @Summary Student points standings
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/standings [get]
func (h *ReportHandler) Standings(c *gin.Context) {
	standings, err := h.reports.Standings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, standings)
}

// ExportStandings godoc
// @Summary Download points standings
// @Tags Reports
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /reports/standings/export [get]
func (h *ReportHandler) ExportStandings(c *gin.Context) {
	format := export.Format(c.DefaultQuery("format", string(export.FormatCSV)))
	result, err := h.reports.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.FileAttachment(result.Path, filepath.Base(result.Path))
}
