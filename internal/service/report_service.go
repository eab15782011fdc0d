package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/business-school/campus-api/internal/models"
	"github.com/business-school/campus-api/pkg/export"
	appErrors "github.com/business-school/campus-api/pkg/errors"
)

type standingsReader interface {
	PointsStandings(ctx context.Context) ([]models.PointsStanding, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ReportResult describes a rendered report file.
type ReportResult struct {
	Path   string        `json:"path"`
	Format export.Format `json:"format"`
	Rows   int           `json:"rows"`
}

// ReportService computes points standings and writes them as CSV or PDF.
type ReportService struct {
	reader  standingsReader
	storage fileStorage
	csv     datasetRenderer
	pdf     datasetRenderer
	logger  *zap.Logger
	now     func() time.Time
}

// NewReportService constructs a ReportService. Nil renderers fall back to the pkg/export defaults.
func NewReportService(reader standingsReader, storage fileStorage, logger *zap.Logger, csv, pdf datasetRenderer) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{
		reader:  reader,
		storage: storage,
		csv:     csv,
		pdf:     pdf,
		logger:  logger,
		now:     time.Now,
	}
}

// Standings returns every student's points, highest total first.
func (s *ReportService) Standings(ctx context.Context) ([]models.PointsStanding, error) {
	standings, err := s.reader.PointsStandings(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load points standings")
	}
	return standings, nil
}

// Export renders the standings in the requested format and stores the file.
func (s *ReportService) Export(ctx context.Context, format export.Format) (*ReportResult, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
	standings, err := s.Standings(ctx)
	if err != nil {
		return nil, err
	}

	dataset := standingsDataset(standings)
	var payload []byte
	switch format {
	case export.FormatCSV:
		payload, err = s.csv.Render(dataset)
	case export.FormatPDF:
		payload, err = s.pdf.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render points standings")
	}

	filename := fmt.Sprintf("points_standings_%s.%s", s.now().UTC().Format("20060102_150405"), format)
	path, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}
	s.logger.Info("points standings exported", zap.String("path", path), zap.String("format", string(format)), zap.Int("rows", len(standings)))
	return &ReportResult{Path: path, Format: format, Rows: len(standings)}, nil
}

func standingsDataset(standings []models.PointsStanding) export.Dataset {
	headers := []string{"Rank", "Student ID", "Name", "Level", "Club Points", "Event Points", "Total"}
	rows := make([]map[string]string, 0, len(standings))
	for i, standing := range standings {
		rows = append(rows, map[string]string{
			"Rank":         strconv.Itoa(i + 1),
			"Student ID":   strconv.Itoa(standing.StudentID),
			"Name":         standing.FirstName + " " + standing.LastName,
			"Level":        string(standing.Level),
			"Club Points":  strconv.Itoa(standing.ClubPoints),
			"Event Points": strconv.Itoa(standing.EventPoints),
			"Total":        strconv.Itoa(standing.TotalPoints),
		})
	}
	return export.Dataset{Title: "Student Points Standings", Headers: headers, Rows: rows}
}
