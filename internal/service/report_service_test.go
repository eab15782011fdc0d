package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/business-school/campus-api/internal/models"
	"github.com/business-school/campus-api/pkg/export"
	appErrors "github.com/business-school/campus-api/pkg/errors"
	"github.com/business-school/campus-api/pkg/storage"
)

type standingsStub struct {
	rows []models.PointsStanding
	err  error
}

func (s standingsStub) PointsStandings(ctx context.Context) ([]models.PointsStanding, error) {
	return s.rows, s.err
}

func sampleStandings() []models.PointsStanding {
	return []models.PointsStanding{
		{StudentID: 1, FirstName: "Ana", LastName: "García", Level: models.StudentLevelBeginner, ClubPoints: 40, EventPoints: 20, TotalPoints: 60},
		{StudentID: 5, FirstName: "Sofía", LastName: "Díaz", Level: models.StudentLevelBeginner, ClubPoints: 60, TotalPoints: 60},
		{StudentID: 2, FirstName: "Carlos", LastName: "López", Level: models.StudentLevelExpert, ClubPoints: 15, EventPoints: 20, TotalPoints: 35},
	}
}

func newReportServiceFixture(t *testing.T, reader standingsReader) (*ReportService, string) {
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	svc := NewReportService(reader, store, zap.NewNop(), nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 1, 10, 8, 30, 0, 0, time.UTC) }
	return svc, dir
}

func TestReportServiceExportCSV(t *testing.T) {
	svc, dir := newReportServiceFixture(t, standingsStub{rows: sampleStandings()})

	result, err := svc.Export(context.Background(), export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "points_standings_20260110_083000.csv"), result.Path)
	assert.Equal(t, 3, result.Rows)

	content, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	expected := "Rank,Student ID,Name,Level,Club Points,Event Points,Total\n" +
		"1,1,Ana García,Beginner,40,20,60\n" +
		"2,5,Sofía Díaz,Beginner,60,0,60\n" +
		"3,2,Carlos López,Expert,15,20,35\n"
	assert.Equal(t, expected, string(content))
}

func TestReportServiceExportPDF(t *testing.T) {
	svc, _ := newReportServiceFixture(t, standingsStub{rows: sampleStandings()})

	result, err := svc.Export(context.Background(), export.FormatPDF)
	require.NoError(t, err)
	content, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))
}

func TestReportServiceExportRejectsUnknownFormat(t *testing.T) {
	svc, _ := newReportServiceFixture(t, standingsStub{})

	_, err := svc.Export(context.Background(), export.Format("xlsx"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestReportServiceStandingsWrapsRepositoryError(t *testing.T) {
	svc, _ := newReportServiceFixture(t, standingsStub{err: errors.New("timeout")})

	_, err := svc.Standings(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}
