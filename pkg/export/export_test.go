package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standingsDataset() Dataset {
	return Dataset{
		Title:   "Points standings",
		Headers: []string{"rank", "student", "total"},
		Rows: []map[string]string{
			{"rank": "1", "student": "Sofía Díaz", "total": "60"},
			{"rank": "2", "student": "Ana García", "total": "60"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(standingsDataset())
	require.NoError(t, err)
	assert.Equal(t, "rank,student,total\n1,Sofía Díaz,60\n2,Ana García,60\n", string(out))
}

func TestCSVExporterWithBOM(t *testing.T) {
	out, err := NewCSVExporter(WithBOM()).Render(standingsDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}))
	assert.Equal(t, "rank,student,total\n", string(out[3:22]))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(standingsDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestFormatValid(t *testing.T) {
	assert.True(t, FormatCSV.Valid())
	assert.True(t, FormatPDF.Valid())
	assert.False(t, Format("xlsx").Valid())
}

func TestPDFExporterPagesLongTables(t *testing.T) {
	data := Dataset{Headers: []string{"rank", "student", "total"}}
	for i := 0; i < 120; i++ {
		data.Rows = append(data.Rows, map[string]string{"rank": "1", "student": "Ana García", "total": "60"})
	}
	out, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, bytes.Count(out, []byte("/Type /Page\n")), 1)
}

func TestOrientation(t *testing.T) {
	assert.Equal(t, "P", Orientation(3))
	assert.Equal(t, "P", Orientation(6))
	assert.Equal(t, "L", Orientation(7))
}
