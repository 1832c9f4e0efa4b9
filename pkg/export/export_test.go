package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterDataset() Dataset {
	return Dataset{
		Title:   "Student Roster",
		Headers: []string{"Last Name", "First Name"},
		Rows: []map[string]string{
			{"Last Name": "Alexander", "First Name": "Carson"},
			{"Last Name": "Olivetto", "First Name": "Nino, Jr"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(rosterDataset())
	require.NoError(t, err)
	assert.Equal(t, "Last Name,First Name\nAlexander,Carson\nOlivetto,\"Nino, Jr\"\n", string(out))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()
	exporter.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC) }

	out, err := exporter.Render(rosterDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestForFormat(t *testing.T) {
	renderer, err := ForFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", renderer.ContentType())

	renderer, err = ForFormat("")
	require.NoError(t, err)
	assert.Equal(t, "csv", renderer.Extension())

	_, err = ForFormat("xlsx")
	assert.Error(t, err)
}
