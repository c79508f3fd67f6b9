package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "동아리 목록",
		Headers: []string{"ID", "Name", "Members"},
		Rows: [][]string{
			{"1", "농구동아리 DUNK", "38"},
			{"12", "클라이밍동아리", "31"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter(false).Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Members\n1,농구동아리 DUNK,38\n12,클라이밍동아리,31\n", string(out))
}

func TestCSVExporterWritesBOM(t *testing.T) {
	out, err := NewCSVExporter(true).Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, utf8BOM))
}

func TestExportersRejectRaggedRows(t *testing.T) {
	data := sampleDataset()
	data.Rows = append(data.Rows, []string{"only one"})

	_, err := NewCSVExporter(false).Render(data)
	assert.Error(t, err)
	_, err = NewPDFExporter("").Render(data)
	assert.Error(t, err)
	_, err = NewCSVExporter(false).Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRenderWithCoreFont(t *testing.T) {
	out, err := NewPDFExporter("").Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterMissingFont(t *testing.T) {
	_, err := NewPDFExporter("/nonexistent/font.ttf").Render(sampleDataset())
	assert.Error(t, err)
}

func TestLatin1Only(t *testing.T) {
	assert.Equal(t, "?? DUNK", latin1Only("농구 DUNK"))
	assert.Equal(t, "café", latin1Only("café"))
}
