package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Dataset {
	return Dataset{
		Title:   "Students",
		Headers: []string{"ID", "Name", "Grade"},
		Rows: [][]string{
			{"1", "Alice", "10"},
			{"2", "Bob, Jr.", "11"},
			{"3", "Cara"},
		},
	}
}

func TestCSVExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sample()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"ID", "Name", "Grade"}, records[0])
	assert.Equal(t, "Bob, Jr.", records[2][1])
	assert.Equal(t, []string{"3", "Cara", ""}, records[3], "short rows are padded")
}

func TestExportersRequireHeaders(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewCSVExporter().Write(&buf, Dataset{}))
	assert.Error(t, NewPDFExporter().Write(&buf, Dataset{}))
}

func TestPDFExporter(t *testing.T) {
	data := sample()
	for i := 0; i < 120; i++ {
		data.Rows = append(data.Rows, []string{"x", strings.Repeat("long name ", 10), "12"})
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatPDF, data))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestTextExporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, sample()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[2], "Bob, Jr.")

	buf.Reset()
	require.NoError(t, Write(&buf, FormatText, Dataset{Headers: []string{"ID"}}))
	assert.Contains(t, buf.String(), "(no rows)")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	assert.Equal(t, ".csv", f.Extension())

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)
	assert.Equal(t, ".txt", f.Extension())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short"))
	long := strings.Repeat("a", 50)
	assert.Len(t, []rune(truncate(long)), pdfMaxCell)
}
