package export

import (
	"fmt"
	"io"
	"strings"
)

// Format names an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatText Format = "table"
)

// Dataset defines tabular export content. Every row has one cell per
// header.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// ParseFormat validates a user supplied format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCSV, FormatPDF, FormatText:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", name)
	}
}

// Extension is the file suffix for f.
func (f Format) Extension() string {
	if f == FormatText {
		return ".txt"
	}
	return "." + string(f)
}

// Write renders data to w in format f.
func Write(w io.Writer, f Format, data Dataset) error {
	switch f {
	case FormatCSV:
		return NewCSVExporter().Write(w, data)
	case FormatPDF:
		return NewPDFExporter().Write(w, data)
	case FormatText:
		return NewTextExporter().Write(w, data)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
