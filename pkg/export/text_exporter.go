package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// TextExporter renders datasets as aligned columns for a terminal.
type TextExporter struct{}

// NewTextExporter builds a text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Write prints a header line and one line per row.
func (e *TextExporter) Write(w io.Writer, data Dataset) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(data.Headers) > 0 {
		upper := make([]string, len(data.Headers))
		for i, h := range data.Headers {
			upper[i] = strings.ToUpper(h)
		}
		fmt.Fprintln(tw, strings.Join(upper, "\t"))
	}
	for _, row := range data.Rows {
		cells := make([]string, len(data.Headers))
		for i := range data.Headers {
			cells[i] = strings.ReplaceAll(cell(row, i), "\t", " ")
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if len(data.Rows) == 0 {
		fmt.Fprintln(tw, "(no rows)")
	}
	return tw.Flush()
}
