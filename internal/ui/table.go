// Package ui formats todo data for the terminal.
package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"
	"golang.org/x/term"
)

const (
	tableCellMaxWidth = 50
	tableCellEllipsis = "..."
	tableGutter       = 2
	minFlexibleWidth  = 8
)

// tableViewportWidth reports the terminal width, or 0 when stdout is not a terminal.
var tableViewportWidth = func() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// TableBuilder collects rows and renders a formatted table.
type TableBuilder struct {
	headers []string
	rows    [][]string
}

// NewTableBuilder returns a builder with preallocated rows.
func NewTableBuilder(headers []string, capacity int) *TableBuilder {
	return &TableBuilder{headers: headers, rows: make([][]string, 0, capacity)}
}

// AddRow appends a row to the table.
func (builder *TableBuilder) AddRow(row []string) {
	builder.rows = append(builder.rows, row)
}

// String renders the table output.
func (builder *TableBuilder) String() string {
	return FormatTable(builder.headers, builder.rows)
}

// FormatTable renders headers and rows as an aligned table. The last column
// is shrunk to fit the terminal.
func FormatTable(headers []string, rows [][]string) string {
	all := make([][]string, 0, len(rows)+1)
	all = append(all, normalizeRow(headers))
	for _, row := range rows {
		all = append(all, normalizeRow(row))
	}

	widths := make([]int, len(headers))
	for _, row := range all {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	last := len(widths) - 1
	if viewport := tableViewportWidth(); viewport > 0 && last >= 0 {
		fixed := 0
		for _, width := range widths[:last] {
			fixed += width + tableGutter
		}
		if room := viewport - fixed; room < widths[last] {
			widths[last] = max(room, minFlexibleWidth)
		}
	}

	var builder strings.Builder
	for _, row := range all {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if i == last || i == len(row)-1 {
				builder.WriteString(fit(cell, widths[i]))
				break
			}
			builder.WriteString(padding.String(cell, uint(widths[i]+tableGutter)))
		}
		builder.WriteByte('\n')
	}
	return builder.String()
}

// TruncateTableCell limits cell width while preserving escape sequences.
func TruncateTableCell(value string) string {
	value = normalizeTableCell(value)
	return fit(value, tableCellMaxWidth)
}

func fit(value string, width int) string {
	if lipgloss.Width(value) <= width {
		return value
	}
	return truncate.StringWithTail(value, uint(width), tableCellEllipsis)
}

func normalizeRow(row []string) []string {
	normalized := make([]string, len(row))
	for i, cell := range row {
		normalized[i] = normalizeTableCell(cell)
	}
	return normalized
}

func normalizeTableCell(value string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(value)
}
