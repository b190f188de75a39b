// Package formatter aligns markdown tables by display width and builds the
// tables used in the markdown report and the console view.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"madison/pkg/metadata"
)

const minColumnWidth = 3

// FormatMarkdown aligns every pipe table in content. A metadata block, if
// present, is re-signed over the formatted text.
func FormatMarkdown(content string) (string, error) {
	meta, cleanContent := metadata.Extract(content)

	var (
		formatted   []string
		tableBuffer []string
	)

	for line := range strings.SplitSeq(cleanContent, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
			tableBuffer = append(tableBuffer, line)

			continue
		}

		if len(tableBuffer) > 0 {
			formatted = append(formatted, processTable(tableBuffer)...)
			tableBuffer = nil
		}

		formatted = append(formatted, line)
	}

	if len(tableBuffer) > 0 {
		formatted = append(formatted, processTable(tableBuffer)...)
	}

	out := strings.Join(formatted, "\n")
	if meta == nil {
		return out, nil
	}

	return metadata.Sign(out, meta.Validation, meta), nil
}

// Table renders headers and rows as an aligned markdown table. Pipes inside
// cells are escaped and short rows are padded.
func Table(headers []string, rows [][]string) []string {
	table := make([][]string, 0, len(rows)+1)
	table = append(table, escapeCells(headers))

	for _, row := range rows {
		table = append(table, escapeCells(row))
	}

	widths := columnWidths(table, -1, len(headers))

	lines := make([]string, 0, len(table)+1)
	lines = append(lines, renderRow(table[0], widths, false))
	lines = append(lines, renderRow(nil, widths, true))

	for _, row := range table[1:] {
		lines = append(lines, renderRow(row, widths, false))
	}

	return lines
}

// Fit truncates s to width display cells, marking the cut with "...".
func Fit(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

// Pad right-pads s with spaces to width display cells.
func Pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(strings.TrimSpace(c), "|", `\|`)
	}

	return out
}

func processTable(rows []string) []string {
	// A header without separator is not a table.
	if len(rows) < 2 {
		return rows
	}

	table := make([][]string, 0, len(rows))

	for _, row := range rows {
		parts := splitCells(row)

		if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
			parts = parts[1:]
		}

		if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
			parts = parts[:len(parts)-1]
		}

		cells := make([]string, 0, len(parts))
		for _, p := range parts {
			cells = append(cells, strings.TrimSpace(p))
		}

		table = append(table, cells)
	}

	colCount := 0
	for _, row := range table {
		colCount = max(colCount, len(row))
	}

	separatorIdx := -1
	if isSeparator(table[1]) {
		separatorIdx = 1
	}

	widths := columnWidths(table, separatorIdx, colCount)

	result := make([]string, 0, len(table))
	for i, row := range table {
		result = append(result, renderRow(row, widths, i == separatorIdx))
	}

	return result
}

// splitCells splits a table row on unescaped pipes.
func splitCells(row string) []string {
	var (
		parts []string
		start int
	)

	for i := 0; i < len(row); i++ {
		switch row[i] {
		case '\\':
			i++
		case '|':
			parts = append(parts, row[start:i])
			start = i + 1
		}
	}

	return append(parts, row[start:])
}

func isSeparator(cells []string) bool {
	for _, cell := range cells {
		trim := strings.NewReplacer("-", "", ":", "", " ", "").Replace(cell)
		if trim != "" {
			return false
		}
	}

	return true
}

// columnWidths measures display width per column, skipping the separator row.
func columnWidths(table [][]string, separatorIdx, colCount int) []int {
	widths := make([]int, colCount)

	for r, row := range table {
		if r == separatorIdx {
			continue
		}

		for i := 0; i < len(row) && i < colCount; i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	for i := range widths {
		widths[i] = max(widths[i], minColumnWidth)
	}

	return widths
}

func renderRow(row []string, widths []int, separator bool) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, w := range widths {
		sb.WriteString(" ")

		switch {
		case separator:
			sb.WriteString(strings.Repeat("-", w))
		case j < len(row):
			sb.WriteString(runewidth.FillRight(row[j], w))
		default:
			sb.WriteString(strings.Repeat(" ", w))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}
