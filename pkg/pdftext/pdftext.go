// Package pdftext converts register printout PDFs into markdown. Register
// documents are mostly tabular, so rows whose text chunks fall into separated
// column groups are rendered as markdown tables; everything else becomes
// fenced text blocks.
package pdftext

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// column gap threshold in PDF points. Chunks further apart than this on the
// same row belong to different table cells; smaller gaps are word spacing.
const cellGap = 12.0

var spaceRe = regexp.MustCompile(`\s+`)

// ToMarkdown parses the PDF bytes and renders their content as markdown. The
// title becomes the document heading; each page gets its own section.
func ToMarkdown(data []byte, title string) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("could not open pdf: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", title)

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("could not read text of page %d: %w", pageNum, err)
		}
		if len(rows) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "\n## Page %d\n\n", pageNum)
		sb.WriteString(rowsToMarkdown(rows))
	}

	return sb.String(), nil
}

// rowsToMarkdown renders the rows of one page. Consecutive multi-cell rows
// form a table with the first row as header; runs of single-cell rows are
// emitted as a fenced text block so line structure survives markdown rendering.
func rowsToMarkdown(rows pdf.Rows) string {
	var (
		sb    strings.Builder
		table [][]string
		text  []string
	)

	flushTable := func() {
		if len(table) == 0 {
			return
		}
		sb.WriteString(renderTable(table))
		sb.WriteString("\n")
		table = nil
	}
	flushText := func() {
		if len(text) == 0 {
			return
		}
		sb.WriteString("```\n" + strings.Join(text, "\n") + "\n```\n")
		text = nil
	}

	for _, row := range rows {
		cells := rowCells(row)
		if len(cells) == 0 {
			continue
		}
		if len(cells) > 1 {
			flushText()
			table = append(table, cells)

			continue
		}

		flushTable()
		text = append(text, cells[0])
	}
	flushTable()
	flushText()

	return sb.String()
}

// rowCells groups a row's text chunks into cells by horizontal gap.
func rowCells(row *pdf.Row) []string {
	var (
		cells []string
		cell  strings.Builder
		endX  float64
	)

	flush := func() {
		s := spaceRe.ReplaceAllString(strings.TrimSpace(cell.String()), " ")
		if s != "" {
			cells = append(cells, s)
		}
		cell.Reset()
	}

	for i, chunk := range row.Content {
		if i > 0 {
			gap := chunk.X - endX
			switch {
			case gap > cellGap:
				flush()
			case gap > chunk.FontSize/4:
				cell.WriteByte(' ')
			}
		}
		cell.WriteString(chunk.S)
		endX = chunk.X + chunk.W
	}
	flush()

	return cells
}

// renderTable emits a markdown pipe table. Ragged rows are padded to the
// widest row so the table stays well-formed.
func renderTable(table [][]string) string {
	width := 0
	for _, row := range table {
		if len(row) > width {
			width = len(row)
		}
	}

	var sb strings.Builder
	for i, row := range table {
		sb.WriteString("|")
		for c := 0; c < width; c++ {
			cell := ""
			if c < len(row) {
				cell = strings.ReplaceAll(row[c], "|", `\|`)
			}
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")

		if i == 0 {
			sb.WriteString("|" + strings.Repeat(" --- |", width) + "\n")
		}
	}

	return sb.String()
}
