package pipeline

import (
	"fmt"
	"strings"

	"github.com/ledgerlift/statement-ingest/internal/sheet"
)

// headerTag marks the header line in prepared text so the chunker can repeat
// it and extraction models can tell it from data.
const headerTag = "HEADER: "

// PrepareLines serializes the grid into redacted text lines: the tagged
// header line plus one numbered line per data row. Data line numbering
// starts at 1 so that line_index maps back to grid row headerRow+LineIndex.
func PrepareLines(grid sheet.RawGrid, headerRow int, red *Redactor) (header string, lines []PreparedLine) {
	header = headerTag + serializeRow(grid[headerRow])

	for i := headerRow + 1; i < len(grid); i++ {
		idx := i - headerRow
		text := red.Apply(serializeRow(grid[i]))
		lines = append(lines, PreparedLine{
			LineIndex: idx,
			Text:      fmt.Sprintf("%d: %s", idx, text),
		})
	}

	return header, lines
}

func serializeRow(row []sheet.Cell) string {
	parts := make([]string, len(row))
	for i, cell := range row {
		parts[i] = strings.Join(strings.Fields(cell.String()), " ")
	}
	return strings.Join(parts, " | ")
}

// joinLines renders prepared lines into the single text block handed to the
// extraction providers.
func joinLines(header string, lines []PreparedLine) string {
	var b strings.Builder
	b.WriteString(header)
	for _, line := range lines {
		b.WriteByte('\n')
		b.WriteString(line.Text)
	}
	return b.String()
}
