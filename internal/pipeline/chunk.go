package pipeline

import "strings"

// ChunkLines splits prepared lines into segments no longer than maxChars,
// repeating the header line at the top of every segment so each one is
// independently interpretable. A single line longer than the budget is
// emitted as its own oversized segment, never split mid-line. Order is
// preserved and no data line appears in more than one segment.
func ChunkLines(header string, lines []PreparedLine, maxChars int) []string {
	if len(lines) == 0 {
		return nil
	}

	var chunks []string
	var b strings.Builder
	b.WriteString(header)
	inChunk := 0

	flush := func() {
		if inChunk > 0 {
			chunks = append(chunks, b.String())
		}
		b.Reset()
		b.WriteString(header)
		inChunk = 0
	}

	for _, line := range lines {
		needed := b.Len() + 1 + len(line.Text)
		if inChunk > 0 && needed > maxChars {
			flush()
		}
		b.WriteByte('\n')
		b.WriteString(line.Text)
		inChunk++
		// An oversized single line closes its chunk immediately.
		if b.Len() > maxChars {
			flush()
		}
	}
	flush()

	return chunks
}
