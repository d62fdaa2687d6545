// Package chunker splits extracted document text into bounded-size segments.
// Splitting is cut-only: concatenating the returned chunks reproduces the
// input exactly, so the same text and limit always yield the same result.
package chunker

const DefaultMaxChars = 33000

// Split cuts text into segments of at most limit runes, preferring paragraph,
// line, sentence and word boundaries over mid-word cuts. The break point is
// only moved back while it stays in the second half of the window, so no
// chunk degenerates to a sliver.
func Split(text string, limit int) []string {
	if limit <= 0 {
		limit = DefaultMaxChars
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	pos := 0
	for pos < len(runes) {
		end := pos + limit
		if end >= len(runes) {
			chunks = append(chunks, string(runes[pos:]))
			break
		}
		cut := findBreak(runes, pos, end)
		chunks = append(chunks, string(runes[pos:cut]))
		pos = cut
	}
	return chunks
}

// findBreak picks the cut position inside (pos, end], scanning backwards for
// the best natural boundary. The cut lands after the boundary rune so the
// separator stays with the preceding chunk.
func findBreak(runes []rune, pos, end int) int {
	min := pos + (end-pos)/2

	// Paragraph break: blank line.
	for i := end - 1; i > min; i-- {
		if runes[i] == '\n' && i > 0 && runes[i-1] == '\n' {
			return i + 1
		}
	}
	// Line break.
	for i := end - 1; i > min; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	// Sentence end followed by space.
	for i := end - 2; i > min; i-- {
		if (runes[i] == '.' || runes[i] == '!' || runes[i] == '?') && i+1 < len(runes) && runes[i+1] == ' ' {
			return i + 2
		}
	}
	// Word boundary.
	for i := end - 1; i > min; i-- {
		if runes[i] == ' ' || runes[i] == '\t' {
			return i + 1
		}
	}
	return end
}
