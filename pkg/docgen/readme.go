package docgen

import "strings"

// ReadmeMarker is the fixed heading that identifies the README version
// block. The block extends from this marker to the next heading or
// end-of-file.
const ReadmeMarker = "## Version Information"

// UpdateReadmeBlock replaces the version block inside README content with
// block, leaving everything else byte-for-byte untouched. If no marker
// exists, the block is prepended. The operation is idempotent: applying the
// same block twice yields the same document.
func UpdateReadmeBlock(content, block string) string {
	block = normalizeTrailingNewline(block)

	lines := splitLines(content)
	start := -1
	for i, line := range lines {
		if strings.TrimRight(line, " \t") == ReadmeMarker {
			start = i
			break
		}
	}

	if start < 0 {
		if strings.TrimSpace(content) == "" {
			return block
		}
		return block + "\n" + content
	}

	// The block runs until the next heading of any level, or EOF.
	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "#") {
			end = i
			break
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(lines[:start], "\n"))
	if start > 0 {
		b.WriteString("\n")
	}
	b.WriteString(block)
	if end < len(lines) {
		b.WriteString("\n")
		b.WriteString(strings.Join(lines[end:], "\n"))
		// Re-joining loses the original trailing newline; content after
		// the block must come back byte-for-byte.
		if strings.HasSuffix(content, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// splitLines splits without discarding a trailing newline's significance:
// "a\nb\n" becomes ["a", "b"] and "a\nb" also ["a", "b"], while trailing
// content is preserved by the callers re-joining with "\n".
func splitLines(content string) []string {
	trimmed := strings.TrimSuffix(content, "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
