package document

import "strings"

// Section is a heading-delimited slice of a document, used by the front end
// to show large files as a collapsed outline instead of one huge render.
type Section struct {
	// Level is the heading depth 1-6, or 0 for the synthetic intro/whole
	// document section.
	Level     int    `json:"level"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	StartLine int    `json:"start_line"`
}

// ExtractSections splits markdown content into contiguous sections at ATX
// headings. Headings inside fenced code blocks are ignored. Content before
// the first heading becomes an "Introduction" section when non-blank, and a
// document with no headings yields a single "Document" section.
func ExtractSections(content string) []Section {
	lines := splitLines(content)
	var sections []Section
	inCodeBlock := false

	for lineNum, line := range lines {
		// Fence markers toggle regardless of current state so the closing
		// marker exits the block.
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
			inCodeBlock = !inCodeBlock
			continue
		}
		if inCodeBlock {
			continue
		}

		if level, title, ok := parseHeading(line); ok {
			sections = append(sections, Section{
				Level:     level,
				Title:     title,
				StartLine: lineNum,
			})
		}
	}

	// Pair each heading with the next heading's start line (or EOF) to form
	// the exclusive body range; the heading line itself is included.
	for i := range sections {
		start := sections[i].StartLine
		end := len(lines)
		if i+1 < len(sections) {
			end = sections[i+1].StartLine
		}
		sections[i].Body = strings.Join(lines[start:end], "\n")
	}

	if len(sections) > 0 && sections[0].StartLine > 0 {
		intro := strings.Join(lines[:sections[0].StartLine], "\n")
		if strings.TrimSpace(intro) != "" {
			sections = append([]Section{{
				Level:     0,
				Title:     "Introduction",
				Body:      intro,
				StartLine: 0,
			}}, sections...)
		}
	}

	if len(sections) == 0 {
		sections = []Section{{
			Level:     0,
			Title:     "Document",
			Body:      content,
			StartLine: 0,
		}}
	}

	return sections
}

// parseHeading reports whether line is an ATX heading: 1-6 leading '#'
// followed by a space or end of line. The title has surrounding whitespace
// and trailing '#' runs stripped.
func parseHeading(line string) (level int, title string, ok bool) {
	trimmed := strings.TrimSpace(line)

	n := 0
	for n < len(trimmed) && trimmed[n] == '#' {
		n++
	}
	if n < 1 || n > 6 {
		return 0, "", false
	}

	rest := trimmed[n:]
	if rest != "" && rest[0] != ' ' {
		return 0, "", false
	}
	title = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(rest), "#"))
	return n, title, true
}

// splitLines splits content into lines without a trailing empty element for
// a final newline, and with CR stripped from CRLF endings.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
