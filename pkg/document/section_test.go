package document

import (
	"strings"
	"testing"
)

func TestExtractSections_TwoHeadings(t *testing.T) {
	sections := ExtractSections("# A\nfoo\n## B\nbar\n")

	want := []Section{
		{Level: 1, Title: "A", Body: "# A\nfoo", StartLine: 0},
		{Level: 2, Title: "B", Body: "## B\nbar", StartLine: 2},
	}
	if len(sections) != len(want) {
		t.Fatalf("got %d sections, want %d: %+v", len(sections), len(want), sections)
	}
	for i := range want {
		if sections[i] != want[i] {
			t.Errorf("section %d = %+v, want %+v", i, sections[i], want[i])
		}
	}
}

func TestExtractSections_NoHeadings(t *testing.T) {
	sections := ExtractSections("just text\n")

	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	got := sections[0]
	if got.Level != 0 || got.Title != "Document" || got.Body != "just text\n" || got.StartLine != 0 {
		t.Errorf("got %+v, want level 0 Document covering whole content", got)
	}
}

func TestExtractSections_IntroBeforeFirstHeading(t *testing.T) {
	sections := ExtractSections("preamble\nmore\n# First\nbody\n")

	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2: %+v", len(sections), sections)
	}
	intro := sections[0]
	if intro.Level != 0 || intro.Title != "Introduction" || intro.StartLine != 0 {
		t.Errorf("intro section = %+v", intro)
	}
	if intro.Body != "preamble\nmore" {
		t.Errorf("intro body = %q", intro.Body)
	}
	if sections[1].StartLine != 2 {
		t.Errorf("first heading start = %d, want 2", sections[1].StartLine)
	}
}

func TestExtractSections_BlankIntroSkipped(t *testing.T) {
	sections := ExtractSections("\n\n# First\nbody\n")

	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1: %+v", len(sections), sections)
	}
	if sections[0].Title != "First" || sections[0].StartLine != 2 {
		t.Errorf("got %+v", sections[0])
	}
}

func TestExtractSections_HeadingInsideFenceIgnored(t *testing.T) {
	sections := ExtractSections("# Real\n```\n# fake\ncode\n```\n## After\n")

	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2: %+v", len(sections), sections)
	}
	if sections[0].Title != "Real" || sections[1].Title != "After" {
		t.Errorf("titles = %q, %q", sections[0].Title, sections[1].Title)
	}
	if sections[1].StartLine != 5 {
		t.Errorf("After start = %d, want 5", sections[1].StartLine)
	}
}

func TestExtractSections_TildeFence(t *testing.T) {
	sections := ExtractSections("# A\n~~~\n## hidden\n~~~\n# B\n")
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2: %+v", len(sections), sections)
	}
	if sections[0].Title != "A" || sections[1].Title != "B" {
		t.Errorf("titles = %q, %q", sections[0].Title, sections[1].Title)
	}
}

func TestExtractSections_BackToBackHeadings(t *testing.T) {
	sections := ExtractSections("# A\n## B\nbody\n")
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}
	if sections[0].Body != "# A" {
		t.Errorf("empty-body section = %q", sections[0].Body)
	}
}

func TestExtractSections_TrailingHashesStripped(t *testing.T) {
	sections := ExtractSections("## Title ##\ntext\n")
	if sections[0].Title != "Title" {
		t.Errorf("title = %q, want %q", sections[0].Title, "Title")
	}
}

func TestExtractSections_SevenHashesNotHeading(t *testing.T) {
	sections := ExtractSections("####### nope\ntext\n")
	if len(sections) != 1 || sections[0].Title != "Document" {
		t.Errorf("got %+v, want single Document section", sections)
	}
}

func TestExtractSections_HashWithoutSpaceNotHeading(t *testing.T) {
	sections := ExtractSections("#nospace\ntext\n")
	if len(sections) != 1 || sections[0].Title != "Document" {
		t.Errorf("got %+v, want single Document section", sections)
	}
}

// Line ranges must partition [0, lineCount) with no gaps or overlaps
// whenever the pre-heading prefix is non-blank (a blank prefix is dropped
// rather than covered).
func TestExtractSections_RangesPartition(t *testing.T) {
	inputs := []string{
		"# A\nfoo\n## B\nbar\n",
		"intro\n# A\n\ntext\n### deep\nmore\n",
		"# only\n",
		"a\nb\nc\n",
		"# A\n## B\n### C\n",
		"# A\n```\n# in fence\n```\n# B\nx\n",
	}

	for _, content := range inputs {
		lines := splitLines(content)
		sections := ExtractSections(content)

		next := 0
		for i, s := range sections {
			if s.StartLine != next {
				t.Errorf("input %q: section %d starts at %d, want %d", content, i, s.StartLine, next)
			}
			bodyLines := len(strings.Split(s.Body, "\n"))
			next = s.StartLine + bodyLines
		}
		if next != len(lines) {
			t.Errorf("input %q: sections cover %d lines, want %d", content, next, len(lines))
		}
	}
}

func TestExtractSections_Deterministic(t *testing.T) {
	content := "intro\n# A\ntext\n## B\nmore\n"
	a := ExtractSections(content)
	b := ExtractSections(content)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("section %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestParseHeading(t *testing.T) {
	tests := []struct {
		line  string
		level int
		title string
		ok    bool
	}{
		{"# Title", 1, "Title", true},
		{"###### Deep", 6, "Deep", true},
		{"##", 2, "", true},
		{"## Trailing ##", 2, "Trailing", true},
		{"  # Indented", 1, "Indented", true},
		{"#nospace", 0, "", false},
		{"####### seven", 0, "", false},
		{"plain", 0, "", false},
		{"", 0, "", false},
	}

	for _, tt := range tests {
		level, title, ok := parseHeading(tt.line)
		if ok != tt.ok || level != tt.level || title != tt.title {
			t.Errorf("parseHeading(%q) = (%d, %q, %v), want (%d, %q, %v)",
				tt.line, level, title, ok, tt.level, tt.title, tt.ok)
		}
	}
}
