// Package document holds the viewer's document model: validated loading of
// markdown (and diagram-source) files and heading-based section extraction
// for large-file mode.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound         = errors.New("file not found")
	ErrInvalidExtension = errors.New("invalid file extension")
	ErrEmptyFile        = errors.New("file is empty")
	ErrRead             = errors.New("failed to read file")
)

// Kind classifies a document by extension. It only affects how the front
// end renders the content.
type Kind string

const (
	KindMarkdown Kind = "markdown"
	KindDiagram  Kind = "diagram"
)

var kindByExtension = map[string]Kind{
	".md":       KindMarkdown,
	".markdown": KindMarkdown,
	".puml":     KindDiagram,
	".plantuml": KindDiagram,
}

// KindForPath returns the document kind for a file path, or ok=false when
// the extension is not on the allow-list.
func KindForPath(path string) (Kind, bool) {
	kind, ok := kindByExtension[strings.ToLower(filepath.Ext(path))]
	return kind, ok
}

// Document is the full state of the currently displayed file. Instances are
// immutable after Load; the controller swaps whole documents, never fields.
type Document struct {
	Content  string    `json:"content"`
	Path     string    `json:"path"` // canonical absolute path
	Name     string    `json:"name"`
	Dir      string    `json:"dir"`
	Large    bool      `json:"large_file"`
	Sections []Section `json:"sections,omitempty"`
	Kind     Kind      `json:"kind"`
}

// LoadOptions carries the merged config/CLI truncation policy.
type LoadOptions struct {
	LargeFileThreshold int64
	NoTruncate         bool
}

// Load reads and validates the file at path, returning a fully populated
// Document. Validation failures are reported with the package sentinel
// errors; the caller's state is never touched.
func Load(path string, opts LoadOptions) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}

	kind, ok := KindForPath(abs)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidExtension, filepath.Ext(abs))
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	content := string(data)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	// Canonicalize so one file on disk maps to one watched path; fall back
	// to the absolute path when resolution fails (e.g. dangling parents).
	canonical := abs
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		canonical = resolved
	}

	large := info.Size() > opts.LargeFileThreshold && !opts.NoTruncate

	doc := &Document{
		Content: content,
		Path:    canonical,
		Name:    filepath.Base(canonical),
		Dir:     filepath.Dir(canonical),
		Large:   large,
		Kind:    kind,
	}
	if large {
		doc.Sections = ExtractSections(content)
	}
	return doc, nil
}
