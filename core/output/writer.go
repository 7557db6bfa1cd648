// Package output handles file naming and writing for generated documents.
// Brochures are named after the company ({name}_Brochure.md); other
// documents are written under the name the caller chooses.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MarkdownContentType is served with downloaded brochures.
const MarkdownContentType = "text/markdown; charset=utf-8"

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// Write stores data as filename inside the output directory and returns
// the full path.
func (w *Writer) Write(filename string, data []byte) (string, error) {
	path := filepath.Join(w.OutputDir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// BrochureFilename returns "{name}_Brochure{ext}". Characters that cannot
// appear in a file name are replaced with underscores; everything else in
// the company name is kept.
func BrochureFilename(name, ext string) string {
	name = sanitize(strings.TrimSpace(name))
	if name == "" {
		name = "Company"
	}
	return name + "_Brochure" + ext
}

// sanitize replaces path separators, control characters and characters
// reserved on common file systems with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		switch {
		case ch < 0x20 || ch == 0x7f:
			b.WriteRune('_')
		case strings.ContainsRune(`/\:*?"<>|`, ch):
			b.WriteRune('_')
		default:
			b.WriteRune(ch)
		}
	}
	return strings.Trim(b.String(), ". ")
}
