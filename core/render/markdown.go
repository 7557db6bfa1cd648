// Package render provides output renderers for generated brochures.
// This file implements the Markdown renderer, which is a simple passthrough.
package render

import (
	"strings"

	"github.com/gaurav-prasanna/brochuregen/core"
)

// MarkdownRenderer writes the brochure Markdown as-is. It's the simplest
// renderer since the model already answers in Markdown.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render returns the Markdown as bytes, newline-terminated.
func (r *MarkdownRenderer) Render(b *core.Brochure) ([]byte, error) {
	md := b.Markdown
	if !strings.HasSuffix(md, "\n") {
		md += "\n"
	}
	return []byte(md), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
