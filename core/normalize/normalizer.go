// Package normalize implements the Normalizer interface.
// It converts a cleaned HTML fragment into Markdown so a page can be
// previewed the way a reader (or the model) would skim it.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"

	"github.com/gaurav-prasanna/brochuregen/core"
)

var _ core.Normalizer = (*MarkdownNormalizer)(nil)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// MarkdownNormalizer converts HTML to Markdown using html-to-markdown.
type MarkdownNormalizer struct {
	domain string
}

// Option configures a MarkdownNormalizer.
type Option func(*MarkdownNormalizer)

// WithDomain makes relative links and image sources absolute against
// pageURL, so the preview stays clickable outside the page.
func WithDomain(pageURL string) Option {
	return func(n *MarkdownNormalizer) { n.domain = pageURL }
}

// New creates a MarkdownNormalizer.
func New(opts ...Option) *MarkdownNormalizer {
	n := &MarkdownNormalizer{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize converts a cleaned HTML fragment into Markdown with at most one
// blank line between blocks.
func (n *MarkdownNormalizer) Normalize(html string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if n.domain != "" {
		opts = append(opts, converter.WithDomain(n.domain))
	}

	markdown, err := htmltomarkdown.ConvertString(html, opts...)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(blankRuns.ReplaceAllString(markdown, "\n\n")), nil
}
