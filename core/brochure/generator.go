// Package brochure assembles a company brochure: it loads the company's
// page, builds the prompt and asks the completion endpoint for Markdown.
package brochure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/brochuregen/core"
	"github.com/gaurav-prasanna/brochuregen/core/page"
)

// largePageChars is the body size above which a warning is logged. The
// text is still sent in full.
const largePageChars = 100_000

// ErrorHeading starts every rendered error document.
const ErrorHeading = "## Error Generating Brochure"

// PageLoader loads a single page. *page.Loader implements it.
type PageLoader interface {
	Load(ctx context.Context, url string) (*core.ExtractedPage, error)
}

// Generator produces brochures. It holds no per-call state and may be
// shared between goroutines.
type Generator struct {
	completer core.Completer
	loader    PageLoader
	strict    bool
	log       zerolog.Logger
	now       func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithStrictFetch makes Generate fail when the page cannot be fetched
// instead of continuing with a degraded page.
func WithStrictFetch(strict bool) Option {
	return func(g *Generator) { g.strict = strict }
}

// WithLogger sets the generator's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Generator) {
		g.log = log.With().Str("component", "brochure").Logger()
	}
}

// New creates a Generator.
func New(completer core.Completer, loader PageLoader, opts ...Option) (*Generator, error) {
	if completer == nil {
		return nil, &core.ConfigurationError{Field: "completer", Reason: "is required"}
	}
	if loader == nil {
		return nil, &core.ConfigurationError{Field: "loader", Reason: "is required"}
	}
	g := &Generator{
		completer: completer,
		loader:    loader,
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate builds the brochure for req.
//
// When the page cannot be fetched and the generator is not strict, the
// fetch error text is sent to the model in place of the page content and
// the result is flagged Degraded with FetchErr set. Completion failures are
// returned as *core.CompletionError.
func (g *Generator) Generate(ctx context.Context, req core.BrochureRequest) (*core.Brochure, error) {
	req.SubjectName = strings.TrimSpace(req.SubjectName)
	req.SourceURL = strings.TrimSpace(req.SourceURL)
	if req.SubjectName == "" {
		return nil, errors.New("subject name is required")
	}
	if req.SourceURL == "" {
		return nil, errors.New("source URL is required")
	}

	log := g.log.With().Str("subject", req.SubjectName).Str("url", req.SourceURL).Logger()

	var (
		degraded bool
		fetchErr *core.FetchError
	)
	p, err := g.loader.Load(ctx, req.SourceURL)
	switch {
	case errors.As(err, &fetchErr):
		if g.strict {
			return nil, err
		}
		log.Warn().Err(err).Msg("Page unreachable, continuing with degraded content")
		p = page.Degraded(req.SourceURL, err)
		degraded = true
	case err != nil:
		return nil, fmt.Errorf("loading %s: %w", req.SourceURL, err)
	}

	if len(p.BodyText) > largePageChars {
		log.Warn().Int("chars", len(p.BodyText)).Msg("Large page sent to completion endpoint untruncated")
	}

	text, err := g.completer.Complete(ctx, SystemPrompt, UserPrompt(req, p))
	if err != nil {
		return nil, err
	}

	b := &core.Brochure{
		SubjectName: req.SubjectName,
		SourceURL:   req.SourceURL,
		Title:       p.Title,
		Model:       g.completer.Model(),
		Degraded:    degraded,
		GeneratedAt: g.now().UTC(),
		Markdown:    text,
	}
	if degraded {
		b.FetchErr = fetchErr
	}
	log.Info().Bool("degraded", degraded).Int("chars", len(text)).Msg("Brochure generated")
	return b, nil
}

// GenerateMarkdown is Generate for callers that only want text: it never
// fails, and any error comes back as an ErrorMarkdown document.
func (g *Generator) GenerateMarkdown(ctx context.Context, subjectName, url string) string {
	b, err := g.Generate(ctx, core.BrochureRequest{SubjectName: subjectName, SourceURL: url})
	if err != nil {
		g.log.Error().Err(err).Str("subject", subjectName).Msg("Brochure generation failed")
		return ErrorMarkdown(err)
	}
	return b.Markdown
}

// ErrorMarkdown renders err as a Markdown error section.
func ErrorMarkdown(err error) string {
	return fmt.Sprintf("%s\n\nAn error occurred while generating the brochure: %v\n", ErrorHeading, err)
}
