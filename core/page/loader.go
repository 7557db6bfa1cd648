// Package page composes the fetch and extract stages into a single
// URL -> ExtractedPage call.
package page

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/brochuregen/core"
	"github.com/gaurav-prasanna/brochuregen/core/extract"
)

// Loader fetches a page and extracts its visible text and links.
type Loader struct {
	fetcher   core.Fetcher
	extractor core.Extractor
	log       zerolog.Logger
}

// NewLoader creates a Loader from the given stages.
func NewLoader(fetcher core.Fetcher, extractor core.Extractor, log zerolog.Logger) *Loader {
	return &Loader{
		fetcher:   fetcher,
		extractor: extractor,
		log:       log.With().Str("component", "page").Logger(),
	}
}

// Load fetches url and extracts it. A fetch failure is returned as the
// fetcher's *core.FetchError so callers can tell an unreachable page apart
// from an empty one and choose whether to continue with Degraded.
func (l *Loader) Load(ctx context.Context, url string) (*core.ExtractedPage, error) {
	result, err := l.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	p, err := l.extractor.Extract(result.URL, result.HTML)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	l.log.Debug().
		Str("url", result.URL).
		Str("title", p.Title).
		Int("text_len", len(p.BodyText)).
		Int("links", len(p.Links)).
		Msg("Extracted page")
	return p, nil
}

// Degraded builds the placeholder page used when url could not be fetched.
// The failure text stands in for the page content.
func Degraded(url string, err error) *core.ExtractedPage {
	return &core.ExtractedPage{
		SourceURL: url,
		Title:     extract.UntitledPage,
		BodyText:  fmt.Sprintf("Error fetching website: %v", err),
		Links:     []string{},
	}
}
