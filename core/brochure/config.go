package brochure

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/brochuregen/core/extract"
	"github.com/gaurav-prasanna/brochuregen/core/fetch"
	"github.com/gaurav-prasanna/brochuregen/core/llm"
	"github.com/gaurav-prasanna/brochuregen/core/page"
)

// Config wires a Generator from plain settings.
type Config struct {
	LLM          llm.Config
	FetchTimeout time.Duration
	UserAgent    string
	StrictFetch  bool
}

// NewFromConfig builds the full pipeline: HTTP fetcher, extractor, page
// loader and OpenAI client. A missing API key is reported as a
// *core.ConfigurationError before anything touches the network.
func NewFromConfig(cfg Config, log zerolog.Logger) (*Generator, error) {
	completer, err := llm.New(cfg.LLM, log)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.New(
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithLogger(log),
	)
	loader := page.NewLoader(fetcher, extract.New(), log)

	return New(completer, loader, WithStrictFetch(cfg.StrictFetch), WithLogger(log))
}
