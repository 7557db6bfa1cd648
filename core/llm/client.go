// Package llm implements the Completer interface on top of the OpenAI
// chat completions API. Any OpenAI-compatible endpoint works via BaseURL.
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/brochuregen/core"
)

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultMaxTokens = 1000
)

// Config holds everything needed to reach the completion endpoint.
// APIKey is required; the rest have defaults.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int64
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client sends single-turn chat completions.
type Client struct {
	api       openai.Client
	model     string
	maxTokens int64
	log       zerolog.Logger
}

// New builds a Client. It returns a *core.ConfigurationError when no API
// key is configured; nothing is sent over the network here.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &core.ConfigurationError{Field: "api_key", Reason: "is required (set --api-key or OPENAI_API_KEY)"}
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	log = log.With().Str("component", "llm").Str("model", cfg.Model).Logger()

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	opts = append(opts, option.WithMiddleware(traceMiddleware(log)))

	return &Client{
		api:       openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		log:       log,
	}, nil
}

// Model returns the model identifier requests are sent with.
func (c *Client) Model() string {
	return c.model
}

// Complete sends one system and one user message and returns the text of
// the first choice. Failures are returned as *core.CompletionError.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxCompletionTokens: openai.Int(c.maxTokens),
	}

	resp, err := c.api.Chat.Completions.New(ctx, req)
	if err != nil {
		cerr := &core.CompletionError{Model: c.model, Err: err}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			cerr.StatusCode = apiErr.StatusCode
		}
		return "", cerr
	}
	if len(resp.Choices) == 0 {
		return "", &core.CompletionError{Model: c.model, Err: errors.New("response contained no choices")}
	}

	c.log.Debug().
		Int64("prompt_tokens", resp.Usage.PromptTokens).
		Int64("completion_tokens", resp.Usage.CompletionTokens).
		Str("finish_reason", resp.Choices[0].FinishReason).
		Msg("Completion finished")
	return resp.Choices[0].Message.Content, nil
}

func traceMiddleware(log zerolog.Logger) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		start := time.Now()
		resp, err := next(req)
		evt := log.Debug().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Dur("took", time.Since(start))
		if err != nil {
			evt.Err(err).Msg("Completion request failed")
			return resp, err
		}
		evt.Int("status", resp.StatusCode).Msg("Completion request")
		return resp, nil
	}
}
