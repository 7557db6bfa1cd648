// Package core defines the pipeline types and interfaces for brochuregen.
// Each stage of the pipeline is a clean, testable interface.
package core

import (
	"context"
	"time"
)

// FetchResult holds the decoded HTML and response metadata from a fetch.
type FetchResult struct {
	URL         string // normalized request URL
	FinalURL    string // URL after redirects
	StatusCode  int
	ContentType string
	Encoding    string // charset the body was decoded from
	HTML        string
}

// ExtractedPage is the visible text and outbound links of a single page.
type ExtractedPage struct {
	SourceURL string   `json:"source_url"`
	Title     string   `json:"title"`
	BodyText  string   `json:"body_text"`
	Links     []string `json:"links"`
}

// BrochureRequest is what a caller asks the generator for.
type BrochureRequest struct {
	SubjectName string `json:"subject_name"`
	SourceURL   string `json:"source_url"`
}

// Brochure is a generated document together with how it was produced.
type Brochure struct {
	SubjectName string    `json:"subject_name"`
	SourceURL   string    `json:"source_url"`
	Title       string    `json:"title"`
	Model       string    `json:"model"`
	Degraded    bool      `json:"degraded"`
	FetchErr    error     `json:"-"`
	GeneratedAt time.Time `json:"generated_at"`
	Markdown    string    `json:"markdown"`
}

// Book is one entry of the book catalogue.
type Book struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Price string `json:"price"`
}

// Fetcher retrieves and decodes HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Extractor reduces decoded HTML to an ExtractedPage.
type Extractor interface {
	Extract(baseURL string, html string) (*ExtractedPage, error)
}

// Normalizer converts cleaned HTML into Markdown.
type Normalizer interface {
	Normalize(html string) (string, error)
}

// Completer sends a system and a user prompt to a text-completion endpoint
// and returns the generated text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	// Model returns the model identifier requests are sent with.
	Model() string
}

// Renderer converts a brochure into a final output format.
type Renderer interface {
	Render(b *Brochure) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
