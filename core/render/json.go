package render

import (
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/brochuregen/core"
)

// JSONRenderer produces the brochure and its provenance as JSON.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// brochureJSON adds the fetch failure text, which core.Brochure keeps as an
// error value.
type brochureJSON struct {
	*core.Brochure
	FetchError string `json:"fetch_error,omitempty"`
}

// Render marshals the brochure with two-space indentation.
func (r *JSONRenderer) Render(b *core.Brochure) ([]byte, error) {
	out := brochureJSON{Brochure: b}
	if b.FetchErr != nil {
		out.FetchError = b.FetchErr.Error()
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}
