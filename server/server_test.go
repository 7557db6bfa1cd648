package server

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/brochuregen/core"
	"github.com/gaurav-prasanna/brochuregen/core/brochure"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubCompleter struct {
	text string
	err  error
}

func (s stubCompleter) Complete(context.Context, string, string) (string, error) {
	return s.text, s.err
}

func (s stubCompleter) Model() string { return "stub" }

type stubLoader struct{}

func (stubLoader) Load(ctx context.Context, url string) (*core.ExtractedPage, error) {
	return &core.ExtractedPage{SourceURL: url, Title: "Acme", BodyText: "Hello"}, nil
}

func newTestRouter(t *testing.T, c stubCompleter, hasKey bool) (*gin.Engine, *[]string) {
	t.Helper()
	var keys []string
	factory := func(apiKey string) (*brochure.Generator, error) {
		keys = append(keys, apiKey)
		if apiKey == "bad" {
			return nil, &core.ConfigurationError{Field: "api_key", Reason: "is invalid"}
		}
		return brochure.New(c, stubLoader{})
	}
	return New(factory, hasKey, zerolog.Nop()).Router(), &keys
}

func postForm(r http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFormPage(t *testing.T) {
	r, _ := newTestRouter(t, stubCompleter{}, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Company Brochure Generator")
	assert.Contains(t, body, `name="company_name"`)
	assert.NotContains(t, body, "(optional)")
}

func TestGenerateMissingFields(t *testing.T) {
	r, keys := newTestRouter(t, stubCompleter{text: "# Acme"}, false)

	tests := []url.Values{
		{"api_key": {"sk"}, "company_name": {"Acme"}},
		{"api_key": {"sk"}, "url": {"acme.test"}},
		{"company_name": {"Acme"}, "url": {"acme.test"}},
		{"api_key": {"sk"}, "company_name": {"  "}, "url": {"acme.test"}},
	}
	for _, form := range tests {
		w := postForm(r, "/brochure", form)
		assert.Equal(t, http.StatusBadRequest, w.Code, "form %v", form)
		assert.Contains(t, w.Body.String(), missingFieldsMessage)
	}
	assert.Empty(t, *keys, "generator must not be built for incomplete forms")
}

func TestGenerateUsesServerKey(t *testing.T) {
	r, keys := newTestRouter(t, stubCompleter{text: "# Acme"}, true)

	w := postForm(r, "/brochure", url.Values{"company_name": {"Acme"}, "url": {"acme.test"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{""}, *keys)
}

func TestGenerateSuccess(t *testing.T) {
	r, keys := newTestRouter(t, stubCompleter{text: "# Acme <Rockets>"}, false)

	w := postForm(r, "/brochure", url.Values{
		"api_key":      {"sk-test"},
		"company_name": {"Acme"},
		"url":          {"acme.test"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "# Acme &lt;Rockets&gt;")
	assert.Contains(t, body, "Acme_Brochure.md")
	assert.Equal(t, []string{"sk-test"}, *keys)
}

func TestGenerateFactoryError(t *testing.T) {
	r, _ := newTestRouter(t, stubCompleter{}, false)

	w := postForm(r, "/brochure", url.Values{
		"api_key":      {"bad"},
		"company_name": {"Acme"},
		"url":          {"acme.test"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "is invalid")
}

func TestGenerateCompletionError(t *testing.T) {
	completionErr := &core.CompletionError{Model: "stub", Err: errors.New("timeout")}
	r, _ := newTestRouter(t, stubCompleter{err: completionErr}, false)

	w := postForm(r, "/brochure", url.Values{
		"api_key":      {"sk"},
		"company_name": {"Acme"},
		"url":          {"acme.test"},
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), brochure.ErrorHeading)
}

func TestDownload(t *testing.T) {
	r, _ := newTestRouter(t, stubCompleter{}, false)

	w := postForm(r, "/download", url.Values{
		"company_name": {"Acme"},
		"document":     {"# Acme\n\nRockets."},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename=Acme_Brochure.md`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/markdown; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "# Acme\n\nRockets.", w.Body.String())

	w = postForm(r, "/download", url.Values{"company_name": {"Acme"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadFilenameEncoding(t *testing.T) {
	r, _ := newTestRouter(t, stubCompleter{}, false)

	tests := []struct {
		name string
		want string
	}{
		{"Café", `attachment; filename*=utf-8''Caf%C3%A9_Brochure.md`},
		{"Hugging Face", `attachment; filename="Hugging Face_Brochure.md"`},
	}
	for _, tc := range tests {
		w := postForm(r, "/download", url.Values{"company_name": {tc.name}, "document": {"# x"}})
		require.Equal(t, http.StatusOK, w.Code)

		disposition := w.Header().Get("Content-Disposition")
		assert.Equal(t, tc.want, disposition)

		_, params, err := mime.ParseMediaType(disposition)
		require.NoError(t, err)
		assert.Equal(t, tc.name+"_Brochure.md", params["filename"])
	}
}

func TestAPIGenerate(t *testing.T) {
	r, keys := newTestRouter(t, stubCompleter{text: "# Acme"}, false)

	req := httptest.NewRequest(http.MethodPost, "/api/brochure",
		strings.NewReader(`{"subject_name":"Acme","source_url":"acme.test","api_key":"sk-json"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Acme", got["subject_name"])
	assert.Equal(t, "# Acme", got["markdown"])
	assert.Equal(t, "stub", got["model"])
	assert.Equal(t, []string{"sk-json"}, *keys)
}

func TestAPIGenerateValidation(t *testing.T) {
	r, _ := newTestRouter(t, stubCompleter{text: "# Acme"}, false)

	for _, body := range []string{
		`{"source_url":"acme.test","api_key":"sk"}`,
		`{"subject_name":"Acme","source_url":"acme.test"}`,
		`not json`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/brochure", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t, stubCompleter{}, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, statusFor(&core.FetchError{URL: "x", Err: errors.New("down")}))
	assert.Equal(t, http.StatusBadGateway, statusFor(&core.CompletionError{Err: errors.New("slow")}))
	assert.Equal(t, http.StatusBadRequest, statusFor(errors.New("subject name is required")))
}

func TestMetrics(t *testing.T) {
	r, _ := newTestRouter(t, stubCompleter{text: "# Acme"}, true)

	postForm(r, "/brochure", url.Values{"company_name": {"Acme"}, "url": {"acme.test"}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `brochuregen_brochures_total{result="ok"} 1`)
	assert.Contains(t, body, `brochuregen_http_requests_total{method="POST",path="/brochure",status="200"} 1`)
}
