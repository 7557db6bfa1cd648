// Package server serves the single-page brochure form: enter an API key,
// a company name and its website, read the brochure, download it as
// Markdown.
package server

import (
	"errors"
	"html/template"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/brochuregen/core"
	"github.com/gaurav-prasanna/brochuregen/core/brochure"
	"github.com/gaurav-prasanna/brochuregen/core/output"
	"github.com/gaurav-prasanna/brochuregen/core/render"
)

// GeneratorFactory builds a generator for the API key a visitor submitted.
// An empty key means "use the server's own key, if any".
type GeneratorFactory func(apiKey string) (*brochure.Generator, error)

const missingFieldsMessage = "Please fill all fields!"

type formData struct {
	CompanyName string
	URL         string
	Error       string
	HasKey      bool // server has its own key; the key field may stay empty
}

type resultData struct {
	CompanyName string
	Document    string
	Filename    string
	Failed      bool
}

// apiRequest is the JSON body accepted by POST /api/brochure.
type apiRequest struct {
	SubjectName string `json:"subject_name" binding:"required"`
	SourceURL   string `json:"source_url" binding:"required"`
	APIKey      string `json:"api_key"`
}

// Server holds the HTTP handlers.
type Server struct {
	factory  GeneratorFactory
	hasKey   bool
	log      zerolog.Logger
	registry *prometheus.Registry
	metrics  *Metrics
}

// New creates a Server. hasKey tells the form whether the API key field is
// optional.
func New(factory GeneratorFactory, hasKey bool, log zerolog.Logger) *Server {
	reg := prometheus.NewRegistry()
	return &Server{
		factory:  factory,
		hasKey:   hasKey,
		log:      log.With().Str("component", "server").Logger(),
		registry: reg,
		metrics:  NewMetrics(reg),
	}
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.SetHTMLTemplate(pageTemplates)

	r.GET("/", s.formHandler)
	r.POST("/brochure", s.generateHandler)
	r.POST("/download", s.downloadHandler)
	r.POST("/api/brochure", s.apiGenerateHandler)
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	return r
}

func (s *Server) formHandler(c *gin.Context) {
	c.HTML(http.StatusOK, "form", formData{HasKey: s.hasKey})
}

func (s *Server) generateHandler(c *gin.Context) {
	apiKey := strings.TrimSpace(c.PostForm("api_key"))
	name := strings.TrimSpace(c.PostForm("company_name"))
	url := strings.TrimSpace(c.PostForm("url"))

	form := formData{CompanyName: name, URL: url, HasKey: s.hasKey}
	if name == "" || url == "" || (apiKey == "" && !s.hasKey) {
		form.Error = missingFieldsMessage
		c.HTML(http.StatusBadRequest, "form", form)
		return
	}

	gen, err := s.factory(apiKey)
	if err != nil {
		form.Error = err.Error()
		c.HTML(http.StatusBadRequest, "form", form)
		return
	}

	result := resultData{
		CompanyName: name,
		Filename:    output.BrochureFilename(name, ".md"),
	}
	b, err := gen.Generate(c.Request.Context(), core.BrochureRequest{SubjectName: name, SourceURL: url})
	s.metrics.observeBrochure(b != nil && b.Degraded, err)
	if err != nil {
		s.log.Error().Err(err).Str("subject", name).Msg("Brochure generation failed")
		result.Document = brochure.ErrorMarkdown(err)
		result.Failed = true
		c.HTML(statusFor(err), "result", result)
		return
	}

	result.Document = b.Markdown
	c.HTML(http.StatusOK, "result", result)
}

func (s *Server) downloadHandler(c *gin.Context) {
	name := c.PostForm("company_name")
	document := c.PostForm("document")
	if strings.TrimSpace(document) == "" {
		c.String(http.StatusBadRequest, "nothing to download")
		return
	}

	// Non-ASCII names go out in the RFC 2231 filename* form.
	disposition := mime.FormatMediaType("attachment", map[string]string{
		"filename": output.BrochureFilename(name, ".md"),
	})
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, output.MarkdownContentType, []byte(document))
}

func (s *Server) apiGenerateHandler(c *gin.Context) {
	var req apiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.APIKey == "" && !s.hasKey {
		c.JSON(http.StatusBadRequest, gin.H{"error": "api_key is required"})
		return
	}

	gen, err := s.factory(req.APIKey)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := gen.Generate(c.Request.Context(), core.BrochureRequest{
		SubjectName: req.SubjectName,
		SourceURL:   req.SourceURL,
	})
	s.metrics.observeBrochure(b != nil && b.Degraded, err)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	data, err := render.NewJSONRenderer().Render(b)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// statusFor maps a generation error to an HTTP status.
func statusFor(err error) int {
	var (
		fetchErr      *core.FetchError
		completionErr *core.CompletionError
	)
	switch {
	case errors.As(err, &completionErr), errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		s.metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())

		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("Request handled")
	}
}

var pageTemplates = template.Must(template.New("pages").Parse(`
{{define "head"}}<!doctype html>
<html lang="en"><head><meta charset="utf-8">
<title>Company Brochure Generator</title>
<style>
body { background:#f0f2f6; font-family:sans-serif; max-width:60rem; margin:2rem auto; color:#2C3E50; }
label { display:block; margin-top:1rem; }
input { width:100%; padding:.4rem; }
pre { white-space:pre-wrap; background:#fff; padding:1rem; }
.error { color:#b00020; }
</style></head><body>
<h1>Company Brochure Generator</h1>
<p>Transform websites into compelling narratives</p><hr>{{end}}

{{define "form"}}{{template "head"}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/brochure">
<label>OpenAI API Key{{if .HasKey}} (optional){{end}}
<input type="password" name="api_key" placeholder="Enter your OpenAI API Key"></label>
<label>Company Name <input name="company_name" value="{{.CompanyName}}" placeholder="e.g., HuggingFace"></label>
<label>Website URL <input name="url" value="{{.URL}}" placeholder="e.g., huggingface.co"></label>
<p><button type="submit">Generate Brochure</button></p>
</form></body></html>{{end}}

{{define "result"}}{{template "head"}}
{{if .Failed}}<p class="error">Brochure generation failed.</p>{{else}}<h2>Your Brochure</h2>{{end}}
<pre>{{.Document}}</pre>
<form method="post" action="/download">
<input type="hidden" name="company_name" value="{{.CompanyName}}">
<input type="hidden" name="document" value="{{.Document}}">
<button type="submit">Download {{.Filename}}</button>
</form>
<p><a href="/">Generate another</a></p>
</body></html>{{end}}
`))
