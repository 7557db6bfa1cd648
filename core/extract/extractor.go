// Package extract implements the Extractor interface.
// It reduces a full HTML page to what a reader of the page would see:
//  1. The page title
//  2. The visible body text, with scripts, styles and media removed
//  3. The outbound links, minus legal and contact boilerplate
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/gaurav-prasanna/brochuregen/core"
)

const (
	// UntitledPage is used when the document has no <title>.
	UntitledPage = "Unnamed"
	// NoBodyText is used when the document has no <body>.
	NoBodyText = "No body content found"
)

// irrelevantSelectors are removed from <body> before the text walk.
var irrelevantSelectors = "script, style, img, input, noscript, svg"

// noiseSelectors are removed by Clean. This is the wider set used when
// previewing the page as Markdown, where layout chrome is unwanted too.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header",
	"img", "picture", "figure", "figcaption",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
}

// excludedLinkMarkers drop links to pages that never describe the company.
// Matching is a case-insensitive substring test on the raw href.
var excludedLinkMarkers = []string{"privacy", "terms", "cookie", "contact", "@"}

// HTMLExtractor turns decoded HTML into an ExtractedPage.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract parses src and returns its title, visible text and links.
// Relative links are resolved against baseURL.
func (e *HTMLExtractor) Extract(baseURL string, src string) (*core.ExtractedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	title := UntitledPage
	if t := doc.Find("title").First(); t.Length() > 0 {
		title = strings.TrimSpace(t.Text())
	}

	// Links come first: the text pass below prunes nodes from the tree.
	links := extractLinks(doc, base)

	text := NoBodyText
	if body := doc.Find("body").First(); hasBody(body, src) {
		body.Find(irrelevantSelectors).Remove()
		text = FilterASCII(visibleText(body))
	}

	return &core.ExtractedPage{
		SourceURL: baseURL,
		Title:     title,
		BodyText:  text,
		Links:     links,
	}, nil
}

// Clean takes raw HTML and returns a cleaned HTML fragment containing
// only the main content.
func (e *HTMLExtractor) Clean(src string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	// <main> is the most semantically correct, then <article>, then <body>.
	var content *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			content = sel.First()
			break
		}
	}

	if content == nil {
		return "", fmt.Errorf("no content container found in HTML")
	}

	result, err := goquery.OuterHtml(content)
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}

	return result, nil
}

// hasBody reports whether the document really has a body. The HTML5
// parser always synthesizes a <body>, so an empty one only counts if the
// markup declared it.
func hasBody(body *goquery.Selection, src string) bool {
	if body.Length() == 0 {
		return false
	}
	if body.Contents().Length() > 0 {
		return true
	}
	return declaresBody(src)
}

// declaresBody reports whether src contains a <body> start tag. The
// tokenizer treats script, style and comment contents as text, so a
// "<body" inside them does not count.
func declaresBody(src string) bool {
	z := html.NewTokenizer(strings.NewReader(src))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "body" {
				return true
			}
		}
	}
}

// visibleText walks sel depth-first and joins its trimmed text nodes with
// newlines.
func visibleText(sel *goquery.Selection) string {
	var chunks []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				chunks = append(chunks, t)
			}
		case html.CommentNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.TrimSpace(strings.Join(chunks, "\n"))
}

// FilterASCII drops every rune at or above 128 except that the three
// whitespace controls \n, \r and \t are always kept.
func FilterASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 || r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// extractLinks collects the href of every anchor in document order,
// skipping excluded and non-web targets and resolving the rest against base.
func extractLinks(doc *goquery.Document, base *url.URL) []string {
	links := []string{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || isExcludedLink(href) {
			return
		}
		// A marker can also come from the base URL, e.g. a host named
		// cookiecutter.io or user@ credentials.
		if resolved := resolveURL(href, base); resolved != "" && !isExcludedLink(resolved) {
			links = append(links, resolved)
		}
	})
	return links
}

func isExcludedLink(href string) bool {
	lower := strings.ToLower(href)
	for _, marker := range excludedLinkMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// resolveURL resolves a potentially relative URL against a base and keeps
// it only if the result is an http(s) URL.
func resolveURL(href string, base *url.URL) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
