// Package crawl follows "next page" links through a paginated listing.
// It keeps traversal separate from what is scraped on each page.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/brochuregen/core"
)

// PageFunc receives each fetched page together with its parsed document.
type PageFunc func(result *core.FetchResult, doc *goquery.Document) error

// FollowPagination fetches startURL and keeps following the first link
// matched by nextSelector until maxPages pages were visited, no next link
// exists, or the link leaves the starting host. A page seen once is never
// fetched again. It returns the number of pages passed to visit.
func FollowPagination(
	ctx context.Context,
	fetcher core.Fetcher,
	startURL string,
	nextSelector string,
	maxPages int,
	visit PageFunc,
) (int, error) {
	if maxPages <= 0 {
		maxPages = 1
	}

	start, err := url.Parse(startURL)
	if err != nil {
		return 0, fmt.Errorf("parsing start URL: %w", err)
	}
	domain := start.Host

	queue := NewQueue()
	queue.Add(NormalizeURL(startURL))

	for queue.HasNext() && queue.Processed() < maxPages {
		if err := ctx.Err(); err != nil {
			return queue.Processed(), err
		}
		currentURL := queue.Next()

		result, err := fetcher.Fetch(ctx, currentURL)
		if err != nil {
			return queue.Processed() - 1, err
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.HTML))
		if err != nil {
			return queue.Processed() - 1, fmt.Errorf("parsing %s: %w", currentURL, err)
		}

		if err := visit(result, doc); err != nil {
			return queue.Processed() - 1, err
		}

		next := nextLink(doc, nextSelector, result.URL)
		if next != "" && IsSameDomain(next, domain) {
			queue.Add(NormalizeURL(next))
		}
	}

	return queue.Processed(), nil
}

// nextLink returns the resolved href of the first element matching
// selector, or "" if there is none.
func nextLink(doc *goquery.Document, selector string, pageURL string) string {
	if selector == "" {
		return ""
	}
	href, ok := doc.Find(selector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return ResolveURL(href, base)
}

// ResolveURL resolves a potentially relative URL against a base.
func ResolveURL(href string, base *url.URL) string {
	if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "#") {
		return ""
	}

	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String()
}
