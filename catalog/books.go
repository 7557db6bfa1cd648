// Package catalog scrapes the books.toscrape.com catalogue into
// url/title/price records.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/gaurav-prasanna/brochuregen/core"
	"github.com/gaurav-prasanna/brochuregen/crawl"
)

const (
	// DefaultURL is the first page of the catalogue.
	DefaultURL = "https://books.toscrape.com/catalogue/page-1.html"
	// DefaultOutput is where the books command writes its records.
	DefaultOutput = "books.json"

	productSelector = "article.product_pod"
	nextSelector    = "li.next a"
)

// Scraper collects books from catalogue listing pages.
type Scraper struct {
	fetcher core.Fetcher
	log     zerolog.Logger
}

// NewScraper creates a Scraper that fetches pages with fetcher.
func NewScraper(fetcher core.Fetcher, log zerolog.Logger) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		log:     log.With().Str("component", "catalog").Logger(),
	}
}

// Scrape reads up to maxPages listing pages starting at startURL and
// returns their books in page order.
func (s *Scraper) Scrape(ctx context.Context, startURL string, maxPages int) ([]core.Book, error) {
	books := []core.Book{}
	pages, err := crawl.FollowPagination(ctx, s.fetcher, startURL, nextSelector, maxPages,
		func(result *core.FetchResult, doc *goquery.Document) error {
			found, err := ParseBooks(doc, result.URL)
			if err != nil {
				return err
			}
			s.log.Info().
				Str("url", result.URL).
				Str("title", strings.TrimSpace(doc.Find("title").First().Text())).
				Int("books", len(found)).
				Msg("Scraped catalogue page")
			books = append(books, found...)
			return nil
		})
	if err != nil {
		return books, fmt.Errorf("scraping catalogue: %w", err)
	}

	s.log.Debug().Int("pages", pages).Int("books", len(books)).Msg("Catalogue scrape finished")
	return books, nil
}

// ParseBooks extracts every product on a listing page. Book links are
// resolved against pageURL.
func ParseBooks(doc *goquery.Document, pageURL string) ([]core.Book, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page URL: %w", err)
	}

	books := []core.Book{}
	doc.Find(productSelector).Each(func(_ int, product *goquery.Selection) {
		link := product.Find("h3 a").First()
		href, _ := link.Attr("href")
		title, _ := link.Attr("title")

		books = append(books, core.Book{
			URL:   crawl.ResolveURL(href, base),
			Title: title,
			Price: strings.TrimSpace(product.Find("p.price_color").First().Text()),
		})
	})
	return books, nil
}
