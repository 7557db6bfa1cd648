package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/brochuregen/core"
	"github.com/gaurav-prasanna/brochuregen/core/fetch"
)

const product = `
<li class="col-xs-6 col-sm-4 col-md-3 col-lg-3">
  <article class="product_pod">
    <div class="image_container"><a href="%[1]s"><img src="x.jpg" alt="%[2]s"></a></div>
    <h3><a href="%[1]s" title="%[2]s">%[2]s...</a></h3>
    <div class="product_price">
      <p class="price_color">%[3]s</p>
      <p class="instock availability">In stock</p>
    </div>
  </article>
</li>`

func listingPage(next string, books ...[3]string) string {
	var b strings.Builder
	b.WriteString(`<html><head><title> All products | Books to Scrape </title></head><body><ol class="row">`)
	for _, book := range books {
		fmt.Fprintf(&b, product, book[0], book[1], book[2])
	}
	b.WriteString(`</ol>`)
	if next != "" {
		fmt.Fprintf(&b, `<ul class="pager"><li class="next"><a href="%s">next</a></li></ul>`, next)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func TestParseBooks(t *testing.T) {
	page := listingPage("page-2.html",
		[3]string{"a-light-in-the-attic_1000/index.html", "A Light in the Attic", "£51.77"},
		[3]string{"tipping-the-velvet_999/index.html", "Tipping the Velvet", "£53.74"},
	)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	books, err := ParseBooks(doc, DefaultURL)
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, core.Book{
		URL:   "https://books.toscrape.com/catalogue/a-light-in-the-attic_1000/index.html",
		Title: "A Light in the Attic",
		Price: "£51.77",
	}, books[0])
	assert.Equal(t, "Tipping the Velvet", books[1].Title)
}

func TestParseBooksEmptyPage(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingPage("")))
	require.NoError(t, err)

	books, err := ParseBooks(doc, DefaultURL)
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestScrapeFollowsNextPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/catalogue/page-1.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, listingPage("page-2.html", [3]string{"one_1/index.html", "One", "£1.00"}))
	})
	mux.HandleFunc("/catalogue/page-2.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, listingPage("page-3.html", [3]string{"two_2/index.html", "Two", "£2.00"}))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	s := NewScraper(fetch.New(), zerolog.Nop())

	books, err := s.Scrape(context.Background(), server.URL+"/catalogue/page-1.html", 2)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, server.URL+"/catalogue/one_1/index.html", books[0].URL)
	assert.Equal(t, "Two", books[1].Title)
	assert.Equal(t, "£2.00", books[1].Price)

	books, err = s.Scrape(context.Background(), server.URL+"/catalogue/page-1.html", 1)
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestScrapeFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	s := NewScraper(fetch.New(), zerolog.Nop())
	books, err := s.Scrape(context.Background(), server.URL+"/catalogue/page-1.html", 1)

	var fetchErr *core.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Empty(t, books)
}
