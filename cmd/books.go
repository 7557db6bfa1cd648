// Package cmd — books command.
// Scrapes the book catalogue and dumps url/title/price records to JSON.
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/brochuregen/catalog"
	"github.com/gaurav-prasanna/brochuregen/core/fetch"
	"github.com/gaurav-prasanna/brochuregen/core/output"
)

var (
	flagBooksURL   string
	flagBooksPages int
	flagBooksOut   string
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Scrape the book catalogue into a JSON file",
	Long: `Books reads the books.toscrape.com catalogue listing and writes every
book's url, title and price to a JSON array.

Examples:
  brochuregen books
  brochuregen books --pages 5 --out ./out/books.json`,
	Args: cobra.NoArgs,
	RunE: runBooks,
}

func init() {
	rootCmd.AddCommand(booksCmd)

	booksCmd.Flags().StringVar(&flagBooksURL, "url", catalog.DefaultURL, "First catalogue page")
	booksCmd.Flags().IntVar(&flagBooksPages, "pages", 1, "Number of listing pages to follow")
	booksCmd.Flags().StringVar(&flagBooksOut, "out", catalog.DefaultOutput, "Output JSON file")
}

func runBooks(cmd *cobra.Command, _ []string) error {
	fetcher := fetch.New(
		fetch.WithTimeout(cfg.FetchTimeout()),
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
		fetch.WithLogger(logger),
	)

	books, err := catalog.NewScraper(fetcher, logger).Scrape(cmd.Context(), flagBooksURL, flagBooksPages)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(books); err != nil {
		return fmt.Errorf("marshaling books: %w", err)
	}

	writer, err := output.New(filepath.Dir(flagBooksOut))
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	path, err := writer.Write(filepath.Base(flagBooksOut), buf.Bytes())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Written %d books: %s\n", len(books), path)
	return nil
}
