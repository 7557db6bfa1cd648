// Package cmd — extract command.
// Shows what the model would be given for a URL, without calling it.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/brochuregen/core/extract"
	"github.com/gaurav-prasanna/brochuregen/core/fetch"
	"github.com/gaurav-prasanna/brochuregen/core/normalize"
)

var (
	flagExtractMarkdown bool
	flagExtractJSON     bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <url>",
	Short: "Print the title, visible text and links extracted from a page",
	Long: `Extract fetches a page and prints what the brochure prompt would contain.
With --markdown the cleaned main content is converted to Markdown instead;
with --json the extracted page is printed as JSON.

Examples:
  brochuregen extract example.com
  brochuregen extract https://example.com --json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVar(&flagExtractMarkdown, "markdown", false, "Print the main content as Markdown")
	extractCmd.Flags().BoolVar(&flagExtractJSON, "json", false, "Print the extracted page as JSON")
}

func runExtract(cmd *cobra.Command, args []string) error {
	if flagExtractMarkdown && flagExtractJSON {
		return fmt.Errorf("--markdown and --json are mutually exclusive")
	}

	fetcher := fetch.New(
		fetch.WithTimeout(cfg.FetchTimeout()),
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
		fetch.WithLogger(logger),
	)
	extractor := extract.New()

	result, err := fetcher.Fetch(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if flagExtractMarkdown {
		cleaned, err := extractor.Clean(result.HTML)
		if err != nil {
			return fmt.Errorf("extract: %w", err)
		}
		markdown, err := normalize.New(normalize.WithDomain(result.URL)).Normalize(cleaned)
		if err != nil {
			return fmt.Errorf("normalize: %w", err)
		}
		fmt.Fprintln(os.Stdout, markdown)
		return nil
	}

	page, err := extractor.Extract(result.URL, result.HTML)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	if flagExtractJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}

	fmt.Fprintf(os.Stdout, "Title: %s\nEncoding: %s\n\n%s\n", page.Title, result.Encoding, page.BodyText)
	if len(page.Links) > 0 {
		fmt.Fprintf(os.Stdout, "\nLinks:\n  %s\n", strings.Join(page.Links, "\n  "))
	}
	return nil
}
