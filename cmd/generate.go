// Package cmd — generate command.
// This is the main command that orchestrates the pipeline:
// fetch → extract → prompt → complete → render → write.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/brochuregen/config"
	"github.com/gaurav-prasanna/brochuregen/core"
	"github.com/gaurav-prasanna/brochuregen/core/brochure"
	"github.com/gaurav-prasanna/brochuregen/core/output"
	"github.com/gaurav-prasanna/brochuregen/core/render"
)

var (
	flagPDF      bool
	flagMarkdown bool
	flagJSON     bool
	flagStdout   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <company> <url>",
	Short: "Generate a brochure for a company from its website",
	Long: `Generate fetches the company's website, extracts its visible text and asks
the completion endpoint for a Markdown brochure. The result is written to
{company}_Brochure.md (or .pdf / .json) in the output directory.

Examples:
  brochuregen generate HuggingFace huggingface.co
  brochuregen generate "Acme Corp" https://acme.example --pdf --output_dir ./out
  brochuregen generate Acme acme.example --stdout`,
	Args: cobra.ExactArgs(2),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()
	flags.String("api-key", "", "OpenAI API key (default $OPENAI_API_KEY or .env)")
	flags.String("model", "", "Model identifier (default from config)")
	flags.String("base-url", "", "OpenAI-compatible API base URL")

	// Output format flags (mutually exclusive, Markdown if none given).
	generateCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Output Markdown (default)")
	generateCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Output PDF")
	generateCmd.Flags().BoolVar(&flagJSON, "json", false, "Output JSON with provenance")

	flags.String("output_dir", "", "Output directory (default: config or current directory)")
	flags.BoolVar(&flagStdout, "stdout", false, "Print the document instead of writing a file")
	flags.Bool("strict", false, "Fail when the website cannot be fetched instead of continuing")

	mustBind(config.KeyAPIKey, flags.Lookup("api-key"))
	mustBind(config.KeyModel, flags.Lookup("model"))
	mustBind(config.KeyBaseURL, flags.Lookup("base-url"))
	mustBind(config.KeyOutputDir, flags.Lookup("output_dir"))
	mustBind(config.KeyStrictFetch, flags.Lookup("strict"))
}

func runGenerate(cmd *cobra.Command, args []string) error {
	name, rawURL := args[0], args[1]

	renderer, err := selectRenderer()
	if err != nil {
		return err
	}

	// A missing key stops here, before any request is made.
	gen, err := brochure.NewFromConfig(cfg.Brochure(), logger)
	if err != nil {
		return err
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Crafting your brochure..."
	s.Start()
	b, err := gen.Generate(cmd.Context(), core.BrochureRequest{SubjectName: name, SourceURL: rawURL})
	s.Stop()
	if err != nil {
		fmt.Fprint(os.Stdout, brochure.ErrorMarkdown(err))
		return err
	}
	if b.Degraded {
		fmt.Fprintf(os.Stderr, "⚠ Website could not be fetched (%v); brochure is based on no page content\n", b.FetchErr)
	}

	data, err := renderer.Render(b)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if flagStdout {
		_, err := os.Stdout.Write(data)
		return err
	}

	writer, err := output.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}
	path, err := writer.Write(output.BrochureFilename(name, renderer.Extension()), data)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Written: %s\n", path)
	return nil
}

// selectRenderer creates the Renderer chosen by the format flags.
func selectRenderer() (core.Renderer, error) {
	formatCount := 0
	for _, set := range []bool{flagPDF, flagMarkdown, flagJSON} {
		if set {
			formatCount++
		}
	}
	if formatCount > 1 {
		return nil, fmt.Errorf("only one output format allowed per run (got %d)", formatCount)
	}

	switch {
	case flagPDF:
		return render.NewPDFRenderer(), nil
	case flagJSON:
		return render.NewJSONRenderer(), nil
	default:
		return render.NewMarkdownRenderer(), nil
	}
}
