// Package cmd — serve command.
// Runs the single-page brochure form.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/brochuregen/config"
	"github.com/gaurav-prasanna/brochuregen/core/brochure"
	"github.com/gaurav-prasanna/brochuregen/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive brochure form",
	Long: `Serve starts an HTTP server with a form that takes an API key, a company
name and a website URL, shows the generated brochure and offers it as a
Markdown download.

Examples:
  brochuregen serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8080)")

	mustBind(config.KeyServerAddr, serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	gin.SetMode(gin.ReleaseMode)

	factory := func(apiKey string) (*brochure.Generator, error) {
		bc := cfg.Brochure()
		if apiKey != "" {
			bc.LLM.APIKey = apiKey
		}
		return brochure.NewFromConfig(bc, logger)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(factory, cfg.OpenAI.APIKey != "", logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("Serving brochure form")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info().Msg("Shutting down")
	return srv.Shutdown(ctx)
}
