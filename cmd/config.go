// Package cmd — config command.
// Prints the settings every other command would run with.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Config resolves defaults, the YAML file, .env, environment variables and
flags, then prints the result as YAML. The API key is masked.

Examples:
  brochuregen config
  OPENAI_API_KEY=sk-... brochuregen config --log-level debug`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
