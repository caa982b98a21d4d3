package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weizlogy/desktop-grouping/internal/output"
	"github.com/weizlogy/desktop-grouping/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "desktop-grouping",
	Short: "Group desktop icons into translucent containers",
	Long: "Pin semi-transparent group windows behind the desktop icons and drop\n" +
		"files into them. Each group persists to its own JSON file and is\n" +
		"restored on the next run.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().String("config-dir", "", "Settings directory (default: per-user config dir)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config file)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		switch format {
		case "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		default:
			return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
		}
		pretty, _ := rootCmd.PersistentFlags().GetBool("pretty")
		output.PrettyOutput = pretty
		return nil
	}
}
