package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/frogfind/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging defaults, the config file,
FROGFIND_* environment variables and flags. The default YAML output is a
valid .frogfind.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := formatFlag(cmd, output.FormatYAML)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return output.Encode(os.Stdout, format, cfg.Document())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringP("format", "f", "yaml", "output format: json, yaml")
}
