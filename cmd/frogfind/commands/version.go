package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/frogfind/internal/output"
	"github.com/jmylchreest/frogfind/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := formatFlag(cmd, output.FormatText)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			format = output.FormatJSON
		}
		if format == output.FormatText {
			fmt.Println(version.Full())
			return nil
		}
		return output.Encode(os.Stdout, format, version.Get())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("json", false, "print as JSON (same as --format json)")
	versionCmd.Flags().StringP("format", "f", "text", "output format: text, json, yaml")
}
