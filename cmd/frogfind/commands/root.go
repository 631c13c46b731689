// Package commands implements the CLI commands for frogfind.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/frogfind/internal/config"
	"github.com/jmylchreest/frogfind/internal/logger"
	"github.com/jmylchreest/frogfind/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "frogfind",
	Short: "Read the modern web on old browsers and WAP phones",
	Long: `FrogFind fetches web pages, strips them down to their readable content
and serves them in a form old desktop browsers and WAP phones can display.

Examples:
  # Run the proxy on port 5000
  frogfind serve

  # Render one page for a WAP phone to stdout
  frogfind read https://example.com/ --mode wap

  # Search and print the proxied links
  frogfind search "tree frogs"

  # Show the effective configuration
  frogfind config`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var cfgFile string

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.frogfind.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON")

	_ = viper.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("log.quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	if err := config.Configure(viper.GetViper(), cfgFile); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// loadConfig validates the merged configuration and sets up logging.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, err
	}
	logger.Init(logger.Options{
		Debug: cfg.Log.Debug,
		Quiet: cfg.Log.Quiet,
		JSON:  cfg.Log.JSON,
	})
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", "path", used)
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logError("%v", err)
	}
	return err
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
