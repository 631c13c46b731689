package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/frogfind/internal/output"
	"github.com/jmylchreest/frogfind/pkg/compat"
	"github.com/jmylchreest/frogfind/pkg/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Query the search backend and print the results",
	Long: `Run a query against the configured search backend. Text output lists
each result with the proxied read link the landing page would offer.

Examples:
  frogfind search "tree frogs"
  frogfind search "tree frogs" --format jsonl
  frogfind search "tree frogs" --mode retro`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	flags := searchCmd.Flags()
	flags.StringP("format", "f", "text", "output format: text, json, jsonl, yaml")
	flags.String("mode", "", "tier carried on the read links in text output")
}

func runSearch(cmd *cobra.Command, args []string) error {
	format, err := formatFlag(cmd, output.FormatText)
	if err != nil {
		return err
	}
	mode, _ := cmd.Flags().GetString("mode")
	if _, ok := compat.ParseTier(mode); mode != "" && !ok {
		return fmt.Errorf("unknown mode: %s", mode)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	results, err := p.search.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	return writeResults(os.Stdout, format, results, compat.Params{Mode: mode})
}

func writeResults(w io.Writer, format output.Format, results []search.Result, params compat.Params) error {
	switch format {
	case output.FormatText:
	case output.FormatJSONL:
		ow, err := output.NewWriter(w, format)
		if err != nil {
			return err
		}
		for _, r := range results {
			if err := ow.Write(r); err != nil {
				return err
			}
		}
		return ow.Flush()
	default:
		if results == nil {
			results = []search.Result{}
		}
		return output.Encode(w, format, results)
	}

	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	for i, r := range results {
		if _, err := fmt.Fprintf(w, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.URL, compat.ReadURL(r.URL, params)); err != nil {
			return err
		}
		if r.Snippet != "" {
			if _, err := fmt.Fprintf(w, "   %s\n", r.Snippet); err != nil {
				return err
			}
		}
	}
	return nil
}

// formatFlag reads --format, defaulting to def when unset.
func formatFlag(cmd *cobra.Command, def output.Format) (output.Format, error) {
	raw, _ := cmd.Flags().GetString("format")
	if raw == "" {
		return def, nil
	}
	return output.ParseFormat(raw)
}
