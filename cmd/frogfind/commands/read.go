package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/frogfind/pkg/compat"
	"github.com/jmylchreest/frogfind/pkg/page"
	"github.com/jmylchreest/frogfind/pkg/render"
)

var readCmd = &cobra.Command{
	Use:   "read <url>",
	Short: "Render one page to stdout",
	Long: `Run a single page through the read pipeline and print the composed
document, exactly as the server would send it.

Examples:
  frogfind read https://example.com/
  frogfind read https://example.com/ --mode ultra_retro
  frogfind read https://example.com/ --mode wap --fragment
  frogfind read https://example.com/ --markdown`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)

	flags := readCmd.Flags()
	flags.String("mode", "modern", "tier: modern, retro, ultra_retro, wap")
	flags.Bool("dark", false, "use the dark palette")
	flags.Bool("fragment", false, "print only the rendered article body")
	flags.Bool("markdown", false, "print the article as Markdown (implies --mode modern)")
}

func runRead(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mode, _ := cmd.Flags().GetString("mode")
	if _, ok := compat.ParseTier(mode); !ok {
		return fmt.Errorf("unknown mode: %s", mode)
	}
	dark, _ := cmd.Flags().GetBool("dark")
	fragment, _ := cmd.Flags().GetBool("fragment")
	markdown, _ := cmd.Flags().GetBool("markdown")
	if markdown {
		mode = compat.Modern.String()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	darkParam := ""
	if dark {
		darkParam = "1"
	}
	rc := compat.NewRequestContext("", mode, darkParam)
	a := p.articles.FetchAndRender(ctx, args[0], rc.Tier, rc.Params)

	var out string
	switch {
	case markdown:
		md, err := render.Markdown(a.Body)
		if err != nil {
			return err
		}
		out = "# " + a.Title + "\n\n" + md
	case fragment:
		out = a.Body
	default:
		out = page.Compose(page.ArticlePage(rc, a)).Body
	}
	if _, err := fmt.Fprintln(os.Stdout, out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if a.IsError {
		return fmt.Errorf("could not read %s", args[0])
	}
	return nil
}
