package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/frogfind/internal/logger"
	"github.com/jmylchreest/frogfind/internal/metrics"
	"github.com/jmylchreest/frogfind/internal/server"
	"github.com/jmylchreest/frogfind/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the FrogFind HTTP proxy",
	Long: `Serve the landing page, search and read endpoints.

Examples:
  frogfind serve --addr :8080
  FROGFIND_FETCH_MODE=dynamic frogfind serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.String("addr", ":5000", "listen address")
	flags.Duration("cache-ttl", 15*time.Minute, "how long rendered articles are cached")
	flags.Int("cache-max-entries", 0, "max cached articles (0=unlimited)")
	flags.String("fetch-mode", "static", "fetch mode: static, dynamic")
	flags.Duration("timeout", 10*time.Second, "upstream fetch timeout")
	flags.String("max-body-size", "5MB", "max upstream page size (e.g., 512KB, 5MB, 0=unlimited)")

	_ = viper.BindPFlag("server.addr", flags.Lookup("addr"))
	_ = viper.BindPFlag("cache.ttl", flags.Lookup("cache-ttl"))
	_ = viper.BindPFlag("cache.max_entries", flags.Lookup("cache-max-entries"))
	_ = viper.BindPFlag("fetch.mode", flags.Lookup("fetch-mode"))
	_ = viper.BindPFlag("fetch.timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("fetch.max_body_size", flags.Lookup("max-body-size"))
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p, err := newPipeline(cfg)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		return err
	}
	defer p.Close()

	metrics.Init()
	go pruneCache(ctx, p, cfg.Cache.TTL)

	logger.Info("frogfind starting", append([]any{"version", version.String()}, cfg.Summary()...)...)
	return server.New(p.articles, p.search).ListenAndServe(ctx, cfg.Server)
}

// pruneCache drops expired articles once per TTL so idle entries do not
// accumulate.
func pruneCache(ctx context.Context, p *pipeline, ttl time.Duration) {
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := p.articles.Cache().Prune()
			metrics.ObserveCacheSize(p.articles.Cache().Len())
			if removed > 0 {
				logger.Debug("pruned article cache", "removed", removed)
			}
		}
	}
}
