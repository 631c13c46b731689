package commands

import (
	"fmt"

	"github.com/jmylchreest/frogfind/internal/config"
	"github.com/jmylchreest/frogfind/internal/logger"
	"github.com/jmylchreest/frogfind/pkg/article"
	"github.com/jmylchreest/frogfind/pkg/extractor"
	"github.com/jmylchreest/frogfind/pkg/fetcher"
	"github.com/jmylchreest/frogfind/pkg/sanitizer"
	"github.com/jmylchreest/frogfind/pkg/search"
)

// pipeline holds the collaborators shared by serve and read.
type pipeline struct {
	articles *article.Service
	search   *search.Client
	fetchers []fetcher.Fetcher
}

// Close releases every fetcher.
func (p *pipeline) Close() {
	for _, f := range p.fetchers {
		if err := f.Close(); err != nil {
			logger.Debug("fetcher close failed", "type", f.Type(), "error", err)
		}
	}
}

// newPipeline builds the article service and search client from cfg.
// Search always uses a plain HTTP fetch; articles follow fetch.mode.
func newPipeline(cfg config.Config) (*pipeline, error) {
	static := fetcher.NewStatic(fetcher.StaticConfig{
		UserAgent:   cfg.Fetch.UserAgent,
		Timeout:     cfg.Fetch.Timeout,
		MaxBodySize: cfg.Fetch.MaxBodyBytes(),
	})
	p := &pipeline{fetchers: []fetcher.Fetcher{static}}

	var pageFetcher fetcher.Fetcher = static
	switch cfg.Fetch.Mode {
	case "dynamic":
		dynamic, err := fetcher.NewDynamic(fetcher.DynamicConfig{
			UserAgent:    cfg.Fetch.UserAgent,
			Timeout:      cfg.Fetch.Timeout,
			WaitDuration: cfg.Fetch.WaitDuration,
		})
		if err != nil {
			return nil, fmt.Errorf("create dynamic fetcher: %w", err)
		}
		p.fetchers = append(p.fetchers, dynamic)
		pageFetcher = dynamic
	case "static", "":
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s (use 'static' or 'dynamic')", cfg.Fetch.Mode)
	}

	sanCfg := sanitizer.DefaultConfig()
	sanCfg.Debug = cfg.Log.Debug
	san := sanitizer.New(sanCfg)
	ext := extractor.Default()
	p.articles = article.NewService(
		article.NewCache(cfg.Cache.TTL, cfg.Cache.MaxEntries),
		pageFetcher,
		ext,
		san,
		article.Options{UserAgent: cfg.Fetch.UserAgent, Timeout: cfg.Fetch.Timeout},
	)
	p.search = search.New(static, search.Config{
		Endpoint:  cfg.Search.Endpoint,
		UserAgent: cfg.Search.UserAgent,
		Timeout:   cfg.Search.Timeout,
	})

	logger.Debug("pipeline ready",
		"fetcher", pageFetcher.Type(),
		"extractor", ext.Name(),
		"sanitizer", san.Name())
	return p, nil
}
