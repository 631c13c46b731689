package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/jmylchreest/frogfind/internal/config"
	"github.com/jmylchreest/frogfind/internal/output"
	"github.com/jmylchreest/frogfind/pkg/compat"
	"github.com/jmylchreest/frogfind/pkg/search"
)

func defaultConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load(viper.New())
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func TestNewPipeline_Static(t *testing.T) {
	p, err := newPipeline(defaultConfig(t))
	if err != nil {
		t.Fatalf("newPipeline() error = %v", err)
	}
	defer p.Close()

	if p.articles == nil || p.search == nil {
		t.Fatal("pipeline is missing collaborators")
	}
	if len(p.fetchers) != 1 || p.fetchers[0].Type() != "static" {
		t.Errorf("fetchers = %v", p.fetchers)
	}
	if p.articles.Cache().TTL() != defaultConfig(t).Cache.TTL {
		t.Errorf("cache TTL = %v", p.articles.Cache().TTL())
	}
}

func TestNewPipeline_UnknownMode(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Fetch.Mode = "carrier-pigeon"

	_, err := newPipeline(cfg)
	if err == nil || !strings.Contains(err.Error(), "unknown fetch mode") {
		t.Errorf("newPipeline() error = %v", err)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"serve": false, "read": false, "search": false, "config": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestWriteResults(t *testing.T) {
	results := []search.Result{
		{Title: "Frog", Snippet: "Amphibian.", URL: "https://en.example/frog"},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeResults(&buf, output.FormatText, results, compat.Params{Mode: "retro"}); err != nil {
			t.Fatal(err)
		}
		want := "1. Frog\n   https://en.example/frog\n   /read?url=https%3A%2F%2Fen.example%2Ffrog&mode=retro\n   Amphibian.\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})

	t.Run("text empty", func(t *testing.T) {
		var buf bytes.Buffer
		_ = writeResults(&buf, output.FormatText, nil, compat.Params{})
		if buf.String() != "No results.\n" {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("json is always an array", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeResults(&buf, output.FormatJSON, results, compat.Params{}); err != nil {
			t.Fatal(err)
		}
		var got []search.Result
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("not an array: %v\n%s", err, buf.String())
		}
		if len(got) != 1 || got[0].URL != "https://en.example/frog" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("json empty", func(t *testing.T) {
		var buf bytes.Buffer
		_ = writeResults(&buf, output.FormatJSON, nil, compat.Params{})
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("jsonl", func(t *testing.T) {
		var buf bytes.Buffer
		_ = writeResults(&buf, output.FormatJSONL, append(results, results...), compat.Params{})
		if n := strings.Count(buf.String(), "\n"); n != 2 {
			t.Errorf("lines = %d, want 2", n)
		}
	})
}
