package extractor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmylchreest/frogfind/internal/logger"
)

// ErrNoExtractorAvailable is returned when the fallback chain is empty.
var ErrNoExtractorAvailable = errors.New("no extractor available")

// FallbackExtractor tries each extractor in order until one succeeds.
type FallbackExtractor struct {
	extractors []Extractor
}

// NewFallback creates a fallback chain from the given extractors.
func NewFallback(extractors ...Extractor) *FallbackExtractor {
	return &FallbackExtractor{
		extractors: extractors,
	}
}

// Extract tries each extractor in order until one succeeds.
func (f *FallbackExtractor) Extract(pageHTML, pageURL string) (*Result, error) {
	if len(f.extractors) == 0 {
		return nil, ErrNoExtractorAvailable
	}

	var lastErr error
	var tried []string
	for _, ext := range f.extractors {
		tried = append(tried, ext.Name())
		result, err := ext.Extract(pageHTML, pageURL)
		if err == nil && result == nil {
			err = ErrNoContent
		}
		if err == nil {
			return result, nil
		}
		logger.Debug("extractor failed", "extractor", ext.Name(), "url", pageURL, "error", err)
		lastErr = err
	}

	return nil, fmt.Errorf("all extractors failed (tried: %s): %w", strings.Join(tried, ", "), lastErr)
}

// Name returns the fallback chain name.
func (f *FallbackExtractor) Name() string {
	names := make([]string, len(f.extractors))
	for i, ext := range f.extractors {
		names[i] = ext.Name()
	}
	return "fallback(" + strings.Join(names, ",") + ")"
}
