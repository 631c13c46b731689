package sanitizer

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Stats captures what the sanitizer did to one document.
type Stats struct {
	InputBytes int `json:"input_bytes"`

	// Element counts
	ElementsRemoved map[string]int `json:"elements_removed"` // tag -> count
	ElementsKept    int            `json:"elements_kept"`

	AdRemovals           int `json:"ad_removals"`
	EmptyElementRemovals int `json:"empty_element_removals"`
	EmptyPasses          int `json:"empty_passes"`
	LinksRewritten       int `json:"links_rewritten"`
	LinksDropped         int `json:"links_dropped"`
	ImagesReplaced       int `json:"images_replaced"`
	AttributesRemoved    int `json:"attributes_removed"`

	// Timing
	ParseDuration     time.Duration `json:"parse_duration_ms"`
	TransformDuration time.Duration `json:"transform_duration_ms"`
	TotalDuration     time.Duration `json:"total_duration_ms"`
}

// NewStats creates a new Stats instance with initialized maps.
func NewStats() *Stats {
	return &Stats{
		ElementsRemoved: make(map[string]int),
	}
}

// TotalElementsRemoved returns the sum of all removed elements.
func (s *Stats) TotalElementsRemoved() int {
	total := 0
	for _, count := range s.ElementsRemoved {
		total += count
	}
	return total
}

// RecordRemoval records that an element was removed.
func (s *Stats) RecordRemoval(tag string) {
	s.ElementsRemoved[strings.ToLower(tag)]++
}

// LogValue groups the counters for structured logging. Only non-zero step
// counters are included.
func (s *Stats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("input_bytes", s.InputBytes),
		slog.Int("removed", s.TotalElementsRemoved()),
		slog.Int("kept", s.ElementsKept),
	}
	if len(s.ElementsRemoved) > 0 {
		tags := make([]string, 0, len(s.ElementsRemoved))
		for tag := range s.ElementsRemoved {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		parts := make([]string, 0, len(tags))
		for _, tag := range tags {
			parts = append(parts, fmt.Sprintf("%s=%d", tag, s.ElementsRemoved[tag]))
		}
		attrs = append(attrs, slog.String("by_tag", strings.Join(parts, ",")))
	}
	for _, c := range []struct {
		key string
		n   int
	}{
		{"ads", s.AdRemovals},
		{"empty", s.EmptyElementRemovals},
		{"links_rewritten", s.LinksRewritten},
		{"links_dropped", s.LinksDropped},
		{"images", s.ImagesReplaced},
		{"attributes", s.AttributesRemoved},
	} {
		if c.n > 0 {
			attrs = append(attrs, slog.Int(c.key, c.n))
		}
	}
	attrs = append(attrs,
		slog.Duration("parse", s.ParseDuration),
		slog.Duration("transform", s.TransformDuration),
	)
	return slog.GroupValue(attrs...)
}

// Warning represents a non-fatal issue encountered during sanitising.
type Warning struct {
	Phase   string `json:"phase"`
	Message string `json:"message"`
	Context string `json:"context"`
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result contains the output of a sanitise operation.
type Result struct {
	// Document is the sanitised tree. It is never nil.
	Document *Document `json:"-"`

	Stats    *Stats    `json:"stats"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
