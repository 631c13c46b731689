// Package output writes structured command results as JSON, JSON lines or
// YAML.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format represents output format types.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Formats lists the structured formats accepted by NewWriter.
var Formats = []Format{FormatJSON, FormatJSONL, FormatYAML}

// ParseFormat maps a flag value to a Format. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatText, FormatJSON, FormatJSONL, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// Writer buffers or streams values in one format.
type Writer interface {
	// Write outputs a single value.
	Write(v any) error

	// Flush ensures all data is written.
	Flush() error
}

// NewWriter creates a writer for the specified structured format. FormatText
// is rendered by the caller and has no writer.
func NewWriter(w io.Writer, format Format) (Writer, error) {
	switch format {
	case FormatJSON:
		return &jsonWriter{w: bufio.NewWriter(w)}, nil
	case FormatJSONL:
		return &jsonlWriter{w: bufio.NewWriter(w)}, nil
	case FormatYAML:
		return &yamlWriter{w: bufio.NewWriter(w)}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Encode writes a single value in format and flushes.
func Encode(w io.Writer, format Format, v any) error {
	ow, err := NewWriter(w, format)
	if err != nil {
		return err
	}
	if err := ow.Write(v); err != nil {
		return err
	}
	return ow.Flush()
}

// jsonWriter emits one indented document: the value itself when exactly one
// was written, an array otherwise.
type jsonWriter struct {
	w     *bufio.Writer
	items []any
}

func (w *jsonWriter) Write(v any) error {
	w.items = append(w.items, v)
	return nil
}

func (w *jsonWriter) Flush() error {
	var doc any = w.items
	if len(w.items) == 1 {
		doc = w.items[0]
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	w.items = w.items[:0]
	if _, err := w.w.Write(append(out, '\n')); err != nil {
		return err
	}
	return w.w.Flush()
}

// jsonlWriter streams one compact JSON value per line.
type jsonlWriter struct {
	w *bufio.Writer
}

func (w *jsonlWriter) Write(v any) error {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if _, err := w.w.Write(append(out, '\n')); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *jsonlWriter) Flush() error {
	return w.w.Flush()
}

type yamlWriter struct {
	w     *bufio.Writer
	items []any
}

func (w *yamlWriter) Write(v any) error {
	w.items = append(w.items, v)
	return nil
}

func (w *yamlWriter) Flush() error {
	var doc any = w.items
	if len(w.items) == 1 {
		doc = w.items[0]
	}
	enc := yaml.NewEncoder(w.w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	w.items = w.items[:0]
	return w.w.Flush()
}
