package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type testItem struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSONL", FormatJSONL, false},
		{" yaml ", FormatYAML, false},
		{"text", FormatText, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewWriter_Unsupported(t *testing.T) {
	for _, f := range []Format{FormatText, Format("csv")} {
		if _, err := NewWriter(&bytes.Buffer{}, f); err == nil {
			t.Errorf("NewWriter(%q) expected error", f)
		}
	}
}

func TestJSON_SingleValueIsNotWrapped(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := Encode(buf, FormatJSON, testItem{Name: "frog", Value: 1}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var got testItem
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not a single object: %v\n%s", err, buf.String())
	}
	if got.Name != "frog" || got.Value != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestJSON_MultipleValuesFormArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	_ = w.Write(testItem{Name: "a", Value: 1})
	_ = w.Write(testItem{Name: "b", Value: 2})
	if buf.Len() != 0 {
		t.Error("json output should be buffered until Flush")
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var got []testItem
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not an array: %v", err)
	}
	if len(got) != 2 || got[1].Name != "b" {
		t.Errorf("got %+v", got)
	}
}

func TestJSONL_StreamsLines(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatJSONL)
	if err != nil {
		t.Fatal(err)
	}
	_ = w.Write(testItem{Name: "a", Value: 1})
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("jsonl should write each value immediately")
	}
	_ = w.Write(testItem{Name: "b", Value: 2})
	_ = w.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0] != `{"name":"a","value":1}` {
		t.Errorf("line 0 = %q", lines[0])
	}
}

func TestYAML(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := Encode(buf, FormatYAML, testItem{Name: "toad", Value: 3}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var got testItem
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if got.Name != "toad" || got.Value != 3 {
		t.Errorf("got %+v", got)
	}
}

func TestYAML_MultipleValuesFormSequence(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatYAML)
	_ = w.Write(testItem{Name: "a"})
	_ = w.Write(testItem{Name: "b"})
	_ = w.Flush()

	if !strings.HasPrefix(buf.String(), "- name: a") {
		t.Errorf("output = %q", buf.String())
	}
}
