package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type recordTable [][]string

func (t recordTable) Header() []string { return []string{"ID", "TITLE", "STATUS"} }
func (t recordTable) Rows() [][]string { return t }

func TestTextFormatter(t *testing.T) {
	t.Run("plain value", func(t *testing.T) {
		out, err := (&TextFormatter{}).Format("backend warm")
		if err != nil {
			t.Fatal(err)
		}
		if string(out) != "backend warm\n" {
			t.Errorf("Format() = %q", out)
		}
	})

	t.Run("table is aligned", func(t *testing.T) {
		buf := &bytes.Buffer{}
		table := recordTable{{"1", "lease.pdf", "analyzed"}, {"22", "a.pdf vs b.pdf", "failed"}}

		if err := (&TextFormatter{}).FormatTo(buf, table); err != nil {
			t.Fatal(err)
		}

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		if len(lines) != 3 {
			t.Fatalf("lines = %d, want 3: %q", len(lines), buf.String())
		}
		col := strings.Index(lines[0], "STATUS")
		if strings.Index(lines[1], "analyzed") != col || strings.Index(lines[2], "failed") != col {
			t.Errorf("STATUS column not aligned:\n%s", buf.String())
		}
	})
}

func TestJSONFormatter(t *testing.T) {
	data := map[string]any{"warm": true, "attempts": 2}

	for _, indent := range []bool{false, true} {
		out, err := (&JSONFormatter{Indent: indent}).Format(data)
		if err != nil {
			t.Fatal(err)
		}
		var got map[string]any
		if err := json.Unmarshal(out, &got); err != nil {
			t.Fatalf("invalid JSON %q: %v", out, err)
		}
		if got["warm"] != true {
			t.Errorf("warm = %v", got["warm"])
		}
		if indent != strings.Contains(string(out), "\n  ") {
			t.Errorf("indent=%v output %q", indent, out)
		}
	}
}

func TestCSVFormatter(t *testing.T) {
	table := recordTable{{"1", "a, b.pdf", "analyzed"}}

	out, err := (&CSVFormatter{}).Format(table)
	if err != nil {
		t.Fatal(err)
	}
	want := "ID,TITLE,STATUS\n1,\"a, b.pdf\",analyzed\n"
	if string(out) != want {
		t.Errorf("Format() = %q, want %q", out, want)
	}

	if _, err := (&CSVFormatter{}).Format("not a table"); err == nil {
		t.Error("expected error for non-table data")
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := map[string]OutputFormat{"": FormatText, "text": FormatText, "JSON": FormatJSON, "csv": FormatCSV}
	for in, want := range tests {
		got, err := ParseOutputFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseOutputFormat("junit"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("FormatJSON should give *JSONFormatter")
	}
	if _, ok := NewFormatter(FormatCSV).(*CSVFormatter); !ok {
		t.Error("FormatCSV should give *CSVFormatter")
	}
	if _, ok := NewFormatter("other").(*TextFormatter); !ok {
		t.Error("unknown format should give *TextFormatter")
	}
}
