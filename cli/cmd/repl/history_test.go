package repl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:v.x = 1", HistoryEntry{"v.x = 1", modeEval}},
		{"C:vars", HistoryEntry{"vars", modeCtrl}},
		{"math.sin(90)", HistoryEntry{"math.sin(90)", modeEval}},
	}

	for _, tt := range tests {
		if got := parseEntry(tt.line); got != tt.want {
			t.Errorf("parseEntry(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestHistory_AddAndPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), HistoryFile)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}

	for _, add := range []HistoryEntry{
		{"v.x = 1", modeEval},
		{"vars", modeCtrl},
		{"  ", modeEval},
		{"v.x + 1", modeEval},
		{"v.x + 1", modeEval},
	} {
		if err := h.Add(add.Line, add.Mode); err != nil {
			t.Fatalf("Add(%q): %v", add.Line, err)
		}
	}

	want := []HistoryEntry{
		{"v.x = 1", modeEval},
		{"vars", modeCtrl},
		{"v.x + 1", modeEval},
	}

	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(data); got != "E:v.x = 1\nC:vars\nE:v.x + 1\n" {
		t.Errorf("history file = %q", got)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want, reloaded.Entries()); diff != "" {
		t.Errorf("reloaded mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_DuplicateMovesToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), HistoryFile)
	h := NewHistory(path)

	for _, line := range []string{"1", "2", "3", "1"} {
		if err := h.Add(line, modeEval); err != nil {
			t.Fatal(err)
		}
	}

	// The same line in the other mode is a distinct entry.
	if err := h.Add("2", modeCtrl); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{{"2", modeEval}, {"3", modeEval}, {"1", modeEval}, {"2", modeCtrl}}
	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(data); got != "E:2\nE:3\nE:1\nC:2\n" {
		t.Errorf("history file = %q", got)
	}
}

func TestHistory_Entry(t *testing.T) {
	h := NewHistory("")

	if err := h.Add("pi", modeEval); err != nil {
		t.Fatal(err)
	}

	if e, err := h.Entry(0); err != nil || e.Line != "pi" {
		t.Errorf("Entry(0) = %+v, %v", e, err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d) error = %v, want ErrOutOfBounds", i, err)
		}
	}
}
