package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
)

// HistoryFile is the name of the history file in the cache directory.
const HistoryFile = "history.utf8"

// HistoryEntry is a submitted line and the mode it was submitted in.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

// prefix tags each line of the history file with its mode.
func (m inputMode) prefix() string {
	if m == modeCtrl {
		return "C:"
	}

	return "E:"
}

func parseEntry(line string) HistoryEntry {
	if s, ok := strings.CutPrefix(line, modeCtrl.prefix()); ok {
		return HistoryEntry{Line: s, Mode: modeCtrl}
	}

	// Untagged lines are expressions.
	s, _ := strings.CutPrefix(line, modeEval.prefix())

	return HistoryEntry{Line: s, Mode: modeEval}
}

// History is the line history of a REPL session, persisted to a file. An
// empty path keeps the history in memory only.
type History struct {
	path    string
	entries []HistoryEntry
	mu      sync.RWMutex
}

// NewHistory creates a History backed by the file at path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with those read from the history file. A
// missing file is an empty history.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	file, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}
	defer file.Close()

	h.entries = h.entries[:0]

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			h.entries = append(h.entries, parseEntry(line))
		}
	}

	return scanner.Err()
}

// Add appends line to the history. An earlier identical entry of the same
// mode is moved to the end rather than repeated.
func (h *History) Add(line string, mode inputMode) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	entry := HistoryEntry{Line: line, Mode: mode}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return nil
	}

	i := slices.Index(h.entries, entry)
	if i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
	}

	h.entries = append(h.entries, entry)

	if i >= 0 {
		return h.rewrite()
	}

	return h.append(entry)
}

// Entry returns the entry at index i; index 0 is the oldest.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of history entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all history entries.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// append writes entry to the end of the history file.
// Must be called with h.mu held.
func (h *History) append(entry HistoryEntry) error {
	if h.path == "" {
		return nil
	}

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(entry.Mode.prefix() + entry.Line + "\n")

	return err
}

// rewrite replaces the history file with the current entries.
// Must be called with h.mu held.
func (h *History) rewrite() error {
	if h.path == "" {
		return nil
	}

	var sb strings.Builder
	for _, e := range h.entries {
		sb.WriteString(e.Mode.prefix() + e.Line + "\n")
	}

	return os.WriteFile(h.path, []byte(sb.String()), 0o600)
}
