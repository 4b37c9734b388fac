package repl

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/molang/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "vars", "reset", "edit", "clear", "quit"}

// keywords are the reserved words offered at the start of a term.
var keywords = []string{"this", "return", "loop", "for_each", "break", "continue"}

// scopePrefixes are the long and short scope qualifiers.
var scopePrefixes = func() []string {
	var names []string

	for _, s := range []lang.Scope{
		lang.ScopeQuery, lang.ScopeContext, lang.ScopeVariable,
		lang.ScopeTemp, lang.ScopeMath,
	} {
		names = append(names, s.String(), s.Short())
	}

	return names
}()

// isWordBoundary reports whether r delimits a completion word: whitespace,
// the member-access dot, and Molang operators and punctuation.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';',
		'\'', '"':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input. The word is empty when the cursor sits on a
// boundary (after a space, after a dot, start of line, etc.).
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// qualifier returns the identifier immediately before the dot that precedes
// the word starting at wordStart. For "1 + v.sp" with the word "sp" it
// returns "v". It returns "" when the word is not member-accessed.
func qualifier(input string, wordStart int) string {
	if wordStart == 0 || input[wordStart-1] != '.' {
		return ""
	}

	end := wordStart - 1
	start := end

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	return input[start:end]
}

// candidates returns the completions valid after the given qualifier. The
// empty qualifier offers scope prefixes, keywords and query functions.
func (m model) candidates(qual string) []string {
	if qual == "" {
		names := slices.Concat(scopePrefixes, keywords, m.userQueries())
		slices.Sort(names)

		return slices.Compact(names)
	}

	scope, ok := lang.ParseScope(qual)
	if !ok {
		return nil
	}

	switch scope {
	case lang.ScopeMath:
		return mathNames
	case lang.ScopeQuery:
		return m.env.Query.Names()
	case lang.ScopeContext:
		return slices.Sorted(maps.Keys(m.env.Context))
	case lang.ScopeVariable:
		return slices.Sorted(maps.Keys(m.env.Variable))
	case lang.ScopeTemp:
		return slices.Sorted(maps.Keys(m.env.Temp))
	default:
		return nil
	}
}

// mathNames are the sorted names of the math library.
var mathNames = lang.MathFunctions().Names()

// userQueries returns the query functions that are not part of the math
// library.
func (m model) userQueries() []string {
	var names []string

	for _, name := range m.env.Query.Names() {
		if _, ok := mathLibrary[name]; !ok {
			names = append(names, name)
		}
	}

	return names
}

var mathLibrary = lang.MathFunctions()

// function returns the native function a completion names after qual.
func (m model) function(qual, name string) (lang.Function, bool) {
	scope, ok := lang.ParseScope(qual)

	switch {
	case qual == "":
		fn, ok := m.env.Query[name]

		return fn, ok
	case !ok:
		return lang.Function{}, false
	case scope == lang.ScopeMath:
		fn, ok := mathLibrary[name]

		return fn, ok
	case scope == lang.ScopeQuery:
		fn, ok := m.env.Query[name]

		return fn, ok
	default:
		return lang.Function{}, false
	}
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor, ranked best-first, with the word boundaries and its qualifier.
// An empty word offers every member of a scope after a dot and nothing
// elsewhere, which leaves the hint line visible.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	qual string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	var candidates []string

	if m.mode == modeCtrl {
		if word == "" || strings.ContainsRune(input[:wordStart], ' ') {
			return nil, "", wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		qual = qualifier(input, wordStart)
		candidates = m.candidates(qual)

		if word == "" {
			if qual == "" || len(candidates) == 0 {
				return nil, qual, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, qual, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, qual, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), qual, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to
// fit within width. Candidates for which isFunc holds carry a "()" suffix.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	isFunc func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx, isFunc != nil && isFunc(match.Str))

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		last := i == len(matches)-1

		// Reserve room for the ellipsis unless this is the final candidate.
		if i > 0 && used+entryWidth+ellipsisWidth > width && !(last && used+entryWidth <= width) {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if function {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
