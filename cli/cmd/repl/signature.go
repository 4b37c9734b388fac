package repl

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/molang/lang"
)

// mathParams names the parameters of the math library functions. Easing
// functions share easeParams.
var mathParams = map[string][]string{
	"abs":              {"value"},
	"acos":             {"value"},
	"asin":             {"value"},
	"atan":             {"value"},
	"atan2":            {"y", "x"},
	"ceil":             {"value"},
	"clamp":            {"value", "min", "max"},
	"cos":              {"degrees"},
	"die_roll":         {"count", "low", "high"},
	"die_roll_integer": {"count", "low", "high"},
	"exp":              {"value"},
	"floor":            {"value"},
	"hermite_blend":    {"t"},
	"lerp":             {"start", "end", "t"},
	"lerprotate":       {"start", "end", "t"},
	"ln":               {"value"},
	"max":              {"...values"},
	"min":              {"...values"},
	"min_angle":        {"degrees"},
	"mod":              {"value", "denominator"},
	"pi":               {},
	"pow":              {"base", "exponent"},
	"random":           {"low", "high"},
	"random_integer":   {"low", "high"},
	"round":            {"value"},
	"sin":              {"degrees"},
	"sqrt":             {"value"},
	"trunc":            {"value"},
}

var easeParams = []string{"start", "end", "t"}

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // qualified function name (e.g., "math.clamp")
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall reports the innermost call whose argument list
// contains the cursor, and which argument the cursor is in.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	open := unmatchedParen(input[:cursor])
	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && r != '_' && !isAlnum(r) {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" || strings.HasPrefix(name, ".") {
		return functionCall{}
	}

	// Count commas at depth 0 in the argument list.
	arg, depth := 0, 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				arg++
			}
		}
	}

	return functionCall{name: name, argIndex: arg, inCall: true}
}

// unmatchedParen returns the byte offset of the last '(' in s without a
// closing ')', or -1.
func unmatchedParen(s string) int {
	depth := 0

	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				return i
			}

			depth--
		}
	}

	return -1
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// signature returns the display signature of the function called as name
// and its parameter names, or "" if name is not callable.
func (m model) signature(name string) (string, []string) {
	qual, fname, dotted := strings.Cut(name, ".")
	if !dotted {
		qual, fname = "", name
	}

	fn, ok := m.function(qual, fname)
	if !ok {
		return "", nil
	}

	var params []string

	switch named, isMath := mathParams[fname]; {
	case isMath && len(named) == fn.Arity || (isMath && fn.Arity == lang.Variadic):
		params = named
	case strings.HasPrefix(fname, "ease_") && fn.Arity == len(easeParams):
		params = easeParams
	case fn.Arity == lang.Variadic:
		params = []string{"...args"}
	default:
		for i := range fn.Arity {
			params = append(params, "arg"+strconv.Itoa(i+1))
		}
	}

	return name + "(" + strings.Join(params, ", ") + ")", params
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	open := strings.Index(signature, "(")
	if open == -1 {
		return signatureStyle.Render(signature)
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(signature[:open]))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		// A variadic parameter stays current for every later argument.
		current := currentArgIdx == i ||
			(strings.HasPrefix(param, "...") && currentArgIdx >= i)

		if current {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
