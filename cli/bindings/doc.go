// Package bindings loads host bindings for Molang scripts from files and
// command-line assignments.
//
// A bindings file has up to four sections, one per scope: query, context,
// variable and temp. Each section maps names to numbers, strings, booleans
// or lists of those. YAML and JSON files share one decoder:
//
//	query:
//	  life_time: 2.5
//	variable:
//	  speed: [1, 2, 3]
//
// HCL files use one block per section:
//
//	query {
//	  life_time = 2.5
//	}
//
// Query entries become zero-arity constant functions. Assignments of the
// form key=EXPR are evaluated with expr-lang before binding.
package bindings
