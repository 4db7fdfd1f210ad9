// Package parser builds the structural model of a Go repository from its
// ASTs: named types, receiver methods, route-annotated endpoints, and the
// dependency edges between module-local types.
package parser
