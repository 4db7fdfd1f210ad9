// Package render produces the deterministic textual representation of a code
// unit used as embedding input: a metadata header followed by a bounded
// source excerpt. The same definition always renders to the same text, which
// keeps chunk ids stable across ingestion runs.
package render

import (
	"fmt"
	"strings"

	"github.com/codegraphhq/codegraph/pkg/types"
)

// MaxSnippetChars bounds the source excerpt included in rendered text.
const MaxSnippetChars = 4000

// Renderer renders method definitions into embedding text.
type Renderer struct {
	maxSnippet int
}

// New creates a Renderer with the default excerpt bound.
func New() *Renderer {
	return &Renderer{maxSnippet: MaxSnippetChars}
}

// Method renders one method definition with its source snippet. The result
// is trimmed; a definition with no content renders to the empty string.
func (r *Renderer) Method(method types.MethodDef, snippet string) string {
	var sb strings.Builder

	sb.WriteString("Module: " + method.ModuleName + "\n")
	sb.WriteString("Type: " + method.DeclaringType + "\n")
	sb.WriteString("Signature: " + method.Signature + "\n")
	sb.WriteString("Return: " + method.ReturnType + "\n")
	sb.WriteString("Visibility: " + method.Visibility + "\n")
	if method.PointerRecv {
		sb.WriteString("Receiver: pointer\n")
	}

	if method.Path != "" {
		sb.WriteString("Source: " + method.Path)
		if method.StartLine > 0 && method.EndLine > 0 {
			sb.WriteString(fmt.Sprintf(" [lines %d-%d]", method.StartLine, method.EndLine))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Code:\n")
	sb.WriteString(r.boundSnippet(snippet))
	sb.WriteString("\n")

	return strings.TrimSpace(sb.String())
}

func (r *Renderer) boundSnippet(snippet string) string {
	runes := []rune(snippet)
	if len(runes) <= r.maxSnippet {
		return snippet
	}
	return string(runes[:r.maxSnippet])
}
