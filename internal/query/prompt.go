package query

import (
	"fmt"
	"strings"

	"github.com/codegraphhq/codegraph/pkg/types"
)

// maxExcerptChars bounds each code excerpt included in the synthesis prompt.
const maxExcerptChars = 500

// buildPrompt assembles the synthesis prompt: the question, one bounded
// excerpt per hit, and a one-line summary of the expanded subgraph.
func buildPrompt(question string, hits []types.Hit, sub types.Subgraph) string {
	var sb strings.Builder

	sb.WriteString("You are a code assistant. Answer the question using only the context below.\n\n")
	sb.WriteString("Question: " + question + "\n\n")
	sb.WriteString("Context:\n")

	for i, hit := range hits {
		text, _ := hit.Node.Properties["text"].(string)
		module, _ := hit.Node.Properties["module"].(string)
		owner, _ := hit.Node.Properties["ownerIdentity"].(string)
		signature, _ := hit.Node.Properties["ownerSignature"].(string)
		sb.WriteString(fmt.Sprintf("--- excerpt %d (module %s, type %s, score %.3f) ---\n",
			i+1, module, owner, hit.Score))
		if signature != "" {
			sb.WriteString("Method: " + signature + "\n")
		}
		if loc := sourceLocation(hit.Node.Properties); loc != "" {
			sb.WriteString("Source: " + loc + "\n")
		}
		sb.WriteString(excerpt(text))
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("\nRelated code graph: %d nodes, %d relationships.\n",
		len(sub.Nodes), len(sub.Relationships)))
	return sb.String()
}

func sourceLocation(props map[string]any) string {
	path, _ := props["sourcePath"].(string)
	if path == "" {
		return ""
	}
	start := intProp(props, "startLine")
	end := intProp(props, "endLine")
	if start > 0 && end > 0 {
		return fmt.Sprintf("%s:%d-%d", path, start, end)
	}
	return path
}

func intProp(props map[string]any, key string) int {
	switch n := props[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= maxExcerptChars {
		return text
	}
	return string(runes[:maxExcerptChars]) + "..."
}
