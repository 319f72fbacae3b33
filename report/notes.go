package report

import "strings"

const (
	SnippetHeader    = "Text extracted from attached images:"
	SnippetSeparator = "\n\n---\n\n"
)

// AssembleNotes appends the OCR snippets to the description. With no
// snippets the description is returned verbatim.
func AssembleNotes(description string, snippets []string) string {
	if len(snippets) == 0 {
		return description
	}

	var b strings.Builder
	b.WriteString(description)
	b.WriteString("\n\n")
	b.WriteString(SnippetHeader)
	b.WriteString("\n")
	b.WriteString(strings.Join(snippets, SnippetSeparator))
	return b.String()
}
