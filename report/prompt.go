package report

import "fmt"

func BuildPrompt(title, style, notes string) string {
	return fmt.Sprintf(`You are an expert report writer.
Create a structured %s report based on the following notes.
Format it with headings, bullet points, and concise explanations.

Title: %s

Notes:
%s
`, style, title, notes)
}
