package action

import "strings"

// BuildPrompt assembles the text-model prompt: the persona block, then the
// fenced prior context, then the question. Empty parts are omitted.
func BuildPrompt(persona, priorContext, question string) string {
	var sb strings.Builder
	if persona != "" {
		sb.WriteString(persona)
		sb.WriteString("\n\n---\n\n")
	}
	if priorContext != "" {
		sb.WriteString("Konteks sebelumnya:\n\"\"\"\n")
		sb.WriteString(priorContext)
		sb.WriteString("\n\"\"\"\n\nPertanyaan saat ini:\n")
	}
	sb.WriteString(question)
	return sb.String()
}
