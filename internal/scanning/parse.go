package scanning

import "strings"

// cleanTranscript strips the wrapping an LLM sometimes adds around a transcription
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)

	// Remove an opening code fence and its language tag
	if strings.HasPrefix(text, "```") {
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	// Normalize Windows line endings so line splitting downstream stays simple
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text)
}
