package scanning

import (
	"fmt"
	"strings"
)

// transcriptionPrompt is the shared prompt used by all LLM providers
const transcriptionPrompt = `You are reading a photo of a grocery receipt. Transcribe every line of printed text exactly as it appears, top to bottom.

Rules:
- Keep one receipt line per output line
- Keep item names, quantities, units and prices on the same line as printed (e.g. "Greek Yogurt x2 9.00")
- Keep the store name, address, date and total lines
- Use a dot as the decimal separator for prices
- Do not translate, summarise, reorder or correct anything
- Do not add any text before or after the transcription
- Do not use markdown code blocks`

// cleanTranscript strips model formatting from a transcription and
// normalises line endings and trailing whitespace
func cleanTranscript(text string) (string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	text = strings.TrimSpace(strings.Join(lines, "\n"))

	if text == "" {
		return "", fmt.Errorf("cleaning transcript: %w", ErrNoText)
	}
	return text, nil
}
