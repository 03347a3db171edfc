package providers

import (
	"fmt"
	"strings"
)

const groundingInstruction = "Answer the question using only the information inside the <context> block. " +
	"If the answer is not contained in the context, say plainly that the provided documents do not contain it. " +
	"Do not use outside knowledge."

// BuildPrompt frames a request the same way for every LLM vendor. The system
// prompt carries the grounding and length instructions; the user turn keeps
// supplied context and the question in separate delimited sections. Output
// length is only requested, never enforced by truncation.
func BuildPrompt(defaultSystem, prompt string, opts GenerateOptions) (system, user string) {
	var parts []string
	if s := strings.TrimSpace(orDefault(opts.SystemPrompt, defaultSystem)); s != "" {
		parts = append(parts, s)
	}

	user = prompt
	if contextText := strings.TrimSpace(opts.ContextText); contextText != "" {
		parts = append(parts, groundingInstruction)
		user = fmt.Sprintf("Context:\n<context>\n%s\n</context>\n\nQuestion: %s", contextText, prompt)
	}

	if opts.MaxOutputChars > 0 {
		parts = append(parts, fmt.Sprintf("Keep your answer under %d characters.", opts.MaxOutputChars))
	}
	return strings.Join(parts, "\n\n"), user
}
