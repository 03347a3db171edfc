package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"aigate-api/internal/providers"
	"aigate-api/internal/shared"
)

type Document struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type VoiceAnswerInput struct {
	UserPrompt         string     `json:"userPrompt"`
	GroundingDocuments []Document `json:"groundingDocuments"`
	VoiceID            string     `json:"voiceId,omitempty"`
}

type VoiceAnswerOutput struct {
	AudioBase64   string   `json:"audioBase64"`
	TextResponse  string   `json:"textResponse"`
	DocumentsUsed []string `json:"documentsUsed"`
}

// VoiceAnswer answers a question from the supplied documents and speaks the
// answer. TTS only starts after the LLM stage succeeded, and the request is
// reported once after both.
func (h *Handler) VoiceAnswer(ctx context.Context, m *Meta, in VoiceAnswerInput) (*VoiceAnswerOutput, error) {
	if strings.TrimSpace(in.UserPrompt) == "" {
		return nil, shared.NewValidationError("userPrompt must not be empty", "userPrompt")
	}
	contextText, used := groundingContext(in.GroundingDocuments)

	llm := h.Providers.LLM
	m.use(llm.Info())
	start := time.Now()
	answer, err := llm.Generate(ctx, in.UserPrompt, providers.GenerateOptions{
		ContextText:    contextText,
		MaxOutputChars: h.Limits.VoiceAnswerMaxChars,
	})
	observe(m.Log, llm.Info(), start, err)
	if err != nil {
		return nil, err
	}

	audio, err := h.synthesize(ctx, m, answer, in.VoiceID)
	if err != nil {
		return nil, err
	}

	h.report(ctx, m)
	return &VoiceAnswerOutput{
		AudioBase64:   base64.StdEncoding.EncodeToString(audio.Bytes),
		TextResponse:  answer,
		DocumentsUsed: used,
	}, nil
}

// groundingContext joins the non-blank documents under their names.
func groundingContext(docs []Document) (string, []string) {
	used := []string{}
	var sections []string
	for i, d := range docs {
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		name := strings.TrimSpace(d.Name)
		if name == "" {
			name = fmt.Sprintf("document %d", i+1)
		}
		used = append(used, name)
		sections = append(sections, fmt.Sprintf("### %s\n%s", name, strings.TrimSpace(d.Text)))
	}
	return strings.Join(sections, "\n\n"), used
}
