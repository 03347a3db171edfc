package providers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"aigate-api/internal/shared"
)

// Input checks shared by every vendor of a capability. They run before any
// network call.

func validatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return shared.NewValidationError("prompt is required", "prompt")
	}
	return nil
}

func validateTTSText(text string, maxChars int) error {
	if strings.TrimSpace(text) == "" {
		return shared.NewValidationError("text is required", "text")
	}
	if maxChars > 0 && utf8.RuneCountInString(text) > maxChars {
		return shared.NewValidationError(fmt.Sprintf("text exceeds %d characters", maxChars), "text")
	}
	return nil
}

func validationAudio() error {
	return shared.NewValidationError("audio is required", "audio")
}

func validateSeedImage(seed []byte, maxBytes int) error {
	if maxBytes > 0 && len(seed) > maxBytes {
		return shared.NewValidationError(
			fmt.Sprintf("seed image exceeds %d bytes", maxBytes), "seedImageBase64")
	}
	return nil
}
