package providers

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"aigate-api/internal/shared"
)

const plainTextName = "plaintext"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// PlainTextExtractor accepts UTF-8 text documents (txt, md, csv, json, html
// source and the like). Binary formats are rejected as invalid input.
type PlainTextExtractor struct{}

func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

func (p *PlainTextExtractor) Info() Info {
	return Info{Provider: plainTextName, Capability: CapabilityExtractor}
}

func (p *PlainTextExtractor) Extract(ctx context.Context, filename string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", shared.NewProviderError(plainTextName, shared.KindProviderFailure, "extraction aborted", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) || bytes.IndexByte(content, 0) >= 0 {
		return "", shared.NewValidationError(
			fmt.Sprintf("%s is not a text document", filename), "contentBase64")
	}

	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return "", shared.NewValidationError(
			fmt.Sprintf("%s contains no text", filename), "contentBase64")
	}
	return text, nil
}
