package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"aigate-api/internal/shared"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestClassifyOrder(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		code     string
		message  string
		notFound bool
		want     shared.ErrorKind
	}{
		{"quota beats rate limit", 429, "insufficient_quota", "You exceeded your current quota", false, shared.KindQuotaExceeded},
		{"payment required", 402, "", "", false, shared.KindQuotaExceeded},
		{"billing message", 400, "", "billing hard limit reached", false, shared.KindQuotaExceeded},
		{"rate limited", 429, "rate_limit_exceeded", "slow down", false, shared.KindRateLimited},
		{"gateway key rejected", 401, "invalid_api_key", "bad key", false, shared.KindProviderFailure},
		{"voice not found", 404, "voice_not_found", "no such voice", true, shared.KindNotFound},
		{"404 outside image and voice", 404, "", "model not found", false, shared.KindProviderFailure},
		{"server error", 500, "", "boom", false, shared.KindProviderFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rerr := classify("vendor", tt.status, tt.code, tt.message, tt.notFound)
			assert.Equal(t, tt.want, rerr.Kind)
			assert.Equal(t, "vendor", rerr.Provider)
			assert.Equal(t, tt.status, rerr.UpstreamStatus)
		})
	}
}

func TestClassifyProviderAuth(t *testing.T) {
	rerr := classify("vendor", 401, "invalid_api_key", "Incorrect API key sk-123", false)
	assert.Equal(t, ProviderAuthCode, rerr.UpstreamCode)
	assert.NotContains(t, rerr.Message, "sk-123")
}

func TestParseUpstreamError(t *testing.T) {
	tests := []struct {
		body        string
		wantCode    string
		wantMessage string
	}{
		{`{"error":{"message":"quota gone","type":"insufficient_quota","code":"insufficient_quota"}}`, "insufficient_quota", "quota gone"},
		{`{"type":"error","error":{"type":"rate_limit_error","message":"too fast"}}`, "rate_limit_error", "too fast"},
		{`{"detail":{"status":"voice_not_found","message":"missing voice"}}`, "voice_not_found", "missing voice"},
		{`{"detail":"Not authenticated"}`, "", "Not authenticated"},
		{`{"error":{"message":"x","code":429}}`, "429", "x"},
		{`upstream exploded`, "", ""},
	}
	for _, tt := range tests {
		code, message := parseUpstreamError([]byte(tt.body))
		assert.Equal(t, tt.wantCode, code, tt.body)
		assert.Equal(t, tt.wantMessage, message, tt.body)
	}
}

func TestClassifyGoogle(t *testing.T) {
	err := fmt.Errorf("call: %w", &googleapi.Error{
		Code:    429,
		Message: "Quota exceeded for quota metric 'Requests'",
		Errors:  []googleapi.ErrorItem{{Reason: "rateLimitExceeded"}},
	})
	rerr := requireKind(t, classifyGoogle(googleName, err, false), shared.KindQuotaExceeded)
	assert.Equal(t, "rateLimitExceeded", rerr.UpstreamCode)

	requireKind(t, classifyGoogle(googleName, &googleapi.Error{Code: 429, Message: "slow down"}, false), shared.KindRateLimited)
	requireKind(t, classifyGoogle(googleName, errors.New("dial tcp: refused"), false), shared.KindProviderFailure)
}

func TestTransportError(t *testing.T) {
	rerr := requireKind(t, transportError("vendor", fmt.Errorf("do: %w", context.DeadlineExceeded)), shared.KindProviderFailure)
	assert.Contains(t, rerr.Message, "timed out")

	typed := shared.NewProviderError("vendor", shared.KindRateLimited, "x", nil)
	assert.Same(t, typed, transportError("other", typed))
}
