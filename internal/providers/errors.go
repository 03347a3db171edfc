package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"aigate-api/internal/shared"

	"google.golang.org/api/googleapi"
)

// ProviderAuthCode marks a 401 from upstream: the gateway's own key was
// rejected, not the caller's credential.
const ProviderAuthCode = "provider_auth"

var quotaSignals = []string{
	"insufficient_quota",
	"quota",
	"credit",
	"billing",
	"payment required",
}

// upstreamError is the union of the error bodies the supported vendors send:
// {"error":{"message","type","code"}}, {"error":"..."}, {"detail":{...}},
// {"detail":"..."} and {"message":"..."}.
type upstreamError struct {
	Error   json.RawMessage `json:"error"`
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type upstreamErrorDetail struct {
	Message string          `json:"message"`
	Type    string          `json:"type"`
	Status  string          `json:"status"`
	Code    json.RawMessage `json:"code"`
}

// parseUpstreamError pulls a code and a message out of an error body. Both
// are empty when the body is not JSON.
func parseUpstreamError(body []byte) (code, message string) {
	var ue upstreamError
	if err := json.Unmarshal(body, &ue); err != nil {
		return "", ""
	}
	message = ue.Message
	for _, raw := range []json.RawMessage{ue.Error, ue.Detail} {
		if len(raw) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if message == "" {
				message = s
			}
			continue
		}
		var d upstreamErrorDetail
		if err := json.Unmarshal(raw, &d); err != nil {
			continue
		}
		if d.Message != "" {
			message = d.Message
		}
		for _, c := range []string{rawString(d.Code), d.Status, d.Type} {
			if c != "" {
				code = c
				break
			}
		}
	}
	return code, message
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func isQuotaSignal(parts ...string) bool {
	text := strings.ToLower(strings.Join(parts, " "))
	for _, sig := range quotaSignals {
		if strings.Contains(text, sig) {
			return true
		}
	}
	return false
}

// classify maps an upstream failure to exactly one kind. Order matters:
// some vendors answer 429 with a quota message, and quota is the more useful
// signal for the caller.
func classify(provider string, status int, code, message string, notFoundApplies bool) *shared.RequestError {
	rerr := &shared.RequestError{
		Provider:       provider,
		UpstreamStatus: status,
		UpstreamCode:   code,
	}
	switch {
	case status == http.StatusPaymentRequired || isQuotaSignal(code, message):
		rerr.Kind = shared.KindQuotaExceeded
		rerr.Message = "provider quota exhausted"
	case status == http.StatusTooManyRequests:
		rerr.Kind = shared.KindRateLimited
		rerr.Message = "provider rate limit reached"
	case status == http.StatusUnauthorized:
		rerr.Kind = shared.KindProviderFailure
		rerr.Message = "provider rejected the gateway credentials"
		rerr.UpstreamCode = ProviderAuthCode
		return rerr
	case status == http.StatusNotFound && notFoundApplies:
		rerr.Kind = shared.KindNotFound
		rerr.Message = "resource not found at provider"
	default:
		rerr.Kind = shared.KindProviderFailure
		rerr.Message = fmt.Sprintf("provider returned status %d", status)
	}
	if message != "" {
		rerr.Message = fmt.Sprintf("%s: %s", rerr.Message, shared.Truncate(message, 300))
	}
	return rerr
}

// classifyResponse reads a bounded part of a non-2xx body and classifies it.
// The caller still owns and closes the body.
func classifyResponse(provider string, resp *http.Response, notFoundApplies bool) *shared.RequestError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, shared.UpstreamErrBodyRead))
	code, message := parseUpstreamError(body)
	if message == "" && code == "" {
		// plain text bodies still carry quota hints
		text := strings.TrimSpace(string(body))
		if isQuotaSignal(text) {
			message = text
		}
	}
	return classify(provider, resp.StatusCode, code, message, notFoundApplies)
}

// transportError classifies failures that never produced a response.
func transportError(provider string, err error) error {
	if _, ok := shared.AsRequestError(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return shared.NewProviderError(provider, shared.KindProviderFailure, "provider request timed out", err)
	}
	return shared.NewProviderError(provider, shared.KindProviderFailure, "provider request failed", err)
}

// classifyGoogle handles errors from the google.golang.org/api clients.
func classifyGoogle(provider string, err error, notFoundApplies bool) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return transportError(provider, err)
	}
	code := ""
	if len(gerr.Errors) > 0 {
		code = gerr.Errors[0].Reason
	}
	return classify(provider, gerr.Code, code, gerr.Message, notFoundApplies)
}

func malformed(provider, what string, cause error) *shared.RequestError {
	return shared.NewProviderError(provider, shared.KindProviderFailure,
		fmt.Sprintf("unexpected response from provider: %s", what), cause)
}

func emptyResult(provider, what string) *shared.RequestError {
	return shared.NewProviderError(provider, shared.KindProviderFailure,
		fmt.Sprintf("provider returned an empty %s", what), nil)
}
