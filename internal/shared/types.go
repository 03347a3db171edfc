package shared

import "net/http"

// Envelope is the uniform response body for every /v1 route.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	StatusCode int            `json:"statusCode"`
	Details    map[string]any `json:"details,omitempty"`
}

func OK(data any) Envelope {
	return Envelope{Success: true, Data: data}
}

// Failure converts any error into a status and envelope. Typed errors keep
// their kind; anything else is reported as a generic internal error with no
// detail from the cause.
func Failure(err error) (int, Envelope) {
	rerr, ok := AsRequestError(err)
	if !ok {
		return http.StatusInternalServerError, Envelope{Error: &ErrorBody{
			Code:       InternalErrorCode,
			Message:    "internal server error",
			StatusCode: http.StatusInternalServerError,
		}}
	}
	body := &ErrorBody{
		Code:       rerr.Kind.Code(),
		Message:    rerr.Message,
		StatusCode: rerr.StatusCode(),
	}
	details := map[string]any{}
	if len(rerr.Fields) > 0 {
		details["fields"] = rerr.Fields
	}
	if rerr.Provider != "" {
		details["provider"] = rerr.Provider
	}
	if rerr.UpstreamCode != "" {
		details["upstreamCode"] = rerr.UpstreamCode
	}
	if len(details) > 0 {
		body.Details = details
	}
	return body.StatusCode, Envelope{Error: body}
}

// Charge is what the Consumption Reporter needs to debit a request.
type Charge struct {
	RequestID  string
	Principal  string
	Credential string
	Endpoint   string
	Cost       uint64
}
