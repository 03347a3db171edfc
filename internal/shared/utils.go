// Package shared holds the error taxonomy, envelopes and constants used by
// every other package.
package shared

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

// ExtractBearer returns the bearer credential from the Authorization header.
// The credential is opaque; it is never parsed here.
func ExtractBearer(c echo.Context) (string, error) {
	auth := c.Request().Header.Get("Authorization")
	if auth == "" {
		return "", ErrMissingAuth
	}

	parts := strings.Fields(auth)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", ErrInvalidFormat
	}
	return parts[1], nil
}

func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// BodyReadError classifies a failed body read. The body limit error is left
// to echo so the client sees 413.
func BodyReadError(err error) error {
	if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
		return err
	}
	return &RequestError{Kind: KindValidation, Message: "failed to read request body", Err: err}
}
