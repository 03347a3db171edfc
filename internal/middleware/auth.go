package middleware

import (
	"aigate-api/internal/ctx"
	"aigate-api/internal/identity"
	"aigate-api/internal/shared"

	"github.com/labstack/echo/v4"
)

var errMissingCredential = shared.NewUnauthorizedError("missing credential")

// Authenticate resolves the bearer credential to a principal. Any failure
// of the verifier is UNAUTHORIZED.
func Authenticate(verifier identity.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(cc echo.Context) error {
			c := cc.(*ctx.Context)

			token, err := shared.ExtractBearer(c)
			if err != nil {
				return c.Fail(err)
			}
			principal, err := verifier.Verify(c.Request().Context(), token)
			if err != nil {
				if rerr, ok := shared.AsRequestError(err); !ok || rerr.Kind != shared.KindUnauthorized {
					err = &shared.RequestError{Kind: shared.KindUnauthorized, Message: shared.ErrInvalidToken.Message, Err: err}
				}
				return c.Fail(err)
			}

			c.Principal = principal
			c.Credential = token
			c.LogValues.Principal = principal
			c.Log = c.Log.With("principal", principal)
			return next(c)
		}
	}
}

// CostFunc prices a request from its shape before any provider call.
type CostFunc func(c *ctx.Context) (uint64, error)

// CreditGate attaches the request cost. It never contacts the ledger; the
// ledger decides on balance when consumption is reported.
func CreditGate(endpoint string, costFn CostFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(cc echo.Context) error {
			c := cc.(*ctx.Context)
			c.LogValues.Endpoint = endpoint

			if c.Principal == "" {
				return c.Fail(shared.ErrUnauthorized)
			}
			if c.Credential == "" {
				return c.Fail(errMissingCredential)
			}

			cost, err := costFn(c)
			if err != nil {
				return c.Fail(err)
			}
			if err := c.AssignCost(cost); err != nil {
				return c.Fail(err)
			}
			return next(c)
		}
	}
}
