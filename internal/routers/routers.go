package routers

import (
	"encoding/json"

	"aigate-api/internal/ctx"
	"aigate-api/internal/handlers/gateway"
	"aigate-api/internal/shared"
)

func readJSON(c *ctx.Context, out any) error {
	body, err := c.RequestBody()
	if err != nil {
		c.Log.Errorw("Failed to read request body", "error", err.Error())
		return shared.BodyReadError(err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &shared.RequestError{Kind: shared.KindValidation, Message: shared.ErrInvalidRequest.Message, Err: err}
	}
	return nil
}

func newMeta(c *ctx.Context, endpoint string) *gateway.Meta {
	return &gateway.Meta{Charge: c.Charge(endpoint), Log: c.Log}
}

// respond copies flow bookkeeping into the request log line and writes the
// envelope.
func respond(c *ctx.Context, m *gateway.Meta, data any, err error) error {
	c.LogValues.Providers = m.Providers
	c.LogValues.Reported = m.Reported
	if err != nil {
		return c.Fail(err)
	}
	return c.Succeed(data)
}
