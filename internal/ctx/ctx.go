// Package ctx
package ctx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"aigate-api/internal/metrics"
	"aigate-api/internal/shared"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ContextLogValues should only be accessed for logging, and not for
// actual business logic, or any other logic
type ContextLogValues struct {
	// Added in base middleware
	RequestID       string
	StartTime       time.Time
	StatusCode      int
	RequestDuration time.Duration
	Path            string

	// Added in auth / credit gate middleware
	Principal string
	Cost      uint64
	Endpoint  string

	// Added by flows
	Providers []string
	Reported  bool

	Error error
}

// AddError adds errors to the error chain. Always add errors, even if only warnings.
// Log level is determined by the status code of the request
func (c *ContextLogValues) AddError(err error) {
	if err == nil {
		return
	}
	if c.Error == nil {
		c.Error = err
		return
	}
	c.Error = fmt.Errorf("%w: %w", err, c.Error)
}

func (c *ContextLogValues) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if c.Principal != "" {
		enc.AddString("principal", c.Principal)
		enc.AddUint64("cost", c.Cost)
		enc.AddBool("reported", c.Reported)
	}
	enc.AddString("request_id", c.RequestID)
	enc.AddTime("start_time", c.StartTime)
	enc.AddDuration("request_duration", c.RequestDuration)
	enc.AddInt("status_code", c.StatusCode)
	if c.Endpoint != "" {
		enc.AddString("endpoint", c.Endpoint)
	}
	for i, p := range c.Providers {
		enc.AddString(fmt.Sprintf("provider_%d", i), p)
	}
	if c.Error != nil {
		enc.AddString("error", c.Error.Error())
	}
	enc.AddString("path", c.Path)
	return nil
}

var (
	errCostWithoutCredential = errors.New("cost assigned before credential")
	errCostAlreadyAssigned   = errors.New("cost already assigned")
)

// Context is the RequestContext of one HTTP exchange. It is owned by the
// request's goroutine and dropped when the exchange completes.
type Context struct {
	echo.Context
	Log       *zap.SugaredLogger
	Reqid     string
	LogValues *ContextLogValues

	Principal  string
	Credential string

	cost         uint64
	costAssigned bool

	body     []byte
	bodyRead bool
}

// AssignCost sets the credit cost once. The credential must already be
// present and a second assignment is refused.
func (c *Context) AssignCost(cost uint64) error {
	if c.Credential == "" {
		return errCostWithoutCredential
	}
	if c.costAssigned {
		return errCostAlreadyAssigned
	}
	c.cost = cost
	c.costAssigned = true
	if c.LogValues != nil {
		c.LogValues.Cost = cost
	}
	return nil
}

func (c *Context) Cost() (uint64, bool) {
	return c.cost, c.costAssigned
}

// Charge builds the reporter input for this request.
func (c *Context) Charge(endpoint string) shared.Charge {
	return shared.Charge{
		RequestID:  c.Reqid,
		Principal:  c.Principal,
		Credential: c.Credential,
		Endpoint:   endpoint,
		Cost:       c.cost,
	}
}

// RequestBody reads the body once and replays it for later readers.
func (c *Context) RequestBody() ([]byte, error) {
	if c.bodyRead {
		return c.body, nil
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	c.body = body
	c.bodyRead = true
	c.Request().Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// Fail writes the error envelope for err and records it for the end of
// request log line. Untyped errors leave no detail in the response.
func (c *Context) Fail(err error) error {
	// framework errors such as 413 are rendered by echo's error handler
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if _, typed := shared.AsRequestError(err); !typed {
			return err
		}
	}
	status, env := shared.Failure(err)
	endpoint := ""
	if c.LogValues != nil {
		c.LogValues.AddError(err)
		endpoint = c.LogValues.Endpoint
	}
	metrics.ErrorCount.WithLabelValues(endpoint, env.Error.Code).Inc()
	return c.JSON(status, env)
}

func (c *Context) Succeed(data any) error {
	return c.JSON(http.StatusOK, shared.OK(data))
}
