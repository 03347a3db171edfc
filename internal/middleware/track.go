// Package middleware holds the echo middleware shared by every route:
// request tracking, panic recovery, authentication and the credit gate.
package middleware

import (
	"fmt"
	"time"

	"aigate-api/internal/ctx"
	"aigate-api/internal/metrics"
	"aigate-api/internal/shared"

	"github.com/aidarkhanov/nanoid"
	"github.com/labstack/echo/v4"
	emw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func NewTrackMiddleware(log *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID, _ := nanoid.Generate(shared.RequestIDAlphabet, shared.RequestIDLength)
			reqID = "req_" + reqID
			logger := log.With("request_id", reqID)
			c.Response().Header().Set(shared.RequestIDHeader, reqID)

			start := time.Now()
			cc := &ctx.Context{
				Context: c,
				Log:     logger,
				Reqid:   reqID,
				LogValues: &ctx.ContextLogValues{
					RequestID: reqID,
					StartTime: start,
					Path:      c.Path(),
				},
			}

			if err := next(cc); err != nil {
				// framework errors (413, 404, ...) are rendered here so the
				// status below is the one the client sees
				cc.LogValues.AddError(err)
				cc.Error(err)
			}

			lv := cc.LogValues
			lv.RequestDuration = time.Since(start)
			lv.StatusCode = cc.Response().Status
			switch {
			case lv.StatusCode >= 500:
				cc.Log.Errorw("end_of_request", zap.Object("request", lv))
			case lv.StatusCode >= 400:
				cc.Log.Warnw("end_of_request", zap.Object("request", lv))
			default:
				cc.Log.Infow("end_of_request", zap.Object("request", lv))
			}

			metrics.ResponseCodes.WithLabelValues(cc.Path(), fmt.Sprintf("%d", lv.StatusCode)).Inc()
			if lv.Endpoint != "" {
				metrics.RequestDuration.WithLabelValues(lv.Endpoint).Observe(lv.RequestDuration.Seconds())
			}
			return nil
		}
	}
}

// NewRecoverMiddleware must run inside the track middleware so a panic still
// produces an end_of_request line.
func NewRecoverMiddleware(log *zap.SugaredLogger) echo.MiddlewareFunc {
	return emw.RecoverWithConfig(emw.RecoverConfig{
		StackSize: 1 << 10, // 1 KB
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			defer func() {
				_ = log.Sync()
			}()
			log.Errorw("Api Panic", "error", err.Error(), "stack", string(stack))
			if cc, ok := c.(*ctx.Context); ok {
				return cc.Fail(err)
			}
			status, env := shared.Failure(err)
			return c.JSON(status, env)
		},
	})
}

// RequireMetricsKey guards /metrics with a static bearer key.
func RequireMetricsKey(apiKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, err := shared.ExtractBearer(c)
			if err != nil {
				return c.String(401, "Missing or invalid API key")
			}
			if apiKey == "" || key != apiKey {
				return c.String(401, "Unauthorized API key")
			}
			return next(c)
		}
	}
}
