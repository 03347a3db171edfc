// Package gateway runs the orchestration flows: one or more provider calls
// followed, only on full success, by exactly one consumption report.
// Typed errors from adapters pass through untouched.
package gateway

import (
	"context"
	"time"

	"aigate-api/internal/config"
	"aigate-api/internal/ledger"
	"aigate-api/internal/metrics"
	"aigate-api/internal/providers"
	"aigate-api/internal/shared"

	"go.uber.org/zap"
)

type Handler struct {
	Providers *providers.Registry
	Reporter  ledger.Reporter
	Limits    config.LimitsConfig
}

func NewHandler(reg *providers.Registry, reporter ledger.Reporter, limits config.LimitsConfig) *Handler {
	return &Handler{Providers: reg, Reporter: reporter, Limits: limits}
}

// Meta is the per-request bookkeeping a flow reads and fills in. It is owned
// by the request goroutine; batch workers never touch it.
type Meta struct {
	Charge    shared.Charge
	Log       *zap.SugaredLogger
	Providers []string
	Reported  bool
}

func (m *Meta) use(info providers.Info) {
	m.Providers = append(m.Providers, info.Provider+"/"+info.Capability)
}

// report is called once per flow, after every stage succeeded.
func (h *Handler) report(ctx context.Context, m *Meta) {
	m.Reported = h.Reporter.Report(ctx, m.Charge)
}

// observe records one provider call. Safe for concurrent use.
func observe(log *zap.SugaredLogger, info providers.Info, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = shared.InternalErrorCode
		if rerr, ok := shared.AsRequestError(err); ok {
			outcome = rerr.Kind.Code()
		}
		log.Warnw("Provider call failed",
			"provider", info.Provider,
			"capability", info.Capability,
			"error", err.Error(),
		)
	}
	metrics.ProviderCalls.WithLabelValues(info.Provider, info.Capability, outcome).Inc()
	metrics.ProviderLatency.WithLabelValues(info.Provider, info.Capability).Observe(time.Since(start).Seconds())
}
