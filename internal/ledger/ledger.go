// Package ledger reports consumption to the external credit ledger. Reporting
// is a best-effort side effect: it logs and counts failures but can never
// fail the request that produced the charge.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"aigate-api/internal/config"
	"aigate-api/internal/metrics"
	"aigate-api/internal/shared"

	"go.uber.org/zap"
)

// Reporter debits a successful request. The bool is informational only.
type Reporter interface {
	Report(ctx context.Context, charge shared.Charge) bool
}

type debitRequest struct {
	Cost uint64 `json:"cost"`
}

// HTTPReporter posts {"cost": N} to the ledger debit endpoint with the
// caller's bearer credential and the service-to-service secret.
type HTTPReporter struct {
	url     string
	secret  string
	timeout time.Duration
	client  *http.Client
	journal Journal
	log     *zap.SugaredLogger
}

// NewHTTPReporter builds a reporter. journal may be nil.
func NewHTTPReporter(cfg config.LedgerConfig, client *http.Client, journal Journal, log *zap.SugaredLogger) *HTTPReporter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = shared.LedgerTimeout
	}
	return &HTTPReporter{
		url:     cfg.URL,
		secret:  cfg.ServiceSecret,
		timeout: timeout,
		client:  client,
		journal: journal,
		log:     log,
	}
}

// Report runs detached from the request's cancellation so a client hanging
// up after a successful flow does not skip the debit.
func (r *HTTPReporter) Report(ctx context.Context, charge shared.Charge) bool {
	if charge.Cost == 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	log := r.log.With("request_id", charge.RequestID, "endpoint", charge.Endpoint, "cost", charge.Cost)
	if err := r.debit(ctx, charge); err != nil {
		outcome := "error"
		if rerr, ok := shared.AsRequestError(err); ok {
			outcome = rerr.Kind.Code()
		}
		metrics.LedgerReports.WithLabelValues(charge.Endpoint, outcome).Inc()
		log.Errorw("Failed to report consumption", "principal", charge.Principal, "error", err.Error())
		return false
	}
	metrics.LedgerReports.WithLabelValues(charge.Endpoint, "ok").Inc()
	metrics.CreditsReported.WithLabelValues(charge.Endpoint).Add(float64(charge.Cost))

	if r.journal != nil {
		if err := r.journal.Append(ctx, newUsageEvent(charge)); err != nil {
			metrics.JournalErrors.Inc()
			log.Warnw("Failed to append usage event", "error", err.Error())
		}
	}
	return true
}

func (r *HTTPReporter) debit(ctx context.Context, charge shared.Charge) error {
	body, err := json.Marshal(debitRequest{Cost: charge.Cost})
	if err != nil {
		return fmt.Errorf("marshaling debit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating debit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+charge.Credential)
	req.Header.Set(shared.ServiceSecretHeader, r.secret)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("ledger request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, shared.UpstreamErrBodyRead))
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
	if resp.StatusCode == http.StatusPaymentRequired {
		return &shared.RequestError{
			Kind:    shared.KindInsufficientCredits,
			Message: "ledger refused debit: insufficient credits",
		}
	}
	return fmt.Errorf("ledger returned status %d: %s", resp.StatusCode, shared.Truncate(string(detail), 200))
}
