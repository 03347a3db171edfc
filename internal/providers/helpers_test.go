package providers

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"aigate-api/internal/config"
	"aigate-api/internal/shared"

	"github.com/stretchr/testify/require"
)

// upstream is an httptest server that counts the calls it receives.
type upstream struct {
	*httptest.Server
	calls atomic.Int32
}

func newUpstream(t *testing.T, h http.HandlerFunc) *upstream {
	t.Helper()
	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		h(w, r)
	}))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) providerConfig() config.ProviderConfig {
	return config.ProviderConfig{APIKey: "test-key", BaseURL: u.URL}
}

func testLimits() config.LimitsConfig {
	return config.LimitsConfig{
		StreamTimeout:     2 * time.Second,
		StreamMaxBytes:    1 << 20,
		TTSMaxChars:       shared.MaxTTSCharacters,
		SeedImageMaxBytes: shared.MaxSeedImageBytes,
	}
}

func requireKind(t *testing.T, err error, kind shared.ErrorKind) *shared.RequestError {
	t.Helper()
	require.Error(t, err)
	rerr, ok := shared.AsRequestError(err)
	require.True(t, ok, "expected RequestError, got %v", err)
	require.Equal(t, kind, rerr.Kind, rerr.Error())
	return rerr
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
