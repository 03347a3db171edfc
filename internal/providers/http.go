package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// postJSON sends body as JSON and decodes a 2xx answer into out. Every
// failure past request construction is classified for provider.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body, out any, notFoundApplies bool) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return doJSON(client, provider, req, out, notFoundApplies)
}

func doJSON(client *http.Client, provider string, req *http.Request, out any, notFoundApplies bool) error {
	resp, err := client.Do(req)
	if err != nil {
		return transportError(provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyResponse(provider, resp, notFoundApplies)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return malformed(provider, "invalid JSON body", err)
	}
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func trimBaseURL(v, def string) string {
	return strings.TrimRight(orDefault(v, def), "/")
}
