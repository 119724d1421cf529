package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Callmedas69/ssa-sub000/internal/ports"
)

// maxResponseBytes caps provider response bodies. Provider payloads are a
// few hundred bytes; anything past this is malformed.
const maxResponseBytes = 1 << 20

// httpFetcher is the shared HTTP plumbing under every concrete adapter.
// It maps transport outcomes onto the adapter error taxonomy: 404 means the
// subject is unknown, other non-2xx statuses and undecodable bodies are
// transport faults.
type httpFetcher struct {
	client  *http.Client
	baseURL string
	apiKey  string
	header  string
}

func newHTTPFetcher(client *http.Client, baseURL, apiKey, header string) httpFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return httpFetcher{client: client, baseURL: baseURL, apiKey: apiKey, header: header}
}

// getJSON performs a GET against path and decodes the body into out.
func (f httpFetcher) getJSON(ctx context.Context, provider, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path, nil)
	if err != nil {
		return ports.NewAdapterError(provider, "build_request", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.apiKey != "" && f.header != "" {
		req.Header.Set(f.header, f.apiKey)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ports.NewAdapterError(provider, "request", ports.ErrTimeout)
		}
		return ports.NewAdapterError(provider, "request", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ports.NewAdapterError(provider, "request", ports.ErrSubjectUnknown)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return ports.NewAdapterError(provider, "request",
			fmt.Errorf("%w: status %d", ports.ErrServiceUnavailable, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return ports.NewAdapterError(provider, "read_body", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return ports.NewAdapterError(provider, "decode",
			fmt.Errorf("%w: %v", ports.ErrInvalidResponse, err))
	}
	return nil
}
