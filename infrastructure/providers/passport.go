package providers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
	"github.com/Callmedas69/ssa-sub000/internal/ports"
)

// PassportProviderID is the registry id of the sybil-resistance signal.
// The provider is fetched and displayed but excluded from the weighted
// index and from signed payloads.
const PassportProviderID = "passport"

var _ ports.ProviderAdapter = (*PassportAdapter)(nil)

// PassportAdapter fetches a humanity score expressed as a 0-1 fraction.
type PassportAdapter struct {
	fetcher httpFetcher
}

// AdapterConfig holds the settings shared by all HTTP adapters.
type AdapterConfig struct {
	// BaseURL is the provider API root, without a trailing slash.
	BaseURL string

	// APIKey authenticates requests. An empty key makes the adapter
	// resolve every fetch to a missing-credential fault.
	APIKey string

	// Client overrides the HTTP client. Nil selects a default with a
	// conservative timeout.
	Client *http.Client
}

// NewPassportAdapter creates the sybil-signal adapter.
func NewPassportAdapter(cfg AdapterConfig) *PassportAdapter {
	return &PassportAdapter{
		fetcher: newHTTPFetcher(cfg.Client, cfg.BaseURL, cfg.APIKey, "X-API-Key"),
	}
}

// ProviderID implements ports.ProviderAdapter.
func (a *PassportAdapter) ProviderID() string { return PassportProviderID }

// Fetch retrieves the humanity score for the subject address.
func (a *PassportAdapter) Fetch(ctx context.Context, input string) (*domain.RawResult, error) {
	if a.fetcher.apiKey == "" {
		return nil, ports.NewAdapterError(PassportProviderID, "fetch", ports.ErrMissingCredential)
	}

	var body struct {
		Score         string `json:"score"`
		PassingScore  bool   `json:"passing_score"`
		LastScoreTime string `json:"last_score_timestamp"`
	}
	if err := a.fetcher.getJSON(ctx, PassportProviderID, "/v2/stamps/score/"+input, &body); err != nil {
		return nil, err
	}

	score, err := strconv.ParseFloat(body.Score, 64)
	if err != nil {
		return nil, ports.NewAdapterError(PassportProviderID, "decode",
			fmt.Errorf("%w: score %q", ports.ErrInvalidResponse, body.Score))
	}

	return &domain.RawResult{
		Score: score,
		Metadata: map[string]string{
			"passing":    strconv.FormatBool(body.PassingScore),
			"scored_at":  body.LastScoreTime,
			"raw_source": "passport",
		},
	}, nil
}
