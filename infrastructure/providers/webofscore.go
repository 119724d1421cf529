package providers

import (
	"context"
	"strconv"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
	"github.com/Callmedas69/ssa-sub000/internal/ports"
)

// WebOfScoreProviderID is the registry id of the credibility provider whose
// scores already arrive on the 0-100 scale.
const WebOfScoreProviderID = "webofscore"

var _ ports.ProviderAdapter = (*WebOfScoreAdapter)(nil)

// WebOfScoreAdapter fetches a credibility score that needs no rescaling.
type WebOfScoreAdapter struct {
	fetcher httpFetcher
}

// NewWebOfScoreAdapter creates the credibility-score adapter. The upstream
// API is public; no credential is required.
func NewWebOfScoreAdapter(cfg AdapterConfig) *WebOfScoreAdapter {
	return &WebOfScoreAdapter{
		fetcher: newHTTPFetcher(cfg.Client, cfg.BaseURL, cfg.APIKey, "Authorization"),
	}
}

// ProviderID implements ports.ProviderAdapter.
func (a *WebOfScoreAdapter) ProviderID() string { return WebOfScoreProviderID }

// Fetch retrieves the credibility score for the subject address.
func (a *WebOfScoreAdapter) Fetch(ctx context.Context, input string) (*domain.RawResult, error) {
	var body struct {
		Address    string  `json:"address"`
		Score      float64 `json:"score"`
		Confidence float64 `json:"confidence"`
	}
	if err := a.fetcher.getJSON(ctx, WebOfScoreProviderID, "/api/score/"+input, &body); err != nil {
		return nil, err
	}

	return &domain.RawResult{
		Score: body.Score,
		Metadata: map[string]string{
			"confidence": strconv.FormatFloat(body.Confidence, 'f', 2, 64),
		},
	}, nil
}
