package providers

import (
	"context"
	"strconv"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
	"github.com/Callmedas69/ssa-sub000/internal/ports"
)

// TalentProviderID is the registry id of the builder-score provider.
const TalentProviderID = "talent"

var _ ports.ProviderAdapter = (*TalentAdapter)(nil)

// TalentAdapter fetches a builder score on the provider's own scale;
// the registry's divide rule maps it onto 0-100.
type TalentAdapter struct {
	fetcher httpFetcher
}

// NewTalentAdapter creates the builder-score adapter.
func NewTalentAdapter(cfg AdapterConfig) *TalentAdapter {
	return &TalentAdapter{
		fetcher: newHTTPFetcher(cfg.Client, cfg.BaseURL, cfg.APIKey, "X-API-KEY"),
	}
}

// ProviderID implements ports.ProviderAdapter.
func (a *TalentAdapter) ProviderID() string { return TalentProviderID }

// Fetch retrieves the builder score for the subject address.
func (a *TalentAdapter) Fetch(ctx context.Context, input string) (*domain.RawResult, error) {
	if a.fetcher.apiKey == "" {
		return nil, ports.NewAdapterError(TalentProviderID, "fetch", ports.ErrMissingCredential)
	}

	var body struct {
		Score struct {
			Points         float64 `json:"points"`
			LastCalculated string  `json:"last_calculated_at"`
		} `json:"score"`
	}
	if err := a.fetcher.getJSON(ctx, TalentProviderID, "/score?id="+input, &body); err != nil {
		return nil, err
	}

	return &domain.RawResult{
		Score: body.Score.Points,
		Metadata: map[string]string{
			"points":        strconv.FormatFloat(body.Score.Points, 'f', -1, 64),
			"calculated_at": body.Score.LastCalculated,
		},
	}, nil
}
