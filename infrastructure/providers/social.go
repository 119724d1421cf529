package providers

import (
	"context"
	"strconv"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
	"github.com/Callmedas69/ssa-sub000/internal/ports"
)

// Registry ids for the social-graph pair: an id-resolution provider that
// maps an address to a numeric social account id, and a dependent provider
// that scores that account. The resolver contributes no score of its own;
// it exists to supply the derived input.
const (
	SocialIDProviderID    = "social-id"
	SocialGraphProviderID = "social-graph"

	// SocialAccountField is the metadata key on the resolver's result
	// that dependent descriptors name as their DerivedField.
	SocialAccountField = "fid"
)

var (
	_ ports.ProviderAdapter = (*SocialIDAdapter)(nil)
	_ ports.ProviderAdapter = (*SocialGraphAdapter)(nil)
)

// SocialIDAdapter resolves a subject address to its social account id.
type SocialIDAdapter struct {
	fetcher httpFetcher
}

// NewSocialIDAdapter creates the id-resolution adapter.
func NewSocialIDAdapter(cfg AdapterConfig) *SocialIDAdapter {
	return &SocialIDAdapter{
		fetcher: newHTTPFetcher(cfg.Client, cfg.BaseURL, cfg.APIKey, "x-api-key"),
	}
}

// ProviderID implements ports.ProviderAdapter.
func (a *SocialIDAdapter) ProviderID() string { return SocialIDProviderID }

// Fetch resolves the subject address. A subject with no linked social
// account is unknown to this provider, which makes every dependent
// provider absent as well.
func (a *SocialIDAdapter) Fetch(ctx context.Context, input string) (*domain.RawResult, error) {
	if a.fetcher.apiKey == "" {
		return nil, ports.NewAdapterError(SocialIDProviderID, "fetch", ports.ErrMissingCredential)
	}

	var body struct {
		Users []struct {
			FID      uint64 `json:"fid"`
			Username string `json:"username"`
		} `json:"users"`
	}
	if err := a.fetcher.getJSON(ctx, SocialIDProviderID, "/v2/user/by-verification?address="+input, &body); err != nil {
		return nil, err
	}
	if len(body.Users) == 0 {
		return nil, ports.NewAdapterError(SocialIDProviderID, "fetch", ports.ErrSubjectUnknown)
	}

	user := body.Users[0]
	return &domain.RawResult{
		// The resolver carries no score; it exists for its metadata.
		Score: 0,
		Metadata: map[string]string{
			SocialAccountField: strconv.FormatUint(user.FID, 10),
			"username":         user.Username,
		},
	}, nil
}

// SocialGraphAdapter scores a social account id. Its input is the derived
// id supplied by SocialIDAdapter, never the subject address.
type SocialGraphAdapter struct {
	fetcher httpFetcher
}

// NewSocialGraphAdapter creates the social-graph scoring adapter.
func NewSocialGraphAdapter(cfg AdapterConfig) *SocialGraphAdapter {
	return &SocialGraphAdapter{
		fetcher: newHTTPFetcher(cfg.Client, cfg.BaseURL, cfg.APIKey, "x-api-key"),
	}
}

// ProviderID implements ports.ProviderAdapter.
func (a *SocialGraphAdapter) ProviderID() string { return SocialGraphProviderID }

// Fetch retrieves the graph score for the given social account id.
func (a *SocialGraphAdapter) Fetch(ctx context.Context, input string) (*domain.RawResult, error) {
	if a.fetcher.apiKey == "" {
		return nil, ports.NewAdapterError(SocialGraphProviderID, "fetch", ports.ErrMissingCredential)
	}

	var body struct {
		Result struct {
			Score     float64 `json:"score"`
			Rank      int64   `json:"rank"`
			Followers int64   `json:"followers"`
		} `json:"result"`
	}
	if err := a.fetcher.getJSON(ctx, SocialGraphProviderID, "/scores/global?fid="+input, &body); err != nil {
		return nil, err
	}

	return &domain.RawResult{
		Score: body.Result.Score,
		Metadata: map[string]string{
			"rank":      strconv.FormatInt(body.Result.Rank, 10),
			"followers": strconv.FormatInt(body.Result.Followers, 10),
		},
	}, nil
}
