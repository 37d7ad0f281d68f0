package provider

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/howsu-app/howsu-backend/internal/callable"
)

// NaverProvider fetches profiles from the Naver open API.
//
// Only the provider user id is consumed from the Naver response; Naver
// identities are never linked to a directory record by email, so the
// synthetic uid is minted directly. A response with no id means our
// integration is broken, hence INTERNAL rather than DATA_LOSS.
type NaverProvider struct {
	apiBaseURL string // defaults to https://openapi.naver.com, overridden in tests
	httpClient *http.Client
}

// naverProfileResponse represents the fields consumed from GET /v1/nid/me.
type naverProfileResponse struct {
	ResultCode string `json:"resultcode"`
	Message    string `json:"message"`
	Response   struct {
		ID string `json:"id"`
	} `json:"response"`
}

// NewNaverProvider creates a Naver provider against the public API.
func NewNaverProvider() *NaverProvider {
	return &NaverProvider{
		apiBaseURL: "https://openapi.naver.com",
		httpClient: http.DefaultClient,
	}
}

// Name returns the provider name used in synthetic uids.
func (p *NaverProvider) Name() string {
	return "naver"
}

// FetchProfile calls the Naver profile endpoint with the supplied bearer token.
func (p *NaverProvider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+"/v1/nid/me", nil)
	if err != nil {
		return nil, callable.NewError(callable.CodeInternal, "failed to build naver profile request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, callable.NewError(callable.CodeUnauthenticated, "naver access token was rejected")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, callable.NewError(callable.CodeUnauthenticated, "naver access token was rejected")
	}

	var profile naverProfileResponse
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, callable.NewError(callable.CodeInternal, "naver profile response is not valid JSON")
	}

	if profile.Response.ID == "" {
		return nil, callable.NewError(callable.CodeInternal, "naver profile missing required field: response.id")
	}

	return &Profile{ID: profile.Response.ID}, nil
}

// UID derives the synthetic uid for a Naver profile.
func (p *NaverProvider) UID(profile *Profile) string {
	return "naver:" + profile.ID
}
