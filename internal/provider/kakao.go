package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/howsu-app/howsu-backend/internal/callable"
)

// KakaoProvider fetches profiles from the Kakao user API.
//
// Kakao is the only provider whose profile we treat as carrying the user's
// email: the directory keys returning users by email, so a Kakao response
// without one is a broken upstream contract (DATA_LOSS), not a bad token.
type KakaoProvider struct {
	apiBaseURL string // defaults to https://kapi.kakao.com, overridden in tests
	httpClient *http.Client
}

// kakaoUserResponse represents the fields consumed from GET /v2/user/me.
type kakaoUserResponse struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email string `json:"email"`
	} `json:"kakao_account"`
	Properties struct {
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"properties"`
}

// NewKakaoProvider creates a Kakao provider against the public API.
func NewKakaoProvider() *KakaoProvider {
	return &KakaoProvider{
		apiBaseURL: "https://kapi.kakao.com",
		httpClient: http.DefaultClient,
	}
}

// Name returns the provider name used in synthetic uids.
func (p *KakaoProvider) Name() string {
	return "kakao"
}

// FetchProfile calls the Kakao user endpoint with the supplied bearer token.
func (p *KakaoProvider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+"/v2/user/me", nil)
	if err != nil {
		return nil, callable.NewError(callable.CodeInternal, "failed to build kakao profile request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		// Unreachable provider and rejected token are indistinguishable
		// to the client; both render as a failed sign-in.
		return nil, callable.NewError(callable.CodeUnauthenticated, "kakao access token was rejected")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, callable.NewError(callable.CodeUnauthenticated, "kakao access token was rejected")
	}

	var user kakaoUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, callable.NewError(callable.CodeDataLoss, "kakao profile response is not valid JSON")
	}

	var missing []string
	if user.ID == 0 {
		missing = append(missing, "id")
	}
	if user.KakaoAccount.Email == "" {
		missing = append(missing, "kakao_account.email")
	}
	if len(missing) > 0 {
		return nil, callable.Errorf(callable.CodeDataLoss,
			"kakao profile missing required fields: %s", strings.Join(missing, ", "))
	}

	return &Profile{
		ID:       strconv.FormatInt(user.ID, 10),
		Email:    user.KakaoAccount.Email,
		Nickname: user.Properties.Nickname,
		ImageURL: user.Properties.ProfileImage,
	}, nil
}

// UID derives the synthetic uid for a Kakao profile.
func (p *KakaoProvider) UID(profile *Profile) string {
	return "kakao:" + profile.ID
}
