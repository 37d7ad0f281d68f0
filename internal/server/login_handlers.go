package server

import (
	"context"
	"net/http"

	"github.com/howsu-app/howsu-backend/internal/callable"
	"github.com/howsu-app/howsu-backend/internal/provider"
)

// Exchanger turns a provider access token into a Firebase custom token
type Exchanger interface {
	Exchange(ctx context.Context, p provider.Provider, accessToken string) (string, error)
}

// KakaoLoginHandler implements the kakaoLogin callable endpoint
type KakaoLoginHandler struct {
	exchanger Exchanger
	provider  provider.Provider
}

// NewKakaoLoginHandler creates the kakaoLogin handler
func NewKakaoLoginHandler(exchanger Exchanger, kakao provider.Provider) *KakaoLoginHandler {
	return &KakaoLoginHandler{exchanger: exchanger, provider: kakao}
}

type kakaoLoginRequest struct {
	Token string `json:"token"`
}

type kakaoLoginResponse struct {
	FirebaseToken string `json:"firebaseToken"`
}

func (h *KakaoLoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req kakaoLoginRequest
	if err := callable.DecodeRequest(r, &req); err != nil {
		callable.WriteError(w, err)
		return
	}

	token, err := h.exchanger.Exchange(r.Context(), h.provider, req.Token)
	if err != nil {
		callable.WriteError(w, err)
		return
	}

	callable.WriteResult(w, kakaoLoginResponse{FirebaseToken: token})
}

// VerifyNaverTokenHandler implements the verifyNaverToken callable endpoint
type VerifyNaverTokenHandler struct {
	exchanger Exchanger
	provider  provider.Provider
}

// NewVerifyNaverTokenHandler creates the verifyNaverToken handler
func NewVerifyNaverTokenHandler(exchanger Exchanger, naver provider.Provider) *VerifyNaverTokenHandler {
	return &VerifyNaverTokenHandler{exchanger: exchanger, provider: naver}
}

type verifyNaverTokenRequest struct {
	NaverAccessToken string `json:"naverAccessToken"`
}

type verifyNaverTokenResponse struct {
	FirebaseCustomToken string `json:"firebaseCustomToken"`
}

func (h *VerifyNaverTokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req verifyNaverTokenRequest
	if err := callable.DecodeRequest(r, &req); err != nil {
		callable.WriteError(w, err)
		return
	}

	token, err := h.exchanger.Exchange(r.Context(), h.provider, req.NaverAccessToken)
	if err != nil {
		callable.WriteError(w, err)
		return
	}

	callable.WriteResult(w, verifyNaverTokenResponse{FirebaseCustomToken: token})
}
