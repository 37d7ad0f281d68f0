package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howsu-app/howsu-backend/internal/callable"
	"github.com/howsu-app/howsu-backend/internal/exchange"
	"github.com/howsu-app/howsu-backend/internal/provider"
	"github.com/howsu-app/howsu-backend/internal/testutil"
)

func postCallable(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestKakaoLoginHandlerIssuesToken(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	minter := &testutil.FakeMinter{}
	kakao := &testutil.StaticProvider{
		ProviderName: "kakao",
		Profile:      &provider.Profile{ID: "555", Email: "a@b.com", Nickname: "ddobi"},
	}
	handler := NewKakaoLoginHandler(exchange.New(dir, minter), kakao)

	rec := postCallable(t, handler, `{"data": {"token": "abc"}}`)

	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	var result struct {
		FirebaseToken string `json:"firebaseToken"`
	}
	require.NoError(t, json.Unmarshal(envelope["result"], &result))
	assert.NotEmpty(t, result.FirebaseToken)
	assert.Equal(t, []string{"kakao:555"}, minter.MintedUIDs)
}

func TestKakaoLoginHandlerMissingToken(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	minter := &testutil.FakeMinter{}
	kakao := &testutil.StaticProvider{ProviderName: "kakao", Profile: &provider.Profile{ID: "1"}}
	handler := NewKakaoLoginHandler(exchange.New(dir, minter), kakao)

	rec := postCallable(t, handler, `{"data": {}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	var callErr callable.Error
	require.NoError(t, json.Unmarshal(envelope["error"], &callErr))
	assert.Equal(t, callable.CodeInvalidArgument, callErr.Code)
	assert.Contains(t, callErr.Message, "kakao access token is required")
}

func TestKakaoLoginHandlerRejectedToken(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	minter := &testutil.FakeMinter{}
	kakao := &testutil.StaticProvider{
		ProviderName: "kakao",
		FetchErr:     callable.NewError(callable.CodeUnauthenticated, "kakao access token was rejected"),
	}
	handler := NewKakaoLoginHandler(exchange.New(dir, minter), kakao)

	rec := postCallable(t, handler, `{"data": {"token": "expired"}}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	envelope := decodeEnvelope(t, rec)
	var callErr callable.Error
	require.NoError(t, json.Unmarshal(envelope["error"], &callErr))
	assert.Equal(t, callable.CodeUnauthenticated, callErr.Code)
}

func TestKakaoLoginHandlerMalformedBody(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	minter := &testutil.FakeMinter{}
	kakao := &testutil.StaticProvider{ProviderName: "kakao", Profile: &provider.Profile{ID: "1"}}
	handler := NewKakaoLoginHandler(exchange.New(dir, minter), kakao)

	rec := postCallable(t, handler, `not json`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, minter.MintedUIDs)
}

func TestVerifyNaverTokenHandlerIssuesToken(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	minter := &testutil.FakeMinter{}
	naver := &testutil.StaticProvider{
		ProviderName: "naver",
		Profile:      &provider.Profile{ID: "nv-9"},
	}
	handler := NewVerifyNaverTokenHandler(exchange.New(dir, minter), naver)

	rec := postCallable(t, handler, `{"data": {"naverAccessToken": "xyz"}}`)

	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	var result struct {
		FirebaseCustomToken string `json:"firebaseCustomToken"`
	}
	require.NoError(t, json.Unmarshal(envelope["result"], &result))
	assert.NotEmpty(t, result.FirebaseCustomToken)
	assert.Equal(t, []string{"naver:nv-9"}, minter.MintedUIDs)
	assert.Equal(t, 0, dir.LookupCalls, "naver logins never touch the directory")
}

func TestVerifyNaverTokenHandlerMissingToken(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	minter := &testutil.FakeMinter{}
	naver := &testutil.StaticProvider{ProviderName: "naver", Profile: &provider.Profile{ID: "nv-9"}}
	handler := NewVerifyNaverTokenHandler(exchange.New(dir, minter), naver)

	rec := postCallable(t, handler, `{"data": {"naverAccessToken": ""}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	var callErr callable.Error
	require.NoError(t, json.Unmarshal(envelope["error"], &callErr))
	assert.Equal(t, callable.CodeInvalidArgument, callErr.Code)
	assert.Contains(t, callErr.Message, "naver access token is required")
}

func TestLoginHandlersRejectGet(t *testing.T) {
	dir := testutil.NewFakeDirectory()
	minter := &testutil.FakeMinter{}
	kakao := &testutil.StaticProvider{ProviderName: "kakao", Profile: &provider.Profile{ID: "1"}}
	handler := NewKakaoLoginHandler(exchange.New(dir, minter), kakao)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
