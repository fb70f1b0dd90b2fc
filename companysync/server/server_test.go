package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/natserract/zohosync/companysync/server"
	"github.com/natserract/zohosync/pkg/config"
	"github.com/natserract/zohosync/pkg/state"
	zohooauth "github.com/natserract/zohosync/pkg/zoho/oauth"
)

type fixture struct {
	handler   http.Handler
	store     *state.MemoryStore
	exchanges *int32
}

func newFixture(t *testing.T, cfg *config.Config, tokenStatus int, tokenBody string) *fixture {
	t.Helper()

	var exchanges int32
	accounts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&exchanges, 1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "grant-123", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(tokenStatus)
		w.Write([]byte(tokenBody))
	}))
	t.Cleanup(accounts.Close)

	cfg.AccountsURL = accounts.URL
	store := state.NewMemoryStore()
	tm := zohooauth.NewTokenManager(cfg, store, zap.NewNop())

	return &fixture{
		handler:   server.New(tm, zap.NewNop()).Handler(),
		store:     store,
		exchanges: &exchanges,
	}
}

func configured() *config.Config {
	return &config.Config{
		ClientID:     "1000.CLIENT",
		ClientSecret: "secret",
		RedirectURI:  "https://example.com/zoho/oauth/callback",
		Scopes:       config.DefaultScopes,
	}
}

func (f *fixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestCallback_ExchangesCode(t *testing.T) {
	f := newFixture(t, configured(), http.StatusOK,
		`{"access_token":"1000.access","refresh_token":"1000.refresh","expires_in":3600,"api_domain":"https://www.zohoapis.eu"}`)

	rec := f.get(t, server.CallbackPath+"?code=grant-123&location=eu")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(f.exchanges))

	token, ok, err := f.store.Get(context.Background(), zohooauth.KeyAccessToken)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1000.access", token)

	rec = f.get(t, server.StatusPath)
	require.Equal(t, http.StatusOK, rec.Code)
	var status server.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Connected)
	assert.False(t, status.Expired)
	assert.Equal(t, "https://www.zohoapis.eu", status.APIDomain)
	assert.NotNil(t, status.ExpiresAt)
}

func TestCallback_RejectsErrorsWithoutExchange(t *testing.T) {
	f := newFixture(t, configured(), http.StatusOK, `{"access_token":"unused"}`)

	rec := f.get(t, server.CallbackPath+"?error=access_denied&error_description=User+denied")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User denied")

	rec = f.get(t, server.CallbackPath)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Zero(t, atomic.LoadInt32(f.exchanges))
	_, ok, err := f.store.Get(context.Background(), zohooauth.KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCallback_ProviderFailure(t *testing.T) {
	f := newFixture(t, configured(), http.StatusOK, `{"error":"invalid_code"}`)

	rec := f.get(t, server.CallbackPath+"?code=grant-123")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	_, ok, err := f.store.Get(context.Background(), zohooauth.KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConnect(t *testing.T) {
	f := newFixture(t, configured(), http.StatusOK, `{}`)

	rec := f.get(t, server.ConnectPath)
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/oauth/v2/auth", loc.Path)
	assert.Equal(t, "code", loc.Query().Get("response_type"))
	assert.Equal(t, "offline", loc.Query().Get("access_type"))

	unconfigured := newFixture(t, &config.Config{}, http.StatusOK, `{}`)
	rec = unconfigured.get(t, server.ConnectPath)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatus_NotConnected(t *testing.T) {
	f := newFixture(t, configured(), http.StatusOK, `{}`)

	rec := f.get(t, server.StatusPath)
	require.Equal(t, http.StatusOK, rec.Code)
	var status server.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Connected)
	assert.True(t, status.Expired)
	assert.Equal(t, config.DefaultAPIDomain, status.APIDomain)
	assert.Nil(t, status.ExpiresAt)
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	f := newFixture(t, configured(), http.StatusOK, `{}`)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, server.StatusPath, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
