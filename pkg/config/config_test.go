package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natserract/zohosync/pkg/zoho"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ZOHO_CLIENT_ID", "1000.ABC")
	t.Setenv("ZOHO_SCOPES", "")
	t.Setenv("STATE_BACKEND", "")
	t.Setenv("HTTP_MAX_TRIES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "1000.ABC", cfg.ClientID)
	assert.Equal(t, DefaultScopes, cfg.Scopes)
	assert.Equal(t, DefaultAccountsURL, cfg.AccountsURL)
	assert.Equal(t, DefaultCampaignsURL, cfg.CampaignsURL)
	assert.Equal(t, StateBackendSQLite, cfg.StateBackend)
	assert.Equal(t, uint(1), cfg.HTTPMaxTries)
}

func TestLoad_ScopesAndTries(t *testing.T) {
	t.Setenv("ZOHO_SCOPES", " ZohoCRM.modules.ALL , ,ZohoCampaigns.campaign.ALL")
	t.Setenv("HTTP_MAX_TRIES", "3")
	t.Setenv("STATE_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"ZohoCRM.modules.ALL", "ZohoCampaigns.campaign.ALL"}, cfg.Scopes)
	assert.Equal(t, uint(3), cfg.HTTPMaxTries)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("HTTP_MAX_TRIES", "zero")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("HTTP_MAX_TRIES", "")
	t.Setenv("STATE_BACKEND", "redis")
	_, err = Load()
	assert.ErrorContains(t, err, "STATE_BACKEND")
}

func TestValidateCredentials(t *testing.T) {
	cfg := &Config{ClientID: "id", ClientSecret: "secret"}
	err := cfg.ValidateCredentials()
	require.Error(t, err)
	assert.ErrorIs(t, err, zoho.ErrNotConfigured)
	assert.ErrorContains(t, err, "ZOHO_REDIRECT_URI")

	cfg.RedirectURI = "https://example.com/zoho/oauth/callback"
	assert.NoError(t, cfg.ValidateCredentials())
}
