package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/natserract/zohosync/pkg/zoho"
)

const (
	DefaultAccountsURL  = "https://accounts.zoho.com"
	DefaultCampaignsURL = "https://campaigns.zoho.com/api/v1.1"
	DefaultAPIDomain    = "https://www.zohoapis.com"
	DefaultStateDBPath  = "zohosync.db"
	DefaultListenAddr   = ":8080"
)

// DefaultScopes are requested when ZOHO_SCOPES is unset.
var DefaultScopes = []string{
	"ZohoCampaigns.contact.UPDATE",
	"ZohoCampaigns.contact.READ",
	"ZohoCampaigns.campaign.ALL",
	"ZohoCRM.modules.ALL",
}

// State backends
const (
	StateBackendSQLite   = "sqlite"
	StateBackendPostgres = "postgres"
	StateBackendMemory   = "memory"
)

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	AccountsURL  string
	CampaignsURL string
	APIDomain    string

	HTTPMaxTries uint

	StateBackend string
	StateDBPath  string
	ListenAddr   string
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		ClientID:     os.Getenv("ZOHO_CLIENT_ID"),
		ClientSecret: os.Getenv("ZOHO_CLIENT_SECRET"),
		RedirectURI:  os.Getenv("ZOHO_REDIRECT_URI"),
		Scopes:       splitScopes(os.Getenv("ZOHO_SCOPES")),
		AccountsURL:  getEnv("ZOHO_ACCOUNTS_URL", DefaultAccountsURL),
		CampaignsURL: getEnv("ZOHO_CAMPAIGNS_URL", DefaultCampaignsURL),
		APIDomain:    getEnv("ZOHO_API_DOMAIN", DefaultAPIDomain),
		StateBackend: getEnv("STATE_BACKEND", StateBackendSQLite),
		StateDBPath:  getEnv("STATE_DB_PATH", DefaultStateDBPath),
		ListenAddr:   getEnv("LISTEN_ADDR", DefaultListenAddr),
		HTTPMaxTries: 1,
	}

	if raw := os.Getenv("HTTP_MAX_TRIES"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("HTTP_MAX_TRIES must be a positive integer, got %q", raw)
		}
		cfg.HTTPMaxTries = uint(n)
	}

	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings that must hold for any command. Zoho credentials
// are checked separately by ValidateCredentials since some commands run
// before the integration is configured.
func (c *Config) Validate() error {
	switch c.StateBackend {
	case StateBackendSQLite, StateBackendPostgres, StateBackendMemory:
	default:
		return fmt.Errorf("STATE_BACKEND must be one of sqlite, postgres, memory, got %q", c.StateBackend)
	}
	if c.StateBackend == StateBackendSQLite && c.StateDBPath == "" {
		return fmt.Errorf("STATE_DB_PATH is required for the sqlite state backend")
	}
	if c.AccountsURL == "" {
		return fmt.Errorf("ZOHO_ACCOUNTS_URL is required")
	}
	return nil
}

// ValidateCredentials reports missing OAuth client settings as ErrNotConfigured.
func (c *Config) ValidateCredentials() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: ZOHO_CLIENT_ID is required", zoho.ErrNotConfigured)
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("%w: ZOHO_CLIENT_SECRET is required", zoho.ErrNotConfigured)
	}
	if c.RedirectURI == "" {
		return fmt.Errorf("%w: ZOHO_REDIRECT_URI is required", zoho.ErrNotConfigured)
	}
	return nil
}

func splitScopes(raw string) []string {
	var scopes []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
