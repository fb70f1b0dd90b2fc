// Package server hosts the OAuth redirect endpoint that completes a Zoho
// connection, along with connect and status helpers for operators.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/natserract/zohosync/pkg/zoho"
	zohooauth "github.com/natserract/zohosync/pkg/zoho/oauth"
	"go.uber.org/zap"
)

// Routes
const (
	CallbackPath = "/zoho/oauth/callback"
	ConnectPath  = "/zoho/connect"
	StatusPath   = "/zoho/status"
)

// OAuthFlow is the part of the token manager the server drives.
type OAuthFlow interface {
	AuthorizationURL() string
	ExchangeCode(ctx context.Context, code string) (*zohooauth.TokenResponse, error)
	Credential(ctx context.Context) (*zohooauth.Credential, error)
	APIDomain(ctx context.Context) string
}

var _ OAuthFlow = (*zohooauth.TokenManager)(nil)

// Status is the body of the status endpoint.
type Status struct {
	Connected bool       `json:"connected"`
	Expired   bool       `json:"expired"`
	APIDomain string     `json:"api_domain"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// NewStatus summarizes cred as of now.
func NewStatus(cred *zohooauth.Credential, apiDomain string, now time.Time) Status {
	status := Status{
		Connected: cred.AccessToken != "",
		Expired:   cred.Expired(now),
		APIDomain: apiDomain,
	}
	if !cred.ExpiresAt.IsZero() {
		expiresAt := cred.ExpiresAt.UTC()
		status.ExpiresAt = &expiresAt
	}
	return status
}

type Server struct {
	oauth  OAuthFlow
	logger *zap.Logger
	router *mux.Router
	now    func() time.Time
}

func New(oauth OAuthFlow, logger *zap.Logger) *Server {
	s := &Server{
		oauth:  oauth,
		logger: logger,
		router: mux.NewRouter(),
		now:    time.Now,
	}
	s.router.HandleFunc(CallbackPath, s.handleCallback).Methods(http.MethodGet)
	s.router.HandleFunc(ConnectPath, s.handleConnect).Methods(http.MethodGet)
	s.router.HandleFunc(StatusPath, s.handleStatus).Methods(http.MethodGet)
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting callback server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down callback server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errCode := query.Get("error"); errCode != "" {
		description := query.Get("error_description")
		if description == "" {
			description = errCode
		}
		s.logger.Warn("Authorization was not granted",
			zap.String("error", errCode),
			zap.String("error_description", query.Get("error_description")))
		http.Error(w, "Authorization failed: "+description, http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		s.logger.Warn("Callback without authorization code")
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	if _, err := s.oauth.ExchangeCode(r.Context(), code); err != nil {
		s.logger.Error("Failed to exchange authorization code", zap.Error(err))
		if errors.Is(err, zoho.ErrNotConfigured) {
			http.Error(w, "Zoho integration is not configured", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "Failed to obtain access token", http.StatusBadGateway)
		return
	}

	s.logger.Info("Zoho account connected")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Zoho account connected.\n"))
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	authURL := s.oauth.AuthorizationURL()
	if authURL == "" {
		http.Error(w, "Zoho integration is not configured", http.StatusServiceUnavailable)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cred, err := s.oauth.Credential(r.Context())
	if err != nil {
		s.logger.Error("Failed to read credential", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	status := NewStatus(cred, s.oauth.APIDomain(r.Context()), s.now())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
