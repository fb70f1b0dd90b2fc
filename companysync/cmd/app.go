package cmd

import (
	"context"
	"fmt"

	"github.com/natserract/zohosync/companysync/schema/postgres"
	"github.com/natserract/zohosync/companysync/services"
	"github.com/natserract/zohosync/pkg/config"
	httpclient "github.com/natserract/zohosync/pkg/http"
	"github.com/natserract/zohosync/pkg/state"
	zohocampaigns "github.com/natserract/zohosync/pkg/zoho/campaigns"
	zohocrm "github.com/natserract/zohosync/pkg/zoho/crm"
	zohooauth "github.com/natserract/zohosync/pkg/zoho/oauth"
	"go.uber.org/zap"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	httpClient *httpclient.Client
	store      state.Store
	tokens     *zohooauth.TokenManager

	db      *postgres.DB
	closers []func()
}

func newApp(ctx context.Context) (*app, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		httpClient: httpclient.NewClientWithOptions(logger, httpclient.ClientOptions{
			MaxTries: cfg.HTTPMaxTries,
		}),
	}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	if err := a.openStateStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.tokens = zohooauth.NewTokenManager(cfg, a.store, logger, zohooauth.WithHTTPClient(a.httpClient))
	return a, nil
}

func (a *app) openStateStore(ctx context.Context) error {
	switch a.cfg.StateBackend {
	case config.StateBackendMemory:
		a.logger.Warn("Using in-memory state, credentials will not survive this process")
		a.store = state.NewMemoryStore()

	case config.StateBackendPostgres:
		db, err := a.database(ctx)
		if err != nil {
			return err
		}
		pg := state.NewPostgresStore(db.Pool(), a.logger)
		if err := pg.InitSchema(ctx); err != nil {
			return err
		}
		a.store = pg

	default:
		sqlite, err := state.OpenSQLite(a.cfg.StateDBPath, a.logger)
		if err != nil {
			return fmt.Errorf("failed to open state database: %w", err)
		}
		a.closers = append(a.closers, func() { _ = sqlite.Close() })
		a.store = sqlite
	}
	return nil
}

// database connects to Postgres once and reuses the pool.
func (a *app) database(ctx context.Context) (*postgres.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := postgres.New(ctx, postgres.NewConfig(), a.logger)
	if err != nil {
		a.logger.Error("Failed to connect to database", zap.Error(err))
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, db.Close)
	return db, nil
}

// companyStore returns the Postgres company store, or an in-memory one when
// the memory state backend is selected.
func (a *app) companyStore(ctx context.Context) (services.CompanyStore, error) {
	if a.cfg.StateBackend == config.StateBackendMemory {
		return services.NewMemoryCompanyStore(), nil
	}
	db, err := a.database(ctx)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(ctx); err != nil {
		return nil, err
	}
	return postgres.NewCompanyStore(db, a.logger), nil
}

func (a *app) crm() *zohocrm.Client {
	return zohocrm.NewClient(a.tokens, a.httpClient, a.logger)
}

func (a *app) campaigns() *zohocampaigns.Client {
	return zohocampaigns.NewClient(a.cfg, a.tokens, a.httpClient, a.logger)
}

// Close releases resources in reverse order of acquisition. It is safe to
// call more than once.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
