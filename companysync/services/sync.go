package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/natserract/zohosync/pkg/zoho"
	zohocrm "github.com/natserract/zohosync/pkg/zoho/crm"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

// SyncReport counts the outcome of every account in a sync.
type SyncReport struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// Add accumulates other into r.
func (r *SyncReport) Add(other *SyncReport) {
	r.Created += other.Created
	r.Updated += other.Updated
	r.Skipped += other.Skipped
	r.Errors += other.Errors
}

// Total returns the number of accounts processed.
func (r *SyncReport) Total() int {
	return r.Created + r.Updated + r.Skipped + r.Errors
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeUpdated
	outcomeSkipped
)

// AccountSyncer reconciles Zoho CRM accounts into the company store. Accounts
// are processed one at a time, in order.
type AccountSyncer struct {
	crm    zohocrm.CRMClient
	store  CompanyStore
	mapper *Mapper
	logger *zap.Logger
	now    func() time.Time
	dryRun bool
}

// SyncOption configures an AccountSyncer.
type SyncOption func(*AccountSyncer)

// WithDryRun matches accounts and counts outcomes without writing.
func WithDryRun() SyncOption {
	return func(s *AccountSyncer) { s.dryRun = true }
}

// WithSyncClock replaces time.Now for created and changed timestamps.
func WithSyncClock(now func() time.Time) SyncOption {
	return func(s *AccountSyncer) { s.now = now }
}

// NewAccountSyncer creates a new account syncer
func NewAccountSyncer(crm zohocrm.CRMClient, store CompanyStore, logger *zap.Logger, opts ...SyncOption) *AccountSyncer {
	s := &AccountSyncer{
		crm:    crm,
		store:  store,
		mapper: NewMapper(logger),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncAll fetches every CRM account page by page and syncs each page. On a
// fetch failure the report of the pages already synced is returned with the
// error.
func (s *AccountSyncer) SyncAll(ctx context.Context) (*SyncReport, error) {
	startTime := time.Now()
	s.logger.Info("Starting account sync", zap.Bool("dry_run", s.dryRun))

	report := &SyncReport{}
	for page := 1; ; page++ {
		resp, err := s.crm.GetAccounts(ctx, page, zohocrm.MaxPerPage)
		if err != nil {
			s.logger.Error("Failed to fetch accounts page", zap.Int("page", page), zap.Error(err))
			return report, fmt.Errorf("failed to fetch accounts page %d: %w", page, err)
		}

		report.Add(s.SyncBatch(ctx, resp.Data))
		if !resp.Info.MoreRecords || len(resp.Data) == 0 {
			break
		}
	}

	s.logger.Info("Completed account sync",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors))
	return report, nil
}

// SyncBatch syncs accounts in order. A failing or panicking account is
// counted in Errors and the batch carries on.
func (s *AccountSyncer) SyncBatch(ctx context.Context, accounts []zohocrm.Account) *SyncReport {
	runID := uuid.New()
	logger := s.logger.With(zap.String("sync_run_id", runID.String()))
	logger.Info("Syncing accounts batch", zap.Int("items_count", len(accounts)))

	report := &SyncReport{}
	for i := range accounts {
		account := &accounts[i]

		var (
			result outcome
			err    error
			pc     panics.Catcher
		)
		pc.Try(func() {
			result, err = s.syncAccount(ctx, logger, account)
		})
		if recovered := pc.Recovered(); recovered != nil {
			err = recovered.AsError()
		}

		if err != nil {
			report.Errors++
			logger.Error("Failed to sync account",
				zap.String("account_name", account.Name()),
				zap.Error(err))
			continue
		}

		switch result {
		case outcomeCreated:
			report.Created++
		case outcomeUpdated:
			report.Updated++
		case outcomeSkipped:
			report.Skipped++
		}
	}

	logger.Info("Synced accounts batch",
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors))
	return report
}

func (s *AccountSyncer) syncAccount(ctx context.Context, logger *zap.Logger, account *zohocrm.Account) (outcome, error) {
	name := account.Name()
	if name == "" {
		zohoID, _ := account.ID.Value()
		logger.Warn("Skipping account without name", zap.String("zoho_id", zohoID))
		return outcomeSkipped, nil
	}

	attrs := s.mapper.MapAccount(account)

	existing, err := s.findExisting(ctx, &attrs)
	if err != nil {
		return 0, err
	}

	now := s.now()
	if existing != nil {
		existing.Apply(attrs, now)
		if !s.dryRun {
			if err := s.store.Update(ctx, existing); err != nil {
				return 0, fmt.Errorf("failed to update company %s: %w", existing.ID, err)
			}
		}
		logger.Info("Updated company",
			zap.String("account_name", name),
			zap.String("company_id", existing.ID.String()))
		return outcomeUpdated, nil
	}

	company := NewCompany(attrs, now)
	if !s.dryRun {
		if err := s.store.Create(ctx, company); err != nil {
			return 0, fmt.Errorf("failed to create company: %w", err)
		}
	}
	logger.Info("Created company",
		zap.String("account_name", name),
		zap.String("company_id", company.ID.String()))
	return outcomeCreated, nil
}

// findExisting matches by Zoho ID first, then by exact title. It returns nil
// without error when nothing matches.
func (s *AccountSyncer) findExisting(ctx context.Context, attrs *CompanyAttributes) (*Company, error) {
	if attrs.ZohoID != nil {
		c, err := s.store.FindByZohoID(ctx, *attrs.ZohoID)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, zoho.ErrNotFound) {
			return nil, fmt.Errorf("failed to find company by zoho id: %w", err)
		}
	}
	if attrs.Title != nil {
		c, err := s.store.FindByTitle(ctx, *attrs.Title)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, zoho.ErrNotFound) {
			return nil, fmt.Errorf("failed to find company by title: %w", err)
		}
	}
	return nil, nil
}
