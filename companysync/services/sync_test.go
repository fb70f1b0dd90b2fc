package services_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/natserract/zohosync/companysync/services"
	"github.com/natserract/zohosync/pkg/zoho"
	zohocrm "github.com/natserract/zohosync/pkg/zoho/crm"
)

type fakeCRM struct {
	pages [][]zohocrm.Account
	err   error
	// failPage is 1-based; 0 never fails.
	failPage int
}

func (f *fakeCRM) GetAccounts(_ context.Context, page, _ int) (*zohocrm.AccountsResponse, error) {
	if page == f.failPage {
		return nil, f.err
	}
	if page > len(f.pages) {
		return &zohocrm.AccountsResponse{}, nil
	}
	return &zohocrm.AccountsResponse{
		Data: f.pages[page-1],
		Info: zohocrm.PageInfo{Page: page, Count: len(f.pages[page-1]), MoreRecords: page < len(f.pages)},
	}, nil
}

func (f *fakeCRM) GetAllAccounts(ctx context.Context) ([]zohocrm.Account, error) {
	var all []zohocrm.Account
	for _, p := range f.pages {
		all = append(all, p...)
	}
	return all, nil
}

// faultyStore fails or panics on Create for one title.
type faultyStore struct {
	*services.MemoryCompanyStore
	failTitle  string
	panicTitle string
}

func (s *faultyStore) Create(ctx context.Context, c *services.Company) error {
	switch c.DisplayTitle() {
	case s.failTitle:
		return errors.New("disk full")
	case s.panicTitle:
		panic("boom")
	}
	return s.MemoryCompanyStore.Create(ctx, c)
}

func account(id, name string) zohocrm.Account {
	a := zohocrm.Account{ID: scalar(id)}
	if name != "" {
		a.AccountName = scalar(name)
	}
	return a
}

func seedCompany(t *testing.T, store services.CompanyStore, zohoID, title string) *services.Company {
	t.Helper()
	attrs := services.CompanyAttributes{Type: services.CompanyType, Published: true, OwnerID: 7}
	if zohoID != "" {
		attrs.ZohoID = &zohoID
	}
	attrs.Title = &title
	c := services.NewCompany(attrs, time.Now().Add(-time.Hour))
	require.NoError(t, store.Create(context.Background(), c))
	return c
}

func TestSyncBatch_Outcomes(t *testing.T) {
	batch := []zohocrm.Account{
		account("100", ""),
		account("150", "   "),
		account("200", "Existing Corp"),
		account("300", "New Corp"),
	}

	for i := 0; i < 5; i++ {
		store := services.NewMemoryCompanyStore()
		seedCompany(t, store, "200", "Old Name")

		shuffled := append([]zohocrm.Account(nil), batch...)
		rand.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		syncer := services.NewAccountSyncer(&fakeCRM{}, store, zap.NewNop())
		report := syncer.SyncBatch(context.Background(), shuffled)

		assert.Equal(t, services.SyncReport{Created: 1, Updated: 1, Skipped: 2, Errors: 0}, *report)
		companies, err := store.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, companies, 2)
	}
}

func TestSyncBatch_UpdateKeepsTypeAndOwner(t *testing.T) {
	ctx := context.Background()
	store := services.NewMemoryCompanyStore()
	seeded := seedCompany(t, store, "200", "Old Name")
	oldPhone := "111"
	seeded.Phone = &oldPhone
	require.NoError(t, store.Update(ctx, seeded))

	a := account("200", "New Name")
	a.Industry = scalar("Retail")

	syncedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	syncer := services.NewAccountSyncer(&fakeCRM{}, store, zap.NewNop(),
		services.WithSyncClock(func() time.Time { return syncedAt }))
	report := syncer.SyncBatch(ctx, []zohocrm.Account{a})
	require.Equal(t, 1, report.Updated)

	got, err := store.FindByZohoID(ctx, "200")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)
	assert.Equal(t, "New Name", got.DisplayTitle())
	assert.Equal(t, "Retail", *got.Industry)
	assert.Equal(t, "111", *got.Phone, "attributes absent from the account are kept")
	assert.Equal(t, int64(7), got.OwnerID)
	assert.Equal(t, seeded.CreatedAt, got.CreatedAt)
	assert.True(t, got.ChangedAt.Equal(syncedAt))
}

func TestSyncBatch_MatchesByTitleWithoutZohoID(t *testing.T) {
	ctx := context.Background()
	store := services.NewMemoryCompanyStore()
	seeded := seedCompany(t, store, "", "Acme")

	syncer := services.NewAccountSyncer(&fakeCRM{}, store, zap.NewNop())
	report := syncer.SyncBatch(ctx, []zohocrm.Account{account("900", "Acme")})
	require.Equal(t, 1, report.Updated)

	got, err := store.FindByZohoID(ctx, "900")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, got.ID)
}

func TestSyncBatch_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := services.NewMemoryCompanyStore()
	batch := []zohocrm.Account{
		account("1", "Alpha"),
		account("2", "Beta"),
		account("3", "Gamma"),
	}
	syncer := services.NewAccountSyncer(&fakeCRM{}, store, zap.NewNop())

	first := syncer.SyncBatch(ctx, batch)
	assert.Equal(t, services.SyncReport{Created: 3}, *first)

	second := syncer.SyncBatch(ctx, batch)
	assert.Equal(t, services.SyncReport{Updated: 3}, *second)

	companies, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, companies, 3)
}

func TestSyncBatch_IsolatesFailures(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	store := &faultyStore{
		MemoryCompanyStore: services.NewMemoryCompanyStore(),
		failTitle:          "Broken",
		panicTitle:         "Explosive",
	}

	syncer := services.NewAccountSyncer(&fakeCRM{}, store, zap.New(core))
	report := syncer.SyncBatch(context.Background(), []zohocrm.Account{
		account("1", "Broken"),
		account("2", "Explosive"),
		account("3", "Fine"),
	})

	assert.Equal(t, services.SyncReport{Created: 1, Errors: 2}, *report)

	failures := logs.FilterMessage("Failed to sync account").All()
	require.Len(t, failures, 2)
	assert.Equal(t, "Broken", failures[0].ContextMap()["account_name"])
	assert.Equal(t, "Explosive", failures[1].ContextMap()["account_name"])
}

func TestSyncBatch_DryRunWritesNothing(t *testing.T) {
	store := services.NewMemoryCompanyStore()
	syncer := services.NewAccountSyncer(&fakeCRM{}, store, zap.NewNop(), services.WithDryRun())

	report := syncer.SyncBatch(context.Background(), []zohocrm.Account{account("1", "Alpha")})
	assert.Equal(t, 1, report.Created)

	companies, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, companies)
}

func TestSyncAll_Pages(t *testing.T) {
	store := services.NewMemoryCompanyStore()
	crm := &fakeCRM{pages: [][]zohocrm.Account{
		{account("1", "Alpha"), account("2", "")},
		{account("3", "Gamma")},
	}}

	syncer := services.NewAccountSyncer(crm, store, zap.NewNop())
	report, err := syncer.SyncAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, services.SyncReport{Created: 2, Skipped: 1}, *report)
	assert.Equal(t, 3, report.Total())
}

func TestSyncAll_FetchFailureReturnsPartialReport(t *testing.T) {
	store := services.NewMemoryCompanyStore()
	crm := &fakeCRM{
		pages:    [][]zohocrm.Account{{account("1", "Alpha")}, {account("2", "Beta")}},
		failPage: 2,
		err:      &zoho.TransportError{Endpoint: "crm accounts", Err: errors.New("connection reset")},
	}

	syncer := services.NewAccountSyncer(crm, store, zap.NewNop())
	report, err := syncer.SyncAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, zoho.ErrTransport)
	assert.Equal(t, 1, report.Created)
}

func TestMemoryCompanyStore_RejectsDuplicateZohoID(t *testing.T) {
	store := services.NewMemoryCompanyStore()
	seedCompany(t, store, "42", "One")

	id := "42"
	title := "Two"
	dup := services.NewCompany(services.CompanyAttributes{ZohoID: &id, Title: &title}, time.Now())
	assert.Error(t, store.Create(context.Background(), dup))

	_, err := store.FindByTitle(context.Background(), "Nobody")
	assert.ErrorIs(t, err, zoho.ErrNotFound)
}
