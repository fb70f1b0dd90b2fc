package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/natserract/zohosync/companysync/services"
	"github.com/natserract/zohosync/pkg/zoho"
	zohocrm "github.com/natserract/zohosync/pkg/zoho/crm"
)

// setupTestDB connects to the database described by DB_* and starts from an
// empty companies table. Set DB_INTEGRATION=1 to run.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	if os.Getenv("DB_INTEGRATION") == "" {
		t.Skip("DB_INTEGRATION not set")
	}

	ctx := context.Background()
	db, err := New(ctx, NewConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.InitSchema(ctx))
	_, err = db.Pool().Exec(ctx, `TRUNCATE companies`)
	require.NoError(t, err)
	return db
}

func TestCompanyStore_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	store := NewCompanyStore(db, zap.NewNop())
	ctx := context.Background()

	zohoID, title := "4150868000000224005", "Acme"
	revenue, employees := 1250.5, int64(40)
	c := services.NewCompany(services.CompanyAttributes{
		Type:          services.CompanyType,
		Published:     true,
		OwnerID:       services.DefaultOwnerID,
		ZohoID:        &zohoID,
		Title:         &title,
		Website:       &services.Link{URI: "http://acme.example.com"},
		AnnualRevenue: &revenue,
		Employees:     &employees,
		Body:          &services.LongText{Value: "<p>Anvils</p>", Format: services.BasicHTML},
	}, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, store.Create(ctx, c))

	got, err := store.FindByZohoID(ctx, zohoID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "Acme", got.DisplayTitle())
	assert.Equal(t, "http://acme.example.com", got.Website.URI)
	assert.Equal(t, services.BasicHTML, got.Body.Format)
	assert.Equal(t, int64(40), *got.Employees)
	assert.Nil(t, got.Phone)

	byTitle, err := store.FindByTitle(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byTitle.ID)

	_, err = store.FindByZohoID(ctx, "missing")
	assert.ErrorIs(t, err, zoho.ErrNotFound)
}

func TestCompanyStore_UniqueZohoID(t *testing.T) {
	db := setupTestDB(t)
	store := NewCompanyStore(db, zap.NewNop())
	ctx := context.Background()

	zohoID := "42"
	first := services.NewCompany(services.CompanyAttributes{Type: services.CompanyType, ZohoID: &zohoID}, time.Now())
	second := services.NewCompany(services.CompanyAttributes{Type: services.CompanyType, ZohoID: &zohoID}, time.Now())

	require.NoError(t, store.Create(ctx, first))
	assert.Error(t, store.Create(ctx, second))
}

func TestCompanyStore_SyncIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	store := NewCompanyStore(db, zap.NewNop())
	ctx := context.Background()

	id, name := zohocrm.Scalar("7"), zohocrm.Scalar("Seven Corp")
	batch := []zohocrm.Account{{ID: &id, AccountName: &name}}
	syncer := services.NewAccountSyncer(nil, store, zap.NewNop())

	assert.Equal(t, 1, syncer.SyncBatch(ctx, batch).Created)
	assert.Equal(t, 1, syncer.SyncBatch(ctx, batch).Updated)

	companies, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, companies, 1)
}
