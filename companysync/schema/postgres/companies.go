package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/natserract/zohosync/companysync/services"
	"github.com/natserract/zohosync/pkg/zoho"
	"go.uber.org/zap"
)

// CompaniesSchema creates the companies table. The partial unique index keeps
// at most one company per Zoho ID even when two syncs race.
const CompaniesSchema = `
CREATE TABLE IF NOT EXISTS companies (
    id                     UUID PRIMARY KEY,
    type                   TEXT NOT NULL,
    published              BOOLEAN NOT NULL DEFAULT TRUE,
    owner_id               BIGINT NOT NULL,
    zoho_id                TEXT,
    title                  TEXT,
    phone                  TEXT,
    fax                    TEXT,
    website                TEXT,
    billing_street         TEXT,
    billing_city           TEXT,
    billing_state          TEXT,
    billing_code           TEXT,
    billing_country        TEXT,
    shipping_street        TEXT,
    shipping_city          TEXT,
    shipping_state         TEXT,
    shipping_code          TEXT,
    shipping_country       TEXT,
    annual_revenue         DOUBLE PRECISION,
    employees              BIGINT,
    industry               TEXT,
    account_type           TEXT,
    ownership              TEXT,
    ticker_symbol          TEXT,
    sic_code               TEXT,
    body_value             TEXT,
    body_format            TEXT,
    rating                 TEXT,
    account_number         TEXT,
    created_at             TIMESTAMPTZ NOT NULL,
    changed_at             TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS companies_zoho_id_key ON companies (zoho_id) WHERE zoho_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS companies_title_idx ON companies (title);
`

const companyColumns = `id, type, published, owner_id, zoho_id, title, phone, fax, website,
	billing_street, billing_city, billing_state, billing_code, billing_country,
	shipping_street, shipping_city, shipping_state, shipping_code, shipping_country,
	annual_revenue, employees, industry, account_type, ownership, ticker_symbol, sic_code,
	body_value, body_format, rating, account_number, created_at, changed_at`

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

var _ services.CompanyStore = (*CompanyStore)(nil)

// CompanyStore persists companies in Postgres.
type CompanyStore struct {
	db     *DB
	logger *zap.Logger
}

// NewCompanyStore creates a new company store
func NewCompanyStore(db *DB, logger *zap.Logger) *CompanyStore {
	return &CompanyStore{db: db, logger: logger}
}

func (s *CompanyStore) FindByZohoID(ctx context.Context, zohoID string) (*services.Company, error) {
	row := s.db.Pool().QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE zoho_id = $1`, zohoID)
	c, err := scanCompany(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: company with zoho id %s", zoho.ErrNotFound, zohoID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find company by zoho id: %w", err)
	}
	return c, nil
}

// FindByTitle returns the oldest company with exactly this title.
func (s *CompanyStore) FindByTitle(ctx context.Context, title string) (*services.Company, error) {
	row := s.db.Pool().QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE title = $1 ORDER BY created_at, id LIMIT 1`, title)
	c, err := scanCompany(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: company titled %q", zoho.ErrNotFound, title)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find company by title: %w", err)
	}
	return c, nil
}

func (s *CompanyStore) Create(ctx context.Context, c *services.Company) error {
	_, err := s.db.Pool().Exec(ctx,
		`INSERT INTO companies (`+companyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		        $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)`,
		companyArgs(c)...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			s.logger.Warn("Company with this Zoho ID already exists",
				zap.String("company_id", c.ID.String()),
				zap.String("title", c.DisplayTitle()))
		}
		return fmt.Errorf("failed to insert company: %w", err)
	}
	return nil
}

func (s *CompanyStore) Update(ctx context.Context, c *services.Company) error {
	tag, err := s.db.Pool().Exec(ctx, `
		UPDATE companies SET
			type = $2, published = $3, owner_id = $4, zoho_id = $5, title = $6, phone = $7,
			fax = $8, website = $9, billing_street = $10, billing_city = $11,
			billing_state = $12, billing_code = $13, billing_country = $14,
			shipping_street = $15, shipping_city = $16, shipping_state = $17,
			shipping_code = $18, shipping_country = $19, annual_revenue = $20,
			employees = $21, industry = $22, account_type = $23, ownership = $24,
			ticker_symbol = $25, sic_code = $26, body_value = $27, body_format = $28,
			rating = $29, account_number = $30, created_at = $31, changed_at = $32
		WHERE id = $1`,
		companyArgs(c)...)
	if err != nil {
		return fmt.Errorf("failed to update company %s: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: company %s", zoho.ErrNotFound, c.ID)
	}
	return nil
}

func (s *CompanyStore) List(ctx context.Context) ([]services.Company, error) {
	rows, err := s.db.Pool().Query(ctx,
		`SELECT `+companyColumns+` FROM companies ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []services.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

func companyArgs(c *services.Company) []any {
	var website, bodyValue, bodyFormat *string
	if c.Website != nil {
		website = &c.Website.URI
	}
	if c.Body != nil {
		bodyValue = &c.Body.Value
		bodyFormat = &c.Body.Format
	}
	return []any{
		c.ID, c.Type, c.Published, c.OwnerID, c.ZohoID, c.Title, c.Phone, c.Fax, website,
		c.BillingStreet, c.BillingCity, c.BillingState, c.BillingCode, c.BillingCountry,
		c.ShippingStreet, c.ShippingCity, c.ShippingState, c.ShippingCode, c.ShippingCountry,
		c.AnnualRevenue, c.Employees, c.Industry, c.AccountType, c.Ownership, c.TickerSymbol, c.SICCode,
		bodyValue, bodyFormat, c.Rating, c.AccountNumber, c.CreatedAt, c.ChangedAt,
	}
}

func scanCompany(row pgx.Row) (*services.Company, error) {
	var (
		c                              services.Company
		website, bodyValue, bodyFormat *string
	)
	err := row.Scan(
		&c.ID, &c.Type, &c.Published, &c.OwnerID, &c.ZohoID, &c.Title, &c.Phone, &c.Fax, &website,
		&c.BillingStreet, &c.BillingCity, &c.BillingState, &c.BillingCode, &c.BillingCountry,
		&c.ShippingStreet, &c.ShippingCity, &c.ShippingState, &c.ShippingCode, &c.ShippingCountry,
		&c.AnnualRevenue, &c.Employees, &c.Industry, &c.AccountType, &c.Ownership, &c.TickerSymbol, &c.SICCode,
		&bodyValue, &bodyFormat, &c.Rating, &c.AccountNumber, &c.CreatedAt, &c.ChangedAt,
	)
	if err != nil {
		return nil, err
	}
	if website != nil {
		c.Website = &services.Link{URI: *website}
	}
	if bodyValue != nil {
		c.Body = &services.LongText{Value: *bodyValue}
		if bodyFormat != nil {
			c.Body.Format = *bodyFormat
		}
	}
	return &c, nil
}
