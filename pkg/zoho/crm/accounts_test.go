package zohocrm_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httpclient "github.com/natserract/zohosync/pkg/http"
	"github.com/natserract/zohosync/pkg/zoho"
	zohocrm "github.com/natserract/zohosync/pkg/zoho/crm"
)

type staticTokens struct {
	token  string
	domain string
	err    error
}

func (s *staticTokens) AccessToken(context.Context) (string, error) { return s.token, s.err }
func (s *staticTokens) APIDomain(context.Context) string            { return s.domain }

func newTestClient(t *testing.T, handler http.Handler) (*zohocrm.Client, *staticTokens) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := &staticTokens{token: "1000.token", domain: srv.URL}
	logger := zap.NewNop()
	return zohocrm.NewClient(tokens, httpclient.NewClientWithLogger(logger), logger), tokens
}

func TestGetAccounts_DecodesPage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/v2/Accounts", r.URL.Path)
		assert.Equal(t, "Zoho-oauthtoken 1000.token", r.Header.Get("Authorization"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "200", r.URL.Query().Get("per_page"), "per_page is capped")

		w.Write([]byte(`{
			"data": [{
				"id": "4150868000000224005",
				"Account_Name": "Zylker",
				"Employees": 120,
				"Annual_Revenue": 250000.5,
				"Website": null,
				"Parent_Account": {"name": "Zylker Group", "id": "1"},
				"Tag": []
			}],
			"info": {"per_page": 200, "count": 1, "page": 2, "more_records": false}
		}`))
	}))

	resp, err := client.GetAccounts(context.Background(), 2, 500)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)

	acct := resp.Data[0]
	assert.Equal(t, "Zylker", acct.Name())
	id, ok := acct.ID.Value()
	assert.True(t, ok)
	assert.Equal(t, "4150868000000224005", id)
	employees, _ := acct.Employees.Value()
	assert.Equal(t, "120", employees)
	revenue, _ := acct.AnnualRevenue.Value()
	assert.Equal(t, "250000.5", revenue)
	_, ok = acct.Website.Value()
	assert.False(t, ok, "null is treated as absent")
	_, ok = acct.Phone.Value()
	assert.False(t, ok)
}

func TestGetAccounts_NoContent(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	resp, err := client.GetAccounts(context.Background(), 1, 50)
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
	assert.False(t, resp.Info.MoreRecords)
}

func TestGetAccounts_ProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   string
	}{
		{name: "invalid token", status: http.StatusUnauthorized, body: `{"code":"INVALID_TOKEN","details":{},"message":"invalid oauth token","status":"error"}`, code: "INVALID_TOKEN"},
		{name: "error with 200", status: http.StatusOK, body: `{"code":"OAUTH_SCOPE_MISMATCH","message":"invalid oauth scope","status":"error"}`, code: "OAUTH_SCOPE_MISMATCH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))

			_, err := client.GetAccounts(context.Background(), 1, 200)
			require.Error(t, err)
			assert.ErrorIs(t, err, zoho.ErrProvider)
			assert.ErrorContains(t, err, tt.code)
		})
	}
}

func TestGetAccounts_TokenFailure(t *testing.T) {
	client, tokens := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a token")
	}))
	tokens.err = zoho.ErrMissingRefreshToken

	_, err := client.GetAccounts(context.Background(), 1, 200)
	assert.ErrorIs(t, err, zoho.ErrMissingRefreshToken)
}

func TestGetAllAccounts_WalksPagesSequentially(t *testing.T) {
	var pages []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)

		more := page != "3"
		body := map[string]any{
			"data": []map[string]any{{"id": "id-" + page, "Account_Name": "Account " + page}},
			"info": map[string]any{"page": json.Number(page), "more_records": more},
		}
		assert.NoError(t, json.NewEncoder(w).Encode(body))
	}))

	accounts, err := client.GetAllAccounts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, pages)
	require.Len(t, accounts, 3)
	for i, acct := range accounts {
		assert.Equal(t, fmt.Sprintf("Account %d", i+1), acct.Name())
	}
}
