package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natserract/zohosync/companysync/server"
	"github.com/natserract/zohosync/pkg/zoho"
	zohocrm "github.com/natserract/zohosync/pkg/zoho/crm"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Setenv("STATE_BACKEND", "memory")
	outputFormat = formatText
	t.Cleanup(func() { application = nil })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAuthURLCommand(t *testing.T) {
	t.Setenv("ZOHO_CLIENT_ID", "1000.CLIENT")
	t.Setenv("ZOHO_REDIRECT_URI", "https://example.com/zoho/oauth/callback")

	out, err := runCommand(t, "auth-url")
	require.NoError(t, err)

	u, err := url.Parse(string(bytes.TrimSpace([]byte(out))))
	require.NoError(t, err)
	assert.Equal(t, "1000.CLIENT", u.Query().Get("client_id"))
	assert.Equal(t, "offline", u.Query().Get("access_type"))
}

func TestAuthURLCommand_NotConfigured(t *testing.T) {
	t.Setenv("ZOHO_CLIENT_ID", "")
	t.Setenv("ZOHO_REDIRECT_URI", "")

	_, err := runCommand(t, "auth-url")
	assert.ErrorIs(t, err, zoho.ErrNotConfigured)
}

func TestStatusCommand_JSON(t *testing.T) {
	out, err := runCommand(t, "status", "-o", "json")
	require.NoError(t, err)

	var status server.Status
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.False(t, status.Connected)
	assert.Equal(t, "https://www.zohoapis.com", status.APIDomain)
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, table(&buf, []string{"KEY", "NAME"}, [][]string{{"lk1", "Newsletter"}}))
	assert.Equal(t, "KEY  NAME\nlk1  Newsletter\n", buf.String())
}

func TestAccountsTable(t *testing.T) {
	var accounts []zohocrm.Account
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id": "1", "Account_Name": "  Acme  ", "Industry": "Retail", "Website": "acme.test"},
		{"id": 2, "Account_Name": "Globex"}
	]`), &accounts))

	var buf bytes.Buffer
	require.NoError(t, accountsTable(&buf, accounts))
	assert.Equal(t, "ID  NAME    INDUSTRY  WEBSITE\n1   Acme    Retail    acme.test\n2   Globex            \n", buf.String())
}

func TestAccountsCommand_AllExcludesPage(t *testing.T) {
	_, err := runCommand(t, "accounts", "--all", "--page", "2")
	assert.Error(t, err)
}
