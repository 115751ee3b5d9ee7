package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/app"
	"fintrack/internal/config"
	"fintrack/internal/core"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
)

type harness struct {
	cfg     *config.Config
	backend *apphttp.Backend
}

func newHarness(t *testing.T) harness {
	t.Helper()
	srv := apphttp.NewServer(":0", apphttp.NewBackend(), applog.Discard(), apphttp.Options{})
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})

	cfg, err := config.LoadFrom(map[string]string{
		"FINTRACK_API_URL": ts.URL,
		"FINTRACK_DB_PATH": filepath.Join(t.TempDir(), "fintrack.db"),
	})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return harness{cfg: cfg, backend: srv.Backend()}
}

func (h harness) open(t *testing.T, input string) (*Runtime, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	rt, err := Open(context.Background(), h.cfg, Streams{In: strings.NewReader(input), Out: &out, Log: io.Discard})
	require.NoError(t, err)
	return rt, &out
}

func TestRuntimeEndToEnd(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	rt, _ := h.open(t, "")
	_, err := rt.RequireSession()
	require.Error(t, err)

	_, err = rt.Auth.Login(ctx, core.Credentials{Email: "demo@fintrack.local", Password: "demo123"})
	require.NoError(t, err)
	assert.Equal(t, app.PathDashboard, rt.Terminal.Location())
	require.NoError(t, rt.Close(ctx))

	// The session survives a restart.
	rt, out := h.open(t, "")
	userID, err := rt.RequireSession()
	require.NoError(t, err)
	assert.Equal(t, "1", userID)

	created, err := rt.Transactions.Create(ctx, core.CreateTransactionInput{
		Title: "Groceries", Amount: 120000, Type: core.Expense, Category: core.Food, Date: "2024-04-02",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Transacción creada exitosamente")
	require.NoError(t, rt.Service.Wait(ctx))
	assert.Len(t, h.backend.List("1"), 1, "background create reached the API")

	list, err := rt.Transactions.List(ctx, app.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	summary, err := rt.Transactions.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, -120000.0, summary.Balance)

	require.NoError(t, rt.Auth.Logout(ctx))
	assert.False(t, rt.Session.State().IsAuthenticated)
	assert.Equal(t, app.PathLogin, rt.Terminal.Location())
	require.NoError(t, rt.Close(ctx))

	rt, _ = h.open(t, "")
	defer rt.Close(ctx)
	_, err = rt.RequireSession()
	assert.Error(t, err, "logout cleared the stored session")
}

func TestRuntimeLoginRejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	rt, _ := h.open(t, "")
	defer rt.Close(ctx)

	_, err := rt.Auth.Login(ctx, core.Credentials{Email: "demo@fintrack.local", Password: "nope"})
	require.Error(t, err)
	st := rt.Session.State()
	assert.False(t, st.IsAuthenticated)
	assert.Equal(t, "Invalid email or password", st.Error)
}

func TestRuntimeLoginNetworkError(t *testing.T) {
	ctx := context.Background()
	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()

	cfg, err := config.LoadFrom(map[string]string{
		"FINTRACK_API_URL": url,
		"FINTRACK_DB_PATH": filepath.Join(t.TempDir(), "fintrack.db"),
	})
	require.NoError(t, err)
	rt, err := Open(ctx, cfg, Streams{In: strings.NewReader(""), Out: io.Discard, Log: io.Discard})
	require.NoError(t, err)
	defer rt.Close(ctx)

	_, err = rt.Auth.Login(ctx, core.Credentials{Email: "demo@fintrack.local", Password: "demo123"})
	assert.EqualError(t, err, "Network error. Please check your connection.")
	assert.Equal(t, "Network error. Please check your connection.", rt.Session.State().Error)
}

func TestRuntimeThemeFollowsPreferences(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	rt, _ := h.open(t, "")
	require.NoError(t, rt.Preferences.Set(ctx, "language", "en"))
	require.NoError(t, rt.Close(ctx))

	rt, _ = h.open(t, "")
	defer rt.Close(ctx)
	assert.Equal(t, "Not logged in", rt.Terminal.T("auth.notLoggedIn"))
}
