// Package features provides shared test utilities for dashboard
// feature handler tests.
package features

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/indexlens/indexlens/internal/mapping"
	"github.com/indexlens/indexlens/internal/preview"
	"github.com/indexlens/indexlens/internal/search"
	"github.com/indexlens/indexlens/internal/testutil"
	"github.com/indexlens/indexlens/internal/ui/features/common"
	"github.com/indexlens/indexlens/internal/ui/registry"
)

// TestFixture holds the dependencies feature handler tests need: a
// search client pointed at a fake cluster, a session registry over it,
// and the shared settings and cookie store.
type TestFixture struct {
	Client       *search.Client
	Registry     *registry.Registry
	Settings     *common.Settings
	SessionStore *sessions.CookieStore
}

// SetupTestFixture starts an httptest server around clusterHandler and
// wires the full handler dependency set to it.
func SetupTestFixture(t *testing.T, clusterHandler http.Handler) *TestFixture {
	t.Helper()

	srv := httptest.NewServer(clusterHandler)
	t.Cleanup(srv.Close)

	client, err := search.New(search.Config{URL: srv.URL}, testutil.NewTestLogger(t))
	require.NoError(t, err)

	// A short debounce keeps refresh tests from sleeping through the
	// production interval.
	settings := common.NewSettings(preview.DefaultRowLimit, mapping.PolicyKeyword, 10*time.Millisecond)

	factory := func(onChange func()) *preview.Session {
		keep, err := mapping.FilterForPolicy(settings.Policy())
		require.NoError(t, err)
		return preview.New(client, preview.Config{
			RowLimit:         settings.RowLimit(),
			TypeFilter:       keep,
			DebounceInterval: settings.Debounce(),
			OnChange:         onChange,
			Logger:           testutil.NewTestLogger(t),
		})
	}

	reg := registry.New(factory, time.Minute, testutil.NewTestLogger(t))
	t.Cleanup(reg.Close)

	return &TestFixture{
		Client:       client,
		Registry:     reg,
		Settings:     settings,
		SessionStore: NewTestSessionStore(),
	}
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}

// RequestWithPathParam wraps a request with chi URL params, so a
// handler can be driven without mounting its router.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
