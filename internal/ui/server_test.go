package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indexlens/indexlens/internal/mapping"
	"github.com/indexlens/indexlens/internal/preview"
	"github.com/indexlens/indexlens/internal/search"
	"github.com/indexlens/indexlens/internal/testutil"
	"github.com/indexlens/indexlens/internal/ui/features/common"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.Client == nil {
		// The watch tests never reach the cluster; the address only has
		// to parse.
		client, err := search.New(search.Config{URL: "http://127.0.0.1:1"}, testutil.NewTestLogger(t))
		require.NoError(t, err)
		cfg.Client = client
	}
	if cfg.Settings == nil {
		cfg.Settings = common.NewSettings(preview.DefaultRowLimit, mapping.PolicyKeyword, preview.DefaultDebounceInterval)
	}
	if cfg.Logger == nil {
		cfg.Logger = testutil.NewTestLogger(t)
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "test-secret-key-32-bytes-long!!"
	}
	srv := NewServer(cfg)
	t.Cleanup(srv.registry.Close)
	return srv
}

func TestWatchConfigAppliesChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "indexlens.yaml")
	require.NoError(t, os.WriteFile(path, []byte("row_limit: 1000\n"), 0o644))

	settings := common.NewSettings(1000, mapping.PolicyKeyword, preview.DefaultDebounceInterval)
	srv := newTestServer(t, Config{
		Settings:   settings,
		Watch:      true,
		ConfigPath: path,
		Reload: func() error {
			settings.Update(250, mapping.PolicyString, settings.Debounce())
			return nil
		},
	})

	// A session with a subscribed stream observes the reload broadcast.
	_, n := srv.registry.Acquire("watcher")
	updates := n.Subscribe()
	defer n.Unsubscribe(updates)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = srv.watchConfig(ctx)
		close(done)
	}()

	// Give the watcher a moment to register before the write lands.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("row_limit: 250\nfield_types: string\n"), 0o644))

	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatal("no broadcast after config change")
	}
	assert.Equal(t, 250, settings.RowLimit())
	assert.Equal(t, mapping.PolicyString, settings.Policy())

	cancel()
	<-done
}

func TestWatchConfigIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "indexlens.yaml")
	require.NoError(t, os.WriteFile(path, []byte("row_limit: 1000\n"), 0o644))

	srv := newTestServer(t, Config{
		Watch:      true,
		ConfigPath: path,
		Reload: func() error {
			t.Error("reload ran for an unrelated file")
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = srv.watchConfig(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	// Long enough for a mistaken debounce to fire.
	time.Sleep(300 * time.Millisecond)
	cancel()
	<-done
}

func TestApplyReloadKeepsSettingsOnError(t *testing.T) {
	settings := common.NewSettings(1000, mapping.PolicyKeyword, preview.DefaultDebounceInterval)
	srv := newTestServer(t, Config{
		Settings: settings,
		Reload:   func() error { return errors.New("malformed config") },
	})

	_, n := srv.registry.Acquire("watcher")
	updates := n.Subscribe()
	defer n.Unsubscribe(updates)

	srv.applyReload()

	assert.Equal(t, 1000, settings.RowLimit())
	select {
	case <-updates:
		t.Fatal("failed reload must not ping clients")
	default:
	}
}

func TestApplyReloadPingsClients(t *testing.T) {
	srv := newTestServer(t, Config{})

	_, n := srv.registry.Acquire("watcher")
	updates := n.Subscribe()
	defer n.Unsubscribe(updates)

	srv.applyReload()

	select {
	case <-updates:
	default:
		t.Fatal("reload should ping connected clients")
	}
}

func TestNewSessionUnknownPolicyFallsBack(t *testing.T) {
	// Settings may carry a policy the validator never saw when a reload
	// hook writes one directly.
	settings := common.NewSettings(100, "numeric", time.Millisecond)
	srv := newTestServer(t, Config{Settings: settings})

	sess := srv.newSession(nil)
	require.NotNil(t, sess)
	sess.Close()
}
