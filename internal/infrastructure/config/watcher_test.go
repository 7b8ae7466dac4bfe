package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/exline/internal/pkg/logger"
)

func TestWatchingLoaderReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fallback:\n  enabled: false\n"), 0o600))

	w, err := NewWatchingLoader(context.Background(), NewFileLoader(path), logger.NewNop())
	require.NoError(t, err)
	defer w.Close()

	cfg, err := w.Load(context.Background())
	require.NoError(t, err)
	require.False(t, cfg.Fallback.Enabled)

	require.NoError(t, os.WriteFile(path, []byte("fallback:\n  enabled: true\n"), 0o600))

	assert.Eventually(t, func() bool {
		cfg, _ := w.Load(context.Background())
		return cfg.Fallback.Enabled
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatchingLoaderKeepsConfigOnBadReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fallback:\n  enabled: true\n"), 0o600))

	w, err := NewWatchingLoader(context.Background(), NewFileLoader(path), logger.NewNop())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("fallback: [broken"), 0o600))
	time.Sleep(200 * time.Millisecond)

	cfg, err := w.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.Fallback.Enabled)
}

func TestWatchingLoaderCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	w, err := NewWatchingLoader(context.Background(), NewFileLoader(path), logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
