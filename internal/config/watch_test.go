package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	eventbus "github.com/apollosolutions/graphguard/internal/eventbus"
	events "github.com/apollosolutions/graphguard/internal/events"
	"github.com/stretchr/testify/require"
)

func TestReloadPublishesEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var ok, failed int
	defer eventbus.Subscribe(func(ctx context.Context, e events.ConfigReloaded) { ok++ })()
	defer eventbus.Subscribe(func(ctx context.Context, e events.ConfigReloadFailed) { failed++ })()

	dir := writeConfigDir(t, testYAML)
	path := filepath.Join(dir, "graphguard.yaml")
	cfg, err := Load(path)
	require.NoError(t, err)
	snap, err := BuildSnapshot(cfg, dir)
	require.NoError(t, err)
	store := NewStore(snap)

	ctx := context.Background()

	reload(ctx, store, path)
	require.Equal(t, 1, ok)
	require.Equal(t, 0, failed)

	// An invalid proposal reports a failure and keeps the last good
	// snapshot serving.
	require.NoError(t, os.WriteFile(path, []byte(`
schema: schema.graphql
limits:
  max_depth: 2
`), 0o644))
	before := store.Current()
	reload(ctx, store, path)
	require.Equal(t, 1, ok)
	require.Equal(t, 1, failed)
	require.Same(t, before, store.Current())
}
