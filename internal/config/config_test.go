package config

import (
	"os"
	"path/filepath"
	"testing"

	guard "github.com/apollosolutions/graphguard/internal/guard"
	language "github.com/apollosolutions/graphguard/internal/language"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, query string) *language.QueryDocument {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return doc
}

const testSDL = `
type Query {
	a: A
}
type A {
	b: B
}
type B {
	c: Int
}
`

const testYAML = `
schema: schema.graphql
limits:
  max_depth: 15
  max_cost: 50
weights:
  default: 1
  fields:
    A.b: 5
server:
  listen: ":9090"
  upstream: "http://localhost:4000/graphql"
`

func writeConfigDir(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.graphql"), []byte(testSDL), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "graphguard.yaml"), []byte(yaml), 0o644))
	return dir
}

func TestLoadAndBuildSnapshot(t *testing.T) {
	dir := writeConfigDir(t, testYAML)
	cfg, err := Load(filepath.Join(dir, "graphguard.yaml"))
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Server.Listen)
	require.Equal(t, 15, cfg.Limits.MaxDepth)

	snap, err := BuildSnapshot(cfg, dir)
	require.NoError(t, err)
	require.Equal(t, 15, snap.Limits.MaxDepth)
	require.Equal(t, 50, snap.Limits.MaxCost)
	require.True(t, snap.Limits.DepthEnabled)
	require.True(t, snap.Limits.CostEnabled)
	require.Equal(t, 5, snap.Weights.Weight("A", "b"))
	require.Equal(t, 1, snap.Weights.Weight("A", "x"))

	info, ok := snap.Index.Lookup("Query", "a")
	require.True(t, ok)
	require.Equal(t, "A", info.TypeName)
}

func TestValidateDepthFloor(t *testing.T) {
	cfg := Default()
	cfg.Limits.MaxDepth = 10

	err := cfg.Validate()
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "limits.max_depth", cerr.Field)
}

func TestValidateRejectsNegatives(t *testing.T) {
	neg := -1
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"max_cost", func(c *Config) { c.Limits.MaxCost = -1 }},
		{"max_nodes", func(c *Config) { c.Limits.MaxNodes = -5 }},
		{"default weight", func(c *Config) { c.Weights.Default = &neg }},
		{"field weight", func(c *Config) { c.Weights.Fields = map[string]int{"Query.a": -2} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			var cerr *ConfigError
			require.ErrorAs(t, cfg.Validate(), &cerr)
		})
	}
}

func TestDisableFlags(t *testing.T) {
	cfg, err := Parse([]byte(`
schema: schema.graphql
limits:
  max_depth: 14
  max_cost: 100
  depth_check: false
  cost_check: true
`))
	require.NoError(t, err)
	limits := cfg.Thresholds()
	require.False(t, limits.DepthEnabled)
	require.True(t, limits.CostEnabled)
}

func TestStoreReloadKeepsLastGood(t *testing.T) {
	dir := writeConfigDir(t, testYAML)
	cfg, err := Load(filepath.Join(dir, "graphguard.yaml"))
	require.NoError(t, err)
	snap, err := BuildSnapshot(cfg, dir)
	require.NoError(t, err)
	store := NewStore(snap)

	// A reload proposing a depth below the floor is rejected and the
	// active snapshot keeps serving.
	bad := *cfg
	bad.Limits.MaxDepth = 10
	err = store.Reload(&bad, dir)
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	require.Same(t, snap, store.Current())
	require.Equal(t, 15, store.Current().Limits.MaxDepth)

	// A valid reload swaps the whole snapshot atomically.
	good := *cfg
	good.Limits.MaxCost = 99
	require.NoError(t, store.Reload(&good, dir))
	require.NotSame(t, snap, store.Current())
	require.Equal(t, 99, store.Current().Limits.MaxCost)
	require.Equal(t, guard.VerdictAllow, guard.Check(mustParse(t, `{ a { b { c } } }`), "", store.Current()).Verdict)
}

func TestBuildSnapshotMissingSchema(t *testing.T) {
	cfg := Default()
	_, err := BuildSnapshot(cfg, ".")
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)

	cfg.Schema = "does-not-exist.graphql"
	_, err = BuildSnapshot(cfg, t.TempDir())
	require.Error(t, err)
}
