package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	argv := append([]string{
		"searchy",
		"--config", filepath.Join(dir, "config.toml"),
		"--log-file", filepath.Join(dir, "searchy.log"),
		"--env", filepath.Join(dir, "missing.env"),
	}, args...)
	err := app.Run(context.Background(), argv)
	return out.String(), err
}

func TestQueryPrintsMatches(t *testing.T) {
	out, err := run(t, "--backend", "memory", "query", "coltrane")
	require.NoError(t, err)

	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "A Love Supreme")
	assert.Contains(t, out, "Blue Train")
	assert.NotContains(t, out, "Kid A")
}

func TestQueryReportsNoMatches(t *testing.T) {
	out, err := run(t, "--backend", "memory", "query", "zzzzzz")
	require.NoError(t, err)
	assert.Contains(t, out, `No matches for "zzzzzz"`)
}

func TestQueryNeedsText(t *testing.T) {
	_, err := run(t, "--backend", "memory", "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing search text")
}

func TestUnknownBackendIsRejected(t *testing.T) {
	_, err := run(t, "--backend", "gopher", "query", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown search backend")
}

func TestConfigPrintsEffectiveValues(t *testing.T) {
	out, err := run(t, "--backend", "memory", "--debounce", "120ms", "--no-transition", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "config.toml")
	assert.Contains(t, out, "memory")
	assert.Contains(t, out, "120ms")
	assert.Contains(t, out, "enabled = false")
}

func TestTraceFlagEnablesTracing(t *testing.T) {
	out, err := run(t, "--backend", "memory", "--trace", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "trace = true")
}
