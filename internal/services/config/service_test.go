package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func writeJSON(t *testing.T, dir, name string, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoadFromFiles_Defaults(t *testing.T) {
	cfg, err := LoadFromFiles(Paths{})
	require.NoError(t, err)
	assert.Contains(t, cfg.Steps, "cleaner")
	assert.Contains(t, cfg.Steps, "aggregator")
}

func TestLoadFromFiles_KeywordsTech(t *testing.T) {
	dir := t.TempDir()
	path := writeJSON(t, dir, "keywords.json", map[string][]string{
		"languages": {"Go", "Python"},
	})

	cfg, err := LoadFromFiles(Paths{KeywordsTech: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Python"}, cfg.KeywordsTech["languages"])
}

func TestLoadFromFiles_UnknownStepRejected(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("PIPELINE_STEPS", "cleaner,not_a_step")
	defer os.Unsetenv("PIPELINE_STEPS")

	_, err := LoadFromFiles(Paths{LineFilter: filepath.Join(dir, "missing.json")})
	require.Error(t, err)
}

func TestService_ReloadIsAtomicForInFlightSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := writeJSON(t, dir, "keywords.json", map[string][]string{"languages": {"Go"}})

	svc, err := NewService(Paths{KeywordsTech: path}, arbor.NewLogger())
	require.NoError(t, err)

	held := svc.Snapshot()
	require.Equal(t, []string{"Go"}, held.KeywordsTech["languages"])

	writeJSON(t, dir, "keywords.json", map[string][]string{"languages": {"Go", "Rust"}})
	require.NoError(t, svc.ReloadConfig())

	assert.Equal(t, []string{"Go"}, held.KeywordsTech["languages"], "previously captured snapshot must not mutate")
	assert.Equal(t, []string{"Go", "Rust"}, svc.Snapshot().KeywordsTech["languages"])
}
