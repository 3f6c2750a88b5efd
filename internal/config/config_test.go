package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Run from an empty directory so no config file is picked up.
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434/v1", cfg.Ollama.BaseURL)
	assert.Equal(t, "ollama", cfg.Ollama.APIKey)
	assert.Equal(t, "granite3.3:8b", cfg.Ollama.Model)
	assert.Equal(t, 120*time.Second, cfg.Ollama.Timeout())
	assert.Equal(t, 3, cfg.Ollama.MaxRetries)
	assert.Equal(t, 512, cfg.Ollama.MaxTokens)
	assert.Equal(t, float64(0), cfg.Ollama.RateLimitRPS)

	assert.Equal(t, []string{
		"Person", "Orders", "Organization", "Date", "Time", "Location", "Money", "Product",
	}, cfg.Extract.EntityTypes)

	assert.Equal(t, 8, cfg.Batch.Concurrency)
	assert.Equal(t, []int{2, 4, 8}, cfg.Bench.ConcurrencyLevels)
	assert.Equal(t, "performance.txt", cfg.Bench.OutputFile)
	assert.Equal(t, "extract.db", cfg.Store.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
ollama:
  model: llama3.2:3b
  timeout_secs: 30
batch:
  concurrency: 2
bench:
  output_file: out.txt
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "llama3.2:3b", cfg.Ollama.Model)
	assert.Equal(t, 30*time.Second, cfg.Ollama.Timeout())
	assert.Equal(t, 2, cfg.Batch.Concurrency)
	assert.Equal(t, "out.txt", cfg.Bench.OutputFile)
	// Untouched keys keep their defaults.
	assert.Equal(t, "http://localhost:11434/v1", cfg.Ollama.BaseURL)
	assert.Equal(t, 3, cfg.Ollama.MaxRetries)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("EXTRACT_OLLAMA_MODEL", "mistral:7b")
	t.Setenv("EXTRACT_BATCH_CONCURRENCY", "16")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mistral:7b", cfg.Ollama.Model)
	assert.Equal(t, 16, cfg.Batch.Concurrency)
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("ollama: [not a map"), 0o644))
	chdir(t, dir)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
