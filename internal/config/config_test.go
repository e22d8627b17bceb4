package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE", "BATCH_SIZE", "MATCH_TOLERANCE_M", "DATABASE_DSN", "ALLOW_ORIGINS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, 8082, cfg.Port)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 50.0, cfg.ToleranceM)
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE", "Postgres")
	t.Setenv("BATCH_SIZE", "25")
	t.Setenv("MATCH_TOLERANCE_M", "35.5")
	t.Setenv("ALLOW_ORIGINS", "http://a.local, http://b.local")
	cfg := Load()
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, 25, cfg.BatchSize)
	assert.Equal(t, 35.5, cfg.ToleranceM)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.AllowOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoadReportsUnparseableValues(t *testing.T) {
	t.Setenv("STORE", "")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("PORT", "")
	t.Setenv("MATCH_TOLERANCE_M", "35,5")
	t.Setenv("BATCH_SIZE", "cem")
	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `MATCH_TOLERANCE_M: cannot parse "35,5"`)
	assert.Contains(t, err.Error(), `BATCH_SIZE: cannot parse "cem"`)
	assert.NotContains(t, err.Error(), "must be positive")
}

func TestValidate(t *testing.T) {
	cfg := Config{Port: 0, Store: "mysql", BatchSize: 0, ToleranceM: -1}
	err := cfg.Validate()
	require.Error(t, err)
	for _, s := range []string{"PORT", "STORE", "DATABASE_DSN", "BATCH_SIZE", "MATCH_TOLERANCE_M"} {
		assert.Contains(t, err.Error(), s)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(p, []byte("SINALIZA_TEST_VAR=from-file\n"), 0o644))
	t.Setenv("SINALIZA_TEST_VAR", "")
	os.Unsetenv("SINALIZA_TEST_VAR")

	require.NoError(t, LoadDotEnv(p))
	assert.Equal(t, "from-file", os.Getenv("SINALIZA_TEST_VAR"))
	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestTolerances(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tol.yaml")
	require.NoError(t, os.WriteFile(p, []byte("default_m: 40\nrodovias:\n  BR-101: 30\n  sc 401: 80\n"), 0o644))

	tol, err := LoadTolerances(p, 50)
	require.NoError(t, err)
	assert.Equal(t, 30.0, tol.ToleranceFor("br101"))
	assert.Equal(t, 80.0, tol.ToleranceFor("SC-401"))
	assert.Equal(t, 40.0, tol.ToleranceFor("BR-116"))

	tol, err = LoadTolerances("", 50)
	require.NoError(t, err)
	assert.Equal(t, 50.0, tol.ToleranceFor("BR-101"))

	require.NoError(t, os.WriteFile(p, []byte("default_m: 0\n"), 0o644))
	_, err = LoadTolerances(p, 50)
	assert.Error(t, err)

	_, err = LoadTolerances(filepath.Join(dir, "nope.yaml"), 50)
	assert.Error(t, err)
}
