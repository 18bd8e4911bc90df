package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	dir := t.TempDir()
	base := []string{"--config", filepath.Join(dir, "missing.json"), "--env-file", filepath.Join(dir, "missing.env")}
	require.NoError(t, fs.Parse(append(base, args...)))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg, err := Load(flags(t))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "cardscan.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"port":"9000","placeholder":"-","sheetsTab":"Cards"}`), 0o644))
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("CARDSCAN_SHEETS_TAB=FromEnvFile\n"), 0o644))

	t.Setenv("CARDSCAN_PORT", "9100")
	t.Setenv("CARDSCAN_AUTO_MIGRATE", "yes")
	t.Cleanup(func() { os.Unsetenv("CARDSCAN_SHEETS_TAB") })

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", jsonPath, "--env-file", envPath, "--port", "9200"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "9200", cfg.Port)
	assert.Equal(t, "-", cfg.Placeholder)
	assert.Equal(t, "FromEnvFile", cfg.SheetsTab)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(flags(t, "--store", "pg"))
	assert.ErrorContains(t, err, "DBURL")

	_, err = Load(flags(t, "--store", "mongo"))
	assert.ErrorContains(t, err, "Store")

	_, err = Load(flags(t, "--port", "http"))
	assert.ErrorContains(t, err, "Port")

	cfg, err := Load(flags(t, "--store", "PG", "--db", "postgres://localhost/cards"))
	require.NoError(t, err)
	assert.Equal(t, "pg", cfg.Store)
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{"Mateng Delivery", "Mobile: +91"}, Lines("Mateng Delivery | Mobile: +91 |"))
	assert.Nil(t, Lines(""))
}
