package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 17800, cfg.Server.Port)
	assert.Equal(t, 180, cfg.BLE.ChunkSize)
	assert.Equal(t, 32, cfg.Receipt.PaperWidth)
	assert.Equal(t, "cp858", cfg.Receipt.CodePage)
	assert.Equal(t, "DH", cfg.Receipt.CurrencySymbol)
	assert.Equal(t, DispatchBLE, cfg.Dispatch.Mode)
	assert.Equal(t, "Le 1er Boulevard", cfg.Shop.Name)
	assert.Len(t, cfg.Shop.Address, 2)
	assert.Equal(t, 3*time.Second, cfg.SplitDelay())
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	var cfg Config
	cfg.Receipt.PaperWidth = 48
	cfg.Shop.Name = "Chez Nous"
	cfg.Dispatch.Mode = DispatchFile
	ApplyDefaults(&cfg)

	assert.Equal(t, 48, cfg.Receipt.PaperWidth)
	assert.Equal(t, "Chez Nous", cfg.Shop.Name)
	assert.Equal(t, DispatchFile, cfg.Dispatch.Mode)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[shop]
name = "Cafe Test"

[receipt]
split_delay_seconds = 5

[dispatch]
mode = "ble"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("RECEIPTS_DISPATCH_MODE", DispatchBridge)
	t.Setenv("RECEIPTS_BRIDGE_URL", "http://printer.local:17800")
	t.Setenv("AGENT_CORS_ALLOW_ORIGINS", "https://pos.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Cafe Test", cfg.Shop.Name)
	assert.Equal(t, 5*time.Second, cfg.SplitDelay())
	assert.Equal(t, DispatchBridge, cfg.Dispatch.Mode)
	assert.Equal(t, "http://printer.local:17800", cfg.Dispatch.BridgeURL)
	assert.Equal(t, "https://pos.example", cfg.CORS.AllowOrigins)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	var cfg Config
	cfg.Auth.ApiKey = "secret"
	cfg.Receipt.TimeZone = "Africa/Casablanca"
	require.NoError(t, Save(path, &cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", loaded.Auth.ApiKey)
	assert.Equal(t, cfg.Shop.Address, loaded.Shop.Address)
}

func TestLocationFallsBackToLocal(t *testing.T) {
	var cfg Config
	cfg.Receipt.TimeZone = "Nowhere/Invalid"
	assert.Equal(t, time.Local, cfg.Location())
}

func TestDefaultHonorsEnv(t *testing.T) {
	t.Setenv("RECEIPTS_DISPATCH_MODE", DispatchFile)

	cfg := Default()
	assert.Equal(t, DispatchFile, cfg.Dispatch.Mode)
	assert.Equal(t, "spool/receipts.bin", cfg.Dispatch.FilePath)
	assert.Equal(t, 3*time.Second, cfg.SplitDelay())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
