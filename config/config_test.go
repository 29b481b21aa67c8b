package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jinzhu/configor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.pegvault.io/pegclient/config"
	"code.pegvault.io/pegclient/errors"
)

func validChain() *config.ChainConfig {
	return &config.ChainConfig{
		RPCURL:        "http://localhost:8545",
		ChainID:       31337,
		TokenAddress:  "0x1000000000000000000000000000000000000001",
		VaultAddress:  "0x2000000000000000000000000000000000000002",
		OracleAddress: "0x3000000000000000000000000000000000000003",
	}
}

func TestCheckConfig(t *testing.T) {
	var cfg *config.Config
	err := cfg.CheckConfig()
	assert.Equal(t, errors.ErrNil, err)

	cfg = new(config.Config)

	err = cfg.CheckConfig()
	assert.True(t, strings.HasPrefix(err.Error(), errors.ErrMissingEmptyConfigSection.Error()))

	cfg.Server = &config.ServerConfig{}
	err = cfg.CheckConfig()
	assert.True(t, strings.HasPrefix(err.Error(), errors.ErrMissingEmptyConfigSection.Error()))

	cfg.Chain = validChain()
	err = cfg.CheckConfig()
	assert.True(t, strings.HasPrefix(err.Error(), errors.ErrMissingEmptyConfigSection.Error()))

	cfg.Assets = append(cfg.Assets, config.AssetConfig{
		ID:       "WBTC",
		Address:  "0x4000000000000000000000000000000000000004",
		Decimals: 8,
	})
	err = cfg.CheckConfig()
	assert.NoError(t, err)

	// optional sections get defaults
	require.NotNil(t, cfg.Orchestrator)
	assert.Equal(t, 90, cfg.Orchestrator.ConfirmationTimeoutSec)
	require.NotNil(t, cfg.Sync)
	assert.Equal(t, 2, cfg.Sync.SettleDelaySec)
}

func TestCheckConfig_CollectsInvalidValues(t *testing.T) {
	cfg := &config.Config{
		Server: &config.ServerConfig{},
		Chain: &config.ChainConfig{
			ChainID:      0,
			TokenAddress: "nope",
		},
		Assets: []config.AssetConfig{
			{ID: "WBTC", Address: "0x4000000000000000000000000000000000000004", Decimals: 8},
			{ID: "WBTC", Address: "bad", Decimals: 8},
		},
		Orchestrator: &config.OrchestratorConfig{ConfirmationTimeoutSec: -1},
		Slack:        &config.SlackConfig{Enabled: true},
	}

	err := cfg.CheckConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidValue)

	msg := err.Error()
	for _, want := range []string{
		"chain.rpcURL",
		"chain.chainID",
		"chain.tokenAddress",
		"chain.vaultAddress",
		"assets[1]",
		"duplicate asset id",
		"confirmationTimeoutSec",
		"slack.botToken",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  env: test
  listen: ":7800"
  logFormat: json
  logLevel: debug
chain:
  rpcURL: http://localhost:8545
  chainID: 31337
  tokenAddress: "0x1000000000000000000000000000000000000001"
  vaultAddress: "0x2000000000000000000000000000000000000002"
  oracleAddress: "0x3000000000000000000000000000000000000003"
assets:
  - id: WBTC
    address: "0x4000000000000000000000000000000000000004"
    decimals: 8
sync:
  pollIntervalSec: 30
`), 0o600))

	var cfg config.Config
	require.NoError(t, configor.Load(&cfg, path))
	require.NoError(t, cfg.CheckConfig())

	assert.Equal(t, ":7800", cfg.Server.Listen)
	assert.Equal(t, uint8(18), cfg.Chain.TokenDecimals)
	assert.Equal(t, uint8(8), cfg.Chain.PriceDecimals)
	assert.Equal(t, "10s", cfg.Chain.CallTimeout().String())
	assert.Equal(t, 2, cfg.Sync.SettleDelaySec)
	assert.Equal(t, 30, cfg.Sync.PollIntervalSec)
	assert.Len(t, cfg.Assets, 1)
}

func TestConfigureLogging(t *testing.T) {
	var cfg *config.Config
	err := cfg.ConfigureLogging()
	assert.Equal(t, errors.ErrNil, err)

	cfg = new(config.Config)
	cfg.Server = &config.ServerConfig{}

	err = cfg.ConfigureLogging()
	assert.NoError(t, err)

	cfg.Server.LogLevel = "info"
	for _, lf := range []string{"json", "textcolour", "textnocolour", "fred"} {
		cfg.Server.LogFormat = lf
		err = cfg.ConfigureLogging()
		assert.NoError(t, err)
	}
}
