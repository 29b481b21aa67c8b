// Package config contains structures used in retrieving app configuration
// from disk.
package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"code.pegvault.io/pegclient/errors"
)

// ServerConfig describes the settings for running the client process.
type ServerConfig struct {
	Env       string `yaml:"env"`
	Listen    string `yaml:"listen"`
	LogFormat string `yaml:"logFormat"`
	LogLevel  string `yaml:"logLevel"`

	// LogFile (optional) sends logs to a rotated file instead of stderr.
	LogFile *LogFileConfig `yaml:"logFile"`
}

// LogFileConfig describes log file rotation.
type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// ChainConfig describes the chain node and the deployed protocol contracts.
type ChainConfig struct {
	RPCURL  string `yaml:"rpcURL"`
	ChainID int64  `yaml:"chainID"`

	TokenAddress  string `yaml:"tokenAddress"`
	VaultAddress  string `yaml:"vaultAddress"`
	OracleAddress string `yaml:"oracleAddress"`
	TokenDecimals uint8  `yaml:"tokenDecimals"`
	PriceDecimals uint8  `yaml:"priceDecimals"`

	// PrivateKey (optional) is the hex key of the account that signs transactions.
	// Without it the client only quotes and reads.
	PrivateKey string `yaml:"privateKey"`

	CallTimeoutMillis    int     `yaml:"callTimeoutMillis"`
	ReadRetries          uint    `yaml:"readRetries"`
	ReadRetryDelayMillis int     `yaml:"readRetryDelayMillis"`
	ReadRateLimit        float64 `yaml:"readRateLimit"`
	ReceiptPollMillis    int     `yaml:"receiptPollMillis"`
}

// AssetConfig describes one collateral token.
type AssetConfig struct {
	ID       string `yaml:"id"`
	Address  string `yaml:"address"`
	Decimals uint8  `yaml:"decimals"`
}

// OrchestratorConfig describes operation timings.
type OrchestratorConfig struct {
	ConfirmationTimeoutSec int `yaml:"confirmationTimeoutSec"`
	DisplayWindowSec       int `yaml:"displayWindowSec"`
}

// SyncConfig describes state refreshes.
type SyncConfig struct {
	SettleDelaySec int `yaml:"settleDelaySec"`
	// PollIntervalSec (optional) enables periodic refreshes. Zero disables them.
	PollIntervalSec int `yaml:"pollIntervalSec"`
}

// SlackConfig describes the operator alert channel.
type SlackConfig struct {
	Enabled   bool   `yaml:"enabled"`
	BotToken  string `yaml:"botToken"`
	AppToken  string `yaml:"appToken"`
	ChannelID string `yaml:"channelID"`
}

// Config describes the top level config file format.
type Config struct {
	Server       *ServerConfig       `yaml:"server"`
	Chain        *ChainConfig        `yaml:"chain"`
	Assets       []AssetConfig       `yaml:"assets"`
	Orchestrator *OrchestratorConfig `yaml:"orchestrator"`
	Sync         *SyncConfig         `yaml:"sync"`
	Slack        *SlackConfig        `yaml:"slack"`
}

// CheckConfig checks the config for valid structure and values.
func (cfg *Config) CheckConfig() error {
	if cfg == nil {
		return errors.ErrNil
	}

	if cfg.Server == nil {
		return fmt.Errorf("%s: %s", errors.ErrMissingEmptyConfigSection.Error(), "server")
	}
	if cfg.Chain == nil {
		return fmt.Errorf("%s: %s", errors.ErrMissingEmptyConfigSection.Error(), "chain")
	}
	if len(cfg.Assets) == 0 {
		return fmt.Errorf("%s: %s", errors.ErrMissingEmptyConfigSection.Error(), "assets")
	}

	cfg.applyDefaults()
	return cfg.validate()
}

// applyDefaults fills optional sections and zero values.
func (cfg *Config) applyDefaults() {
	if cfg.Orchestrator == nil {
		cfg.Orchestrator = &OrchestratorConfig{}
	}
	if cfg.Sync == nil {
		cfg.Sync = &SyncConfig{}
	}
	if cfg.Slack == nil {
		cfg.Slack = &SlackConfig{}
	}

	c := cfg.Chain
	setDefault(&c.CallTimeoutMillis, 10000)
	setDefault(&c.ReadRetryDelayMillis, 250)
	setDefault(&c.ReceiptPollMillis, 2000)
	if c.ReadRetries == 0 {
		c.ReadRetries = 3
	}
	if c.TokenDecimals == 0 {
		c.TokenDecimals = 18
	}
	if c.PriceDecimals == 0 {
		c.PriceDecimals = 8
	}

	setDefault(&cfg.Orchestrator.ConfirmationTimeoutSec, 90)
	setDefault(&cfg.Orchestrator.DisplayWindowSec, 5)
	setDefault(&cfg.Sync.SettleDelaySec, 2)

	if lf := cfg.Server.LogFile; lf != nil {
		setDefault(&lf.MaxSizeMB, 100)
		setDefault(&lf.MaxBackups, 5)
		setDefault(&lf.MaxAgeDays, 28)
	}
}

func setDefault(v *int, d int) {
	if *v == 0 {
		*v = d
	}
}

func (cfg *Config) validate() error {
	var errs *multierror.Error

	if err := cfg.Chain.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}

	seen := make(map[string]struct{}, len(cfg.Assets))
	for i, a := range cfg.Assets {
		if err := a.Validate(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("assets[%d]: %w", i, err))
		}
		if _, ok := seen[a.ID]; ok {
			errs = multierror.Append(errs, fmt.Errorf("%w: duplicate asset id %q", errors.ErrInvalidValue, a.ID))
		}
		seen[a.ID] = struct{}{}
	}

	if cfg.Orchestrator.ConfirmationTimeoutSec <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: orchestrator.confirmationTimeoutSec must be >0", errors.ErrInvalidValue))
	}
	if cfg.Orchestrator.DisplayWindowSec <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: orchestrator.displayWindowSec must be >0", errors.ErrInvalidValue))
	}
	if cfg.Sync.SettleDelaySec <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: sync.settleDelaySec must be >0", errors.ErrInvalidValue))
	}
	if cfg.Sync.PollIntervalSec < 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: sync.pollIntervalSec must be >=0", errors.ErrInvalidValue))
	}
	if cfg.Slack.Enabled && (cfg.Slack.BotToken == "" || cfg.Slack.ChannelID == "") {
		errs = multierror.Append(errs, fmt.Errorf("%w: slack.botToken and slack.channelID are required when slack is enabled", errors.ErrInvalidValue))
	}

	return errs.ErrorOrNil()
}

// Validate checks the chain section values.
func (c *ChainConfig) Validate() error {
	var errs *multierror.Error

	if c.RPCURL == "" {
		errs = multierror.Append(errs, fmt.Errorf("%w: chain.rpcURL is required", errors.ErrInvalidValue))
	}
	if c.ChainID <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: chain.chainID must be >0", errors.ErrInvalidValue))
	}
	for name, addr := range map[string]string{
		"tokenAddress":  c.TokenAddress,
		"vaultAddress":  c.VaultAddress,
		"oracleAddress": c.OracleAddress,
	} {
		if !common.IsHexAddress(addr) {
			errs = multierror.Append(errs, fmt.Errorf("%w: chain.%s %q is not an address", errors.ErrInvalidValue, name, addr))
		}
	}
	if c.CallTimeoutMillis < 0 || c.ReadRetryDelayMillis < 0 || c.ReceiptPollMillis < 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: chain timings must be >=0", errors.ErrInvalidValue))
	}
	if c.ReadRateLimit < 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: chain.readRateLimit must be >=0", errors.ErrInvalidValue))
	}

	return errs.ErrorOrNil()
}

// Validate checks one asset entry.
func (a AssetConfig) Validate() error {
	var errs *multierror.Error

	if a.ID == "" {
		errs = multierror.Append(errs, fmt.Errorf("%w: asset id is required", errors.ErrInvalidValue))
	}
	if !common.IsHexAddress(a.Address) {
		errs = multierror.Append(errs, fmt.Errorf("%w: asset address %q is not an address", errors.ErrInvalidValue, a.Address))
	}
	if a.Decimals > 36 {
		errs = multierror.Append(errs, fmt.Errorf("%w: asset decimals must be <=36", errors.ErrInvalidValue))
	}

	return errs.ErrorOrNil()
}

// CallTimeout returns the per-read timeout.
func (c *ChainConfig) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutMillis) * time.Millisecond
}

// ReadRetryDelay returns the initial delay between read retries.
func (c *ChainConfig) ReadRetryDelay() time.Duration {
	return time.Duration(c.ReadRetryDelayMillis) * time.Millisecond
}

// ReceiptPollInterval returns the interval between receipt lookups.
func (c *ChainConfig) ReceiptPollInterval() time.Duration {
	return time.Duration(c.ReceiptPollMillis) * time.Millisecond
}

// ConfigureLogging configures logging.
func (cfg *Config) ConfigureLogging() error {
	if cfg == nil || cfg.Server == nil {
		return errors.ErrNil
	}

	if cfg.Server.Env != "prod" {
		// https://github.com/sirupsen/logrus#logging-method-name
		// This slows down logging (by a factor of 2).
		log.SetReportCaller(true)
	}

	switch cfg.Server.LogFormat {
	case "json":
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	case "textcolour":
		log.SetFormatter(&log.TextFormatter{
			ForceColors:     true,
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	case "textnocolour":
		log.SetFormatter(&log.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	default:
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		}) // with colour if TTY, without otherwise
	}

	if lf := cfg.Server.LogFile; lf != nil && lf.Path != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   lf.Path,
			MaxSize:    lf.MaxSizeMB,
			MaxBackups: lf.MaxBackups,
			MaxAge:     lf.MaxAgeDays,
			Compress:   lf.Compress,
		})
	}

	if loglevel, err := log.ParseLevel(cfg.Server.LogLevel); err == nil {
		log.SetLevel(loglevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
	return nil
}
