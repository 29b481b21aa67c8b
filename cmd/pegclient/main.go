// Command pegclient quotes and executes mints and redemptions against a
// BTC-collateralised USD-pegged token protocol, and serves them over HTTP.
//
//	$ go install ./cmd/pegclient
//	$ $GOPATH/bin/pegclient -config=config.yml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/jinzhu/configor"
	log "github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"code.pegvault.io/pegclient/chain"
	"code.pegvault.io/pegclient/client"
	"code.pegvault.io/pegclient/config"
	"code.pegvault.io/pegclient/notify"
	"code.pegvault.io/pegclient/orchestrator"
	"code.pegvault.io/pegclient/service"
	"code.pegvault.io/pegclient/syncer"
	"code.pegvault.io/pegclient/types"
)

var (
	// Version is set at build time using: -ldflags "-X main.Version=someversion"
	Version = "no_version_set"

	// VersionHash is set at build time using: -ldflags "-X main.VersionHash=somehash"
	VersionHash = "no_hash_set"
)

func main() {
	var configName string
	var configVersion bool
	flag.StringVar(&configName, "config", "", "Configuration YAML file")
	flag.BoolVar(&configVersion, "version", false, "Show version")
	flag.Parse()

	if configVersion {
		fmt.Printf("version %v (%v)\n", Version, VersionHash)
		return
	}

	var cfg config.Config
	err := configor.Load(&cfg, configName)
	// https://github.com/jinzhu/configor/issues/40
	if err != nil && !strings.Contains(err.Error(), "should be struct") {
		log.WithFields(log.Fields{
			"error": err.Error(),
		}).Fatal("Failed to read config")
	}
	if err = cfg.CheckConfig(); err != nil {
		log.WithFields(log.Fields{
			"error": err.Error(),
		}).Fatal("Config checks failed")
	}

	if err = cfg.ConfigureLogging(); err != nil {
		log.WithFields(log.Fields{
			"error": err.Error(),
		}).Fatal("Failed to load config")
	}

	log.WithFields(log.Fields{
		"version": Version,
		"hash":    VersionHash,
	}).Info("Version")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err = run(ctx, &cfg); err != nil {
		log.WithFields(log.Fields{
			"error": err.Error(),
		}).Fatal("Client stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	ethClient, err := ethclient.DialContext(ctx, cfg.Chain.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", cfg.Chain.RPCURL, err)
	}
	defer ethClient.Close()

	chainID := big.NewInt(cfg.Chain.ChainID)

	var signer chain.Signer
	if cfg.Chain.PrivateKey != "" {
		keySigner, err := chain.NewKeySigner(cfg.Chain.PrivateKey)
		if err != nil {
			return err
		}
		signer = keySigner
		log.WithFields(log.Fields{"address": keySigner.Address().Hex()}).Info("Signing account loaded")
	} else {
		log.Warning("No private key configured, running read-only")
	}

	assets := make([]types.Asset, 0, len(cfg.Assets))
	for _, a := range cfg.Assets {
		assets = append(assets, types.Asset{
			ID:       types.AssetID(a.ID),
			Address:  common.HexToAddress(a.Address),
			Decimals: a.Decimals,
		})
	}
	contracts := chain.NewContracts(
		common.HexToAddress(cfg.Chain.TokenAddress),
		common.HexToAddress(cfg.Chain.VaultAddress),
		common.HexToAddress(cfg.Chain.OracleAddress),
		cfg.Chain.TokenDecimals,
		cfg.Chain.PriceDecimals,
		assets,
	)

	reader := chain.NewReader(ethClient, chain.ReaderConfig{
		CallTimeout: cfg.Chain.CallTimeout(),
		Retries:     cfg.Chain.ReadRetries,
		RetryDelay:  cfg.Chain.ReadRetryDelay(),
		RateLimit:   cfg.Chain.ReadRateLimit,
	})
	writer := chain.NewWriter(ethClient, signer, chainID, cfg.Chain.ReceiptPollInterval())
	session := chain.NewKeySession(signer, chainID)

	store := types.NewSnapshotStore()
	defer store.Close()

	coordinator := syncer.NewCoordinator(reader, store, session, contracts, time.Duration(cfg.Sync.SettleDelaySec)*time.Second)
	if err = coordinator.Bootstrap(ctx); err != nil {
		log.WithFields(log.Fields{"error": err.Error()}).Warning("Initial refresh had failed reads")
	}

	if cfg.Sync.PollIntervalSec > 0 {
		poller := syncer.NewPoller(coordinator, time.Duration(cfg.Sync.PollIntervalSec)*time.Second)
		if err = poller.Start(ctx); err != nil {
			return fmt.Errorf("failed to start poller: %w", err)
		}
		defer func() {
			if err := poller.Shutdown(); err != nil {
				log.WithFields(log.Fields{"error": err.Error()}).Warning("Poller shutdown failed")
			}
		}()
	}

	slack := notify.NewSlack(cfg.Slack)
	defer slack.Wait()

	orch, err := orchestrator.New(
		orchestrator.Config{
			ConfirmationTimeout: time.Duration(cfg.Orchestrator.ConfirmationTimeoutSec) * time.Second,
			DisplayWindow:       time.Duration(cfg.Orchestrator.DisplayWindowSec) * time.Second,
		},
		store, writer, session, coordinator, contracts, slack,
	)
	if err != nil {
		return err
	}

	logger, err := newZapLogger(cfg.Server)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	svc := service.NewService(logger, cfg.Server.Listen, client.New(store, orch, assets))

	errc := make(chan error, 1)
	go func() {
		errc <- svc.Start()
	}()

	select {
	case <-ctx.Done():
		svc.Stop()
		return nil
	case err = <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func newZapLogger(cfg *config.ServerConfig) (*zap.Logger, error) {
	if cfg.Env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
