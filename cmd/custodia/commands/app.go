// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"

	"github.com/custodia-foundation/custodia/lib/chain"
	"github.com/custodia-foundation/custodia/lib/config"
	"github.com/custodia-foundation/custodia/lib/keystore"
	"github.com/custodia-foundation/custodia/lib/launchpad"
	"github.com/custodia-foundation/custodia/lib/ledger"
	"github.com/custodia-foundation/custodia/lib/wallet"
)

// app is the per-command wiring: configuration, the opened keystore, and
// the fee ledger. Commands that touch the network additionally dial the
// chain via engine().
type app struct {
	config *config.Config
	store  *keystore.Store
	ledger *ledger.Ledger
	logger *slog.Logger
}

// openApp loads configuration and opens the local state. Every command
// goes through here, so the legacy single-wallet migration runs exactly
// once per invocation, before any operation can observe the old layout.
func openApp(configPath string, logger *slog.Logger) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	store, err := keystore.Open(cfg.Paths.StateDir, logger)
	if err != nil {
		return nil, err
	}
	if err := store.MigrateLegacy(); err != nil {
		return nil, err
	}

	feeLedger, err := ledger.Open(cfg.Paths.StateDir, logger)
	if err != nil {
		return nil, err
	}

	return &app{config: cfg, store: store, ledger: feeLedger, logger: logger}, nil
}

// offlineEngine builds an engine without a chain connection, for
// operations that never touch the network (create, address, sign).
func (a *app) offlineEngine() (*wallet.Engine, error) {
	return wallet.NewEngine(wallet.EngineConfig{
		Store:  a.store,
		Ledger: a.ledger,
		Logger: a.logger,
	})
}

// engine dials the configured RPC endpoint and builds a fully wired
// engine. The returned cleanup closes the connection.
func (a *app) engine(ctx context.Context) (*wallet.Engine, func(), error) {
	client, err := chain.Dial(ctx, a.config.Chain.RPCURL)
	if err != nil {
		return nil, nil, err
	}

	var sponsor wallet.Sponsor
	if a.config.Launchpad.BaseURL != "" {
		launchpadClient, err := launchpad.NewClient(launchpad.ClientConfig{
			BaseURL: a.config.Launchpad.BaseURL,
			Logger:  a.logger,
		})
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		sponsor = launchpadClient
	}

	engine, err := wallet.NewEngine(wallet.EngineConfig{
		Store:               a.store,
		Chain:               client,
		Sponsor:             sponsor,
		Ledger:              a.ledger,
		FeePool:             common.HexToAddress(a.config.Chain.FeePool),
		Vesting:             common.HexToAddress(a.config.Chain.Vesting),
		ConfirmationTimeout: a.config.Chain.ConfirmationTimeout,
		Logger:              a.logger,
	})
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return engine, client.Close, nil
}

// launchpadClient builds a platform client for read-only API calls.
func (a *app) launchpadClient() (*launchpad.Client, error) {
	return launchpad.NewClient(launchpad.ClientConfig{
		BaseURL: a.config.Launchpad.BaseURL,
		Logger:  a.logger,
	})
}

// commonFlags registers the flags shared by every command that opens
// local state.
func commonFlags(flags *pflag.FlagSet, configPath, identity *string) {
	flags.StringVar(configPath, "config", "", "path to config file (default: $"+config.EnvVar+")")
	flags.StringVar(identity, "identity", keystore.DefaultIdentity, "wallet identity")
}
