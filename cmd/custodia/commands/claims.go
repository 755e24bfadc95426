// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/custodia-foundation/custodia/cmd/custodia/cli"
)

// CollectFeesCommand returns the "collect-fees" command.
func CollectFeesCommand() *cli.Command {
	var (
		configPath   string
		identity     string
		passwordFile string
	)

	return &cli.Command{
		Name:    "collect-fees",
		Summary: "Claim accumulated creator fees",
		Description: `Claim the creator fees accumulated for this wallet.

The account's gas balance decides how the claim executes. A funded
account invokes the fee pool contract directly and pays its own gas.
An empty account instead signs a claim statement which the launch
platform submits at its own expense — only the address, the statement,
and the signature leave this machine.

Either way the outcome is recorded in the local fee ledger.`,
		Usage: "custodia collect-fees [flags]",
		Examples: []cli.Example{
			{
				Description: "Claim fees for the default wallet",
				Command:     "custodia collect-fees --password-file /run/secrets/wallet",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("collect-fees", pflag.ContinueOnError)
			commonFlags(flags, &configPath, &identity)
			flags.StringVar(&passwordFile, "password-file", "", "path to file containing the password, or - to prompt")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			application, err := openApp(configPath, logger)
			if err != nil {
				return err
			}

			password, err := cli.ReadPassword(passwordFile)
			if err != nil {
				return err
			}
			defer password.Close()

			engine, cleanup, err := application.engine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := engine.CollectFees(ctx, identity, password)
			if err != nil {
				return err
			}

			switch {
			case result.TxHash != "":
				fmt.Printf("claimed (%s) %s\n", result.Method, result.TxHash)
			default:
				fmt.Printf("claimed (%s)\n", result.Method)
			}
			return nil
		},
	}
}

// ClaimVestedCommand returns the "claim-vested" command.
func ClaimVestedCommand() *cli.Command {
	var (
		configPath   string
		identity     string
		passwordFile string
	)

	return &cli.Command{
		Name:    "claim-vested",
		Summary: "Claim vested tokens for a launched token",
		Description: `Invoke the vesting contract's claim entry point for the given token
and wait for confirmation. The wallet pays its own gas.`,
		Usage: "custodia claim-vested <token-address> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("claim-vested", pflag.ContinueOnError)
			commonFlags(flags, &configPath, &identity)
			flags.StringVar(&passwordFile, "password-file", "", "path to file containing the password, or - to prompt")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("token address is required\n\nUsage: custodia claim-vested <token-address> [flags]")
			}
			tokenAddress := args[0]

			application, err := openApp(configPath, logger)
			if err != nil {
				return err
			}

			password, err := cli.ReadPassword(passwordFile)
			if err != nil {
				return err
			}
			defer password.Close()

			engine, cleanup, err := application.engine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			receipt, err := engine.ClaimVested(ctx, identity, password, tokenAddress)
			if err != nil {
				return err
			}

			fmt.Printf("claimed %s in block %d\n", receipt.TxHash, receipt.BlockNumber)
			return nil
		},
	}
}

// TokenStatusCommand returns the "token-status" command querying the
// launch platform.
func TokenStatusCommand() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:    "token-status",
		Summary: "Query a token's launch status",
		Description: `Fetch a launched token's status from the launch platform API and
print it as JSON. Read-only; no wallet or password involved.`,
		Usage: "custodia token-status <token-address> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("token-status", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "path to config file")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("token address is required\n\nUsage: custodia token-status <token-address> [flags]")
			}

			application, err := openApp(configPath, logger)
			if err != nil {
				return err
			}
			if application.config.Launchpad.BaseURL == "" {
				return fmt.Errorf("launchpad.base_url is not configured")
			}

			client, err := application.launchpadClient()
			if err != nil {
				return err
			}

			status, err := client.TokenStatus(ctx, args[0])
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(status)
		},
	}
}
