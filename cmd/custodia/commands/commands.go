// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete custodia CLI command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/custodia-foundation/custodia/cmd/custodia/cli"
)

// Version is the release identifier, overridable at build time with
// -ldflags "-X .../commands.Version=v1.2.3".
var Version = "dev"

// Root builds and returns the complete custodia CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "custodia",
		Description: `Custodia: local key custody and transaction authorization.

Keys are generated locally, sealed under a password, and decrypted only
for the single operation being authorized. Nothing secret ever leaves
this machine.`,
		Subcommands: []*cli.Command{
			CreateCommand(),
			AddressCommand(),
			ListCommand(),
			BalanceCommand(),
			SignCommand(),
			TransferCommand(),
			CollectFeesCommand(),
			ClaimVestedCommand(),
			TokenStatusCommand(),
			LedgerCommand(),
			BackupCommand(),
			EscrowKeygenCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("custodia %s\n", Version)
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Create a wallet (prompts for password twice)",
				Command:     "custodia create",
			},
			{
				Description: "Check the balance",
				Command:     "custodia balance",
			},
			{
				Description: "Claim creator fees",
				Command:     "custodia collect-fees --password-file /run/secrets/wallet",
			},
			{
				Description: "Review past claims",
				Command:     "custodia ledger list",
			},
		},
	}
}
