// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/custodia-foundation/custodia/cmd/custodia/cli"
	"github.com/custodia-foundation/custodia/lib/ledger"
)

// LedgerCommand returns the "ledger" command group for inspecting
// recorded claims.
func LedgerCommand() *cli.Command {
	return &cli.Command{
		Name:    "ledger",
		Summary: "Inspect the local fee ledger",
		Description: `The fee ledger records every claim this installation has executed:
identity, address, claim method, transaction hash, and timestamp. It is
local bookkeeping — nothing here is read from or written to the chain.`,
		Subcommands: []*cli.Command{
			ledgerListCommand(),
			ledgerTotalsCommand(),
		},
	}
}

func ledgerListCommand() *cli.Command {
	var (
		configPath string
		identity   string
		method     string
	)

	return &cli.Command{
		Name:    "list",
		Summary: "List recorded claims",
		Usage:   "custodia ledger list [flags]",
		Examples: []cli.Example{
			{
				Description: "All sponsored claims for one wallet",
				Command:     "custodia ledger list --identity ops --method sponsored",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "path to config file")
			flags.StringVar(&identity, "identity", "", "filter by identity")
			flags.StringVar(&method, "method", "", "filter by claim method (direct, sponsored, vesting)")
			return flags
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			application, err := openApp(configPath, logger)
			if err != nil {
				return err
			}

			entries, err := application.ledger.List(ledger.Filter{
				Identity: identity,
				Method:   method,
			})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "CLAIMED\tIDENTITY\tMETHOD\tTX")
			for _, entry := range entries {
				tx := entry.TxHash
				if tx == "" {
					tx = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					entry.ClaimedAt.Format(time.RFC3339), entry.Identity, entry.Method, tx)
			}
			return tw.Flush()
		},
	}
}

func ledgerTotalsCommand() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:    "totals",
		Summary: "Show claim counts per method",
		Usage:   "custodia ledger totals [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("totals", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "path to config file")
			return flags
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			application, err := openApp(configPath, logger)
			if err != nil {
				return err
			}

			totals, err := application.ledger.TotalByMethod()
			if err != nil {
				return err
			}

			methods := make([]string, 0, len(totals))
			for method := range totals {
				methods = append(methods, method)
			}
			sort.Strings(methods)

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "METHOD\tCLAIMS")
			for _, method := range methods {
				fmt.Fprintf(tw, "%s\t%d\n", method, totals[method])
			}
			return tw.Flush()
		},
	}
}
