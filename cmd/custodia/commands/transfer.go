// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/spf13/pflag"

	"github.com/custodia-foundation/custodia/cmd/custodia/cli"
)

// TransferCommand returns the "transfer" command.
func TransferCommand() *cli.Command {
	var (
		configPath   string
		identity     string
		passwordFile string
	)

	return &cli.Command{
		Name:    "transfer",
		Summary: "Send native tokens to an address",
		Description: `Send an amount of the native token (in wei) to a destination address
and wait for on-chain confirmation.

The destination and the account balance are validated before the key is
decrypted. The transaction is irreversible once broadcast: on a
confirmation timeout the transfer is NOT retried — check the
transaction hash on a block explorer before doing anything else.`,
		Usage: "custodia transfer <to-address> <amount-wei> [flags]",
		Examples: []cli.Example{
			{
				Description: "Send 0.01 ETH (10^16 wei)",
				Command:     "custodia transfer 0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B 10000000000000000",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("transfer", pflag.ContinueOnError)
			commonFlags(flags, &configPath, &identity)
			flags.StringVar(&passwordFile, "password-file", "", "path to file containing the password, or - to prompt")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("destination and amount are required\n\nUsage: custodia transfer <to-address> <amount-wei> [flags]")
			}
			destination := args[0]

			amount, ok := new(big.Int).SetString(args[1], 10)
			if !ok || amount.Sign() <= 0 {
				return fmt.Errorf("amount %q is not a positive integer (wei)", args[1])
			}

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

			receipt, err := engine.Transfer(ctx, identity, password, destination, amount)
			if err != nil {
				return err
			}

			fmt.Printf("confirmed %s in block %d\n", receipt.TxHash, receipt.BlockNumber)
			return nil
		},
	}
}
