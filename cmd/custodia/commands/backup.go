// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/custodia-foundation/custodia/cmd/custodia/cli"
	"github.com/custodia-foundation/custodia/lib/backup"
)

// BackupCommand returns the "backup" command exporting an escrow copy
// of a wallet record.
func BackupCommand() *cli.Command {
	var (
		configPath string
		identity   string
		recipients []string
	)

	return &cli.Command{
		Name:    "backup",
		Summary: "Export an escrow copy of a wallet record",
		Description: `Encrypt the wallet's stored record to one or more age recipients and
print the base64 ciphertext to stdout.

The record's password envelope stays sealed inside the export: an
escrow holder needs both the age private key and the wallet password to
reach the account key. Recipients come from --recipient flags, falling
back to escrow.recipients in the config file.`,
		Usage: "custodia backup [flags]",
		Examples: []cli.Example{
			{
				Description: "Export to the configured escrow recipients",
				Command:     "custodia backup --identity ops > ops.escrow",
			},
			{
				Description: "Export to an explicit recipient",
				Command:     "custodia backup --recipient age1ql3z7hjy54pw3hyww5ayyfg7zqgvc7w3j2elw8zmrj2kg5sfn9aqmcac8p",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("backup", pflag.ContinueOnError)
			commonFlags(flags, &configPath, &identity)
			flags.StringArrayVar(&recipients, "recipient", nil, "age recipient public key (repeatable)")
			return flags
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			application, err := openApp(configPath, logger)
			if err != nil {
				return err
			}

			recipientKeys := recipients
			if len(recipientKeys) == 0 {
				recipientKeys = application.config.Escrow.Recipients
			}
			if len(recipientKeys) == 0 {
				return fmt.Errorf("no escrow recipients (pass --recipient or set escrow.recipients)")
			}

			record, err := application.store.Load(identity)
			if err != nil {
				return err
			}

			export, err := backup.ExportRecord(record, recipientKeys)
			if err != nil {
				return err
			}

			fmt.Println(export)
			return nil
		},
	}
}

// EscrowKeygenCommand returns the "escrow-keygen" command.
func EscrowKeygenCommand() *cli.Command {
	var outPath string

	return &cli.Command{
		Name:    "escrow-keygen",
		Summary: "Generate an age escrow keypair",
		Description: `Generate a new age x25519 keypair for wallet escrow. The public key
is printed to stdout (put it in escrow.recipients); the private key is
written to --out with owner-only permissions, or printed to stdout when
--out is omitted. Store the private key offline — anyone holding it and
the wallet password can recover the account.`,
		Usage: "custodia escrow-keygen [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("escrow-keygen", pflag.ContinueOnError)
			flags.StringVar(&outPath, "out", "", "write the private key to this file (mode 0600)")
			return flags
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			keypair, err := backup.GenerateEscrowKeypair()
			if err != nil {
				return err
			}
			defer keypair.Close()

			fmt.Printf("# public key: %s\n", keypair.PublicKey)

			if outPath == "" {
				fmt.Printf("%s\n", keypair.PrivateKey.String())
				return nil
			}

			content := append([]byte(keypair.PrivateKey.String()), '\n')
			if err := os.WriteFile(outPath, content, 0600); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			fmt.Fprintf(os.Stderr, "private key written to %s\n", outPath)
			return nil
		},
	}
}
