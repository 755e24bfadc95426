// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/custodia-foundation/custodia/cmd/custodia/cli"
)

// CreateCommand returns the "create" command for generating a new
// wallet.
func CreateCommand() *cli.Command {
	var (
		configPath   string
		identity     string
		passwordFile string
	)

	return &cli.Command{
		Name:    "create",
		Summary: "Create a new wallet",
		Description: `Generate a fresh account and seal its private key under a password.

The key is generated locally, encrypted with AES-256-GCM under a key
derived from the password, and written to the keystore. The plaintext
key exists in memory only for the duration of this command. There is no
password recovery: losing the password loses the account.

Creating fails if the identity already has a wallet — existing keys are
never regenerated or overwritten.`,
		Usage: "custodia create [flags]",
		Examples: []cli.Example{
			{
				Description: "Create the default wallet (prompts for password twice)",
				Command:     "custodia create",
			},
			{
				Description: "Create a named wallet with the password from a file",
				Command:     "custodia create --identity ops --password-file /run/secrets/wallet",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("create", pflag.ContinueOnError)
			commonFlags(flags, &configPath, &identity)
			flags.StringVar(&passwordFile, "password-file", "", "path to file containing the password, or - to prompt")
			return flags
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			application, err := openApp(configPath, logger)
			if err != nil {
				return err
			}

			password, err := cli.ReadPasswordConfirmed(passwordFile)
			if err != nil {
				return err
			}
			defer password.Close()

			engine, err := application.offlineEngine()
			if err != nil {
				return err
			}

			address, err := engine.Create(identity, password)
			if err != nil {
				return err
			}

			fmt.Printf("%s\n", address.Hex())
			return nil
		},
	}
}

// AddressCommand returns the "address" command.
func AddressCommand() *cli.Command {
	var (
		configPath string
		identity   string
	)

	return &cli.Command{
		Name:    "address",
		Summary: "Show the wallet address",
		Description: `Print the stored account address. The address is public material —
no password is required and no key is decrypted.`,
		Usage: "custodia address [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("address", pflag.ContinueOnError)
			commonFlags(flags, &configPath, &identity)
			return flags
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			application, err := openApp(configPath, logger)
			if err != nil {
				return err
			}
			engine, err := application.offlineEngine()
			if err != nil {
				return err
			}

			address, err := engine.Address(identity)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", address.Hex())
			return nil
		},
	}
}

// ListCommand returns the "list" command showing stored identities.
func ListCommand() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:    "list",
		Summary: "List wallet identities",
		Usage:   "custodia list [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "", "path to config file")
			return flags
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			application, err := openApp(configPath, logger)
			if err != nil {
				return err
			}

			identities, err := application.store.Identities()
			if err != nil {
				return err
			}
			sort.Strings(identities)
			for _, identity := range identities {
				fmt.Println(identity)
			}
			return nil
		},
	}
}

// BalanceCommand returns the "balance" command.
func BalanceCommand() *cli.Command {
	var (
		configPath string
		identity   string
	)

	return &cli.Command{
		Name:    "balance",
		Summary: "Show the wallet's native-token balance",
		Usage:   "custodia balance [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("balance", pflag.ContinueOnError)
			commonFlags(flags, &configPath, &identity)
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			application, err := openApp(configPath, logger)
			if err != nil {
				return err
			}
			engine, cleanup, err := application.engine(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			balance, err := engine.Balance(ctx, identity)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", balance.String())
			return nil
		},
	}
}

// SignCommand returns the "sign" command producing a personal-message
// signature.
func SignCommand() *cli.Command {
	var (
		configPath   string
		identity     string
		passwordFile string
	)

	return &cli.Command{
		Name:    "sign",
		Summary: "Sign a message with the wallet key",
		Description: `Produce an EIP-191 personal signature over the given message and
print it hex-encoded. The key is decrypted for the signing call only
and discarded before the signature is printed.`,
		Usage: "custodia sign <message> [flags]",
		Examples: []cli.Example{
			{
				Description: "Sign an ownership statement",
				Command:     `custodia sign "I control this account" --password-file /run/secrets/wallet`,
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("sign", pflag.ContinueOnError)
			commonFlags(flags, &configPath, &identity)
			flags.StringVar(&passwordFile, "password-file", "", "path to file containing the password, or - to prompt")
			return flags
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return fmt.Errorf("message is required\n\nUsage: custodia sign <message> [flags]")
			}
			message := strings.Join(args, " ")

			application, err := openApp(configPath, logger)
			if err != nil {
				return err
			}

			password, err := cli.ReadPassword(passwordFile)
			if err != nil {
				return err
			}
			defer password.Close()

			engine, err := application.offlineEngine()
			if err != nil {
				return err
			}

			signature, err := engine.SignMessage(identity, password, []byte(message))
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", signature)
			return nil
		},
	}
}
