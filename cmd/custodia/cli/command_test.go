// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestExecuteDispatchesSubcommand(t *testing.T) {
	ran := false
	root := &Command{
		Name: "custodia",
		Subcommands: []*Command{
			{
				Name: "address",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					ran = true
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"address"}, discardLogger()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ran {
		t.Error("subcommand did not run")
	}
}

func TestExecuteUnknownCommandSuggests(t *testing.T) {
	root := &Command{
		Name: "custodia",
		Subcommands: []*Command{
			{Name: "transfer", Run: func(context.Context, []string, *slog.Logger) error { return nil }},
		},
	}

	err := root.Execute(context.Background(), []string{"transfr"}, discardLogger())
	if err == nil {
		t.Fatal("Execute with unknown command succeeded, want error")
	}
	if !strings.Contains(err.Error(), `did you mean "transfer"`) {
		t.Errorf("error %q lacks suggestion", err)
	}
}

func TestExecuteParsesFlags(t *testing.T) {
	var identity string
	command := &Command{
		Name: "balance",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("balance", pflag.ContinueOnError)
			flags.StringVar(&identity, "identity", "default", "wallet identity")
			return flags
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"--identity", "ops"}, discardLogger()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if identity != "ops" {
		t.Errorf("identity = %q, want %q", identity, "ops")
	}
}

func TestExecuteUnknownFlagSuggests(t *testing.T) {
	command := &Command{
		Name: "balance",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("balance", pflag.ContinueOnError)
			flags.String("identity", "default", "wallet identity")
			return flags
		},
		Run: func(context.Context, []string, *slog.Logger) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--identty", "ops"}, discardLogger())
	if err == nil {
		t.Fatal("Execute with unknown flag succeeded, want error")
	}
	if !strings.Contains(err.Error(), "--identity") {
		t.Errorf("error %q lacks flag suggestion", err)
	}
}

func TestExecuteNoSubcommandShowsHelp(t *testing.T) {
	root := &Command{
		Name: "custodia",
		Subcommands: []*Command{
			{Name: "address", Summary: "Show the wallet address"},
		},
	}

	if err := root.Execute(context.Background(), nil, discardLogger()); err == nil {
		t.Fatal("Execute with no args succeeded, want error")
	}
}

func TestPrintHelpListsSubcommands(t *testing.T) {
	root := &Command{
		Name:    "custodia",
		Summary: "Key custody and transaction authorization",
		Subcommands: []*Command{
			{Name: "create", Summary: "Create a new wallet"},
			{Name: "transfer", Summary: "Send native tokens"},
		},
	}

	var out strings.Builder
	root.PrintHelp(&out)
	help := out.String()

	for _, want := range []string{"create", "transfer", "Create a new wallet"} {
		if !strings.Contains(help, want) {
			t.Errorf("help output lacks %q:\n%s", want, help)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"transfer", "transfr", 1},
		{"balance", "ballance", 1},
		{"kitten", "sitting", 3},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
