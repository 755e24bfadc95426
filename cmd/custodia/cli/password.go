// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/custodia-foundation/custodia/lib/secret"
)

// ReadPassword reads a wallet password into guarded memory. If
// passwordFile is empty or "-", prompts interactively on the terminal
// with echo disabled. Otherwise, reads from the file path.
func ReadPassword(passwordFile string) (*secret.Buffer, error) {
	if passwordFile != "" && passwordFile != "-" {
		return secret.ReadFromPath(passwordFile)
	}
	return promptPassword("Password: ")
}

// ReadPasswordConfirmed prompts twice and fails when the entries
// differ. Used when creating a wallet — there is no recovery from a
// mistyped password once the key is sealed under it. With a
// --password-file, no confirmation happens; the file is the record.
func ReadPasswordConfirmed(passwordFile string) (*secret.Buffer, error) {
	if passwordFile != "" && passwordFile != "-" {
		return secret.ReadFromPath(passwordFile)
	}

	first, err := promptPassword("Password: ")
	if err != nil {
		return nil, err
	}
	second, err := promptPassword("Confirm password: ")
	if err != nil {
		first.Close()
		return nil, err
	}
	defer second.Close()

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		first.Close()
		return nil, fmt.Errorf("passwords do not match")
	}
	return first, nil
}

// promptPassword reads from the terminal with echo disabled.
func promptPassword(prompt string) (*secret.Buffer, error) {
	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return nil, fmt.Errorf("no terminal available for interactive password prompt (use --password-file)")
	}

	fmt.Fprint(os.Stderr, prompt)
	passwordBytes, err := term.ReadPassword(stdinFileDescriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	// FromBytes zeroes passwordBytes after copying it into the guarded
	// buffer.
	buffer, err := secret.FromBytes(passwordBytes)
	if err != nil {
		secret.Zero(passwordBytes)
		return nil, err
	}
	return buffer, nil
}
