// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads Custodia's configuration from a single YAML file
// specified by the CUSTODIA_CONFIG environment variable or the --config
// flag. There are no fallbacks or automatic discovery — configuration is
// deterministic and auditable, with no hidden overrides. The only
// computed default is the state directory, which falls back to
// ~/.custodia when unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted when no --config flag
// is passed.
const EnvVar = "CUSTODIA_CONFIG"

// defaultConfirmationTimeout applies when the file does not set one.
const defaultConfirmationTimeout = 2 * time.Minute

// Config is the master configuration for Custodia.
type Config struct {
	// Paths configures file locations.
	Paths PathsConfig `yaml:"paths"`

	// Chain configures the network client and contract addresses.
	Chain ChainConfig `yaml:"chain"`

	// Launchpad configures the remote launch-platform API.
	Launchpad LaunchpadConfig `yaml:"launchpad"`

	// Escrow configures backup recipients.
	Escrow EscrowConfig `yaml:"escrow"`
}

// PathsConfig configures file locations.
type PathsConfig struct {
	// StateDir holds the keystore and fee ledger. Defaults to
	// ~/.custodia. Created with owner-only permissions on first use.
	StateDir string `yaml:"state_dir"`
}

// ChainConfig configures the network client.
type ChainConfig struct {
	// RPCURL is the JSON-RPC endpoint.
	RPCURL string `yaml:"rpc_url"`

	// FeePool is the creator-fee pool contract address.
	FeePool string `yaml:"fee_pool"`

	// Vesting is the vesting contract address.
	Vesting string `yaml:"vesting"`

	// ConfirmationTimeout bounds how long a broadcast waits for its
	// receipt. Defaults to 2m.
	ConfirmationTimeout time.Duration `yaml:"confirmation_timeout"`
}

// LaunchpadConfig configures the remote launch-platform API.
type LaunchpadConfig struct {
	// BaseURL is the platform's API root.
	BaseURL string `yaml:"base_url"`
}

// EscrowConfig configures backup exports.
type EscrowConfig struct {
	// Recipients are age public keys backups are encrypted to.
	Recipients []string `yaml:"recipients"`
}

// Load reads and validates the configuration. When path is empty, the
// CUSTODIA_CONFIG environment variable is consulted; if that is also
// unset, Load fails.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return nil, fmt.Errorf("config: no config file (set %s or pass --config)", EnvVar)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &config, nil
}

func (c *Config) applyDefaults() error {
	if c.Paths.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("config: resolving home directory: %w", err)
		}
		c.Paths.StateDir = filepath.Join(home, ".custodia")
	}
	if c.Chain.ConfirmationTimeout <= 0 {
		c.Chain.ConfirmationTimeout = defaultConfirmationTimeout
	}
	return nil
}

// Validate checks required fields and address syntax.
func (c *Config) Validate() error {
	if c.Chain.RPCURL == "" {
		return fmt.Errorf("chain.rpc_url is required")
	}
	if c.Chain.FeePool != "" && !common.IsHexAddress(c.Chain.FeePool) {
		return fmt.Errorf("chain.fee_pool %q is not a valid address", c.Chain.FeePool)
	}
	if c.Chain.Vesting != "" && !common.IsHexAddress(c.Chain.Vesting) {
		return fmt.Errorf("chain.vesting %q is not a valid address", c.Chain.Vesting)
	}
	return nil
}
