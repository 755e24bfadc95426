// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// legacyFileName is the deprecated single-identity store location:
// a bare record document predating the identity-keyed format.
const legacyFileName = "wallet.json"

// MigrateLegacy moves a deprecated-location store into the canonical one.
// It runs once at startup in single-identity deployments:
//
//   - canonical store already has content -> no-op (never overwrites)
//   - legacy file absent -> no-op
//   - otherwise the legacy record becomes the default identity's record
//     in the canonical store and the legacy file is deleted
//
// Idempotent: a second call finds the canonical store populated and
// returns immediately. The copy lands before the delete, so a crash
// between the two loses nothing — the next run sees the canonical store
// and stops.
func (s *Store) MigrateLegacy() error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := os.Stat(s.Path()); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("keystore: checking canonical store: %w", err)
	}

	legacyPath := filepath.Join(s.directory, legacyFileName)
	data, err := os.ReadFile(legacyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("keystore: reading legacy store: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("%w: legacy store: %v", ErrCorruptStore, err)
	}
	if record.Address == "" || record.Envelope.Ciphertext == "" {
		return fmt.Errorf("%w: legacy store is missing address or envelope", ErrCorruptStore)
	}

	if err := s.write(document{DefaultIdentity: record}); err != nil {
		return err
	}
	if err := os.Remove(legacyPath); err != nil {
		return fmt.Errorf("keystore: removing legacy store: %w", err)
	}

	s.logger.Info("migrated legacy wallet store",
		"from", legacyPath, "to", s.Path(), "address", record.Address)
	return nil
}
