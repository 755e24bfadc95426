// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

// Package ledger records claim outcomes in a JSON document beside the
// keystore. The ledger consumes only engine outputs — identities,
// addresses, transaction hashes — and never secret material. It exists so
// creators can answer "what did I claim, when, and which way" without
// replaying chain history.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	ledgerFileName = "fees.json"
	lockFileName   = "fees.lock"

	fileMode = 0600
)

// ErrCorruptLedger is returned when the ledger file exists but cannot be
// parsed.
var ErrCorruptLedger = errors.New("ledger: file is corrupt")

// Entry is one recorded claim.
type Entry struct {
	Identity  string    `json:"identity"`
	Address   string    `json:"address"`
	Method    string    `json:"method"`
	TxHash    string    `json:"txHash,omitempty"`
	ClaimedAt time.Time `json:"claimedAt"`
}

// Filter selects entries in List. Zero fields match everything.
type Filter struct {
	Identity string
	Method   string
}

// Ledger is a handle on one fee-ledger file.
type Ledger struct {
	directory string
	logger    *slog.Logger
}

// Open prepares a ledger handle rooted at directory. The directory is
// expected to exist (the keystore creates it).
func Open(directory string, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := os.Stat(directory)
	if err != nil {
		return nil, fmt.Errorf("ledger: state directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("ledger: %s is not a directory", directory)
	}
	return &Ledger{directory: directory, logger: logger}, nil
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return filepath.Join(l.directory, ledgerFileName)
}

// Append records one claim. Writes hold the ledger's file lock around
// load-append-save so concurrent claims for different identities never
// drop each other's rows.
func (l *Ledger) Append(entry Entry) error {
	fileLock := flock.New(filepath.Join(l.directory, lockFileName))
	if err := fileLock.Lock(); err != nil {
		return fmt.Errorf("ledger: locking: %w", err)
	}
	defer fileLock.Unlock()

	entries, err := l.read()
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	return l.write(entries)
}

// List returns entries matching filter, oldest first.
func (l *Ledger) List(filter Filter) ([]Entry, error) {
	entries, err := l.read()
	if err != nil {
		return nil, err
	}

	matched := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if filter.Identity != "" && entry.Identity != filter.Identity {
			continue
		}
		if filter.Method != "" && entry.Method != filter.Method {
			continue
		}
		matched = append(matched, entry)
	}
	return matched, nil
}

// TotalByMethod aggregates claim counts per method.
func (l *Ledger) TotalByMethod() (map[string]int, error) {
	entries, err := l.read()
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int)
	for _, entry := range entries {
		totals[entry.Method]++
	}
	return totals, nil
}

func (l *Ledger) read() ([]Entry, error) {
	data, err := os.ReadFile(l.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: reading: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLedger, err)
	}
	return entries, nil
}

// write saves atomically: temp file, fsync, rename. Same discipline as
// the keystore save.
func (l *Ledger) write(entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("ledger: encoding: %w", err)
	}
	data = append(data, '\n')

	path := l.Path()
	temporaryPath := path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return fmt.Errorf("ledger: creating temporary file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("ledger: writing temporary file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("ledger: syncing temporary file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("ledger: closing temporary file: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("ledger: renaming into place: %w", err)
	}
	return nil
}
