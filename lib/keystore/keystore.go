// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gofrs/flock"

	"github.com/custodia-foundation/custodia/lib/envelope"
	"github.com/custodia-foundation/custodia/lib/secret"
)

// DefaultIdentity is the identity key used by single-installation
// deployments that never name their wallet explicitly.
const DefaultIdentity = "default"

const (
	storeFileName = "keystore.json"
	lockFileName  = "keystore.lock"

	// Owner-only: the store holds encrypted key material.
	directoryMode = 0700
	fileMode      = 0600
)

var (
	// ErrNoWallet is returned when the store or the identity's record is
	// absent.
	ErrNoWallet = errors.New("keystore: no wallet for identity")

	// ErrAlreadyExists is returned by Create when the identity already has
	// a record. Create never regenerates or re-encrypts an existing
	// secret.
	ErrAlreadyExists = errors.New("keystore: wallet already exists")

	// ErrCorruptStore is returned when the store file exists but cannot be
	// parsed. Fatal — no partial recovery is attempted.
	ErrCorruptStore = errors.New("keystore: store file is corrupt")
)

// Record is one identity's stored wallet. Address is the hex form of the
// account address derivable from the secret sealed in Envelope; CreatedAt
// is set once at creation and never mutated.
type Record struct {
	Address   string            `json:"address"`
	Envelope  envelope.Envelope `json:"envelope"`
	CreatedAt time.Time         `json:"createdAt"`
}

// document is the on-disk shape of the store: identity -> record.
type document map[string]Record

// Store is a handle on one keystore file. All file access goes through
// the handle — there is no ambient store state.
type Store struct {
	directory string
	logger    *slog.Logger
}

// Open prepares a store handle rooted at directory, creating the
// directory with owner-only permissions if it does not exist. Existing
// content is never altered.
func Open(directory string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(directory, directoryMode); err != nil {
		return nil, fmt.Errorf("keystore: creating state directory: %w", err)
	}
	return &Store{directory: directory, logger: logger}, nil
}

// Path returns the canonical store file path.
func (s *Store) Path() string {
	return filepath.Join(s.directory, storeFileName)
}

// Load returns the record for identity, or ErrNoWallet when the store
// file or the identity's entry is absent. Reads take no lock: saves are
// atomic renames, so a read always sees a complete document.
func (s *Store) Load(identity string) (*Record, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	record, ok := doc[identity]
	if !ok {
		return nil, ErrNoWallet
	}
	return &record, nil
}

// Identities returns the identity keys present in the store, or an empty
// slice when the store file does not exist yet.
func (s *Store) Identities() ([]string, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	identities := make([]string, 0, len(doc))
	for identity := range doc {
		identities = append(identities, identity)
	}
	return identities, nil
}

// Create generates a fresh secp256k1 keypair for identity, seals the
// private key under password, and writes the new record. Returns
// ErrAlreadyExists when the identity already has a record — the stored
// secret is never touched. The whole load-modify-save runs under the
// store's file lock so two concurrent creates cannot overwrite each
// other's records.
func (s *Store) Create(identity string, password *secret.Buffer) (common.Address, error) {
	unlock, err := s.lock()
	if err != nil {
		return common.Address{}, err
	}
	defer unlock()

	doc, err := s.read()
	if err != nil {
		return common.Address{}, err
	}
	if _, ok := doc[identity]; ok {
		return common.Address{}, ErrAlreadyExists
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return common.Address{}, fmt.Errorf("keystore: generating key: %w", err)
	}
	address := crypto.PubkeyToAddress(key.PublicKey)

	keyBytes := crypto.FromECDSA(key)
	env, err := envelope.Seal(keyBytes, password)
	secret.Zero(keyBytes)
	zeroPrivateKey(key)
	if err != nil {
		return common.Address{}, fmt.Errorf("keystore: sealing key: %w", err)
	}

	doc[identity] = Record{
		Address:   address.Hex(),
		Envelope:  env,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.write(doc); err != nil {
		return common.Address{}, err
	}

	s.logger.Info("wallet created", "identity", identity, "address", address.Hex())
	return address, nil
}

// read parses the store file. A missing file yields an empty document
// (the store is created lazily on first Create); malformed JSON maps to
// ErrCorruptStore; any other I/O failure propagates wrapped.
func (s *Store) read() (document, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return document{}, nil
		}
		return nil, fmt.Errorf("keystore: reading store: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	return doc, nil
}

// write saves the document atomically: temp file in the same directory,
// write, fsync, rename into place, fsync the directory. Readers never see
// a partial document and a crash mid-save leaves the previous store
// intact.
func (s *Store) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("keystore: encoding store: %w", err)
	}
	data = append(data, '\n')

	path := s.Path()
	temporaryPath := path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fileMode)
	if err != nil {
		return fmt.Errorf("keystore: creating temporary store file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("keystore: writing temporary store file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("keystore: syncing temporary store file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("keystore: closing temporary store file: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("keystore: renaming store file into place: %w", err)
	}

	// Sync the directory so the rename survives power loss.
	if directory, err := os.Open(s.directory); err == nil {
		directory.Sync()
		directory.Close()
	}
	return nil
}

// lock takes the store's exclusive file lock and returns the release
// function. The lock file sits beside the store file; locking the store
// file itself would not survive the rename-based save.
func (s *Store) lock() (func(), error) {
	fileLock := flock.New(filepath.Join(s.directory, lockFileName))
	if err := fileLock.Lock(); err != nil {
		return nil, fmt.Errorf("keystore: locking store: %w", err)
	}
	return func() {
		if err := fileLock.Unlock(); err != nil {
			s.logger.Warn("releasing store lock failed", "error", err)
		}
	}, nil
}
