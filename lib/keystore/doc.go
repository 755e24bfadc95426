// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

// Package keystore owns the at-rest wallet records: a JSON document
// mapping an identity to {address, envelope, createdAt}, stored with
// owner-only permissions under the engine's state directory.
//
// Single-installation deployments use the fixed [DefaultIdentity];
// multi-identity deployments pass caller-supplied identities through the
// same store. There is one implementation, parameterized by the identity
// key — not one store variant per deployment.
//
// Records are immutable after creation. There is no password rotation and
// no re-encryption: the address in a record is always exactly the address
// derivable from the secret sealed in its envelope, and the store never
// gives either side a chance to diverge.
//
// Writes serialize through an OS-level file lock around load-modify-save
// and land via an atomic temp-file-then-rename, so concurrent creates for
// different identities never lose each other's records and readers never
// observe a partial document. No lock is held while key material is in
// use or while the network is awaited — locking covers file mutation
// only.
package keystore
