// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides a memory-safe buffer for wallet passwords and
// decrypted key material.
//
// A [Buffer] allocates its backing memory outside the Go heap via
// mmap(MAP_ANONYMOUS), locks it into physical RAM via mlock (preventing
// swap), and marks it excluded from core dumps via madvise(MADV_DONTDUMP).
// On Close, the memory is zeroed, unlocked, and unmapped. Because the
// garbage collector never sees the region, it cannot copy or relocate
// it — the zeroed bytes are the only copy that ever existed there.
//
// Every password accepted by the engine and every private key decrypted
// from the keystore travels in a Buffer. Plain []byte or string copies of
// secret material are allowed only at API boundaries that require them
// (key parsing, JSON encoding) and are zeroed immediately after use via
// [Zero].
//
// Key exports:
//
//   - [New] / [FromBytes] -- allocate a guarded buffer
//   - [ReadFromPath] -- load a secret from a file or stdin
//   - [Zero] -- scrub a heap-allocated byte slice in place
package secret
