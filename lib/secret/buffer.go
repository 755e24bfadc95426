// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Buffer holds sensitive data in memory that is locked against swapping,
// excluded from core dumps, and zeroed on Close. The backing memory is an
// anonymous mmap region outside the Go heap.
//
// A Buffer must not be copied after creation. After Close, any access to
// the contents panics — a closed buffer holding a wallet key must never
// be read again silently.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	length int
	closed bool
}

// New allocates a guarded buffer of the given size. The region is:
//   - locked into physical RAM (mlock), preventing swap
//   - excluded from core dumps (MADV_DONTDUMP)
//   - outside the Go heap, invisible to the garbage collector
//
// The caller must Close the buffer when the secret is no longer needed.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}

	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap: %w", err)
	}

	if err := unix.Mlock(data); err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: mlock: %w", err)
	}

	if err := unix.Madvise(data, unix.MADV_DONTDUMP); err != nil {
		unix.Munlock(data)
		unix.Munmap(data)
		return nil, fmt.Errorf("secret: madvise(MADV_DONTDUMP): %w", err)
	}

	return &Buffer{
		data:   data,
		length: size,
	}, nil
}

// FromBytes copies existing data into a guarded buffer and zeroes the
// source slice in place, so the caller's copy no longer holds the secret.
func FromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: cannot create buffer from empty source")
	}

	buffer, err := New(len(source))
	if err != nil {
		return nil, err
	}

	copy(buffer.data, source)
	Zero(source)

	return buffer, nil
}

// Bytes returns the secret data. The slice points directly into the mmap
// region — do not hold references beyond the Buffer's lifetime. Panics if
// the buffer has been closed.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}

	return b.data[:b.length]
}

// String returns the secret as a string. Go strings are immutable heap
// copies, so use this only at API boundaries that require a string and
// keep the value request-scoped. Prefer Bytes. Panics if the buffer has
// been closed.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}

	return string(b.data[:b.length])
}

// Len returns the size of the secret data.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.length
}

// Close zeroes the contents, then unlocks and unmaps the region. After
// Close, reads panic. Idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	Zero(b.data)

	// Unlock/unmap failures are reported but not fatal — the zeroed
	// region is released when the process exits regardless.
	var firstError error
	if err := unix.Munlock(b.data); err != nil {
		firstError = fmt.Errorf("secret: munlock: %w", err)
	}
	if err := unix.Munmap(b.data); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munmap: %w", err)
	}

	b.data = nil
	return firstError
}

// Zero overwrites a byte slice in place. Use it to scrub transient heap
// copies of secret material (parsed keys, encoded JSON) as soon as they
// have served their purpose.
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
}
