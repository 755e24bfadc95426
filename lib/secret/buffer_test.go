// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"testing"
)

func TestNew(t *testing.T) {
	buffer, err := New(32)
	if err != nil {
		t.Fatalf("New(32): %v", err)
	}
	defer buffer.Close()

	if buffer.Len() != 32 {
		t.Errorf("Len() = %d, want 32", buffer.Len())
	}

	// mmap memory starts zeroed.
	for index, value := range buffer.Bytes() {
		if value != 0 {
			t.Fatalf("byte %d = %d, want 0", index, value)
		}
	}
}

func TestNewRejectsNonPositiveSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := New(size); err == nil {
			t.Errorf("New(%d) succeeded, want error", size)
		}
	}
}

func TestFromBytes(t *testing.T) {
	source := []byte("correct-horse-battery-staple")
	original := string(source)

	buffer, err := FromBytes(source)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	defer buffer.Close()

	if got := buffer.String(); got != original {
		t.Errorf("String() = %q, want %q", got, original)
	}

	// The caller's slice must be scrubbed.
	for index, value := range source {
		if value != 0 {
			t.Fatalf("source byte %d = %d, want 0", index, value)
		}
	}
}

func TestFromBytesRejectsEmpty(t *testing.T) {
	if _, err := FromBytes(nil); err == nil {
		t.Fatal("FromBytes(nil) succeeded, want error")
	}
}

func TestCloseZeroesAndPanicsOnRead(t *testing.T) {
	buffer, err := FromBytes([]byte("ephemeral"))
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}

	if err := buffer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Second Close is a no-op.
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Bytes() after Close did not panic")
		}
	}()
	buffer.Bytes()
}

func TestZero(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	Zero(data)
	for index, value := range data {
		if value != 0 {
			t.Errorf("byte %d = %d, want 0", index, value)
		}
	}
}
