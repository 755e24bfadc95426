// Copyright 2026 The Custodia Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(path, []byte("hunter2\n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	buffer, err := ReadFromPath(path)
	if err != nil {
		t.Fatalf("ReadFromPath: %v", err)
	}
	defer buffer.Close()

	if got := buffer.String(); got != "hunter2" {
		t.Errorf("String() = %q, want %q (trailing newline stripped)", got, "hunter2")
	}
}

func TestReadFromPathEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(path, []byte("\n\n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := ReadFromPath(path); err == nil {
		t.Fatal("ReadFromPath on whitespace-only file succeeded, want error")
	}
}

func TestReadFromPathMissingFile(t *testing.T) {
	if _, err := ReadFromPath(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("ReadFromPath on missing file succeeded, want error")
	}
}
