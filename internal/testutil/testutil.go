// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/faultskin/internal/volume"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// WriteVolume writes v as a big-endian raw file named name under dir and
// returns its path.
func WriteVolume(t testing.TB, dir, name string, v *volume.Volume) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	AssertNoError(t, err)
	defer f.Close()
	AssertNoError(t, volume.WriteRaw(f, v, binary.BigEndian))
	return path
}

// TempDBPath returns a database path inside a per-test directory.
func TempDBPath(t testing.TB) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "faultskin.db")
}
