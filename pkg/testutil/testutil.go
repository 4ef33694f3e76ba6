// Package testutil provides shared helpers for tests.
package testutil

import (
	"os"
	"testing"
)

// TempDir creates a temporary directory with the given pattern and
// registers cleanup on the test. Unlike t.TempDir it accepts a pattern,
// which keeps leftover directories identifiable if cleanup ever fails.
func TempDir(t *testing.T, pattern string) string {
	t.Helper()
	dir, err := os.MkdirTemp("", pattern)
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})
	return dir
}
