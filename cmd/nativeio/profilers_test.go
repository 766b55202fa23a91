package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProfilePath_Success tests the naming of profile files per command.
func TestProfilePath_Success(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	assert.Empty(t, profilePath("", "copy", profileCPU))
	assert.Equal(t, filepath.Join(dir, "nativeio-copy-cpu.pprof"), profilePath(dir, "copy", profileCPU))
	assert.Equal(t, filepath.Join(dir, "nativeio-probe-allocs.pprof"), profilePath(dir, "probe", profileAllocs))
	assert.Equal(t, "/tmp/lock-run.prof", profilePath("/tmp/{cmd}-run.prof", "lock", profileCPU))
	assert.Equal(t, "plain.prof", profilePath("plain.prof", "cat", profileAllocs))
}

// TestProfiler_Success_Allocs tests that the allocation profile is written
// once the profiler stops.
func TestProfiler_Success_Allocs(t *testing.T) {
	t.Parallel()

	path := profilePath(t.TempDir(), "copy", profileAllocs)

	prof := newProfiler(t.Context(), profileAllocs, path)
	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist, "nothing is written before the end")

	prof.Stop()

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, fi.Size())
}

// TestProfiler_Success_Disabled tests that an empty path records nothing.
func TestProfiler_Success_Disabled(t *testing.T) {
	t.Parallel()

	prof := newProfiler(t.Context(), profileCPU, "")
	prof.Stop()
}

// TestProfiler_Fail_Create tests that an unwritable path is logged, not
// fatal.
func TestProfiler_Fail_Create(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "allocs.pprof")

	prof := newProfiler(t.Context(), profileAllocs, path)
	prof.Stop()

	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}
