// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pathcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExecutable(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
}

func TestNames_ScansExecutablesOnly(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, dir, "runme")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	c := New(50*time.Millisecond, nil)
	defer c.Close()

	names := c.Names(dir)
	assert.Equal(t, []string{"runme"}, names)
}

func TestNames_SortedAndCached(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, dir, "zeta")
	writeExecutable(t, dir, "alpha")

	c := New(50*time.Millisecond, nil)
	defer c.Close()

	names := c.Names(dir)
	assert.Equal(t, []string{"alpha", "zeta"}, names)

	// A file added after the first scan, without invalidation, shouldn't
	// appear — confirms we're serving the cached entry, not rescanning.
	writeExecutable(t, dir, "beta")
	names2 := c.Names(dir)
	assert.Equal(t, []string{"alpha", "zeta"}, names2)
}

func TestNames_MissingDirReturnsNil(t *testing.T) {
	c := New(50*time.Millisecond, nil)
	defer c.Close()

	names := c.Names(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Nil(t, names)
}

func TestWatch_InvalidatesOnChange(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, dir, "alpha")

	c := New(30*time.Millisecond, nil)
	defer c.Close()
	c.Watch(dir)

	names := c.Names(dir)
	require.Equal(t, []string{"alpha"}, names)

	writeExecutable(t, dir, "beta")

	require.Eventually(t, func() bool {
		names := c.Names(dir)
		return len(names) == 2
	}, 2*time.Second, 20*time.Millisecond)
}
