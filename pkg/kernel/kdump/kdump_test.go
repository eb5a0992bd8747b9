// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package kdump_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antimetal/oskernel/pkg/kernel/kdump"
	"github.com/antimetal/oskernel/pkg/kernel/kerrors"
)

func TestOpenUsesConfiguredDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(kdump.DumpDirEnvVar, dir)

	w, err := kdump.Open("kernelctl", 1234, ".dmp")
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Write(kdump.Entry{ProcessName: "kernelctl", ThreadName: "main"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kernelctl_1234.dmp", entries[0].Name())
}

func TestWriteSerializesConcurrentCallers(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(kdump.DumpDirEnvVar, dir)

	w, err := kdump.Open("kernelctl", 42, ".dmp")
	require.NoError(t, err)
	defer w.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = w.Write(kdump.Entry{
				ProcessName:   "kernelctl",
				ThreadName:    "worker",
				Facility:      "net",
				ErrorID:       i,
				KernelErrorID: kerrors.Timeout,
				AuxText:       "concurrent write",
			})
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(dir, "kernelctl_42.dmp"))
	require.NoError(t, err)
	lines := countLines(string(data))
	assert.Equal(t, 50, lines)
}

func countLines(s string) int {
	n := 0
	for _, c := range s {
		if c == '\n' {
			n++
		}
	}
	return n
}
