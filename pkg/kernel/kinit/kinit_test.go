// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package kinit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antimetal/oskernel/pkg/kernel/kinit"
)

func TestInitBringsUpEveryComponent(t *testing.T) {
	t.Setenv("KERNEL_DUMP_DIR", t.TempDir())

	k, err := kinit.Init(kinit.Config{ProcessName: "kernelctl-test"})
	require.NoError(t, err)
	defer k.Term()

	assert.NotNil(t, k.Errors)
	assert.NotNil(t, k.TLS)
	assert.NotNil(t, k.Dump)
	assert.NotNil(t, k.Locale)
	assert.NotNil(t, k.Resources)
}

func TestConfigApplyDefaults(t *testing.T) {
	c := kinit.Config{}
	c.ApplyDefaults()
	assert.Equal(t, "kernelctl", c.ProcessName)
	assert.Equal(t, ".dmp", c.DumpExt)
}

func TestTermSucceedsAfterInit(t *testing.T) {
	t.Setenv("KERNEL_DUMP_DIR", t.TempDir())

	k, err := kinit.Init(kinit.Config{ProcessName: "kernelctl-test2"})
	require.NoError(t, err)
	require.NoError(t, k.Term())
}
