// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package kerrors_test

import (
	"testing"

	"github.com/antimetal/oskernel/pkg/kernel/kerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostTableAscending(t *testing.T) {
	require.NoError(t, kerrors.PosixHostTable.Verify())
	require.NoError(t, kerrors.WindowsHostTable.Verify())
}

func TestHostTableLookup(t *testing.T) {
	t.Run("known code maps to expected kernel error", func(t *testing.T) {
		assert.Equal(t, kerrors.Timeout, kerrors.WindowsHostTable.Lookup(1460))
	})

	t.Run("miss returns HostError sentinel", func(t *testing.T) {
		assert.Equal(t, kerrors.HostError, kerrors.PosixHostTable.Lookup(-1))
	})
}

func TestContextDefaultsToNoError(t *testing.T) {
	ctx := kerrors.NewContext()
	assert.Equal(t, kerrors.NoError, ctx.Last().Kernel)
}

func TestContextSetHost(t *testing.T) {
	ctx := kerrors.NewContext()
	ctx.SetHost(1460, kerrors.WindowsHostTable)

	last := ctx.Last()
	assert.Equal(t, int64(1460), last.Host)
	assert.Equal(t, kerrors.Timeout, last.Kernel)
}

func TestThrowHostWrapsAndRecords(t *testing.T) {
	ctx := kerrors.NewContext()
	err := ctx.ThrowHost(10060, kerrors.WindowsHostTable)

	require.Error(t, err)
	assert.True(t, kerrors.Is(err, kerrors.Sentinel(kerrors.Timeout)))
	assert.Equal(t, kerrors.Timeout, ctx.Last().Kernel)
}

func TestRetryable(t *testing.T) {
	assert.True(t, kerrors.Retryable(kerrors.New(kerrors.Timeout, 0, "")))
	assert.True(t, kerrors.Retryable(kerrors.New(kerrors.WouldBlock, 0, "")))
	assert.False(t, kerrors.Retryable(kerrors.New(kerrors.AccessDenied, 0, "")))
	assert.False(t, kerrors.Retryable(nil))
}

func TestErrorIsByKernelCodeIgnoresHostAndDetail(t *testing.T) {
	a := kerrors.New(kerrors.NotConnected, 54, "peer reset")
	b := kerrors.New(kerrors.NotConnected, 104, "different host code")
	assert.True(t, kerrors.Is(a, b))
}
