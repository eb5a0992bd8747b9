// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package kresource_test

import (
	"testing"

	"github.com/antimetal/oskernel/pkg/kernel/kerrors"
	"github.com/antimetal/oskernel/pkg/kernel/kresource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidRequiresAllThreeParts(t *testing.T) {
	assert.True(t, kresource.New("acme", "io", "mutex1").IsValid())
	assert.False(t, kresource.New("", "io", "mutex1").IsValid())
	assert.False(t, kresource.New("acme", "", "mutex1").IsValid())
	assert.False(t, kresource.New("acme", "io", "").IsValid())
}

func TestBuildFullNameWithoutPid(t *testing.T) {
	n := kresource.New("acme", "io", "queue1")
	full, err := n.BuildFullName(kresource.KindMutex)
	require.NoError(t, err)
	assert.Equal(t, "Mutex.acme.io.queue1", full)
}

func TestBuildFullNameWithPid(t *testing.T) {
	n := kresource.New("acme", "io", "queue1")
	n.Pid = 255
	full, err := n.BuildFullName(kresource.KindEvent)
	require.NoError(t, err)
	assert.Equal(t, "Event.ff.acme.io.queue1", full)
}

func TestBuildFullNameInvalid(t *testing.T) {
	n := kresource.Name{Company: "acme"}
	_, err := n.BuildFullName(kresource.KindMemory)
	assert.Error(t, err)
}

func TestRegistryReserveRejectsDuplicate(t *testing.T) {
	reg, err := kresource.NewRegistry()
	require.NoError(t, err)
	defer reg.Close()

	n := kresource.New("acme", "io", "lock1")
	require.NoError(t, reg.Reserve(n, kresource.KindMutex))

	err = reg.Reserve(n, kresource.KindMutex)
	require.Error(t, err)
	var kerr *kerrors.Error
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, kerrors.AlreadyExists, kerr.Kernel)
}

func TestRegistryReleaseThenReReserve(t *testing.T) {
	reg, err := kresource.NewRegistry()
	require.NoError(t, err)
	defer reg.Close()

	n := kresource.New("acme", "io", "lock2")
	require.NoError(t, reg.Reserve(n, kresource.KindSemaphore))
	require.NoError(t, reg.Release(n, kresource.KindSemaphore))
	require.NoError(t, reg.Reserve(n, kresource.KindSemaphore))
}
