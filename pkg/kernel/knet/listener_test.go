// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package knet_test

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antimetal/oskernel/pkg/kernel/knet"
)

func TestListenerAcceptsAndQueuesConnection(t *testing.T) {
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := probe.Addr().(*net.TCPAddr).Port
	require.NoError(t, probe.Close())

	l := knet.NewListener(port, 0, 4, logr.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l.Start(ctx)

	// Give the accept loop a moment to bind before dialing.
	var conn net.Conn
	require.Eventually(t, func() bool {
		c, dialErr := net.DialTimeout("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), 50*time.Millisecond)
		if dialErr != nil {
			return false
		}
		conn = c
		return true
	}, 2*time.Second, 50*time.Millisecond)
	require.NotNil(t, conn)
	defer conn.Close()

	accepted, ok := l.Wait(2 * time.Second)
	require.True(t, ok)
	assert.False(t, accepted.Secure)
	assert.NotZero(t, accepted.AcceptedAt)
	_ = accepted.Close()

	require.NoError(t, l.Stop(context.Background()))
}

func TestListenerWaitTimesOutWhenEmpty(t *testing.T) {
	l := knet.NewListener(0, 0, 4, logr.Discard())
	l.Start(context.Background())
	defer l.Stop(context.Background())

	_, ok := l.Wait(50 * time.Millisecond)
	assert.False(t, ok)
}
