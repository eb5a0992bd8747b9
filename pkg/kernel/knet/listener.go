// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package knet

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/antimetal/oskernel/pkg/kernel/ktime"
)

// acceptTick bounds how long each listener loop iteration blocks on its
// accept-readiness poll before cooperatively checking the shutdown signal —
// the engine's analogue of a ~500ms select tick.
const acceptTick = 500 * time.Millisecond

// Conn is a queued, accepted connection: the socket, whether it arrived on
// the secure port, its remote endpoint, and when it was accepted.
type Conn struct {
	Conn       net.Conn
	Secure     bool
	Remote     Endpoint
	AcceptedAt ktime.Stamp
}

// Close closes the underlying connection. Safe to call on a Conn the queue
// dropped for backpressure.
func (c Conn) Close() error {
	if c.Conn == nil {
		return nil
	}
	return c.Conn.Close()
}

// Listener runs up to two accept loops (plain and secure ports) feeding a
// single bounded queue of accepted connections.
type Listener struct {
	nonSecurePort int
	securePort    int
	maxWaiting    int

	queue  chan Conn
	logger logr.Logger

	group  *errgroup.Group
	cancel context.CancelFunc
}

// NewListener constructs a listener engine. A zero port disables that
// listener thread entirely.
func NewListener(nonSecurePort, securePort, maxWaiting int, logger logr.Logger) *Listener {
	return &Listener{
		nonSecurePort: nonSecurePort,
		securePort:    securePort,
		maxWaiting:    maxWaiting,
		queue:         make(chan Conn, maxWaiting),
		logger:        logger,
	}
}

// Start launches a goroutine (an errgroup.Group member, not a raw thread)
// per configured port. Returns immediately; errors surface from Stop.
func (l *Listener) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	group, gctx := errgroup.WithContext(ctx)
	l.group = group

	if l.nonSecurePort != 0 {
		group.Go(func() error { return l.acceptLoop(gctx, l.nonSecurePort, false) })
	}
	if l.securePort != 0 {
		group.Go(func() error { return l.acceptLoop(gctx, l.securePort, true) })
	}
}

// Stop signals both listener threads to shut down and waits (bounded by
// ctx) for them to exit, then drains the queue, closing each still-queued
// connection.
func (l *Listener) Stop(ctx context.Context) error {
	if l.cancel != nil {
		l.cancel()
	}
	errCh := make(chan error, 1)
	go func() { errCh <- l.group.Wait() }()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		err = ctx.Err()
	}

	close(l.queue)
	for conn := range l.queue {
		_ = conn.Close()
	}
	return err
}

// Wait blocks until a connection is available or timeout elapses, returning
// (Conn{}, false) on timeout or if the engine has shut down.
func (l *Listener) Wait(timeout time.Duration) (Conn, bool) {
	select {
	case c, ok := <-l.queue:
		return c, ok
	case <-time.After(timeout):
		return Conn{}, false
	}
}

func (l *Listener) acceptLoop(ctx context.Context, port int, secure bool) error {
	listenRetry := backoff.NewExponentialBackOff()
	listener, err := backoff.Retry(ctx, func() (net.Listener, error) {
		ln, err := net.Listen("tcp", portAddr(port))
		if err != nil {
			return nil, err
		}
		return ln, nil
	}, backoff.WithBackOff(listenRetry), backoff.WithMaxTries(5))
	if err != nil {
		return err
	}
	defer listener.Close()

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if tcpLn, ok := listener.(*net.TCPListener); ok {
			_ = tcpLn.SetDeadline(time.Now().Add(acceptTick))
		}
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if isTimeout(err) {
				continue
			}
			l.logger.Error(err, "listener accept failed", "port", port, "secure", secure)
			continue
		}
		l.enqueue(conn, secure)
	}
}

func (l *Listener) enqueue(conn net.Conn, secure bool) {
	remoteAddr, _ := conn.RemoteAddr().(*net.TCPAddr)
	remote := Endpoint{}
	if remoteAddr != nil {
		remote = NewEndpoint(fromNetIP(remoteAddr.IP, nil), uint16(remoteAddr.Port))
	}
	item := Conn{Conn: conn, Secure: secure, Remote: remote, AcceptedAt: ktime.Now()}

	select {
	case l.queue <- item:
	default:
		// Backpressure: the queue is full, drop and close the new
		// connection rather than blocking the listener thread.
		l.logger.Info("dropping accepted connection: queue at max_waiting", "port", portFor(secure, l))
		_ = item.Close()
	}
}

func portFor(secure bool, l *Listener) int {
	if secure {
		return l.securePort
	}
	return l.nonSecurePort
}

func portAddr(port int) string {
	return net.JoinHostPort("", strconv.Itoa(port))
}
