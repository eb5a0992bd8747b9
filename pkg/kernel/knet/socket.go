// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package knet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sys/unix"

	"github.com/antimetal/oskernel/pkg/kernel/kerrors"
)

// Kind is the socket-type enumeration.
type Kind int

const (
	KindStream Kind = iota
	KindDatagram
	KindRaw
)

// Protocol is the wire-protocol enumeration a socket is created with.
type Protocol int

const (
	ProtocolIP Protocol = iota
	ProtocolICMP
	ProtocolICMPv6
	ProtocolIGMP
	ProtocolTCP
	ProtocolUDP
	ProtocolPUP
	ProtocolIDP
	ProtocolRawIP
)

// ShutdownMode selects which half of a stream connection to shut down.
type ShutdownMode int

const (
	ShutdownSend ShutdownMode = iota
	ShutdownRecv
	ShutdownBoth
)

// Socket wraps a platform socket handle (a Go net.Conn/net.PacketConn under
// the hood) plus the lifecycle flags the kernel tracks explicitly rather
// than inferring from the wrapped handle's own state.
type Socket struct {
	kind   Kind
	family Family

	conn    net.Conn
	pktConn net.PacketConn
	rawConn syscall.RawConn

	bound     bool
	connected bool
	shutdown  bool
}

// CreateStream creates a stream (TCP) socket for family, left unconnected.
// Stream sockets are placed in non-blocking mode immediately — Go's runtime
// netpoller already runs every net.Conn in non-blocking mode, so this is
// automatic rather than an explicit fcntl call. family is threaded into the
// "tcp4"/"tcp6" network passed to BindListen/Connect so a socket created for
// one family never silently dials or listens on the other.
func CreateStream(family Family) *Socket {
	return &Socket{kind: KindStream, family: family}
}

// CreateDatagram creates a datagram (UDP) socket for family.
func CreateDatagram(family Family) *Socket {
	return &Socket{kind: KindDatagram, family: family}
}

// tcpNetwork and udpNetwork pick the address-family-qualified network name
// for the socket's family, falling back to the unqualified ("tcp"/"udp")
// dual-stack name when the socket was created for FamilyUnspec.
func (s *Socket) tcpNetwork() string {
	switch s.family {
	case FamilyV4:
		return "tcp4"
	case FamilyV6:
		return "tcp6"
	default:
		return "tcp"
	}
}

func (s *Socket) udpNetwork() string {
	switch s.family {
	case FamilyV4:
		return "udp4"
	case FamilyV6:
		return "udp6"
	default:
		return "udp"
	}
}

// BindListen binds a stream socket to ip:port and starts listening.
// Supplying the zero Address binds the family's wildcard address.
func (s *Socket) BindListen(ctx context.Context, ip Address, port uint16) (net.Listener, error) {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, s.tcpNetwork(), NewEndpoint(ip, port).NetAddr().String())
	if err != nil {
		return nil, translateNetError(err)
	}
	s.bound = true
	return ln, nil
}

// BindForRemote asks the OS routing layer for the preferred local interface
// toward remote by binding a UDP socket with localPort as the local port
// and letting Connect's implicit routing decide the source address; used
// before multicast/UDP sends so the correct egress interface is selected.
func (s *Socket) BindForRemote(ctx context.Context, remote Endpoint, localPort uint16) error {
	local := &net.UDPAddr{Port: int(localPort)}
	conn, err := net.DialUDP(s.udpNetwork(), local, &net.UDPAddr{IP: remote.Address.NetIP(), Port: int(remote.Port)})
	if err != nil {
		return translateNetError(err)
	}
	s.pktConn = conn
	s.bound = true
	return nil
}

// connectRetryPolicy bounds how long Connect retries a non-blocking connect
// attempt that returns a retryable kernel error (WouldBlock/Interrupted).
func connectRetryPolicy() backoff.BackOff {
	return backoff.NewExponentialBackOff()
}

// Connect dials remote with the given timeout, retrying retryable
// (WouldBlock/Interrupted) failures with backoff bounded by timeout. Each
// attempt waits for the connection inside the dialer, up to the same
// timeout.
func (s *Socket) Connect(ctx context.Context, remote Endpoint, timeout time.Duration) error {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	operation := func() (net.Conn, error) {
		d := net.Dialer{}
		conn, err := d.DialContext(dialCtx, s.tcpNetwork(), remote.NetAddr().String())
		if err != nil {
			kerr := translateNetError(err)
			if kerrors.Retryable(kerr) {
				return nil, kerr
			}
			return nil, backoff.Permanent(kerr)
		}
		return conn, nil
	}

	conn, err := backoff.Retry(ctx, operation, backoff.WithBackOff(connectRetryPolicy()), backoff.WithMaxElapsedTime(timeout))
	if err != nil {
		if dialCtx.Err() != nil {
			return kerrors.New(kerrors.Timeout, 0, "connect timed out")
		}
		return err
	}
	s.conn = conn
	s.connected = true
	return nil
}

// Recv performs a single non-blocking read into buf. EWOULDBLOCK (surfaced
// by Go as a zero-byte, nil-error read is not possible on a blocking-style
// net.Conn, so a past-deadline read is used to emulate it) yields (0, nil);
// an abrupt remote reset yields ConnectionReset, an orderly remote close
// yields NotConnected.
func (s *Socket) Recv(buf []byte) (int, error) {
	_ = s.conn.SetReadDeadline(time.Now().Add(time.Microsecond))
	n, err := s.conn.Read(buf)
	if err != nil {
		if isTimeout(err) {
			return 0, nil
		}
		return n, translateReadError(err)
	}
	return n, nil
}

// RecvTo polls with a deadline of timeout then reads; in allOrPartial="all"
// mode it loops until buf is full or the deadline elapses.
func (s *Socket) RecvTo(buf []byte, timeout time.Duration, all bool) (int, error) {
	deadline := time.Now().Add(timeout)
	_ = s.conn.SetReadDeadline(deadline)

	total := 0
	for total < len(buf) {
		n, err := s.conn.Read(buf[total:])
		total += n
		if err != nil {
			if isTimeout(err) {
				if total > 0 && !all {
					return total, nil
				}
				return total, kerrors.New(kerrors.Timeout, 0, "recv_to deadline elapsed")
			}
			return total, translateReadError(err)
		}
		if !all {
			return total, nil
		}
	}
	return total, nil
}

// Send writes buf once; partial writes are returned to the caller as-is.
func (s *Socket) Send(buf []byte) (int, error) {
	n, err := s.conn.Write(buf)
	if err != nil {
		return n, translateNetError(err)
	}
	return n, nil
}

// SendThrottled loops writing buf in chunks, waiting up to perChunkTimeout
// for write-readiness between chunks.
func (s *Socket) SendThrottled(buf []byte, chunkSize int, perChunkTimeout time.Duration) (int, error) {
	total := 0
	for total < len(buf) {
		end := total + chunkSize
		if end > len(buf) {
			end = len(buf)
		}
		_ = s.conn.SetWriteDeadline(time.Now().Add(perChunkTimeout))
		n, err := s.conn.Write(buf[total:end])
		total += n
		if err != nil {
			return total, translateNetError(err)
		}
	}
	return total, nil
}

// Shutdown performs an orderly shutdown of mode's direction(s). After
// shutdown, no further writes are permitted on this socket.
func (s *Socket) Shutdown(mode ShutdownMode) error {
	type closeWriter interface {
		CloseWrite() error
	}
	type closeReader interface {
		CloseRead() error
	}
	var err error
	if (mode == ShutdownSend || mode == ShutdownBoth) && s.conn != nil {
		if cw, ok := s.conn.(closeWriter); ok {
			err = cw.CloseWrite()
		}
	}
	if (mode == ShutdownRecv || mode == ShutdownBoth) && s.conn != nil {
		if cr, ok := s.conn.(closeReader); ok {
			if e := cr.CloseRead(); e != nil && err == nil {
				err = e
			}
		}
	}
	s.shutdown = true
	if err != nil {
		return translateNetError(err)
	}
	return nil
}

// Close closes the wrapped handle, whichever of conn/pktConn is live. Safe
// to call on an already-closed socket.
func (s *Socket) Close() error {
	var err error
	if s.conn != nil {
		err = s.conn.Close()
	}
	if s.pktConn != nil {
		if e := s.pktConn.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// RecvFrom reads a single datagram, returning its source endpoint. Peek mode
// returns the data without consuming it from the socket's queue, via a raw
// MSG_PEEK recvfrom rather than net.PacketConn.ReadFrom (which always
// consumes).
func (s *Socket) RecvFrom(buf []byte, timeout time.Duration, peek bool) (int, Endpoint, error) {
	_ = s.pktConn.SetReadDeadline(time.Now().Add(timeout))

	if peek {
		return s.peekFrom(buf)
	}

	n, addr, err := s.pktConn.ReadFrom(buf)
	if err != nil {
		if isTimeout(err) {
			return 0, Endpoint{}, kerrors.New(kerrors.Timeout, 0, "recv_from deadline elapsed")
		}
		return n, Endpoint{}, translateNetError(err)
	}
	udpAddr, ok := addr.(*net.UDPAddr)
	if !ok {
		return n, Endpoint{}, fmt.Errorf("knet: unexpected source address type %T", addr)
	}
	return n, NewEndpoint(fromNetIP(udpAddr.IP, nil), uint16(udpAddr.Port)), nil
}

// peekFrom reads a datagram without consuming it, by driving raw Recvfrom
// with MSG_PEEK through the pktConn's SyscallConn. raw.Read parks on the
// runtime netpoller between attempts, honoring the read deadline set by the
// caller the same way net.PacketConn.ReadFrom would.
func (s *Socket) peekFrom(buf []byte) (int, Endpoint, error) {
	sc, ok := s.pktConn.(syscall.Conn)
	if !ok {
		return 0, Endpoint{}, kerrors.New(kerrors.InvalidHandle, 0, "socket has no underlying file descriptor")
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return 0, Endpoint{}, translateNetError(err)
	}

	var (
		n       int
		from    unix.Sockaddr
		recvErr error
	)
	ctrlErr := raw.Read(func(fdRaw uintptr) bool {
		n, from, recvErr = unix.Recvfrom(int(fdRaw), buf, unix.MSG_PEEK)
		return recvErr != unix.EAGAIN
	})
	if ctrlErr != nil {
		if isTimeout(ctrlErr) {
			return 0, Endpoint{}, kerrors.New(kerrors.Timeout, 0, "recv_from deadline elapsed")
		}
		return 0, Endpoint{}, translateNetError(ctrlErr)
	}
	if recvErr != nil {
		if errno, ok := recvErr.(syscall.Errno); ok {
			return 0, Endpoint{}, kerrors.New(kerrors.PosixHostTable.Lookup(int64(errno)), int64(errno), recvErr.Error())
		}
		return 0, Endpoint{}, translateNetError(recvErr)
	}
	return n, sockaddrToEndpoint(from), nil
}

// sockaddrToEndpoint converts a raw unix.Sockaddr (as returned by Recvfrom)
// into this package's Endpoint type.
func sockaddrToEndpoint(sa unix.Sockaddr) Endpoint {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return NewEndpoint(NewV4(a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3]), uint16(a.Port))
	case *unix.SockaddrInet6:
		return NewEndpoint(NewV6(a.Addr, a.ZoneId), uint16(a.Port))
	default:
		return Endpoint{}
	}
}

// SendTo writes a single datagram to endpoint.
func (s *Socket) SendTo(buf []byte, endpoint Endpoint) (int, error) {
	n, err := s.pktConn.WriteTo(buf, endpoint.NetAddr())
	if err != nil {
		return n, translateNetError(err)
	}
	return n, nil
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	if te, ok := err.(timeouter); ok {
		return te.Timeout()
	}
	return false
}

// translateNetError maps a net package error through the POSIX host table.
func translateNetError(err error) error {
	if err == nil {
		return nil
	}
	if errno, ok := unwrapErrno(err); ok {
		return kerrors.New(kerrors.PosixHostTable.Lookup(int64(errno)), int64(errno), err.Error())
	}
	return kerrors.New(kerrors.HostError, 0, err.Error())
}

// translateReadError maps the failure modes of a read distinctly from a
// generic net error: an abrupt reset surfaces as ConnectionReset, and the
// peer's orderly close (io.EOF, with no errno at all) surfaces as the benign
// NotConnected rather than falling through to a generic HostError.
func translateReadError(err error) error {
	if errno, ok := unwrapErrno(err); ok && errno == unix.ECONNRESET {
		return kerrors.New(kerrors.ConnectionReset, int64(errno), err.Error())
	}
	if errors.Is(err, io.EOF) {
		return kerrors.New(kerrors.NotConnected, 0, "remote closed the connection")
	}
	return translateNetError(err)
}

func unwrapErrno(err error) (syscall.Errno, bool) {
	type unwrapper interface{ Unwrap() error }
	for err != nil {
		if errno, ok := err.(syscall.Errno); ok {
			return errno, true
		}
		u, ok := err.(unwrapper)
		if !ok {
			return 0, false
		}
		err = u.Unwrap()
	}
	return 0, false
}
