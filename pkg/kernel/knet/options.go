// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package knet

import (
	"golang.org/x/sys/unix"

	"github.com/antimetal/oskernel/pkg/kernel/kerrors"
)

// BoolOpt names a socket option whose value is a boolean.
type BoolOpt int

const (
	OptAllowBroadcast BoolOpt = iota
	OptDontRoute
	OptKeepAlive
	// OptNagle is logically inverted from TCP_NODELAY: Nagle=true means
	// TCP_NODELAY is unset.
	OptNagle
	OptReuseAddr
)

// IntOpt names a socket option whose value is an integer.
type IntOpt int

const (
	OptLastError IntOpt = iota
	OptMaxMsgSize
	OptReceiveBuf
	OptSendBuf
	OptTTL
	OptTTLV6
)

func (s *Socket) withFD(fn func(fd int) error) error {
	descriptor, err := fd(s)
	if err != nil {
		return err
	}
	return fn(descriptor)
}

// SetBoolOpt sets a boolean socket option.
func (s *Socket) SetBoolOpt(opt BoolOpt, value bool) error {
	return s.withFD(func(descriptor int) error {
		iv := 0
		if value {
			iv = 1
		}
		switch opt {
		case OptAllowBroadcast:
			return translateNetError(unix.SetsockoptInt(descriptor, unix.SOL_SOCKET, unix.SO_BROADCAST, iv))
		case OptDontRoute:
			return translateNetError(unix.SetsockoptInt(descriptor, unix.SOL_SOCKET, unix.SO_DONTROUTE, iv))
		case OptKeepAlive:
			return translateNetError(unix.SetsockoptInt(descriptor, unix.SOL_SOCKET, unix.SO_KEEPALIVE, iv))
		case OptNagle:
			// Nagle=true means disable TCP_NODELAY (nagle enabled).
			nodelay := 0
			if !value {
				nodelay = 1
			}
			return translateNetError(unix.SetsockoptInt(descriptor, unix.IPPROTO_TCP, unix.TCP_NODELAY, nodelay))
		case OptReuseAddr:
			return translateNetError(unix.SetsockoptInt(descriptor, unix.SOL_SOCKET, unix.SO_REUSEADDR, iv))
		default:
			return kerrors.New(kerrors.NotSupported, 0, "unknown bool socket option")
		}
	})
}

// BoolOpt reads a boolean socket option.
func (s *Socket) BoolOpt(opt BoolOpt) (bool, error) {
	var result bool
	err := s.withFD(func(descriptor int) error {
		var (
			v   int
			err error
		)
		switch opt {
		case OptAllowBroadcast:
			v, err = unix.GetsockoptInt(descriptor, unix.SOL_SOCKET, unix.SO_BROADCAST)
		case OptDontRoute:
			v, err = unix.GetsockoptInt(descriptor, unix.SOL_SOCKET, unix.SO_DONTROUTE)
		case OptKeepAlive:
			v, err = unix.GetsockoptInt(descriptor, unix.SOL_SOCKET, unix.SO_KEEPALIVE)
		case OptNagle:
			v, err = unix.GetsockoptInt(descriptor, unix.IPPROTO_TCP, unix.TCP_NODELAY)
			if err == nil {
				result = v == 0
				return nil
			}
		case OptReuseAddr:
			v, err = unix.GetsockoptInt(descriptor, unix.SOL_SOCKET, unix.SO_REUSEADDR)
		default:
			return kerrors.New(kerrors.NotSupported, 0, "unknown bool socket option")
		}
		if err != nil {
			return translateNetError(err)
		}
		result = v != 0
		return nil
	})
	return result, err
}

// SetIntOpt sets an integer socket option.
func (s *Socket) SetIntOpt(opt IntOpt, value int) error {
	return s.withFD(func(descriptor int) error {
		switch opt {
		case OptMaxMsgSize:
			return kerrors.New(kerrors.NotSupported, 0, "MaxMsgSize is read-only")
		case OptReceiveBuf:
			return translateNetError(unix.SetsockoptInt(descriptor, unix.SOL_SOCKET, unix.SO_RCVBUF, value))
		case OptSendBuf:
			return translateNetError(unix.SetsockoptInt(descriptor, unix.SOL_SOCKET, unix.SO_SNDBUF, value))
		case OptTTL:
			return translateNetError(unix.SetsockoptInt(descriptor, unix.IPPROTO_IP, unix.IP_TTL, value))
		case OptTTLV6:
			return translateNetError(unix.SetsockoptInt(descriptor, unix.IPPROTO_IPV6, unix.IPV6_UNICAST_HOPS, value))
		default:
			return kerrors.New(kerrors.NotSupported, 0, "unknown int socket option")
		}
	})
}

// IntOpt reads an integer socket option.
func (s *Socket) IntOpt(opt IntOpt) (int, error) {
	var result int
	err := s.withFD(func(descriptor int) error {
		var (
			v   int
			err error
		)
		switch opt {
		case OptLastError:
			v, err = unix.GetsockoptInt(descriptor, unix.SOL_SOCKET, unix.SO_ERROR)
		case OptReceiveBuf:
			v, err = unix.GetsockoptInt(descriptor, unix.SOL_SOCKET, unix.SO_RCVBUF)
		case OptSendBuf:
			v, err = unix.GetsockoptInt(descriptor, unix.SOL_SOCKET, unix.SO_SNDBUF)
		case OptTTL:
			v, err = unix.GetsockoptInt(descriptor, unix.IPPROTO_IP, unix.IP_TTL)
		case OptTTLV6:
			v, err = unix.GetsockoptInt(descriptor, unix.IPPROTO_IPV6, unix.IPV6_UNICAST_HOPS)
		default:
			return kerrors.New(kerrors.NotSupported, 0, "unknown int socket option")
		}
		if err != nil {
			return translateNetError(err)
		}
		result = v
		return nil
	})
	return result, err
}

// SetLinger writes the SO_LINGER struct.
func (s *Socket) SetLinger(on bool, seconds int) error {
	return s.withFD(func(descriptor int) error {
		l := unix.Linger{Linger: int32(seconds)}
		if on {
			l.Onoff = 1
		}
		return translateNetError(unix.SetsockoptLinger(descriptor, unix.SOL_SOCKET, unix.SO_LINGER, &l))
	})
}

// Linger reads the SO_LINGER struct's "on" flag.
func (s *Socket) Linger() (bool, error) {
	var on bool
	err := s.withFD(func(descriptor int) error {
		l, err := unix.GetsockoptLinger(descriptor, unix.SOL_SOCKET, unix.SO_LINGER)
		if err != nil {
			return translateNetError(err)
		}
		on = l.Onoff != 0
		return nil
	})
	return on, err
}

// JoinMulticast joins groupAddr's multicast group on interfaceAddr. Both
// addresses must belong to the same family; the IPv4 or IPv6
// group-membership option is chosen based on the group's family.
func (s *Socket) JoinMulticast(groupAddr, interfaceAddr Address) error {
	if groupAddr.Family() != interfaceAddr.Family() {
		return kerrors.New(kerrors.InvalidAddress, 0, "multicast group and interface address families differ")
	}
	return s.withFD(func(descriptor int) error {
		switch groupAddr.Family() {
		case FamilyV4:
			mreq := &unix.IPMreq{}
			copy(mreq.Multiaddr[:], groupAddr.v4[:])
			copy(mreq.Interface[:], interfaceAddr.v4[:])
			return translateNetError(unix.SetsockoptIPMreq(descriptor, unix.IPPROTO_IP, unix.IP_ADD_MEMBERSHIP, mreq))
		case FamilyV6:
			mreq := &unix.IPv6Mreq{}
			copy(mreq.Multiaddr[:], groupAddr.v6[:])
			mreq.Interface = interfaceAddr.scopeID
			return translateNetError(unix.SetsockoptIPv6Mreq(descriptor, unix.IPPROTO_IPV6, unix.IPV6_JOIN_GROUP, mreq))
		default:
			return kerrors.New(kerrors.InvalidAddress, 0, "multicast requires a V4 or V6 address")
		}
	})
}
