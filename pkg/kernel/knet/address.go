// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package knet implements the kernel's networking components: IP
// address/endpoint (C10), socket core (C11), and listener engine (C12).
package knet

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Family is the address-family enumeration an IpAddress or a socket create
// call may be restricted to.
type Family int

const (
	FamilyUnspec Family = iota
	FamilyV4
	FamilyV6
)

// addrKind tags which variant of the address union is populated.
type addrKind int

const (
	kindUnspecified addrKind = iota
	kindV4
	kindV6
)

// Address is a tagged union of {Unspecified, V4, V6(+scope)} plus a lazily
// resolved, cached host name. Equality (Equal) considers only the family and
// raw bytes — the cached host name is never part of equality, since the
// listener engine and multi-select rely on that to compare addresses
// observed from different code paths.
type Address struct {
	kind    addrKind
	v4      [4]byte
	v6      [16]byte
	scopeID uint32

	hostName     string
	hostResolved bool
	cache        *HostCache
}

// Unspecified is the zero-value, family-agnostic "any address".
var Unspecified = Address{kind: kindUnspecified}

// NewV4 builds a V4 address from four octets.
func NewV4(a, b, c, d byte) Address {
	return Address{kind: kindV4, v4: [4]byte{a, b, c, d}}
}

// NewV6 builds a V6 address from 16 bytes and an optional scope id.
func NewV6(bytes [16]byte, scopeID uint32) Address {
	return Address{kind: kindV6, v6: bytes, scopeID: scopeID}
}

// ParseAddress parses text as a numeric dotted/colon-hex address or, failing
// that, consults the system resolver as a DNS name. A successfully resolved
// DNS name is stored as the address's cached host name so a later HostName
// call does not need to re-resolve.
func ParseAddress(ctx context.Context, text string, cache *HostCache) (Address, error) {
	if ip := net.ParseIP(text); ip != nil {
		return fromNetIP(ip, cache), nil
	}

	resolver := net.DefaultResolver
	ips, err := resolver.LookupIP(ctx, "ip", text)
	if err != nil || len(ips) == 0 {
		return Address{}, fmt.Errorf("knet: cannot resolve %q as an address or host name: %w", text, err)
	}
	addr := fromNetIP(ips[0], cache)
	addr.hostName = text
	addr.hostResolved = true
	return addr, nil
}

func fromNetIP(ip net.IP, cache *HostCache) Address {
	if v4 := ip.To4(); v4 != nil {
		return Address{kind: kindV4, v4: [4]byte{v4[0], v4[1], v4[2], v4[3]}, cache: cache}
	}
	v16 := ip.To16()
	var b [16]byte
	copy(b[:], v16)
	return Address{kind: kindV6, v6: b, cache: cache}
}

// Family reports which variant this address holds.
func (a Address) Family() Family {
	switch a.kind {
	case kindV4:
		return FamilyV4
	case kindV6:
		return FamilyV6
	default:
		return FamilyUnspec
	}
}

// IsUnspecified reports whether a is the "any address" placeholder.
func (a Address) IsUnspecified() bool { return a.kind == kindUnspecified }

// NetIP converts a to a net.IP for use with the standard library's networking
// primitives.
func (a Address) NetIP() net.IP {
	switch a.kind {
	case kindV4:
		return net.IPv4(a.v4[0], a.v4[1], a.v4[2], a.v4[3])
	case kindV6:
		return net.IP(a.v6[:])
	default:
		return net.IPv4zero
	}
}

// Text formats a's numeric representation (no host name lookup).
func (a Address) Text() string {
	return a.NetIP().String()
}

// Equal compares two addresses by family and raw bytes only; cached host
// names never participate.
func (a Address) Equal(other Address) bool {
	if a.kind != other.kind {
		return false
	}
	switch a.kind {
	case kindV4:
		return a.v4 == other.v4
	case kindV6:
		return a.v6 == other.v6 && a.scopeID == other.scopeID
	default:
		return true
	}
}

// HostName returns a's host name, resolving it lazily via reverse DNS on
// first access if one was not supplied at construction. On resolution
// failure, failOnError controls whether the error is returned or silently
// swallowed in favor of falling back to the numeric text form.
func (a *Address) HostName(ctx context.Context, failOnError bool) (string, error) {
	if a.hostResolved {
		return a.hostName, nil
	}
	if a.cache != nil {
		if name, ok := a.cache.Lookup(a.Text()); ok {
			a.hostName = name
			a.hostResolved = true
			return name, nil
		}
	}

	names, err := net.DefaultResolver.LookupAddr(ctx, a.Text())
	if err != nil || len(names) == 0 {
		a.hostName = a.Text()
		a.hostResolved = true
		if err != nil && failOnError {
			return "", fmt.Errorf("knet: reverse resolution of %s failed: %w", a.Text(), err)
		}
		return a.hostName, nil
	}

	a.hostName = names[0]
	a.hostResolved = true
	if a.cache != nil {
		a.cache.Store(a.Text(), a.hostName)
	}
	return a.hostName, nil
}

// Endpoint pairs an Address with a port. Equality requires both the address
// and the port to match.
type Endpoint struct {
	Address Address
	Port    uint16
}

// NewEndpoint builds an Endpoint.
func NewEndpoint(addr Address, port uint16) Endpoint {
	return Endpoint{Address: addr, Port: port}
}

// Equal compares two endpoints by address equality and port.
func (e Endpoint) Equal(other Endpoint) bool {
	return e.Address.Equal(other.Address) && e.Port == other.Port
}

// Text formats the endpoint as "host:port" for V4/DNS-named addresses or
// "[host]:port" for V6 literals.
func (e Endpoint) Text() string {
	if e.Address.Family() == FamilyV6 {
		return fmt.Sprintf("[%s]:%d", e.Address.Text(), e.Port)
	}
	return fmt.Sprintf("%s:%d", e.Address.Text(), e.Port)
}

// NetAddr returns the *net.TCPAddr form used by Dial/Listen calls.
func (e Endpoint) NetAddr() *net.TCPAddr {
	return &net.TCPAddr{IP: e.Address.NetIP(), Port: int(e.Port), Zone: zoneFor(e.Address)}
}

func zoneFor(a Address) string {
	if a.kind == kindV6 && a.scopeID != 0 {
		return fmt.Sprintf("%d", a.scopeID)
	}
	return ""
}

// defaultDialTimeout is a five-second default for resolver use. ParseAddress
// does not apply it; its lookups are bounded only by the caller's context.
const defaultDialTimeout = 5 * time.Second
