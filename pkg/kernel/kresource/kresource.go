// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package kresource implements the kernel's resource-name component (C9):
// a (company, subsystem, resource, pid) tuple that formats into a
// platform-unique resource identifier, plus a process-wide registry that
// enforces uniqueness of the formatted form.
package kresource

import (
	"fmt"
)

// InvalidPID is the sentinel meaning "no process id associated with this
// name" — BuildFullName omits the pid segment entirely when Pid equals
// this value.
const InvalidPID = -1

// Kind selects the prefix BuildFullName prepends to the formatted name.
type Kind int

const (
	KindEvent Kind = iota
	KindMemory
	KindMutex
	KindSemaphore
)

var kindPrefix = map[Kind]string{
	KindEvent:     "Event.",
	KindMemory:    "Memory.",
	KindMutex:     "Mutex.",
	KindSemaphore: "Semaphore.",
}

// Name is a (company, subsystem, resource, pid) tuple identifying a
// resource. All three name parts must be non-empty for Name to be valid.
type Name struct {
	Company   string
	Subsystem string
	Resource  string
	Pid       int
}

// New returns a Name with Pid set to InvalidPID.
func New(company, subsystem, resource string) Name {
	return Name{Company: company, Subsystem: subsystem, Resource: resource, Pid: InvalidPID}
}

// IsValid reports whether all three name parts are non-empty.
func (n Name) IsValid() bool {
	return n.Company != "" && n.Subsystem != "" && n.Resource != ""
}

// BuildFullName composes the formatted resource identifier: kind's prefix,
// then the hex pid (if Pid is not InvalidPID), then
// "company.subsystem.resource".
func (n Name) BuildFullName(kind Kind) (string, error) {
	if !n.IsValid() {
		return "", fmt.Errorf("kresource: name %+v is not valid: company, subsystem, and resource must all be non-empty", n)
	}
	prefix := kindPrefix[kind]
	if n.Pid != InvalidPID {
		prefix = fmt.Sprintf("%s%x.", prefix, n.Pid)
	}
	return fmt.Sprintf("%s%s.%s.%s", prefix, n.Company, n.Subsystem, n.Resource), nil
}
