// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

// Package kinit implements the kernel's initialization driver (C14):
// ordered init of every other component, and reverse-order teardown.
package kinit

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"

	"github.com/antimetal/oskernel/pkg/kernel/kdump"
	"github.com/antimetal/oskernel/pkg/kernel/kerrors"
	"github.com/antimetal/oskernel/pkg/kernel/klocale"
	"github.com/antimetal/oskernel/pkg/kernel/kresource"
	"github.com/antimetal/oskernel/pkg/kernel/ksync"
	"github.com/antimetal/oskernel/pkg/kernel/ktls"
)

// Config holds the process-wide settings the init driver reads once at
// startup. Populated the way performance.CollectionConfig is: a struct with
// an ApplyDefaults method, overridable by environment variables read once.
type Config struct {
	ProcessName string
	DumpDir     string
	DumpExt     string
	Logger      logr.Logger
}

// ApplyDefaults fills in any zero-valued fields with their defaults, the
// same shape as performance.CollectionConfig.ApplyDefaults.
func (c *Config) ApplyDefaults() {
	if c.ProcessName == "" {
		c.ProcessName = "kernelctl"
	}
	if c.DumpExt == "" {
		c.DumpExt = ".dmp"
	}
	if c.DumpDir == "" {
		c.DumpDir = os.Getenv(kdump.DumpDirEnvVar)
	}
}

// Kernel bundles every initialized component in the order C14 brings them
// up: error registry, critical sections/atomics, TLS registry, stack dump,
// locale, resource registry. The network stack and high-perf timer are
// stateless at the package level and need no handle here.
type Kernel struct {
	Config Config

	Errors    *kerrors.Context
	TLS       *ktls.Registry
	Dump      *kdump.Writer
	Locale    *klocale.Cache
	Resources *kresource.Registry
}

// baseLock is the single process-wide CritSec guarding one-time
// initialization sequences that cannot use the error registry yet.
var baseLock ksync.CritSec

// Init brings the kernel up in dependency order: ErrorRegistry -> critical
// sections/atomics (stateless, nothing to construct) -> TLS/PerThreadRegistry
// -> Stack-dump -> Locale -> resource registry (this repo's network-stack
// analogue of "if present"). HighPerfTimer is stateless and always present.
//
// Each sub-init only takes the base lock where it touches shared
// initialization state (here, verifying the host error table), to avoid
// deadlocking on subsystems that fault themselves in lazily.
func Init(cfg Config) (*Kernel, error) {
	cfg.ApplyDefaults()
	k := &Kernel{Config: cfg}

	owner := new(int)
	baseLock.Enter(owner)
	verifyErr := kerrors.PosixHostTable.Verify()
	baseLock.Exit(owner)
	if verifyErr != nil {
		return nil, fmt.Errorf("kinit: host error table failed verification: %w", verifyErr)
	}
	k.Errors = kerrors.NewContext()

	k.TLS = ktls.NewRegistry()

	dump, err := kdump.Open(cfg.ProcessName, os.Getpid(), cfg.DumpExt)
	if err != nil {
		return nil, fmt.Errorf("kinit: stack dump init failed: %w", err)
	}
	k.Dump = dump

	k.Locale = klocale.NewCache()
	if err := k.Locale.Load(); err != nil {
		_ = k.Dump.Close()
		return nil, fmt.Errorf("kinit: locale cache init failed: %w", err)
	}

	resources, err := kresource.NewRegistry()
	if err != nil {
		_ = k.Dump.Close()
		return nil, fmt.Errorf("kinit: resource registry init failed: %w", err)
	}
	k.Resources = resources

	return k, nil
}

// Term tears the kernel down in the reverse of Init's order.
func (k *Kernel) Term() error {
	var first error
	record := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	if k.Resources != nil {
		record(k.Resources.Close())
	}
	if k.Dump != nil {
		record(k.Dump.Close())
	}
	return first
}
