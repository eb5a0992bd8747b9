// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package kresource

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/antimetal/oskernel/pkg/kernel/kerrors"
)

// Registry enforces that a resource's formatted full name is unique within
// the process, the Go-native substitute for the OS returning
// ERROR_ALREADY_EXISTS from a named-object create call — this process has
// no real OS objects backing its resource names, so uniqueness has to be
// checked explicitly.
type Registry struct {
	store *badger.DB
}

// NewRegistry opens an in-memory Badger instance to back the registry.
func NewRegistry() (*Registry, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true))
	if err != nil {
		return nil, fmt.Errorf("kresource: opening registry store: %w", err)
	}
	return &Registry{store: db}, nil
}

// Close releases the registry's underlying store.
func (r *Registry) Close() error {
	return r.store.Close()
}

// Reserve records name (formatted under kind) as taken. A second Reserve
// for the same formatted name returns a kerrors.Error wrapping
// kerrors.AlreadyExists instead of silently double-registering.
func (r *Registry) Reserve(name Name, kind Kind) error {
	full, err := name.BuildFullName(kind)
	if err != nil {
		return err
	}
	key := []byte(full)

	txnErr := r.store.Update(func(txn *badger.Txn) error {
		_, getErr := txn.Get(key)
		if getErr == nil {
			return kerrors.New(kerrors.AlreadyExists, 0,
				fmt.Sprintf("resource name %q already reserved", full))
		}
		if !errors.Is(getErr, badger.ErrKeyNotFound) {
			return getErr
		}
		return txn.Set(key, []byte{1})
	})
	return txnErr
}

// Release frees a previously reserved name so it may be reused.
func (r *Registry) Release(name Name, kind Kind) error {
	full, err := name.BuildFullName(kind)
	if err != nil {
		return err
	}
	return r.store.Update(func(txn *badger.Txn) error {
		delErr := txn.Delete([]byte(full))
		if errors.Is(delErr, badger.ErrKeyNotFound) {
			return nil
		}
		return delErr
	})
}
