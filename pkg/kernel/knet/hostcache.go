// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package knet

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// HostCache backs IpAddress.HostName's lazy reverse-DNS resolution with an
// in-memory Badger instance, the same construction resource/store.New uses,
// so repeated lookups of the same numeric address across many Address
// values don't each pay a fresh DNS round trip.
type HostCache struct {
	store *badger.DB
}

// NewHostCache opens an in-memory Badger instance to back the cache.
func NewHostCache() (*HostCache, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true))
	if err != nil {
		return nil, fmt.Errorf("knet: opening host cache: %w", err)
	}
	return &HostCache{store: db}, nil
}

// Close releases the cache's underlying store.
func (c *HostCache) Close() error {
	return c.store.Close()
}

// Lookup returns the cached host name for numeric, if any.
func (c *HostCache) Lookup(numeric string) (string, bool) {
	var name string
	err := c.store.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(numeric))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			name = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false
	}
	if err != nil {
		return "", false
	}
	return name, true
}

// Store records numeric -> name for future Lookup calls.
func (c *HostCache) Store(numeric, name string) {
	_ = c.store.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(numeric), []byte(name))
	})
}
