// Copyright Antimetal, Inc. All rights reserved.
//
// Use of this source code is governed by a source available license that can be found in the
// LICENSE file or at:
// https://polyformproject.org/wp-content/uploads/2020/06/PolyForm-Shield-1.0.0.txt

package kresource

// KVPair is a plain key/value(/value2) triple used to hand small bits of
// named info back across the kernel boundary — e.g. environment entries or
// socket option name/value/unit triples. Being a value type, it needs no
// constructor or destructor; the zero value is three empty strings.
type KVPair struct {
	Key    string
	Value  string
	Value2 string
}

// NewKVPair returns a KVPair with Value2 empty.
func NewKVPair(key, value string) KVPair {
	return KVPair{Key: key, Value: value}
}
