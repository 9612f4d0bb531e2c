// Package kv is a small key-value store with hierarchical keys, used to
// persist finished games. Keys are string slices such as
// {"games", "0192..."}; the segments are joined with a separator byte
// (':' by default) for storage, so they must not contain it.
//
// Badger is the persistent implementation; Memory serves tests and
// one-shot runs.
package kv

import (
	"context"
	"errors"
	"iter"
	"strings"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("kv: not found")

// Key is a hierarchical path.
type Key []string

func (k Key) String() string {
	return strings.Join(k, ":")
}

// Entry is a key-value pair yielded by List.
type Entry struct {
	Key   Key
	Value []byte
}

// ListOptions controls the order and length of a List.
type ListOptions struct {
	// Reverse yields entries in descending key order.
	Reverse bool
	// Limit stops after this many entries. Zero means no limit.
	Limit int
}

// Store is a key-value store with path-based keys.
type Store interface {
	// Get returns ErrNotFound if key is not present.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set overwrites any existing value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete is a no-op for a missing key.
	Delete(ctx context.Context, key Key) error

	// List iterates over the entries strictly under prefix, ordered by
	// encoded key.
	List(ctx context.Context, prefix Key, opts ListOptions) iter.Seq2[Entry, error]

	Close() error
}

// DefaultSeparator joins key segments when Options.Separator is zero.
const DefaultSeparator byte = ':'

// Options configures key encoding.
type Options struct {
	Separator byte
}

func (o *Options) sep() string {
	if o != nil && o.Separator != 0 {
		return string(o.Separator)
	}
	return string(DefaultSeparator)
}

func (o *Options) encode(k Key) []byte {
	return []byte(strings.Join(k, o.sep()))
}

func (o *Options) decode(b []byte) Key {
	return Key(strings.Split(string(b), o.sep()))
}

// prefixBytes returns the encoded prefix followed by the separator, so that
// {"a","b"} does not match "a:bc". An empty prefix matches everything.
func (o *Options) prefixBytes(prefix Key) []byte {
	if len(prefix) == 0 {
		return nil
	}
	return append(o.encode(prefix), o.sep()...)
}
