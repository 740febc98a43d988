// Package storage persists settings, noise choices and the timer snapshot in
// a string-keyed store holding JSON values.
package storage

import "errors"

// ErrNotFound is returned by Store.Get for a missing key.
var ErrNotFound = errors.New("key not found")

// Store is a flat string key-value store.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}
