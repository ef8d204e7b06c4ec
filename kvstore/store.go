// Package kvstore provides the small key-value abstraction that stands in for
// browser storage. Values are opaque strings.
package kvstore

import "errors"

// ErrNotFound is returned by Get when the key does not exist
var ErrNotFound = errors.New("kvstore: key not found")

// Store is a string key-value store
type Store interface {
	// Get returns the value stored under key or ErrNotFound
	Get(key string) (string, error)

	// Set creates or overwrites the value stored under key
	Set(key, value string) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(key string) error
}

type namespaced struct {
	prefix string
	store  Store
}

// Namespace scopes every key of store under prefix, so one backing store can
// hold the storage of many browsers.
func Namespace(store Store, prefix string) Store {
	return &namespaced{prefix: prefix + ":", store: store}
}

func (n *namespaced) Get(key string) (string, error) {
	return n.store.Get(n.prefix + key)
}

func (n *namespaced) Set(key, value string) error {
	return n.store.Set(n.prefix+key, value)
}

func (n *namespaced) Delete(key string) error {
	return n.store.Delete(n.prefix + key)
}
