// Package storage provides the external key/value store behind the shared
// session record. The store only offers get/set/delete semantics, no
// transactions, so callers mitigate lost-update races with read-before-write
// and bounded retries rather than relying on atomicity here.
package storage

import "context"

type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Keys lists every stored key, for debug inspection and full resets.
	Keys(ctx context.Context) ([]string, error)
}
