// Package store is the durable per-profile key/value storage backing the
// session and cart. Each browser profile owns three independent keys; there
// is no transactional guarantee across them.
package store

import (
	"context"
	"errors"
)

const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyCart  = "cart"
)

// ErrNotFound is returned when a profile has no value under the given key.
var ErrNotFound = errors.New("store: key not found")

type Store interface {
	Get(ctx context.Context, profileID, key string) ([]byte, error)
	Set(ctx context.Context, profileID, key string, value []byte) error
	Delete(ctx context.Context, profileID, key string) error
}
