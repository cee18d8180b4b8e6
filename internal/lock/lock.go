// Package lock serializes work per key, in process or across instances through Redis.
package lock

import (
	"context"
	"errors"
)

// Locker hands out exclusive ownership of a key. The returned unlock func is safe to call
// more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

var (
	ErrEmptyKey = errors.New("lock_key_empty")
	ErrHeld     = errors.New("lock_held")
)
