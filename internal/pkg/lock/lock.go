// internal/pkg/lock/lock.go
package lock

import (
	"context"
	"strconv"

	xerrors "coldlist-service/internal/pkg/errors"
)

// ErrNotAcquired is returned when the key stays held for the whole wait window.
var ErrNotAcquired = xerrors.New(xerrors.KindConflict, "lock not acquired")

// Locker serializes work on a key across callers. The returned release func is
// safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// ColdListKey is the lock key guarding mutations of one cold list.
func ColdListKey(id int64) string {
	return "coldlist:" + strconv.FormatInt(id, 10)
}
