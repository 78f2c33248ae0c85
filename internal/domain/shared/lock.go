package shared

import "context"

// Locker serializes work on a key across concurrent callers.
// The returned unlock func must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
