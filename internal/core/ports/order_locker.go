package ports

import "context"

// OrderLocker serializes lifecycle transitions per order id.
type OrderLocker interface {
	// Lock waits for the key. It fails with an errs.ConflictError when the
	// configured wait elapses.
	Lock(ctx context.Context, key string) (unlock func(), err error)

	// TryLock takes the key only if nobody holds it.
	TryLock(key string) (unlock func(), ok bool)
}
