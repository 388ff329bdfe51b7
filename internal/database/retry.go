package database

import (
	"fmt"
	"hash/fnv"
	"time"
)

// WithRetry runs fn up to attempts times with a fixed backoff between tries.
// Errors for which permanent reports true (logical conflicts, not-found) are
// returned immediately; only infrastructure failures are retried.
func WithRetry(attempts int, backoff time.Duration, permanent func(error) bool, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if permanent != nil && permanent(err) {
			return err
		}
		if i < attempts-1 {
			time.Sleep(backoff)
		}
	}
	return err
}

// LockKey derives a 64-bit advisory lock key from a namespace and a pair of
// ids. The namespace keeps relationship-pair locks and attachment locks from
// colliding on the same key space.
func LockKey(namespace string, a, b uint) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d:%d", namespace, a, b)
	return int64(h.Sum64())
}
