// Package debounce suppresses bursts of updates for the same subject. A subject is held while
// it is being processed and then cools down; attempts during either window are dropped.
package debounce

import "context"

type Guard interface {
	// Acquire marks subject as in flight. It returns false when the subject is already in
	// flight or still cooling down.
	Acquire(ctx context.Context, subject string) (bool, error)
	// Release clears the in-flight marker and starts the cooldown.
	Release(ctx context.Context, subject string) error
}
