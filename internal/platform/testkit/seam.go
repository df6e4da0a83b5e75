package testkit

import (
	"sync"
	"testing"
	"time"
)

// seamMu serializes tests that patch package level seams
var seamMu sync.Mutex

// Swap replaces *target for the duration of t; the original is restored on cleanup
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}

// Serial holds the seam lock until t finishes. Call it before Swap in tests that
// patch seams shared with other tests of the package
func Serial(t *testing.T) {
	t.Helper()
	seamMu.Lock()
	t.Cleanup(seamMu.Unlock)
}

// Clock returns a clock seam starting at start that advances by step on every call
func Clock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(step)
		return now
	}
}
