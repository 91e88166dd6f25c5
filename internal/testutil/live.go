package testutil

import (
	"testing"
	"time"
)

// Receive waits for the next value on ch and fails the test after a timeout
// or when ch is closed.
func Receive[V any](t testing.TB, ch <-chan V) V {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed before a value arrived")
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for value")
	}
	var zero V
	return zero
}

// ReceiveUntil drains ch until match accepts a value.
func ReceiveUntil[V any](t testing.TB, ch <-chan V, match func(V) bool) V {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed before a matching value arrived")
			}
			if match(v) {
				return v
			}
		case <-deadline:
			t.Fatalf("timed out waiting for matching value")
		}
	}
}
