package workflow

import (
	"testing"
	"time"
)

// Claiming, idempotent re-delivery, and per-sale serialization need a real
// store; they are covered end to end by the docker-gated test in
// models/event_pipeline_integration_test.go. The backoff schedule is pure and
// tested here.

func TestNextBackoff_DoublesAndCaps(t *testing.T) {
	initial := 5 * time.Second

	if got := NextBackoff(initial, 0); got != initial {
		t.Fatalf("attempt 0: expected %s, got %s", initial, got)
	}
	if got := NextBackoff(initial, 1); got != initial {
		t.Fatalf("attempt 1: expected %s, got %s", initial, got)
	}
	if got := NextBackoff(initial, 2); got != 10*time.Second {
		t.Fatalf("attempt 2: expected 10s, got %s", got)
	}
	if got := NextBackoff(initial, 3); got != 20*time.Second {
		t.Fatalf("attempt 3: expected 20s, got %s", got)
	}
	if got := NextBackoff(initial, 50); got != 10*time.Minute {
		t.Fatalf("attempt 50: expected 10m cap, got %s", got)
	}
}

func TestNextBackoff_NonDecreasing(t *testing.T) {
	initial := 5 * time.Second
	prev := time.Duration(0)
	for attempt := 0; attempt < 30; attempt++ {
		got := NextBackoff(initial, attempt)
		if got < prev {
			t.Fatalf("attempt %d: backoff %s shrank below %s", attempt, got, prev)
		}
		if got > 10*time.Minute {
			t.Fatalf("attempt %d: backoff %s exceeds the 10m cap", attempt, got)
		}
		prev = got
	}
}
