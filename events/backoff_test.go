package events

import (
	"testing"
	"time"
)

func TestBackoff_DoublesToCeiling(t *testing.T) {
	b := newBackoff(time.Second, 30*time.Second)

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second, // capped
		30 * time.Second,
	}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("attempt %d: delay = %v, want %v", i+1, got, w)
		}
	}
}

func TestBackoff_ResetRestoresBase(t *testing.T) {
	b := newBackoff(500*time.Millisecond, 10*time.Second)

	b.Next()
	b.Next()
	b.Next()
	b.Reset()

	if got := b.Next(); got != 500*time.Millisecond {
		t.Errorf("delay after reset = %v, want 500ms", got)
	}
	if got := b.Next(); got != time.Second {
		t.Errorf("second delay after reset = %v, want 1s", got)
	}
}
