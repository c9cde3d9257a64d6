package events

import "time"

// backoff produces the reconnect delay schedule: the Nth consecutive
// failure waits min(base * 2^(N-1), max). Reset restores the base delay
// after a successful open.
type backoff struct {
	base time.Duration
	max  time.Duration
	next time.Duration
}

func newBackoff(base, max time.Duration) *backoff {
	return &backoff{base: base, max: max, next: base}
}

// Next returns the delay to wait before the upcoming attempt and
// advances the schedule.
func (b *backoff) Next() time.Duration {
	d := b.next
	b.next *= 2
	if b.next > b.max {
		b.next = b.max
	}
	return d
}

// Reset restores the base delay.
func (b *backoff) Reset() {
	b.next = b.base
}
