package usecase

import (
	"math/rand"
	"sync"
	"time"
)

// DelayPolicy produces randomized pauses within a fixed range to pace actions.
type DelayPolicy struct {
	min, max time.Duration
	mu       sync.Mutex
	rng      *rand.Rand
}

// NewDelayPolicy creates a policy returning durations in [min, max].
// Bounds given in the wrong order are swapped.
func NewDelayPolicy(lo, hi time.Duration, src rand.Source) *DelayPolicy {
	if hi < lo {
		lo, hi = hi, lo
	}
	if lo < 0 {
		lo = 0
	}
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &DelayPolicy{min: lo, max: hi, rng: rand.New(src)}
}

// Next returns the next pause.
func (d *DelayPolicy) Next() time.Duration {
	span := int64(d.max - d.min)
	if span <= 0 {
		return d.min
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.min + time.Duration(d.rng.Int63n(span+1))
}
