// Package ratelimit implements a synchronous, fixed-interval admission
// gate for tick-driven nodes.
//
// The limiter has no concurrency of its own: it is read and updated
// only from the control thread and is not safe for concurrent use.
// Unlike a token bucket, it never permits bursts: at most one
// operation is admitted per interval even after a long idle period,
// which gives nodes predictable per-tick admission behavior.
package ratelimit

import (
	"errors"
	"time"
)

// ErrInvalidRate means the limiter was constructed with a
// non-positive rate.
var ErrInvalidRate = errors.New("max rate must be positive")

// Limiter admits at most maxRate operations per second.
type Limiter struct {
	maxRate     float64
	minInterval time.Duration

	lastOperation time.Time
	totalAllowed  uint64
	totalRejected uint64
}

// Stats contains cumulative counters for a Limiter. TotalAllowed plus
// TotalRejected equals the number of Allow calls made.
type Stats struct {
	MaxRate       float64
	TotalAllowed  uint64
	TotalRejected uint64
}

// New creates a limiter admitting maxRate operations per second.
func New(maxRate float64) (*Limiter, error) {
	if maxRate <= 0 {
		return nil, ErrInvalidRate
	}

	return &Limiter{
		maxRate:     maxRate,
		minInterval: time.Duration(float64(time.Second) / maxRate),
	}, nil
}

// Allow reports whether an operation may proceed now. When it returns
// true the admission time is recorded; when it returns false the
// limiter state is unchanged apart from the rejection counter.
func (l *Limiter) Allow() bool {
	now := time.Now()
	if now.Sub(l.lastOperation) >= l.minInterval {
		l.lastOperation = now
		l.totalAllowed++
		return true
	}

	l.totalRejected++
	return false
}

// WaitTime returns the non-negative remaining time until the next
// Allow would succeed, for callers that schedule a retry instead of
// polling.
func (l *Limiter) WaitTime() time.Duration {
	remaining := l.minInterval - time.Since(l.lastOperation)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MinInterval returns the derived minimum spacing between admitted
// operations.
func (l *Limiter) MinInterval() time.Duration {
	return l.minInterval
}

// Stats returns cumulative limiter statistics.
func (l *Limiter) Stats() Stats {
	return Stats{
		MaxRate:       l.maxRate,
		TotalAllowed:  l.totalAllowed,
		TotalRejected: l.totalRejected,
	}
}
