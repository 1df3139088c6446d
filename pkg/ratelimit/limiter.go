package ratelimit

import (
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another request
	Wait()
	// Reset resets the rate limiter state
	Reset()
}

// Interval sleeps a fixed delay before every request
type Interval struct {
	delay time.Duration
	sleep func(time.Duration)
	mu    sync.Mutex
}

// NewInterval creates a limiter that waits delay before each request
func NewInterval(delay time.Duration) *Interval {
	return &Interval{delay: delay, sleep: time.Sleep}
}

// Allow reports whether a request may proceed without waiting
func (i *Interval) Allow() bool {
	return i.delay <= 0
}

// Wait sleeps the configured delay; callers are serialized
func (i *Interval) Wait() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.delay > 0 {
		i.sleep(i.delay)
	}
}

// Reset is a no-op for a fixed interval
func (i *Interval) Reset() {}

// Delay returns the configured delay
func (i *Interval) Delay() time.Duration {
	return i.delay
}

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	capacity     int           // Maximum number of tokens
	tokens       int           // Current number of tokens
	refillPeriod time.Duration // Period after which bucket is refilled
	lastRefill   time.Time     // Last time the bucket was refilled
	mu           sync.Mutex
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(capacity int, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillPeriod: refillPeriod,
		lastRefill:   time.Now(),
	}
}

// Allow checks if a request can proceed
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait() {
	for !tb.Allow() {
		tb.mu.Lock()
		timeUntilRefill := tb.refillPeriod - time.Since(tb.lastRefill)
		tb.mu.Unlock()

		if timeUntilRefill > 0 {
			time.Sleep(timeUntilRefill)
		} else {
			time.Sleep(100 * time.Millisecond)
		}
	}
}

// Reset resets the token bucket to full capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = time.Now()
}

// refill tops the bucket up once the period has elapsed
func (tb *TokenBucket) refill() {
	now := time.Now()
	if now.Sub(tb.lastRefill) >= tb.refillPeriod {
		tb.tokens = tb.capacity
		tb.lastRefill = now
	}
}

type chain []Limiter

// Chain returns a limiter that waits on every given limiter in order
func Chain(limiters ...Limiter) Limiter {
	if len(limiters) == 1 {
		return limiters[0]
	}
	return chain(limiters)
}

func (c chain) Allow() bool {
	for _, l := range c {
		if !l.Allow() {
			return false
		}
	}
	return true
}

func (c chain) Wait() {
	for _, l := range c {
		l.Wait()
	}
}

func (c chain) Reset() {
	for _, l := range c {
		l.Reset()
	}
}
