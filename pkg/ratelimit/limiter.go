package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces a sequence of requests
type Limiter interface {
	// Allow reports whether a request may proceed now, consuming a slot if so
	Allow() bool
	// Wait blocks until a request may proceed or ctx is done
	Wait(ctx context.Context) error
	// Reset forgets previous requests
	Reset()
}

// Interval spaces requests at least Every apart. The first request is never delayed.
type Interval struct {
	mu    sync.Mutex
	every time.Duration
	lim   *rate.Limiter
}

// NewFixedDelay returns a Limiter enforcing delay between consecutive
// requests, or an unlimited one when delay is not positive.
func NewFixedDelay(delay time.Duration) Limiter {
	if delay <= 0 {
		return Unlimited{}
	}
	return &Interval{
		every: delay,
		lim:   rate.NewLimiter(rate.Every(delay), 1),
	}
}

// NewPerMinute returns a Limiter admitting n requests per minute, or an
// unlimited one when n is not positive.
func NewPerMinute(n int) Limiter {
	if n <= 0 {
		return Unlimited{}
	}
	return NewFixedDelay(time.Minute / time.Duration(n))
}

func (i *Interval) limiter() *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lim
}

func (i *Interval) Allow() bool {
	return i.limiter().Allow()
}

// Wait blocks for the next slot. A slot beyond ctx's deadline fails at once
// with an error wrapping context.DeadlineExceeded.
func (i *Interval) Wait(ctx context.Context) error {
	err := i.limiter().Wait(ctx)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}

func (i *Interval) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.lim = rate.NewLimiter(rate.Every(i.every), 1)
}

// Every returns the enforced spacing
func (i *Interval) Every() time.Duration {
	return i.every
}

// Unlimited never delays
type Unlimited struct{}

func (Unlimited) Allow() bool                    { return true }
func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }
func (Unlimited) Reset()                         {}
