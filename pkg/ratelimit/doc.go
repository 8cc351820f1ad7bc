// Package ratelimit paces outbound requests.
//
// Binary downloads are spaced by a fixed delay; API calls may optionally be
// held to a requests-per-minute budget. Both are token buckets of size one
// from golang.org/x/time/rate, so the first request goes out immediately and
// each following one waits for its slot.
//
//	assets := ratelimit.NewFixedDelay(time.Second)
//	if err := assets.Wait(ctx); err != nil {
//	    return err
//	}
package ratelimit
