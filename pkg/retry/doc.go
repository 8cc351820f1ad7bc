// Package retry re-runs operations that failed on a transient transport fault.
//
// Only binary downloads are retried, and only when retry.max_attempts is
// raised above its default of 1. Paginated API fetches are never wrapped:
// a failed page fails its resource.
//
//	cfg := retry.FromSettings(ctx, appConfig.Retry, log)
//	data, err := retry.DoWithResult(func() ([]byte, error) {
//	    return fetch(ctx, url)
//	}, cfg)
//
// DefaultRetryIf accepts network, rate limit and 5xx TransportErrors and
// rejects everything else, including context cancellation.
package retry
