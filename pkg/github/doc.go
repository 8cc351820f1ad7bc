// Package github is the transport between gharchiver and the GitHub REST API.
//
// Requests are built and dispatched with github.com/google/go-github
// (Client.NewRequest and Client.BareDo) so the archiver inherits its
// headers, token handling and error types, while response bodies stay raw
// JSON: records are archived exactly as the server sent them.
//
//	client, err := github.NewClient(cfg.GitHub, ratelimit.NewPerMinute(60), log)
//	resp, err := client.Get(ctx, github.Request{URL: github.UserPath("octocat")})
//	if err != nil {
//	    var te *errors.TransportError
//	    if stderrors.As(err, &te) && te.Type == errors.ErrorTypeNotFound {
//	        // no such user
//	    }
//	}
//
// Binary downloads go through Open, which streams the body and follows
// redirects to asset hosts without forwarding the API token.
package github
