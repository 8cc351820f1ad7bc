// Package archiver archives a GitHub user's public footprint into a
// directory tree.
//
// A run first fetches the two root resources, the profile and the
// repository list. Either failing aborts the run before anything is
// written. Everything else is described as a list of archive.Resource
// values and handed to an archive.Writer:
//
//   - profile.json, avatars/avatar.png (content de-duplicated), repos.json
//   - one <endpoint>.json per social endpoint (followers, starred, ...)
//   - gists.json and comments/gists/<id>.json with reactions
//   - comments/repos/<repo>/ with forks, upstream and comment categories
//   - <repo>/<tag>/ with release notes, assets and source archives
//
// Usage:
//
//	client, _ := github.NewClient(cfg.GitHub, nil, log)
//	result, err := archiver.New(client, cfg, log, tracker).Run(ctx, "octocat")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Status())
package archiver
