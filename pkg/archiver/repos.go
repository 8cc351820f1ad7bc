package archiver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"gharchiver/internal/downloader"
	"gharchiver/pkg/archive"
	"gharchiver/pkg/github"
	"gharchiver/pkg/paginate"
)

type commentCategory struct {
	name string
	path func(owner, repo string) string
}

// repoCommentCategories are archived per repository as <name>.json
var repoCommentCategories = []commentCategory{
	{name: "issue_comments", path: github.RepoIssueCommentsPath},
	{name: "commit_comments", path: github.RepoCommitCommentsPath},
	{name: "pr_comments", path: github.RepoPullCommentsPath},
}

func (r *run) repoResources(index int, raw json.RawMessage) []archive.Resource {
	repo, err := github.Decode[github.Repo](raw)
	if err != nil {
		return []archive.Resource{failed(fmt.Sprintf("repos[%d]", index), err)}
	}
	name := repo.GetName()
	if name == "" {
		return []archive.Resource{failed(fmt.Sprintf("repos[%d]", index), fmt.Errorf("repository record has no name"))}
	}

	owner := github.RepoOwner(repo, r.username)
	dir := filepath.Join("comments", "repos", github.SafeFilename(name))
	label := "repo " + name

	var out []archive.Resource
	if r.cfg.Archive.Comments {
		out = append(out, r.collection(label+" forks", github.RepoForksPath(owner, name), filepath.Join(dir, "forks.json"), nil))
		if repo.GetFork() {
			out = append(out, r.upstream(label+" upstream", raw, owner, name, filepath.Join(dir, "upstream_repo.json")))
		}
		for _, cat := range repoCommentCategories {
			out = append(out, r.comments(label+" "+cat.name, cat.path(owner, name), dir, cat.name))
		}
	}
	if r.cfg.Archive.Releases {
		out = append(out, r.releases(label+" releases", owner, name))
	}
	return out
}

// upstream stores a fork's parent repository. Repository listings usually
// omit parent, in which case the full repository record is fetched.
func (r *run) upstream(name string, listed json.RawMessage, owner, repo, file string) archive.Resource {
	return archive.Define(name,
		func(ctx context.Context) (json.RawMessage, error) {
			if parent := parentOf(listed); parent != nil {
				return parent, nil
			}
			full, err := paginate.FetchObject(ctx, r.client, github.Request{URL: github.RepoPath(owner, repo)})
			if err != nil {
				return nil, err
			}
			return parentOf(full), nil
		},
		func(ctx context.Context, parent json.RawMessage) error {
			if parent == nil {
				r.log.WithField("repo", repo).Debug("Fork has no parent record")
				return nil
			}
			_, err := r.store.WriteJSON(file, parent)
			return err
		})
}

func parentOf(raw json.RawMessage) json.RawMessage {
	var v struct {
		Parent json.RawMessage `json:"parent"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	if len(v.Parent) == 0 || string(v.Parent) == "null" {
		return nil
	}
	return v.Parent
}

// releases archives every release of a repository as its own child resource
func (r *run) releases(name, owner, repo string) archive.Resource {
	return archive.Define(name,
		func(ctx context.Context) ([]json.RawMessage, error) {
			return r.pages.FetchAll(ctx, github.Request{URL: github.RepoReleasesPath(owner, repo)})
		},
		func(ctx context.Context, records []json.RawMessage) error {
			releases, err := github.DecodeAll[github.Release](records)
			if err != nil {
				return err
			}
			for _, rel := range releases {
				r.writer.ArchiveResource(ctx, r.release(repo, rel))
			}
			return nil
		})
}

// release writes <repo>/<tag>/release_info.txt and downloads the
// release's assets and source archives next to it.
func (r *run) release(repo string, rel *github.Release) archive.Resource {
	tag := github.ReleaseDirName(rel)
	dir := filepath.Join(github.SafeFilename(repo), tag)

	return archive.Define(fmt.Sprintf("release %s/%s", repo, tag),
		func(ctx context.Context) ([]downloader.Job, error) {
			return r.releaseJobs(dir, rel), nil
		},
		func(ctx context.Context, jobs []downloader.Job) error {
			if _, err := r.store.WriteText(filepath.Join(dir, "release_info.txt"), rel.GetBody()); err != nil {
				return err
			}
			results, err := r.downloads.SaveAll(ctx, jobs)
			for _, res := range results {
				if res.Err == nil {
					r.addBytes(res.Bytes)
				}
			}
			return err
		})
}

func (r *run) releaseJobs(dir string, rel *github.Release) []downloader.Job {
	var jobs []downloader.Job
	if r.cfg.Archive.ReleaseAssets {
		for _, asset := range rel.Assets {
			if asset.GetBrowserDownloadURL() == "" {
				continue
			}
			jobs = append(jobs, downloader.Job{
				URL:  asset.GetBrowserDownloadURL(),
				Path: filepath.Join(dir, github.SafeFilename(asset.GetName())),
			})
		}
	}
	if r.cfg.Archive.SourceArchives {
		if u := rel.GetZipballURL(); u != "" {
			jobs = append(jobs, downloader.Job{URL: u, Path: filepath.Join(dir, "source.zip")})
		}
		if u := rel.GetTarballURL(); u != "" {
			jobs = append(jobs, downloader.Job{URL: u, Path: filepath.Join(dir, "source.tar.gz")})
		}
	}
	return jobs
}
