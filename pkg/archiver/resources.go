package archiver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"

	"gharchiver/pkg/archive"
	"gharchiver/pkg/github"
)

// resources lists the top-level resources of a run in archive order
func (r *run) resources(profile json.RawMessage, repos []json.RawMessage) []archive.Resource {
	ac := r.cfg.Archive
	out := []archive.Resource{r.snapshot("profile", "profile.json", profile)}

	if ac.Avatar {
		p, err := github.Decode[github.Profile](profile)
		switch {
		case err != nil:
			out = append(out, failed("avatar", err))
		case p.GetAvatarURL() != "":
			out = append(out, r.avatar(p.GetAvatarURL()))
		}
	}

	if ac.Repos {
		out = append(out, r.snapshot("repos", "repos.json", repos))
	}

	for _, endpoint := range ac.SocialEndpoints {
		out = append(out, r.collection(endpoint, github.UserCollectionPath(r.username, endpoint), endpoint+".json", nil))
	}

	if ac.Gists {
		out = append(out, r.gists())
	}

	for i, raw := range repos {
		out = append(out, r.repoResources(i, raw)...)
	}
	return out
}

// snapshot stores an already fetched value
func (r *run) snapshot(name, file string, v interface{}) archive.Resource {
	return archive.Define(name,
		func(ctx context.Context) (interface{}, error) {
			return v, nil
		},
		func(ctx context.Context, v interface{}) error {
			_, err := r.store.WriteJSON(file, v)
			return err
		})
}

// collection archives a paginated list as one JSON array
func (r *run) collection(name, path, file string, query url.Values) archive.Resource {
	return archive.Define(name,
		func(ctx context.Context) ([]json.RawMessage, error) {
			return r.pages.FetchAll(ctx, github.Request{URL: path, Query: query})
		},
		func(ctx context.Context, records []json.RawMessage) error {
			_, err := r.store.WriteJSON(file, records)
			return err
		})
}

func (r *run) avatar(avatarURL string) archive.Resource {
	return archive.Define("avatar",
		func(ctx context.Context) ([]byte, error) {
			return r.downloads.Fetch(ctx, avatarURL)
		},
		func(ctx context.Context, data []byte) error {
			placed, err := r.store.Place(data, "avatars", "avatar", "png")
			if err != nil {
				return err
			}
			if placed.Created {
				r.addBytes(int64(len(data)))
			}
			r.log.InfoWithFields("Avatar placed", map[string]interface{}{
				"path":    placed.Path,
				"created": placed.Created,
				"md5":     placed.Digest,
			})
			return nil
		})
}

func (r *run) gists() archive.Resource {
	return archive.Define("gists",
		func(ctx context.Context) ([]json.RawMessage, error) {
			return r.pages.FetchAll(ctx, github.Request{URL: github.UserGistsPath(r.username)})
		},
		func(ctx context.Context, records []json.RawMessage) error {
			if _, err := r.store.WriteJSON("gists.json", records); err != nil {
				return err
			}
			if !r.cfg.Archive.Comments {
				return nil
			}

			gists, err := github.DecodeAll[github.Gist](records)
			if err != nil {
				return err
			}
			for _, g := range gists {
				id := g.GetID()
				if id == "" {
					continue
				}
				r.writer.ArchiveResource(ctx, r.comments(
					"gist "+id+" comments",
					github.GistCommentsPath(id),
					filepath.Join("comments", "gists"),
					github.SafeFilename(id),
				))
			}
			return nil
		})
}

// comments archives a comment list as dir/base.json and the reactions
// of its comments as dir/base_reactions.json. An empty list writes nothing.
func (r *run) comments(name, path, dir, base string) archive.Resource {
	return archive.Define(name,
		func(ctx context.Context) ([]json.RawMessage, error) {
			return r.pages.FetchAll(ctx, github.Request{URL: path})
		},
		func(ctx context.Context, records []json.RawMessage) error {
			if len(records) == 0 {
				return nil
			}
			if _, err := r.store.WriteJSON(filepath.Join(dir, base+".json"), records); err != nil {
				return err
			}
			if r.cfg.Archive.Reactions {
				r.writer.ArchiveResource(ctx, r.reactions(name+" reactions", records, filepath.Join(dir, base+"_reactions.json")))
			}
			return nil
		})
}

// reactions maps comment id to the reactions listed at the comment's
// reactions.url, for comments that have any.
func (r *run) reactions(name string, comments []json.RawMessage, file string) archive.Resource {
	return archive.Define(name,
		func(ctx context.Context) (map[string][]json.RawMessage, error) {
			decoded, err := github.DecodeAll[github.Comment](comments)
			if err != nil {
				return nil, err
			}

			byComment := make(map[string][]json.RawMessage)
			for _, c := range decoded {
				if !c.HasReactions() {
					continue
				}
				list, err := r.pages.FetchAll(ctx, github.Request{URL: c.Reactions.GetURL()})
				if err != nil {
					return nil, fmt.Errorf("reactions of comment %d: %w", c.ID, err)
				}
				byComment[strconv.FormatInt(c.ID, 10)] = list
			}
			return byComment, nil
		},
		func(ctx context.Context, byComment map[string][]json.RawMessage) error {
			_, err := r.store.WriteJSON(file, byComment)
			return err
		})
}

// failed records a resource that could not even be described
func failed(name string, err error) archive.Resource {
	return archive.Define(name,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, err
		},
		func(ctx context.Context, _ struct{}) error {
			return nil
		})
}
