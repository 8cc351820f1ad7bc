package github

import (
	"encoding/json"
	"fmt"

	gh "github.com/google/go-github/v68/github"
)

// Records are archived verbatim; these views expose only the fields the
// archiver navigates.
type (
	Profile = gh.User
	Repo    = gh.Repository
	Gist    = gh.Gist
	Release = gh.RepositoryRelease
	Asset   = gh.ReleaseAsset
)

// Comment is the navigable part of an issue, commit, pull request or gist comment
type Comment struct {
	ID        int64         `json:"id"`
	Reactions *gh.Reactions `json:"reactions,omitempty"`
}

// HasReactions reports whether the comment carries at least one reaction
// and a URL to list them.
func (c Comment) HasReactions() bool {
	return c.Reactions != nil && c.Reactions.GetTotalCount() > 0 && c.Reactions.GetURL() != ""
}

// Decode unmarshals one raw record into T
func Decode[T any](raw json.RawMessage) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %T: %w", v, err)
	}
	return &v, nil
}

// DecodeAll unmarshals every record into T, preserving order
func DecodeAll[T any](records []json.RawMessage) ([]*T, error) {
	out := make([]*T, 0, len(records))
	for i, raw := range records {
		v, err := Decode[T](raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ReleaseDirName names a release directory: tag, else release name, else id
func ReleaseDirName(r *Release) string {
	if tag := r.GetTagName(); tag != "" {
		return SafeFilename(tag)
	}
	if name := r.GetName(); name != "" {
		return SafeFilename(name)
	}
	return SafeFilename(fmt.Sprintf("%d", r.GetID()))
}

// RepoOwner returns the repository owner's login, or fallback when absent
func RepoOwner(r *Repo, fallback string) string {
	if login := r.GetOwner().GetLogin(); login != "" {
		return login
	}
	return fallback
}
