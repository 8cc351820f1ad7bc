package github

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

const (
	// DefaultBaseURL is the public GitHub REST API root
	DefaultBaseURL = "https://api.github.com/"

	// MaxPerPage is the largest page size the API accepts
	MaxPerPage = 100

	// MaxUsernameLength is GitHub's login length limit
	MaxUsernameLength = 39
)

// The paths below are relative to the API base URL.

func UserPath(username string) string {
	return "users/" + url.PathEscape(username)
}

func UserReposPath(username string) string {
	return UserPath(username) + "/repos"
}

func UserGistsPath(username string) string {
	return UserPath(username) + "/gists"
}

// UserCollectionPath addresses a flat per-user list such as followers or starred
func UserCollectionPath(username, collection string) string {
	return UserPath(username) + "/" + collection
}

func RepoPath(owner, repo string) string {
	return fmt.Sprintf("repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
}

func RepoForksPath(owner, repo string) string {
	return RepoPath(owner, repo) + "/forks"
}

func RepoIssueCommentsPath(owner, repo string) string {
	return RepoPath(owner, repo) + "/issues/comments"
}

func RepoCommitCommentsPath(owner, repo string) string {
	return RepoPath(owner, repo) + "/comments"
}

func RepoPullCommentsPath(owner, repo string) string {
	return RepoPath(owner, repo) + "/pulls/comments"
}

func RepoReleasesPath(owner, repo string) string {
	return RepoPath(owner, repo) + "/releases"
}

func GistCommentsPath(gistID string) string {
	return "gists/" + url.PathEscape(gistID) + "/comments"
}

// IsValidUsername checks a login against GitHub's rules: 1-39 ASCII letters,
// digits or hyphens, not starting or ending with a hyphen.
func IsValidUsername(username string) bool {
	if username == "" || len(username) > MaxUsernameLength {
		return false
	}
	if username[0] == '-' || username[len(username)-1] == '-' {
		return false
	}

	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '-') {
			return false
		}
	}
	return true
}

// SanitizeUsername strips a leading @, surrounding spaces and trailing
// slashes, and accepts a github.com profile URL.
func SanitizeUsername(username string) string {
	username = strings.TrimSpace(username)
	for _, prefix := range []string{"https://github.com/", "http://github.com/", "github.com/"} {
		username = strings.TrimPrefix(username, prefix)
	}
	username = strings.TrimPrefix(username, "@")
	return strings.TrimRight(username, "/ ")
}

// SafeFilename keeps letters, digits, space and ._-() and replaces every
// other rune with an underscore. Names that would address the current or
// parent directory are replaced too.
func SafeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(" ._-()", r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	safe := b.String()
	switch safe {
	case "":
		return "_"
	case ".", "..":
		return strings.Repeat("_", len(safe))
	}
	return safe
}
