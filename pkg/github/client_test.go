package github

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gharchiver/pkg/config"
	"gharchiver/pkg/errors"
	"gharchiver/pkg/logger"
)

func newTestClient(t *testing.T, serverURL, token string) *Client {
	t.Helper()
	client, err := NewClient(config.GitHubConfig{
		APIURL:    serverURL,
		Token:     token,
		UserAgent: "gharchiver-test",
		Timeout:   5 * time.Second,
	}, nil, logger.NewNopLogger())
	require.NoError(t, err)
	return client
}

func TestNewClientNormalisesBaseURL(t *testing.T) {
	client := newTestClient(t, "http://localhost:9999/api/v3", "")
	assert.Equal(t, "/api/v3/", client.BaseURL().Path)

	resolved, err := client.Resolve(Request{URL: UserPath("octo")})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/api/v3/users/octo", resolved)
}

func TestResolveMergesQuery(t *testing.T) {
	client := newTestClient(t, "https://api.github.com/", "")

	resolved, err := client.Resolve(Request{
		URL:   "users/octo/repos?type=all&page=1",
		Query: url.Values{"page": {"3"}, "per_page": {"100"}},
	})
	require.NoError(t, err)

	u, err := url.Parse(resolved)
	require.NoError(t, err)
	assert.Equal(t, "all", u.Query().Get("type"))
	assert.Equal(t, "3", u.Query().Get("page"))
	assert.Equal(t, "100", u.Query().Get("per_page"))

	absolute, err := client.Resolve(Request{URL: "https://example.com/x?a=1"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/x?a=1", absolute)
}

func TestGetSendsAPIHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Link", `<https://api.github.com/users/octo/followers?page=2>; rel="next", <https://api.github.com/users/octo/followers?page=5>; rel="last"`)
		w.Write([]byte(`[{"login":"a"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL+"/", "ghp_test")
	resp, err := client.Get(context.Background(), Request{URL: UserCollectionPath("octo", "followers")})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"login":"a"}]`, string(resp.Body))
	assert.True(t, resp.HasLinks)
	assert.Equal(t, "https://api.github.com/users/octo/followers?page=2", resp.NextURL)
	assert.Equal(t, server.URL+"/users/octo/followers", resp.URL)

	assert.Equal(t, "application/vnd.github+json", got.Get("Accept"))
	assert.Equal(t, APIVersion, got.Get("X-GitHub-Api-Version"))
	assert.Equal(t, "gharchiver-test", got.Get("User-Agent"))
	assert.Equal(t, "Bearer ghp_test", got.Get("Authorization"))
}

func TestGetWithoutLinkHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	resp, err := newTestClient(t, server.URL, "").Get(context.Background(), Request{URL: "users/octo/orgs"})
	require.NoError(t, err)
	assert.False(t, resp.HasLinks)
	assert.Empty(t, resp.NextURL)
}

func TestGetStatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		header   map[string]string
		wantType errors.ErrorType
	}{
		{"not found", http.StatusNotFound, nil, errors.ErrorTypeNotFound},
		{"unauthorized", http.StatusUnauthorized, nil, errors.ErrorTypeAuth},
		{"server error", http.StatusBadGateway, nil, errors.ErrorTypeServerError},
		{"primary rate limit", http.StatusForbidden, map[string]string{"X-RateLimit-Remaining": "0"}, errors.ErrorTypeRateLimit},
		{"too many requests", http.StatusTooManyRequests, nil, errors.ErrorTypeRateLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message":"nope"}`))
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL, "").Get(context.Background(), Request{URL: UserPath("octo")})
			require.Error(t, err)

			var te *errors.TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.status, te.StatusCode)
			assert.Equal(t, tt.wantType, te.Type)
			assert.Equal(t, server.URL+"/users/octo", te.URL)

			// the URL is named once, followed by the server's message
			assert.Equal(t, 1, strings.Count(err.Error(), server.URL), err.Error())
			assert.True(t, strings.HasSuffix(err.Error(), ": nope"), err.Error())
		})
	}
}

func TestGetNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	_, err := newTestClient(t, serverURL, "").Get(context.Background(), Request{URL: UserPath("octo")})

	var te *errors.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, errors.ErrorTypeNetwork, te.Type)
	assert.True(t, te.Retryable())
}

func TestGetLogsRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	log := logger.NewTestLogger()
	client, err := NewClient(config.GitHubConfig{APIURL: server.URL, Timeout: time.Second}, nil, log)
	require.NoError(t, err)

	_, err = client.Get(context.Background(), Request{URL: UserPath("octo")})
	require.NoError(t, err)

	msgs := log.GetMessagesByLevel("DEBUG")
	require.Len(t, msgs, 1)
	assert.Equal(t, "HTTP request completed", msgs[0].Message)
	assert.Equal(t, http.StatusOK, msgs[0].Fields["status_code"])
}

func TestOpenSendsTokenOnlyToAPIHost(t *testing.T) {
	var assetAuth string
	assets := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assetAuth = r.Header.Get("Authorization")
		w.Write([]byte("png-bytes"))
	}))
	defer assets.Close()

	var apiAuth, apiAccept string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiAuth = r.Header.Get("Authorization")
		apiAccept = r.Header.Get("Accept")
		w.Write([]byte("zip-bytes"))
	}))
	defer api.Close()

	client := newTestClient(t, api.URL, "ghp_secret")

	body, size, err := client.Open(context.Background(), Request{URL: RepoPath("octo", "hello") + "/zipball/v1"})
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	body.Close()
	require.NoError(t, err)
	assert.Equal(t, "zip-bytes", string(data))
	assert.Equal(t, int64(len("zip-bytes")), size)
	assert.Equal(t, "Bearer ghp_secret", apiAuth)
	assert.Equal(t, "application/octet-stream", apiAccept)

	body, _, err = client.Open(context.Background(), Request{URL: assets.URL + "/u/1.png"})
	require.NoError(t, err)
	data, err = io.ReadAll(body)
	body.Close()
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Empty(t, assetAuth)
}

func TestOpenStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, _, err := newTestClient(t, server.URL, "").Open(context.Background(), Request{URL: server.URL + "/a.png"})

	var te *errors.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusNotFound, te.StatusCode)
	assert.False(t, te.Retryable())
}
