package paginate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	errs "gharchiver/pkg/errors"
	"gharchiver/pkg/github"
	"gharchiver/pkg/logger"
)

// DefaultPageSize is the largest page the GitHub API serves
const DefaultPageSize = github.MaxPerPage

// Getter is the part of the transport the Paginator needs
type Getter interface {
	Get(ctx context.Context, req github.Request) (*github.Response, error)
}

// Paginator walks a collection endpoint until it is exhausted
type Paginator struct {
	client   Getter
	pageSize int
	logger   logger.Logger
}

// New returns a Paginator requesting pageSize records per page. A pageSize
// outside 1..100 falls back to 100.
func New(client Getter, pageSize int, log logger.Logger) *Paginator {
	if pageSize < 1 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Paginator{client: client, pageSize: pageSize, logger: log}
}

// FetchAll returns every record of endpoint in server order, first page
// first. endpoint may carry its own query parameters (type=all, etc.).
//
// An empty page ends the walk. Otherwise a Link rel="next" target is
// followed verbatim, a Link header without one ends the walk, and a
// response without any Link header advances the page number. Requesting
// the same URL twice fails with *errors.CursorStallError. The first
// transport failure is returned as is, with no partial result.
func (p *Paginator) FetchAll(ctx context.Context, endpoint github.Request) ([]json.RawMessage, error) {
	query := url.Values{}
	for k, v := range endpoint.Query {
		query[k] = append([]string(nil), v...)
	}
	query.Set("per_page", strconv.Itoa(p.pageSize))
	query.Set("page", "1")

	req := github.Request{URL: endpoint.URL, Query: query, Header: endpoint.Header}
	page := 1
	seen := make(map[string]bool)
	results := []json.RawMessage{}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := p.client.Get(ctx, req)
		if err != nil {
			return nil, err
		}
		seen[resp.URL] = true

		records, err := decodePage(resp)
		if err != nil {
			return nil, err
		}

		p.logger.DebugWithFields("fetched page", map[string]interface{}{
			"url":     resp.URL,
			"page":    page,
			"records": len(records),
		})

		if len(records) == 0 {
			return results, nil
		}
		results = append(results, records...)

		switch {
		case resp.NextURL != "":
			next, err := absolute(resp.URL, resp.NextURL)
			if err != nil {
				return nil, &errs.TransportError{URL: resp.NextURL, Type: errs.ErrorTypeParsing, Err: err}
			}
			if seen[next] {
				return nil, &errs.CursorStallError{URL: next, Page: page}
			}
			req = github.Request{URL: next, Header: endpoint.Header}
		case resp.HasLinks:
			return results, nil
		default:
			q := url.Values{}
			for k, v := range query {
				q[k] = v
			}
			q.Set("page", strconv.Itoa(page+1))
			query = q
			req = github.Request{URL: endpoint.URL, Query: query, Header: endpoint.Header}
		}
		page++
	}
}

func decodePage(resp *github.Response) ([]json.RawMessage, error) {
	var records []json.RawMessage
	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 || body[0] != '[' {
		return nil, &errs.TransportError{
			URL:        resp.URL,
			StatusCode: resp.StatusCode,
			Type:       errs.ErrorTypeParsing,
			Err:        fmt.Errorf("page is not a JSON array"),
		}
	}
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &errs.TransportError{
			URL:        resp.URL,
			StatusCode: resp.StatusCode,
			Type:       errs.ErrorTypeParsing,
			Err:        fmt.Errorf("page is not a JSON array: %w", err),
		}
	}
	return records, nil
}

// absolute resolves a next link against the URL that produced it
func absolute(base, next string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	n, err := b.Parse(next)
	if err != nil {
		return "", err
	}
	return n.String(), nil
}

// FetchObject fetches a single JSON object endpoint and returns its raw body
func FetchObject(ctx context.Context, client Getter, endpoint github.Request) (json.RawMessage, error) {
	resp, err := client.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNoContent {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(resp.Body) {
		return nil, &errs.TransportError{
			URL:        resp.URL,
			StatusCode: resp.StatusCode,
			Type:       errs.ErrorTypeParsing,
			Err:        fmt.Errorf("response is not valid JSON"),
		}
	}
	return json.RawMessage(resp.Body), nil
}
