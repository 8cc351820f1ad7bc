package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"gharchiver/pkg/config"
	errs "gharchiver/pkg/errors"
	"gharchiver/pkg/github"
	"gharchiver/pkg/logger"
	"gharchiver/pkg/ratelimit"
	"gharchiver/pkg/retry"
	"gharchiver/pkg/storage"
)

// Opener starts a binary download
type Opener interface {
	Open(ctx context.Context, req github.Request) (io.ReadCloser, int64, error)
}

// Job is one file to download into the archive
type Job struct {
	URL string
	// Path is relative to the storage root
	Path string
}

// Result reports how a Job ended
type Result struct {
	Job      Job
	Bytes    int64
	Duration time.Duration
	Err      error
}

// Downloader runs binary downloads one at a time, spaced by a fixed delay
type Downloader struct {
	client Opener
	store  *storage.Manager
	pacer  ratelimit.Limiter
	retry  config.RetryConfig
	logger logger.Logger
}

// New returns a Downloader writing under store. pacer is waited on before
// every request, retries included.
func New(client Opener, store *storage.Manager, pacer ratelimit.Limiter, rc config.RetryConfig, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	if pacer == nil {
		pacer = ratelimit.Unlimited{}
	}
	return &Downloader{
		client: client,
		store:  store,
		pacer:  pacer,
		retry:  rc,
		logger: log,
	}
}

// Fetch downloads url fully into memory
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	data, err := retry.DoWithResult(func() ([]byte, error) {
		body, err := d.open(ctx, url)
		if err != nil {
			return nil, err
		}
		defer body.Close()

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, body); err != nil {
			return nil, errs.NewNetworkError(url, err)
		}
		return buf.Bytes(), nil
	}, d.retryConfig(ctx, url))

	logger.LogDownload(d.logger, url, "", int64(len(data)), err)
	if err != nil {
		return nil, err
	}

	d.logger.DebugWithFields("Fetched into memory", map[string]interface{}{
		"url":      url,
		"size":     humanize.Bytes(uint64(len(data))),
		"duration": time.Since(start).String(),
	})
	return data, nil
}

// Save streams job.URL into job.Path, replacing any previous file
func (d *Downloader) Save(ctx context.Context, job Job) Result {
	start := time.Now()
	result := Result{Job: job}

	result.Err = retry.Do(func() error {
		body, err := d.open(ctx, job.URL)
		if err != nil {
			return err
		}
		defer body.Close()

		n, err := d.store.WriteStream(job.Path, &networkReader{url: job.URL, r: body})
		result.Bytes = n
		return err
	}, d.retryConfig(ctx, job.URL))

	result.Duration = time.Since(start)
	logger.LogDownload(d.logger, job.URL, d.store.Path(job.Path), result.Bytes, result.Err)

	if result.Err == nil {
		d.logger.InfoWithFields("Saved download", map[string]interface{}{
			"path":     job.Path,
			"size":     humanize.Bytes(uint64(result.Bytes)),
			"duration": result.Duration.String(),
		})
	}
	return result
}

// SaveAll runs jobs in order. A failed job does not stop the rest; the
// returned error joins every failure.
func (d *Downloader) SaveAll(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, 0, len(jobs))
	var failed []error

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			failed = append(failed, err)
			break
		}
		res := d.Save(ctx, job)
		results = append(results, res)
		if res.Err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", job.Path, res.Err))
		}
	}

	if len(failed) == 0 {
		return results, nil
	}
	if len(failed) == 1 {
		return results, failed[0]
	}
	return results, fmt.Errorf("%d downloads failed: %w", len(failed), errors.Join(failed...))
}

func (d *Downloader) open(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := d.pacer.Wait(ctx); err != nil {
		return nil, err
	}
	body, _, err := d.client.Open(ctx, github.Request{URL: url})
	return body, err
}

func (d *Downloader) retryConfig(ctx context.Context, url string) *retry.Config {
	return retry.FromSettings(ctx, d.retry, d.logger.WithField("url", url))
}

// networkReader tags read failures as transport faults so they stay
// retryable after the storage layer wraps them.
type networkReader struct {
	url string
	r   io.Reader
}

func (n *networkReader) Read(p []byte) (int, error) {
	c, err := n.r.Read(p)
	if err != nil && err != io.EOF {
		return c, errs.NewNetworkError(n.url, err)
	}
	return c, err
}
