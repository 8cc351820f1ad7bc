package archiver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"

	"gharchiver/internal/downloader"
	"gharchiver/pkg/archive"
	"gharchiver/pkg/config"
	"gharchiver/pkg/github"
	"gharchiver/pkg/logger"
	"gharchiver/pkg/paginate"
	"gharchiver/pkg/ratelimit"
	"gharchiver/pkg/storage"
)

// Client is the transport the archiver drives
type Client interface {
	paginate.Getter
	downloader.Opener
}

// Result describes a run that got past its root fetches
type Result struct {
	RunID    string
	Username string
	Root     string
	Report   *archive.Report
}

// Status is the run's overall status
func (r *Result) Status() archive.Status {
	return r.Report.Status()
}

// Archiver archives one GitHub user per Run
type Archiver struct {
	client Client
	cfg    *config.Config
	logger logger.Logger
	hooks  []archive.Hook
}

// New returns an Archiver. hooks observe every resource; a hook that
// also has an AddBytes(int64) method is told about downloaded bytes.
func New(client Client, cfg *config.Config, log logger.Logger, hooks ...archive.Hook) *Archiver {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Archiver{
		client: client,
		cfg:    cfg,
		logger: log,
		hooks:  hooks,
	}
}

// run is the state of one Run call
type run struct {
	*Archiver
	username  string
	log       logger.Logger
	store     *storage.Manager
	pages     *paginate.Paginator
	downloads *downloader.Downloader
	writer    *archive.Writer
}

// Run archives username under the configured output directory.
//
// The profile and the repository list are fetched first; if either fails
// nothing is written and the error is returned with a nil Result. After
// that every resource is archived independently and failures only show
// up in the Result's report. A cancelled ctx stops the run and is
// returned alongside the partial Result.
func (a *Archiver) Run(ctx context.Context, username string) (*Result, error) {
	username = github.SanitizeUsername(username)
	if !github.IsValidUsername(username) {
		return nil, fmt.Errorf("invalid GitHub username %q", username)
	}

	runID := uuid.NewString()
	log := a.logger.WithFields(map[string]interface{}{
		"run_id":   runID,
		"username": username,
	})
	root := filepath.Join(a.cfg.Output.BaseDirectory, github.SafeFilename(username))
	log.InfoWithFields("Starting archive", map[string]interface{}{
		"output_dir": root,
	})

	pages := paginate.New(a.client, a.cfg.GitHub.PerPage, log)

	profile, err := paginate.FetchObject(ctx, a.client, github.Request{URL: github.UserPath(username)})
	if err != nil {
		log.WithError(err).Error("Failed to fetch profile")
		return nil, fmt.Errorf("fetch profile of %s: %w", username, err)
	}

	var repos []json.RawMessage
	if a.needsRepos() {
		repos, err = pages.FetchAll(ctx, github.Request{
			URL:   github.UserReposPath(username),
			Query: url.Values{"type": {"all"}},
		})
		if err != nil {
			log.WithError(err).Error("Failed to list repositories")
			return nil, fmt.Errorf("list repositories of %s: %w", username, err)
		}
	}

	store, err := storage.NewManager(root)
	if err != nil {
		return nil, err
	}

	r := &run{
		Archiver:  a,
		username:  username,
		log:       log,
		store:     store,
		pages:     pages,
		downloads: downloader.New(a.client, store, ratelimit.NewFixedDelay(a.cfg.RateLimit.AssetDelay), a.cfg.Retry, log),
		writer:    archive.NewWriter(log, a.hooks...),
	}
	runErr := r.writer.ArchiveAll(ctx, r.resources(profile, repos)...)

	report := r.writer.Report()
	stored, failed := report.Counts()
	log.InfoWithFields("Archive finished", map[string]interface{}{
		"status":  string(report.Status()),
		"stored":  stored,
		"failed":  failed,
		"elapsed": report.Elapsed().String(),
	})

	result := &Result{RunID: runID, Username: username, Root: root, Report: report}
	if runErr != nil {
		return result, fmt.Errorf("archive of %s interrupted: %w", username, runErr)
	}
	return result, nil
}

func (a *Archiver) needsRepos() bool {
	ac := a.cfg.Archive
	return ac.Repos || ac.Comments || ac.Releases
}

type byteCounter interface {
	AddBytes(n int64)
}

func (r *run) addBytes(n int64) {
	if n <= 0 {
		return
	}
	for _, h := range r.hooks {
		if c, ok := h.(byteCounter); ok {
			c.AddBytes(n)
		}
	}
}
