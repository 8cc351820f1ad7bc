package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gharchiver/pkg/archive"
	"gharchiver/pkg/archiver"
	"gharchiver/pkg/config"
	"gharchiver/pkg/github"
	"gharchiver/pkg/logger"
	"gharchiver/pkg/ratelimit"
	"gharchiver/pkg/ui"
)

var (
	// Archive command flags
	outputDir    string
	apiURL       string
	assetDelay   time.Duration
	maxRetries   int
	allowPartial bool

	archiveAvatar    bool
	archiveRepos     bool
	archiveComments  bool
	archiveReactions bool
	archiveGists     bool
	archiveReleases  bool
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive <username>",
	Short: "Archive a GitHub user",
	Long: `Archive everything public about a GitHub user into <output>/<username>.

A token from GHARCHIVER_TOKEN or GITHUB_TOKEN is sent with API calls
when set. Without one the API allows 60 requests per hour.`,
	Example: `  # Archive into ./octocat
  gharchiver octocat

  # Archive into another directory, skipping release downloads
  gharchiver archive octocat --output ./archives --releases=false

  # Treat failed resources as success for scripting
  gharchiver octocat --allow-partial`,
	Args: cobra.ExactArgs(1),
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	addArchiveFlags(archiveCmd)
}

func addArchiveFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "base output directory (default: current directory)")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "GitHub API root (default: https://api.github.com/)")
	cmd.Flags().DurationVar(&assetDelay, "asset-delay", time.Second, "pause between binary downloads")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 1, "attempts per binary download")
	cmd.Flags().BoolVar(&allowPartial, "allow-partial", false, "exit 0 even when some resources failed")

	cmd.Flags().BoolVar(&archiveAvatar, "avatar", true, "download the avatar")
	cmd.Flags().BoolVar(&archiveRepos, "repos", true, "store the repository list")
	cmd.Flags().BoolVar(&archiveComments, "comments", true, "archive forks, upstreams and comments per repository and gist")
	cmd.Flags().BoolVar(&archiveReactions, "reactions", true, "archive reactions of comments")
	cmd.Flags().BoolVar(&archiveGists, "gists", true, "archive gists")
	cmd.Flags().BoolVar(&archiveReleases, "releases", true, "archive releases with their assets")
}

// archiveFlagOverrides collects the flags the user actually set
func archiveFlagOverrides(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	fs := cmd.Flags()

	if outputDir != "" {
		flags["output"] = outputDir
	}
	if apiURL != "" {
		flags["api-url"] = apiURL
	}
	switch {
	case logLevel != "":
		flags["log-level"] = logLevel
	case quiet:
		flags["log-level"] = "error"
	}
	if fs.Changed("asset-delay") {
		flags["asset-delay"] = assetDelay
	}
	if fs.Changed("max-retries") {
		flags["max-retries"] = maxRetries
	}

	toggles := map[string]bool{
		"avatar":    archiveAvatar,
		"repos":     archiveRepos,
		"comments":  archiveComments,
		"reactions": archiveReactions,
		"gists":     archiveGists,
		"releases":  archiveReleases,
	}
	for name, value := range toggles {
		if fs.Changed(name) {
			flags[name] = value
		}
	}
	return flags
}

func runArchive(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	username := github.SanitizeUsername(args[0])
	if !github.IsValidUsername(username) {
		return &exitError{code: ExitFailure, err: fmt.Errorf("invalid GitHub username %q", args[0])}
	}

	cfg, err := config.Load(configFile, archiveFlagOverrides(cmd))
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return &exitError{code: ExitFailure, err: fmt.Errorf("failed to initialize logger: %w", err)}
	}
	log := logger.GetLogger()
	log.WithFields(map[string]interface{}{
		"version":       version,
		"authenticated": cfg.GitHub.Token != "",
	}).Info("gharchiver starting")

	out := cmd.OutOrStdout()
	console := ui.NewConsole(out, !noColor)
	tracker := ui.NewTracker(console, verbose)

	if !quiet {
		if ui.IsTerminal(out) {
			console.PrintBanner()
		}
		console.Info("Target profile", username)
		console.Info("Output directory", filepath.Join(cfg.Output.BaseDirectory, github.SafeFilename(username)))
	}

	client, err := github.NewClient(cfg.GitHub, ratelimit.NewPerMinute(cfg.RateLimit.RequestsPerMinute), log)
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := archiver.New(client, cfg, log, tracker).Run(ctx, username)
	if result != nil {
		tracker.Summary(result.Username, result.Root, result.Report)
	}
	if err != nil {
		log.WithError(err).WithField("username", username).Error("Archive failed")
		return &exitError{code: ExitFailure, err: err}
	}

	if result.Status() == archive.StatusPartialSuccess && !allowPartial {
		return &exitError{code: ExitPartialSuccess}
	}
	return nil
}
