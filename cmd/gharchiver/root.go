package main

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
	verbose    bool
)

// exitError carries a process exit code out of a command. A nil err means
// the command already reported everything it had to say.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gharchiver [flags] <username>",
	Short: "Archive a GitHub user's public footprint to disk",
	Long: `gharchiver downloads everything public about a GitHub user into a
directory named after them: profile, avatar, social graph, gists,
repositories, issue/commit/PR comments with their reactions, and
release payloads.

Re-running against the same directory is safe. JSON snapshots are
overwritten and avatars are de-duplicated by content.

Exit codes:
  0  every resource was archived
  1  usage, configuration, or profile/repository list failure
  2  some resources failed (0 with --allow-partial)`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	RunE:          runArchive,
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", exitErr.err)
		}
		return exitErr.code
	}

	fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	return ExitFailure
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.gharchiver.yaml or ~/.config/gharchiver/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only print failures and the summary")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print every archived resource")

	addArchiveFlags(rootCmd)

	rootCmd.SetVersionTemplate(`gharchiver {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
