package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"gharchiver/pkg/config"
	"gharchiver/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage gharchiver configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (GHARCHIVER_*, GITHUB_TOKEN)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default values",
	Long: `Write a configuration file holding every option at its default value.

The file is created as '.gharchiver.yaml' in the current directory
unless a different path is given with --config.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging every source.

The API token is masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Validate the configuration for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value ranges and known social endpoints
  - Output directory accessibility`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	console := ui.NewConsole(cmd.OutOrStdout(), !noColor)

	configPath := configFile
	if configPath == "" {
		configPath = ".gharchiver.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return &exitError{code: ExitFailure, err: fmt.Errorf("configuration file already exists: %s", configPath)}
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		return &exitError{code: ExitFailure, err: err}
	}

	console.Success("Configuration file created: " + configPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "1. Set GITHUB_TOKEN or github.token for a higher API rate limit")
	fmt.Fprintln(cmd.OutOrStdout(), "2. Run 'gharchiver config validate' to check the configuration")
	fmt.Fprintln(cmd.OutOrStdout(), "3. Start archiving with 'gharchiver <username>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	console := ui.NewConsole(cmd.OutOrStdout(), !noColor)

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return &exitError{code: ExitFailure, err: err}
	}

	data, err := yaml.Marshal(cfg.Masked())
	if err != nil {
		return &exitError{code: ExitFailure, err: fmt.Errorf("failed to format configuration: %w", err)}
	}

	console.Highlight("Current Configuration")
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	out := cmd.OutOrStdout()
	console := ui.NewConsole(out, !noColor)

	if configFile != "" {
		console.Info("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		console.Error("Configuration has errors")
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Fprintf(out, "  - %s\n", line)
		}
		return &exitError{code: ExitFailure}
	}

	if cfg.GitHub.Token == "" {
		console.Warning("No API token configured; unauthenticated requests are limited to 60 per hour")
	}
	if err := os.MkdirAll(cfg.Output.BaseDirectory, 0755); err != nil {
		console.Error("Cannot create output directory", err)
		return &exitError{code: ExitFailure}
	}

	console.Success("Configuration is valid")
	fmt.Fprintln(out, "\nConfiguration summary:")
	fmt.Fprintf(out, "  API: %s\n", cfg.GitHub.APIURL)
	fmt.Fprintf(out, "  Output directory: %s\n", cfg.Output.BaseDirectory)
	fmt.Fprintf(out, "  Asset delay: %s\n", cfg.RateLimit.AssetDelay)
	fmt.Fprintf(out, "  Download attempts: %d\n", cfg.Retry.MaxAttempts)
	fmt.Fprintf(out, "  Social endpoints: %s\n", strings.Join(cfg.Archive.SocialEndpoints, ", "))
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
