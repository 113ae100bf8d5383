package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/recongrid/internal/config"
	"github.com/rshade/recongrid/internal/logging"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the recongrid CLI.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "recongrid",
		Short:         "Browse and manage reconnaissance assets",
		Long:          "recongrid: a paginated, searchable, selectable browser for reconnaissance catalog entities",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			config.SetGlobalConfig(cfg)

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default ~/.recongrid/config.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("provider", "", "data provider: sqlite, http or memory")
	flags.String("dsn", "", "SQLite catalog path")
	flags.String("api-url", "", "base URL of the reconnaissance API")

	cmd.AddCommand(
		newBrowseCmd(),
		newListCmd(),
		newSeedCmd(),
		newDeleteCmd(),
		newVersionCmd(ver),
	)

	return cmd
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	if !explicit {
		def, err := config.DefaultConfigPath()
		if err == nil {
			path = def
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	overrides := map[string]*string{
		"provider": &cfg.Provider.Kind,
		"dsn":      &cfg.Provider.DSN,
		"api-url":  &cfg.Provider.BaseURL,
	}
	changed := false
	for name, dst := range overrides {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
			changed = true
		}
	}
	if changed {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

const rootCmdExample = `  # Seed the local catalog with demo data
  recongrid seed --count 200

  # Browse targets interactively
  recongrid browse targets

  # Browse subdomains, filtering and sorting in memory
  recongrid browse subdomains --mode local

  # Print the second page of scans as JSON
  recongrid list scans --page 2 --sort updated_at:desc --output json

  # Delete every paused endpoint matching "staging"
  recongrid delete endpoints --search staging --filter status=paused --yes`
