package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/recongrid/internal/config"
	"github.com/rshade/recongrid/internal/grid/datasource"
	"github.com/rshade/recongrid/internal/logging"
	"github.com/rshade/recongrid/internal/tui"
)

// ErrNotInteractive is returned when browse runs without a terminal.
var ErrNotInteractive = errors.New("browse needs an interactive terminal; use 'recongrid list' instead")

func newBrowseCmd() *cobra.Command {
	var (
		mode     string
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "browse <kind>",
		Short: "Browse entities in an interactive table",
		Long: `Browse entities of one kind in a paginated, searchable table.

In remote mode every page, sort, search and filter change is answered by the
provider. In local mode the whole set is fetched once and handled in memory.`,
		Example: `  recongrid browse targets
  recongrid browse scheduled-jobs --mode local --page-size 50`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !tui.IsTTY() {
				return ErrNotInteractive
			}
			return runBrowse(cmd, args, mode, pageSize)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "data source mode: local or remote (default from config)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "initial page size (default from config)")

	return cmd
}

func runBrowse(cmd *cobra.Command, args []string, mode string, pageSize int) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	cfg := config.GetGlobalConfig()

	kind, err := kindArg(args)
	if err != nil {
		return err
	}
	if mode == "" {
		mode = cfg.Grid.Mode
	}
	m, err := datasource.ParseMode(mode)
	if err != nil {
		return err
	}

	src, err := openSource(ctx, cfg, kind, *log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("closing provider")
		}
	}()

	runner, err := newRunner(cfg)
	if err != nil {
		return err
	}

	sizes := cfg.Grid.PageSizes
	if pageSize == 0 {
		pageSize = cfg.Grid.DefaultPageSize
	} else {
		sizes = append(sizes[:len(sizes):len(sizes)], pageSize)
	}

	model, err := tui.NewBrowseModel(ctx, tui.BrowseConfig{
		Kind:            kind,
		Provider:        src.provider,
		Deleter:         src.deleter,
		Runner:          runner,
		Mode:            m,
		PageSizes:       sizes,
		DefaultPageSize: pageSize,
		Logger:          log,
	})
	if err != nil {
		return err
	}

	log.Debug().Ctx(ctx).Str("kind", string(kind)).Str("mode", m.String()).Msg("starting browser")
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}
