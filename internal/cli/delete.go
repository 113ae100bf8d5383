package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/recongrid/internal/bulk"
	"github.com/rshade/recongrid/internal/config"
	"github.com/rshade/recongrid/internal/grid"
	"github.com/rshade/recongrid/internal/grid/pagination"
	"github.com/rshade/recongrid/internal/logging"
	"github.com/rshade/recongrid/internal/tui"
)

// Delete errors.
var (
	ErrNoCriteria     = errors.New("refusing to delete every entity: pass --search or --filter, or --all")
	ErrNeedsConfirm   = errors.New("not a terminal: pass --yes to delete without confirmation")
	ErrNotDeletable   = errors.New("this provider does not support deleting")
	errDeleteDeclined = errors.New("delete cancelled")
)

type deleteOptions struct {
	search  string
	filters []string
	all     bool
	yes     bool
}

func newDeleteCmd() *cobra.Command {
	var opts deleteOptions

	cmd := &cobra.Command{
		Use:   "delete <kind>",
		Short: "Delete every entity matching a search and filters",
		Long: `Select every entity of one kind matching --search and --filter across all
pages, then delete the selection in batches.`,
		Example: `  recongrid delete endpoints --search staging --filter status=paused
  recongrid delete scans --filter status=failed --yes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runDelete(cmd, args, opts, os.Stdin)
			if errors.Is(err, errDeleteDeclined) {
				cmd.Println("Delete cancelled.")
				return nil
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.search, "search", "", "search text")
	flags.StringArrayVar(&opts.filters, "filter", nil, "filter as key=value (repeatable)")
	flags.BoolVar(&opts.all, "all", false, "allow deleting without search or filters")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string, opts deleteOptions, stdin io.Reader) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	cfg := config.GetGlobalConfig()

	kind, err := kindArg(args)
	if err != nil {
		return err
	}
	filters, err := ParseFilters(opts.filters)
	if err != nil {
		return err
	}
	if opts.search == "" && len(filters) == 0 && !opts.all {
		return ErrNoCriteria
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
	if src.deleter == nil {
		return ErrNotDeletable
	}

	g, err := newAssetGrid(ctx, src.provider, cfg, pagination.MaxPageSize, log)
	if err != nil {
		return err
	}
	g.SetCommittedSearch(opts.search)
	for k, v := range filters {
		g.SetFilter(k, v)
	}
	g.Mount()

	if err := selectAllPages(g); err != nil {
		return err
	}
	view := g.Snapshot()
	if len(view.SelectedIDs) == 0 {
		cmd.Printf("No %s match.\n", kind.Plural())
		return nil
	}

	if !opts.yes {
		if !tui.IsTTY() {
			return ErrNeedsConfirm
		}
		if !ConfirmDelete(cmd.OutOrStdout(), stdin, len(view.SelectedIDs), kind.Plural()).Accepted {
			return errDeleteDeclined
		}
	}

	runner, err := newRunner(cfg, bulk.WithProgress(func(p bulk.ProgressSnapshot) {
		log.Debug().Ctx(ctx).
			Int("processed", p.ProcessedItems).
			Int("total", p.TotalItems).
			Float64("percent", p.PercentComplete).
			Msg("delete progress")
	}))
	if err != nil {
		return err
	}

	ids, err := bulk.Execute(ctx, g, src.deleter, runner)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", kind.Plural(), err)
	}
	cmd.Printf("Deleted %d %s.\n", len(ids), kind.Plural())
	log.Info().Ctx(ctx).Str("kind", string(kind)).Int("deleted", len(ids)).Msg("bulk delete finished")
	return nil
}

// selectAllPages walks every page of g, selecting each one.
func selectAllPages[T any](g *grid.Grid[T]) error {
	for {
		view := g.Snapshot()
		if view.Status == grid.StatusError {
			return fmt.Errorf("fetching page %d: %w", view.Pagination.PageIndex+1, view.Err)
		}
		if !view.PageAllSelected {
			g.ToggleAllOnPage()
		}
		if !view.HasNext() {
			return nil
		}
		if err := g.NextPage(); err != nil {
			return err
		}
	}
}
