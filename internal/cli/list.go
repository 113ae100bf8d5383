package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/recongrid/internal/config"
	"github.com/rshade/recongrid/internal/grid"
	"github.com/rshade/recongrid/internal/grid/pagination"
	"github.com/rshade/recongrid/internal/grid/sorting"
	"github.com/rshade/recongrid/internal/logging"
	"github.com/rshade/recongrid/internal/recon"
)

// tabPadding is the column padding of table output.
const tabPadding = 2

// listOutput is the json and yaml form of one page.
type listOutput struct {
	Results    []recon.Asset       `json:"results"    yaml:"results"`
	Pagination pagination.Metadata `json:"pagination" yaml:"pagination"`
	Sort       string              `json:"ordering,omitempty" yaml:"ordering,omitempty"`
}

type listOptions struct {
	params  pagination.Params
	sort    string
	filters []string
	output  string
}

func newListCmd() *cobra.Command {
	opts := listOptions{params: *pagination.NewParams()}

	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "Print one page of entities",
		Long: `Print one page of entities of one kind.

Searching, filtering, sorting and paging are performed by the provider, the
same way the interactive browser does in remote mode.`,
		Example: `  recongrid list targets
  recongrid list subdomains --search api --filter status=active --sort severity:desc,name
  recongrid list scans --page 3 --page-size 50 --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.params.Page, "page", pagination.DefaultPage, "page number (1-based)")
	flags.IntVar(&opts.params.PageSize, "page-size", pagination.DefaultPageSize, "rows per page")
	flags.StringVar(&opts.params.Search, "search", "", "search text")
	flags.StringVar(&opts.sort, "sort", "", "sort keys, e.g. severity:desc,name")
	flags.StringArrayVar(&opts.filters, "filter", nil, "filter as key=value (repeatable)")
	flags.StringVarP(&opts.output, "output", "o", "", "output format: table, json or yaml (default from config)")

	return cmd
}

func runList(cmd *cobra.Command, args []string, opts listOptions) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	cfg := config.GetGlobalConfig()

	kind, err := kindArg(args)
	if err != nil {
		return err
	}
	if err := opts.params.Validate(); err != nil {
		return err
	}
	sortState, err := parseSortFlag(opts.sort)
	if err != nil {
		return err
	}
	filters, err := ParseFilters(opts.filters)
	if err != nil {
		return err
	}
	format := opts.output
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	switch format {
	case config.OutputTable, config.OutputJSON, config.OutputYAML:
	default:
		return fmt.Errorf("unsupported output format %q (must be table, json or yaml)", format)
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

	g, err := newAssetGrid(ctx, src.provider, cfg, opts.params.PageSize, log)
	if err != nil {
		return err
	}

	// The grid is idle until Mount, so none of these fetch.
	g.SetCommittedSearch(opts.params.Search)
	for k, v := range filters {
		g.SetFilter(k, v)
	}
	if err := g.SetSort(sortState); err != nil {
		return err
	}
	if err := g.SetPageIndex(opts.params.State().PageIndex); err != nil {
		return err
	}
	g.Mount()

	view := g.Snapshot()
	if view.Status == grid.StatusError {
		return fmt.Errorf("fetching %s: %w", kind.Plural(), view.Err)
	}

	log.Debug().Ctx(ctx).
		Str("kind", string(kind)).
		Int("rows", len(view.Rows)).
		Int("total", view.TotalCount).
		Msg("listed page")

	switch format {
	case config.OutputJSON:
		return renderListJSON(cmd.OutOrStdout(), view)
	case config.OutputYAML:
		return renderListYAML(cmd.OutOrStdout(), view)
	default:
		return renderListTable(cmd.OutOrStdout(), view)
	}
}

// parseSortFlag accepts "field:order" keys ("severity:desc,name") or the
// API's ordering form ("-severity,name").
func parseSortFlag(s string) (sorting.State, error) {
	if strings.Contains(s, ":") {
		return sorting.ParseExpression(s)
	}
	return sorting.ParseOrdering(s), nil
}

func toListOutput(view grid.View[recon.Asset]) listOutput {
	rows := view.Rows
	if rows == nil {
		rows = []recon.Asset{}
	}
	return listOutput{
		Results:    rows,
		Pagination: pagination.NewMetadata(view.Pagination, view.TotalCount),
		Sort:       sorting.Format(view.Sort),
	}
}

func renderListJSON(w io.Writer, view grid.View[recon.Asset]) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(toListOutput(view))
}

func renderListYAML(w io.Writer, view grid.View[recon.Asset]) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(toListOutput(view))
}

func renderListTable(w io.Writer, view grid.View[recon.Asset]) error {
	if len(view.Rows) == 0 {
		fmt.Fprintln(w, "No results.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	titles := make([]string, 0, len(view.Columns))
	dividers := make([]string, 0, len(view.Columns))
	for _, c := range view.Columns {
		titles = append(titles, c.Title)
		dividers = append(dividers, strings.Repeat("-", len(c.Title)))
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))
	fmt.Fprintln(tw, strings.Join(dividers, "\t"))

	for _, a := range view.Rows {
		cells := make([]string, 0, len(view.Columns))
		for _, c := range view.Columns {
			cells = append(cells, recon.CellValue(a, c.ID))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nPage %d of %d (%d total)\n",
		view.Pagination.PageIndex+1, max(view.PageCount, 1), view.TotalCount)
	return nil
}
