package cli

import (
	"context"
	"slices"

	"github.com/rs/zerolog"

	"github.com/rshade/recongrid/internal/bulk"
	"github.com/rshade/recongrid/internal/config"
	"github.com/rshade/recongrid/internal/grid"
	"github.com/rshade/recongrid/internal/grid/datasource"
	"github.com/rshade/recongrid/internal/provider"
	"github.com/rshade/recongrid/internal/recon"
)

// newAssetGrid creates a remote-mode grid over p whose fetches run inline.
// pageSize is added to the presets when it is not one of them.
func newAssetGrid(
	ctx context.Context,
	p provider.Provider[recon.Asset],
	cfg *config.Config,
	pageSize int,
	log *zerolog.Logger,
) (*grid.Grid[recon.Asset], error) {
	sizes := slices.Clone(cfg.Grid.PageSizes)
	if pageSize > 0 && !slices.Contains(sizes, pageSize) {
		sizes = append(sizes, pageSize)
	}
	if pageSize <= 0 {
		pageSize = cfg.Grid.DefaultPageSize
	}

	return grid.NewSync(ctx, p, grid.Options[recon.Asset]{
		ID:              recon.AssetID,
		Mode:            datasource.ModeRemote,
		PageSizes:       sizes,
		DefaultPageSize: pageSize,
		Match:           recon.MatchAsset,
		Filters:         recon.Filters(),
		Comparators:     recon.Comparators(),
		SortableColumns: recon.SortableColumns(),
		Columns:         recon.Columns(),
		Logger:          log,
	})
}

// newRunner creates the bulk runner configured by cfg.
func newRunner(cfg *config.Config, opts ...bulk.Option) (*bulk.Runner, error) {
	opts = append([]bulk.Option{bulk.WithConcurrency(cfg.Bulk.Concurrency)}, opts...)
	return bulk.NewRunner(cfg.Bulk.BatchSize, opts...)
}
