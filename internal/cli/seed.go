package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/recongrid/internal/config"
	"github.com/rshade/recongrid/internal/logging"
	"github.com/rshade/recongrid/internal/recon"
	"github.com/rshade/recongrid/internal/store"
)

// ErrSeedNeedsSQLite is returned when seeding a provider other than sqlite.
var ErrSeedNeedsSQLite = errors.New("seed only writes to the sqlite provider")

const defaultSeedCount = 100

func newSeedCmd() *cobra.Command {
	var (
		count int
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:   "seed [kind...]",
		Short: "Fill the local catalog with generated entities",
		Long: `Generate deterministic demo entities and insert them into the SQLite catalog.
Without arguments every kind is seeded.`,
		Example: `  recongrid seed
  recongrid seed targets subdomains --count 500 --seed 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, count, seed)
		},
	}

	cmd.Flags().IntVar(&count, "count", defaultSeedCount, "entities to generate per kind")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")

	return cmd
}

func runSeed(cmd *cobra.Command, args []string, count int, seed uint64) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	cfg := config.GetGlobalConfig()

	if cfg.Provider.Kind != config.ProviderSQLite {
		return fmt.Errorf("%w (configured provider is %q)", ErrSeedNeedsSQLite, cfg.Provider.Kind)
	}
	if count < 1 {
		return fmt.Errorf("count must be >= 1: got %d", count)
	}

	kinds := recon.Kinds()
	if len(args) > 0 {
		kinds = kinds[:0:0]
		for _, arg := range args {
			k, err := recon.ParseKind(arg)
			if err != nil {
				return err
			}
			kinds = append(kinds, k)
		}
	}

	db, err := store.New(ctx, cfg.Provider.DSN, *log)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer db.Close()

	gen := recon.NewGenerator(seed, time.Now().UTC().Truncate(time.Second))
	total, err := db.Seed(ctx, gen, count, kinds...)
	if err != nil {
		return err
	}
	for _, k := range kinds {
		cmd.Printf("Seeded %d %s\n", count, k.Plural())
	}
	log.Info().Ctx(ctx).Int("assets", total).Str("dsn", cfg.Provider.DSN).Msg("catalog seeded")
	return nil
}
