package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/recongrid/internal/config"
	"github.com/rshade/recongrid/internal/provider"
	"github.com/rshade/recongrid/internal/provider/cache"
	"github.com/rshade/recongrid/internal/provider/httpapi"
	"github.com/rshade/recongrid/internal/recon"
	"github.com/rshade/recongrid/internal/store"
)

// memorySeed and memoryCount size the generated in-memory catalog.
const (
	memorySeed  = 42
	memoryCount = 250
)

// source is an opened data provider for one entity kind.
type source struct {
	provider provider.Provider[recon.Asset]
	deleter  provider.Deleter
	close    func() error
}

// Close releases the source.
func (s *source) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// openSource opens the configured provider for kind.
func openSource(ctx context.Context, cfg *config.Config, kind recon.Kind, log zerolog.Logger) (*source, error) {
	switch cfg.Provider.Kind {
	case config.ProviderSQLite:
		db, err := store.New(ctx, cfg.Provider.DSN, log)
		if err != nil {
			return nil, fmt.Errorf("opening catalog: %w", err)
		}
		catalog, err := db.Catalog(kind)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return &source{provider: catalog, deleter: catalog, close: db.Close}, nil

	case config.ProviderHTTP:
		client, err := httpapi.New[recon.Asset](httpapi.Config{
			BaseURL:       cfg.Provider.BaseURL,
			Kind:          kind.Plural(),
			Token:         cfg.Provider.Token,
			Timeout:       time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
			MinAPIVersion: cfg.Provider.MinAPIVersion,
			Logger:        log,
		})
		if err != nil {
			return nil, fmt.Errorf("creating API client: %w", err)
		}
		if !cfg.Cache.Enabled {
			return &source{provider: client, deleter: client}, nil
		}
		fs, err := cache.NewFileStore(cfg.Cache.Directory, true, cfg.Cache.TTLSeconds)
		if err != nil {
			return nil, fmt.Errorf("opening cache: %w", err)
		}
		cached := cache.NewProvider[recon.Asset](client, fs, kind.Plural(), log)
		return &source{provider: cached, deleter: cached}, nil

	case config.ProviderMemory:
		gen := recon.NewGenerator(memorySeed, time.Now().UTC())
		mem := provider.NewMemoryProvider(gen.Generate(kind, memoryCount), provider.MemoryConfig[recon.Asset]{
			ID:          recon.AssetID,
			Match:       recon.MatchAsset,
			Filters:     recon.Filters(),
			Comparators: recon.Comparators(),
		})
		return &source{provider: mem, deleter: mem}, nil

	default:
		return nil, fmt.Errorf("%w: unknown provider %q", config.ErrInvalidConfig, cfg.Provider.Kind)
	}
}

// errNeedsKind is returned by commands invoked without an entity kind.
var errNeedsKind = errors.New("an entity kind is required (e.g., targets, subdomains, endpoints)")

// kindArg parses the first positional argument as an entity kind.
func kindArg(args []string) (recon.Kind, error) {
	if len(args) == 0 {
		return "", errNeedsKind
	}
	return recon.ParseKind(args[0])
}
