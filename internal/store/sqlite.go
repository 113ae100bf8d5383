// Package store provides the SQLite asset catalog, a provider for remote-mode
// grids.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/rshade/recongrid/internal/grid/pagination"
	"github.com/rshade/recongrid/internal/provider"
	"github.com/rshade/recongrid/internal/recon"
)

// ErrNoKind is returned when a catalog is opened without an entity kind.
var ErrNoKind = errors.New("store: entity kind is required")

// sortColumns maps sort fields to SQL expressions. Anything else is ignored.
//
//nolint:gochecknoglobals // Read-only whitelist.
var sortColumns = map[string]string{
	recon.ColumnName:         "name COLLATE NOCASE",
	recon.ColumnOrganization: "organization COLLATE NOCASE",
	recon.ColumnStatus:       "status",
	recon.ColumnSeverity: `CASE severity
		WHEN 'info' THEN 0 WHEN 'low' THEN 1 WHEN 'medium' THEN 2
		WHEN 'high' THEN 3 WHEN 'critical' THEN 4 ELSE -1 END`,
	recon.ColumnUpdated: "updated_at",
}

// filterColumns lists the columns usable as equality filters.
//
//nolint:gochecknoglobals // Read-only whitelist.
var filterColumns = map[string]string{
	recon.FilterStatus:       "status",
	recon.FilterSeverity:     "severity",
	recon.FilterOrganization: "organization",
}

// SQLite is the asset catalog.
type SQLite struct {
	db  *sql.DB
	log zerolog.Logger
}

// New opens the database at path and runs migrations.
func New(ctx context.Context, path string, log zerolog.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows one writer; concurrent bulk batches queue on the pool.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db, log: log.With().Str("component", "store").Logger()}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Insert adds or replaces assets in one transaction.
func (s *SQLite) Insert(ctx context.Context, assets ...recon.Asset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO assets (id, kind, name, organization, status, severity, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range assets {
		if _, err := stmt.ExecContext(ctx,
			a.ID,
			string(a.Kind),
			a.Name,
			a.Organization,
			a.Status,
			a.Severity,
			a.UpdatedAt.UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("inserting asset %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing insert: %w", err)
	}
	return nil
}

// Seed inserts n generated assets of each of kinds, or of every kind when
// none are given. It returns the number of assets inserted.
func (s *SQLite) Seed(ctx context.Context, gen *recon.Generator, n int, kinds ...recon.Kind) (int, error) {
	if len(kinds) == 0 {
		kinds = recon.Kinds()
	}
	total := 0
	for _, kind := range kinds {
		if err := s.Insert(ctx, gen.Generate(kind, n)...); err != nil {
			return total, fmt.Errorf("seeding %s: %w", kind, err)
		}
		total += n
	}
	s.log.Info().Int("assets", total).Msg("seeded catalog")
	return total, nil
}

// Delete removes assets by id.
func (s *SQLite) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `DELETE FROM assets WHERE id IN (` + placeholders(len(ids)) + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting assets: %w", err)
	}
	n, _ := res.RowsAffected()
	s.log.Debug().Int64("deleted", n).Int("requested", len(ids)).Msg("deleted assets")
	return nil
}

// Catalog returns a provider over assets of one kind.
func (s *SQLite) Catalog(kind recon.Kind) (*Catalog, error) {
	if kind == "" {
		return nil, ErrNoKind
	}
	return &Catalog{store: s, kind: kind}, nil
}

// Catalog serves one kind of asset to a grid.
type Catalog struct {
	store *SQLite
	kind  recon.Kind
}

// Delete removes assets by id.
func (c *Catalog) Delete(ctx context.Context, ids []string) error {
	return provider.AsNetworkError("delete", c.store.Delete(ctx, ids))
}

// FetchPage runs q against the catalog.
func (c *Catalog) FetchPage(ctx context.Context, q provider.Query) (provider.Page[recon.Asset], error) {
	page, err := c.store.fetch(ctx, c.kind, q)
	if err != nil {
		return page, provider.AsNetworkError("fetch", err)
	}
	return page, nil
}

func (s *SQLite) fetch(ctx context.Context, kind recon.Kind, q provider.Query) (provider.Page[recon.Asset], error) {
	var page provider.Page[recon.Asset]

	where, args := whereClause(kind, q)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets`+where, args...).Scan(&total); err != nil {
		return page, fmt.Errorf("counting assets: %w", err)
	}

	query := `SELECT id, kind, name, organization, status, severity, updated_at FROM assets` +
		where + orderBy(q)
	state := q.State()
	if q.All {
		state = pagination.State{}
	} else {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.PageSize, state.Offset())
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return page, fmt.Errorf("querying assets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a       recon.Asset
			kindCol string
			updated string
		)
		if err := rows.Scan(&a.ID, &kindCol, &a.Name, &a.Organization, &a.Status, &a.Severity, &updated); err != nil {
			return page, fmt.Errorf("scanning asset: %w", err)
		}
		a.Kind = recon.Kind(kindCol)
		a.UpdatedAt, err = time.Parse(time.RFC3339, updated)
		if err != nil {
			return page, fmt.Errorf("parsing updated_at of %s: %w", a.ID, err)
		}
		page.Rows = append(page.Rows, a)
	}
	if err := rows.Err(); err != nil {
		return page, fmt.Errorf("iterating assets: %w", err)
	}

	page.Meta = pagination.NewMetadata(state, total)
	s.log.Debug().
		Str("kind", string(kind)).
		Int("page_index", q.PageIndex).
		Int("rows", len(page.Rows)).
		Int("total", total).
		Msg("fetched assets")
	return page, nil
}

func whereClause(kind recon.Kind, q provider.Query) (string, []any) {
	conds := []string{"kind = ?"}
	args := []any{string(kind)}

	if q.Search != "" {
		like := "%" + escapeLike(q.Search) + "%"
		conds = append(conds, `(name LIKE ? ESCAPE '\' OR organization LIKE ? ESCAPE '\' OR status LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}

	for _, key := range slices.Sorted(maps.Keys(q.Filters)) {
		col, ok := filterColumns[key]
		value := q.Filters[key]
		if !ok || value == "" {
			continue
		}
		conds = append(conds, col+" = ? COLLATE NOCASE")
		args = append(args, value)
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderBy(q provider.Query) string {
	var parts []string
	for _, k := range q.Sort {
		expr, ok := sortColumns[k.ColumnID]
		if !ok {
			continue
		}
		if k.Desc {
			expr += " DESC"
		}
		parts = append(parts, expr)
	}
	// id breaks ties so pages never overlap.
	parts = append(parts, "id")
	return " ORDER BY " + strings.Join(parts, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
