package recon

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/rshade/recongrid/internal/grid/columns"
	"github.com/rshade/recongrid/internal/grid/datasource"
	"github.com/rshade/recongrid/internal/grid/sorting"
)

// Column ids. They double as sort fields and API ordering names.
const (
	ColumnName         = "name"
	ColumnOrganization = "organization"
	ColumnStatus       = "status"
	ColumnSeverity     = "severity"
	ColumnUpdated      = "updated_at"
	ColumnID           = "id"
)

// Filter keys.
const (
	FilterStatus       = "status"
	FilterSeverity     = "severity"
	FilterOrganization = "organization"
)

// Columns returns the default column layout for assets.
func Columns() []columns.Def {
	return []columns.Def{
		{ID: ColumnName, Title: "Name", Width: 32, Fixed: true, Sortable: true},
		{ID: ColumnOrganization, Title: "Organization", Width: 20, Sortable: true},
		{ID: ColumnStatus, Title: "Status", Width: 10, Sortable: true},
		{ID: ColumnSeverity, Title: "Severity", Width: 10, Sortable: true},
		{ID: ColumnUpdated, Title: "Updated", Width: 20, Sortable: true},
		{ID: ColumnID, Title: "ID", Width: 26, Hidden: true},
	}
}

// SortableColumns returns the ids of sortable columns.
func SortableColumns() []string {
	var ids []string
	for _, c := range Columns() {
		if c.Sortable {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// fold case-folds s. Casers carry state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// MatchAsset reports whether text occurs in the asset's name, organization
// or status, ignoring case.
func MatchAsset(a Asset, text string) bool {
	needle := fold(text)
	for _, field := range []string{a.Name, a.Organization, a.Status} {
		if strings.Contains(fold(field), needle) {
			return true
		}
	}
	return false
}

// Filters returns the equality filters assets support.
func Filters() map[string]datasource.FilterFunc[Asset] {
	return map[string]datasource.FilterFunc[Asset]{
		FilterStatus:       func(a Asset, v string) bool { return strings.EqualFold(a.Status, v) },
		FilterSeverity:     func(a Asset, v string) bool { return strings.EqualFold(a.Severity, v) },
		FilterOrganization: func(a Asset, v string) bool { return strings.EqualFold(a.Organization, v) },
	}
}

// Comparators returns ascending comparators for every sortable column.
func Comparators() sorting.Comparators[Asset] {
	return sorting.Comparators[Asset]{
		ColumnName:         func(a, b Asset) int { return sorting.CompareStrings(a.Name, b.Name) },
		ColumnOrganization: func(a, b Asset) int { return sorting.CompareStrings(a.Organization, b.Organization) },
		ColumnStatus:       func(a, b Asset) int { return sorting.CompareStrings(a.Status, b.Status) },
		ColumnSeverity:     func(a, b Asset) int { return SeverityRank(a.Severity) - SeverityRank(b.Severity) },
		ColumnUpdated:      func(a, b Asset) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	}
}

// CellValue renders one cell.
func CellValue(a Asset, column string) string {
	switch column {
	case ColumnName:
		return a.Name
	case ColumnOrganization:
		return a.Organization
	case ColumnStatus:
		return a.Status
	case ColumnSeverity:
		return a.Severity
	case ColumnUpdated:
		if a.UpdatedAt.IsZero() {
			return ""
		}
		return a.UpdatedAt.UTC().Format(time.DateTime)
	case ColumnID:
		return a.ID
	default:
		return ""
	}
}
