// Package recon holds the reconnaissance catalog's entity model and the grid
// wiring for it: columns, search matching, filters and comparators.
package recon

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Kind is an entity type listed by the admin front end.
type Kind string

// Kinds.
const (
	KindOrganization Kind = "organization"
	KindTarget       Kind = "target"
	KindSubdomain    Kind = "subdomain"
	KindEndpoint     Kind = "endpoint"
	KindScan         Kind = "scan"
	KindScheduledJob Kind = "scheduled_job"
	KindTool         Kind = "tool"
	KindTemplateRepo Kind = "template_repo"
)

// ErrUnknownKind is returned by ParseKind.
var ErrUnknownKind = errors.New("unknown entity kind")

// Kinds returns every kind in display order.
func Kinds() []Kind {
	return []Kind{
		KindOrganization, KindTarget, KindSubdomain, KindEndpoint,
		KindScan, KindScheduledJob, KindTool, KindTemplateRepo,
	}
}

// ParseKind parses a kind name. Plural forms and dashes are accepted, so
// "targets" and "scheduled-jobs" both work.
func ParseKind(s string) (Kind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, k := range Kinds() {
		if norm == string(k) || norm == k.Plural() {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Plural is the kind's collection name, used in API paths.
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Title is the kind's human readable collection name.
func (k Kind) Title() string {
	words := strings.Split(k.Plural(), "_")
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Status values.
const (
	StatusActive   = "active"
	StatusPaused   = "paused"
	StatusFailed   = "failed"
	StatusArchived = "archived"
)

// Severity levels in ascending order.
const (
	SeverityInfo     = "info"
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

//nolint:gochecknoglobals // Read-only ordering table.
var severityOrder = []string{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// SeverityRank orders severities; unknown values rank below info.
func SeverityRank(s string) int {
	return slices.Index(severityOrder, strings.ToLower(s))
}

// Asset is one row of the catalog.
type Asset struct {
	ID           string    `json:"id"           yaml:"id"`
	Kind         Kind      `json:"kind"         yaml:"kind"`
	Name         string    `json:"name"         yaml:"name"`
	Organization string    `json:"organization" yaml:"organization"`
	Status       string    `json:"status"       yaml:"status"`
	Severity     string    `json:"severity"     yaml:"severity"`
	UpdatedAt    time.Time `json:"updated_at"   yaml:"updated_at"`
}

// AssetID identifies an asset for selection.
func AssetID(a Asset) string {
	return a.ID
}
