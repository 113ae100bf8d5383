package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rshade/recongrid/internal/grid/sorting"
	"github.com/rshade/recongrid/internal/provider"
)

// keyParams is the normalized form of a query that gets hashed. Map keys are
// marshaled in sorted order by encoding/json, so filter order never matters.
type keyParams struct {
	Namespace string            `json:"ns"`
	PageIndex int               `json:"page_index"`
	PageSize  int               `json:"page_size"`
	Ordering  string            `json:"ordering,omitempty"`
	Search    string            `json:"search,omitempty"`
	Filters   map[string]string `json:"filters,omitempty"`
	All       bool              `json:"all,omitempty"`
}

// Key returns the cache key for q within namespace (typically the entity
// kind). Search text is kept verbatim: providers decide how to match it.
func Key(namespace string, q provider.Query) (string, error) {
	params := keyParams{
		Namespace: strings.ToLower(strings.TrimSpace(namespace)),
		PageIndex: q.PageIndex,
		PageSize:  q.PageSize,
		Ordering:  sorting.Format(q.Sort),
		Search:    q.Search,
		Filters:   q.Filters,
		All:       q.All,
	}
	if len(params.Filters) == 0 {
		params.Filters = nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encoding cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
