// Package httpapi is a provider backed by the reconnaissance platform's REST
// API.
//
// List endpoints live at {base}/api/{kind}/ and take page, page_size,
// ordering and search query parameters plus one parameter per filter. They
// answer with {"results": [...], "pagination": {...}}.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/rshade/recongrid/internal/grid/pagination"
	"github.com/rshade/recongrid/internal/grid/sorting"
	"github.com/rshade/recongrid/internal/provider"
)

// Defaults.
const (
	DefaultTimeout = 30 * time.Second
	// APIVersionHeader carries the server's API version.
	APIVersionHeader = "X-API-Version"
	// allPageSize is the page size used when walking every page.
	allPageSize = pagination.MaxPageSize
	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 4096
)

// Client errors.
var (
	ErrIncompatibleAPI = errors.New("incompatible API version")
	ErrNoBaseURL       = errors.New("httpapi: base URL is required")
	ErrNoKind          = errors.New("httpapi: entity kind is required")
)

// Config configures a Client.
type Config struct {
	BaseURL string
	// Kind is the entity path segment, e.g. "targets".
	Kind  string
	Token string
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// MinAPIVersion rejects servers reporting an older version.
	MinAPIVersion string
	HTTPClient    *http.Client
	Logger        zerolog.Logger
}

// Client fetches and deletes rows of one entity kind.
type Client[T any] struct {
	base       *url.URL
	kind       string
	token      string
	minVersion *semver.Version
	http       *http.Client
	log        zerolog.Logger
}

// New creates a client.
func New[T any](cfg Config) (*Client[T], error) {
	if cfg.BaseURL == "" {
		return nil, ErrNoBaseURL
	}
	if cfg.Kind == "" {
		return nil, ErrNoKind
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	c := &Client[T]{
		base:  base,
		kind:  strings.Trim(cfg.Kind, "/"),
		token: cfg.Token,
		http:  cfg.HTTPClient,
		log:   cfg.Logger.With().Str("component", "httpapi").Str("kind", cfg.Kind).Logger(),
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if cfg.MinAPIVersion != "" {
		c.minVersion, err = semver.NewVersion(cfg.MinAPIVersion)
		if err != nil {
			return nil, fmt.Errorf("parsing minimum API version %q: %w", cfg.MinAPIVersion, err)
		}
	}
	return c, nil
}

func (c *Client[T]) endpoint(suffix string) *url.URL {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/api/" + c.kind + "/" + suffix
	return &u
}

// ListURL returns the list URL for q.
func (c *Client[T]) ListURL(q provider.Query) string {
	u := c.endpoint("")
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.PageIndex+1))
	v.Set("page_size", strconv.Itoa(q.PageSize))
	if ordering := sorting.Format(q.Sort); ordering != "" {
		v.Set("ordering", ordering)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	for key, value := range q.Filters {
		if value != "" {
			v.Set(key, value)
		}
	}
	u.RawQuery = v.Encode()
	return u.String()
}

// FetchPage fetches one page, or every page when q.All is set.
func (c *Client[T]) FetchPage(ctx context.Context, q provider.Query) (provider.Page[T], error) {
	if q.All {
		return c.fetchAll(ctx, q)
	}
	return c.fetch(ctx, q)
}

func (c *Client[T]) fetch(ctx context.Context, q provider.Query) (provider.Page[T], error) {
	target := c.ListURL(q)
	var page provider.Page[T]

	resp, err := c.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return page, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return page, &provider.NetworkError{Op: "fetch", URL: target, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("decoding response: %w", err)}
	}
	if page.Meta.PageSize == 0 {
		page.Meta.PageSize = q.PageSize
	}
	c.log.Debug().Str("url", target).Int("rows", len(page.Rows)).Int("total", page.Meta.Total).Msg("fetched page")
	return page, nil
}

func (c *Client[T]) fetchAll(ctx context.Context, q provider.Query) (provider.Page[T], error) {
	q.All = false
	q.PageSize = allPageSize
	var all []T
	for q.PageIndex = 0; ; q.PageIndex++ {
		page, err := c.fetch(ctx, q)
		if err != nil {
			return provider.Page[T]{}, err
		}
		all = append(all, page.Rows...)
		if len(page.Rows) == 0 || q.PageIndex+1 >= page.Meta.PageCount() {
			break
		}
	}
	return provider.Page[T]{
		Rows: all,
		Meta: pagination.NewMetadata(pagination.State{}, len(all)),
	}, nil
}

// Delete removes rows by id through the kind's bulk delete endpoint.
func (c *Client[T]) Delete(ctx context.Context, ids []string) error {
	body, err := json.Marshal(struct {
		IDs []string `json:"ids"`
	}{IDs: ids})
	if err != nil {
		return &provider.NetworkError{Op: "delete", Err: err}
	}
	resp, err := c.do(ctx, http.MethodPost, c.endpoint("bulk_delete/").String(), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	c.log.Info().Int("count", len(ids)).Msg("bulk delete accepted")
	return nil
}

// do sends a request and returns the response of a 2xx answer from a
// compatible server. Anything else is a *provider.NetworkError.
func (c *Client[T]) do(ctx context.Context, method, target string, body []byte) (*http.Response, error) {
	op := "fetch"
	if method != http.MethodGet {
		op = "delete"
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &provider.NetworkError{Op: op, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &provider.NetworkError{Op: op, URL: target, Err: err}
	}

	if verr := c.checkVersion(resp.Header.Get(APIVersionHeader)); verr != nil {
		resp.Body.Close()
		return nil, &provider.NetworkError{Op: op, URL: target, StatusCode: resp.StatusCode, Err: verr}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, &provider.NetworkError{Op: op, URL: target, StatusCode: resp.StatusCode, Err: errorDetail(resp.Body)}
	}
	return resp, nil
}

func (c *Client[T]) checkVersion(header string) error {
	if c.minVersion == nil || header == "" {
		return nil
	}
	v, err := semver.NewVersion(header)
	if err != nil {
		return fmt.Errorf("%w: unparseable version %q", ErrIncompatibleAPI, header)
	}
	if v.LessThan(c.minVersion) {
		return fmt.Errorf("%w: server %s, need >= %s", ErrIncompatibleAPI, v, c.minVersion)
	}
	return nil
}

// errorDetail extracts the "detail" message of an error body, falling back
// to the raw text.
func errorDetail(body io.Reader) error {
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	var payload struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Detail != "" {
		return errors.New(payload.Detail)
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return errors.New(text)
	}
	return nil
}
