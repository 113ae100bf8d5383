package cache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/rshade/recongrid/internal/provider"
)

// Provider serves pages from a FileStore and falls through to another
// provider on a miss.
type Provider[T any] struct {
	next      provider.Provider[T]
	store     *FileStore
	namespace string
	log       zerolog.Logger
}

// NewProvider wraps next. namespace separates entries of different entity
// kinds sharing one directory.
func NewProvider[T any](next provider.Provider[T], store *FileStore, namespace string, log zerolog.Logger) *Provider[T] {
	return &Provider[T]{
		next:      next,
		store:     store,
		namespace: namespace,
		log:       log.With().Str("component", "cache").Str("namespace", namespace).Logger(),
	}
}

// FetchPage returns the cached page for q or fetches and caches it.
func (p *Provider[T]) FetchPage(ctx context.Context, q provider.Query) (provider.Page[T], error) {
	if !p.store.Enabled() {
		return p.next.FetchPage(ctx, q)
	}

	key, err := Key(p.namespace, q)
	if err != nil {
		return p.next.FetchPage(ctx, q)
	}

	if entry, getErr := p.store.Get(key); getErr == nil {
		var page provider.Page[T]
		if jsonErr := json.Unmarshal(entry.Data, &page); jsonErr == nil {
			p.log.Debug().Str("key", key[:12]).Dur("age", entry.Age()).Msg("cache hit")
			return page, nil
		}
		_ = p.store.Delete(key)
	} else if !errors.Is(getErr, ErrNotFound) && !errors.Is(getErr, ErrExpired) {
		p.log.Warn().Err(getErr).Msg("cache read failed")
	}

	page, err := p.next.FetchPage(ctx, q)
	if err != nil {
		return page, err
	}

	data, err := json.Marshal(page)
	if err == nil {
		err = p.store.Set(key, data)
	}
	if err != nil {
		p.log.Warn().Err(err).Msg("cache write failed")
	}
	return page, nil
}

// Delete forwards to the wrapped provider when it supports deletion and
// invalidates the cache afterwards.
func (p *Provider[T]) Delete(ctx context.Context, ids []string) error {
	d, ok := p.next.(provider.Deleter)
	if !ok {
		return errors.New("cache: wrapped provider does not support delete")
	}
	err := d.Delete(ctx, ids)
	if invErr := p.Invalidate(); invErr != nil {
		p.log.Warn().Err(invErr).Msg("cache invalidation failed")
	}
	return err
}

// Invalidate drops every cached page.
func (p *Provider[T]) Invalidate() error {
	if !p.store.Enabled() {
		return nil
	}
	return p.store.Clear()
}
