package grid

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rshade/recongrid/internal/provider"
)

// Resolver receives fetch outcomes. *Grid implements it.
type Resolver[T any] interface {
	Resolve(req Request, page provider.Page[T], err error) bool
}

// AsyncDispatcher performs each Request on its own goroutine against a
// provider and resolves it on the attached grid. Dispatching a request
// cancels the context of every older request still in flight; a request
// arriving after a newer one is dropped.
type AsyncDispatcher[T any] struct {
	ctx      context.Context
	provider provider.Provider[T]
	log      zerolog.Logger

	mu       sync.Mutex
	resolver Resolver[T]
	cancels  map[uint64]context.CancelFunc
	latest   uint64
	wg       sync.WaitGroup
}

// NewAsyncDispatcher creates a dispatcher whose requests live no longer than
// ctx.
func NewAsyncDispatcher[T any](ctx context.Context, p provider.Provider[T], log zerolog.Logger) *AsyncDispatcher[T] {
	return &AsyncDispatcher[T]{
		ctx:      ctx,
		provider: p,
		log:      log.With().Str("component", "dispatcher").Logger(),
		cancels:  map[uint64]context.CancelFunc{},
	}
}

// Attach sets the resolver outcomes are delivered to.
func (d *AsyncDispatcher[T]) Attach(r Resolver[T]) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resolver = r
}

// Dispatch starts req. It matches Options.Dispatch.
func (d *AsyncDispatcher[T]) Dispatch(req Request) {
	d.mu.Lock()
	if req.Seq < d.latest {
		d.mu.Unlock()
		d.log.Debug().Uint64("seq", req.Seq).Uint64("latest", d.latest).Msg("dropping request older than one already dispatched")
		return
	}
	d.latest = req.Seq
	for seq, cancel := range d.cancels {
		if seq < req.Seq {
			cancel()
			delete(d.cancels, seq)
		}
	}
	ctx, cancel := context.WithCancel(d.ctx)
	d.cancels[req.Seq] = cancel
	resolver := d.resolver
	d.mu.Unlock()

	if resolver == nil {
		cancel()
		d.log.Warn().Uint64("seq", req.Seq).Msg("no resolver attached, dropping request")
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.release(req.Seq, cancel)

		page, err := d.provider.FetchPage(ctx, req.Query)
		if !resolver.Resolve(req, page, err) {
			d.log.Debug().Uint64("seq", req.Seq).Msg("response superseded")
		}
	}()
}

func (d *AsyncDispatcher[T]) release(seq uint64, cancel context.CancelFunc) {
	cancel()
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.cancels, seq)
}

// Wait blocks until every dispatched request has been resolved.
func (d *AsyncDispatcher[T]) Wait() {
	d.wg.Wait()
}

// NewAsync creates a grid whose fetches run on an AsyncDispatcher over p.
func NewAsync[T any](
	ctx context.Context,
	p provider.Provider[T],
	opts Options[T],
) (*Grid[T], *AsyncDispatcher[T], error) {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	d := NewAsyncDispatcher(ctx, p, log)
	opts.Dispatch = d.Dispatch
	g, err := New(opts)
	if err != nil {
		return nil, nil, err
	}
	d.Attach(g)
	return g, d, nil
}

// NewSync creates a grid whose fetches run inline on the calling goroutine.
// Every operation that fetches returns only after the response is resolved.
func NewSync[T any](ctx context.Context, p provider.Provider[T], opts Options[T]) (*Grid[T], error) {
	var g *Grid[T]
	opts.Dispatch = func(req Request) {
		page, err := p.FetchPage(ctx, req.Query)
		g.Resolve(req, page, err)
	}
	g, err := New(opts)
	if err != nil {
		return nil, err
	}
	return g, nil
}
