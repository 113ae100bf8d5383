package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/recongrid/internal/grid"
	"github.com/rshade/recongrid/internal/provider"
)

// fetchedMsg carries a provider response back into Update.
type fetchedMsg[T any] struct {
	req  grid.Request
	page provider.Page[T]
	err  error
}

// cmdDispatcher queues grid requests until Update turns them into commands.
// Starting a request cancels the previous one.
type cmdDispatcher[T any] struct {
	ctx      context.Context
	provider provider.Provider[T]

	mu     sync.Mutex
	queue  []grid.Request
	cancel context.CancelFunc
}

func newCmdDispatcher[T any](ctx context.Context, p provider.Provider[T]) *cmdDispatcher[T] {
	return &cmdDispatcher[T]{ctx: ctx, provider: p}
}

// Dispatch matches grid.Options.Dispatch.
func (d *cmdDispatcher[T]) Dispatch(req grid.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queue = append(d.queue, req)
}

// Cmd drains the queue. It returns nil when nothing is pending.
func (d *cmdDispatcher[T]) Cmd() tea.Cmd {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.queue) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(d.queue))
	for _, req := range d.queue {
		if d.cancel != nil {
			d.cancel()
		}
		ctx, cancel := context.WithCancel(d.ctx)
		d.cancel = cancel
		cmds = append(cmds, d.fetch(ctx, req))
	}
	d.queue = nil
	return tea.Batch(cmds...)
}

func (d *cmdDispatcher[T]) fetch(ctx context.Context, req grid.Request) tea.Cmd {
	p := d.provider
	return func() tea.Msg {
		page, err := p.FetchPage(ctx, req.Query)
		return fetchedMsg[T]{req: req, page: page, err: err}
	}
}

// Stop cancels the request in flight.
func (d *cmdDispatcher[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
