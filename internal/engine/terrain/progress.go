package terrain

import (
	"context"
	"sync/atomic"
)

// Progress is an optional cancellation handle for tile-model requests.
// A nil *Progress is valid and never canceled. The factory aborts and
// returns no model, never partial data, once cancellation is observed.
type Progress struct {
	ctx      context.Context
	canceled atomic.Bool
}

// NewProgress returns a progress handle bound to ctx. A nil ctx means
// context.Background.
func NewProgress(ctx context.Context) *Progress {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Progress{ctx: ctx}
}

// Cancel requests a best-effort abort of the operation.
func (p *Progress) Cancel() {
	if p != nil {
		p.canceled.Store(true)
	}
}

// Canceled reports whether the operation should abort, either via
// Cancel or via the bound context.
func (p *Progress) Canceled() bool {
	if p == nil {
		return false
	}
	return p.canceled.Load() || p.ctx.Err() != nil
}

// Context returns the bound context for passing into tile sources.
func (p *Progress) Context() context.Context {
	if p == nil {
		return context.Background()
	}
	return p.ctx
}
