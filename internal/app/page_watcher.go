package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"landing/internal/domain"
	mcpserver "landing/internal/mcp"
	"landing/internal/service"
	"landing/internal/storage"
)

const EventPagesChanged = "pages:changed"

// pageWatcher polls the stores for changes made by another process (an MCP
// server or a scheduled watch) and emits events: pages:changed when the page
// list moves, mcp:approval-required once per new pending approval.
type pageWatcher struct {
	pages     domain.PageStore
	approvals storage.ApprovalStore
	emitter   service.EventEmitter
	interval  time.Duration

	mu        sync.Mutex
	lastPages string
	emitted   map[string]bool
}

func newPageWatcher(pages domain.PageStore, approvals storage.ApprovalStore, emitter service.EventEmitter) *pageWatcher {
	return &pageWatcher{
		pages:     pages,
		approvals: approvals,
		emitter:   emitter,
		interval:  2 * time.Second,
		emitted:   map[string]bool{},
	}
}

// Watch emits events for external changes until ctx is cancelled.
func (a *App) Watch(ctx context.Context, emitter service.EventEmitter) {
	newPageWatcher(a.stores.Pages, a.stores.Approvals, emitter).run(ctx)
}

func (w *pageWatcher) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.check(ctx)
	for {
		select {
		case <-ticker.C:
			w.check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *pageWatcher) check(ctx context.Context) {
	// ── Page list fingerprint ───────────────────────────
	if pages, err := w.pages.ListPages(ctx); err == nil {
		var latest time.Time
		for _, p := range pages {
			if p.UpdatedAt.After(latest) {
				latest = p.UpdatedAt
			}
		}
		fp := fmt.Sprintf("%d:%d", len(pages), latest.UnixNano())

		w.mu.Lock()
		changed := w.lastPages != "" && w.lastPages != fp
		w.lastPages = fp
		w.mu.Unlock()
		if changed {
			w.emitter.Emit(ctx, EventPagesChanged, len(pages))
		}
	}

	// ── Pending approvals ───────────────────────────────
	pending, err := w.approvals.ListPendingApprovals(ctx)
	if err != nil {
		return
	}
	live := make(map[string]bool, len(pending))
	for _, a := range pending {
		live[a.ID] = true
		w.mu.Lock()
		sent := w.emitted[a.ID]
		w.emitted[a.ID] = true
		w.mu.Unlock()
		if !sent {
			w.emitter.Emit(ctx, mcpserver.EventApprovalRequired, a)
		}
	}

	// resolved or deleted approvals are forgotten
	w.mu.Lock()
	for id := range w.emitted {
		if !live[id] {
			delete(w.emitted, id)
		}
	}
	w.mu.Unlock()
}
