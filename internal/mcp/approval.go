package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"landing/internal/storage"
)

const (
	EventApprovalRequired  = "mcp:approval-required"
	EventApprovalDismissed = "mcp:approval-dismissed"
)

// EventEmitter lets the approval queue notify an in-process listener.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

var (
	ErrRejected = errors.New("action rejected by user")
	ErrTimedOut = errors.New("action timed out")
)

// PendingAction is a destructive operation awaiting user approval.
type PendingAction struct {
	ID          string `json:"id"`
	Tool        string `json:"tool"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	Metadata    string `json:"metadata"` // JSON with extra context (e.g. block ids)
}

// ApprovalQueue gates destructive tool calls behind a human decision.
//   - In-process: Approve/Reject are called on the queue after an emitted event.
//   - Store-backed: the request is written to the approvals store and polled;
//     another process (landing approvals ...) decides it.
type ApprovalQueue struct {
	mu      sync.Mutex
	pending map[string]chan bool
	emitter EventEmitter
	store   storage.ApprovalStore
	logger  *zap.Logger
	timeout time.Duration
	poll    time.Duration
}

func NewApprovalQueue(emitter EventEmitter, store storage.ApprovalStore, logger *zap.Logger) *ApprovalQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalQueue{
		pending: make(map[string]chan bool),
		emitter: emitter,
		store:   store,
		logger:  logger,
		timeout: 120 * time.Second,
		poll:    500 * time.Millisecond,
	}
}

// Request blocks until the action is approved (nil), rejected (ErrRejected)
// or the timeout passes (ErrTimedOut).
func (q *ApprovalQueue) Request(ctx context.Context, tool, description, metadata string) error {
	if metadata == "" {
		metadata = "{}"
	}
	a := PendingAction{
		ID:          uuid.NewString(),
		Tool:        tool,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Metadata:    metadata,
	}
	q.logger.Info("approval requested", zap.String("id", a.ID), zap.String("tool", tool))
	if q.store != nil {
		return q.requestViaStore(ctx, a)
	}
	return q.requestViaChannel(ctx, a)
}

func (q *ApprovalQueue) requestViaStore(ctx context.Context, a PendingAction) error {
	err := q.store.InsertApproval(ctx, &storage.Approval{
		ID: a.ID, Tool: a.Tool, Description: a.Description, Metadata: a.Metadata,
	})
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	// the row is ours to clean up whatever happens
	defer q.store.DeleteApproval(context.WithoutCancel(ctx), a.ID)

	deadline := time.NewTimer(q.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(q.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			status, err := q.store.ApprovalStatus(ctx, a.ID)
			if err != nil {
				continue
			}
			switch status {
			case storage.ApprovalApproved:
				return nil
			case storage.ApprovalRejected:
				return fmt.Errorf("%w: %s", ErrRejected, a.Tool)
			}
		case <-deadline.C:
			return fmt.Errorf("%w after %s: %s", ErrTimedOut, q.timeout, a.Tool)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *ApprovalQueue) requestViaChannel(ctx context.Context, a PendingAction) error {
	ch := make(chan bool, 1)
	q.mu.Lock()
	q.pending[a.ID] = ch
	q.mu.Unlock()
	defer q.cleanup(a.ID)

	if q.emitter != nil {
		q.emitter.Emit(ctx, EventApprovalRequired, a)
	}

	select {
	case approved := <-ch:
		if !approved {
			return fmt.Errorf("%w: %s", ErrRejected, a.Tool)
		}
		return nil
	case <-time.After(q.timeout):
		if q.emitter != nil {
			q.emitter.Emit(ctx, EventApprovalDismissed, map[string]string{"id": a.ID})
		}
		return fmt.Errorf("%w after %s: %s", ErrTimedOut, q.timeout, a.Tool)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Approve marks a pending in-process action as approved.
func (q *ApprovalQueue) Approve(actionID string) { q.resolve(actionID, true) }

// Reject marks a pending in-process action as rejected.
func (q *ApprovalQueue) Reject(actionID string) { q.resolve(actionID, false) }

func (q *ApprovalQueue) resolve(actionID string, approved bool) {
	q.mu.Lock()
	ch, ok := q.pending[actionID]
	q.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- approved:
	default:
	}
}

func (q *ApprovalQueue) cleanup(id string) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}
