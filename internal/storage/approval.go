package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Approval is a destructive assistant action awaiting a human decision.
type Approval struct {
	ID          string    `json:"id"`
	Tool        string    `json:"tool"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Metadata    string    `json:"metadata"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ApprovalStore persists approvals so another process can decide them.
type ApprovalStore interface {
	InsertApproval(ctx context.Context, a *Approval) error
	ApprovalStatus(ctx context.Context, id string) (string, error)
	ResolveApproval(ctx context.Context, id string, approved bool) error
	DeleteApproval(ctx context.Context, id string) error
	ListPendingApprovals(ctx context.Context) ([]Approval, error)
}

// SQLApprovalStore implements ApprovalStore on the mcp_approvals table.
type SQLApprovalStore struct {
	db *DB
}

func NewApprovalStore(db *DB) *SQLApprovalStore {
	return &SQLApprovalStore{db: db}
}

func (s *SQLApprovalStore) InsertApproval(ctx context.Context, a *Approval) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = ApprovalPending
	}
	if a.Metadata == "" {
		a.Metadata = "{}"
	}
	_, err := s.db.Conn().ExecContext(ctx, s.db.Rebind(
		`INSERT INTO mcp_approvals (id, tool, description, status, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)`),
		a.ID, a.Tool, a.Description, a.Status, a.Metadata, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

func (s *SQLApprovalStore) ApprovalStatus(ctx context.Context, id string) (string, error) {
	var status string
	err := s.db.Conn().QueryRowContext(ctx, s.db.Rebind(`SELECT status FROM mcp_approvals WHERE id = ?`), id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("approval %q: %w", id, ErrNotFound)
	}
	return status, err
}

// ResolveApproval decides a pending approval. Already decided ones are not found.
func (s *SQLApprovalStore) ResolveApproval(ctx context.Context, id string, approved bool) error {
	status := ApprovalRejected
	if approved {
		status = ApprovalApproved
	}
	res, err := s.db.Conn().ExecContext(ctx, s.db.Rebind(
		`UPDATE mcp_approvals SET status = ? WHERE id = ? AND status = ?`), status, id, ApprovalPending)
	if err != nil {
		return fmt.Errorf("resolve approval: %w", err)
	}
	return affected(res, "pending approval", id)
}

func (s *SQLApprovalStore) DeleteApproval(ctx context.Context, id string) error {
	_, err := s.db.Conn().ExecContext(ctx, s.db.Rebind(`DELETE FROM mcp_approvals WHERE id = ?`), id)
	return err
}

func (s *SQLApprovalStore) ListPendingApprovals(ctx context.Context) ([]Approval, error) {
	rows, err := s.db.Conn().QueryContext(ctx, s.db.Rebind(
		`SELECT id, tool, description, status, metadata, created_at FROM mcp_approvals WHERE status = ? ORDER BY created_at ASC`),
		ApprovalPending)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	out := []Approval{}
	for rows.Next() {
		var a Approval
		if err := rows.Scan(&a.ID, &a.Tool, &a.Description, &a.Status, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
