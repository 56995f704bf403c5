package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"landing/internal/domain"
)

// MaxRevisions is the number of revisions kept per page.
const MaxRevisions = 40

// RevisionStore keeps the revision tree of each page. Every revision holds a
// full document snapshot; the current pointer lives in revision_state.
type RevisionStore struct {
	db  *DB
	max int
}

func NewRevisionStore(db *DB) *RevisionStore {
	return &RevisionStore{db: db, max: MaxRevisions}
}

// PushRevision stores r under r.ParentID and makes it current. A missing ID
// is generated. Oldest revisions beyond MaxRevisions are pruned.
func (s *RevisionStore) PushRevision(ctx context.Context, r *domain.Revision) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	snap, err := encodeDocument(r.Snapshot)
	if err != nil {
		return err
	}

	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, s.db.Rebind(
		`SELECT COALESCE(MAX(seq), 0) FROM revisions WHERE page_id = ?`), r.PageID,
	).Scan(&seq); err != nil {
		return fmt.Errorf("next revision seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO revisions (id, page_id, parent_id, seq, label, snapshot_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.PageID, r.ParentID, seq+1, r.Label, snap, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.db.Rebind(s.db.upsert("revision_state", "page_id", "current_id")), r.PageID, r.ID); err != nil {
		return fmt.Errorf("update revision state: %w", err)
	}

	if err := s.prune(ctx, tx, r.PageID, r.ID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *RevisionStore) GetRevision(ctx context.Context, id string) (*domain.Revision, error) {
	row := s.db.Conn().QueryRowContext(ctx, s.db.Rebind(
		`SELECT id, page_id, parent_id, label, snapshot_json, created_at FROM revisions WHERE id = ?`), id)
	r, err := scanRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("revision %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get revision: %w", err)
	}
	return r, nil
}

// LoadHistory returns the revision tree of a page, oldest first. A page with
// no revisions yields an empty History.
func (s *RevisionStore) LoadHistory(ctx context.Context, pageID string) (*domain.History, error) {
	rows, err := s.db.Conn().QueryContext(ctx, s.db.Rebind(
		`SELECT id, page_id, parent_id, label, snapshot_json, created_at
		 FROM revisions WHERE page_id = ? ORDER BY seq ASC`), pageID)
	if err != nil {
		return nil, fmt.Errorf("load revisions: %w", err)
	}
	defer rows.Close()

	h := &domain.History{Revisions: []domain.Revision{}}
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		if r.ParentID == nil && h.RootID == "" {
			h.RootID = r.ID
		}
		h.Revisions = append(h.Revisions, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(h.Revisions) == 0 {
		return h, nil
	}

	err = s.db.Conn().QueryRowContext(ctx, s.db.Rebind(
		`SELECT current_id FROM revision_state WHERE page_id = ?`), pageID,
	).Scan(&h.CurrentID)
	if err != nil {
		h.CurrentID = h.RootID
	}
	return h, nil
}

// SetCurrent moves the current pointer of a page to one of its revisions.
func (s *RevisionStore) SetCurrent(ctx context.Context, pageID, revisionID string) error {
	var owner string
	err := s.db.Conn().QueryRowContext(ctx, s.db.Rebind(
		`SELECT page_id FROM revisions WHERE id = ?`), revisionID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && owner != pageID) {
		return fmt.Errorf("revision %q of page %q: %w", revisionID, pageID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("set current revision: %w", err)
	}
	_, err = s.db.Conn().ExecContext(ctx, s.db.Rebind(s.db.upsert("revision_state", "page_id", "current_id")), pageID, revisionID)
	return err
}

func (s *RevisionStore) DeleteHistory(ctx context.Context, pageID string) error {
	if _, err := s.db.Conn().ExecContext(ctx, s.db.Rebind(`DELETE FROM revision_state WHERE page_id = ?`), pageID); err != nil {
		return fmt.Errorf("delete revision state: %w", err)
	}
	if _, err := s.db.Conn().ExecContext(ctx, s.db.Rebind(`DELETE FROM revisions WHERE page_id = ?`), pageID); err != nil {
		return fmt.Errorf("delete revisions: %w", err)
	}
	return nil
}

func (s *RevisionStore) prune(ctx context.Context, tx *sql.Tx, pageID, currentID string) error {
	// collect the tree first; no writes while the cursor is open
	rows, err := tx.QueryContext(ctx, s.db.Rebind(
		`SELECT id, parent_id FROM revisions WHERE page_id = ? ORDER BY seq ASC`), pageID)
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	var nodes []treeNode
	for rows.Next() {
		var n treeNode
		if err := rows.Scan(&n.ID, &n.ParentID); err != nil {
			rows.Close()
			return fmt.Errorf("prune scan: %w", err)
		}
		nodes = append(nodes, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	plan := planPrune(nodes, currentID, s.max)
	for id, parent := range plan.Reparent {
		if _, err := tx.ExecContext(ctx, s.db.Rebind(`UPDATE revisions SET parent_id = ? WHERE id = ?`), parent, id); err != nil {
			return fmt.Errorf("prune reparent: %w", err)
		}
	}
	for _, id := range plan.Delete {
		if _, err := tx.ExecContext(ctx, s.db.Rebind(`DELETE FROM revisions WHERE id = ?`), id); err != nil {
			return fmt.Errorf("prune delete: %w", err)
		}
	}
	return nil
}

func scanRevision(row scanner) (*domain.Revision, error) {
	var (
		r      domain.Revision
		parent sql.NullString
		snap   string
	)
	if err := row.Scan(&r.ID, &r.PageID, &parent, &r.Label, &snap, &r.CreatedAt); err != nil {
		return nil, err
	}
	if parent.Valid {
		r.ParentID = &parent.String
	}
	d, err := decodeDocument(snap)
	if err != nil {
		return nil, fmt.Errorf("revision %q: %w", r.ID, err)
	}
	r.Snapshot = d
	return &r, nil
}

// ── Pruning ────────────────────────────────────────────────

type treeNode struct {
	ID       string
	ParentID *string
}

type prunePlan struct {
	Delete   []string
	Reparent map[string]*string // surviving node -> new parent (nil = root)
}

// planPrune drops the oldest nodes beyond max, never the current one. The
// children of a dropped node are attached to its parent.
func planPrune(nodes []treeNode, currentID string, max int) prunePlan {
	plan := prunePlan{Reparent: map[string]*string{}}
	excess := len(nodes) - max
	if excess <= 0 {
		return plan
	}

	parent := make(map[string]*string, len(nodes))
	for _, n := range nodes {
		parent[n.ID] = n.ParentID
	}
	dropped := map[string]bool{}
	for _, n := range nodes[:excess] {
		if n.ID == currentID {
			continue
		}
		up := parent[n.ID]
		for _, m := range nodes {
			if p := parent[m.ID]; p != nil && *p == n.ID {
				parent[m.ID] = up
				plan.Reparent[m.ID] = up
			}
		}
		dropped[n.ID] = true
		plan.Delete = append(plan.Delete, n.ID)
	}
	for id := range dropped {
		delete(plan.Reparent, id)
	}
	return plan
}
