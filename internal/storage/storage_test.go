package storage_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"landing/internal/domain"
	"landing/internal/storage"
)

func newTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.NewSQLite(filepath.Join(t.TempDir(), "landing.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleDoc() domain.Document {
	return domain.Document{
		Blocks: []domain.Block{
			{ID: "hero-1", Type: domain.BlockTypeHero, Settings: domain.Settings{"title": "Ciao"}},
			{ID: "features-1", Type: domain.BlockTypeFeatures, Settings: domain.Settings{
				"items": []any{map[string]any{"title": "Veloce"}},
			}},
			{ID: "form-1", Type: domain.BlockTypeForm, Settings: domain.Settings{}},
		},
		Meta: domain.Meta{Title: "Test", AnalyzedFrom: "description"},
	}
}

// ─────────────────────────────────────────────────────────────
// PageStore
// ─────────────────────────────────────────────────────────────

func TestPageStore_RoundTripPreservesOrder(t *testing.T) {
	ctx := context.Background()
	s := storage.NewPageStore(newTestDB(t))

	p := &domain.Page{ID: "p1", Title: "Test", Slug: "test-1", Template: "blank", Document: sampleDoc()}
	require.NoError(t, s.CreatePage(ctx, p))
	require.Equal(t, domain.PageStatusDraft, p.Status)

	got, err := s.GetPage(ctx, "p1")
	require.NoError(t, err)
	if diff := cmp.Diff(sampleDoc(), got.Document); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"hero-1", "features-1", "form-1"}, got.Document.IDs())
}

func TestPageStore_UpdateListDelete(t *testing.T) {
	ctx := context.Background()
	s := storage.NewPageStore(newTestDB(t))

	for i := 1; i <= 2; i++ {
		require.NoError(t, s.CreatePage(ctx, &domain.Page{
			ID: fmt.Sprintf("p%d", i), Title: "T", Slug: fmt.Sprintf("t-%d", i), Document: domain.Document{},
		}))
	}

	p, err := s.GetPage(ctx, "p1")
	require.NoError(t, err)
	p.Status = domain.PageStatusPublished
	require.NoError(t, s.UpdatePage(ctx, p))

	pages, err := s.ListPages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	require.Equal(t, "p1", pages[0].ID, "most recently updated first")
	require.Equal(t, domain.PageStatusPublished, pages[0].Status)

	require.NoError(t, s.DeletePage(ctx, "p2"))
	_, err = s.GetPage(ctx, "p2")
	require.True(t, errors.Is(err, storage.ErrNotFound))
	require.ErrorIs(t, s.DeletePage(ctx, "p2"), storage.ErrNotFound)
	require.ErrorIs(t, s.UpdatePage(ctx, &domain.Page{ID: "ghost"}), storage.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────
// RevisionStore
// ─────────────────────────────────────────────────────────────

func TestRevisionStore_PushAndLoad(t *testing.T) {
	ctx := context.Background()
	s := storage.NewRevisionStore(newTestDB(t))

	root := &domain.Revision{PageID: "p1", Label: "create", Snapshot: sampleDoc()}
	require.NoError(t, s.PushRevision(ctx, root))
	require.NotEmpty(t, root.ID)

	child := &domain.Revision{PageID: "p1", ParentID: &root.ID, Label: "edit", Snapshot: domain.Document{}}
	require.NoError(t, s.PushRevision(ctx, child))

	h, err := s.LoadHistory(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, h.Revisions, 2)
	require.Equal(t, root.ID, h.RootID)
	require.Equal(t, child.ID, h.CurrentID)
	require.Equal(t, root.ID, *h.Revisions[1].ParentID)

	require.NoError(t, s.SetCurrent(ctx, "p1", root.ID))
	h, err = s.LoadHistory(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, root.ID, h.CurrentID)

	require.ErrorIs(t, s.SetCurrent(ctx, "other-page", root.ID), storage.ErrNotFound)

	got, err := s.GetRevision(ctx, root.ID)
	require.NoError(t, err)
	require.Equal(t, sampleDoc().IDs(), got.Snapshot.IDs())

	require.NoError(t, s.DeleteHistory(ctx, "p1"))
	h, err = s.LoadHistory(ctx, "p1")
	require.NoError(t, err)
	require.Empty(t, h.Revisions)
}

func TestRevisionStore_PrunesAtForty(t *testing.T) {
	ctx := context.Background()
	s := storage.NewRevisionStore(newTestDB(t))

	var parent *string
	var ids []string
	for i := 0; i < storage.MaxRevisions+5; i++ {
		r := &domain.Revision{PageID: "p1", ParentID: parent, Label: fmt.Sprintf("edit %d", i), Snapshot: domain.Document{}}
		require.NoError(t, s.PushRevision(ctx, r))
		ids = append(ids, r.ID)
		id := r.ID
		parent = &id
	}

	h, err := s.LoadHistory(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, h.Revisions, storage.MaxRevisions)
	require.Equal(t, ids[5], h.Revisions[0].ID, "oldest revisions pruned first")
	require.Nil(t, h.Revisions[0].ParentID, "survivor of pruned parents becomes root")
	require.Equal(t, ids[5], h.RootID)
	require.Equal(t, ids[len(ids)-1], h.CurrentID)

	_, err = s.GetRevision(ctx, ids[0])
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────
// Approvals
// ─────────────────────────────────────────────────────────────

func TestApprovalStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := storage.NewApprovalStore(newTestDB(t))

	require.NoError(t, s.InsertApproval(ctx, &storage.Approval{ID: "a1", Tool: "delete_page", Description: "Delete page p1"}))
	pending, err := s.ListPendingApprovals(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "{}", pending[0].Metadata)

	require.NoError(t, s.ResolveApproval(ctx, "a1", true))
	status, err := s.ApprovalStatus(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, storage.ApprovalApproved, status)
	require.ErrorIs(t, s.ResolveApproval(ctx, "a1", false), storage.ErrNotFound)

	require.NoError(t, s.DeleteApproval(ctx, "a1"))
	_, err = s.ApprovalStatus(ctx, "a1")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOpen_SQLite(t *testing.T) {
	st, err := storage.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "x.db"), "")
	require.NoError(t, err)
	defer st.Close()
	pages, err := st.Pages.ListPages(context.Background())
	require.NoError(t, err)
	require.Empty(t, pages)

	_, err = storage.Open(context.Background(), "oracle", "dsn", "")
	require.Error(t, err)
}

func TestDB_Rebind(t *testing.T) {
	db := newTestDB(t)
	require.Equal(t, "SELECT ? FROM t WHERE a = ?", db.Rebind("SELECT ? FROM t WHERE a = ?"))
}
