package domain

import (
	"context"
	"time"
)

type PageStatus string

const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "published"
)

// Page is a persisted landing page.
type Page struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug"`
	Status    PageStatus `json:"status"`
	Template  string     `json:"template"`
	Document  Document   `json:"document"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Revision is one snapshot in a page's history tree.
type Revision struct {
	ID        string    `json:"id"`
	PageID    string    `json:"pageId"`
	ParentID  *string   `json:"parentId"`
	Label     string    `json:"label"`
	Snapshot  Document  `json:"snapshot"`
	CreatedAt time.Time `json:"createdAt"`
}

// History is the revision tree of a page. Revisions are ordered by creation time.
type History struct {
	Revisions []Revision `json:"revisions"`
	CurrentID string     `json:"currentId"`
	RootID    string     `json:"rootId"`
}

type PageStore interface {
	CreatePage(ctx context.Context, p *Page) error
	GetPage(ctx context.Context, id string) (*Page, error)
	ListPages(ctx context.Context) ([]Page, error)
	UpdatePage(ctx context.Context, p *Page) error
	DeletePage(ctx context.Context, id string) error
}

type RevisionStore interface {
	PushRevision(ctx context.Context, r *Revision) error
	GetRevision(ctx context.Context, id string) (*Revision, error)
	LoadHistory(ctx context.Context, pageID string) (*History, error)
	SetCurrent(ctx context.Context, pageID, revisionID string) error
	DeleteHistory(ctx context.Context, pageID string) error
}
