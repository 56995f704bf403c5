package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"landing/internal/domain"
)

// PageStore implements domain.PageStore on a SQL database. The document is
// stored as a JSON column.
type PageStore struct {
	db *DB
}

func NewPageStore(db *DB) *PageStore {
	return &PageStore{db: db}
}

const pageColumns = `id, title, slug, status, template, document_json, created_at, updated_at`

func (s *PageStore) CreatePage(ctx context.Context, p *domain.Page) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	if p.Status == "" {
		p.Status = domain.PageStatusDraft
	}
	doc, err := encodeDocument(p.Document)
	if err != nil {
		return err
	}
	_, err = s.db.Conn().ExecContext(ctx, s.db.Rebind(
		`INSERT INTO pages (`+pageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Title, p.Slug, string(p.Status), p.Template, doc, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	return nil
}

func (s *PageStore) GetPage(ctx context.Context, id string) (*domain.Page, error) {
	row := s.db.Conn().QueryRowContext(ctx, s.db.Rebind(`SELECT `+pageColumns+` FROM pages WHERE id = ?`), id)
	p, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("page %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	return p, nil
}

// ListPages returns pages most recently updated first.
func (s *PageStore) ListPages(ctx context.Context) ([]domain.Page, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `SELECT `+pageColumns+` FROM pages ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	pages := []domain.Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, *p)
	}
	return pages, rows.Err()
}

func (s *PageStore) UpdatePage(ctx context.Context, p *domain.Page) error {
	p.UpdatedAt = time.Now().UTC()
	doc, err := encodeDocument(p.Document)
	if err != nil {
		return err
	}
	res, err := s.db.Conn().ExecContext(ctx, s.db.Rebind(
		`UPDATE pages SET title = ?, slug = ?, status = ?, template = ?, document_json = ?, updated_at = ? WHERE id = ?`),
		p.Title, p.Slug, string(p.Status), p.Template, doc, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	return affected(res, "page", p.ID)
}

func (s *PageStore) DeletePage(ctx context.Context, id string) error {
	res, err := s.db.Conn().ExecContext(ctx, s.db.Rebind(`DELETE FROM pages WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return affected(res, "page", id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (*domain.Page, error) {
	var (
		p      domain.Page
		status string
		doc    string
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Slug, &status, &p.Template, &doc, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = domain.PageStatus(status)
	d, err := decodeDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("page %q: %w", p.ID, err)
	}
	p.Document = d
	return &p, nil
}

func affected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return nil
}

func encodeDocument(d domain.Document) (string, error) {
	if d.Blocks == nil {
		d.Blocks = []domain.Block{}
	}
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(data), nil
}

func decodeDocument(s string) (domain.Document, error) {
	var d domain.Document
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return d, fmt.Errorf("decode document: %w", err)
	}
	return d, nil
}
