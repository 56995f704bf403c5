package storage

import (
	"context"
	"fmt"
	"io"

	"landing/internal/domain"
)

// DriverMongo selects the MongoDB backend in Open.
const DriverMongo = "mongodb"

// Stores bundles the stores of one backend.
type Stores struct {
	Pages     domain.PageStore
	Revisions domain.RevisionStore
	Approvals ApprovalStore
	closer    io.Closer
}

func (s *Stores) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Open connects the backend named by driver: sqlite, postgres, mysql or
// mongodb. database is only used by mongodb.
func Open(ctx context.Context, driver, dsn, database string) (*Stores, error) {
	if driver == DriverMongo {
		m, err := NewMongo(ctx, dsn, database)
		if err != nil {
			return nil, err
		}
		return &Stores{Pages: m, Revisions: m, Approvals: m, closer: m}, nil
	}

	db, err := New(ctx, Dialect(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	return &Stores{
		Pages:     NewPageStore(db),
		Revisions: NewRevisionStore(db),
		Approvals: NewApprovalStore(db),
		closer:    db,
	}, nil
}
