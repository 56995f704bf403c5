package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"landing/internal/domain"
)

// MongoStore implements the page, revision and approval stores on MongoDB.
// Documents are kept as JSON strings, the same shape as the SQL tables.
type MongoStore struct {
	client    *mongo.Client
	pages     *mongo.Collection
	revisions *mongo.Collection
	state     *mongo.Collection
	approvals *mongo.Collection
	max       int
}

type mongoPage struct {
	ID           string    `bson:"_id"`
	Title        string    `bson:"title"`
	Slug         string    `bson:"slug"`
	Status       string    `bson:"status"`
	Template     string    `bson:"template"`
	DocumentJSON string    `bson:"document_json"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type mongoRevision struct {
	ID           string    `bson:"_id"`
	PageID       string    `bson:"page_id"`
	ParentID     *string   `bson:"parent_id"`
	Seq          int64     `bson:"seq"`
	Label        string    `bson:"label"`
	SnapshotJSON string    `bson:"snapshot_json"`
	CreatedAt    time.Time `bson:"created_at"`
}

type mongoApproval struct {
	ID          string    `bson:"_id"`
	Tool        string    `bson:"tool"`
	Description string    `bson:"description"`
	Status      string    `bson:"status"`
	Metadata    string    `bson:"metadata"`
	CreatedAt   time.Time `bson:"created_at"`
}

// NewMongo connects to uri and prepares the collections of database dbName.
func NewMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	if dbName == "" {
		dbName = "landing"
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client:    client,
		pages:     db.Collection("pages"),
		revisions: db.Collection("revisions"),
		state:     db.Collection("revision_state"),
		approvals: db.Collection("mcp_approvals"),
		max:       MaxRevisions,
	}
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.pages, mongo.IndexModel{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.revisions, mongo.IndexModel{Keys: bson.D{{Key: "page_id", Value: 1}, {Key: "seq", Value: 1}}}},
	}
	for _, ix := range indexes {
		if _, err := ix.coll.Indexes().CreateOne(ctx, ix.model); err != nil {
			client.Disconnect(context.Background())
			return nil, fmt.Errorf("create index on %s: %w", ix.coll.Name(), err)
		}
	}
	return s, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// ── Pages ──────────────────────────────────────────────────

func (s *MongoStore) CreatePage(ctx context.Context, p *domain.Page) error {
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
	rec, err := toMongoPage(p)
	if err != nil {
		return err
	}
	if _, err := s.pages.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	return nil
}

func (s *MongoStore) GetPage(ctx context.Context, id string) (*domain.Page, error) {
	var rec mongoPage
	err := s.pages.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("page %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	return fromMongoPage(rec)
}

func (s *MongoStore) ListPages(ctx context.Context) ([]domain.Page, error) {
	cur, err := s.pages.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	var recs []mongoPage
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	pages := make([]domain.Page, 0, len(recs))
	for _, rec := range recs {
		p, err := fromMongoPage(rec)
		if err != nil {
			return nil, err
		}
		pages = append(pages, *p)
	}
	return pages, nil
}

func (s *MongoStore) UpdatePage(ctx context.Context, p *domain.Page) error {
	p.UpdatedAt = time.Now().UTC()
	rec, err := toMongoPage(p)
	if err != nil {
		return err
	}
	res, err := s.pages.ReplaceOne(ctx, bson.M{"_id": p.ID}, rec)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("page %q: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) DeletePage(ctx context.Context, id string) error {
	res, err := s.pages.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("page %q: %w", id, ErrNotFound)
	}
	return nil
}

func toMongoPage(p *domain.Page) (mongoPage, error) {
	doc, err := encodeDocument(p.Document)
	if err != nil {
		return mongoPage{}, err
	}
	return mongoPage{
		ID: p.ID, Title: p.Title, Slug: p.Slug, Status: string(p.Status), Template: p.Template,
		DocumentJSON: doc, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}, nil
}

func fromMongoPage(rec mongoPage) (*domain.Page, error) {
	doc, err := decodeDocument(rec.DocumentJSON)
	if err != nil {
		return nil, fmt.Errorf("page %q: %w", rec.ID, err)
	}
	return &domain.Page{
		ID: rec.ID, Title: rec.Title, Slug: rec.Slug, Status: domain.PageStatus(rec.Status), Template: rec.Template,
		Document: doc, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt,
	}, nil
}

// ── Revisions ──────────────────────────────────────────────

func (s *MongoStore) PushRevision(ctx context.Context, r *domain.Revision) error {
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

	var last mongoRevision
	seq := int64(0)
	err = s.revisions.FindOne(ctx, bson.M{"page_id": r.PageID},
		options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}})).Decode(&last)
	switch {
	case err == nil:
		seq = last.Seq
	case !errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("next revision seq: %w", err)
	}

	rec := mongoRevision{
		ID: r.ID, PageID: r.PageID, ParentID: r.ParentID, Seq: seq + 1,
		Label: r.Label, SnapshotJSON: snap, CreatedAt: r.CreatedAt,
	}
	if _, err := s.revisions.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	if err := s.setCurrent(ctx, r.PageID, r.ID); err != nil {
		return err
	}
	return s.prune(ctx, r.PageID, r.ID)
}

func (s *MongoStore) GetRevision(ctx context.Context, id string) (*domain.Revision, error) {
	var rec mongoRevision
	err := s.revisions.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("revision %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get revision: %w", err)
	}
	return fromMongoRevision(rec)
}

func (s *MongoStore) LoadHistory(ctx context.Context, pageID string) (*domain.History, error) {
	recs, err := s.pageRevisions(ctx, pageID)
	if err != nil {
		return nil, err
	}
	h := &domain.History{Revisions: []domain.Revision{}}
	for _, rec := range recs {
		r, err := fromMongoRevision(rec)
		if err != nil {
			return nil, err
		}
		if r.ParentID == nil && h.RootID == "" {
			h.RootID = r.ID
		}
		h.Revisions = append(h.Revisions, *r)
	}
	if len(h.Revisions) == 0 {
		return h, nil
	}

	var st struct {
		CurrentID string `bson:"current_id"`
	}
	if err := s.state.FindOne(ctx, bson.M{"_id": pageID}).Decode(&st); err != nil {
		h.CurrentID = h.RootID
	} else {
		h.CurrentID = st.CurrentID
	}
	return h, nil
}

func (s *MongoStore) SetCurrent(ctx context.Context, pageID, revisionID string) error {
	n, err := s.revisions.CountDocuments(ctx, bson.M{"_id": revisionID, "page_id": pageID})
	if err != nil {
		return fmt.Errorf("set current revision: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("revision %q of page %q: %w", revisionID, pageID, ErrNotFound)
	}
	return s.setCurrent(ctx, pageID, revisionID)
}

func (s *MongoStore) DeleteHistory(ctx context.Context, pageID string) error {
	if _, err := s.state.DeleteOne(ctx, bson.M{"_id": pageID}); err != nil {
		return fmt.Errorf("delete revision state: %w", err)
	}
	if _, err := s.revisions.DeleteMany(ctx, bson.M{"page_id": pageID}); err != nil {
		return fmt.Errorf("delete revisions: %w", err)
	}
	return nil
}

func (s *MongoStore) setCurrent(ctx context.Context, pageID, revisionID string) error {
	_, err := s.state.UpdateOne(ctx, bson.M{"_id": pageID},
		bson.M{"$set": bson.M{"current_id": revisionID}}, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("update revision state: %w", err)
	}
	return nil
}

func (s *MongoStore) pageRevisions(ctx context.Context, pageID string) ([]mongoRevision, error) {
	cur, err := s.revisions.Find(ctx, bson.M{"page_id": pageID}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("load revisions: %w", err)
	}
	var recs []mongoRevision
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("load revisions: %w", err)
	}
	return recs, nil
}

func (s *MongoStore) prune(ctx context.Context, pageID, currentID string) error {
	recs, err := s.pageRevisions(ctx, pageID)
	if err != nil {
		return err
	}
	nodes := make([]treeNode, len(recs))
	for i, rec := range recs {
		nodes[i] = treeNode{ID: rec.ID, ParentID: rec.ParentID}
	}
	plan := planPrune(nodes, currentID, s.max)
	for id, parent := range plan.Reparent {
		if _, err := s.revisions.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"parent_id": parent}}); err != nil {
			return fmt.Errorf("prune reparent: %w", err)
		}
	}
	if len(plan.Delete) > 0 {
		if _, err := s.revisions.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": plan.Delete}}); err != nil {
			return fmt.Errorf("prune delete: %w", err)
		}
	}
	return nil
}

func fromMongoRevision(rec mongoRevision) (*domain.Revision, error) {
	doc, err := decodeDocument(rec.SnapshotJSON)
	if err != nil {
		return nil, fmt.Errorf("revision %q: %w", rec.ID, err)
	}
	return &domain.Revision{
		ID: rec.ID, PageID: rec.PageID, ParentID: rec.ParentID, Label: rec.Label,
		Snapshot: doc, CreatedAt: rec.CreatedAt,
	}, nil
}

// ── Approvals ──────────────────────────────────────────────

func (s *MongoStore) InsertApproval(ctx context.Context, a *Approval) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = ApprovalPending
	}
	if a.Metadata == "" {
		a.Metadata = "{}"
	}
	_, err := s.approvals.InsertOne(ctx, mongoApproval(*a))
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

func (s *MongoStore) ApprovalStatus(ctx context.Context, id string) (string, error) {
	var rec mongoApproval
	err := s.approvals.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("approval %q: %w", id, ErrNotFound)
	}
	return rec.Status, err
}

func (s *MongoStore) ResolveApproval(ctx context.Context, id string, approved bool) error {
	status := ApprovalRejected
	if approved {
		status = ApprovalApproved
	}
	res, err := s.approvals.UpdateOne(ctx, bson.M{"_id": id, "status": ApprovalPending}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("resolve approval: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("pending approval %q: %w", id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) DeleteApproval(ctx context.Context, id string) error {
	_, err := s.approvals.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *MongoStore) ListPendingApprovals(ctx context.Context) ([]Approval, error) {
	cur, err := s.approvals.Find(ctx, bson.M{"status": ApprovalPending}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	var recs []mongoApproval
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	out := make([]Approval, len(recs))
	for i, rec := range recs {
		out[i] = Approval(rec)
	}
	return out, nil
}
