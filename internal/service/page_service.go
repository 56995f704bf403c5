package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"landing/internal/aiparse"
	"landing/internal/assistant"
	"landing/internal/catalog"
	"landing/internal/domain"
	"landing/internal/editor"
	"landing/internal/ident"
)

// ─────────────────────────────────────────────────────────────
// Page Service: persisted editing sessions
// ─────────────────────────────────────────────────────────────

const (
	EventPageCreated = "page:created"
	EventPageChanged = "page:changed"
	EventPageDeleted = "page:deleted"
)

var (
	ErrInvalidTitle = errors.New("title must be between 3 and 100 characters")
	ErrWrongPage    = errors.New("revision belongs to another page")
)

// PageService loads a page, runs an editor operation on its document, then
// saves it and records a revision.
type PageService struct {
	pages     domain.PageStore
	revisions domain.RevisionStore
	catalog   *catalog.Catalog
	editor    *editor.Editor
	emitter   EventEmitter
	logger    *zap.Logger
	now       func() time.Time

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewPageService(
	pages domain.PageStore,
	revisions domain.RevisionStore,
	cat *catalog.Catalog,
	ed *editor.Editor,
	emitter EventEmitter,
	logger *zap.Logger,
) *PageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if emitter == nil {
		emitter = &MockEmitter{}
	}
	return &PageService{
		pages:     pages,
		revisions: revisions,
		catalog:   cat,
		editor:    ed,
		emitter:   emitter,
		logger:    logger,
		now:       time.Now,
		locks:     map[string]*sync.Mutex{},
	}
}

func (s *PageService) Editor() *editor.Editor { return s.editor }

func (s *PageService) lock(pageID string) func() {
	s.locksMu.Lock()
	m, ok := s.locks[pageID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[pageID] = m
	}
	s.locksMu.Unlock()
	m.Lock()
	return m.Unlock
}

// ── Pages ──────────────────────────────────────────────────

// CreateFromTemplate instantiates a template into a new draft page. An empty
// template name means "blank".
func (s *PageService) CreateFromTemplate(ctx context.Context, title, templateID string) (*domain.Page, error) {
	if templateID == "" {
		templateID = "blank"
	}
	title, err := validTitle(title)
	if err != nil {
		return nil, err
	}
	doc, err := s.editor.InstantiateNamed(s.catalog, templateID, domain.Meta{Title: title})
	if err != nil {
		return nil, err
	}
	return s.CreateFromDocument(ctx, title, templateID, doc, "create from template "+templateID)
}

// CreateFromDocument stores doc as a new draft page with an initial revision.
func (s *PageService) CreateFromDocument(ctx context.Context, title, template string, doc domain.Document, label string) (*domain.Page, error) {
	title, err := validTitle(title)
	if err != nil {
		return nil, err
	}
	p := &domain.Page{
		ID:       ident.NewUUID(),
		Title:    title,
		Slug:     Slugify(title, s.now()),
		Status:   domain.PageStatusDraft,
		Template: template,
		Document: doc,
	}
	if err := s.pages.CreatePage(ctx, p); err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	if err := s.revisions.PushRevision(ctx, &domain.Revision{PageID: p.ID, Label: label, Snapshot: doc.Clone()}); err != nil {
		s.logger.Warn("page saved without revision", zap.String("page", p.ID), zap.String("label", label), zap.Error(err))
	}
	s.logger.Info("page created", zap.String("page", p.ID), zap.String("template", template), zap.Int("blocks", len(doc.Blocks)))
	s.emitter.Emit(ctx, EventPageCreated, p)
	return p, nil
}

func (s *PageService) Get(ctx context.Context, id string) (*domain.Page, error) {
	return s.pages.GetPage(ctx, id)
}

func (s *PageService) List(ctx context.Context) ([]domain.Page, error) {
	return s.pages.ListPages(ctx)
}

// Delete removes a page and its history.
func (s *PageService) Delete(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()
	if err := s.pages.DeletePage(ctx, id); err != nil {
		return err
	}
	if err := s.revisions.DeleteHistory(ctx, id); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	s.emitter.Emit(ctx, EventPageDeleted, id)
	return nil
}

// SetStatus publishes or unpublishes a page. The document is untouched, so
// no revision is recorded.
func (s *PageService) SetStatus(ctx context.Context, id string, status domain.PageStatus) (*domain.Page, error) {
	if status != domain.PageStatusDraft && status != domain.PageStatusPublished {
		return nil, fmt.Errorf("unknown page status %q", status)
	}
	unlock := s.lock(id)
	defer unlock()
	p, err := s.pages.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Status = status
	if err := s.pages.UpdatePage(ctx, p); err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, EventPageChanged, p)
	return p, nil
}

// Rename changes the title; the slug is kept so published links stay valid.
func (s *PageService) Rename(ctx context.Context, id, title string) (*domain.Page, error) {
	title, err := validTitle(title)
	if err != nil {
		return nil, err
	}
	return s.Mutate(ctx, id, "rename", func(doc domain.Document) (domain.Document, error) {
		doc.Meta.Title = title
		return doc, nil
	}, func(p *domain.Page) { p.Title = title })
}

// ── Mutations ──────────────────────────────────────────────

// Mutate applies fn to the page document and persists the result with a
// revision labelled label. If fn leaves the document unchanged nothing is
// written. Optional touch funcs adjust page fields in the same write. A
// revision that cannot be recorded is logged and the saved page returned.
func (s *PageService) Mutate(ctx context.Context, pageID, label string, fn func(domain.Document) (domain.Document, error), touch ...func(*domain.Page)) (*domain.Page, error) {
	unlock := s.lock(pageID)
	defer unlock()

	p, err := s.pages.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	next, err := fn(p.Document)
	if err != nil {
		return nil, err
	}
	before := *p
	for _, t := range touch {
		t(p)
	}
	if cmp.Equal(before.Document, next) && before.Title == p.Title {
		return p, nil
	}
	p.Document = next
	if err := s.pages.UpdatePage(ctx, p); err != nil {
		return nil, fmt.Errorf("save page: %w", err)
	}

	rev := &domain.Revision{PageID: pageID, Label: label, Snapshot: next.Clone()}
	if h, err := s.revisions.LoadHistory(ctx, pageID); err == nil && h.CurrentID != "" {
		parent := h.CurrentID
		rev.ParentID = &parent
	}
	if err := s.revisions.PushRevision(ctx, rev); err != nil {
		s.logger.Warn("page saved without revision", zap.String("page", pageID), zap.String("label", label), zap.Error(err))
	}
	s.logger.Debug("page mutated", zap.String("page", pageID), zap.String("label", label))
	s.emitter.Emit(ctx, EventPageChanged, p)
	return p, nil
}

func (s *PageService) AddBlock(ctx context.Context, pageID string, t domain.BlockType, settings domain.Settings) (*domain.Page, domain.Block, error) {
	var added domain.Block
	p, err := s.Mutate(ctx, pageID, "add "+string(t), func(doc domain.Document) (domain.Document, error) {
		var next domain.Document
		next, added = s.editor.AddWithSettings(doc, t, settings)
		return next, nil
	})
	return p, added, err
}

func (s *PageService) RemoveBlock(ctx context.Context, pageID, blockID string) (*domain.Page, error) {
	return s.Mutate(ctx, pageID, "remove "+blockID, func(doc domain.Document) (domain.Document, error) {
		return s.editor.Remove(doc, blockID), nil
	})
}

func (s *PageService) DuplicateBlock(ctx context.Context, pageID, blockID string) (*domain.Page, domain.Block, error) {
	var dup domain.Block
	p, err := s.Mutate(ctx, pageID, "duplicate "+blockID, func(doc domain.Document) (domain.Document, error) {
		next, b, _ := s.editor.Duplicate(doc, blockID)
		dup = b
		return next, nil
	})
	return p, dup, err
}

func (s *PageService) MoveBlock(ctx context.Context, pageID, blockID string, dir editor.Direction) (*domain.Page, error) {
	return s.Mutate(ctx, pageID, "move "+blockID, func(doc domain.Document) (domain.Document, error) {
		return s.editor.Move(doc, blockID, dir), nil
	})
}

// ReorderBlocks requires ids to be a permutation of the current block ids.
func (s *PageService) ReorderBlocks(ctx context.Context, pageID string, ids []string) (*domain.Page, error) {
	return s.Mutate(ctx, pageID, "reorder", func(doc domain.Document) (domain.Document, error) {
		return s.editor.ReorderIDs(doc, ids)
	})
}

func (s *PageService) UpdateBlockSettings(ctx context.Context, pageID, blockID string, partial domain.Settings) (*domain.Page, error) {
	return s.Mutate(ctx, pageID, "update "+blockID, func(doc domain.Document) (domain.Document, error) {
		return s.editor.UpdateSettings(doc, blockID, partial), nil
	})
}

// ApplyTemplate replaces every block with a fresh instance of a template.
func (s *PageService) ApplyTemplate(ctx context.Context, pageID, templateID string) (*domain.Page, error) {
	tpl, err := s.catalog.Get(templateID)
	if err != nil {
		return nil, err
	}
	return s.Mutate(ctx, pageID, "apply template "+templateID, func(doc domain.Document) (domain.Document, error) {
		return s.editor.ReplaceBlocks(doc, tpl.Blocks), nil
	}, func(p *domain.Page) { p.Template = templateID })
}

// ApplyAssistant applies a parsed assistant result to the page.
func (s *PageService) ApplyAssistant(ctx context.Context, pageID string, r aiparse.Result) (*domain.Page, assistant.Outcome, error) {
	var out assistant.Outcome
	p, err := s.Mutate(ctx, pageID, "assistant: "+assistant.Summary(r), func(doc domain.Document) (domain.Document, error) {
		var next domain.Document
		next, out = assistant.Apply(s.editor, doc, r)
		return next, nil
	})
	return p, out, err
}

// RunBlockTool runs a plugin settings tool against one block and merges the
// returned settings into it.
func (s *PageService) RunBlockTool(ctx context.Context, pageID, blockID string, tool editor.SettingsTool, args map[string]string) (*domain.Page, error) {
	return s.Mutate(ctx, pageID, tool.Name+" "+blockID, func(doc domain.Document) (domain.Document, error) {
		b, ok := doc.Block(blockID)
		if !ok {
			return doc, fmt.Errorf("block %q not found on page %q", blockID, pageID)
		}
		partial, err := tool.Handler(b, args)
		if err != nil {
			return doc, fmt.Errorf("%s: %w", tool.Name, err)
		}
		return s.editor.UpdateSettings(doc, blockID, partial), nil
	})
}

// ── History ────────────────────────────────────────────────

func (s *PageService) History(ctx context.Context, pageID string) (*domain.History, error) {
	if _, err := s.pages.GetPage(ctx, pageID); err != nil {
		return nil, err
	}
	return s.revisions.LoadHistory(ctx, pageID)
}

// Restore puts a page back to a revision's snapshot and moves the current
// pointer there. No new revision is recorded.
func (s *PageService) Restore(ctx context.Context, pageID, revisionID string) (*domain.Page, error) {
	unlock := s.lock(pageID)
	defer unlock()

	rev, err := s.revisions.GetRevision(ctx, revisionID)
	if err != nil {
		return nil, err
	}
	if rev.PageID != pageID {
		return nil, fmt.Errorf("restore %q: %w", revisionID, ErrWrongPage)
	}
	p, err := s.pages.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	p.Document = rev.Snapshot
	if err := s.pages.UpdatePage(ctx, p); err != nil {
		return nil, fmt.Errorf("save page: %w", err)
	}
	if err := s.revisions.SetCurrent(ctx, pageID, revisionID); err != nil {
		return nil, fmt.Errorf("move history pointer: %w", err)
	}
	s.emitter.Emit(ctx, EventPageChanged, p)
	return p, nil
}

// ── Helpers ────────────────────────────────────────────────

const (
	minTitleRunes = 3
	maxTitleRunes = 100
)

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if n := utf8.RuneCountInString(title); n < minTitleRunes || n > maxTitleRunes {
		return "", fmt.Errorf("%w (got %d)", ErrInvalidTitle, n)
	}
	return title, nil
}

// Slugify lowercases title, drops accents, joins words with '-' and appends
// a base36 millisecond timestamp.
func Slugify(title string, at time.Time) string {
	// a Chain keeps state, so each call builds its own
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripMarks, title)
	if err != nil {
		plain = title
	}
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	base := strings.TrimSuffix(sb.String(), "-")
	if base == "" {
		base = "page"
	}
	return base + "-" + strconv.FormatInt(at.UnixMilli(), 36)
}
