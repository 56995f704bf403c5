package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"landing/internal/aiparse"
	"landing/internal/analyzer"
	"landing/internal/catalog"
	"landing/internal/config"
	"landing/internal/domain"
	"landing/internal/editor"
	"landing/internal/service"
	"landing/internal/storage"
	"landing/internal/synth"
)

type fixture struct {
	pages   *service.PageService
	emitter *service.MockEmitter
	stores  *storage.Stores
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := storage.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "landing.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	em := &service.MockEmitter{}
	ps := service.NewPageService(st.Pages, st.Revisions, catalog.New(nil), editor.New(), em, nil)
	return &fixture{pages: ps, emitter: em, stores: st}
}

// ─────────────────────────────────────────────────────────────
// PageService
// ─────────────────────────────────────────────────────────────

func TestPageService_CreateFromTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.pages.CreateFromTemplate(ctx, "Palestra Roma", "fitness")
	require.NoError(t, err)
	require.Equal(t, domain.PageStatusDraft, p.Status)
	require.Equal(t, "fitness", p.Template)
	require.Equal(t, domain.BlockTypeHero, p.Document.Blocks[0].Type)
	require.Equal(t, "Palestra Roma", p.Document.Meta.Title)
	require.Len(t, f.emitter.Named(service.EventPageCreated), 1)

	h, err := f.pages.History(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, h.Revisions, 1)

	_, err = f.pages.CreateFromTemplate(ctx, "ok title", "nope")
	require.ErrorIs(t, err, catalog.ErrUnknownTemplate)

	_, err = f.pages.CreateFromTemplate(ctx, "ab", "")
	require.ErrorIs(t, err, service.ErrInvalidTitle)
}

func TestPageService_MutationsRecordRevisions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.pages.CreateFromTemplate(ctx, "Pagina vuota", "blank")
	require.NoError(t, err)

	p, hero, err := f.pages.AddBlock(ctx, p.ID, domain.BlockTypeHero, nil)
	require.NoError(t, err)
	p, _, err = f.pages.AddBlock(ctx, p.ID, domain.BlockTypeForm, nil)
	require.NoError(t, err)
	p, err = f.pages.UpdateBlockSettings(ctx, p.ID, hero.ID, domain.Settings{"title": "Benvenuto"})
	require.NoError(t, err)

	got, err := f.pages.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Document.Blocks, 2)
	require.Equal(t, "Benvenuto", got.Document.Blocks[0].Settings["title"])

	h, err := f.pages.History(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, h.Revisions, 4)
	last := h.Revisions[3]
	require.Equal(t, h.CurrentID, last.ID)
	require.Equal(t, h.Revisions[2].ID, *last.ParentID)
}

func TestPageService_NoopWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.pages.CreateFromTemplate(ctx, "Pagina vuota", "blank")
	require.NoError(t, err)

	_, err = f.pages.RemoveBlock(ctx, p.ID, "ghost")
	require.NoError(t, err)

	h, err := f.pages.History(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, h.Revisions, 1)
	require.Empty(t, f.emitter.Named(service.EventPageChanged))
}

func TestPageService_ReorderRejectsNonPermutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.pages.CreateFromTemplate(ctx, "Coaching page", "coaching")
	require.NoError(t, err)

	ids := p.Document.IDs()
	_, err = f.pages.ReorderBlocks(ctx, p.ID, ids[1:])
	require.ErrorIs(t, err, editor.ErrNotPermutation)

	reversed := make([]string, len(ids))
	for i, id := range ids {
		reversed[len(ids)-1-i] = id
	}
	p, err = f.pages.ReorderBlocks(ctx, p.ID, reversed)
	require.NoError(t, err)
	require.Equal(t, reversed, p.Document.IDs())
}

func TestPageService_Restore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.pages.CreateFromTemplate(ctx, "Pagina vuota", "blank")
	require.NoError(t, err)
	h, err := f.pages.History(ctx, p.ID)
	require.NoError(t, err)
	first := h.Revisions[0].ID

	_, _, err = f.pages.AddBlock(ctx, p.ID, domain.BlockTypeText, nil)
	require.NoError(t, err)

	p, err = f.pages.Restore(ctx, p.ID, first)
	require.NoError(t, err)
	require.Empty(t, p.Document.Blocks)

	h, err = f.pages.History(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, first, h.CurrentID)
	require.Len(t, h.Revisions, 2)

	other, err := f.pages.CreateFromTemplate(ctx, "Altra pagina", "blank")
	require.NoError(t, err)
	_, err = f.pages.Restore(ctx, other.ID, first)
	require.ErrorIs(t, err, service.ErrWrongPage)
}

func TestPageService_ApplyAssistant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.pages.CreateFromTemplate(ctx, "Promo page", "promo")
	require.NoError(t, err)
	before := p.Document.IDs()

	_, out, err := f.pages.ApplyAssistant(ctx, p.ID, aiparse.Parse(`{"action":"reorder","newOrder":["x"]}`))
	require.NoError(t, err)
	require.False(t, out.Applied)

	got, err := f.pages.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, before, got.Document.IDs())

	p, out, err = f.pages.ApplyAssistant(ctx, p.ID, aiparse.Parse(`{"action":"delete_block","blockId":"`+before[0]+`"}`))
	require.NoError(t, err)
	require.True(t, out.Applied)
	require.Equal(t, before[1:], p.Document.IDs())
}

func TestPageService_DeleteAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.pages.CreateFromTemplate(ctx, "Pagina vuota", "blank")
	require.NoError(t, err)

	p, err = f.pages.SetStatus(ctx, p.ID, domain.PageStatusPublished)
	require.NoError(t, err)
	require.Equal(t, domain.PageStatusPublished, p.Status)
	_, err = f.pages.SetStatus(ctx, p.ID, "archived")
	require.Error(t, err)

	require.NoError(t, f.pages.Delete(ctx, p.ID))
	_, err = f.pages.Get(ctx, p.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSlugify(t *testing.T) {
	at := time.UnixMilli(36)
	require.Equal(t, "caffe-e-piu-10", service.Slugify("  Caffè è più!  ", at))
	require.Equal(t, "page-10", service.Slugify("???", at))
}

func TestSlugify_Concurrent(t *testing.T) {
	at := time.UnixMilli(36)
	var wg sync.WaitGroup
	got := make([]string, 64)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = service.Slugify("Caffè è più", at)
		}()
	}
	wg.Wait()
	for _, s := range got {
		require.Equal(t, "caffe-e-piu-10", s)
	}
}

type failingRevisions struct{ domain.RevisionStore }

func (failingRevisions) PushRevision(context.Context, *domain.Revision) error {
	return errors.New("history unavailable")
}

func TestPageService_SavesWhenRevisionFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ps := service.NewPageService(f.stores.Pages, failingRevisions{f.stores.Revisions}, catalog.New(nil), editor.New(), f.emitter, nil)

	p, err := ps.CreateFromTemplate(ctx, "Senza storia", "promo")
	require.NoError(t, err)

	p, err = ps.Rename(ctx, p.ID, "Ancora senza storia")
	require.NoError(t, err)
	require.Equal(t, "Ancora senza storia", p.Title)

	stored, err := f.stores.Pages.GetPage(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Ancora senza storia", stored.Title)
}

// ─────────────────────────────────────────────────────────────
// SynthesisService / ScheduleService
// ─────────────────────────────────────────────────────────────

type fakeAnalyzer struct {
	calls    atomic.Int32
	fail     bool
	audience string
}

func (f *fakeAnalyzer) analysis() (domain.Analysis, error) {
	f.calls.Add(1)
	if f.fail {
		return domain.Analysis{}, errors.New("analyzer down")
	}
	return domain.Analysis{
		Sections:       []domain.Section{{Type: "hero", Title: "Titolo"}, {Type: "faq", Title: "Domande"}},
		Colors:         domain.Colors{"#111111"},
		Style:          "minimal",
		TargetAudience: f.audience,
	}, nil
}

func (f *fakeAnalyzer) AnalyzeScreenshot(context.Context, analyzer.Image, string) (domain.Analysis, error) {
	return f.analysis()
}

func (f *fakeAnalyzer) AnalyzeURL(context.Context, string, string) (domain.Analysis, error) {
	return f.analysis()
}

func (f *fakeAnalyzer) AnalyzeDescription(context.Context, analyzer.Brief) (domain.Analysis, error) {
	return f.analysis()
}

func TestSynthesisService_CreatesPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := &fakeAnalyzer{}
	s := service.NewSynthesisService(synth.NewPipeline(a, 0, nil), f.pages, f.emitter, nil)

	res, err := s.FromDescription(ctx, "", analyzer.Brief{BusinessType: "Palestra", Target: "adulti"})
	require.NoError(t, err)
	require.Equal(t, "Palestra", res.Page.Title)
	require.Equal(t, "synth:description", res.Page.Template)
	// hero, faq, appended lead form
	require.Len(t, res.Page.Document.Blocks, 3)

	res, err = s.FromURL(ctx, "Competitor", "https://example.com", "")
	require.NoError(t, err)
	require.Equal(t, "https://example.com", res.Page.Document.Meta.AnalyzedFrom)

	_, err = s.FromScreenshots(ctx, "Shots", nil, "")
	require.ErrorIs(t, err, synth.ErrNoInput)
	require.Equal(t, int32(2), a.calls.Load())
}

func TestSynthesisService_RejectsTitleBeforeAnalysis(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := &fakeAnalyzer{}
	s := service.NewSynthesisService(synth.NewPipeline(a, 0, nil), f.pages, f.emitter, nil)
	shots := []analyzer.Image{{MIMEType: "image/png", Data: []byte{1}}, {MIMEType: "image/png", Data: []byte{2}}}

	var verr *synth.ValidationError
	_, err := s.FromScreenshots(ctx, "ab", shots, "")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "title", verr.Field)

	_, err = s.FromURL(ctx, strings.Repeat("x", 101), "https://competitor.example", "")
	require.ErrorAs(t, err, &verr)

	// the business type becomes the title when none is given
	_, err = s.FromDescription(ctx, "", analyzer.Brief{BusinessType: "Yo", Target: "adulti"})
	require.ErrorAs(t, err, &verr)

	require.Equal(t, int32(0), a.calls.Load())
	pages, err := f.pages.List(ctx)
	require.NoError(t, err)
	require.Empty(t, pages)
}

func TestSynthesisService_DerivedTitleFitsBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := &fakeAnalyzer{audience: strings.Repeat("à", 120)}
	s := service.NewSynthesisService(synth.NewPipeline(a, 0, nil), f.pages, f.emitter, nil)

	res, err := s.FromURL(ctx, "", "https://competitor.example", "")
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("à", 100), res.Page.Title)

	a.audience = "io"
	res, err = s.FromURL(ctx, "", "https://competitor.example", "")
	require.NoError(t, err)
	require.Equal(t, synth.DefaultTitle, res.Page.Title)
}

func TestScheduleService_RunWatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := &fakeAnalyzer{}
	s := service.NewSynthesisService(synth.NewPipeline(a, 0, nil), f.pages, f.emitter, nil)

	p, err := f.pages.CreateFromTemplate(ctx, "Pagina vuota", "blank")
	require.NoError(t, err)

	sched := service.NewScheduleService(s, f.emitter, nil)
	w := config.WatchConfig{PageID: p.ID, URL: "https://competitor.example", Schedule: "@daily"}
	require.True(t, sched.RunWatch(ctx, w))

	h, err := f.pages.History(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "watch: https://competitor.example", h.Revisions[len(h.Revisions)-1].Label)
	require.Len(t, f.emitter.Named(service.EventWatchCompleted), 1)

	a.fail = true
	require.False(t, sched.RunWatch(ctx, w))
	got, err := f.pages.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Document.Blocks, 3, "failed run leaves the page unchanged")
}

func TestScheduleService_StartRejectsBadSchedule(t *testing.T) {
	sched := service.NewScheduleService(nil, nil, nil)
	err := sched.Start(context.Background(), []config.WatchConfig{
		{PageID: "p1", URL: "https://x", Schedule: "@daily"},
		{PageID: "p2", URL: "https://y", Schedule: "not a cron"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "p2")
	sched.Stop()
}
