package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"landing/internal/assistant"
	"landing/internal/catalog"
	"landing/internal/domain"
	"landing/internal/editor"
	"landing/internal/plugins"
	"landing/internal/service"
	"landing/internal/storage"
)

// decider answers approval requests as soon as they are emitted.
type decider struct {
	mu      sync.Mutex
	queue   *ApprovalQueue
	approve bool
	asked   []string
	meta    []string
}

func (d *decider) Emit(_ context.Context, event string, data any) {
	if event != EventApprovalRequired {
		return
	}
	a := data.(PendingAction)
	d.mu.Lock()
	d.asked = append(d.asked, a.Tool)
	d.meta = append(d.meta, a.Metadata)
	approve := d.approve
	d.mu.Unlock()
	if approve {
		d.queue.Approve(a.ID)
	} else {
		d.queue.Reject(a.ID)
	}
}

func (d *decider) set(approve bool) {
	d.mu.Lock()
	d.approve = approve
	d.mu.Unlock()
}

func (d *decider) tools() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.asked...)
}

type fakeModel struct{ reply string }

func (f fakeModel) Complete(context.Context, string, string) (string, error) { return f.reply, nil }

func newTestServer(t *testing.T, model *fakeModel) (*Server, *decider) {
	t.Helper()
	st, err := storage.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "landing.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	reg := editor.NewPluginRegistry()
	plugins.Register(reg, func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) })
	cat := catalog.New(nil)
	ps := service.NewPageService(st.Pages, st.Revisions, cat, editor.New(editor.WithPlugins(reg)), &service.MockEmitter{}, nil)

	d := &decider{approve: true}
	deps := Deps{Pages: ps, Catalog: cat, Emitter: d}
	if model != nil {
		deps.Chat = assistant.NewChat(model, nil)
	}
	s := New(deps)
	d.queue = s.Approvals()
	return s, d
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func decode[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &v))
	return v
}

func createPage(t *testing.T, s *Server, template string) domain.Page {
	t.Helper()
	res, err := s.handleCreatePage(context.Background(), call(map[string]any{"title": "Palestra Milano", "template": template}))
	require.NoError(t, err)
	return decode[domain.Page](t, res)
}

func TestCreatePageSetsActivePage(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ctx := context.Background()

	p := createPage(t, s, "fitness")
	require.Equal(t, domain.PageStatusDraft, p.Status)

	res, err := s.handleListBlocks(ctx, call(nil))
	require.NoError(t, err)
	blocks := decode[[]blockSummary](t, res)
	require.Len(t, blocks, len(p.Document.Blocks))
	require.Equal(t, domain.BlockTypeHero, blocks[0].Type)

	res, err = s.handleListBlocks(ctx, call(map[string]any{"type": "hero"}))
	require.NoError(t, err)
	require.Len(t, decode[[]blockSummary](t, res), 1)

	_, err = s.handleCreatePage(ctx, call(map[string]any{"title": "ok title", "template": "nope"}))
	require.ErrorIs(t, err, catalog.ErrUnknownTemplate)
}

func TestResolvePageIDWithoutActivePage(t *testing.T) {
	s, _ := newTestServer(t, nil)
	_, err := s.handleListBlocks(context.Background(), call(nil))
	require.ErrorContains(t, err, "set_active_page")
}

func TestAddAndUpdateBlock(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ctx := context.Background()
	createPage(t, s, "blank")

	res, err := s.handleAddBlock(ctx, call(map[string]any{"type": "cta", "settings": `{"title":"Prenota ora"}`}))
	require.NoError(t, err)
	b := decode[domain.Block](t, res)
	require.Equal(t, "Prenota ora", b.Settings["title"])
	require.NotEmpty(t, b.ID)

	_, err = s.handleAddBlock(ctx, call(map[string]any{"type": "carousel"}))
	require.ErrorContains(t, err, "unknown block type")
	_, err = s.handleAddBlock(ctx, call(map[string]any{"type": "text", "settings": `[1,2]`}))
	require.Error(t, err)

	res, err = s.handleUpdateBlockSettings(ctx, call(map[string]any{"blockId": b.ID, "settings": `{"subtitle":"Solo oggi"}`}))
	require.NoError(t, err)
	updated := decode[domain.Block](t, res)
	require.Equal(t, "Prenota ora", updated.Settings["title"])
	require.Equal(t, "Solo oggi", updated.Settings["subtitle"])
}

func TestReorderBlocksRequiresPermutation(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ctx := context.Background()
	p := createPage(t, s, "coaching")
	ids := p.Document.IDs()

	_, err := s.handleReorderBlocks(ctx, call(map[string]any{"blockIds": ids[0]}))
	require.ErrorIs(t, err, editor.ErrNotPermutation)

	reordered := append([]string{ids[len(ids)-1]}, ids[:len(ids)-1]...)
	raw := ""
	for i, id := range reordered {
		if i > 0 {
			raw += ", "
		}
		raw += id
	}
	res, err := s.handleReorderBlocks(ctx, call(map[string]any{"blockIds": raw}))
	require.NoError(t, err)
	blocks := decode[[]blockSummary](t, res)
	require.Equal(t, reordered[0], blocks[0].ID)
}

func TestRemoveBlockNeedsApproval(t *testing.T) {
	s, d := newTestServer(t, nil)
	ctx := context.Background()
	p := createPage(t, s, "promo")
	first := p.Document.Blocks[0].ID

	d.set(false)
	res, err := s.handleRemoveBlock(ctx, call(map[string]any{"blockId": first}))
	require.NoError(t, err)
	require.Contains(t, resultText(t, res), "rejected")
	got, err := s.pages.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Document.Blocks, len(p.Document.Blocks))

	d.set(true)
	_, err = s.handleRemoveBlock(ctx, call(map[string]any{"blockId": first}))
	require.NoError(t, err)
	got, err = s.pages.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.Document.IDs()[1:], got.Document.IDs())
	require.Equal(t, []string{"remove_block", "remove_block"}, d.tools())
}

func TestRemoveBlocksAndDeletePage(t *testing.T) {
	s, d := newTestServer(t, nil)
	ctx := context.Background()
	p := createPage(t, s, "fitness")
	ids := p.Document.IDs()

	_, err := s.handleRemoveBlocks(ctx, call(map[string]any{"blockIds": ids[0] + "," + ids[1]}))
	require.NoError(t, err)
	got, err := s.pages.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, ids[2:], got.Document.IDs())

	var meta struct {
		PageID   string   `json:"pageId"`
		BlockIDs []string `json:"blockIds"`
	}
	d.mu.Lock()
	require.NoError(t, json.Unmarshal([]byte(d.meta[0]), &meta))
	d.mu.Unlock()
	require.Equal(t, p.ID, meta.PageID)
	require.Equal(t, ids[:2], meta.BlockIDs)

	_, err = s.handleDeletePage(ctx, call(map[string]any{"pageId": p.ID}))
	require.NoError(t, err)
	_, err = s.pages.Get(ctx, p.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.Equal(t, []string{"remove_blocks", "delete_page"}, d.tools())

	_, err = s.handleListBlocks(ctx, call(nil))
	require.Error(t, err, "deleting the active page clears it")
}

func TestAssistantApplyAsksOnlyForDestructiveActions(t *testing.T) {
	s, d := newTestServer(t, nil)
	ctx := context.Background()
	p := createPage(t, s, "promo")
	hero := p.Document.Blocks[0].ID

	res, err := s.handleAssistantApply(ctx, call(map[string]any{
		"response": "Ecco:\n```json\n{\"action\":\"update_block\",\"blockId\":\"" + hero + "\",\"changes\":{\"title\":\"Nuovo\"}}\n```",
	}))
	require.NoError(t, err)
	reply := decode[assistantReply](t, res)
	require.Equal(t, "fence", reply.Parsed)
	require.True(t, reply.Outcome.Applied)
	require.Empty(t, d.tools())

	_, err = s.handleAssistantApply(ctx, call(map[string]any{
		"response": `{"action":"delete_block","blockId":"` + hero + `"}`,
	}))
	require.NoError(t, err)
	require.Equal(t, []string{"assistant_apply"}, d.tools())

	got, err := s.pages.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.Document.IDs()[1:], got.Document.IDs())
}

func TestAssistantAsk(t *testing.T) {
	model := &fakeModel{}
	s, _ := newTestServer(t, model)
	ctx := context.Background()
	p := createPage(t, s, "promo")
	hero := p.Document.Blocks[0].ID
	model.reply = `{"action":"update_block","blockId":"` + hero + `","changes":{"title":"Offerta lampo"}}`

	res, err := s.handleAssistantAsk(ctx, call(map[string]any{"request": "titolo più incisivo"}))
	require.NoError(t, err)
	reply := decode[assistantReply](t, res)
	require.Nil(t, reply.Outcome)
	require.Equal(t, "update_block", reply.Action)

	res, err = s.handleAssistantAsk(ctx, call(map[string]any{"request": "titolo più incisivo", "apply": true}))
	require.NoError(t, err)
	require.True(t, decode[assistantReply](t, res).Outcome.Applied)

	got, err := s.pages.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Offerta lampo", got.Document.Blocks[0].Settings["title"])
}

func TestHistoryAndRestore(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ctx := context.Background()
	createPage(t, s, "blank")
	_, err := s.handleAddBlock(ctx, call(map[string]any{"type": "text"}))
	require.NoError(t, err)

	res, err := s.handlePageHistory(ctx, call(nil))
	require.NoError(t, err)
	revs := decode[[]revisionSummary](t, res)
	require.Len(t, revs, 2)
	require.True(t, revs[1].Current)
	require.Equal(t, revs[0].ID, revs[1].ParentID)

	res, err = s.handleRestoreRevision(ctx, call(map[string]any{"revisionId": revs[0].ID}))
	require.NoError(t, err)
	require.Empty(t, decode[[]blockSummary](t, res))
}

func TestPluginToolsAreRegistered(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ctx := context.Background()
	p := createPage(t, s, "blank")
	res, err := s.handleAddBlock(ctx, call(map[string]any{"type": "countdown"}))
	require.NoError(t, err)
	b := decode[domain.Block](t, res)

	list := s.MCP().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(list)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"countdown_extend"`)
	require.Contains(t, string(raw), `"form_set_required"`)

	msg := `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"countdown_extend","arguments":{"pageId":"` +
		p.ID + `","blockId":"` + b.ID + `","days":"3"}}}`
	s.MCP().HandleMessage(ctx, json.RawMessage(msg))

	got, err := s.pages.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotEqual(t, b.Settings["endDate"], got.Document.Blocks[0].Settings["endDate"])
}

func TestPageIDFromURI(t *testing.T) {
	require.Equal(t, "abc-123", pageIDFromURI("landing://page/abc-123/blocks"))
	require.Empty(t, pageIDFromURI("landing://page/a/b/blocks"))
	require.Empty(t, pageIDFromURI("notes://page/abc/blocks"))
}
