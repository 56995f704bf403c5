package editor

import (
	"fmt"
	"sort"
	"sync"

	"landing/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Block Plugin Registry: create-time hooks per block type
// ─────────────────────────────────────────────────────────────

// BlockPlugin hooks into block creation for one block type.
type BlockPlugin interface {
	// BlockType returns the block type this plugin handles (e.g. "countdown").
	BlockType() domain.BlockType
	// OnCreate adjusts the settings of a freshly created block. The block is
	// owned by the caller and not yet part of any document.
	OnCreate(b *domain.Block)
}

// SettingsTool is an operation a plugin exposes on blocks of its type. The
// handler returns a partial settings map that is merged into the block.
type SettingsTool struct {
	Name        string
	Description string
	Params      map[string]string // name -> description, all strings
	Destructive bool
	Handler     func(b domain.Block, args map[string]string) (domain.Settings, error)
}

// ToolProvider extends BlockPlugin with tool declarations. The MCP server
// registers these on startup.
type ToolProvider interface {
	BlockPlugin
	Tools() []SettingsTool
}

// PluginRegistry manages registered block plugins.
type PluginRegistry struct {
	mu      sync.RWMutex
	plugins map[domain.BlockType]BlockPlugin
}

// NewPluginRegistry creates an empty plugin registry.
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{plugins: make(map[domain.BlockType]BlockPlugin)}
}

// Register adds a plugin to the registry. Panics on duplicate registration.
func (r *PluginRegistry) Register(p BlockPlugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := p.BlockType()
	if _, exists := r.plugins[t]; exists {
		panic(fmt.Sprintf("plugin registry: duplicate registration for block type %q", t))
	}
	r.plugins[t] = p
}

// OnCreate dispatches a create hook to the plugin for b.Type, if any.
func (r *PluginRegistry) OnCreate(b *domain.Block) {
	if r == nil {
		return
	}
	r.mu.RLock()
	p, ok := r.plugins[b.Type]
	r.mu.RUnlock()
	if ok {
		p.OnCreate(b)
	}
}

// ForEach iterates registered plugins ordered by block type.
func (r *PluginRegistry) ForEach(fn func(BlockPlugin)) {
	if r == nil {
		return
	}
	r.mu.RLock()
	list := make([]BlockPlugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		list = append(list, p)
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].BlockType() < list[j].BlockType() })
	for _, p := range list {
		fn(p)
	}
}
