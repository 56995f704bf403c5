package plugins

import (
	"fmt"
	"strconv"
	"time"

	"landing/internal/domain"
	"landing/internal/editor"
)

// DefaultCountdownWindow is how far in the future a new countdown ends.
const DefaultCountdownWindow = 7 * 24 * time.Hour

// DefaultLeadSource tags leads captured by forms created in this tool.
const DefaultLeadSource = "landing_page"

// Register installs every built-in block plugin into r.
func Register(r *editor.PluginRegistry, now func() time.Time) {
	r.Register(NewCountdownPlugin(now))
	r.Register(NewFormPlugin(DefaultLeadSource))
}

// ─────────────────────────────────────────────────────────────
// Countdown Block Plugin
// ─────────────────────────────────────────────────────────────

// countdownPlugin sets endDate on new countdown blocks and exposes a tool to
// push the deadline further out.
type countdownPlugin struct {
	now func() time.Time
}

// NewCountdownPlugin creates the countdown plugin. now defaults to time.Now.
func NewCountdownPlugin(now func() time.Time) editor.ToolProvider {
	if now == nil {
		now = time.Now
	}
	return &countdownPlugin{now: now}
}

func (p *countdownPlugin) BlockType() domain.BlockType { return domain.BlockTypeCountdown }

func (p *countdownPlugin) OnCreate(b *domain.Block) {
	if s, _ := b.Settings["endDate"].(string); s != "" {
		return
	}
	b.Settings["endDate"] = p.now().Add(DefaultCountdownWindow).UTC().Format(time.RFC3339)
}

func (p *countdownPlugin) Tools() []editor.SettingsTool {
	return []editor.SettingsTool{{
		Name:        "countdown_extend",
		Description: "Push a countdown block's end date further out by a number of days, counted from the later of now and the current end date.",
		Params:      map[string]string{"days": "Number of days to add (1-365)"},
		Handler:     p.extend,
	}}
}

func (p *countdownPlugin) extend(b domain.Block, args map[string]string) (domain.Settings, error) {
	days, err := strconv.Atoi(args["days"])
	if err != nil || days < 1 || days > 365 {
		return nil, fmt.Errorf("countdown plugin: days must be an integer between 1 and 365")
	}
	from := p.now()
	if s, _ := b.Settings["endDate"].(string); s != "" {
		if end, err := time.Parse(time.RFC3339, s); err == nil && end.After(from) {
			from = end
		}
	}
	return domain.Settings{
		"endDate": from.Add(time.Duration(days) * 24 * time.Hour).UTC().Format(time.RFC3339),
	}, nil
}

// ─────────────────────────────────────────────────────────────
// Form Block Plugin
// ─────────────────────────────────────────────────────────────

// formPlugin tags new forms with a lead source and exposes a tool to require
// or relax individual fields.
type formPlugin struct {
	source string
}

func NewFormPlugin(source string) editor.ToolProvider {
	return &formPlugin{source: source}
}

func (p *formPlugin) BlockType() domain.BlockType { return domain.BlockTypeForm }

func (p *formPlugin) OnCreate(b *domain.Block) {
	if s, _ := b.Settings["leadSource"].(string); s == "" {
		b.Settings["leadSource"] = p.source
	}
}

func (p *formPlugin) Tools() []editor.SettingsTool {
	return []editor.SettingsTool{{
		Name:        "form_set_required",
		Description: "Mark one field of a form block as required or optional.",
		Params: map[string]string{
			"field":    "Field id (e.g. phone)",
			"required": "true or false",
		},
		Handler: p.setRequired,
	}}
}

func (p *formPlugin) setRequired(b domain.Block, args map[string]string) (domain.Settings, error) {
	required, err := strconv.ParseBool(args["required"])
	if err != nil {
		return nil, fmt.Errorf("form plugin: required must be true or false")
	}
	fields, _ := domain.CloneValue(b.Settings["fields"]).([]any)
	found := false
	for _, f := range fields {
		m, ok := f.(map[string]any)
		if ok && m["id"] == args["field"] {
			m["required"] = required
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("form plugin: field %q not found", args["field"])
	}
	return domain.Settings{"fields": fields}, nil
}
