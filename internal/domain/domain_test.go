package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"landing/internal/domain"
)

func TestCloneSettings_NestedIndependence(t *testing.T) {
	orig := domain.Settings{
		"title": "Ciao",
		"items": []any{
			map[string]any{"title": "Uno", "tags": []string{"a", "b"}},
		},
		"fields": []map[string]any{{"name": "email", "required": true}},
	}
	cp := domain.CloneSettings(orig)
	if diff := cmp.Diff(orig, cp); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	cp["items"].([]any)[0].(map[string]any)["title"] = "Changed"
	cp["items"].([]any)[0].(map[string]any)["tags"].([]string)[0] = "z"
	cp["fields"].([]map[string]any)[0]["required"] = false

	item := orig["items"].([]any)[0].(map[string]any)
	require.Equal(t, "Uno", item["title"])
	require.Equal(t, "a", item["tags"].([]string)[0])
	require.Equal(t, true, orig["fields"].([]map[string]any)[0]["required"])
}

func TestCloneSettings_Nil(t *testing.T) {
	require.Nil(t, domain.CloneSettings(nil))
}

func TestDocumentClone(t *testing.T) {
	doc := domain.Document{
		Blocks: []domain.Block{{ID: "a", Type: domain.BlockTypeHero, Settings: domain.Settings{"title": "x"}}},
		Meta:   domain.Meta{Title: "T"},
	}
	cp := doc.Clone()
	cp.Blocks[0].Settings["title"] = "y"
	require.Equal(t, "x", doc.Blocks[0].Settings["title"])
	require.Equal(t, 0, doc.Index("a"))
	require.Equal(t, -1, doc.Index("missing"))
	require.Equal(t, 1, doc.Count(domain.BlockTypeHero))
}

func TestColors_ArrayAndObject(t *testing.T) {
	var a domain.Analysis
	require.NoError(t, json.Unmarshal([]byte(`{"colors":["#111","#222"]}`), &a))
	require.Equal(t, domain.Colors{"#111", "#222"}, a.Colors)

	var b domain.Analysis
	raw := `{"colors":{"background":"#000","primary":"#f00","textPrimary":"#fff","secondary":"#0f0"}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &b))
	require.Equal(t, domain.Colors{"#f00", "#0f0", "#000", "#fff"}, b.Colors)

	var c domain.Analysis
	require.Error(t, json.Unmarshal([]byte(`{"colors":42}`), &c))
}

func TestSection_SectionTitleAlias(t *testing.T) {
	var s domain.Section
	require.NoError(t, json.Unmarshal([]byte(`{"type":"features","sectionTitle":"Perché noi","features":[{"title":"A"}]}`), &s))
	require.Equal(t, "Perché noi", s.Title)
	require.Equal(t, domain.BlockTypeFeatures, s.Type)
	require.Len(t, s.Features, 1)

	var both domain.Section
	require.NoError(t, json.Unmarshal([]byte(`{"type":"hero","title":"Main","sectionTitle":"Alias"}`), &both))
	require.Equal(t, "Main", both.Title)
}
