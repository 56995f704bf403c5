package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"landing/internal/catalog"
	"landing/internal/domain"
)

func TestDefaultsFor_Known(t *testing.T) {
	s := catalog.DefaultsFor(domain.BlockTypeHero)
	require.Equal(t, "Inizia Ora", s["ctaText"])
	require.Equal(t, "🚀", catalog.Glyph(domain.BlockTypeHero))
	require.Equal(t, "Hero Section", catalog.Name(domain.BlockTypeHero))
}

func TestDefaultsFor_UnknownDegrades(t *testing.T) {
	s := catalog.DefaultsFor("nonexistent")
	require.NotNil(t, s)
	require.Equal(t, domain.Settings{"title": "", "subtitle": ""}, s)
	require.Equal(t, "📦", catalog.Glyph("nonexistent"))
	require.Equal(t, "nonexistent", catalog.Name("nonexistent"))
	require.False(t, catalog.Known("nonexistent"))
}

func TestDefaultsFor_ReturnsPrivateCopy(t *testing.T) {
	a := catalog.DefaultsFor(domain.BlockTypeFeatures)
	a["items"].([]any)[0].(map[string]any)["title"] = "mutated"
	b := catalog.DefaultsFor(domain.BlockTypeFeatures)
	require.Equal(t, "Piano Personalizzato", b["items"].([]any)[0].(map[string]any)["title"])
}

func TestTypes_AllThirteen(t *testing.T) {
	types := catalog.Types()
	require.Len(t, types, 13)
	for _, typ := range types {
		require.True(t, catalog.Known(typ), typ)
	}
}

func TestLeadCaptureForm_PhoneOptional(t *testing.T) {
	fields := catalog.LeadCaptureForm()["fields"].([]any)
	require.Len(t, fields, 3)
	want := map[string]bool{"name": true, "email": true, "phone": false}
	for _, f := range fields {
		m := f.(map[string]any)
		require.Equal(t, want[m["id"].(string)], m["required"], m["id"])
	}
}

func TestCatalog_GetAndList(t *testing.T) {
	c := catalog.New(nil)
	tpl, err := c.Get("fitness")
	require.NoError(t, err)
	require.Len(t, tpl.Blocks, 8)
	require.Equal(t, domain.BlockTypeHero, tpl.Blocks[0].Type)

	coaching, err := c.Get("coaching")
	require.NoError(t, err)
	require.Equal(t, "split", coaching.Blocks[0].Settings["variant"])

	_, err = c.Get("unknown")
	require.True(t, errors.Is(err, catalog.ErrUnknownTemplate))

	list := c.List()
	require.Len(t, list, 5)
	require.Equal(t, "fitness", list[0].ID)
	require.Equal(t, "blank", list[4].ID)
	require.Empty(t, list[4].BlockTypes)
}

func TestCatalog_GetReturnsPrivateCopy(t *testing.T) {
	c := catalog.New(nil)
	a, _ := c.Get("fitness")
	a.Blocks[0].Settings["title"] = "mutated"
	b, _ := c.Get("fitness")
	require.NotEqual(t, "mutated", b.Blocks[0].Settings["title"])
}

func TestCatalog_LoadDirOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	yml := `name: Palestra
description: Override
preview: "💪"
blocks:
  - type: hero
    settings:
      title: Benvenuto
  - type: form
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fitness.yaml"), []byte(yml), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gym.yml"), []byte("name: Gym\nblocks:\n  - type: cta\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("blocks: [ {type: "), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	c := catalog.New(nil)
	n, err := c.LoadDir(dir)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	tpl, err := c.Get("fitness")
	require.NoError(t, err)
	require.Equal(t, "Palestra", tpl.Name)
	require.Len(t, tpl.Blocks, 2)
	require.Equal(t, "Benvenuto", tpl.Blocks[0].Settings["title"])
	// defaults fill keys the file leaves out
	require.Equal(t, "Inizia Ora", tpl.Blocks[0].Settings["ctaText"])

	list := c.List()
	require.Len(t, list, 6)
	require.Equal(t, "Palestra", list[0].Name)
	require.Equal(t, "gym", list[5].ID)
}

func TestParseTemplate_MissingType(t *testing.T) {
	_, err := catalog.ParseTemplate([]byte("blocks:\n  - settings: {title: x}\n"), "x")
	require.Error(t, err)
}
