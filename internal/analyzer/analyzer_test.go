package analyzer_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"landing/internal/analyzer"
	"landing/internal/domain"
)

func TestDecodeAnalysis_Fenced(t *testing.T) {
	raw := "Ecco l'analisi:\n```json\n" + `{
  "sections": [{"type":"hero","sectionTitle":"Allenati","ctas":[{"label":"Inizia","actionType":"form"}]}],
  "colors": {"primary":"#0ea5e9","background":"#0f172a"},
  "style": "sportivo",
  "tone": "energico"
}` + "\n```"
	a := analyzer.DecodeAnalysis(raw, zap.NewNop())
	require.Len(t, a.Sections, 1)
	require.Equal(t, "Allenati", a.Sections[0].Title)
	require.Equal(t, "Inizia", a.Sections[0].CTAs[0].Label)
	require.Equal(t, domain.Colors{"#0ea5e9", "#0f172a"}, a.Colors)
	require.Equal(t, "sportivo", a.Style)
}

func TestDecodeAnalysis_GarbageIsEmpty(t *testing.T) {
	a := analyzer.DecodeAnalysis("Mi dispiace, non riesco a vedere l'immagine.", zap.NewNop())
	require.Empty(t, a.Sections)
	require.Empty(t, a.Colors)
}

func TestDecodeAnalysis_WrongShapeIsEmpty(t *testing.T) {
	a := analyzer.DecodeAnalysis(`{"sections":"hero"}`, zap.NewNop())
	require.Empty(t, a.Sections)
}

func TestExtractText(t *testing.T) {
	page := `<html><head><title> Palestra Uno </title><style>.x{}</style></head>
<body><nav>Menu</nav><h1>Allenati   con noi</h1><script>var x = 1;</script>
<p>Prima lezione <b>gratis</b>.</p><ul><li>Corsi</li><li>Personal</li></ul></body></html>`
	pt, err := analyzer.ExtractText(strings.NewReader(page))
	require.NoError(t, err)
	require.Equal(t, "Palestra Uno", pt.Title)
	require.Contains(t, pt.Text, "Allenati con noi")
	require.Contains(t, pt.Text, "Prima lezione gratis .")
	require.NotContains(t, pt.Text, "var x")
	require.NotContains(t, pt.Text, ".x{}")
}

func TestPageFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.Error(w, "nope", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<title>Competitor</title><h2>Offerta</h2>"))
	}))
	defer srv.Close()

	f := analyzer.NewPageFetcher(srv.Client())
	pt, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "Competitor", pt.Title)
	require.Contains(t, pt.Text, "Offerta")

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "http 404")
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := analyzer.NewGemini(context.Background(), analyzer.GeminiConfig{}, nil)
	require.Error(t, err)
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	png := []byte("\x89PNG\r\n\x1a\n0000")

	named := filepath.Join(dir, "hero.png")
	require.NoError(t, os.WriteFile(named, png, 0o644))
	img, err := analyzer.LoadImage(named)
	require.NoError(t, err)
	require.Equal(t, "image/png", img.MIMEType)
	require.Equal(t, "hero.png", img.Name)

	sniffed := filepath.Join(dir, "capture")
	require.NoError(t, os.WriteFile(sniffed, png, 0o644))
	img, err = analyzer.LoadImage(sniffed)
	require.NoError(t, err)
	require.Equal(t, "image/png", img.MIMEType)

	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("hello"), 0o644))
	_, err = analyzer.LoadImages([]string{named, notes})
	require.Error(t, err)
}
