package analyzer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	maxPageBytes = 2 << 20
	maxPageText  = 8000
)

// PageText is the readable content of a fetched competitor page.
type PageText struct {
	Title string
	Text  string
}

// PageFetcher downloads a page and reduces it to visible text.
type PageFetcher struct {
	client *http.Client
}

// NewPageFetcher returns a fetcher using client, or a 30s-timeout client when nil.
func NewPageFetcher(client *http.Client) *PageFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &PageFetcher{client: client}
}

// Fetch retrieves url and extracts its title and text.
func (f *PageFetcher) Fetch(ctx context.Context, url string) (*PageText, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "landing-analyzer/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return ExtractText(io.LimitReader(resp.Body, maxPageBytes))
}

// ExtractText parses HTML and returns the document title and visible text,
// skipping scripts, styles and navigation chrome. Headings start new lines.
func ExtractText(r io.Reader) (*PageText, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var (
		title string
		sb    strings.Builder
	)
	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		if depth > 64 {
			return
		}
		switch n.Type {
		case html.TextNode:
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "iframe", "svg", "template":
				return
			case "title":
				if n.FirstChild != nil && title == "" {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			case "h1", "h2", "h3", "h4", "p", "li", "section", "div", "br", "button":
				sb.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, depth+1)
		}
	}
	walk(doc, 0)

	lines := strings.Split(sb.String(), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	text := strings.Join(kept, "\n")
	if len(text) > maxPageText {
		n := maxPageText
		for n > 0 && !utf8.RuneStart(text[n]) {
			n--
		}
		text = text[:n] + "\n[...]"
	}
	return &PageText{Title: title, Text: text}, nil
}
