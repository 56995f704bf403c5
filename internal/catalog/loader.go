package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func isTemplateFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// ParseTemplate decodes one YAML template. The id defaults to fallbackID.
// Block settings are applied over the registry defaults of their type.
func ParseTemplate(data []byte, fallbackID string) (Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Template{}, fmt.Errorf("parse template: %w", err)
	}
	if t.ID == "" {
		t.ID = fallbackID
	}
	if t.ID == "" {
		return Template{}, fmt.Errorf("parse template: missing id")
	}
	if t.Name == "" {
		t.Name = t.ID
	}
	blocks := make([]TemplateBlock, 0, len(t.Blocks))
	for i, b := range t.Blocks {
		if b.Type == "" {
			return Template{}, fmt.Errorf("parse template %s: block %d has no type", t.ID, i)
		}
		blocks = append(blocks, block(b.Type, b.Settings))
	}
	t.Blocks = blocks
	return t, nil
}

// LoadDir replaces the directory templates with every *.yaml / *.yml file in
// dir. Files that fail to parse are logged and skipped. Returns the number of
// templates loaded.
func (c *Catalog) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read templates dir: %w", err)
	}
	set := make(map[string]Template)
	for _, e := range entries {
		if e.IsDir() || !isTemplateFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			c.logger.Warn("template read failed", zap.String("path", path), zap.Error(err))
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		t, err := ParseTemplate(data, id)
		if err != nil {
			c.logger.Warn("template skipped", zap.String("path", path), zap.Error(err))
			continue
		}
		set[t.ID] = t
	}
	c.replaceLoaded(set)
	c.logger.Info("templates loaded", zap.String("dir", dir), zap.Int("count", len(set)))
	return len(set), nil
}

// Watch loads dir and reloads it whenever a template file changes, until ctx
// is cancelled. Bursts of events are debounced.
func (c *Catalog) Watch(ctx context.Context, dir string) error {
	if _, err := c.LoadDir(dir); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isTemplateFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(500*time.Millisecond, func() {
				if _, err := c.LoadDir(dir); err != nil {
					c.logger.Warn("template reload failed", zap.Error(err))
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("template watcher error", zap.Error(err))
		}
	}
}
