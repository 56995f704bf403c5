package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"landing/internal/analyzer"
	"landing/internal/assistant"
	"landing/internal/catalog"
	"landing/internal/config"
	"landing/internal/editor"
	"landing/internal/plugins"
	"landing/internal/secret"
	"landing/internal/service"
	"landing/internal/storage"
	"landing/internal/synth"
)

// ErrNoAnalyzer is returned by features that need the content analyzer when
// no API key is configured.
var ErrNoAnalyzer = errors.New("analyzer not configured (set analyzer.api_key, the keychain entry or GEMINI_API_KEY)")

// App holds the wired services of one process: the CLI commands and the MCP
// server are both built on it.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	stores   *storage.Stores
	catalog  *catalog.Catalog
	emitter  service.EventEmitter
	pages    *service.PageService
	synth    *service.SynthesisService // nil without analyzer
	chat     *assistant.Chat           // nil without analyzer
	schedule *service.ScheduleService  // nil without analyzer
}

// Option customizes New.
type Option func(*options)

type options struct {
	analyzer analyzer.Analyzer
	model    analyzer.Completer
	secrets  secret.SecretStore
	emitter  service.EventEmitter
}

// WithAnalyzer replaces the Gemini analyzer and completer.
func WithAnalyzer(a analyzer.Analyzer, m analyzer.Completer) Option {
	return func(o *options) { o.analyzer, o.model = a, m }
}

// WithSecrets replaces the secret store used to find the API key.
func WithSecrets(s secret.SecretStore) Option {
	return func(o *options) { o.secrets = s }
}

// WithEmitter adds an event listener next to the log emitter.
func WithEmitter(e service.EventEmitter) Option {
	return func(o *options) { o.emitter = e }
}

// New opens storage and builds every service from cfg. Analyzer-backed
// services are left nil when no API key can be found.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{secrets: secret.Chain{secret.NewKeychainStore(), secret.NewEnvStore("LANDING_")}}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.Storage.Driver == "sqlite" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	stores, err := storage.Open(ctx, cfg.Storage.Driver, cfg.DSN(), cfg.Storage.Database)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, logger: logger, stores: stores}

	a.catalog = catalog.New(logger.Named("catalog"))
	if cfg.TemplatesDir != "" {
		if _, err := a.catalog.LoadDir(cfg.TemplatesDir); err != nil {
			logger.Warn("templates dir not loaded", zap.String("dir", cfg.TemplatesDir), zap.Error(err))
		}
	}

	reg := editor.NewPluginRegistry()
	plugins.Register(reg, nil)
	ed := editor.New(editor.WithPlugins(reg))

	a.emitter = service.LogEmitter{Logger: logger.Named("events")}
	if o.emitter != nil {
		a.emitter = service.MultiEmitter{a.emitter, o.emitter}
	}
	a.pages = service.NewPageService(stores.Pages, stores.Revisions, a.catalog, ed, a.emitter, logger.Named("pages"))

	an, model := o.analyzer, o.model
	if an == nil {
		gem, err := a.newGemini(ctx, o.secrets)
		if err != nil {
			logger.Info("analyzer disabled", zap.Error(err))
		} else {
			an, model = gem, gem
		}
	}
	if an != nil {
		pipeline := synth.NewPipeline(an, cfg.Analyzer.MaxScreenshots, logger.Named("synth"))
		a.synth = service.NewSynthesisService(pipeline, a.pages, a.emitter, logger.Named("synth"))
		a.schedule = service.NewScheduleService(a.synth, a.emitter, logger.Named("watch"))
	}
	if model != nil {
		a.chat = assistant.NewChat(model, logger.Named("assistant"))
	}
	return a, nil
}

func (a *App) newGemini(ctx context.Context, secrets secret.SecretStore) (*analyzer.Gemini, error) {
	key, err := a.cfg.ResolveAPIKey(secrets)
	if err != nil {
		return nil, err
	}
	return analyzer.NewGemini(ctx, analyzer.GeminiConfig{
		APIKey:  key,
		Model:   a.cfg.Analyzer.Model,
		Timeout: a.cfg.Analyzer.Timeout.Duration,
	}, a.logger.Named("gemini"))
}

func (a *App) Close() error {
	if a.schedule != nil {
		a.schedule.Stop()
	}
	return a.stores.Close()
}

func (a *App) Config() *config.Config { return a.cfg }
func (a *App) Logger() *zap.Logger { return a.logger }
func (a *App) Pages() *service.PageService { return a.pages }
func (a *App) Catalog() *catalog.Catalog { return a.catalog }
func (a *App) Approvals() storage.ApprovalStore { return a.stores.Approvals }

// Synthesis returns the synthesis service or ErrNoAnalyzer.
func (a *App) Synthesis() (*service.SynthesisService, error) {
	if a.synth == nil {
		return nil, ErrNoAnalyzer
	}
	return a.synth, nil
}

// Chat returns the page assistant or ErrNoAnalyzer.
func (a *App) Chat() (*assistant.Chat, error) {
	if a.chat == nil {
		return nil, ErrNoAnalyzer
	}
	return a.chat, nil
}

// Schedule returns the watch scheduler or ErrNoAnalyzer.
func (a *App) Schedule() (*service.ScheduleService, error) {
	if a.schedule == nil {
		return nil, ErrNoAnalyzer
	}
	return a.schedule, nil
}

// WatchTemplates reloads the templates dir on change until ctx ends. It
// does nothing when no templates dir is configured.
func (a *App) WatchTemplates(ctx context.Context) {
	dir := a.cfg.TemplatesDir
	if dir == "" {
		return
	}
	go func() {
		if err := a.catalog.Watch(ctx, dir); err != nil {
			a.logger.Warn("template watch stopped", zap.String("dir", dir), zap.Error(err))
		}
	}()
}
