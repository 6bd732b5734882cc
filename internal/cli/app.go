package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/dyike/DepotGo/config"
	"github.com/dyike/DepotGo/internal/api"
	"github.com/dyike/DepotGo/internal/handlers"
	"github.com/dyike/DepotGo/internal/logging"
	"github.com/dyike/DepotGo/internal/storage"
	"github.com/dyike/DepotGo/internal/view"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	debug      bool
	baseURL    string
	accessCode string
	html       bool
}

// app carries the resolved configuration and, once opened, the clients and
// handlers of one command invocation.
type app struct {
	opts    globalOptions
	out     io.Writer
	in      io.Reader
	logger  *zap.Logger
	manager *config.Manager
	cfg     config.Config

	page     *view.Page
	term     *view.Terminal
	client   *api.Client
	store    *storage.Store
	recorder *storage.Recorder
	journal  storage.Journal

	stock  *handlers.StockPoller
	orders *handlers.OrderSubmitter
	signup *handlers.SignupSubmitter
	upload *handlers.UploadSubmitter
}

// loadConfig resolves the configuration: file, then DEPOT_* environment,
// then flags. JSON files are owned by a config.Manager so they can be
// edited and watched; YAML and TOML files are read once. A lenient load
// skips validation.
func (a *app) loadConfig(lenient bool) error {
	logger, err := logging.New(a.opts.debug)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.logger = logger

	path := a.opts.configPath
	ext := strings.ToLower(filepath.Ext(path))
	if path != "" && ext != "" && ext != ".json" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		a.cfg = *cfg
	} else {
		opts := []config.ManagerOption{
			config.WithConfigPath(path),
			config.WithLogger(a.logger),
		}
		if lenient {
			opts = append(opts, config.SkipValidation())
		}
		manager, err := config.NewManager(opts...)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		a.manager = manager
		a.cfg = manager.Get()
	}

	a.cfg = a.resolve(a.cfg)
	if a.cfg.Debug && !a.opts.debug {
		if logger, err := logging.New(true); err == nil {
			a.logger = logger
		}
	}
	if lenient {
		return nil
	}
	return a.cfg.Validate()
}

// resolve layers environment and flag overrides over a file config.
func (a *app) resolve(cfg config.Config) config.Config {
	cfg.ApplyEnv()
	if a.opts.baseURL != "" {
		cfg.Endpoint.BaseURL = a.opts.baseURL
	}
	if a.opts.accessCode != "" {
		cfg.Endpoint.AccessCode = a.opts.accessCode
	}
	if a.opts.debug {
		cfg.Debug = true
	}
	return cfg
}

// open builds the client, page and handlers. With stream set every page
// update is printed as it happens.
func (a *app) open(stream bool) {
	a.page = view.NewPage()
	a.term = view.NewTerminal(a.out)
	if stream {
		a.term.Attach(a.page)
	}

	a.journal = storage.Discard
	if a.cfg.HistoryEnabled {
		if err := a.openJournal(); err != nil {
			a.logger.Warn("history disabled", zap.Error(err))
		}
	}

	a.client = api.NewClient(api.OptionsFromConfig(a.cfg), a.logger)
	a.stock = handlers.NewStockPoller(a.client, a.page, a.logger, a.journal)
	a.orders = handlers.NewOrderSubmitter(a.client, a.stock, a.logger, a.journal)
	a.signup = handlers.NewSignupSubmitter(a.client, a.page, a.logger, a.journal)
	a.upload = handlers.NewUploadSubmitter(a.client, a.page,
		handlers.UploadOptionsFromConfig(a.cfg.Upload), a.logger, a.journal)
}

func (a *app) openJournal() error {
	store, err := storage.OpenConfigured(&a.cfg)
	if err != nil {
		return err
	}
	recorder, err := storage.NewRecorder(store, a.logger)
	if err != nil {
		store.Close()
		return err
	}
	a.store = store
	a.recorder = recorder
	a.journal = recorder
	return nil
}

// reload swaps in a new configuration, rebuilding the client and handlers
// while keeping the page and journal.
func (a *app) reload(cfg config.Config) {
	a.cfg = a.resolve(cfg)
	a.client = api.NewClient(api.OptionsFromConfig(a.cfg), a.logger)
	a.stock = handlers.NewStockPoller(a.client, a.page, a.logger, a.journal)
	a.orders = handlers.NewOrderSubmitter(a.client, a.stock, a.logger, a.journal)
	a.signup = handlers.NewSignupSubmitter(a.client, a.page, a.logger, a.journal)
	a.upload = handlers.NewUploadSubmitter(a.client, a.page,
		handlers.UploadOptionsFromConfig(a.cfg.Upload), a.logger, a.journal)
}

// finish prints the HTML rendering when requested and releases resources.
func (a *app) finish() error {
	defer a.close()
	if !a.opts.html || a.page == nil {
		return nil
	}
	out, err := view.RenderHTML(a.page)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, out)
	return nil
}

func (a *app) close() {
	if a.recorder != nil {
		a.recorder.Close()
		a.recorder = nil
	}
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// run opens a session, executes fn and always finishes it. An error from fn
// takes precedence over a rendering error.
func (a *app) run(ctx context.Context, stream bool, fn func(ctx context.Context) error) error {
	a.open(stream)
	err := fn(ctx)
	if ferr := a.finish(); err == nil {
		err = ferr
	}
	return err
}
