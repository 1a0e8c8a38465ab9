package service

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"storyline/app/cache"
	"storyline/app/cms"
	"storyline/app/config"
	"storyline/app/controllers"
	"storyline/app/form"
	"storyline/app/render"
	"storyline/app/repositories"
	"storyline/app/routes"
	"storyline/app/services"
	"storyline/app/views"

	"github.com/gorilla/mux"
)

const shutdownTimeout = 10 * time.Second

// errUnsafeSlug marks a slug that cannot be used as one path element.
var errUnsafeSlug = errors.New("slug is not a safe file name")

// App is the wired application for one configuration.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     *repositories.Store
	CMS       cms.Client
	Pages     *services.PageService
	Comments  *services.CommentService
	Cache     *cache.Cache
	Templates map[string]*template.Template
	Router    *mux.Router

	closers []func() error
}

// NewApp opens the configured content backend and page cache store and
// builds the router.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	switch cfg.CMSBackend {
	case config.BackendHTTP:
		app.CMS = cms.NewHTTPClient(cfg, &http.Client{Timeout: cfg.GenerateTimeout})
	default:
		store, err := repositories.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		app.Store = store
		app.closers = append(app.closers, store.Close)
		app.CMS = cms.NewLocalClient(store)
	}

	var pageStore cache.Store
	switch cfg.CacheBackend {
	case config.CacheRedis:
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, client.Close)
		pageStore = cache.NewRedisStore(client)
	default:
		pageStore = cache.NewMemoryStore()
	}

	templates, err := views.Load()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	app.Templates = templates

	images := render.ImageURLBuilder{ProjectID: cfg.ProjectID, Dataset: cfg.Dataset}
	app.Pages = services.NewPageService(app.CMS, render.NewSerializer(images, logger), logger)
	app.Comments = services.NewCommentService(app.CMS)
	app.Cache = cache.New(pageStore, app.Pages.Load, cfg.Revalidate(),
		cache.WithTimeout(cfg.GenerateTimeout),
		cache.WithLogger(logger),
	)

	posts := controllers.NewPostController(app.Pages, app.Cache, &form.ServiceSubmitter{Comments: app.Comments}, templates, logger)
	comments := controllers.NewCommentController(app.Comments, logger)
	app.Router = routes.Setup(posts, comments, routes.Options{
		AllowedOrigins: cfg.Origins(),
		Logger:         logger,
	})
	return app, nil
}

// Close waits for background regenerations and releases the backends.
func (a *App) Close() error {
	if a.Cache != nil {
		a.Cache.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Prerender fills the page cache for every discovered path.
func (a *App) Prerender(ctx context.Context) (*services.PrerenderResult, error) {
	return a.Pages.Prerender(ctx, func(ctx context.Context, slug string) error {
		_, err := a.Cache.Refresh(ctx, slug)
		return err
	})
}

// Serve prerenders, then serves on ln until ctx is done and shuts down
// gracefully.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	if _, err := a.Prerender(ctx); err != nil {
		a.Logger.Warn("prerender skipped", "error", err)
	}

	srv := &http.Server{
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		a.Logger.Info("listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.Logger.Info("server stopped")
	return nil
}

// Build writes every page to dir/post/<slug>/index.html with the static
// assets under dir/static. It reports the slugs that failed.
func (a *App) Build(ctx context.Context, dir string) (*services.PrerenderResult, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	result, err := a.Pages.Prerender(ctx, func(ctx context.Context, slug string) error {
		if !filepath.IsLocal(slug) || strings.ContainsAny(slug, `/\`) {
			return fmt.Errorf("%w: %q", errUnsafeSlug, slug)
		}
		page, err := a.Pages.Generate(ctx, slug)
		if err != nil {
			return err
		}
		return a.writePage(filepath.Join(dir, "post", slug, "index.html"), page)
	})
	if err != nil {
		return nil, err
	}

	staticDir := filepath.Join(dir, "static")
	if err := os.RemoveAll(staticDir); err != nil {
		return nil, err
	}
	if err := os.CopyFS(staticDir, views.Assets()); err != nil {
		return nil, fmt.Errorf("failed to copy static assets: %w", err)
	}
	return result, nil
}

func (a *App) writePage(path string, page *services.Page) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := a.Templates[views.Show].ExecuteTemplate(f, "layout", views.ShowData{Page: page}); err != nil {
		f.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return f.Close()
}
