package main

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/elarion-web/internal/catalog"
	"finitefield.org/elarion-web/internal/config"
	handlersPkg "finitefield.org/elarion-web/internal/handlers"
	"finitefield.org/elarion-web/internal/i18n"
	mw "finitefield.org/elarion-web/internal/middleware"
	"finitefield.org/elarion-web/internal/seo"
	"finitefield.org/elarion-web/internal/storefront"
)

// app holds everything the handlers share.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	catalog  *catalog.Catalog
	bundle   *i18n.Bundle
	registry *storefront.Registry
	sessions *mw.SessionStore

	templatesDir string
	publicDir    string
	// devMode reparses templates on every render.
	devMode   bool
	tmplCache *template.Template
}

func newApp(cfg config.Config, logger *zap.Logger, cat *catalog.Catalog, bundle *i18n.Bundle, reg *storefront.Registry) (*app, error) {
	sessions, err := mw.NewSessionStore([]byte(cfg.Session.SigningKey), cfg.Production())
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:          cfg,
		logger:       logger,
		catalog:      cat,
		bundle:       bundle,
		registry:     reg,
		sessions:     sessions,
		templatesDir: cfg.Paths.Templates,
		publicDir:    cfg.Paths.Public,
		devMode:      cfg.Server.Dev,
	}
	if !a.devMode {
		tc, err := a.parseTemplates()
		if err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}
		a.tmplCache = tc
	}
	return a, nil
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// RealIP trusts X-Forwarded-For; only deploy behind a proxy that sets it.
	r.Use(middleware.RealIP)
	r.Use(mw.HTMX)
	r.Use(a.sessions.Session)
	r.Use(mw.Locale(a.bundle))
	r.Use(mw.CSRF)
	r.Use(mw.VaryLocale)
	r.Use(mw.Logger(a.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/assets/*", mw.AssetsWithCache(os.DirFS(filepath.Join(a.publicDir, "assets")), "/assets"))

	r.Group(func(r chi.Router) {
		r.Use(mw.Storefront(a.registry))
		r.Get("/", a.homeHandler)
		r.Get("/fragments/products", a.productsFrag)
		r.Get("/fragments/intro", a.introFrag)
		r.Post("/cart/items", a.addToCartHandler)
		r.Post("/events/scroll", a.scrollHandler)
		r.Get("/checkout/open", a.checkoutOpenHandler)
		r.Post("/checkout/open", a.checkoutOpenHandler)
		r.Get("/checkout/close", a.checkoutCloseHandler)
		r.Post("/checkout/close", a.checkoutCloseHandler)
		r.Post("/checkout", a.checkoutSubmitHandler)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		mw.WriteError(w, r, http.StatusNotFound, a.bundle.T(mw.Lang(r), "error.not_found"))
	})
	return r
}

func (a *app) funcMap() template.FuncMap {
	return template.FuncMap{
		"t":  a.bundle.T,
		"tf": a.bundle.Tf,
		"hxHeaders": func(token string) template.HTMLAttr {
			return template.HTMLAttr(`hx-headers='` + handlersPkg.HXHeaders(token) + `'`)
		},
		"join": strings.Join,
		"now":  time.Now,
	}
}

func (a *app) parseTemplates() (*template.Template, error) {
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(a.templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", a.templatesDir)
	}
	return template.New("_root").Funcs(a.funcMap()).ParseFiles(files...)
}

func (a *app) templates() (*template.Template, error) {
	if a.devMode {
		return a.parseTemplates()
	}
	if a.tmplCache == nil {
		return nil, fmt.Errorf("template not initialized")
	}
	return a.tmplCache, nil
}

// render executes the named templates in order into one response.
func (a *app) render(w http.ResponseWriter, r *http.Request, status int, data any, names ...string) {
	t, err := a.templates()
	if err != nil {
		a.logger.Error("template parse", zap.Error(err))
		http.Error(w, fmt.Sprintf("template parse error: %v", err), http.StatusInternalServerError)
		return
	}
	var buf strings.Builder
	for _, name := range names {
		if err := t.ExecuteTemplate(&buf, name, data); err != nil {
			a.logger.Error("template exec", zap.String("template", name), zap.Error(err))
			http.Error(w, fmt.Sprintf("template exec error: %v", err), http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

func (a *app) pageMeta(r *http.Request, lang string) seo.Meta {
	title := a.bundle.T(lang, "meta.title")
	desc := a.bundle.T(lang, "meta.description")
	var hero string
	if products := a.catalog.Products(); len(products) > 0 {
		hero = products[0].Image
	}
	meta := seo.PageMeta(baseURL(r), title, desc, hero, a.bundle.Supported())
	brand := a.bundle.T(lang, "brand")
	meta.JSONLD = append(meta.JSONLD,
		seo.JSON(seo.Organization(brand, meta.Canonical, "")),
		seo.JSON(seo.WebSite(brand, meta.Canonical, meta.Canonical+"?q=")),
		seo.JSON(seo.ItemList(a.bundle.T(lang, "collection.title"), handlersPkg.Offers(a.catalog.Products()))),
	)
	return meta
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
