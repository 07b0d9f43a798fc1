package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/elarion-web/internal/catalog"
	"finitefield.org/elarion-web/internal/config"
	"finitefield.org/elarion-web/internal/i18n"
	"finitefield.org/elarion-web/internal/observability"
	"finitefield.org/elarion-web/internal/storefront"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "web: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		addr     string
		tmplPath string
		pubPath  string
		envFile  string
	)
	flag.StringVar(&addr, "addr", "", "HTTP listen address (overrides ELARION_WEB_PORT)")
	flag.StringVar(&tmplPath, "templates", "", "templates directory")
	flag.StringVar(&pubPath, "public", "", "public assets directory")
	flag.StringVar(&envFile, "env-file", ".env", "dotenv file with local overrides")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, config.WithEnvFile(envFile))
	if err != nil {
		return err
	}
	if tmplPath != "" {
		cfg.Paths.Templates = tmplPath
	}
	if pubPath != "" {
		cfg.Paths.Public = pubPath
	}
	if addr == "" {
		addr = cfg.Addr()
	}

	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cat, err := catalog.LoadFile(cfg.Storefront.CatalogFile)
	if err != nil {
		return err
	}
	bundle, err := i18n.Load(localesDir(cfg), cfg.Storefront.DefaultLocale, []string{"en", "fr"})
	if err != nil {
		return err
	}
	inst, err := observability.NewInstruments()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	reg := storefront.NewRegistry(cat,
		storefront.OptionsFrom(cfg.Storefront, logger, inst),
		storefront.WithIdleTTL(cfg.Session.IdleTTL),
		storefront.WithMaxSessions(cfg.Session.MaxSessions),
	)
	a, err := newApp(cfg, logger, cat, bundle, reg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("web listening",
			zap.String("addr", addr),
			zap.Bool("devMode", a.devMode),
			zap.Int("products", cat.Len()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return reg.Run(gctx, cfg.Session.SweepInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		logger.Info("web stopped")
		return nil
	})
	return g.Wait()
}

// localesDir returns the override directory only when it exists; otherwise
// the embedded translations are used.
func localesDir(cfg config.Config) string {
	if fi, err := os.Stat(cfg.Paths.Locales); err == nil && fi.IsDir() {
		return cfg.Paths.Locales
	}
	return ""
}
