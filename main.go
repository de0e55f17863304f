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

	"blog/account"
	"blog/config"
	"blog/constants"
	"blog/demo"
	"blog/logging"
	"blog/metrics"
	"blog/server"
	"blog/site"
	"blog/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/docgen"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a config file (default: ./blog.yaml or /etc/blog/blog.yaml)")
		routes     = flag.Bool("routes", false, "print the API routes as markdown and exit")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if err := run(cfg, sugar, *routes); err != nil {
		sugar.Fatalw("blog stopped", "error", err)
	}
}

func run(cfg *config.Config, sugar *zap.SugaredLogger, printRoutes bool) error {
	verifier, err := account.NewVerifier(cfg.Account)
	if err != nil {
		return err
	}

	if printRoutes {
		fmt.Println(docgen.MarkdownRoutesDoc(server.New(verifier, sugar).Routes(), docgen.MarkdownOpts{
			ProjectPath: "blog",
			Intro:       "Routes served by the blog API.",
		}))
		return nil
	}

	m, err := metrics.New(constants.SERVICE_NAME)
	if err != nil {
		return err
	}

	ctx := context.Background()

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			sugar.Errorw("failed to close storage", "error", err)
		}
	}()

	demoAPI, err := demo.New(ctx, store, verifier, demo.WithLatency(cfg.DemoLatency), demo.WithLogger(sugar))
	if err != nil {
		return err
	}

	diagRouter := chi.NewRouter()
	diagRouter.Get("/metrics", m.ServeHTTP)

	servers := []*http.Server{
		newHTTPServer(cfg.APIAddr, server.New(verifier, sugar).Routes(m.Middleware("api"))),
		newHTTPServer(cfg.Addr, site.New(cfg, store, demoAPI, sugar).Routes(m.Middleware("site"))),
		newHTTPServer(cfg.DiagAddr, diagRouter),
	}

	errs := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			sugar.Infow("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- fmt.Errorf("server on %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received or a listener dies
	select {
	case sig := <-signals:
		sugar.Infow("shutting down gracefully", "signal", sig.String())
	case err = <-errs:
		sugar.Errorw("listener failed, shutting down", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			sugar.Errorw("shutdown failed", "addr", srv.Addr, "error", serr)
		}
	}

	return err
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  time.Minute,
	}
}
