package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bjax13/CookbookClub/internal/application"
	"github.com/bjax13/CookbookClub/internal/config"
	"github.com/bjax13/CookbookClub/internal/datastore"
	httptransport "github.com/bjax13/CookbookClub/internal/http"
	"github.com/bjax13/CookbookClub/internal/logging"
	"github.com/bjax13/CookbookClub/internal/metrics"
	"github.com/bjax13/CookbookClub/internal/state"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Writer: os.Stdout})
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("failed to load .env file", "error", envErr)
	}

	cfg, err = applyFlags(cfg, os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.Error("invalid arguments", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg, logger); err != nil {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// applyFlags overrides environment settings with --host, --port, --data and
// --storage.
func applyFlags(cfg config.Config, args []string, output io.Writer) (config.Config, error) {
	flags := flag.NewFlagSet("cookbookclub-web", flag.ContinueOnError)
	flags.SetOutput(output)
	flags.StringVar(&cfg.HTTPHost, "host", cfg.HTTPHost, "listen host")
	flags.IntVar(&cfg.HTTPPort, "port", cfg.HTTPPort, "listen port")
	flags.StringVar(&cfg.DataPath, "data", cfg.DataPath, "data file path")
	flags.StringVar(&cfg.Storage, "storage", cfg.Storage, "storage backend: json or sqlite")
	if err := flags.Parse(args); err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

type app struct {
	handler http.Handler
	store   *datastore.Handle
}

func (a *app) Close() error {
	return a.store.Close()
}

// newApp opens storage, loads the workspace and assembles the router.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger, reg *prometheus.Registry) (*app, error) {
	kind, err := datastore.ParseKind(cfg.Storage)
	if err != nil {
		return nil, err
	}
	store, err := datastore.Open(ctx, datastore.Options{Kind: kind, Path: cfg.DataPath, SQLiteBusyTimeout: cfg.SQLiteBusyTimeout})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	clubMetrics := metrics.NewClubMetrics(reg)
	files := application.OSFileChecker{}
	factory := func(snapshot *state.Snapshot) *application.Service {
		return application.NewServiceWithLogger(snapshot, files, time.Now, logger).WithMetrics(clubMetrics)
	}
	workspace, err := application.OpenWorkspace(ctx, store, factory)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load club state: %w", err)
	}

	storage := httptransport.StorageInfo{Kind: string(store.Kind()), DataFile: store.Path()}
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Club:          httptransport.NewClubHandler(workspace, storage, logger),
		Meetups:       httptransport.NewMeetupHandler(workspace, logger),
		Recipes:       httptransport.NewRecipeHandler(workspace, logger),
		Notifications: httptransport.NewNotificationHandler(workspace, logger),
		Metrics:       promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.ObserveRequests(metrics.NewHTTPMetrics(reg)),
		},
		Logger: logger,
	})
	return &app{handler: router, store: store}, nil
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := newApp(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.HTTPHost, strconv.Itoa(cfg.HTTPPort)),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("cookbook club web listening", "addr", server.Addr, "storage", a.store.Kind(), "data_file", a.store.Path())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
