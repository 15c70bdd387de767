package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/archgram/archgram/internal/application"
	apppipeline "github.com/archgram/archgram/internal/application/pipeline"
	appviews "github.com/archgram/archgram/internal/application/views"
	"github.com/archgram/archgram/internal/config"
	"github.com/archgram/archgram/internal/domain/pipeline"
	"github.com/archgram/archgram/internal/extract"
	openaiclient "github.com/archgram/archgram/internal/infra/ai/openai"
	"github.com/archgram/archgram/internal/infra/docparse"
	"github.com/archgram/archgram/internal/infra/httpserver"
	memledger "github.com/archgram/archgram/internal/infra/ledger/memory"
	mysqlledger "github.com/archgram/archgram/internal/infra/ledger/mysql"
	pgledger "github.com/archgram/archgram/internal/infra/ledger/postgres"
	renderclient "github.com/archgram/archgram/internal/infra/render"
	minioStore "github.com/archgram/archgram/internal/infra/storage"
	"github.com/archgram/archgram/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	// ledger backend
	var (
		ledger  pipeline.Ledger
		dbCheck middleware.HealthChecker
	)
	switch cfg.Ledger.Driver {
	case "mysql":
		db, err := mysqlledger.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("mysql connect error")
		}
		defer db.Close()
		ledger = mysqlledger.NewLedger(db)
		dbCheck = &middleware.DatabaseHealthChecker{DB: db}
	case "postgres":
		db, err := pgledger.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connect error")
		}
		defer db.Close()
		ledger = pgledger.NewLedger(db)
		dbCheck = &middleware.DatabaseHealthChecker{DB: db}
	default:
		ledger = memledger.NewLedger()
	}

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("minio init error")
	}

	// init model client and extractor
	gen := openaiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	extractor := extract.NewExtractor(gen)

	// init diagram renderer
	renderer := renderclient.NewClient(
		cfg.Renderer.Endpoint,
		time.Duration(cfg.Renderer.TimeoutSeconds)*time.Second,
	)

	// init services
	pipeSvc := &apppipeline.Service{
		Extractor: extractor,
		Docs:      &docparse.Parser{},
		Renderer:  renderer,
		Ledger:    ledger,
		Artifacts: store,
		Clock:     application.SystemClock{},
		Log:       log,
	}
	viewSvc := &appviews.Service{
		Ledger:    ledger,
		Extractor: extractor,
	}

	checkers := map[string]middleware.HealthChecker{
		"storage": middleware.CheckerFunc(store.Check),
	}
	if dbCheck != nil {
		checkers["database"] = dbCheck
	}

	// init router
	mux := chi.NewRouter()
	mux.Use(middleware.Logging(log))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimit(30, 10))
	mux.Mount("/", httpserver.NewRouter(pipeSvc, viewSvc, store, httpserver.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DefaultRegion:  cfg.Defaults.Region,
		Health:         middleware.HealthHandler(checkers),
		Log:            log,
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 30 * time.Second,
		// generate responses stream for as long as the pipeline runs
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

func newLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	var w = os.Stderr
	if format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(lvl).With().Timestamp().Logger()
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
