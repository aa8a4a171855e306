package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/eshop/internal/cache"
	"github.com/Skotchmaster/eshop/internal/config"
	"github.com/Skotchmaster/eshop/internal/db"
	"github.com/Skotchmaster/eshop/internal/events"
	"github.com/Skotchmaster/eshop/internal/httpserver"
	"github.com/Skotchmaster/eshop/internal/images"
	"github.com/Skotchmaster/eshop/internal/logging"
	"github.com/Skotchmaster/eshop/internal/middleware/auth"
	"github.com/Skotchmaster/eshop/internal/repo"
	"github.com/Skotchmaster/eshop/internal/search"
	"github.com/Skotchmaster/eshop/internal/service"
	"github.com/Skotchmaster/eshop/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	// prices and totals go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	store := &repo.GormRepo{DB: gdb}
	issuer := tokens.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTTTL)

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers)
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	catalog := &service.CatalogService{
		Store:         store,
		Events:        publisher,
		PublicBaseURL: cfg.PublicBaseURL,
	}

	uploadDir := ""
	switch cfg.UploadBackend {
	case "gcs":
		gcs, err := images.NewGCSClient(context.Background(), cfg.GCSCredsPath)
		if err != nil {
			log.Fatalf("gcs client: %v", err)
		}
		defer gcs.Close()
		catalog.Images = &images.GCSStore{Client: gcs, Bucket: cfg.GCSBucket, Prefix: "products"}
	default:
		local, err := images.NewLocalStore(cfg.UploadDir)
		if err != nil {
			log.Fatalf("upload dir: %v", err)
		}
		catalog.Images = local
		uploadDir = cfg.UploadDir
	}

	if cfg.ESURL != "" {
		sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
		esClient, err := search.NewClient(sctx, search.Config{URL: cfg.ESURL, Username: cfg.ESUser, Password: cfg.ESPassword})
		if err == nil {
			ix := &search.Index{ES: esClient, Name: cfg.ESProductsIndex}
			err = ix.EnsureIndex(sctx)
			if err == nil {
				catalog.Search = ix
				logger.Info("search_enabled", "index", cfg.ESProductsIndex)
			}
		}
		scancel()
		if err != nil {
			logger.Warn("search_disabled", "error", err)
		}
	}

	if cfg.RedisAddr != "" {
		rctx, rcancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := cache.NewClient(rctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		rcancel()
		if err != nil {
			logger.Warn("cache_disabled", "error", err)
		} else {
			defer rdb.Close()
			catalog.Cache = cache.NewProductCache(rdb, cfg.CacheTTL)
			logger.Info("cache_enabled", "addr", cfg.RedisAddr)
		}
	}

	e := httpserver.New(logger, cfg.CORSAllowedOrigins)
	httpserver.Register(e, &httpserver.Deps{
		Base:      cfg.APIURL,
		Catalog:   catalog,
		Orders:    &service.OrderService{Store: store, Events: publisher},
		Users:     &service.UserService{Store: store, Tokens: issuer, Events: publisher},
		Verifier:  issuer,
		Policy:    auth.AdminOnly,
		UploadDir: uploadDir,
		Ready:     func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr, "api", cfg.APIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdown(logger, srv, publisher, gdb)
}

func shutdown(logger *slog.Logger, srv *http.Server, publisher events.Publisher, gdb *gorm.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Warn("kafka_close_failed", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Warn("db_close_failed", "error", err)
	}
	logger.Info("server_stopped")
}
