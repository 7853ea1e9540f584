package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	annotationevents "pinboard/internal/annotation/events"
	annotationhttp "pinboard/internal/annotation/http"
	annotationservice "pinboard/internal/annotation/service"
	authhttp "pinboard/internal/auth/http"
	authservice "pinboard/internal/auth/service"
	"pinboard/internal/common/clock"
	"pinboard/internal/common/config"
	commoncrypto "pinboard/internal/common/crypto"
	commonhttp "pinboard/internal/common/http"
	"pinboard/internal/common/logger"
	srv "pinboard/internal/common/server"
	"pinboard/internal/session"
	"pinboard/internal/storage"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(os.Getenv("LOG_DIR"), "pinboard", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg := config.Load()

	clk := clock.NewRealClock()
	hasher := &commoncrypto.BcryptHasher{}
	idGenerator := &commoncrypto.UUIDGenerator{}

	store, err := storage.Open(cfg.DataFile, clk, log)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	if err := store.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword, hasher, idGenerator); err != nil {
		log.Fatalf("failed to bootstrap admin account: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := session.NewRegistry(ctx, clk, cfg.SessionTTL, log)

	hub := annotationevents.NewHub(log)
	go hub.Run(ctx)

	authSvc := authservice.NewAuthService(store, registry, hasher, idGenerator, log)
	annotationSvc := annotationservice.NewService(store, idGenerator, clk, hub, log)

	authHandler := authhttp.NewHandler(authSvc, cfg, log)
	annotationHandler := session.Middleware(registry, log)(annotationhttp.NewHandler(annotationSvc, hub, cfg, log))

	mux := http.NewServeMux()
	mux.Handle("/api/login", authHandler)
	mux.Handle("/api/logout", authHandler)
	mux.Handle("/api/annotations", annotationHandler)
	mux.Handle("/api/annotations/", annotationHandler)
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", http.FileServer(http.Dir(cfg.PublicDir)))

	rateLimiter := commonhttp.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	baseHandler := commonhttp.BuildBaseHandler(log, mux)
	finalHandler := rateLimiter.Middleware("/api/login", "/health", "/metrics")(baseHandler)

	serverConfig := srv.DefaultServerConfig(cfg.HTTPPort)
	server := srv.NewServer(serverConfig, finalHandler)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Infof("stopping session registry and event feed")
			registry.Close()
			rateLimiter.Stop()
			cancel()
			return nil
		},
		func(ctx context.Context) error {
			log.Infof("flushing store")
			return store.Flush()
		},
	}

	srv.StartWithGracefulShutdownAndHooks(server, log, "pinboard", shutdownHooks)
}
