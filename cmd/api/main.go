package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/solflow/swap-gateway/internal/cache"
	"github.com/solflow/swap-gateway/internal/config"
	"github.com/solflow/swap-gateway/internal/jupiter"
	"github.com/solflow/swap-gateway/internal/rpc"
	"github.com/solflow/swap-gateway/internal/server"
	"github.com/solflow/swap-gateway/internal/storage"
	"github.com/solflow/swap-gateway/internal/swap"
	"github.com/solflow/swap-gateway/internal/toggles"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main initializes all dependencies and starts the HTTP server with graceful
// shutdown. Redis and ClickHouse are optional sinks; the swap pipeline runs
// without them.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Chain RPC and aggregator clients
	chainClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
	jupClient := jupiter.NewClient(cfg.JupiterBaseURL, cfg.JupiterAPIKey)

	// Redis: recent-swap cache, pub/sub, and operational toggles
	var swapCache *cache.RedisCache
	var toggleStore *toggles.Store
	rc, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable, recent swaps and toggles disabled")
	} else {
		swapCache = rc
		defer swapCache.Close()

		toggleStore, err = toggles.NewStore(rc.Client())
		if err != nil {
			logger.WithError(err).Warn("failed to create toggle store")
		}
	}

	// ClickHouse: durable swap log
	var swapStore *storage.ClickHouseStore
	ch, err := storage.NewClickHouseStore(cfg.ClickHouseAddr, cfg.ClickHouseDatabase, cfg.ClickHouseUsername, cfg.ClickHousePassword)
	if err != nil {
		logger.WithError(err).Warn("clickhouse unavailable, swap log disabled")
	} else {
		swapStore = ch
		defer swapStore.Close()
	}

	engine := swap.NewEngine(chainClient, jupClient, swap.Config{
		PriorityFeeMicroLamports: cfg.PriorityFeeMicroLamports,
		Commitment:               cfg.Commitment,
		SendMaxRetries:           cfg.SendMaxRetries,
		PrereqSendMaxRetries:     cfg.PrereqSendMaxRetries,
		ConfirmPollInterval:      cfg.ConfirmPollInterval,
	}, logger)
	if swapCache != nil {
		engine = engine.WithSwapCache(swapCache)
	}
	if swapStore != nil {
		engine = engine.WithSwapStore(swapStore)
	}

	h := &server.Handlers{
		Quoter:  jupClient,
		Swapper: engine,
		Toggles: toggleStore,
		DevMode: cfg.DevMode,
		Logger:  logger,
	}
	if swapCache != nil {
		h.Cache = swapCache
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr,
			DevMode: cfg.DevMode,
			APIKey:  cfg.APIKey,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	go func() {
		<-sigCh
		logger.Info("shutting down")
		_ = srv.Shutdown(context.Background())
	}()

	logger.WithField("addr", cfg.APIAddr).Info("api server starting")
	if err := srv.Start(); err != nil {
		// "http: Server closed" is expected during graceful shutdown
		if err.Error() == "http: Server closed" {
			return
		}
		logger.WithError(err).Fatal("api server failed")
	}

	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
