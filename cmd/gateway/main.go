package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"aigate-api/internal/config"
	"aigate-api/internal/cost"
	"aigate-api/internal/handlers/gateway"
	"aigate-api/internal/identity"
	"aigate-api/internal/ledger"
	"aigate-api/internal/middleware"
	"aigate-api/internal/providers"
	"aigate-api/internal/routers"
	"aigate-api/internal/shared"

	"github.com/labstack/echo/v4"
	emw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/manifold-inc/manifold-sdk/lib/eflag"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Flags / ENV Variables
	configPath := flag.String("config", "config.yaml", "Path to the gateway config file")
	debug := flag.Bool("debug", false, "Debug enabled")
	port := flag.Int("port", 0, "Listen port, overrides server.port")

	err := eflag.SetFlagsFromEnvironment()
	if err != nil {
		panic(err)
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed loading config: %s", err))
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	var logger *zap.Logger
	if !*debug {
		logger, err = zap.NewProduction()
		if err != nil {
			panic("Failed init logger")
		}
	}
	if *debug {
		logger, err = zap.NewDevelopment()
		if err != nil {
			panic("Failed init logger")
		}
	}
	log := logger.Sugar()
	defer func() { _ = log.Sync() }()

	registry, err := providers.NewRegistry(context.Background(), cfg)
	if err != nil {
		panic(fmt.Sprintf("failed building providers: %s", err))
	}
	for _, info := range registry.Infos() {
		log.Infow("Provider ready", "provider", info.Provider, "capability", info.Capability, "model", info.Model)
	}

	// Usage journal is optional
	var journal ledger.Journal
	var redisClient *redis.Client
	if cfg.Journal.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Journal.RedisAddr,
			Password: cfg.Journal.RedisPassword,
			DB:       0,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			panic(fmt.Sprintf("failed ping to redis db: %s", err))
		}
		journal = ledger.NewRedisJournal(redisClient, cfg.Journal.Stream)
		log.Infow("Usage journal enabled", "stream", cfg.Journal.Stream)
	}
	defer func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	reporter := ledger.NewHTTPReporter(cfg.Ledger, &http.Client{Timeout: cfg.Ledger.Timeout}, journal, log)
	verifier := identity.NewJWTVerifier(cfg.Identity)
	handler := gateway.NewHandler(registry, reporter, cfg.Limits)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.GET(("/ping"), func(c echo.Context) error {
		return c.String(200, "")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.RequireMetricsKey(cfg.Metrics.APIKey))

	base := e.Group("")
	base.Use(emw.CORS())
	base.Use(emw.BodyLimit(strconv.FormatInt(cfg.Server.MaxBodyBytes/1024, 10) + "K"))
	base.Use(middleware.NewTrackMiddleware(log))
	base.Use(middleware.NewRecoverMiddleware(log))

	routers.RegisterGatewayRoutes(base, handler, verifier, cost.NewPolicy(cfg.Pricing))

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Infow("Starting gateway", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("shutting down the server", "error", err.Error())
		}
	}()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), shared.DefaultShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Errorw("Failed graceful shutdown", "error", err.Error())
		return
	}
	log.Infow("Gateway stopped", "shutdown_duration", time.Since(start).String())
}
