package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/intelliot/payid-core/internal/resolver"
	"github.com/intelliot/payid-core/pkg/client"
	"github.com/intelliot/payid-core/pkg/payid"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	if err := run(logger); err != nil {
		logger.Fatal("payid-resolver exited with error", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	// ── Configuration ─────────────────────────────────────────────────────────
	// A local .env, when present, feeds the PAYID_* overrides below.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	viper.SetConfigName("payid-resolver")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("configs")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("PAYID")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("resolver.grpc_port", 9090)
	viper.SetDefault("resolver.http_port", 9091)
	viper.SetDefault("resolver.http_timeout_seconds", 10)
	viper.SetDefault("resolver.allow_insecure_http", false)
	viper.SetDefault("resolver.validate_schema", false)
	viper.SetDefault("resolver.default_network", string(payid.NetworkAll))
	viper.SetDefault("resolver.max_batch", 100)
	viper.SetDefault("resolver.cors_origins", []string{"*"})

	if err := viper.ReadInConfig(); err != nil {
		var cfgNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgNotFound) {
			return fmt.Errorf("read config: %w", err)
		}
		logger.Warn("no config file found, using defaults and env vars")
	}

	grpcPort := viper.GetInt("resolver.grpc_port")
	httpPort := viper.GetInt("resolver.http_port")
	httpTimeout := time.Duration(viper.GetInt("resolver.http_timeout_seconds")) * time.Second

	// ── PayID client ──────────────────────────────────────────────────────────
	opts := []client.Option{client.WithTimeout(httpTimeout)}
	if viper.GetBool("resolver.validate_schema") {
		opts = append(opts, client.WithSchemaValidation())
	}
	payClient, err := client.New(opts...)
	if err != nil {
		return fmt.Errorf("create payid client: %w", err)
	}

	// ── Resolver service ──────────────────────────────────────────────────────
	cfg := resolver.Config{
		DefaultNetwork:    payid.PaymentNetwork(viper.GetString("resolver.default_network")),
		AllowInsecureHTTP: viper.GetBool("resolver.allow_insecure_http"),
		MaxBatch:          viper.GetInt("resolver.max_batch"),
	}
	if cfg.AllowInsecureHTTP {
		logger.Warn("insecure http lookups are enabled; do not use in production")
	}
	svc := resolver.New(cfg, payClient, logger)

	// ── gRPC server ───────────────────────────────────────────────────────────
	grpcLis, err := net.Listen("tcp", fmt.Sprintf(":%d", grpcPort))
	if err != nil {
		return fmt.Errorf("gRPC listen on :%d: %w", grpcPort, err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(resolver.LoggingInterceptor(logger)),
	)
	resolver.RegisterGRPC(grpcServer, svc)

	healthSvc := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthSvc)
	healthSvc.SetServingStatus(resolver.GRPCServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	// ── HTTP Router ───────────────────────────────────────────────────────────
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	corsOrigins := viper.GetStringSlice("resolver.cors_origins")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", resolver.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", resolver.RequestIDHeader},
		AllowCredentials: !containsWildcard(corsOrigins),
		MaxAge:           12 * time.Hour,
	}))

	// Request body size limit (1 MB)
	router.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20)
		c.Next()
	})

	router.Use(resolver.RequestID())
	router.Use(requestLogger(logger))
	router.Use(resolver.PrometheusMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "payid-resolver"})
	})
	router.GET("/metrics", resolver.MetricsHandler())

	resolver.NewHandler(svc, logger).Register(router.Group("/v1"))

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", httpPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ── Start both servers ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("payid-resolver gRPC listening", zap.Int("port", grpcPort))
		if err := grpcServer.Serve(grpcLis); err != nil {
			logger.Fatal("gRPC serve error", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("payid-resolver HTTP listening",
			zap.Int("port", httpPort),
			zap.String("default_network", string(cfg.DefaultNetwork)),
			zap.Duration("http_timeout", httpTimeout),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP serve error", zap.Error(err))
		}
	}()

	// ── Graceful shutdown ──────────────────────────────────────────────────────
	<-quit
	logger.Info("shutting down payid-resolver...")
	healthSvc.Shutdown()
	grpcServer.GracefulStop()

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}

	logger.Info("payid-resolver stopped")
	return nil
}

// containsWildcard returns true if origins includes "*".
func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}

// requestLogger returns a Gin middleware that logs each request with zap.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}
