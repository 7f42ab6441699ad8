package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rafaelpierri/andela-assessment/internal/adapter/handler"
	"github.com/rafaelpierri/andela-assessment/internal/adapter/storage"
	"github.com/rafaelpierri/andela-assessment/internal/config"
	"github.com/rafaelpierri/andela-assessment/internal/core/service"
	"github.com/rafaelpierri/andela-assessment/internal/port"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("mysql_open_failed", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("mysql_ping_failed", zap.Error(err))
	}
	logger.Info("mysql_connected")

	// Redis list cache. The service degrades to uncached reads when Redis
	// is unreachable.
	var cache port.ProductCache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, PoolSize: 100})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis_unavailable_running_uncached", zap.Error(err))
		rdb.Close()
		rdb = nil
	} else {
		cache = storage.NewRedisAdapter(rdb)
		logger.Info("redis_connected")
	}

	repo := storage.NewMySQLAdapter(db)
	productService := service.NewProductService(repo, cache, logger)
	orderService := service.NewOrderService(repo, cache, logger)

	h := handler.NewHTTPHandler(cfg, productService, orderService, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.NewRouter(h, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http_listen", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("http_server_error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_error", zap.Error(err))
	}
	logger.Info("http_server_stopped")

	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	logger.Info("connections_closed")
}
