package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/promptlab/promptlab/backend/handlers"
	"github.com/promptlab/promptlab/backend/store"
)

func main() {
	// Load .env if present; environment variables take precedence
	_ = godotenv.Load()

	// Initialize logger
	logFormat := getEnv("LOG_FORMAT", "text")
	logLevel := getEnv("LOG_LEVEL", "info")
	logFile := getEnv("LOG_FILE", "")

	level := slog.LevelInfo
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var logWriter io.Writer = os.Stdout
	if logFile != "" {
		logWriter = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	opts := &slog.HandlerOptions{Level: level}
	var logHandler slog.Handler
	if logFormat == "json" {
		logHandler = slog.NewJSONHandler(logWriter, opts)
	} else {
		logHandler = slog.NewTextHandler(logWriter, opts)
	}

	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	// Configuration from environment variables
	port := getEnv("PORT", "8080")
	ginMode := getEnv("GIN_MODE", gin.ReleaseMode)
	gin.SetMode(ginMode)

	logger.Info("starting promptlab server",
		"port", port,
		"log_format", logFormat,
		"log_level", logLevel,
		"gin_mode", ginMode,
	)

	// Initialize in-memory store
	st := store.New()

	// Initialize handlers
	h := handlers.New(st, logger)

	// Mount all routes
	handler := h.Routes()

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("server error", "error", err)
		os.Exit(1)
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig.String())
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
