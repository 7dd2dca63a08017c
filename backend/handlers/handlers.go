package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/promptlab/promptlab/backend/models"
	"github.com/promptlab/promptlab/backend/store"
)

// apiVersion is reported by the health endpoint.
const apiVersion = "1.0.0"

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Store  store.Store
	Logger *slog.Logger
}

// New creates a new Handler.
func New(s store.Store, logger *slog.Logger) *Handler {
	return &Handler{
		Store:  s,
		Logger: logger,
	}
}

// Routes sets up the router with middleware and all API routes.
func (h *Handler) Routes() http.Handler {
	router := gin.New()
	router.Use(h.recoveryMiddleware(), h.loggingMiddleware(), h.corsMiddleware())

	// System routes
	router.GET("/health", h.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/stats", h.handleStats)

	// Collections
	router.GET("/collections", h.handleListCollections)
	router.POST("/collections", h.handleCreateCollection)
	router.GET("/collections/:id", h.handleGetCollection)
	router.DELETE("/collections/:id", h.handleDeleteCollection)
	router.GET("/collections/:id/prompts", h.handleCollectionPrompts)

	// Prompts
	router.GET("/prompts", h.handleListPrompts)
	router.POST("/prompts", h.handleCreatePrompt)
	router.GET("/prompts/:id", h.handleGetPrompt)
	router.PUT("/prompts/:id", h.handleReplacePrompt)
	router.PATCH("/prompts/:id", h.handlePatchPrompt)
	router.DELETE("/prompts/:id", h.handleDeletePrompt)

	// Versions
	router.GET("/prompts/:id/versions", h.handleListVersions)
	router.POST("/prompts/:id/versions", h.handleCreateVersion)
	router.GET("/prompts/:id/versions/:versionId", h.handleGetVersion)
	router.DELETE("/prompts/:id/versions/:versionId", h.handleDeleteVersion)
	router.POST("/prompts/:id/versions/:versionId/restore", h.handleRestoreVersion)
	router.GET("/prompts/:id/diff", h.handleCompareVersions)

	// Tags
	router.GET("/tags", h.handleListTags)
	router.POST("/tags", h.handleCreateTag)
	router.GET("/tags/:id", h.handleGetTag)
	router.PATCH("/tags/:id", h.handlePatchTag)
	router.DELETE("/tags/:id", h.handleDeleteTag)
	router.GET("/tags/:id/prompts", h.handlePromptsByTag)
	router.PUT("/prompts/:id/tags", h.handleSetPromptTags)
	router.POST("/prompts/:id/tags/:tagId", h.handleAddPromptTag)
	router.DELETE("/prompts/:id/tags/:tagId", h.handleRemovePromptTag)

	return router
}

// Middleware: panic recovery.
func (h *Handler) recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				h.Logger.Error("panic recovered",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
				)
				httpErrorsTotal.Inc()
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			}
		}()
		c.Next()
	}
}

// Middleware: structured request logging plus request metrics.
func (h *Handler) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := uuid.NewString()
		c.Writer.Header().Set("X-Request-ID", reqID)

		c.Next()

		duration := time.Since(start)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration.Seconds())

		h.Logger.Info("http request",
			"rid", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// Middleware: CORS.
func (h *Handler) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// respondError maps store error kinds to status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalidReference), errors.Is(err, store.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed", "error", err, "method", c.Request.Method, "path", c.Request.URL.Path)
	}
	httpErrorsTotal.Inc()
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// badRequest rejects a request before it reaches the store.
func (h *Handler) badRequest(c *gin.Context, message string) {
	httpErrorsTotal.Inc()
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message})
}

// Handler: health check.
func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Version: apiVersion,
	})
}

// Handler: store-wide statistics.
func (h *Handler) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.Stats())
}
