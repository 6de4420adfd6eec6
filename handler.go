package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lg/diet-mentor-go-api/internal/coach"
	"lg/diet-mentor-go-api/internal/domain"
	"lg/diet-mentor-go-api/internal/nutrition"
	"lg/diet-mentor-go-api/internal/phrase"
	"lg/diet-mentor-go-api/internal/report"
	"lg/diet-mentor-go-api/internal/store"
)

// accounts is the slice of the store the HTTP layer touches directly.
type accounts interface {
	UserByUsername(ctx context.Context, username string) (domain.User, error)
	UserIDForToken(ctx context.Context, token string) (int, error)
	Ping(ctx context.Context) error
}

// Handler holds shared dependencies for all route handlers.
type Handler struct {
	users   accounts
	coach   *coach.Service
	phrases phrase.Provider
	log     *slog.Logger
}

/* ─── Responses ───────────────────────────────────────────────────────── */

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// serviceError maps engine and store failures onto status codes. Validation
// failures carry a machine-readable reason next to the message.
func (h *Handler) serviceError(c *gin.Context, err error, notFound string) {
	var ve *nutrition.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ve.Error(), "reason": ve.Reason})
	case errors.Is(err, coach.ErrInvalidRecord):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "reason": "invalid_record"})
	case errors.Is(err, coach.ErrBeforeStart):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "reason": "before_start"})
	case errors.Is(err, coach.ErrFutureDate):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "reason": "future_date"})
	case errors.Is(err, report.ErrUnknownKind):
		apiError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNotFound):
		apiError(c, http.StatusNotFound, notFound)
	default:
		h.log.Error("request failed", "path", c.FullPath(), "error", err)
		apiError(c, http.StatusInternalServerError, "internal error")
	}
}

// dateParam reads an optional YYYY-MM-DD query param, defaulting to today.
func (h *Handler) dateParam(c *gin.Context, name string) (domain.DateOnly, bool) {
	raw := c.Query(name)
	if raw == "" {
		return h.coach.Today(), true
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid "+name+", expected YYYY-MM-DD")
		return domain.DateOnly{}, false
	}
	return d, true
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// requestLogger logs one line per request after it completes.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (h *Handler) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.users.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", h.healthz)

	// Public routes
	router.POST("/api/login", h.login)
	router.POST("/api/targets", h.computeTargets)
	router.POST("/api/targets/validate-rate", h.validateRate)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.putProfile)
	api.GET("/records", h.getRecords)
	api.POST("/records", h.upsertRecord)
	api.GET("/risk", h.getRisk)
	api.GET("/risk/history", h.getRiskHistory)
	api.GET("/reports/:kind", h.getReport)
}
