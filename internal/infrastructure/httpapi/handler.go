// Package httpapi exposes the layoff list, sync trigger and maintenance sweeps over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"LayoffTracker/internal/domain"
	"LayoffTracker/internal/usecase"
)

// Syncer triggers one ingestion cycle.
type Syncer interface {
	Sync(ctx context.Context) (domain.SyncSummary, error)
}

// Lister returns the collapsed event list.
type Lister interface {
	List(ctx context.Context) ([]domain.LayoffEvent, error)
}

// Sweeper runs the maintenance sweeps.
type Sweeper interface {
	CleanupDuplicates(ctx context.Context) (domain.CleanupResult, error)
	CleanupOversized(ctx context.Context) (domain.CleanupResult, error)
}

// Handler binds use cases to gin routes.
type Handler struct {
	syncer  Syncer
	lister  Lister
	sweeper Sweeper
	logger  *slog.Logger
	now     func() time.Time
}

// NewHandler wires the use cases; logger may be nil.
func NewHandler(syncer Syncer, lister Lister, sweeper Sweeper, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{syncer: syncer, lister: lister, sweeper: sweeper, logger: logger, now: time.Now}
}

// Status reports that the API is up.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Layoff Tracker API is running",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// ListLayoffs handles GET /api/layoffs.
func (h *Handler) ListLayoffs(c *gin.Context) {
	events, err := h.lister.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list layoffs", err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// SyncLayoffs handles POST /api/layoffs/sync.
func (h *Handler) SyncLayoffs(c *gin.Context) {
	summary, err := h.syncer.Sync(c.Request.Context())
	if err != nil {
		h.fail(c, "sync layoffs", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// CleanupDuplicates handles POST /api/layoffs/cleanup.
func (h *Handler) CleanupDuplicates(c *gin.Context) {
	res, err := h.sweeper.CleanupDuplicates(c.Request.Context())
	if err != nil {
		h.fail(c, "cleanup duplicates", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CleanupOversized handles POST /api/layoffs/cleanup-large.
func (h *Handler) CleanupOversized(c *gin.Context) {
	res, err := h.sweeper.CleanupOversized(c.Request.Context())
	if err != nil {
		h.fail(c, "cleanup oversized", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, usecase.ErrSyncInProgress) {
		status = http.StatusConflict
	}
	h.logger.Error("request failed", "op", op, "status", status, "error", err)
	c.JSON(status, gin.H{"error": err.Error()})
}
