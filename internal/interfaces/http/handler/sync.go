package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shelfsync/backend/internal/application/sync"
	"github.com/shelfsync/backend/internal/domain/catalog"
	"github.com/shelfsync/backend/internal/interfaces/http/dto"
)

// SyncRunner is the application service surface the sync endpoints use
type SyncRunner interface {
	Run(ctx context.Context, strategy catalog.Strategy, shopDomain string) (*catalog.SyncResult, error)
	SyncProduct(ctx context.Context, shopDomain, sourceID string) (*catalog.SyncResult, error)
}

// SyncHandler handles sync run API endpoints
type SyncHandler struct {
	BaseHandler
	service         SyncRunner
	defaultStrategy catalog.Strategy
	runTimeout      time.Duration
}

// NewSyncHandler creates a new SyncHandler. A zero runTimeout disables the
// per-run deadline.
func NewSyncHandler(service SyncRunner, defaultStrategy catalog.Strategy, runTimeout time.Duration) *SyncHandler {
	if !defaultStrategy.IsValid() {
		defaultStrategy = catalog.StrategyFull
	}
	return &SyncHandler{
		service:         service,
		defaultStrategy: defaultStrategy,
		runTimeout:      runTimeout,
	}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/sync")
	group.POST("/run", h.Run)
	group.POST("/product", h.SyncProduct)
}

// Run starts a synchronization run for a connected store. The run executes
// synchronously; the response carries the full result report.
func (h *SyncHandler) Run(c *gin.Context) {
	var req dto.RunSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "invalid request body: "+err.Error())
		return
	}

	strategy := h.defaultStrategy
	if req.Strategy != "" {
		parsed, err := catalog.ParseStrategy(req.Strategy)
		if err != nil {
			h.ErrorWithCode(c, dto.ErrCodeValidation, "unknown strategy: "+req.Strategy)
			return
		}
		strategy = parsed
	}

	ctx, cancel := h.runContext(c)
	defer cancel()

	result, err := h.service.Run(ctx, strategy, req.ShopDomain)
	if err != nil {
		h.handleSyncError(c, err)
		return
	}
	h.Success(c, dto.NewSyncResultResponse(result))
}

// SyncProduct pushes a single source record to the platform unconditionally
func (h *SyncHandler) SyncProduct(c *gin.Context) {
	var req dto.SyncProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "invalid request body: "+err.Error())
		return
	}

	ctx, cancel := h.runContext(c)
	defer cancel()

	result, err := h.service.SyncProduct(ctx, req.ShopDomain, req.SourceID)
	if err != nil {
		h.handleSyncError(c, err)
		return
	}
	h.Success(c, dto.NewSyncResultResponse(result))
}

// runContext derives the run context, bounded by the configured timeout
func (h *SyncHandler) runContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.runTimeout <= 0 {
		return c.Request.Context(), func() {}
	}
	return context.WithTimeout(c.Request.Context(), h.runTimeout)
}

// handleSyncError maps orchestration errors to HTTP responses
func (h *SyncHandler) handleSyncError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidStrategy):
		h.ErrorWithCode(c, dto.ErrCodeValidation, err.Error())
	case errors.Is(err, catalog.ErrCredentialNotFound):
		h.NotFound(c, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		h.NotFound(c, err.Error())
	case errors.Is(err, sync.ErrRunInProgress):
		h.Conflict(c, dto.ErrCodeRunInProgress, err.Error())
	case errors.Is(err, catalog.ErrRateLimited):
		h.ErrorWithCode(c, dto.ErrCodeRateLimited, err.Error())
	case errors.Is(err, catalog.ErrFetchFailed), errors.Is(err, catalog.ErrUnauthenticated):
		h.ErrorWithCode(c, dto.ErrCodeUpstream, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		h.Error(c, http.StatusGatewayTimeout, dto.ErrCodeUpstream, "sync run exceeded the configured timeout")
	default:
		h.InternalError(c, "sync run failed")
	}
}
