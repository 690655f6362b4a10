package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfsync/backend/internal/domain/connection"
	"github.com/shelfsync/backend/internal/interfaces/http/dto"
)

// ConnectionHandler handles store connection API endpoints
type ConnectionHandler struct {
	BaseHandler
	connections connection.Repository
}

// NewConnectionHandler creates a new ConnectionHandler
func NewConnectionHandler(connections connection.Repository) *ConnectionHandler {
	return &ConnectionHandler{connections: connections}
}

// RegisterRoutes registers connection routes
func (h *ConnectionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/connections")
	group.POST("", h.Register)
	group.GET("", h.ListConnections)
	group.GET("/:shop_domain", h.GetConnection)
	group.DELETE("/:shop_domain", h.Delete)
}

// Register connects a store or replaces the credential of an already
// connected one. Re-registration keeps the connection identity and stamps
// the new token.
func (h *ConnectionHandler) Register(c *gin.Context) {
	var req dto.RegisterConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "invalid request body: "+err.Error())
		return
	}

	existing, err := h.connections.FindByShopDomain(c.Request.Context(), req.ShopDomain)
	switch {
	case err == nil:
		if err := existing.ReplaceToken(req.AccessToken, req.Scope); err != nil {
			h.ErrorWithCode(c, dto.ErrCodeValidation, err.Error())
			return
		}
		if err := h.connections.Save(c.Request.Context(), existing); err != nil {
			h.InternalError(c, "failed to update connection")
			return
		}
		h.Success(c, dto.NewConnectionResponse(existing))

	case errors.Is(err, connection.ErrConnectionNotFound):
		conn, err := connection.NewConnection(req.ShopDomain, req.AccessToken, req.Scope)
		if err != nil {
			h.ErrorWithCode(c, dto.ErrCodeValidation, err.Error())
			return
		}
		if err := h.connections.Save(c.Request.Context(), conn); err != nil {
			h.InternalError(c, "failed to save connection")
			return
		}
		h.Created(c, dto.NewConnectionResponse(conn))

	default:
		h.InternalError(c, "failed to look up connection")
	}
}

// ListConnections returns all connected stores
func (h *ConnectionHandler) ListConnections(c *gin.Context) {
	conns, err := h.connections.FindAll(c.Request.Context())
	if err != nil {
		h.InternalError(c, "failed to list connections")
		return
	}

	resp := make([]dto.ConnectionResponse, 0, len(conns))
	for i := range conns {
		resp = append(resp, dto.NewConnectionResponse(&conns[i]))
	}
	h.List(c, resp, len(resp))
}

// GetConnection returns a single connected store
func (h *ConnectionHandler) GetConnection(c *gin.Context) {
	shopDomain := c.Param("shop_domain")

	conn, err := h.connections.FindByShopDomain(c.Request.Context(), shopDomain)
	if err != nil {
		if errors.Is(err, connection.ErrConnectionNotFound) {
			h.NotFound(c, "shop not connected: "+shopDomain)
			return
		}
		h.InternalError(c, "failed to look up connection")
		return
	}
	h.Success(c, dto.NewConnectionResponse(conn))
}

// Delete disconnects a store
func (h *ConnectionHandler) Delete(c *gin.Context) {
	shopDomain := c.Param("shop_domain")

	if err := h.connections.Delete(c.Request.Context(), shopDomain); err != nil {
		if errors.Is(err, connection.ErrConnectionNotFound) {
			h.NotFound(c, "shop not connected: "+shopDomain)
			return
		}
		h.InternalError(c, "failed to delete connection")
		return
	}
	h.NoContent(c)
}
