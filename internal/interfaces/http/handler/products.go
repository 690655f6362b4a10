package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/shelfsync/backend/internal/domain/catalog"
	"github.com/shelfsync/backend/internal/interfaces/http/dto"
)

// ProductsHandler exposes a read-only view of the source catalog
type ProductsHandler struct {
	BaseHandler
	store catalog.DocumentStore
}

// NewProductsHandler creates a new ProductsHandler
func NewProductsHandler(store catalog.DocumentStore) *ProductsHandler {
	return &ProductsHandler{store: store}
}

// RegisterRoutes registers product routes
func (h *ProductsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/products")
	group.GET("", h.ListProducts)
}

// ListProducts reads the full catalog from the source database. The read
// follows pagination transparently; the response is the complete catalog.
func (h *ProductsHandler) ListProducts(c *gin.Context) {
	products, err := h.store.ReadProducts(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrRateLimited):
			h.ErrorWithCode(c, dto.ErrCodeRateLimited, err.Error())
		case errors.Is(err, catalog.ErrFetchFailed), errors.Is(err, catalog.ErrUnauthenticated):
			h.ErrorWithCode(c, dto.ErrCodeUpstream, err.Error())
		default:
			h.InternalError(c, "failed to read catalog")
		}
		return
	}

	resp := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, dto.NewProductResponse(&products[i]))
	}
	h.List(c, resp, len(resp))
}
