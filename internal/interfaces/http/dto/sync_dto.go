package dto

import (
	"time"

	"github.com/shelfsync/backend/internal/domain/catalog"
	"github.com/shelfsync/backend/internal/domain/connection"
)

// ---------------------------------------------------------------------------
// Sync
// ---------------------------------------------------------------------------

// RunSyncRequest represents a request to start a sync run
type RunSyncRequest struct {
	ShopDomain string `json:"shop_domain" binding:"required"`
	// Strategy is one of FULL, SMART_INCREMENTAL, CREATE_ONLY, IMPORT.
	// Empty selects the configured default.
	Strategy string `json:"strategy"`
}

// SyncProductRequest represents a request to push a single product
type SyncProductRequest struct {
	ShopDomain string `json:"shop_domain" binding:"required"`
	SourceID   string `json:"source_id" binding:"required"`
}

// SyncErrorResponse represents one failed record in a run
type SyncErrorResponse struct {
	SourceID string `json:"source_id"`
	Title    string `json:"title"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

// SyncResultResponse represents the outcome of a sync run
type SyncResultResponse struct {
	Strategy    string              `json:"strategy"`
	Status      string              `json:"status"`
	Total       int                 `json:"total"`
	Created     int                 `json:"created"`
	Synced      int                 `json:"synced"`
	Skipped     int                 `json:"skipped"`
	Errors      []SyncErrorResponse `json:"errors"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt time.Time           `json:"completed_at"`
}

// NewSyncResultResponse maps a run result to its response representation
func NewSyncResultResponse(result *catalog.SyncResult) SyncResultResponse {
	errs := make([]SyncErrorResponse, 0, len(result.Errors))
	for _, e := range result.Errors {
		errs = append(errs, SyncErrorResponse{
			SourceID: e.SourceID,
			Title:    e.Title,
			Kind:     string(e.Kind),
			Message:  e.Message,
		})
	}
	return SyncResultResponse{
		Strategy:    result.Strategy.String(),
		Status:      string(result.Status()),
		Total:       result.Total,
		Created:     result.Created,
		Synced:      result.Synced,
		Skipped:     result.Skipped,
		Errors:      errs,
		StartedAt:   result.StartedAt,
		CompletedAt: result.CompletedAt,
	}
}

// ---------------------------------------------------------------------------
// Connections
// ---------------------------------------------------------------------------

// RegisterConnectionRequest represents a request to connect a store
type RegisterConnectionRequest struct {
	ShopDomain  string `json:"shop_domain" binding:"required"`
	AccessToken string `json:"access_token" binding:"required"`
	Scope       string `json:"scope"`
}

// ConnectionResponse represents a connected store. The access token is
// never echoed back.
type ConnectionResponse struct {
	ID          string    `json:"id"`
	ShopDomain  string    `json:"shop_domain"`
	Scope       string    `json:"scope"`
	InstalledAt time.Time `json:"installed_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewConnectionResponse maps a connection to its response representation
func NewConnectionResponse(conn *connection.Connection) ConnectionResponse {
	return ConnectionResponse{
		ID:          conn.ID.String(),
		ShopDomain:  conn.ShopDomain,
		Scope:       conn.Scope,
		InstalledAt: conn.InstalledAt,
		UpdatedAt:   conn.UpdatedAt,
	}
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// ProductResponse represents one catalog record as read from the source
type ProductResponse struct {
	SourceID       string `json:"source_id"`
	ExternalID     string `json:"external_id,omitempty"`
	Linked         bool   `json:"linked"`
	Title          string `json:"title"`
	Price          string `json:"price"`
	Inventory      int    `json:"inventory"`
	SKU            string `json:"sku,omitempty"`
	Status         string `json:"status"`
	Category       string `json:"category,omitempty"`
	Vendor         string `json:"vendor,omitempty"`
	Tags           string `json:"tags,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
	ShippingWeight string `json:"shipping_weight,omitempty"`
}

// NewProductResponse maps a canonical product to its response representation
func NewProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		SourceID:   p.SourceID,
		ExternalID: p.ExternalID,
		Linked:     p.IsLinked(),
		Title:      p.Title,
		Price:      p.Price.StringFixed(2),
		Inventory:  p.Inventory,
		SKU:        p.SKU,
		Status:     p.Status.String(),
		Category:   p.Category,
		Vendor:     p.Vendor,
		Tags:       p.Tags,
		ImageURL:   p.ImageURL,
	}
	if !p.ShippingWeight.IsZero() {
		resp.ShippingWeight = p.ShippingWeight.String()
	}
	return resp
}
