// Package notion implements the document store port against the Notion API.
// A product database is the source of record; page bodies carry the rich
// product descriptions.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shelfsync/backend/internal/domain/catalog"
)

// maxResponseSize is the maximum allowed response size from the Notion API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Adapter implements the DocumentStore interface for Notion
type Adapter struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAdapter creates a new Notion adapter with the given configuration
func NewAdapter(config *Config, logger *zap.Logger) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}, nil
}

// ---------------------------------------------------------------------------
// Catalog Reads
// ---------------------------------------------------------------------------

// ReadProducts reads the full product database, following cursor pagination.
// Any page failure aborts the whole read.
func (a *Adapter) ReadProducts(ctx context.Context) ([]catalog.Product, error) {
	products := make([]catalog.Product, 0)

	cursor := ""
	pages := 0

	for {
		if pages >= a.config.MaxPages {
			return nil, fmt.Errorf("%w: notion pagination exceeded %d pages", catalog.ErrFetchFailed, a.config.MaxPages)
		}
		pages++

		reqBody := queryRequest{StartCursor: cursor, PageSize: a.config.PageSize}
		url := fmt.Sprintf("%s/databases/%s/query", a.config.APIBaseURL, a.config.DatabaseID)
		body, err := a.doRequest(ctx, http.MethodPost, url, reqBody)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", catalog.ErrFetchFailed, err)
		}

		var resp queryResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("%w: %w: %v", catalog.ErrFetchFailed, catalog.ErrInvalidResponse, err)
		}

		for i := range resp.Results {
			products = append(products, resp.Results[i].toCanonical())
		}

		if !resp.HasMore || resp.NextCursor == nil {
			break
		}
		cursor = *resp.NextCursor
	}

	a.logger.Debug("Notion catalog read complete",
		zap.Int("products", len(products)),
		zap.Int("pages", pages),
	)

	return products, nil
}

// ---------------------------------------------------------------------------
// Catalog Writes
// ---------------------------------------------------------------------------

// WriteBack patches link fields onto an existing page
func (a *Adapter) WriteBack(ctx context.Context, sourceID string, fields catalog.LinkFields) error {
	reqBody := pageRequest{
		Properties: map[string]property{
			propShopifyID: richTextProp(fields.ExternalID),
		},
	}

	url := fmt.Sprintf("%s/pages/%s", a.config.APIBaseURL, sourceID)
	if _, err := a.doRequest(ctx, http.MethodPatch, url, reqBody); err != nil {
		return fmt.Errorf("%w: %w", catalog.ErrWriteFailed, err)
	}
	return nil
}

// CreateProduct creates a page for a product imported from the platform and
// returns the new page ID. Optional fields are written only when present so
// the page mirrors what the platform actually carries.
func (a *Adapter) CreateProduct(ctx context.Context, product catalog.Product) (string, error) {
	properties := map[string]property{
		propTitle:     titleProp(product.Title),
		propPrice:     numberProp(product.Price),
		propInventory: numberProp(decimal.NewFromInt(int64(product.Inventory))),
		propSKU:       richTextProp(product.SKU),
		propShopifyID: richTextProp(product.ExternalID),
		propStatus:    selectProp(product.Status.String()),
	}
	if product.ImageURL != "" {
		properties[propImageURL] = urlProp(product.ImageURL)
	}
	if product.Category != "" {
		properties[propCategory] = richTextProp(product.Category)
	}
	if product.Tags != "" {
		properties[propTags] = richTextProp(product.Tags)
	}
	if product.Vendor != "" {
		properties[propVendor] = richTextProp(product.Vendor)
	}
	if !product.ShippingWeight.IsZero() {
		properties[propShippingWeight] = numberProp(product.ShippingWeight)
	}

	reqBody := pageRequest{
		Parent:     &pageParent{DatabaseID: a.config.DatabaseID},
		Properties: properties,
	}

	body, err := a.doRequest(ctx, http.MethodPost, a.config.APIBaseURL+"/pages", reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: %w", catalog.ErrWriteFailed, err)
	}

	var created page
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("%w: %w: %v", catalog.ErrWriteFailed, catalog.ErrInvalidResponse, err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: create response carried no page ID", catalog.ErrInvalidResponse)
	}

	return created.ID, nil
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// doRequest performs an authenticated HTTP request against the Notion API
func (a *Adapter) doRequest(ctx context.Context, method, url string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("notion: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("notion: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	req.Header.Set("Notion-Version", a.config.NotionVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notion: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("notion: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, mapStatusError(resp.StatusCode, body)
	}

	return body, nil
}

// mapStatusError maps Notion API error statuses to domain sentinels
func mapStatusError(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d", catalog.ErrUnauthenticated, status)
	case http.StatusNotFound:
		return fmt.Errorf("%w: HTTP %d", catalog.ErrNotFound, status)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: HTTP %d", catalog.ErrRateLimited, status)
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Code != "" {
		return fmt.Errorf("notion: HTTP %d: %s: %s", status, errResp.Code, errResp.Message)
	}
	return fmt.Errorf("notion: HTTP %d", status)
}

// Ensure Adapter implements the DocumentStore interface
var _ catalog.DocumentStore = (*Adapter)(nil)
