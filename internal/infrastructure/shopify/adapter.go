// Package shopify implements the commerce platform port against the Shopify
// Admin REST API.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shopspring/decimal"

	"github.com/shelfsync/backend/internal/domain/catalog"
)

// maxResponseSize is the maximum allowed response size from the Admin API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Adapter implements the CommercePlatform interface for Shopify
type Adapter struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAdapter creates a new Shopify adapter with the given configuration
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

// ReadProducts reads the full product catalog, following Link-header
// pagination. Any page failure aborts the whole read.
func (a *Adapter) ReadProducts(ctx context.Context) ([]catalog.Product, error) {
	products := make([]catalog.Product, 0)

	pageURL := fmt.Sprintf("%s/products.json?limit=%d", a.config.BaseURL(), a.config.PageSize)
	pages := 0

	for pageURL != "" {
		if pages >= a.config.MaxPages {
			return nil, fmt.Errorf("%w: shopify pagination exceeded %d pages", catalog.ErrFetchFailed, a.config.MaxPages)
		}
		pages++

		body, header, err := a.doRequest(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", catalog.ErrFetchFailed, err)
		}

		var page productsResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("%w: %w: %v", catalog.ErrFetchFailed, catalog.ErrInvalidResponse, err)
		}

		for i := range page.Products {
			products = append(products, page.Products[i].toCanonical())
		}

		pageURL = nextPageURL(header.Get("Link"))
	}

	a.logger.Debug("Shopify catalog read complete",
		zap.Int("products", len(products)),
		zap.Int("pages", pages),
	)

	return products, nil
}

// ---------------------------------------------------------------------------
// Catalog Writes
// ---------------------------------------------------------------------------

// CreateProduct creates a product on Shopify and returns the platform-issued ID
func (a *Adapter) CreateProduct(ctx context.Context, product catalog.Product) (string, error) {
	payload := productRequest{
		Product: productPayload{
			Title:       product.Title,
			BodyHTML:    product.DescriptionHTML,
			Vendor:      product.Vendor,
			ProductType: product.Category,
			Tags:        product.Tags,
			Status:      product.Status.ShopifyStatus(),
			Variants: []Variant{
				{
					Price:             product.Price.StringFixed(2),
					SKU:               product.SKU,
					InventoryQuantity: product.Inventory,
					Weight:            decimalToFloat(product.ShippingWeight),
				},
			},
		},
	}
	if product.ImageURL != "" {
		payload.Product.Images = []Image{{Src: product.ImageURL}}
	}

	body, _, err := a.doRequest(ctx, http.MethodPost, a.config.BaseURL()+"/products.json", payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", catalog.ErrWriteFailed, err)
	}

	var resp productResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %w: %v", catalog.ErrWriteFailed, catalog.ErrInvalidResponse, err)
	}
	if resp.Product.ID == 0 {
		return "", fmt.Errorf("%w: create response carried no product ID", catalog.ErrInvalidResponse)
	}

	return strconv.FormatInt(resp.Product.ID, 10), nil
}

// UpdateProduct updates an existing Shopify product. Variant-level fields
// (price, SKU, inventory, weight) and product-level fields live on different
// resources, so the update is two calls: variant first, then product. A
// product failure after a successful variant write surfaces as a partial
// write so the caller knows state diverged.
func (a *Adapter) UpdateProduct(ctx context.Context, externalID string, update catalog.ProductUpdate) error {
	if _, err := strconv.ParseInt(externalID, 10, 64); err != nil {
		return fmt.Errorf("%w: invalid product ID %q", catalog.ErrWriteFailed, externalID)
	}

	current, err := a.getProduct(ctx, externalID)
	if err != nil {
		return fmt.Errorf("%w: %w", catalog.ErrWriteFailed, err)
	}

	variantWritten := false
	if len(current.Variants) > 0 {
		if err := a.updateVariant(ctx, current.Variants[0].ID, update); err != nil {
			return fmt.Errorf("%w: %w", catalog.ErrWriteFailed, err)
		}
		variantWritten = true
	}

	if err := a.updateProductResource(ctx, externalID, update); err != nil {
		if variantWritten {
			return fmt.Errorf("%w: variant updated but product update failed: %w", catalog.ErrPartialWrite, err)
		}
		return fmt.Errorf("%w: %w", catalog.ErrWriteFailed, err)
	}

	return nil
}

// getProduct fetches a single product, primarily to resolve its variant ID
func (a *Adapter) getProduct(ctx context.Context, externalID string) (*Product, error) {
	url := fmt.Sprintf("%s/products/%s.json", a.config.BaseURL(), externalID)
	body, _, err := a.doRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var resp productResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrInvalidResponse, err)
	}
	return &resp.Product, nil
}

// updateVariant pushes variant-level fields
func (a *Adapter) updateVariant(ctx context.Context, variantID int64, update catalog.ProductUpdate) error {
	payload := variantRequest{
		Variant: variantPayload{
			ID:                variantID,
			Price:             update.Price.StringFixed(2),
			SKU:               update.SKU,
			InventoryQuantity: update.Inventory,
			Weight:            decimalToFloat(update.ShippingWeight),
		},
	}

	url := fmt.Sprintf("%s/variants/%d.json", a.config.BaseURL(), variantID)
	_, _, err := a.doRequest(ctx, http.MethodPut, url, payload)
	return err
}

// updateProductResource pushes product-level fields. Title and status are
// always sent; optional fields are sent only when non-empty so an absent
// source value never blanks an existing one.
func (a *Adapter) updateProductResource(ctx context.Context, externalID string, update catalog.ProductUpdate) error {
	payload := productRequest{
		Product: productPayload{
			Title:       update.Title,
			Status:      update.Status.ShopifyStatus(),
			BodyHTML:    update.DescriptionHTML,
			ProductType: update.Category,
			Vendor:      update.Vendor,
			Tags:        update.Tags,
		},
	}

	url := fmt.Sprintf("%s/products/%s.json", a.config.BaseURL(), externalID)
	_, _, err := a.doRequest(ctx, http.MethodPut, url, payload)
	return err
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// doRequest performs an authenticated HTTP request against the Admin API
func (a *Adapter) doRequest(ctx context.Context, method, url string, payload interface{}) ([]byte, http.Header, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("shopify: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", a.config.AccessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("shopify: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, nil, fmt.Errorf("shopify: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, nil, mapStatusError(resp.StatusCode, body)
	}

	return body, resp.Header, nil
}

// mapStatusError maps Admin API error statuses to domain sentinels
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
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Errors != nil {
		return fmt.Errorf("shopify: HTTP %d: %v", status, errResp.Errors)
	}
	return fmt.Errorf("shopify: HTTP %d", status)
}

// nextPageURL extracts the rel="next" URL from a Link response header.
// Shopify cursor pagination emits headers of the form:
//
//	<https://shop/admin/api/2024-01/products.json?page_info=abc>; rel="next"
func nextPageURL(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	for _, part := range strings.Split(linkHeader, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		url := strings.Trim(strings.TrimSpace(segments[0]), "<>")
		for _, attr := range segments[1:] {
			if strings.TrimSpace(attr) == `rel="next"` {
				return url
			}
		}
	}
	return ""
}

// decimalToFloat converts a decimal to the float64 Shopify expects for weight
func decimalToFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// Ensure Adapter implements the CommercePlatform interface
var _ catalog.CommercePlatform = (*Adapter)(nil)
