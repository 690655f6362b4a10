package shopify

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/shelfsync/backend/internal/domain/catalog"
)

// ---------------------------------------------------------------------------
// Shopify Admin API Types
// ---------------------------------------------------------------------------

// Product represents a product resource from the Admin API. Price, SKU,
// inventory and weight live on the variant sub-resource, not the product.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	BodyHTML    string    `json:"body_html"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	Tags        string    `json:"tags"`
	Status      string    `json:"status"`
	Variants    []Variant `json:"variants"`
	Image       *Image    `json:"image,omitempty"`
	Images      []Image   `json:"images,omitempty"`
}

// Variant represents a product variant. Shopify serializes money fields as
// strings.
type Variant struct {
	ID                  int64   `json:"id,omitempty"`
	Price               string  `json:"price,omitempty"`
	SKU                 string  `json:"sku,omitempty"`
	InventoryQuantity   int     `json:"inventory_quantity,omitempty"`
	Weight              float64 `json:"weight,omitempty"`
	InventoryManagement string  `json:"inventory_management,omitempty"`
}

// Image represents a product image
type Image struct {
	Src string `json:"src"`
}

// productsResponse wraps the products list endpoint
type productsResponse struct {
	Products []Product `json:"products"`
}

// productResponse wraps single-product endpoints
type productResponse struct {
	Product Product `json:"product"`
}

// productRequest is the envelope for create/update product calls
type productRequest struct {
	Product productPayload `json:"product"`
}

// productPayload carries product-level fields. Empty fields are omitted so
// updates never blank out values the source does not carry.
type productPayload struct {
	Title       string    `json:"title,omitempty"`
	BodyHTML    string    `json:"body_html,omitempty"`
	Vendor      string    `json:"vendor,omitempty"`
	ProductType string    `json:"product_type,omitempty"`
	Tags        string    `json:"tags,omitempty"`
	Status      string    `json:"status,omitempty"`
	Variants    []Variant `json:"variants,omitempty"`
	Images      []Image   `json:"images,omitempty"`
}

// variantRequest is the envelope for variant update calls
type variantRequest struct {
	Variant variantPayload `json:"variant"`
}

// variantPayload carries variant-level fields for updates
type variantPayload struct {
	ID                int64   `json:"id,omitempty"`
	Price             string  `json:"price,omitempty"`
	SKU               string  `json:"sku"`
	InventoryQuantity int     `json:"inventory_quantity"`
	Weight            float64 `json:"weight,omitempty"`
}

// errorResponse is Shopify's error envelope
type errorResponse struct {
	Errors interface{} `json:"errors"`
}

// ---------------------------------------------------------------------------
// Canonical mapping
// ---------------------------------------------------------------------------

// toCanonical normalizes a Shopify product into the canonical shape.
// Missing variants normalize to zero values; the description is stripped to
// plain text so the detector compares content, not markup.
func (p *Product) toCanonical() catalog.Product {
	canonical := catalog.Product{
		ExternalID:      strconv.FormatInt(p.ID, 10),
		Title:           p.Title,
		Status:          catalog.ParseShopifyStatus(p.Status),
		Category:        p.ProductType,
		Vendor:          p.Vendor,
		Tags:            p.Tags,
		Description:     catalog.StripMarkup(p.BodyHTML),
		DescriptionHTML: p.BodyHTML,
		Price:           decimal.Zero,
		ShippingWeight:  decimal.Zero,
	}

	if len(p.Variants) > 0 {
		variant := p.Variants[0]
		canonical.Price = ParseDecimal(variant.Price)
		canonical.SKU = variant.SKU
		canonical.Inventory = variant.InventoryQuantity
		canonical.ShippingWeight = decimal.NewFromFloat(variant.Weight)
	}

	if p.Image != nil {
		canonical.ImageURL = p.Image.Src
	} else if len(p.Images) > 0 {
		canonical.ImageURL = p.Images[0].Src
	}

	return canonical
}

// ParseDecimal parses a Shopify money string, returning zero for empty or
// malformed values
func ParseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
