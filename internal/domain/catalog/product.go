package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Status
// ---------------------------------------------------------------------------

// Status represents the publication status of a product
type Status string

const (
	// StatusActive indicates the product is published and sellable
	StatusActive Status = "Active"
	// StatusDraft indicates the product is not published
	StatusDraft Status = "Draft"
)

// IsValid returns true if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusDraft:
		return true
	default:
		return false
	}
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// ShopifyStatus returns the Shopify vocabulary for this status
// (canonical Active/Draft maps to active/draft on the platform)
func (s Status) ShopifyStatus() string {
	if s == StatusActive {
		return "active"
	}
	return "draft"
}

// ParseShopifyStatus maps the Shopify active/draft vocabulary to the
// canonical status. Anything unrecognized (e.g. "archived") maps to Draft.
func ParseShopifyStatus(raw string) Status {
	if strings.EqualFold(raw, "active") {
		return StatusActive
	}
	return StatusDraft
}

// ParseStatus maps a free-form status string to the canonical status,
// defaulting to Draft for empty or unknown values.
func ParseStatus(raw string) Status {
	if strings.EqualFold(raw, string(StatusActive)) {
		return StatusActive
	}
	return StatusDraft
}

// ---------------------------------------------------------------------------
// Product
// ---------------------------------------------------------------------------

// Product is the canonical representation of a catalog product, independent
// of source schema. Both readers normalize into this shape; missing optional
// fields normalize to zero values rather than propagating absence.
type Product struct {
	// SourceID is the Notion page ID (always present when read from Notion)
	SourceID string
	// ExternalID is the Shopify product ID. The empty string is the "no link"
	// sentinel: Shopify is the sole issuer of these IDs and never issues an
	// empty one, so emptiness unambiguously means unlinked.
	ExternalID string
	// Title is the product title
	Title string
	// Price is the selling price
	Price decimal.Decimal
	// Inventory is the available stock quantity
	Inventory int
	// SKU is the stock keeping unit code
	SKU string
	// Status is the canonical publication status
	Status Status
	// Category is free text mapped to Shopify's product_type
	Category string
	// Vendor is the product vendor (free text)
	Vendor string
	// Tags is a comma-separated tag list, treated opaquely
	Tags string
	// ImageURL is the primary product image URL
	ImageURL string
	// ShippingWeight is the shipping weight
	ShippingWeight decimal.Decimal
	// Description is the plain-text description. Not every reader populates
	// it; the Notion side is enriched lazily by the detector.
	Description string
	// DescriptionHTML is the rich-text description used for writes
	DescriptionHTML string
}

// IsLinked returns true if the product has a Shopify counterpart
func (p *Product) IsLinked() bool {
	return p.ExternalID != ""
}

// Validate validates the product for synchronization
func (p *Product) Validate() error {
	if p.SourceID == "" {
		return ErrInvalidSourceID
	}
	if p.Title == "" {
		return ErrInvalidTitle
	}
	if !p.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// ---------------------------------------------------------------------------
// Write payloads
// ---------------------------------------------------------------------------

// ProductUpdate carries the fields pushed to Shopify on update. All fields
// are set from the canonical record; the adapter decides which platform
// resources (product vs. variant) each field lives on.
type ProductUpdate struct {
	Title           string
	Price           decimal.Decimal
	Inventory       int
	SKU             string
	Status          Status
	Category        string
	Vendor          string
	Tags            string
	ShippingWeight  decimal.Decimal
	DescriptionHTML string
}

// UpdateFromProduct builds the update payload for a canonical product
func UpdateFromProduct(p *Product) ProductUpdate {
	return ProductUpdate{
		Title:           p.Title,
		Price:           p.Price,
		Inventory:       p.Inventory,
		SKU:             p.SKU,
		Status:          p.Status,
		Category:        p.Category,
		Vendor:          p.Vendor,
		Tags:            p.Tags,
		ShippingWeight:  p.ShippingWeight,
		DescriptionHTML: p.DescriptionHTML,
	}
}

// LinkFields carries the fields patched back onto the Notion page after a
// Shopify product has been created. Today that is only the link itself.
type LinkFields struct {
	// ExternalID is the newly issued Shopify product ID
	ExternalID string
}
