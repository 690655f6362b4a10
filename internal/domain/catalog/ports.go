package catalog

import (
	"context"
	"errors"
)

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// Fatal errors: the run cannot proceed at all
	ErrFetchFailed        = errors.New("catalog: catalog fetch failed")
	ErrCredentialNotFound = errors.New("catalog: credential not found for account")

	// Platform errors surfaced by adapters
	ErrUnauthenticated = errors.New("catalog: platform authentication failed")
	ErrRateLimited     = errors.New("catalog: platform rate limited")
	ErrNotFound        = errors.New("catalog: record not found")
	ErrInvalidResponse = errors.New("catalog: invalid platform response")

	// Per-record errors: recorded, the run continues
	ErrWriteFailed       = errors.New("catalog: write failed")
	ErrPartialWrite      = errors.New("catalog: write partially applied")
	ErrLinkInconsistency = errors.New("catalog: created but link write-back failed")
	ErrNotLinked         = errors.New("catalog: product not linked to platform")

	// Validation errors
	ErrInvalidSourceID = errors.New("catalog: invalid source ID")
	ErrInvalidTitle    = errors.New("catalog: product title is required")
	ErrInvalidStatus   = errors.New("catalog: invalid product status")
	ErrInvalidStrategy = errors.New("catalog: invalid sync strategy")
)

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// ContentRenderer renders the rich document content of a source record into
// HTML. Used by the detector for description comparison and by the
// orchestrator when creating platform products.
type ContentRenderer interface {
	// RenderContent renders the page content for the given page ID.
	// Implementations must treat a missing page as ErrNotFound.
	RenderContent(ctx context.Context, pageID string) (string, error)
}

// DocumentStore is the port for the Notion side (source of record).
// Reads are fully materialized: the detector needs random access to build
// lookups, and there is no partial-catalog mode.
type DocumentStore interface {
	ContentRenderer

	// ReadProducts reads the full catalog, transparently following
	// pagination. Any page failure aborts the read with ErrFetchFailed.
	ReadProducts(ctx context.Context) ([]Product, error)

	// WriteBack patches link fields onto an existing page
	WriteBack(ctx context.Context, sourceID string, fields LinkFields) error

	// CreateProduct creates a new page for a product imported from the
	// platform and returns the new page ID
	CreateProduct(ctx context.Context, product Product) (string, error)
}

// CommercePlatform is the port for the Shopify side.
type CommercePlatform interface {
	// ReadProducts reads the full platform catalog, transparently following
	// pagination. Any page failure aborts the read with ErrFetchFailed.
	ReadProducts(ctx context.Context) ([]Product, error)

	// CreateProduct creates a product and returns the platform-issued ID.
	// The platform is the sole issuer of external IDs.
	CreateProduct(ctx context.Context, product Product) (string, error)

	// UpdateProduct updates an existing product. Field updates spanning the
	// product and its variant are issued as separate calls; a failure after
	// the first call is surfaced as ErrPartialWrite.
	UpdateProduct(ctx context.Context, externalID string, update ProductUpdate) error
}
