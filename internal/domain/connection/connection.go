// Package connection contains the store-connection bounded context: the
// persisted Shopify credential for each connected account. The OAuth
// handshake that obtains the credential lives outside this service; only
// registration and lookup are modeled here.
package connection

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConnectionNotFound      = errors.New("connection: not found")
	ErrInvalidShopDomain       = errors.New("connection: invalid shop domain")
	ErrInvalidAccessToken      = errors.New("connection: access token is required")
	ErrConnectionAlreadyExists = errors.New("connection: shop already connected")
)

// Connection represents a connected Shopify store and its stored credential.
// The credential is read-only within a sync run; it is replaced only through
// re-registration.
type Connection struct {
	// ID is the unique identifier of this connection
	ID uuid.UUID
	// ShopDomain is the myshopify domain identifying the account
	ShopDomain string
	// AccessToken is the Admin API access token
	AccessToken string
	// Scope is the granted OAuth scope string
	Scope string
	// InstalledAt is when the store was first connected
	InstalledAt time.Time
	// UpdatedAt is when the credential was last replaced
	UpdatedAt time.Time
}

// NewConnection creates a connection for a shop
func NewConnection(shopDomain, accessToken, scope string) (*Connection, error) {
	shopDomain = strings.ToLower(strings.TrimSpace(shopDomain))
	if shopDomain == "" || strings.ContainsAny(shopDomain, "/ ") {
		return nil, ErrInvalidShopDomain
	}
	if accessToken == "" {
		return nil, ErrInvalidAccessToken
	}

	now := time.Now()
	return &Connection{
		ID:          uuid.New(),
		ShopDomain:  shopDomain,
		AccessToken: accessToken,
		Scope:       scope,
		InstalledAt: now,
		UpdatedAt:   now,
	}, nil
}

// ReplaceToken swaps in a fresh credential after re-authentication
func (c *Connection) ReplaceToken(accessToken, scope string) error {
	if accessToken == "" {
		return ErrInvalidAccessToken
	}
	c.AccessToken = accessToken
	c.Scope = scope
	c.UpdatedAt = time.Now()
	return nil
}

// Repository defines the persistence interface for connections
type Repository interface {
	// FindByShopDomain returns the connection for a shop, or
	// ErrConnectionNotFound
	FindByShopDomain(ctx context.Context, shopDomain string) (*Connection, error)

	// FindAll returns all connected stores
	FindAll(ctx context.Context) ([]Connection, error)

	// Save creates or updates a connection
	Save(ctx context.Context, conn *Connection) error

	// Delete removes a connection
	Delete(ctx context.Context, shopDomain string) error
}
