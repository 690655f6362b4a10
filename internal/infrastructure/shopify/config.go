package shopify

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultAPIVersion is the Shopify Admin API version this adapter targets
const DefaultAPIVersion = "2024-01"

const (
	defaultPageSize       = 250
	defaultMaxPages       = 100
	defaultTimeoutSeconds = 30
)

// Errors for Shopify configuration
var (
	ErrConfigMissingShopDomain  = errors.New("shopify: shop domain is required")
	ErrConfigMissingAccessToken = errors.New("shopify: access token is required")
	ErrConfigInvalidShopDomain  = errors.New("shopify: invalid shop domain")
)

// Config holds configuration for the Shopify Admin API integration
type Config struct {
	// ShopDomain is the myshopify domain of the store
	ShopDomain string
	// AccessToken is the Admin API access token
	AccessToken string
	// APIVersion is the Admin API version to target
	APIVersion string
	// APIBaseURL overrides the derived base URL (tests, proxies)
	APIBaseURL string
	// PageSize is the products-per-page limit for catalog reads
	PageSize int
	// MaxPages caps the number of pages one read will follow, as a safety
	// valve against a misbehaving pagination cursor
	MaxPages int
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// NewConfig creates a Shopify configuration with defaults
func NewConfig(shopDomain, accessToken string) *Config {
	return &Config{
		ShopDomain:     shopDomain,
		AccessToken:    accessToken,
		APIVersion:     DefaultAPIVersion,
		PageSize:       defaultPageSize,
		MaxPages:       defaultMaxPages,
		TimeoutSeconds: defaultTimeoutSeconds,
	}
}

// Validate validates the Shopify configuration and fills defaults
func (c *Config) Validate() error {
	if c.ShopDomain == "" {
		return ErrConfigMissingShopDomain
	}
	if strings.ContainsAny(c.ShopDomain, "/ ") {
		return fmt.Errorf("%w: %s", ErrConfigInvalidShopDomain, c.ShopDomain)
	}
	if c.AccessToken == "" {
		return ErrConfigMissingAccessToken
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.PageSize <= 0 || c.PageSize > 250 {
		c.PageSize = defaultPageSize
	}
	if c.MaxPages <= 0 {
		c.MaxPages = defaultMaxPages
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
	return nil
}

// BaseURL returns the API base URL for this store
func (c *Config) BaseURL() string {
	if c.APIBaseURL != "" {
		return c.APIBaseURL
	}
	return fmt.Sprintf("https://%s/admin/api/%s", c.ShopDomain, c.APIVersion)
}
