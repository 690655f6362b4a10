package shopify

import (
	"go.uber.org/zap"

	"github.com/shelfsync/backend/internal/domain/catalog"
	"github.com/shelfsync/backend/internal/domain/connection"
)

// FactoryOptions carries the adapter settings shared by every store. The
// per-store shop domain and access token come from the connection.
type FactoryOptions struct {
	APIVersion     string
	APIBaseURL     string
	PageSize       int
	MaxPages       int
	TimeoutSeconds int
}

// Factory builds Shopify adapters bound to a store connection
type Factory struct {
	opts   FactoryOptions
	logger *zap.Logger
}

// NewFactory creates a Shopify adapter factory
func NewFactory(opts FactoryOptions, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{opts: opts, logger: logger}
}

// PlatformFor builds an adapter for the given store connection
func (f *Factory) PlatformFor(conn *connection.Connection) (catalog.CommercePlatform, error) {
	config := NewConfig(conn.ShopDomain, conn.AccessToken)
	if f.opts.APIVersion != "" {
		config.APIVersion = f.opts.APIVersion
	}
	if f.opts.APIBaseURL != "" {
		config.APIBaseURL = f.opts.APIBaseURL
	}
	if f.opts.PageSize > 0 {
		config.PageSize = f.opts.PageSize
	}
	if f.opts.MaxPages > 0 {
		config.MaxPages = f.opts.MaxPages
	}
	if f.opts.TimeoutSeconds > 0 {
		config.TimeoutSeconds = f.opts.TimeoutSeconds
	}
	return NewAdapter(config, f.logger.With(zap.String("shop_domain", conn.ShopDomain)))
}
