package notion

import (
	"errors"
)

// DefaultAPIBaseURL is the Notion API endpoint
const DefaultAPIBaseURL = "https://api.notion.com/v1"

// DefaultNotionVersion is the Notion-Version header value this adapter targets
const DefaultNotionVersion = "2022-06-28"

const (
	defaultPageSize       = 100
	defaultMaxPages       = 100
	defaultTimeoutSeconds = 30
)

// Errors for Notion configuration
var (
	ErrConfigMissingAPIKey     = errors.New("notion: API key is required")
	ErrConfigMissingDatabaseID = errors.New("notion: database ID is required")
)

// Config holds configuration for the Notion API integration
type Config struct {
	// APIKey is the Notion integration token
	APIKey string
	// DatabaseID is the product database the adapter reads and writes
	DatabaseID string
	// APIBaseURL overrides the API endpoint (tests, proxies)
	APIBaseURL string
	// NotionVersion is the API version header value
	NotionVersion string
	// PageSize is the records-per-page limit for catalog and block reads
	PageSize int
	// MaxPages caps the number of pages one read will follow, as a safety
	// valve against a misbehaving pagination cursor
	MaxPages int
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// NewConfig creates a Notion configuration with defaults
func NewConfig(apiKey, databaseID string) *Config {
	return &Config{
		APIKey:         apiKey,
		DatabaseID:     databaseID,
		APIBaseURL:     DefaultAPIBaseURL,
		NotionVersion:  DefaultNotionVersion,
		PageSize:       defaultPageSize,
		MaxPages:       defaultMaxPages,
		TimeoutSeconds: defaultTimeoutSeconds,
	}
}

// Validate validates the Notion configuration and fills defaults
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrConfigMissingAPIKey
	}
	if c.DatabaseID == "" {
		return ErrConfigMissingDatabaseID
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.NotionVersion == "" {
		c.NotionVersion = DefaultNotionVersion
	}
	if c.PageSize <= 0 || c.PageSize > 100 {
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
