package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsync/backend/internal/domain/catalog"
)

func newTestAdapter(t *testing.T, serverURL string) *Adapter {
	t.Helper()
	config := NewConfig("secret_test", "db-1")
	config.APIBaseURL = serverURL
	adapter, err := NewAdapter(config, nil)
	require.NoError(t, err)
	return adapter
}

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string    { return &s }

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{
			name:    "valid config",
			config:  NewConfig("secret_key", "db-1"),
			wantErr: nil,
		},
		{
			name:    "missing API key",
			config:  &Config{DatabaseID: "db-1"},
			wantErr: ErrConfigMissingAPIKey,
		},
		{
			name:    "missing database ID",
			config:  &Config{APIKey: "secret_key"},
			wantErr: ErrConfigMissingDatabaseID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, DefaultNotionVersion, tt.config.NotionVersion)
				assert.True(t, tt.config.PageSize > 0)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Read Tests
// ---------------------------------------------------------------------------

func TestAdapter_ReadProducts(t *testing.T) {
	t.Run("maps properties with defensive defaults", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret_test", r.Header.Get("Authorization"))
			assert.Equal(t, DefaultNotionVersion, r.Header.Get("Notion-Version"))
			require.Equal(t, "/databases/db-1/query", r.URL.Path)

			json.NewEncoder(w).Encode(queryResponse{
				Results: []page{
					{
						ID: "page-1",
						Properties: map[string]property{
							propTitle:          {Title: []richText{{Text: &textContent{Content: "Ceramic Mug"}}}},
							propPrice:          {Number: floatPtr(9.99)},
							propInventory:      {Number: floatPtr(40)},
							propSKU:            {RichText: []richText{{Text: &textContent{Content: "MUG-1"}}}},
							propImageURL:       {URL: strPtr("https://cdn/mug.png")},
							propShopifyID:      {RichText: []richText{{Text: &textContent{Content: "7001"}}}},
							propStatus:         {Select: &selectOption{Name: "Active"}},
							propCategory:       {RichText: []richText{{Text: &textContent{Content: "Kitchen"}}}},
							propVendor:         {RichText: []richText{{Text: &textContent{Content: "Clayworks"}}}},
							propTags:           {RichText: []richText{{Text: &textContent{Content: "mug, gift"}}}},
							propShippingWeight: {Number: floatPtr(0.4)},
						},
					},
					{
						// Sparse page: only a title, everything else defaults
						ID: "page-2",
						Properties: map[string]property{
							propTitle: {Title: []richText{{Text: &textContent{Content: "Untracked"}}}},
						},
					},
				},
				HasMore: false,
			})
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		products, err := adapter.ReadProducts(context.Background())
		require.NoError(t, err)
		require.Len(t, products, 2)

		mug := products[0]
		assert.Equal(t, "page-1", mug.SourceID)
		assert.Equal(t, "7001", mug.ExternalID)
		assert.Equal(t, "Ceramic Mug", mug.Title)
		assert.True(t, mug.Price.Equal(decimal.NewFromFloat(9.99)))
		assert.Equal(t, 40, mug.Inventory)
		assert.Equal(t, "MUG-1", mug.SKU)
		assert.Equal(t, catalog.StatusActive, mug.Status)
		assert.Equal(t, "Kitchen", mug.Category)
		assert.Equal(t, "Clayworks", mug.Vendor)
		assert.Equal(t, "mug, gift", mug.Tags)
		assert.Equal(t, "https://cdn/mug.png", mug.ImageURL)

		sparse := products[1]
		assert.Equal(t, "page-2", sparse.SourceID)
		assert.Equal(t, "", sparse.ExternalID)
		assert.False(t, sparse.IsLinked())
		assert.True(t, sparse.Price.IsZero())
		assert.Equal(t, 0, sparse.Inventory)
		assert.Equal(t, catalog.StatusDraft, sparse.Status)
	})

	t.Run("follows cursor pagination", func(t *testing.T) {
		cursor := "c2"
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req queryRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.StartCursor == "" {
				json.NewEncoder(w).Encode(queryResponse{
					Results:    []page{{ID: "page-1"}},
					HasMore:    true,
					NextCursor: &cursor,
				})
				return
			}
			assert.Equal(t, "c2", req.StartCursor)
			json.NewEncoder(w).Encode(queryResponse{
				Results: []page{{ID: "page-2"}},
				HasMore: false,
			})
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		products, err := adapter.ReadProducts(context.Background())
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "page-1", products[0].SourceID)
		assert.Equal(t, "page-2", products[1].SourceID)
	})

	t.Run("fetch failure aborts the read", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		_, err := adapter.ReadProducts(context.Background())
		assert.ErrorIs(t, err, catalog.ErrFetchFailed)
		assert.ErrorIs(t, err, catalog.ErrUnauthenticated)
	})
}

// ---------------------------------------------------------------------------
// Write Tests
// ---------------------------------------------------------------------------

func TestAdapter_WriteBack(t *testing.T) {
	t.Run("patches the link property", func(t *testing.T) {
		var received pageRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPatch, r.Method)
			require.Equal(t, "/pages/page-1", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			json.NewEncoder(w).Encode(page{ID: "page-1"})
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		err := adapter.WriteBack(context.Background(), "page-1", catalog.LinkFields{ExternalID: "8123"})
		require.NoError(t, err)

		link, ok := received.Properties[propShopifyID]
		require.True(t, ok)
		require.Len(t, link.RichText, 1)
		assert.Equal(t, "8123", link.RichText[0].Text.Content)
	})

	t.Run("missing page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		err := adapter.WriteBack(context.Background(), "gone", catalog.LinkFields{ExternalID: "8123"})
		assert.ErrorIs(t, err, catalog.ErrWriteFailed)
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})
}

func TestAdapter_CreateProduct(t *testing.T) {
	t.Run("creates a page with present fields only", func(t *testing.T) {
		var received pageRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/pages", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			json.NewEncoder(w).Encode(page{ID: "page-new"})
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		id, err := adapter.CreateProduct(context.Background(), catalog.Product{
			ExternalID: "7001",
			Title:      "Imported Lamp",
			Price:      decimal.NewFromFloat(24.99),
			Inventory:  12,
			SKU:        "LAMP-1",
			Status:     catalog.StatusActive,
			Vendor:     "Lumen",
		})
		require.NoError(t, err)
		assert.Equal(t, "page-new", id)

		require.NotNil(t, received.Parent)
		assert.Equal(t, "db-1", received.Parent.DatabaseID)
		assert.Equal(t, "Imported Lamp", received.Properties[propTitle].Title[0].Text.Content)
		assert.Equal(t, "7001", received.Properties[propShopifyID].RichText[0].Text.Content)
		assert.Equal(t, "Active", received.Properties[propStatus].Select.Name)
		assert.Equal(t, "Lumen", received.Properties[propVendor].RichText[0].Text.Content)

		// Absent optionals are not written at all
		_, hasCategory := received.Properties[propCategory]
		assert.False(t, hasCategory)
		_, hasImage := received.Properties[propImageURL]
		assert.False(t, hasImage)
	})

	t.Run("surfaces write failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(errorResponse{Code: "validation_error", Message: "bad property"})
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		_, err := adapter.CreateProduct(context.Background(), catalog.Product{Title: "X"})
		assert.ErrorIs(t, err, catalog.ErrWriteFailed)
	})
}
