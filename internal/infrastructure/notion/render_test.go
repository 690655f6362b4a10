package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsync/backend/internal/domain/catalog"
)

func TestRenderBlock(t *testing.T) {
	tests := []struct {
		name  string
		block block
		want  string
	}{
		{
			name: "plain paragraph",
			block: block{Type: "paragraph", Paragraph: &richTextBody{
				RichText: []richText{{PlainText: "Hand made."}},
			}},
			want: "<p>Hand made.</p>",
		},
		{
			name:  "empty paragraph",
			block: block{Type: "paragraph", Paragraph: &richTextBody{}},
			want:  "",
		},
		{
			name: "styled paragraph with link",
			block: block{Type: "paragraph", Paragraph: &richTextBody{
				RichText: []richText{
					{PlainText: "bold", Annotations: annotations{Bold: true}},
					{PlainText: " and "},
					{PlainText: "linked", Href: "https://example.com"},
				},
			}},
			want: `<p><strong>bold</strong> and <a href="https://example.com">linked</a></p>`,
		},
		{
			name: "heading levels",
			block: block{Type: "heading_2", Heading2: &richTextBody{
				RichText: []richText{{PlainText: "Care"}},
			}},
			want: "<h2>Care</h2>",
		},
		{
			name: "bulleted list item",
			block: block{Type: "bulleted_list_item", BulletedListItem: &richTextBody{
				RichText: []richText{{PlainText: "Dishwasher safe"}},
			}},
			want: "<li>Dishwasher safe</li>",
		},
		{
			name:  "divider",
			block: block{Type: "divider"},
			want:  "<hr>",
		},
		{
			name: "quote",
			block: block{Type: "quote", Quote: &richTextBody{
				RichText: []richText{{PlainText: "Loved it"}},
			}},
			want: "<blockquote>Loved it</blockquote>",
		},
		{
			name: "code",
			block: block{Type: "code", Code: &richTextBody{
				RichText: []richText{{PlainText: "SELECT 1"}},
			}},
			want: "<pre><code>SELECT 1</code></pre>",
		},
		{
			name: "external image",
			block: block{Type: "image", Image: &imageBlock{
				Type:     "external",
				External: &fileRef{URL: "https://cdn/pic.png"},
			}},
			want: `<img src="https://cdn/pic.png" style="max-width:100%;">`,
		},
		{
			name: "hosted file image",
			block: block{Type: "image", Image: &imageBlock{
				Type: "file",
				File: &fileRef{URL: "https://files/pic.png"},
			}},
			want: `<img src="https://files/pic.png" style="max-width:100%;">`,
		},
		{
			name:  "unsupported block type",
			block: block{Type: "table_of_contents"},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, renderBlock(&tt.block))
		})
	}
}

func TestAdapter_RenderContent(t *testing.T) {
	t.Run("concatenates blocks across pages", func(t *testing.T) {
		cursor := "c2"
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/blocks/page-1/children", r.URL.Path)
			if r.URL.Query().Get("start_cursor") == "" {
				json.NewEncoder(w).Encode(blocksResponse{
					Results: []block{
						{Type: "heading_1", Heading1: &richTextBody{RichText: []richText{{PlainText: "Mug"}}}},
					},
					HasMore:    true,
					NextCursor: &cursor,
				})
				return
			}
			json.NewEncoder(w).Encode(blocksResponse{
				Results: []block{
					{Type: "paragraph", Paragraph: &richTextBody{RichText: []richText{{PlainText: "Stoneware."}}}},
				},
				HasMore: false,
			})
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		html, err := adapter.RenderContent(context.Background(), "page-1")
		require.NoError(t, err)
		assert.Equal(t, "<h1>Mug</h1><p>Stoneware.</p>", html)
	})

	t.Run("missing page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		adapter := newTestAdapter(t, server.URL)
		_, err := adapter.RenderContent(context.Background(), "gone")
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	})
}
