package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shelfsync/backend/internal/domain/catalog"
)

// RenderContent renders the block children of a page into HTML, following
// cursor pagination. Unsupported block types are skipped.
func (a *Adapter) RenderContent(ctx context.Context, pageID string) (string, error) {
	var html string

	cursor := ""
	pages := 0

	for {
		if pages >= a.config.MaxPages {
			return "", fmt.Errorf("%w: notion block pagination exceeded %d pages", catalog.ErrFetchFailed, a.config.MaxPages)
		}
		pages++

		endpoint := fmt.Sprintf("%s/blocks/%s/children?page_size=%d", a.config.APIBaseURL, pageID, a.config.PageSize)
		if cursor != "" {
			endpoint += "&start_cursor=" + url.QueryEscape(cursor)
		}

		body, err := a.doRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return "", err
		}

		var resp blocksResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("%w: %v", catalog.ErrInvalidResponse, err)
		}

		for i := range resp.Results {
			html += renderBlock(&resp.Results[i])
		}

		if !resp.HasMore || resp.NextCursor == nil {
			break
		}
		cursor = *resp.NextCursor
	}

	return html, nil
}

// renderBlock converts one block to its HTML fragment
func renderBlock(b *block) string {
	switch b.Type {
	case "paragraph":
		if text := renderRichText(b.Paragraph); text != "" {
			return "<p>" + text + "</p>"
		}
	case "heading_1":
		if text := renderPlainText(b.Heading1); text != "" {
			return "<h1>" + text + "</h1>"
		}
	case "heading_2":
		if text := renderPlainText(b.Heading2); text != "" {
			return "<h2>" + text + "</h2>"
		}
	case "heading_3":
		if text := renderPlainText(b.Heading3); text != "" {
			return "<h3>" + text + "</h3>"
		}
	case "bulleted_list_item":
		if text := renderPlainText(b.BulletedListItem); text != "" {
			return "<li>" + text + "</li>"
		}
	case "numbered_list_item":
		if text := renderPlainText(b.NumberedListItem); text != "" {
			return "<li>" + text + "</li>"
		}
	case "divider":
		return "<hr>"
	case "quote":
		if text := renderPlainText(b.Quote); text != "" {
			return "<blockquote>" + text + "</blockquote>"
		}
	case "code":
		if text := renderPlainText(b.Code); text != "" {
			return "<pre><code>" + text + "</code></pre>"
		}
	case "image":
		if b.Image == nil {
			return ""
		}
		switch {
		case b.Image.Type == "external" && b.Image.External != nil:
			return `<img src="` + b.Image.External.URL + `" style="max-width:100%;">`
		case b.Image.Type == "file" && b.Image.File != nil:
			return `<img src="` + b.Image.File.URL + `" style="max-width:100%;">`
		}
	}
	return ""
}

// renderRichText renders segments with inline styling and links applied
func renderRichText(body *richTextBody) string {
	if body == nil {
		return ""
	}
	var out string
	for _, seg := range body.RichText {
		formatted := segmentText(seg)
		if seg.Annotations.Bold {
			formatted = "<strong>" + formatted + "</strong>"
		}
		if seg.Annotations.Italic {
			formatted = "<em>" + formatted + "</em>"
		}
		if seg.Annotations.Strikethrough {
			formatted = "<s>" + formatted + "</s>"
		}
		if seg.Href != "" {
			formatted = `<a href="` + seg.Href + `">` + formatted + "</a>"
		}
		out += formatted
	}
	return out
}

// renderPlainText renders segments with styling dropped
func renderPlainText(body *richTextBody) string {
	if body == nil {
		return ""
	}
	var out string
	for _, seg := range body.RichText {
		out += segmentText(seg)
	}
	return out
}

func segmentText(seg richText) string {
	if seg.PlainText != "" {
		return seg.PlainText
	}
	if seg.Text != nil {
		return seg.Text.Content
	}
	return ""
}
