package notion

import (
	"github.com/shopspring/decimal"

	"github.com/shelfsync/backend/internal/domain/catalog"
)

// ---------------------------------------------------------------------------
// Notion API Types
// ---------------------------------------------------------------------------

// Property names in the product database
const (
	propTitle          = "Title"
	propPrice          = "Price"
	propInventory      = "Inventory"
	propSKU            = "SKU"
	propImageURL       = "Image URL"
	propShopifyID      = "Shopify ID"
	propStatus         = "Status"
	propCategory       = "Category"
	propTags           = "Tags"
	propVendor         = "Vendor"
	propShippingWeight = "Shipping Weight"
)

// page is a page object from the Notion API
type page struct {
	ID         string              `json:"id"`
	Properties map[string]property `json:"properties"`
}

// property is a database property value. Exactly one of the typed fields is
// set, keyed by the property's configured type.
type property struct {
	Title    []richText    `json:"title,omitempty"`
	RichText []richText    `json:"rich_text,omitempty"`
	Number   *float64      `json:"number,omitempty"`
	Select   *selectOption `json:"select,omitempty"`
	URL      *string       `json:"url,omitempty"`
}

// selectOption is a select property value
type selectOption struct {
	Name string `json:"name"`
}

// richText is one rich text segment
type richText struct {
	Text        *textContent `json:"text,omitempty"`
	PlainText   string       `json:"plain_text,omitempty"`
	Href        string       `json:"href,omitempty"`
	Annotations annotations  `json:"annotations,omitempty"`
}

type textContent struct {
	Content string `json:"content"`
}

// annotations carries the styling flags on a rich text segment
type annotations struct {
	Bold          bool `json:"bold,omitempty"`
	Italic        bool `json:"italic,omitempty"`
	Strikethrough bool `json:"strikethrough,omitempty"`
}

// queryRequest is the body for database query calls
type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// queryResponse wraps database query results
type queryResponse struct {
	Results    []page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// pageRequest is the body for page create/update calls
type pageRequest struct {
	Parent     *pageParent         `json:"parent,omitempty"`
	Properties map[string]property `json:"properties"`
}

type pageParent struct {
	DatabaseID string `json:"database_id"`
}

// block is a content block from the blocks children endpoint
type block struct {
	Type             string        `json:"type"`
	Paragraph        *richTextBody `json:"paragraph,omitempty"`
	Heading1         *richTextBody `json:"heading_1,omitempty"`
	Heading2         *richTextBody `json:"heading_2,omitempty"`
	Heading3         *richTextBody `json:"heading_3,omitempty"`
	BulletedListItem *richTextBody `json:"bulleted_list_item,omitempty"`
	NumberedListItem *richTextBody `json:"numbered_list_item,omitempty"`
	Quote            *richTextBody `json:"quote,omitempty"`
	Code             *richTextBody `json:"code,omitempty"`
	Image            *imageBlock   `json:"image,omitempty"`
}

type richTextBody struct {
	RichText []richText `json:"rich_text"`
}

type imageBlock struct {
	Type     string     `json:"type"`
	External *fileRef   `json:"external,omitempty"`
	File     *fileRef   `json:"file,omitempty"`
	Caption  []richText `json:"caption,omitempty"`
}

type fileRef struct {
	URL string `json:"url"`
}

// blocksResponse wraps block children results
type blocksResponse struct {
	Results    []block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// errorResponse is Notion's error envelope
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ---------------------------------------------------------------------------
// Canonical mapping
// ---------------------------------------------------------------------------

// toCanonical maps a database page into the canonical shape. Absent or
// malformed properties normalize to zero values so one sloppy page never
// aborts a catalog read.
func (p *page) toCanonical() catalog.Product {
	return catalog.Product{
		SourceID:       p.ID,
		ExternalID:     p.text(propShopifyID),
		Title:          p.title(),
		Price:          p.number(propPrice),
		Inventory:      int(p.number(propInventory).IntPart()),
		SKU:            p.text(propSKU),
		Status:         catalog.ParseStatus(p.selectName(propStatus)),
		Category:       p.text(propCategory),
		Vendor:         p.text(propVendor),
		Tags:           p.text(propTags),
		ImageURL:       p.url(propImageURL),
		ShippingWeight: p.number(propShippingWeight),
	}
}

func (p *page) title() string {
	prop, ok := p.Properties[propTitle]
	if !ok {
		return ""
	}
	return joinText(prop.Title)
}

func (p *page) text(name string) string {
	prop, ok := p.Properties[name]
	if !ok {
		return ""
	}
	return joinText(prop.RichText)
}

func (p *page) number(name string) decimal.Decimal {
	prop, ok := p.Properties[name]
	if !ok || prop.Number == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*prop.Number)
}

func (p *page) selectName(name string) string {
	prop, ok := p.Properties[name]
	if !ok || prop.Select == nil {
		return ""
	}
	return prop.Select.Name
}

func (p *page) url(name string) string {
	prop, ok := p.Properties[name]
	if !ok || prop.URL == nil {
		return ""
	}
	return *prop.URL
}

func joinText(segments []richText) string {
	var out string
	for _, seg := range segments {
		if seg.Text != nil {
			out += seg.Text.Content
		} else {
			out += seg.PlainText
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Property builders
// ---------------------------------------------------------------------------

func titleProp(content string) property {
	return property{Title: []richText{{Text: &textContent{Content: content}}}}
}

func richTextProp(content string) property {
	return property{RichText: []richText{{Text: &textContent{Content: content}}}}
}

func numberProp(value decimal.Decimal) property {
	f, _ := value.Float64()
	return property{Number: &f}
}

func selectProp(name string) property {
	return property{Select: &selectOption{Name: name}}
}

func urlProp(value string) property {
	return property{URL: &value}
}
