package catalog

import (
	"context"

	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Classification
// ---------------------------------------------------------------------------

// Classification is the detector's verdict for a source record
type Classification string

const (
	// ClassificationNew indicates the record has no platform counterpart
	ClassificationNew Classification = "NEW"
	// ClassificationUpdated indicates at least one compared field diverged
	ClassificationUpdated Classification = "UPDATED"
	// ClassificationUnchanged indicates every compared field matched
	ClassificationUnchanged Classification = "UNCHANGED"
)

// String returns the string representation of Classification
func (c Classification) String() string {
	return string(c)
}

// ChangeEntry is the detector's output for one actionable source record.
// Entries are computed fresh on every run and never persisted.
type ChangeEntry struct {
	// Source is the canonical Notion-side record
	Source Product
	// Target is the matched Shopify-side record, nil for New entries
	Target *Product
	// Classification is the verdict for this pair
	Classification Classification
	// Description is the rendered plain-text description that was compared
	Description string
	// DescriptionHTML is the rendered rich description, kept for writes
	DescriptionHTML string
}

// ---------------------------------------------------------------------------
// Detector
// ---------------------------------------------------------------------------

// Detector computes point-in-time changesets between the two catalogs.
// It holds no state between runs; there is no durable change log.
type Detector struct {
	renderer ContentRenderer
	logger   *zap.Logger
}

// NewDetector creates a change detector. The renderer enriches linked
// records with their rendered description before comparison.
func NewDetector(renderer ContentRenderer, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{renderer: renderer, logger: logger}
}

// Detect compares the source catalog against the platform catalog and
// returns the actionable entries (New and Updated). Unchanged records are
// dropped so the orchestrator only sees work to do.
//
// Unlinked records are always New. A linked record whose counterpart is
// missing from the platform catalog (deleted externally) is also treated as
// New, since re-creation is the only safe recovery; this drift is logged
// distinctly.
func (d *Detector) Detect(ctx context.Context, source, target []Product) ([]ChangeEntry, error) {
	byExternalID := make(map[string]*Product, len(target))
	for i := range target {
		if target[i].ExternalID != "" {
			byExternalID[target[i].ExternalID] = &target[i]
		}
	}

	entries := make([]ChangeEntry, 0)

	for _, record := range source {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !record.IsLinked() {
			entries = append(entries, ChangeEntry{
				Source:         record,
				Classification: ClassificationNew,
			})
			continue
		}

		matched, ok := byExternalID[record.ExternalID]
		if !ok {
			d.logger.Warn("linked product missing from platform catalog, treating as new",
				zap.String("source_id", record.SourceID),
				zap.String("external_id", record.ExternalID),
				zap.String("title", record.Title),
			)
			entries = append(entries, ChangeEntry{
				Source:         record,
				Classification: ClassificationNew,
			})
			continue
		}

		descriptionHTML, description := d.renderDescription(ctx, record)

		if !ProductChanged(&record, matched, description) {
			continue
		}

		entries = append(entries, ChangeEntry{
			Source:          record,
			Target:          matched,
			Classification:  ClassificationUpdated,
			Description:     description,
			DescriptionHTML: descriptionHTML,
		})
	}

	return entries, nil
}

// renderDescription fetches the rendered page content for a record. Render
// failures are soft: they are logged and the description compares as empty,
// they never abort the run.
func (d *Detector) renderDescription(ctx context.Context, record Product) (html, plain string) {
	if d.renderer == nil {
		return "", ""
	}
	rendered, err := d.renderer.RenderContent(ctx, record.SourceID)
	if err != nil {
		d.logger.Warn("could not render description, comparing as empty",
			zap.String("source_id", record.SourceID),
			zap.String("title", record.Title),
			zap.Error(err),
		)
		return "", ""
	}
	return rendered, StripMarkup(rendered)
}

// ProductChanged reports whether any compared field of the source record
// diverges from its platform counterpart. Price and weight compare as
// decimals so representation drift from string round-trips ("19.99" vs
// 19.99) never registers; descriptions compare as stripped plain text.
func ProductChanged(source, target *Product, description string) bool {
	if target == nil {
		return true
	}

	switch {
	case source.Title != target.Title:
		return true
	case !source.Price.Equal(target.Price):
		return true
	case source.Inventory != target.Inventory:
		return true
	case source.SKU != target.SKU:
		return true
	case source.Status != target.Status:
		return true
	case source.Category != target.Category:
		return true
	case source.Vendor != target.Vendor:
		return true
	case source.Tags != target.Tags:
		return true
	case description != StripMarkup(target.Description):
		return true
	}
	return false
}
