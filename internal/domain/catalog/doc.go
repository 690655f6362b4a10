// Package catalog contains the catalog synchronization bounded context.
// This context reconciles the product catalog held in a Notion database
// (the writer of record) with the catalog held in a Shopify store.
//
// Key concepts:
//   - Product: canonical value object both sources are normalized into
//   - Detector: point-in-time, field-by-field change detection over linked pairs
//   - ChangeEntry: the detector's verdict for one source record
//   - SyncResult: per-run accumulator returned to the caller, never persisted
//
// Design Pattern: Ports & Adapters
//   - Ports (DocumentStore, CommercePlatform, ContentRenderer) are defined here
//   - Adapters (Notion, Shopify) are in the infrastructure layer
package catalog
