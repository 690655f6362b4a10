// Package sync contains the orchestration service driving catalog
// synchronization runs between Notion and Shopify.
package sync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/shelfsync/backend/internal/domain/catalog"
	"github.com/shelfsync/backend/internal/domain/connection"
	"github.com/shelfsync/backend/internal/infrastructure/telemetry"
)

// ErrRunInProgress indicates another sync run already holds the account lock
var ErrRunInProgress = errors.New("sync: a run is already in progress for this account")

// PlatformFactory builds a commerce platform adapter bound to an account's
// stored credential. Adapters are constructed per run; nothing global.
type PlatformFactory interface {
	PlatformFor(conn *connection.Connection) (catalog.CommercePlatform, error)
}

// RunLock guards against concurrent runs for the same account. Optional:
// a nil lock disables guarding for single-instance deployments.
type RunLock interface {
	// Acquire takes the lock for an account and returns a release function.
	// Returns false if the lock is already held.
	Acquire(ctx context.Context, shopDomain string) (release func(), acquired bool, err error)
}

// Service orchestrates sync runs. Records are processed strictly
// sequentially within a run; the only shared mutable state is the
// SyncResult accumulator owned by the loop.
type Service struct {
	store       catalog.DocumentStore
	platforms   PlatformFactory
	connections connection.Repository
	locks       RunLock
	logger      *zap.Logger
}

// NewService creates the sync orchestration service
func NewService(
	store catalog.DocumentStore,
	platforms PlatformFactory,
	connections connection.Repository,
	locks RunLock,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:       store,
		platforms:   platforms,
		connections: connections,
		locks:       locks,
		logger:      logger,
	}
}

// Run executes one synchronization run for an account using the given
// strategy. Catalog read failures and missing credentials are fatal; every
// write failure is isolated to its record and the run continues.
func (s *Service) Run(ctx context.Context, strategy catalog.Strategy, shopDomain string) (*catalog.SyncResult, error) {
	if !strategy.IsValid() {
		return nil, catalog.ErrInvalidStrategy
	}

	ctx, span := telemetry.StartSpan(ctx, "sync.run",
		telemetry.WithAttribute("sync.strategy", strategy.String()),
		telemetry.WithAttribute("sync.shop_domain", shopDomain),
	)
	defer span.End()

	platform, err := s.platformFor(ctx, shopDomain)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.locks != nil {
		release, acquired, err := s.locks.Acquire(ctx, shopDomain)
		if err != nil {
			return nil, fmt.Errorf("sync: acquiring run lock: %w", err)
		}
		if !acquired {
			return nil, ErrRunInProgress
		}
		defer release()
	}

	log := s.logger.With(
		zap.String("strategy", strategy.String()),
		zap.String("shop_domain", shopDomain),
	)
	log.Info("starting sync run")

	var result *catalog.SyncResult
	switch strategy {
	case catalog.StrategyFull:
		result, err = s.runFull(ctx, platform, log)
	case catalog.StrategySmartIncremental:
		result, err = s.runSmartIncremental(ctx, platform, log)
	case catalog.StrategyCreateOnly:
		result, err = s.runCreateOnly(ctx, platform, log)
	case catalog.StrategyImport:
		result, err = s.runImport(ctx, platform, log)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("sync run aborted", zap.Error(err))
		return nil, err
	}

	result.Complete()
	log.Info("sync run complete",
		zap.Int("total", result.Total),
		zap.Int("created", result.Created),
		zap.Int("synced", result.Synced),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
		zap.String("status", string(result.Status())),
	)
	return result, nil
}

// SyncProduct pushes a single source record to the platform unconditionally.
// Used by the dashboard's per-product sync action.
func (s *Service) SyncProduct(ctx context.Context, shopDomain, sourceID string) (*catalog.SyncResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "sync.product",
		telemetry.WithAttribute("sync.shop_domain", shopDomain),
		telemetry.WithAttribute("sync.source_id", sourceID),
	)
	defer span.End()

	platform, err := s.platformFor(ctx, shopDomain)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	products, err := s.store.ReadProducts(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var record *catalog.Product
	for i := range products {
		if products[i].SourceID == sourceID {
			record = &products[i]
			break
		}
	}
	if record == nil {
		return nil, fmt.Errorf("%w: source record %s", catalog.ErrNotFound, sourceID)
	}

	result := catalog.NewSyncResult(catalog.StrategyFull)
	result.Total = 1
	s.pushRecord(ctx, platform, record, result, s.logger)
	result.Complete()
	return result, nil
}

// platformFor resolves the stored credential and builds the platform adapter
func (s *Service) platformFor(ctx context.Context, shopDomain string) (catalog.CommercePlatform, error) {
	conn, err := s.connections.FindByShopDomain(ctx, shopDomain)
	if err != nil {
		if errors.Is(err, connection.ErrConnectionNotFound) {
			return nil, fmt.Errorf("%w: %s", catalog.ErrCredentialNotFound, shopDomain)
		}
		return nil, err
	}
	return s.platforms.PlatformFor(conn)
}

// ---------------------------------------------------------------------------
// Strategies
// ---------------------------------------------------------------------------

// runFull pushes every linked record regardless of detected change.
// Unlinked records are skipped; Full never creates.
func (s *Service) runFull(ctx context.Context, platform catalog.CommercePlatform, log *zap.Logger) (*catalog.SyncResult, error) {
	products, err := s.store.ReadProducts(ctx)
	if err != nil {
		return nil, err
	}

	result := catalog.NewSyncResult(catalog.StrategyFull)
	result.Total = len(products)

	for i := range products {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.pushRecord(ctx, platform, &products[i], result, log)
	}
	return result, nil
}

// runSmartIncremental detects changes and pushes only Updated entries.
// New entries (unlinked records) are out of scope for this strategy and are
// counted as skipped.
func (s *Service) runSmartIncremental(ctx context.Context, platform catalog.CommercePlatform, log *zap.Logger) (*catalog.SyncResult, error) {
	source, err := s.store.ReadProducts(ctx)
	if err != nil {
		return nil, err
	}
	target, err := platform.ReadProducts(ctx)
	if err != nil {
		return nil, err
	}

	detector := catalog.NewDetector(s.store, log)
	entries, err := detector.Detect(ctx, source, target)
	if err != nil {
		return nil, err
	}
	log.Info("change detection complete",
		zap.Int("source_total", len(source)),
		zap.Int("actionable", len(entries)),
	)

	result := catalog.NewSyncResult(catalog.StrategySmartIncremental)
	result.Total = len(source)

	for i := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry := &entries[i]
		if entry.Classification != catalog.ClassificationUpdated {
			result.RecordSkipped()
			continue
		}

		update := catalog.UpdateFromProduct(&entry.Source)
		update.DescriptionHTML = entry.DescriptionHTML
		s.updateRecord(ctx, platform, &entry.Source, update, result, log)
	}
	return result, nil
}

// runCreateOnly creates platform products for unlinked records and writes
// the issued ID back onto the source record. The "has external ID" check is
// the only creation gate: a record left unlinked by an earlier write-back
// failure will be re-created on the next run, which is the documented
// trade-off against inventing IDs locally.
func (s *Service) runCreateOnly(ctx context.Context, platform catalog.CommercePlatform, log *zap.Logger) (*catalog.SyncResult, error) {
	products, err := s.store.ReadProducts(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]catalog.Product, 0)
	for _, p := range products {
		if !p.IsLinked() {
			candidates = append(candidates, p)
		}
	}
	log.Info("found unlinked products to create", zap.Int("count", len(candidates)))

	result := catalog.NewSyncResult(catalog.StrategyCreateOnly)
	result.Total = len(candidates)

	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record := &candidates[i]

		record.DescriptionHTML = s.renderDescription(ctx, record, log)

		externalID, err := platform.CreateProduct(ctx, *record)
		if err != nil {
			log.Error("failed to create product", zap.String("title", record.Title), zap.Error(err))
			result.RecordFailure(record, catalog.ErrorKindWrite, err)
			continue
		}

		if err := s.store.WriteBack(ctx, record.SourceID, catalog.LinkFields{ExternalID: externalID}); err != nil {
			// The platform product now exists but the source record is still
			// unlinked. Surfaced distinctly so the next run's duplicate
			// creation is an operator decision, not a silent retry.
			log.Error("link write-back failed after creation",
				zap.String("source_id", record.SourceID),
				zap.String("external_id", externalID),
				zap.Error(err),
			)
			result.RecordFailure(record, catalog.ErrorKindLinkInconsistency,
				fmt.Errorf("%w: platform product %s", catalog.ErrLinkInconsistency, externalID))
			continue
		}

		log.Info("created and linked product",
			zap.String("title", record.Title),
			zap.String("external_id", externalID),
		)
		result.RecordCreated()
	}
	return result, nil
}

// runImport creates source pages for platform products that no source
// record links to. Reverse direction, creation only: existing source
// records are never touched.
func (s *Service) runImport(ctx context.Context, platform catalog.CommercePlatform, log *zap.Logger) (*catalog.SyncResult, error) {
	source, err := s.store.ReadProducts(ctx)
	if err != nil {
		return nil, err
	}
	target, err := platform.ReadProducts(ctx)
	if err != nil {
		return nil, err
	}

	linked := make(map[string]struct{}, len(source))
	for _, p := range source {
		if p.IsLinked() {
			linked[p.ExternalID] = struct{}{}
		}
	}

	candidates := make([]catalog.Product, 0)
	for _, p := range target {
		if _, ok := linked[p.ExternalID]; !ok {
			candidates = append(candidates, p)
		}
	}
	log.Info("found platform products to import", zap.Int("count", len(candidates)))

	result := catalog.NewSyncResult(catalog.StrategyImport)
	result.Total = len(candidates)

	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record := &candidates[i]

		sourceID, err := s.store.CreateProduct(ctx, *record)
		if err != nil {
			log.Error("failed to import product", zap.String("title", record.Title), zap.Error(err))
			result.RecordFailure(record, catalog.ErrorKindWrite, err)
			continue
		}
		log.Info("imported product",
			zap.String("title", record.Title),
			zap.String("source_id", sourceID),
		)
		result.RecordCreated()
	}
	return result, nil
}

// ---------------------------------------------------------------------------
// Per-record processing
// ---------------------------------------------------------------------------

// pushRecord updates one linked record on the platform, classifying the
// outcome into the result. Unlinked records are skipped: updating requires a
// link and Full never creates.
func (s *Service) pushRecord(ctx context.Context, platform catalog.CommercePlatform, record *catalog.Product, result *catalog.SyncResult, log *zap.Logger) {
	if !record.IsLinked() {
		log.Debug("skipping unlinked product", zap.String("title", record.Title))
		result.RecordSkipped()
		return
	}
	s.updateRecord(ctx, platform, record, catalog.UpdateFromProduct(record), result, log)
}

// updateRecord issues the platform update and records the outcome. One
// record's failure never aborts the batch.
func (s *Service) updateRecord(ctx context.Context, platform catalog.CommercePlatform, record *catalog.Product, update catalog.ProductUpdate, result *catalog.SyncResult, log *zap.Logger) {
	if err := platform.UpdateProduct(ctx, record.ExternalID, update); err != nil {
		kind := catalog.ErrorKindWrite
		if errors.Is(err, catalog.ErrPartialWrite) {
			kind = catalog.ErrorKindPartialWrite
		}
		log.Error("failed to sync product",
			zap.String("title", record.Title),
			zap.String("external_id", record.ExternalID),
			zap.Error(err),
		)
		result.RecordFailure(record, kind, err)
		return
	}
	log.Debug("synced product", zap.String("title", record.Title))
	result.RecordSynced()
}

// renderDescription renders page content for creation. Failures are soft:
// the product is created without a description.
func (s *Service) renderDescription(ctx context.Context, record *catalog.Product, log *zap.Logger) string {
	html, err := s.store.RenderContent(ctx, record.SourceID)
	if err != nil {
		log.Warn("could not render description for creation",
			zap.String("source_id", record.SourceID),
			zap.String("title", record.Title),
			zap.Error(err),
		)
		return ""
	}
	return html
}
