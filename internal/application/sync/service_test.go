package sync

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsync/backend/internal/domain/catalog"
	"github.com/shelfsync/backend/internal/domain/connection"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

// fakeStore is an in-memory DocumentStore. WriteBack mutates the stored
// record so consecutive runs observe the established link.
type fakeStore struct {
	products   []catalog.Product
	content    map[string]string
	readErr    error
	renderErr  error
	writeErr   map[string]error
	createErr  error
	writeBacks []string
	created    []catalog.Product
}

func (s *fakeStore) ReadProducts(context.Context) ([]catalog.Product, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	out := make([]catalog.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *fakeStore) RenderContent(_ context.Context, pageID string) (string, error) {
	if s.renderErr != nil {
		return "", s.renderErr
	}
	return s.content[pageID], nil
}

func (s *fakeStore) WriteBack(_ context.Context, sourceID string, fields catalog.LinkFields) error {
	if err := s.writeErr[sourceID]; err != nil {
		return err
	}
	for i := range s.products {
		if s.products[i].SourceID == sourceID {
			s.products[i].ExternalID = fields.ExternalID
		}
	}
	s.writeBacks = append(s.writeBacks, sourceID)
	return nil
}

func (s *fakeStore) CreateProduct(_ context.Context, p catalog.Product) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	id := "page-" + strconv.Itoa(len(s.created)+1)
	p.SourceID = id
	s.created = append(s.created, p)
	s.products = append(s.products, p)
	return id, nil
}

// fakePlatform is an in-memory CommercePlatform that applies updates to its
// catalog, so a second detection pass sees converged state.
type fakePlatform struct {
	products    []catalog.Product
	readErr     error
	failUpdate  map[string]error
	failCreate  map[string]error
	nextID      int
	updateCalls int
	createCalls int
}

func (p *fakePlatform) ReadProducts(context.Context) ([]catalog.Product, error) {
	if p.readErr != nil {
		return nil, p.readErr
	}
	out := make([]catalog.Product, len(p.products))
	copy(out, p.products)
	return out, nil
}

func (p *fakePlatform) CreateProduct(_ context.Context, product catalog.Product) (string, error) {
	p.createCalls++
	if err := p.failCreate[product.SourceID]; err != nil {
		return "", err
	}
	p.nextID++
	id := "shopify-" + strconv.Itoa(p.nextID)
	product.ExternalID = id
	product.Description = catalog.StripMarkup(product.DescriptionHTML)
	p.products = append(p.products, product)
	return id, nil
}

func (p *fakePlatform) UpdateProduct(_ context.Context, externalID string, update catalog.ProductUpdate) error {
	p.updateCalls++
	if err := p.failUpdate[externalID]; err != nil {
		return err
	}
	for i := range p.products {
		if p.products[i].ExternalID == externalID {
			p.products[i].Title = update.Title
			p.products[i].Price = update.Price
			p.products[i].Inventory = update.Inventory
			p.products[i].SKU = update.SKU
			p.products[i].Status = update.Status
			p.products[i].Category = update.Category
			p.products[i].Vendor = update.Vendor
			p.products[i].Tags = update.Tags
			p.products[i].Description = catalog.StripMarkup(update.DescriptionHTML)
			return nil
		}
	}
	return catalog.ErrNotFound
}

type fakeFactory struct {
	platform catalog.CommercePlatform
	conns    []*connection.Connection
}

func (f *fakeFactory) PlatformFor(conn *connection.Connection) (catalog.CommercePlatform, error) {
	f.conns = append(f.conns, conn)
	return f.platform, nil
}

type fakeConnections struct {
	byDomain map[string]*connection.Connection
}

func (r *fakeConnections) FindByShopDomain(_ context.Context, shopDomain string) (*connection.Connection, error) {
	if conn, ok := r.byDomain[shopDomain]; ok {
		return conn, nil
	}
	return nil, connection.ErrConnectionNotFound
}

func (r *fakeConnections) FindAll(context.Context) ([]connection.Connection, error) {
	conns := make([]connection.Connection, 0, len(r.byDomain))
	for _, conn := range r.byDomain {
		conns = append(conns, *conn)
	}
	return conns, nil
}

func (r *fakeConnections) Save(context.Context, *connection.Connection) error { return nil }
func (r *fakeConnections) Delete(context.Context, string) error               { return nil }

type fakeLock struct {
	held     bool
	acquired int
	released int
}

func (l *fakeLock) Acquire(context.Context, string) (func(), bool, error) {
	if l.held {
		return nil, false, nil
	}
	l.acquired++
	return func() { l.released++ }, true, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const testShop = "demo.myshopify.com"

func newService(store *fakeStore, platform *fakePlatform) *Service {
	conn, _ := connection.NewConnection(testShop, "shpat_test", "read_products")
	return NewService(
		store,
		&fakeFactory{platform: platform},
		&fakeConnections{byDomain: map[string]*connection.Connection{testShop: conn}},
		nil,
		nil,
	)
}

func linkedProduct(n int) catalog.Product {
	id := strconv.Itoa(n)
	return catalog.Product{
		SourceID:   "page-" + id,
		ExternalID: "shopify-" + id,
		Title:      "Product " + id,
		Price:      decimal.NewFromInt(int64(n)),
		Inventory:  n,
		SKU:        "SKU-" + id,
		Status:     catalog.StatusActive,
	}
}

func platformSide(p catalog.Product) catalog.Product {
	p.SourceID = ""
	return p
}

// ---------------------------------------------------------------------------
// Run plumbing
// ---------------------------------------------------------------------------

func TestService_Run_InvalidStrategy(t *testing.T) {
	svc := newService(&fakeStore{}, &fakePlatform{})

	_, err := svc.Run(context.Background(), catalog.Strategy("bogus"), testShop)

	assert.ErrorIs(t, err, catalog.ErrInvalidStrategy)
}

func TestService_Run_MissingCredentialIsFatal(t *testing.T) {
	svc := newService(&fakeStore{}, &fakePlatform{})

	_, err := svc.Run(context.Background(), catalog.StrategyFull, "unknown.myshopify.com")

	assert.ErrorIs(t, err, catalog.ErrCredentialNotFound)
}

func TestService_Run_FetchErrorAbortsRun(t *testing.T) {
	store := &fakeStore{readErr: catalog.ErrFetchFailed}
	svc := newService(store, &fakePlatform{})

	_, err := svc.Run(context.Background(), catalog.StrategyFull, testShop)

	assert.ErrorIs(t, err, catalog.ErrFetchFailed)
}

func TestService_Run_LockHeld(t *testing.T) {
	store := &fakeStore{}
	platform := &fakePlatform{}
	conn, _ := connection.NewConnection(testShop, "shpat_test", "")
	lock := &fakeLock{held: true}
	svc := NewService(store, &fakeFactory{platform: platform},
		&fakeConnections{byDomain: map[string]*connection.Connection{testShop: conn}}, lock, nil)

	_, err := svc.Run(context.Background(), catalog.StrategyFull, testShop)

	assert.ErrorIs(t, err, ErrRunInProgress)
}

func TestService_Run_LockReleasedAfterRun(t *testing.T) {
	store := &fakeStore{}
	platform := &fakePlatform{}
	conn, _ := connection.NewConnection(testShop, "shpat_test", "")
	lock := &fakeLock{}
	svc := NewService(store, &fakeFactory{platform: platform},
		&fakeConnections{byDomain: map[string]*connection.Connection{testShop: conn}}, lock, nil)

	_, err := svc.Run(context.Background(), catalog.StrategyFull, testShop)

	require.NoError(t, err)
	assert.Equal(t, 1, lock.acquired)
	assert.Equal(t, 1, lock.released)
}

// ---------------------------------------------------------------------------
// Full
// ---------------------------------------------------------------------------

func TestService_Full_PushesLinkedSkipsUnlinked(t *testing.T) {
	p1, p2 := linkedProduct(1), linkedProduct(2)
	unlinked := catalog.Product{SourceID: "page-9", Title: "Loose", Status: catalog.StatusDraft}
	store := &fakeStore{products: []catalog.Product{p1, p2, unlinked}}
	platform := &fakePlatform{products: []catalog.Product{platformSide(p1), platformSide(p2)}}
	svc := newService(store, platform)

	result, err := svc.Run(context.Background(), catalog.StrategyFull, testShop)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Synced)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 0, platform.createCalls, "Full must never create")
	assert.Equal(t, 2, platform.updateCalls)
}

func TestService_Full_FailureIsolation(t *testing.T) {
	products := []catalog.Product{linkedProduct(1), linkedProduct(2), linkedProduct(3)}
	store := &fakeStore{products: products}
	platform := &fakePlatform{
		products:   []catalog.Product{platformSide(products[0]), platformSide(products[1]), platformSide(products[2])},
		failUpdate: map[string]error{"shopify-2": errors.New("503 from platform")},
	}
	svc := newService(store, platform)

	result, err := svc.Run(context.Background(), catalog.StrategyFull, testShop)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Synced)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "page-2", result.Errors[0].SourceID)
	assert.Equal(t, catalog.ErrorKindWrite, result.Errors[0].Kind)
	assert.Equal(t, catalog.SyncStatusPartial, result.Status())
}

func TestService_Full_PartialWriteClassified(t *testing.T) {
	p := linkedProduct(1)
	store := &fakeStore{products: []catalog.Product{p}}
	platform := &fakePlatform{
		products:   []catalog.Product{platformSide(p)},
		failUpdate: map[string]error{"shopify-1": catalog.ErrPartialWrite},
	}
	svc := newService(store, platform)

	result, err := svc.Run(context.Background(), catalog.StrategyFull, testShop)

	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, catalog.ErrorKindPartialWrite, result.Errors[0].Kind)
}

// ---------------------------------------------------------------------------
// SmartIncremental
// ---------------------------------------------------------------------------

func TestService_SmartIncremental_ProcessesOnlyUpdated(t *testing.T) {
	changed, same := linkedProduct(1), linkedProduct(2)
	unlinked := catalog.Product{SourceID: "page-9", Title: "Loose", Status: catalog.StatusDraft}
	driftedTarget := platformSide(changed)
	driftedTarget.Price = decimal.RequireFromString("99.99")

	store := &fakeStore{products: []catalog.Product{changed, same, unlinked}}
	platform := &fakePlatform{products: []catalog.Product{driftedTarget, platformSide(same)}}
	svc := newService(store, platform)

	result, err := svc.Run(context.Background(), catalog.StrategySmartIncremental, testShop)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 1, result.Skipped, "unlinked record is not SmartIncremental's job")
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, platform.updateCalls)
	assert.Equal(t, 0, platform.createCalls)
}

func TestService_SmartIncremental_Idempotent(t *testing.T) {
	p1, p2 := linkedProduct(1), linkedProduct(2)
	drifted := platformSide(p1)
	drifted.Title = "Stale Title"

	store := &fakeStore{products: []catalog.Product{p1, p2}}
	platform := &fakePlatform{products: []catalog.Product{drifted, platformSide(p2)}}
	svc := newService(store, platform)

	first, err := svc.Run(context.Background(), catalog.StrategySmartIncremental, testShop)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Synced)

	// No external changes between runs: the second changeset is empty
	second, err := svc.Run(context.Background(), catalog.StrategySmartIncremental, testShop)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Synced)
	assert.Equal(t, 0, second.Skipped)
	assert.Empty(t, second.Errors)
}

func TestService_SmartIncremental_PlatformFetchErrorAborts(t *testing.T) {
	store := &fakeStore{products: []catalog.Product{linkedProduct(1)}}
	platform := &fakePlatform{readErr: catalog.ErrFetchFailed}
	svc := newService(store, platform)

	_, err := svc.Run(context.Background(), catalog.StrategySmartIncremental, testShop)

	assert.ErrorIs(t, err, catalog.ErrFetchFailed)
}

// ---------------------------------------------------------------------------
// CreateOnly
// ---------------------------------------------------------------------------

func TestService_CreateOnly_CreatesAndLinks(t *testing.T) {
	linked := linkedProduct(1)
	mug := catalog.Product{SourceID: "page-mug", Title: "Mug", Status: catalog.StatusDraft}
	store := &fakeStore{
		products: []catalog.Product{linked, mug},
		content:  map[string]string{"page-mug": "<p>A mug</p>"},
	}
	platform := &fakePlatform{products: []catalog.Product{platformSide(linked)}}
	svc := newService(store, platform)

	result, err := svc.Run(context.Background(), catalog.StrategyCreateOnly, testShop)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Created)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, platform.createCalls)
	assert.Equal(t, 0, platform.updateCalls, "CreateOnly must never update")
	require.Equal(t, []string{"page-mug"}, store.writeBacks)

	// The link is now durable on the source side
	for _, p := range store.products {
		if p.SourceID == "page-mug" {
			assert.Equal(t, "shopify-1", p.ExternalID)
		}
	}
}

func TestService_CreateOnly_SecondRunCreatesNothing(t *testing.T) {
	mug := catalog.Product{SourceID: "page-mug", Title: "Mug", Status: catalog.StatusDraft}
	store := &fakeStore{products: []catalog.Product{mug}, content: map[string]string{}}
	platform := &fakePlatform{}
	svc := newService(store, platform)

	_, err := svc.Run(context.Background(), catalog.StrategyCreateOnly, testShop)
	require.NoError(t, err)

	second, err := svc.Run(context.Background(), catalog.StrategyCreateOnly, testShop)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Total)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, platform.createCalls)
}

func TestService_CreateOnly_WriteBackFailureIsLinkInconsistency(t *testing.T) {
	mug := catalog.Product{SourceID: "page-mug", Title: "Mug", Status: catalog.StatusDraft}
	store := &fakeStore{
		products: []catalog.Product{mug},
		content:  map[string]string{},
		writeErr: map[string]error{"page-mug": errors.New("notion 500")},
	}
	platform := &fakePlatform{}
	svc := newService(store, platform)

	result, err := svc.Run(context.Background(), catalog.StrategyCreateOnly, testShop)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, catalog.ErrorKindLinkInconsistency, result.Errors[0].Kind)
	// The platform product exists even though the run reports an error
	assert.Equal(t, 1, platform.createCalls)
	assert.Len(t, platform.products, 1)
}

func TestService_CreateOnly_RenderFailureIsSoft(t *testing.T) {
	mug := catalog.Product{SourceID: "page-mug", Title: "Mug", Status: catalog.StatusDraft}
	store := &fakeStore{
		products:  []catalog.Product{mug},
		renderErr: errors.New("notion is down"),
	}
	platform := &fakePlatform{}
	svc := newService(store, platform)

	result, err := svc.Run(context.Background(), catalog.StrategyCreateOnly, testShop)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "", platform.products[0].Description)
}

// ---------------------------------------------------------------------------
// Import
// ---------------------------------------------------------------------------

func TestService_Import_CreatesPagesForUnmatchedPlatformProducts(t *testing.T) {
	linked := linkedProduct(1)
	orphan := catalog.Product{ExternalID: "shopify-77", Title: "Orphan", Status: catalog.StatusActive}
	store := &fakeStore{products: []catalog.Product{linked}}
	platform := &fakePlatform{products: []catalog.Product{platformSide(linked), orphan}}
	svc := newService(store, platform)

	result, err := svc.Run(context.Background(), catalog.StrategyImport, testShop)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Created)
	require.Len(t, store.created, 1)
	assert.Equal(t, "Orphan", store.created[0].Title)
	assert.Equal(t, "shopify-77", store.created[0].ExternalID, "import establishes the link at creation")
	assert.Equal(t, 0, platform.updateCalls)
	assert.Equal(t, 0, platform.createCalls)
}

// ---------------------------------------------------------------------------
// SyncProduct
// ---------------------------------------------------------------------------

func TestService_SyncProduct(t *testing.T) {
	p := linkedProduct(1)
	store := &fakeStore{products: []catalog.Product{p}}
	platform := &fakePlatform{products: []catalog.Product{platformSide(p)}}
	svc := newService(store, platform)

	result, err := svc.SyncProduct(context.Background(), testShop, "page-1")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Synced)
}

func TestService_SyncProduct_NotFound(t *testing.T) {
	svc := newService(&fakeStore{}, &fakePlatform{})

	_, err := svc.SyncProduct(context.Background(), testShop, "page-missing")

	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestService_SyncProduct_UnlinkedIsSkipped(t *testing.T) {
	p := catalog.Product{SourceID: "page-1", Title: "Loose", Status: catalog.StatusDraft}
	store := &fakeStore{products: []catalog.Product{p}}
	platform := &fakePlatform{}
	svc := newService(store, platform)

	result, err := svc.SyncProduct(context.Background(), testShop, "page-1")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, platform.updateCalls)
}

func TestService_Run_CancelledBetweenRecords(t *testing.T) {
	store := &fakeStore{products: []catalog.Product{linkedProduct(1)}}
	svc := newService(store, &fakePlatform{products: []catalog.Product{platformSide(linkedProduct(1))}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, catalog.StrategyFull, testShop)

	assert.ErrorIs(t, err, context.Canceled)
}
