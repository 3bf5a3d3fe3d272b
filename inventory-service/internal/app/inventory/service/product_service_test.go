package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"inventory/inventory-service/internal/app/inventory/entity"
	"inventory/inventory-service/internal/app/inventory/repository"
	"inventory/inventory-service/internal/app/inventory/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testActor = entity.RequestActor{ID: "user-1", Name: "Ann", Email: "ann@example.com"}

type productFixture struct {
	svc        *ProductService
	repo       *mocks.MockProductRepository
	brands     *fakeBrandCache
	activity   *recordingActivity
	stats      *countingStats
	dispatcher *inlineDispatcher
	publisher  *mocks.MockMessagePublisher
}

func newProductFixture() *productFixture {
	f := &productFixture{
		repo:       new(mocks.MockProductRepository),
		brands:     &fakeBrandCache{},
		activity:   &recordingActivity{},
		stats:      &countingStats{},
		dispatcher: &inlineDispatcher{},
		publisher:  new(mocks.MockMessagePublisher),
	}
	f.svc = NewProductService(f.repo, f.brands, f.activity, f.stats, f.dispatcher, f.publisher)
	return f
}

// assertHooks checks that one mutation triggered every follow-up exactly once.
func (f *productFixture) assertHooks(t *testing.T, action entity.ActionType) entity.ActivityEntry {
	t.Helper()
	assert.Equal(t, 1, f.brands.invalidations)
	assert.Equal(t, 1, f.stats.requests)
	assert.Equal(t, 1, f.dispatcher.dispatched(taskPublishEvent))

	entries := f.activity.all()
	require.Len(t, entries, 1)
	assert.Equal(t, action, entries[0].ActionType)
	assert.Equal(t, testActor.ID, entries[0].ActorID)
	assert.Equal(t, testActor.Name, entries[0].ActorName)
	return entries[0]
}

func storedWatch() *entity.Product {
	p := watch()
	p.ID = primitive.NewObjectID()
	return p
}

func TestProductService_CreateDefaultsOldPrice(t *testing.T) {
	f := newProductFixture()
	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Product")).
		Run(func(args mock.Arguments) { args.Get(1).(*entity.Product).ID = primitive.NewObjectID() }).
		Return(nil)
	f.publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	product, err := f.svc.Create(context.Background(), testActor, &entity.CreateProductRequest{
		Brand:     "  Seiko ",
		SKU:       "SKX007",
		Inventory: 3,
		Price:     250,
	})

	require.NoError(t, err)
	assert.Equal(t, "Seiko", product.Brand)
	assert.Equal(t, 250.0, product.OldPrice)
	assert.Equal(t, testActor.ID, product.UserID)
	assert.NotNil(t, product.Images)
	entry := f.assertHooks(t, entity.ActionCreate)
	assert.Equal(t, product.ID.Hex(), entry.ProductID)
	assert.Nil(t, entry.Changes)
}

func TestProductService_CreateKeepsExplicitOldPrice(t *testing.T) {
	f := newProductFixture()
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	product, err := f.svc.Create(context.Background(), testActor, &entity.CreateProductRequest{Price: 200, OldPrice: 260})

	require.NoError(t, err)
	assert.Equal(t, 260.0, product.OldPrice)
}

func TestProductService_CreateDuplicateSKU(t *testing.T) {
	f := newProductFixture()
	f.repo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateSKU)

	_, err := f.svc.Create(context.Background(), testActor, &entity.CreateProductRequest{SKU: "SKX007"})

	assert.ErrorIs(t, err, ErrSKUConflict)
	assert.Zero(t, f.brands.invalidations)
	assert.Zero(t, f.stats.requests)
	assert.Empty(t, f.activity.all())
}

func TestProductService_CreateRejectsNegativeInventory(t *testing.T) {
	f := newProductFixture()

	_, err := f.svc.Create(context.Background(), testActor, &entity.CreateProductRequest{Inventory: -1})

	assert.ErrorIs(t, err, ErrValidation)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_PatchRecordsOnlyChangedFields(t *testing.T) {
	f := newProductFixture()
	before := storedWatch()
	id := before.ID.Hex()
	after := *before
	after.Price = 120
	after.OldPrice = 100

	f.repo.On("GetByID", mock.Anything, id).Return(before, nil)
	f.repo.On("Update", mock.Anything, id, mock.Anything).Return(&after, nil)
	f.publisher.On("PublishMessage", mock.Anything, id, mock.Anything).Return(nil)

	_, err := f.svc.Patch(context.Background(), testActor, id, &entity.UpdateProductRequest{
		Inventory: ptr(5),
		Price:     ptr(120.0),
	})

	require.NoError(t, err)
	entry := f.assertHooks(t, entity.ActionUpdate)
	// oldPrice moves to the previous price, which it already was
	require.Len(t, entry.Changes, 1)
	assert.Equal(t, entity.FieldChange{Before: 100.0, After: 120.0}, entry.Changes["price"])
}

func TestProductService_PriceRule(t *testing.T) {
	tests := []struct {
		name         string
		req          entity.UpdateProductRequest
		wantOldPrice interface{}
	}{
		{
			name:         "price change moves previous price to oldPrice",
			req:          entity.UpdateProductRequest{Price: ptr(150.0)},
			wantOldPrice: 100.0,
		},
		{
			name:         "samePriceChecked pins oldPrice to the new price",
			req:          entity.UpdateProductRequest{Price: ptr(150.0), SamePriceChecked: ptr(true)},
			wantOldPrice: 150.0,
		},
		{
			name:         "unchanged price keeps the provided oldPrice",
			req:          entity.UpdateProductRequest{Price: ptr(100.0), OldPrice: ptr(130.0)},
			wantOldPrice: 130.0,
		},
		{
			name:         "no price leaves oldPrice alone",
			req:          entity.UpdateProductRequest{Inventory: ptr(1)},
			wantOldPrice: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProductFixture()
			before := storedWatch()
			before.OldPrice = 90
			id := before.ID.Hex()

			var written map[string]interface{}
			f.repo.On("GetByID", mock.Anything, id).Return(before, nil)
			f.repo.On("Update", mock.Anything, id, mock.Anything).
				Run(func(args mock.Arguments) { written = args.Get(2).(map[string]interface{}) }).
				Return(before, nil)
			f.publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

			req := tt.req
			_, err := f.svc.Replace(context.Background(), testActor, id, &req)

			require.NoError(t, err)
			assert.Equal(t, tt.wantOldPrice, written["oldPrice"])
			assert.NotContains(t, written, "samePriceChecked")
		})
	}
}

func TestProductService_PatchWithoutFields(t *testing.T) {
	f := newProductFixture()

	_, err := f.svc.Patch(context.Background(), testActor, primitive.NewObjectID().Hex(), &entity.UpdateProductRequest{
		SamePriceChecked: ptr(true),
	})

	assert.ErrorIs(t, err, ErrNoFieldsToUpdate)
	assert.ErrorIs(t, err, ErrValidation)
	f.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestProductService_ReplaceWithoutFieldsIsNoop(t *testing.T) {
	f := newProductFixture()
	before := storedWatch()
	f.repo.On("GetByID", mock.Anything, before.ID.Hex()).Return(before, nil)

	product, err := f.svc.Replace(context.Background(), testActor, before.ID.Hex(), &entity.UpdateProductRequest{})

	require.NoError(t, err)
	assert.Equal(t, before.ID, product.ID)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.activity.all())
}

func TestProductService_UpdateNotFound(t *testing.T) {
	f := newProductFixture()
	f.repo.On("GetByID", mock.Anything, "missing").Return(nil, repository.ErrProductNotFound)

	_, err := f.svc.Patch(context.Background(), testActor, "missing", &entity.UpdateProductRequest{Inventory: ptr(1)})

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_UpdateSKUConflict(t *testing.T) {
	f := newProductFixture()
	before := storedWatch()
	id := before.ID.Hex()
	f.repo.On("GetByID", mock.Anything, id).Return(before, nil)
	f.repo.On("Update", mock.Anything, id, mock.Anything).Return(nil, repository.ErrDuplicateSKU)

	_, err := f.svc.Patch(context.Background(), testActor, id, &entity.UpdateProductRequest{SKU: ptr("TAKEN")})

	assert.ErrorIs(t, err, ErrSKUConflict)
	assert.Empty(t, f.activity.all())
}

func TestProductService_UpdateStoreFailure(t *testing.T) {
	f := newProductFixture()
	before := storedWatch()
	id := before.ID.Hex()
	f.repo.On("GetByID", mock.Anything, id).Return(before, nil)
	f.repo.On("Update", mock.Anything, id, mock.Anything).Return(nil, errors.New("socket closed"))

	_, err := f.svc.Patch(context.Background(), testActor, id, &entity.UpdateProductRequest{Inventory: ptr(1)})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProductNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestProductService_DeletePublishesEvent(t *testing.T) {
	f := newProductFixture()
	deleted := storedWatch()
	id := deleted.ID.Hex()
	f.repo.On("Delete", mock.Anything, id).Return(deleted, nil)

	var payload []byte
	f.publisher.On("PublishMessage", mock.Anything, id, mock.Anything).
		Run(func(args mock.Arguments) { payload = args.Get(2).([]byte) }).
		Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), testActor, id))

	entry := f.assertHooks(t, entity.ActionDelete)
	assert.Equal(t, "SKX007", entry.SKU)

	var event entity.ProductEvent
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, entity.EventProductDeleted, event.EventType)
	assert.Equal(t, id, event.ProductID)
	assert.Equal(t, testActor.ID, event.ActorID)
	assert.NotEmpty(t, event.EventID)
}

func TestProductService_DeleteNotFound(t *testing.T) {
	f := newProductFixture()
	f.repo.On("Delete", mock.Anything, "nope").Return(nil, repository.ErrProductNotFound)

	err := f.svc.Delete(context.Background(), testActor, "nope")

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Zero(t, f.stats.requests)
}

func TestProductService_PublisherFailureDoesNotFailRequest(t *testing.T) {
	f := newProductFixture()
	deleted := storedWatch()
	f.repo.On("Delete", mock.Anything, deleted.ID.Hex()).Return(deleted, nil)
	f.publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("no brokers"))

	err := f.svc.Delete(context.Background(), testActor, deleted.ID.Hex())

	assert.NoError(t, err)
}

func TestProductService_GetMigratesLegacyImage(t *testing.T) {
	f := newProductFixture()
	legacy := storedWatch()
	legacy.Images = nil
	legacy.ImageURL = " https://cdn.example.com/skx.jpg "
	f.repo.On("GetByID", mock.Anything, legacy.ID.Hex()).Return(legacy, nil)
	f.repo.On("SetImages", mock.Anything, legacy.ID, []string{"https://cdn.example.com/skx.jpg"}).Return(nil)

	product, err := f.svc.Get(context.Background(), legacy.ID.Hex())

	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/skx.jpg"}, product.Images)
	assert.Equal(t, 1, f.dispatcher.dispatched(taskMigrateImages))
	f.repo.AssertExpectations(t)
}

func TestProductService_ListDefaultsAndNormalization(t *testing.T) {
	f := newProductFixture()
	current := *storedWatch()
	legacy := *storedWatch()
	legacy.Images = nil
	legacy.Image = &entity.LegacyImage{URL: "https://cdn.example.com/a.jpg"}

	f.repo.On("List", mock.Anything, entity.ProductFilter{Page: 1, Limit: 50, SortDesc: true}).
		Return([]entity.Product{current, legacy}, int64(120), nil)
	f.repo.On("SetImages", mock.Anything, legacy.ID, mock.Anything).Return(nil)

	resp, err := f.svc.List(context.Background(), entity.ProductListQuery{})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, entity.Pagination{Page: 1, Limit: 50, Total: 120, Pages: 3}, resp.Pagination)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg"}, resp.Data[1].Images)
	assert.Equal(t, 1, f.dispatcher.dispatched(taskMigrateImages))
}

func TestProductService_BrandsGoThroughCache(t *testing.T) {
	f := newProductFixture()
	f.repo.On("Brands", mock.Anything).Return([]string(nil), nil)

	brands, err := f.svc.Brands(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, brands)
	assert.Empty(t, brands)
}

// memoryProductRepo is a minimal in-memory store used for concurrency tests.
type memoryProductRepo struct {
	repository.ProductRepository

	mu       sync.Mutex
	products map[string]entity.Product
}

func (r *memoryProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (r *memoryProductRepo) Update(_ context.Context, id string, fields map[string]interface{}) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	if v, ok := fields["inventory"].(int); ok {
		p.Inventory = v
	}
	r.products[id] = p
	return &p, nil
}

func TestProductService_ConcurrentPatchLastWriteWins(t *testing.T) {
	p := storedWatch()
	id := p.ID.Hex()
	repo := &memoryProductRepo{products: map[string]entity.Product{id: *p}}
	activity := &recordingActivity{}
	svc := NewProductService(repo, nil, activity, &countingStats{}, &inlineDispatcher{}, nil)

	var wg sync.WaitGroup
	for _, inventory := range []int{11, 22} {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_, err := svc.Patch(context.Background(), testActor, id, &entity.UpdateProductRequest{Inventory: ptr(v)})
			assert.NoError(t, err)
		}(inventory)
	}
	wg.Wait()

	final, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	// no merge: the store holds exactly one of the two writes
	assert.Contains(t, []int{11, 22}, final.Inventory)
	assert.Len(t, activity.all(), 2)
}
