package repository

import (
	"context"
	"testing"

	"inventory/inventory-service/internal/app/inventory/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestProductRepository_GetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "inventory.products", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "brand", Value: "Seiko"},
			{Key: "sku", Value: "SRP-1"},
			{Key: "inventory", Value: int32(5)},
			{Key: "price", Value: 100.0},
		}))

		product, err := repo.GetByID(context.Background(), id.Hex())

		require.NoError(t, err)
		assert.Equal(t, id, product.ID)
		assert.Equal(t, "Seiko", product.Brand)
		assert.Equal(t, 5, product.Inventory)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "inventory.products", mtest.FirstBatch))

		product, err := repo.GetByID(context.Background(), primitive.NewObjectID().Hex())

		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.Nil(t, product)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)

		_, err := repo.GetByID(context.Background(), "not-an-id")

		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestProductRepository_Create(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		product := &entity.Product{Brand: "Seiko", SKU: "SRP-1"}
		err := repo.Create(context.Background(), product)

		require.NoError(t, err)
		assert.False(t, product.ID.IsZero())
		assert.False(t, product.CreatedAt.IsZero())
		assert.Equal(t, []string{}, product.Images)
	})

	mt.Run("duplicate sku", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: inventory.products index: sku_unique_idx",
		}))

		err := repo.Create(context.Background(), &entity.Product{SKU: "SRP-1"})

		assert.ErrorIs(t, err, ErrDuplicateSKU)
	})
}

func TestProductRepository_Update(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns document after update", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "price", Value: 120.0},
			{Key: "oldPrice", Value: 100.0},
		}}))

		product, err := repo.Update(context.Background(), id.Hex(), map[string]interface{}{"price": 120.0})

		require.NoError(t, err)
		assert.Equal(t, 120.0, product.Price)
		assert.Equal(t, 100.0, product.OldPrice)
	})

	mt.Run("missing product", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.Update(context.Background(), primitive.NewObjectID().Hex(), map[string]interface{}{"price": 1.0})

		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	mt.Run("duplicate sku", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Name:    "DuplicateKey",
			Message: "E11000 duplicate key error",
		}))

		_, err := repo.Update(context.Background(), primitive.NewObjectID().Hex(), map[string]interface{}{"sku": "taken"})

		assert.ErrorIs(t, err, ErrDuplicateSKU)
	})
}

func TestProductRepository_Brands(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("sorted and non-empty", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{"Tissot", "", "Casio", nil, "Seiko"}}))

		brands, err := repo.Brands(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []string{"Casio", "Seiko", "Tissot"}, brands)
	})
}

func TestProductRepository_ScanStockFigures(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("coerces malformed values", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "inventory.products", mtest.FirstBatch,
			bson.D{{Key: "inventory", Value: int32(5)}, {Key: "price", Value: 100.0}},
			bson.D{{Key: "inventory", Value: "2"}, {Key: "price", Value: "abc"}},
			bson.D{{Key: "price", Value: int64(30)}},
		))

		var rows [][2]float64
		err := repo.ScanStockFigures(context.Background(), func(inventory, price float64) {
			rows = append(rows, [2]float64{inventory, price})
		})

		require.NoError(t, err)
		assert.Equal(t, [][2]float64{{5, 100}, {2, 0}, {0, 30}}, rows)
	})
}

func TestStatsRepository_GetOrCreate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns upserted singleton", func(mt *mtest.T) {
		repo := NewStatsRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: entity.StatsSnapshotID},
			{Key: "totalProducts", Value: int64(3)},
			{Key: "totalStock", Value: int64(7)},
			{Key: "totalStoreValue", Value: 160.0},
			{Key: "outOfStockCount", Value: int64(1)},
		}}))

		snapshot, err := repo.GetOrCreate(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(3), snapshot.TotalProducts)
		assert.Equal(t, 160.0, snapshot.TotalStoreValue)
		assert.False(t, snapshot.IsZero())
	})
}

func TestActivityLogRepository_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes facet", func(mt *mtest.T) {
		repo := NewActivityLogRepository(mt.DB)
		productID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "inventory.activity_logs", mtest.FirstBatch, bson.D{
			{Key: "data", Value: bson.A{
				bson.D{
					{Key: "_id", Value: primitive.NewObjectID()},
					{Key: "actionType", Value: "UPDATE"},
					{Key: "productId", Value: productID},
					{Key: "adminId", Value: "user-1"},
					{Key: "thumbnail", Value: "a.jpg"},
				},
				bson.D{
					{Key: "_id", Value: primitive.NewObjectID()},
					{Key: "actionType", Value: "DELETE"},
					{Key: "productId", Value: productID},
					{Key: "adminId", Value: "user-1"},
					{Key: "thumbnail", Value: nil},
				},
			}},
			{Key: "total", Value: bson.A{bson.D{{Key: "count", Value: int64(12)}}}},
		}))

		logs, total, err := repo.List(context.Background(), entity.ActivityFilter{Page: 1, Limit: 2})

		require.NoError(t, err)
		assert.Equal(t, int64(12), total)
		require.Len(t, logs, 2)
		require.NotNil(t, logs[0].Thumbnail)
		assert.Equal(t, "a.jpg", *logs[0].Thumbnail)
		assert.Nil(t, logs[1].Thumbnail)
	})

	mt.Run("empty result", func(mt *mtest.T) {
		repo := NewActivityLogRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "inventory.activity_logs", mtest.FirstBatch, bson.D{
			{Key: "data", Value: bson.A{}},
			{Key: "total", Value: bson.A{}},
		}))

		logs, total, err := repo.List(context.Background(), entity.ActivityFilter{Page: 1, Limit: 10})

		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.NotNil(t, logs)
		assert.Empty(t, logs)
	})
}

func legacyNumericProduct(id primitive.ObjectID) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "brand", Value: "Seiko"},
		{Key: "sku", Value: "LEGACY-1"},
		{Key: "inventory", Value: "5"},
		{Key: "price", Value: "100"},
		{Key: "oldPrice", Value: "n/a"},
	}
}

func TestProductRepository_StringNumericFields(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get by id", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "inventory.products", mtest.FirstBatch, legacyNumericProduct(id)))

		product, err := repo.GetByID(context.Background(), id.Hex())

		require.NoError(t, err)
		assert.Equal(t, 5, product.Inventory)
		assert.Equal(t, 100.0, product.Price)
		assert.Equal(t, 0.0, product.OldPrice)
		assert.Equal(t, "LEGACY-1", product.SKU)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "inventory.products", mtest.FirstBatch,
				legacyNumericProduct(primitive.NewObjectID()),
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "inventory", Value: int32(2)}, {Key: "price", Value: 30.0}},
			),
			mtest.CreateCursorResponse(0, "inventory.products", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(2)}}),
		)

		products, total, err := repo.List(context.Background(), entity.ProductFilter{Page: 1, Limit: 50})

		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, products, 2)
		assert.Equal(t, 5, products[0].Inventory)
		assert.Equal(t, 100.0, products[0].Price)
		assert.Equal(t, 2, products[1].Inventory)
	})

	mt.Run("delete returns the removed document", func(mt *mtest.T) {
		repo := NewProductRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: legacyNumericProduct(id)}))

		product, err := repo.Delete(context.Background(), id.Hex())

		require.NoError(t, err)
		assert.Equal(t, id, product.ID)
		assert.Equal(t, "Seiko", product.Brand)
		assert.Equal(t, 5, product.Inventory)
	})
}
