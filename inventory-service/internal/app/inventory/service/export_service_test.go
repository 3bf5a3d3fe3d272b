package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"testing"
	"time"

	"inventory/inventory-service/internal/app/inventory/entity"
	"inventory/inventory-service/internal/app/inventory/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// flushRecorder counts Flush calls like a streaming http.ResponseWriter.
type flushRecorder struct {
	bytes.Buffer
	flushes int
}

func (f *flushRecorder) Flush() {
	f.flushes++
}

func newExportService() (*ExportService, *mocks.MockProductRepository, *mocks.MockActivityLogRepository) {
	products := new(mocks.MockProductRepository)
	activity := new(mocks.MockActivityLogRepository)
	return NewExportService(products, activity, time.UTC), products, activity
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportService_ProductsCSV(t *testing.T) {
	svc, products, _ := newExportService()
	products.On("Stream", mock.Anything, mock.MatchedBy(func(f entity.ProductFilter) bool {
		return f.Brand == "Seiko"
	}), mock.Anything).Return([]entity.Product{
		{Brand: "Seiko", SKU: "SKX007", Category: "Diver", Inventory: 3, Price: 19.99, Description: "Automatic, 200m"},
		{Brand: "Seiko", SKU: "SRPD", Inventory: 0, Price: 300},
	}, nil)

	var out bytes.Buffer
	err := svc.ProductsCSV(context.Background(), entity.ProductListQuery{Brand: "Seiko"}, &out)

	require.NoError(t, err)
	records := readCSV(t, out.Bytes())
	require.Len(t, records, 3)
	assert.Equal(t, productExportHeader, records[0])
	assert.Equal(t, []string{"Seiko", "SKX007", "Diver", "3", "19.99", "59.97", "Automatic, 200m"}, records[1])
	assert.Equal(t, "0", records[2][5])
}

func TestExportService_ProductsCSVFlushesPeriodically(t *testing.T) {
	svc, products, _ := newExportService()
	rows := make([]entity.Product, 250)
	for i := range rows {
		rows[i] = entity.Product{SKU: fmt.Sprintf("SKU-%d", i)}
	}
	products.On("Stream", mock.Anything, mock.Anything, mock.Anything).Return(rows, nil)

	out := &flushRecorder{}
	require.NoError(t, svc.ProductsCSV(context.Background(), entity.ProductListQuery{}, out))

	// header + 250 rows: flushed at 100 and 200 written rows, then once at the end
	assert.Equal(t, 3, out.flushes)
	assert.Len(t, readCSV(t, out.Bytes()), 251)
}

func TestExportService_ProductsCSVStreamError(t *testing.T) {
	svc, products, _ := newExportService()
	products.On("Stream", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("cursor killed"))

	err := svc.ProductsCSV(context.Background(), entity.ProductListQuery{}, &bytes.Buffer{})

	assert.Error(t, err)
}

func TestExportService_ProductsXLSX(t *testing.T) {
	svc, products, _ := newExportService()
	products.On("Stream", mock.Anything, mock.Anything, mock.Anything).Return([]entity.Product{
		{Brand: "Casio", SKU: "F91W", Category: "Digital", Inventory: 10, Price: 15.5},
	}, nil)

	var out bytes.Buffer
	require.NoError(t, svc.ProductsXLSX(context.Background(), entity.ProductListQuery{}, &out))

	f, err := excelize.OpenReader(&out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(productsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, productExportHeader, rows[0])
	assert.Equal(t, "F91W", rows[1][1])
	assert.Equal(t, "10", rows[1][3])
	assert.Equal(t, "155", rows[1][5])
}

func TestExportService_ActivityLogsCSV(t *testing.T) {
	svc, _, activity := newExportService()
	activity.On("Stream", mock.Anything, mock.MatchedBy(func(f entity.ActivityFilter) bool {
		return f.SortBy == "createdAt" && f.SortDesc && f.ActionType == entity.ActionDelete
	}), mock.Anything).Return([]entity.ActivityLog{{
		Brand:      "Seiko",
		SKU:        "SKX007",
		ActionType: entity.ActionDelete,
		ActorName:  "Ann",
		ActorEmail: "ann@example.com",
		CreatedAt:  time.Date(2024, 1, 1, 23, 59, 59, int(999*time.Millisecond), time.UTC),
	}}, nil)

	var out bytes.Buffer
	err := svc.ActivityLogsCSV(context.Background(), entity.ActivityLogQuery{Action: "delete", SortBy: "brand", SortOrder: "asc"}, &out)

	require.NoError(t, err)
	records := readCSV(t, out.Bytes())
	require.Len(t, records, 2)
	assert.Equal(t, activityExportHeader, records[0])
	assert.Equal(t, []string{"Seiko", "SKX007", "DELETE", "Ann", "ann@example.com", "2024-01-01T23:59:59.999Z"}, records[1])
}

func TestExportService_ActivityLogsCSVInvalidQuery(t *testing.T) {
	svc, _, activity := newExportService()

	err := svc.ActivityLogsCSV(context.Background(), entity.ActivityLogQuery{StartDate: "soon"}, &bytes.Buffer{})

	assert.ErrorIs(t, err, ErrValidation)
	activity.AssertNotCalled(t, "Stream", mock.Anything, mock.Anything, mock.Anything)
}

func TestExportFilename(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	assert.Equal(t, "inventory-export-1700000000123.csv", ExportFilename("inventory-export", "csv", now))
}
