package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"inventory/inventory-service/internal/app/inventory/entity"
	"inventory/inventory-service/internal/app/inventory/repository"
	"inventory/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// rows written between two flushes of a streamed export
const exportFlushEvery = 100

const productsSheet = "Inventory"

var (
	productExportHeader  = []string{"Brand", "SKU", "Category", "Inventory", "Price", "Total Value", "Description"}
	activityExportHeader = []string{"Brand", "SKU", "Action", "Admin Name", "Admin Email", "Timestamp"}
)

// ExportService streams products and activity logs as CSV or XLSX.
type ExportService struct {
	products repository.ProductRepository
	activity repository.ActivityLogRepository
	location *time.Location
}

func NewExportService(products repository.ProductRepository, activity repository.ActivityLogRepository, loc *time.Location) *ExportService {
	if loc == nil {
		loc = time.Local
	}
	return &ExportService{
		products: products,
		activity: activity,
		location: loc,
	}
}

// flusher is implemented by http.ResponseWriter implementations that stream.
type flusher interface {
	Flush()
}

// csvStream wraps csv.Writer with periodic flushing to the underlying writer.
type csvStream struct {
	csv  *csv.Writer
	out  io.Writer
	rows int
}

func newCSVStream(w io.Writer) *csvStream {
	return &csvStream{csv: csv.NewWriter(w), out: w}
}

func (s *csvStream) write(record []string) error {
	if err := s.csv.Write(record); err != nil {
		return fmt.Errorf("failed to write csv row: %w", err)
	}
	s.rows++
	if s.rows%exportFlushEvery == 0 {
		return s.flush()
	}
	return nil
}

func (s *csvStream) flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	if f, ok := s.out.(flusher); ok {
		f.Flush()
	}
	return nil
}

// ProductsCSV writes every product matching the query's filters. Pagination is ignored.
func (s *ExportService) ProductsCSV(ctx context.Context, query entity.ProductListQuery, w io.Writer) error {
	stream := newCSVStream(w)
	if err := stream.write(productExportHeader); err != nil {
		return err
	}

	err := s.products.Stream(ctx, ParseProductQuery(query), func(p *entity.Product) error {
		return stream.write(productRow(p))
	})
	if err != nil {
		return fmt.Errorf("failed to export products: %w", err)
	}

	if err := stream.flush(); err != nil {
		return err
	}

	logger.Info().Int("rows", stream.rows-1).Msg("Products exported to CSV")
	return nil
}

func productRow(p *entity.Product) []string {
	price := decimal.NewFromFloat(p.Price)
	total := price.Mul(decimal.NewFromInt(int64(p.Inventory)))

	return []string{
		p.Brand,
		p.SKU,
		p.Category,
		strconv.Itoa(p.Inventory),
		price.String(),
		total.Round(2).String(),
		p.Description,
	}
}

// ProductsXLSX writes the products matching the query as a single-sheet workbook.
func (s *ExportService) ProductsXLSX(ctx context.Context, query entity.ProductListQuery, w io.Writer) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", productsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(productsSheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := sw.SetColWidth(1, len(productExportHeader), 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	header := make([]interface{}, len(productExportHeader))
	for i, h := range productExportHeader {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	row := 2
	err = s.products.Stream(ctx, ParseProductQuery(query), func(p *entity.Product) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		total := decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(p.Inventory))).Round(2)
		values := []interface{}{
			p.Brand,
			p.SKU,
			p.Category,
			p.Inventory,
			p.Price,
			total.InexactFloat64(),
			p.Description,
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
		row++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to export products: %w", err)
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush workbook: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	logger.Info().Int("rows", row-2).Msg("Products exported to XLSX")
	return nil
}

// ActivityLogsCSV writes the activity entries matching the query's filters,
// newest first. Pagination is ignored.
func (s *ExportService) ActivityLogsCSV(ctx context.Context, query entity.ActivityLogQuery, w io.Writer) error {
	filter, err := ParseActivityQuery(query, s.location)
	if err != nil {
		return err
	}
	filter.SortBy = "createdAt"
	filter.SortDesc = true

	stream := newCSVStream(w)
	if err := stream.write(activityExportHeader); err != nil {
		return err
	}

	err = s.activity.Stream(ctx, filter, func(log *entity.ActivityLog) error {
		return stream.write([]string{
			log.Brand,
			log.SKU,
			string(log.ActionType),
			log.ActorName,
			log.ActorEmail,
			formatTimestamp(log.CreatedAt),
		})
	})
	if err != nil {
		return fmt.Errorf("failed to export activity logs: %w", err)
	}

	if err := stream.flush(); err != nil {
		return err
	}

	logger.Info().Int("rows", stream.rows-1).Msg("Activity logs exported to CSV")
	return nil
}

// formatTimestamp renders t in UTC with millisecond precision.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// ExportFilename builds "<prefix>-<unix millis>.<ext>".
func ExportFilename(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%d.%s", prefix, now.UnixMilli(), ext)
}
