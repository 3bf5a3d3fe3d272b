package service

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"inventory/inventory-service/internal/app/inventory/entity"
	"inventory/inventory-service/internal/app/inventory/repository"
	"inventory/pkg/logger"
	"inventory/pkg/metrics"

	"github.com/shopspring/decimal"
)

const taskStatsRecompute = "stats_recompute"

// StatsService owns the dashboard snapshot: full recomputation from the
// products collection and the cached read path.
type StatsService struct {
	productRepo repository.ProductRepository
	statsRepo   repository.StatsRepository
	dispatcher  TaskDispatcher

	// set while a recompute is queued but not started
	pending atomic.Bool
}

func NewStatsService(
	productRepo repository.ProductRepository,
	statsRepo repository.StatsRepository,
	dispatcher TaskDispatcher,
) *StatsService {
	return &StatsService{
		productRepo: productRepo,
		statsRepo:   statsRepo,
		dispatcher:  dispatcher,
	}
}

type statsAccumulator struct {
	products   int64
	stock      float64
	storeValue decimal.Decimal
	outOfStock int64
	negative   int64
}

// add folds one product in. inventory > 0 contributes its price to the store
// value, inventory == 0 counts as out of stock, negative inventory does neither
// but still adds to the stock sum.
func (a *statsAccumulator) add(inventory, price float64) {
	a.products++
	a.stock += inventory

	switch {
	case inventory > 0:
		a.storeValue = a.storeValue.Add(decimal.NewFromFloat(price))
	case inventory == 0:
		a.outOfStock++
	default:
		a.negative++
	}
}

func (a *statsAccumulator) snapshot() *entity.StatsSnapshot {
	return &entity.StatsSnapshot{
		ID:              entity.StatsSnapshotID,
		TotalProducts:   a.products,
		TotalStock:      int64(math.Round(a.stock)),
		TotalStoreValue: a.storeValue.Round(2).InexactFloat64(),
		OutOfStockCount: a.outOfStock,
	}
}

// Compute scans every product and returns fresh counters without persisting them.
func (s *StatsService) Compute(ctx context.Context) (*entity.StatsSnapshot, error) {
	acc := &statsAccumulator{}

	if err := s.productRepo.ScanStockFigures(ctx, acc.add); err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	if acc.negative > 0 {
		logger.Warn().Int64("products", acc.negative).Msg("Products with negative inventory found, they are not counted as out of stock")
	}

	return acc.snapshot(), nil
}

// Recompute replaces the persisted snapshot with fresh counters. When the
// scan fails the previous snapshot is left untouched.
func (s *StatsService) Recompute(ctx context.Context) (*entity.StatsSnapshot, error) {
	timer := metrics.NewTimer()

	snapshot, err := s.Compute(ctx)
	if err != nil {
		metrics.ObserveStatsRecompute("failed", timer.Duration())
		return nil, err
	}

	if err := s.statsRepo.Save(ctx, snapshot); err != nil {
		metrics.ObserveStatsRecompute("failed", timer.Duration())
		return nil, fmt.Errorf("failed to save stats: %w", err)
	}

	metrics.ObserveStatsRecompute("success", timer.Duration())
	metrics.SetStatsSnapshot(snapshot.TotalProducts, snapshot.TotalStock, snapshot.TotalStoreValue, snapshot.OutOfStockCount)

	logger.Info().
		Int64("total_products", snapshot.TotalProducts).
		Int64("total_stock", snapshot.TotalStock).
		Float64("total_store_value", snapshot.TotalStoreValue).
		Int64("out_of_stock", snapshot.OutOfStockCount).
		Dur("duration", timer.Duration()).
		Msg("Dashboard stats recomputed")

	return snapshot, nil
}

// GetStats serves the cached snapshot. An all-zero snapshot over a non-empty
// products collection is recomputed once, synchronously. When the snapshot
// cannot be read, live counters are served without being persisted.
func (s *StatsService) GetStats(ctx context.Context) (*entity.StatsSnapshot, error) {
	snapshot, err := s.statsRepo.GetOrCreate(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Stats snapshot unavailable, serving live aggregation")
		live, cerr := s.Compute(ctx)
		if cerr != nil {
			return nil, cerr
		}
		return live, nil
	}

	if !snapshot.IsZero() {
		return snapshot, nil
	}

	count, err := s.productRepo.EstimatedCount(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to count products for stats self-heal")
		return snapshot, nil
	}
	if count == 0 {
		return snapshot, nil
	}

	metrics.StatsSelfHeals.Inc()
	logger.Info().Int64("estimated_products", count).Msg("Stats snapshot is empty but products exist, recomputing")

	return s.Recompute(ctx)
}

// RequestRecompute schedules a background recompute. Requests arriving while
// one is already queued are folded into it, since the queued run reads the
// newest state anyway.
func (s *StatsService) RequestRecompute() bool {
	if !s.pending.CompareAndSwap(false, true) {
		return true
	}

	ok := s.dispatcher.Dispatch(taskStatsRecompute, func(ctx context.Context) error {
		s.pending.Store(false)
		_, err := s.Recompute(ctx)
		return err
	})
	if !ok {
		s.pending.Store(false)
	}
	return ok
}

// Bootstrap runs the self-heal check once in the background after startup.
func (s *StatsService) Bootstrap() {
	s.dispatcher.Dispatch("stats_bootstrap", func(ctx context.Context) error {
		_, err := s.GetStats(ctx)
		return err
	})
}
