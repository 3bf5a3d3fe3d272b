package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"inventory/inventory-service/internal/app/inventory/entity"
	"inventory/pkg/logger"
)

// SnapshotReader reads the dashboard stats snapshot.
type SnapshotReader interface {
	GetOrCreate(ctx context.Context) (*entity.StatsSnapshot, error)
}

// HealthCheckHandler serves the stats worker's health endpoints.
type HealthCheckHandler struct {
	pingDB     func(ctx context.Context) error
	snapshots  SnapshotReader
	staleAfter time.Duration
}

func NewHealthCheckHandler(pingDB func(ctx context.Context) error, snapshots SnapshotReader, staleAfter time.Duration) *HealthCheckHandler {
	return &HealthCheckHandler{
		pingDB:     pingDB,
		snapshots:  snapshots,
		staleAfter: staleAfter,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

// HealthCheck reports unhealthy when MongoDB is unreachable. A snapshot older
// than staleAfter is only a warning: the next recompute repairs it.
func (h *HealthCheckHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overallStatus := "healthy"

	if err := h.pingDB(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		overallStatus = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	if err := h.checkSnapshot(ctx); err != nil {
		checks["stats_snapshot"] = "warning: " + err.Error()
	} else {
		checks["stats_snapshot"] = "healthy"
	}

	response := HealthResponse{
		Status:    overallStatus,
		Checks:    checks,
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	if overallStatus != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error().Err(err).Msg("Failed to write health response")
	}
}

func (h *HealthCheckHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.pingDB(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *HealthCheckHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}

func (h *HealthCheckHandler) checkSnapshot(ctx context.Context) error {
	snapshot, err := h.snapshots.GetOrCreate(ctx)
	if err != nil {
		return err
	}

	if h.staleAfter <= 0 || snapshot.UpdatedAt.IsZero() {
		return nil
	}

	if age := time.Since(snapshot.UpdatedAt); age > h.staleAfter {
		logger.Warn().Dur("age", age).Msg("Dashboard stats snapshot is outdated")
		return fmt.Errorf("snapshot is %s old", age.Round(time.Second))
	}
	return nil
}

func (h *HealthCheckHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/health/readiness", h.Readiness)
	mux.HandleFunc("/health/liveness", h.Liveness)
}
