package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inventory/inventory-service/internal/app/inventory/entity"
	"inventory/inventory-service/internal/app/inventory/repository"
	"inventory/pkg/logger"
	"inventory/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	taskActivityLog = "activity_log"

	defaultActivityLimit = 10
	maxActivityLimit     = 100

	dateLayout = "2006-01-02"
)

// ActivityService writes and reads the activity log.
type ActivityService struct {
	repo       repository.ActivityLogRepository
	dispatcher TaskDispatcher
	location   *time.Location
}

// NewActivityService creates the service. Date-only filters are interpreted in loc.
func NewActivityService(repo repository.ActivityLogRepository, dispatcher TaskDispatcher, loc *time.Location) *ActivityService {
	if loc == nil {
		loc = time.Local
	}
	return &ActivityService{
		repo:       repo,
		dispatcher: dispatcher,
		location:   loc,
	}
}

// Record validates the entry and appends it in the background. A validation
// failure is logged and returned but the caller is expected to carry on.
func (s *ActivityService) Record(entry entity.ActivityEntry) error {
	log, err := newActivityLog(entry)
	if err != nil {
		metrics.RecordActivityLogWrite("invalid")
		logger.Error().
			Err(err).
			Str("action_type", string(entry.ActionType)).
			Str("product_id", entry.ProductID).
			Str("admin_id", entry.ActorID).
			Msg("Activity log entry rejected")
		return err
	}

	ok := s.dispatcher.Dispatch(taskActivityLog, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, log); err != nil {
			metrics.RecordActivityLogWrite("failed")
			return err
		}
		metrics.RecordActivityLogWrite("success")
		return nil
	})
	if !ok {
		metrics.RecordActivityLogWrite("dropped")
	}
	return nil
}

// Create stores an entry synchronously.
func (s *ActivityService) Create(ctx context.Context, req *entity.CreateActivityLogRequest) (*entity.ActivityLog, error) {
	if strings.TrimSpace(req.ActorName) == "" || strings.TrimSpace(req.ActorEmail) == "" {
		return nil, fmt.Errorf("%w: adminName and adminEmail are required", ErrValidation)
	}

	log, err := newActivityLog(entity.ActivityEntry{
		ActionType: req.ActionType,
		ProductID:  req.ProductID,
		Brand:      req.Brand,
		SKU:        req.SKU,
		ActorID:    req.ActorID,
		ActorName:  req.ActorName,
		ActorEmail: req.ActorEmail,
		Metadata:   req.Metadata,
	})
	if err != nil {
		return nil, err
	}
	if req.EntityType != "" {
		log.EntityType = req.EntityType
	}

	if err := s.repo.Create(ctx, log); err != nil {
		metrics.RecordActivityLogWrite("failed")
		return nil, fmt.Errorf("failed to create activity log: %w", err)
	}
	metrics.RecordActivityLogWrite("success")

	return log, nil
}

func newActivityLog(entry entity.ActivityEntry) (*entity.ActivityLog, error) {
	var missing []string
	if entry.ActionType == "" {
		missing = append(missing, "actionType")
	}
	if strings.TrimSpace(entry.ProductID) == "" {
		missing = append(missing, "productId")
	}
	if strings.TrimSpace(entry.ActorID) == "" {
		missing = append(missing, "adminId")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}

	if !entry.ActionType.Valid() {
		return nil, fmt.Errorf("%w: unknown actionType %q", ErrValidation, entry.ActionType)
	}

	productID, err := primitive.ObjectIDFromHex(entry.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid productId %q", ErrValidation, entry.ProductID)
	}

	name := entry.ActorName
	if name == "" {
		name = "Unknown"
	}

	changes := entry.Changes
	if len(changes) == 0 {
		changes = nil
	}

	return &entity.ActivityLog{
		ActionType: entry.ActionType,
		EntityType: entity.EntityTypeProduct,
		ProductID:  productID,
		Brand:      entry.Brand,
		SKU:        entry.SKU,
		ActorID:    entry.ActorID,
		ActorName:  name,
		ActorEmail: entry.ActorEmail,
		Changes:    changes,
		Metadata:   entry.Metadata,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// List returns one page of the activity log.
func (s *ActivityService) List(ctx context.Context, query entity.ActivityLogQuery) (*entity.ActivityLogPage, error) {
	filter, err := ParseActivityQuery(query, s.location)
	if err != nil {
		return nil, err
	}

	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	if logs == nil {
		logs = []entity.ActivityLog{}
	}

	return &entity.ActivityLogPage{
		Success:    true,
		Data:       logs,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// Actors returns the distinct authors of activity log entries.
func (s *ActivityService) Actors(ctx context.Context) ([]entity.Actor, error) {
	actors, err := s.repo.Actors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity log admins: %w", err)
	}
	if actors == nil {
		actors = []entity.Actor{}
	}
	return actors, nil
}

// ParseActivityQuery resolves aliases, defaults and the date range of an
// activity log query. startDate is taken from the start of its day and endDate
// up to 23:59:59.999 of its day, both in loc unless a full timestamp is given.
func ParseActivityQuery(q entity.ActivityLogQuery, loc *time.Location) (entity.ActivityFilter, error) {
	if loc == nil {
		loc = time.Local
	}

	filter := entity.ActivityFilter{
		Brand:   strings.TrimSpace(q.Brand),
		ActorID: strings.TrimSpace(firstNonEmpty(q.AdminID, q.Admin)),
		Search:  strings.TrimSpace(q.Search),
		SortBy:  q.SortBy,
		// anything but an explicit "asc" sorts newest first
		SortDesc: !strings.EqualFold(q.SortOrder, "asc"),
	}

	if action := strings.TrimSpace(firstNonEmpty(q.ActionType, q.Action)); action != "" {
		actionType := entity.ActionType(strings.ToUpper(action))
		if !actionType.Valid() {
			return entity.ActivityFilter{}, fmt.Errorf("%w: unknown actionType %q", ErrValidation, action)
		}
		filter.ActionType = actionType
	}

	if q.StartDate != "" {
		from, _, err := parseDate(q.StartDate, loc)
		if err != nil {
			return entity.ActivityFilter{}, fmt.Errorf("%w: invalid startDate %q", ErrValidation, q.StartDate)
		}
		filter.From = &from
	}
	if q.EndDate != "" {
		to, dateOnly, err := parseDate(q.EndDate, loc)
		if err != nil {
			return entity.ActivityFilter{}, fmt.Errorf("%w: invalid endDate %q", ErrValidation, q.EndDate)
		}
		if dateOnly {
			to = endOfDay(to)
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return entity.ActivityFilter{}, fmt.Errorf("%w: startDate is after endDate", ErrValidation)
	}

	filter.Page = q.Page
	if filter.Page < 1 {
		filter.Page = 1
	}
	filter.Limit = q.Limit
	if filter.Limit < 1 {
		filter.Limit = defaultActivityLimit
	}
	if filter.Limit > maxActivityLimit {
		filter.Limit = maxActivityLimit
	}

	return filter, nil
}

// parseDate accepts YYYY-MM-DD (start of that day in loc) or RFC3339.
func parseDate(value string, loc *time.Location) (time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(dateLayout, value, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, false, nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
