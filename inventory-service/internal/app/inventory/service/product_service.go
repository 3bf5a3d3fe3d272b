package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory/inventory-service/internal/app/inventory/entity"
	"inventory/inventory-service/internal/app/inventory/repository"
	"inventory/pkg/logger"
	"inventory/pkg/metrics"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	taskMigrateImages = "migrate_images"
	taskPublishEvent  = "publish_product_event"

	defaultProductLimit = 50
	maxProductLimit     = 500
)

// EventPublisher sends product events to the message broker.
type EventPublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
}

// ProductService handles product CRUD and everything a mutation triggers:
// brand cache invalidation, stats recompute, activity log and product events.
type ProductService struct {
	repo       repository.ProductRepository
	brands     BrandCache
	activity   ActivityRecorder
	stats      StatsRefresher
	dispatcher TaskDispatcher
	publisher  EventPublisher // optional
}

func NewProductService(
	repo repository.ProductRepository,
	brands BrandCache,
	activity ActivityRecorder,
	stats StatsRefresher,
	dispatcher TaskDispatcher,
	publisher EventPublisher,
) *ProductService {
	return &ProductService{
		repo:       repo,
		brands:     brands,
		activity:   activity,
		stats:      stats,
		dispatcher: dispatcher,
		publisher:  publisher,
	}
}

// List returns one page of products. Legacy image fields are normalized in the
// response and migrated in the background.
func (s *ProductService) List(ctx context.Context, query entity.ProductListQuery) (*entity.ProductListResponse, error) {
	filter := ParseProductQuery(query)

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []entity.Product{}
	}

	for i := range products {
		s.normalizeImages(&products[i])
	}

	return &entity.ProductListResponse{
		Success: true,
		Data:    products,
		Pagination: entity.Pagination{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: total,
			Pages: totalPages(total, filter.Limit),
		},
	}, nil
}

// ParseProductQuery applies list defaults: page 1, 50 per page, newest first.
func ParseProductQuery(q entity.ProductListQuery) entity.ProductFilter {
	filter := entity.ProductFilter{
		Brand:    strings.TrimSpace(q.Brand),
		Category: strings.TrimSpace(q.Category),
		Search:   strings.TrimSpace(q.Search),
		Page:     q.Page,
		Limit:    q.Limit,
		SortBy:   q.SortBy,
		SortDesc: !strings.EqualFold(q.SortOrder, "asc"),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultProductLimit
	}
	if filter.Limit > maxProductLimit {
		filter.Limit = maxProductLimit
	}
	return filter
}

func (s *ProductService) Get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to get product")
	}

	s.normalizeImages(product)
	return product, nil
}

// Create inserts a product. oldPrice defaults to price when zero or absent.
func (s *ProductService) Create(ctx context.Context, actor entity.RequestActor, req *entity.CreateProductRequest) (*entity.Product, error) {
	if req.Inventory < 0 || req.Price < 0 || req.OldPrice < 0 {
		return nil, fmt.Errorf("%w: inventory and prices must not be negative", ErrValidation)
	}

	oldPrice := req.OldPrice
	if oldPrice == 0 {
		oldPrice = req.Price
	}

	images := req.Images
	if images == nil {
		images = []string{}
	}

	now := time.Now().UTC()
	product := &entity.Product{
		UserID:          actor.ID,
		Brand:           strings.TrimSpace(req.Brand),
		Title:           strings.TrimSpace(req.Title),
		SKU:             strings.TrimSpace(req.SKU),
		Category:        strings.TrimSpace(req.Category),
		Inventory:       req.Inventory,
		Price:           req.Price,
		OldPrice:        oldPrice,
		Description:     req.Description,
		CaseMaterial:    req.CaseMaterial,
		DialColor:       req.DialColor,
		WaterResistance: req.WaterResistance,
		WarrantyPeriod:  req.WarrantyPeriod,
		Movement:        req.Movement,
		Gender:          req.Gender,
		StrapColor:      req.StrapColor,
		CaseShape:       req.CaseShape,
		CaseSize:        req.CaseSize,
		Images:          images,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, mapRepositoryError(err, "failed to create product")
	}

	s.afterMutation(ctx, entity.ActionCreate, product, actor, nil)

	return product, nil
}

// Replace is the PUT update. Only provided fields are written; a body with no
// fields leaves the product unchanged.
func (s *ProductService) Replace(ctx context.Context, actor entity.RequestActor, id string, req *entity.UpdateProductRequest) (*entity.Product, error) {
	return s.update(ctx, actor, id, req, false)
}

// Patch is the PATCH update. A body with no updatable field is rejected.
func (s *ProductService) Patch(ctx context.Context, actor entity.RequestActor, id string, req *entity.UpdateProductRequest) (*entity.Product, error) {
	return s.update(ctx, actor, id, req, true)
}

func (s *ProductService) update(ctx context.Context, actor entity.RequestActor, id string, req *entity.UpdateProductRequest, partial bool) (*entity.Product, error) {
	if partial && len(req.Fields()) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	if err := validateUpdate(req); err != nil {
		return nil, err
	}
	trimUpdate(req)

	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to get product")
	}

	applyPriceRule(before, req)

	fields := req.Fields()
	if len(fields) == 0 {
		s.normalizeImages(before)
		return before, nil
	}

	after, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, mapRepositoryError(err, "failed to update product")
	}

	// the diff is taken against what this request wrote, not against whatever
	// a concurrent writer may have committed in between
	expected := *before
	req.Apply(&expected)
	changes := DetectChanges(before, &expected)

	s.afterMutation(ctx, entity.ActionUpdate, after, actor, changes)

	s.normalizeImages(after)
	return after, nil
}

// applyPriceRule sets oldPrice when a price is provided: samePriceChecked pins
// it to the new price, otherwise a changed price moves the previous price there.
func applyPriceRule(before *entity.Product, req *entity.UpdateProductRequest) {
	if req.Price == nil {
		return
	}

	price := *req.Price
	switch {
	case req.SamePriceChecked != nil && *req.SamePriceChecked:
		req.OldPrice = &price
	case price != before.Price:
		previous := before.Price
		req.OldPrice = &previous
	}
}

func validateUpdate(req *entity.UpdateProductRequest) error {
	if req.Inventory != nil && *req.Inventory < 0 {
		return fmt.Errorf("%w: inventory must not be negative", ErrValidation)
	}
	if (req.Price != nil && *req.Price < 0) || (req.OldPrice != nil && *req.OldPrice < 0) {
		return fmt.Errorf("%w: prices must not be negative", ErrValidation)
	}
	return nil
}

func trimUpdate(req *entity.UpdateProductRequest) {
	for _, v := range []*string{req.Brand, req.Title, req.SKU, req.Category} {
		if v != nil {
			*v = strings.TrimSpace(*v)
		}
	}
}

func (s *ProductService) Delete(ctx context.Context, actor entity.RequestActor, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return mapRepositoryError(err, "failed to delete product")
	}

	s.afterMutation(ctx, entity.ActionDelete, deleted, actor, nil)
	return nil
}

// Brands returns the sorted distinct brand list through the brand cache.
func (s *ProductService) Brands(ctx context.Context) ([]string, error) {
	var (
		brands []string
		err    error
	)
	if s.brands != nil {
		brands, err = s.brands.Get(ctx, s.repo.Brands)
	} else {
		brands, err = s.repo.Brands(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get brands: %w", err)
	}
	if brands == nil {
		brands = []string{}
	}
	return brands, nil
}

// afterMutation runs the follow-ups of a committed write. None of them can
// fail the request.
func (s *ProductService) afterMutation(ctx context.Context, action entity.ActionType, product *entity.Product, actor entity.RequestActor, changes entity.Changes) {
	metrics.RecordProductMutation(string(action))

	if s.brands != nil {
		s.brands.Invalidate(ctx)
	}

	if s.stats != nil && !s.stats.RequestRecompute() {
		logger.Warn().Str("product_id", product.ID.Hex()).Msg("Stats recompute was not scheduled")
	}

	if s.activity != nil {
		// rejected entries are logged by the recorder
		_ = s.activity.Record(entity.ActivityEntry{
			ActionType: action,
			ProductID:  product.ID.Hex(),
			Brand:      product.Brand,
			SKU:        product.SKU,
			ActorID:    actor.ID,
			ActorName:  actor.Name,
			ActorEmail: actor.Email,
			Changes:    changes,
		})
	}

	s.publishEvent(action, product, actor)
}

var eventTypes = map[entity.ActionType]string{
	entity.ActionCreate: entity.EventProductCreated,
	entity.ActionUpdate: entity.EventProductUpdated,
	entity.ActionDelete: entity.EventProductDeleted,
}

func (s *ProductService) publishEvent(action entity.ActionType, product *entity.Product, actor entity.RequestActor) {
	if s.publisher == nil {
		return
	}

	event := entity.ProductEvent{
		EventID:   uuid.NewString(),
		EventType: eventTypes[action],
		ProductID: product.ID.Hex(),
		Brand:     product.Brand,
		SKU:       product.SKU,
		ActorID:   actor.ID,
		Timestamp: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", event.EventType).Msg("Failed to marshal product event")
		return
	}

	s.dispatcher.Dispatch(taskPublishEvent, func(ctx context.Context) error {
		if err := s.publisher.PublishMessage(ctx, event.ProductID, payload); err != nil {
			return fmt.Errorf("failed to publish %s: %w", event.EventType, err)
		}
		return nil
	})
}

// normalizeImages fills Images from legacy fields and schedules the write-back.
func (s *ProductService) normalizeImages(p *entity.Product) {
	if !entity.NormalizeImages(p) {
		return
	}

	id := p.ID
	images := append([]string(nil), p.Images...)
	s.dispatcher.Dispatch(taskMigrateImages, func(ctx context.Context) error {
		return s.migrateImages(ctx, id, images)
	})
}

func (s *ProductService) migrateImages(ctx context.Context, id primitive.ObjectID, images []string) error {
	if err := s.repo.SetImages(ctx, id, images); err != nil {
		return err
	}
	logger.Debug().Str("product_id", id.Hex()).Int("images", len(images)).Msg("Legacy product images migrated")
	return nil
}

func mapRepositoryError(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return ErrProductNotFound
	case errors.Is(err, repository.ErrDuplicateSKU):
		return ErrSKUConflict
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}
