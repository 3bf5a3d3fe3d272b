package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog item in the products collection.
type Product struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID      string             `json:"user,omitempty" bson:"user,omitempty"` // creator, taken from the JWT
	Brand       string             `json:"brand" bson:"brand"`
	Title       string             `json:"title,omitempty" bson:"title,omitempty"`
	SKU         string             `json:"sku" bson:"sku"` // unique when non-empty
	Category    string             `json:"category" bson:"category"`
	Inventory   int                `json:"inventory" bson:"inventory"`
	Price       float64            `json:"price" bson:"price"`
	OldPrice    float64            `json:"oldPrice" bson:"oldPrice"`
	Description string             `json:"description" bson:"description"`

	CaseMaterial    string `json:"caseMaterial" bson:"caseMaterial"`
	DialColor       string `json:"dialColor" bson:"dialColor"`
	WaterResistance string `json:"waterResistance" bson:"waterResistance"`
	WarrantyPeriod  string `json:"warrantyPeriod" bson:"warrantyPeriod"`
	Movement        string `json:"movement" bson:"movement"`
	Gender          string `json:"gender" bson:"gender"`
	StrapColor      string `json:"strapColor" bson:"strapColor"`
	CaseShape       string `json:"caseShape" bson:"caseShape"`
	CaseSize        string `json:"caseSize" bson:"caseSize"`

	Images []string `json:"images" bson:"images"`

	// Legacy image fields written by older clients. Reads normalize them into Images.
	ImageURL string       `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Image    *LegacyImage `json:"image,omitempty" bson:"image,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type LegacyImage struct {
	URL     string `json:"url" bson:"url"`
	AltText string `json:"altText,omitempty" bson:"altText,omitempty"`
}

// StatsSnapshotID is the fixed key of the only dashboard_stats document.
const StatsSnapshotID = "dashboard"

// StatsSnapshot is the denormalized dashboard counters document.
type StatsSnapshot struct {
	ID              string    `json:"-" bson:"_id"`
	TotalProducts   int64     `json:"totalProducts" bson:"totalProducts"`
	TotalStock      int64     `json:"totalStock" bson:"totalStock"`
	TotalStoreValue float64   `json:"totalStoreValue" bson:"totalStoreValue"`
	OutOfStockCount int64     `json:"outOfStockCount" bson:"outOfStockCount"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
}

// IsZero reports whether every counter is exactly zero.
func (s *StatsSnapshot) IsZero() bool {
	return s.TotalProducts == 0 && s.TotalStock == 0 && s.TotalStoreValue == 0 && s.OutOfStockCount == 0
}

type ActionType string

const (
	ActionCreate ActionType = "CREATE"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

const EntityTypeProduct = "PRODUCT"

// ActivityLog is an immutable audit entry for one product mutation.
type ActivityLog struct {
	ID         primitive.ObjectID     `json:"_id" bson:"_id,omitempty"`
	ActionType ActionType             `json:"actionType" bson:"actionType"`
	EntityType string                 `json:"entityType" bson:"entityType"`
	ProductID  primitive.ObjectID     `json:"productId" bson:"productId"`
	Brand      string                 `json:"brand" bson:"brand"`
	SKU        string                 `json:"sku" bson:"sku"`
	ActorID    string                 `json:"adminId" bson:"adminId"`
	ActorName  string                 `json:"adminName" bson:"adminName"`
	ActorEmail string                 `json:"adminEmail" bson:"adminEmail"`
	Changes    Changes                `json:"changes,omitempty" bson:"changes,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"createdAt" bson:"createdAt"`

	// Thumbnail is joined from the referenced product at read time, never stored.
	Thumbnail *string `json:"thumbnail" bson:"thumbnail,omitempty"`
}

// Actor is a distinct author of activity log entries.
type Actor struct {
	ID    string `json:"_id" bson:"_id"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
}

// ProductEvent is published to Kafka after every product mutation.
type ProductEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"` // PRODUCT_CREATED, PRODUCT_UPDATED, PRODUCT_DELETED
	ProductID string    `json:"product_id"`
	Brand     string    `json:"brand"`
	SKU       string    `json:"sku"`
	ActorID   string    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventProductCreated = "PRODUCT_CREATED"
	EventProductUpdated = "PRODUCT_UPDATED"
	EventProductDeleted = "PRODUCT_DELETED"
)
