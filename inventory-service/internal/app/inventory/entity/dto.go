package entity

import "time"

// CreateProductRequest - body of POST /api/products
type CreateProductRequest struct {
	Brand       string   `json:"brand" validate:"max=100"`
	Title       string   `json:"title" validate:"max=200"`
	SKU         string   `json:"sku" validate:"max=100"`
	Category    string   `json:"category" validate:"max=100"`
	Inventory   int      `json:"inventory" validate:"min=0"`
	Price       float64  `json:"price" validate:"min=0"`
	OldPrice    float64  `json:"oldPrice" validate:"min=0"` // 0 or absent means "same as price"
	Description string   `json:"description" validate:"max=5000"`
	Images      []string `json:"images" validate:"omitempty,max=20,dive,max=2048"`

	CaseMaterial    string `json:"caseMaterial"`
	DialColor       string `json:"dialColor"`
	WaterResistance string `json:"waterResistance"`
	WarrantyPeriod  string `json:"warrantyPeriod"`
	Movement        string `json:"movement"`
	Gender          string `json:"gender"`
	StrapColor      string `json:"strapColor"`
	CaseShape       string `json:"caseShape"`
	CaseSize        string `json:"caseSize"`
}

// UpdateProductRequest - body of PUT and PATCH /api/products/:id.
// nil fields are left untouched.
type UpdateProductRequest struct {
	Brand       *string   `json:"brand" validate:"omitempty,max=100"`
	Title       *string   `json:"title" validate:"omitempty,max=200"`
	SKU         *string   `json:"sku" validate:"omitempty,max=100"`
	Category    *string   `json:"category" validate:"omitempty,max=100"`
	Inventory   *int      `json:"inventory" validate:"omitempty,min=0"`
	Price       *float64  `json:"price" validate:"omitempty,min=0"`
	OldPrice    *float64  `json:"oldPrice" validate:"omitempty,min=0"`
	Description *string   `json:"description" validate:"omitempty,max=5000"`
	Images      *[]string `json:"images" validate:"omitempty,max=20,dive,max=2048"`

	CaseMaterial    *string `json:"caseMaterial"`
	DialColor       *string `json:"dialColor"`
	WaterResistance *string `json:"waterResistance"`
	WarrantyPeriod  *string `json:"warrantyPeriod"`
	Movement        *string `json:"movement"`
	Gender          *string `json:"gender"`
	StrapColor      *string `json:"strapColor"`
	CaseShape       *string `json:"caseShape"`
	CaseSize        *string `json:"caseSize"`

	Image *LegacyImage `json:"image"`

	// SamePriceChecked pins oldPrice to the new price. Not persisted.
	SamePriceChecked *bool `json:"samePriceChecked"`
}

// Fields returns the provided fields keyed by their stored name, ready for $set.
func (r *UpdateProductRequest) Fields() map[string]interface{} {
	f := make(map[string]interface{})
	setString := func(name string, v *string) {
		if v != nil {
			f[name] = *v
		}
	}

	setString("brand", r.Brand)
	setString("title", r.Title)
	setString("sku", r.SKU)
	setString("category", r.Category)
	setString("description", r.Description)
	setString("caseMaterial", r.CaseMaterial)
	setString("dialColor", r.DialColor)
	setString("waterResistance", r.WaterResistance)
	setString("warrantyPeriod", r.WarrantyPeriod)
	setString("movement", r.Movement)
	setString("gender", r.Gender)
	setString("strapColor", r.StrapColor)
	setString("caseShape", r.CaseShape)
	setString("caseSize", r.CaseSize)

	if r.Inventory != nil {
		f["inventory"] = *r.Inventory
	}
	if r.Price != nil {
		f["price"] = *r.Price
	}
	if r.OldPrice != nil {
		f["oldPrice"] = *r.OldPrice
	}
	if r.Images != nil {
		images := *r.Images
		if images == nil {
			images = []string{}
		}
		f["images"] = images
	}
	if r.Image != nil {
		f["image"] = *r.Image
	}
	return f
}

// Apply writes the provided fields onto p.
func (r *UpdateProductRequest) Apply(p *Product) {
	applyString := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}

	applyString(&p.Brand, r.Brand)
	applyString(&p.Title, r.Title)
	applyString(&p.SKU, r.SKU)
	applyString(&p.Category, r.Category)
	applyString(&p.Description, r.Description)
	applyString(&p.CaseMaterial, r.CaseMaterial)
	applyString(&p.DialColor, r.DialColor)
	applyString(&p.WaterResistance, r.WaterResistance)
	applyString(&p.WarrantyPeriod, r.WarrantyPeriod)
	applyString(&p.Movement, r.Movement)
	applyString(&p.Gender, r.Gender)
	applyString(&p.StrapColor, r.StrapColor)
	applyString(&p.CaseShape, r.CaseShape)
	applyString(&p.CaseSize, r.CaseSize)

	if r.Inventory != nil {
		p.Inventory = *r.Inventory
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.OldPrice != nil {
		p.OldPrice = *r.OldPrice
	}
	if r.Images != nil {
		p.Images = append([]string(nil), *r.Images...)
	}
	if r.Image != nil {
		img := *r.Image
		p.Image = &img
	}
}

// ProductListQuery - query string of GET /api/products and the products export
type ProductListQuery struct {
	Brand     string `form:"brand"`
	Category  string `form:"category"`
	Search    string `form:"search"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

// ActivityLogQuery - query string of GET /api/activity-logs and the activity export
type ActivityLogQuery struct {
	Brand      string `form:"brand"`
	Action     string `form:"action"` // alias of actionType
	ActionType string `form:"actionType"`
	Admin      string `form:"admin"` // alias of adminId
	AdminID    string `form:"adminId"`
	Search     string `form:"search"`
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
	SortBy     string `form:"sortBy"`
	SortOrder  string `form:"sortOrder"`
}

// ActivityFilter is the parsed, validated form of ActivityLogQuery.
type ActivityFilter struct {
	Brand      string
	ActionType ActionType
	ActorID    string
	Search     string
	From       *time.Time // inclusive
	To         *time.Time // inclusive, end of day
	Page       int
	Limit      int
	SortBy     string
	SortDesc   bool
}

// ProductFilter is the parsed form of ProductListQuery.
type ProductFilter struct {
	Brand    string
	Category string
	Search   string
	Page     int
	Limit    int
	SortBy   string
	SortDesc bool
}

// CreateActivityLogRequest - body of POST /api/activity-logs
type CreateActivityLogRequest struct {
	ActionType ActionType             `json:"actionType" validate:"required,oneof=CREATE UPDATE DELETE"`
	EntityType string                 `json:"entityType"`
	Brand      string                 `json:"brand"`
	SKU        string                 `json:"sku"`
	ProductID  string                 `json:"productId" validate:"required"`
	ActorID    string                 `json:"adminId" validate:"required"`
	ActorName  string                 `json:"adminName" validate:"required"`
	ActorEmail string                 `json:"adminEmail" validate:"required,email"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// ActivityEntry is the input of an activity log write.
type ActivityEntry struct {
	ActionType ActionType
	ProductID  string
	Brand      string
	SKU        string
	ActorID    string
	ActorName  string
	ActorEmail string
	Changes    Changes
	Metadata   map[string]interface{}
}

// Actor of the current request, extracted from the JWT.
type RequestActor struct {
	ID    string
	Name  string
	Email string
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// ProductListResponse - GET /api/products
type ProductListResponse struct {
	Success    bool       `json:"success"`
	Data       []Product  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ActivityLogPage - GET /api/activity-logs
type ActivityLogPage struct {
	Success    bool          `json:"success"`
	Data       []ActivityLog `json:"data"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"totalPages"`
}

// DataResponse is the {success, data} envelope used by most endpoints.
type DataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
