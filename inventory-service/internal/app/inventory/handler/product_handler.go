package handler

import (
	"context"
	"net/http"

	"inventory/inventory-service/internal/app/inventory/entity"
	"inventory/inventory-service/internal/app/inventory/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ProductHandler struct {
	productService service.ProductServiceInterface
	validator      *validator.Validate
}

func NewProductHandler(productService service.ProductServiceInterface) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      newValidator(),
	}
}

// ListProducts - GET /api/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var query entity.ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.productService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err, "Failed to get products")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetProduct - GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get product")
		return
	}

	c.JSON(http.StatusOK, entity.DataResponse{Success: true, Data: product})
}

// GetBrands - GET /api/products/brands/list
func (h *ProductHandler) GetBrands(c *gin.Context) {
	brands, err := h.productService.Brands(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get brands")
		return
	}

	c.JSON(http.StatusOK, entity.DataResponse{Success: true, Data: brands})
}

// CreateProduct - POST /api/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req entity.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	product, err := h.productService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, entity.DataResponse{Success: true, Data: product})
}

// UpdateProduct - PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	h.update(c, h.productService.Replace)
}

// PatchProduct - PATCH /api/products/:id
func (h *ProductHandler) PatchProduct(c *gin.Context) {
	h.update(c, h.productService.Patch)
}

type updateFunc func(ctx context.Context, actor entity.RequestActor, id string, req *entity.UpdateProductRequest) (*entity.Product, error)

func (h *ProductHandler) update(c *gin.Context, apply updateFunc) {
	actor, ok := requestActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req entity.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	product, err := apply(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, entity.DataResponse{Success: true, Data: product})
}

// DeleteProduct - DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	actor, ok := requestActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.productService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete product")
		return
	}

	c.JSON(http.StatusOK, entity.DataResponse{Success: true, Message: "Product deleted successfully"})
}
