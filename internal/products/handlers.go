package products

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/httpapi"
	"github.com/inZane-Dev/microservicios--producto--inventario/internal/paging"
)

// ProductUseCaseInterface is what the handlers need from the use case layer.
type ProductUseCaseInterface interface {
	CreateProduct(ctx context.Context, fields ProductFields) (*Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	UpdateProduct(ctx context.Context, id int64, fields ProductFields) (*Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context, req paging.Request) (*paging.Page[Product], error)
}

// ProductHandler contains the product HTTP handlers.
type ProductHandler struct {
	useCase ProductUseCaseInterface
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(useCase ProductUseCaseInterface, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// RegisterRoutes mounts the product routes. Create, list and get are public;
// everything else requires the service key.
func (h *ProductHandler) RegisterRoutes(r gin.IRouter, requireKey gin.HandlerFunc) {
	products := r.Group("/products")
	products.POST("", h.CreateProduct)
	products.GET("", h.ListProducts)
	products.GET("/:id", h.GetProduct)

	protected := products.Group("", requireKey)
	protected.PUT("/:id", h.UpdateProduct)
	protected.DELETE("/:id", h.DeleteProduct)
	protected.GET("/internal/:id", h.GetProduct)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	fields, ok := h.bindFields(c)
	if !ok {
		return
	}

	product, err := h.useCase.CreateProduct(c.Request.Context(), fields)
	if err != nil {
		httpapi.WriteError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := httpapi.ParseID(c, "id")
	if err != nil {
		httpapi.WriteError(c, h.logger, err)
		return
	}

	product, err := h.useCase.GetProduct(c.Request.Context(), id)
	if err != nil {
		httpapi.WriteError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := httpapi.ParseID(c, "id")
	if err != nil {
		httpapi.WriteError(c, h.logger, err)
		return
	}
	fields, ok := h.bindFields(c)
	if !ok {
		return
	}

	product, err := h.useCase.UpdateProduct(c.Request.Context(), id, fields)
	if err != nil {
		httpapi.WriteError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := httpapi.ParseID(c, "id")
	if err != nil {
		httpapi.WriteError(c, h.logger, err)
		return
	}

	if err := h.useCase.DeleteProduct(c.Request.Context(), id); err != nil {
		httpapi.WriteError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	req, err := httpapi.ParsePageRequest(c)
	if err != nil {
		httpapi.WriteError(c, h.logger, err)
		return
	}

	page, err := h.useCase.ListProducts(c.Request.Context(), req)
	if err != nil {
		httpapi.WriteError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *ProductHandler) bindFields(c *gin.Context) (ProductFields, bool) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.WriteError(c, h.logger, errors.BadRequestf("invalid body: %v", err))
		return ProductFields{}, false
	}
	fields, err := req.Fields()
	if err != nil {
		httpapi.WriteError(c, h.logger, err)
		return ProductFields{}, false
	}
	return fields, true
}
