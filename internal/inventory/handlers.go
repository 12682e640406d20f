package inventory

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/httpapi"
	"github.com/inZane-Dev/microservicios--producto--inventario/internal/paging"
)

// InventoryUseCaseInterface is what the handlers need from the use case layer.
type InventoryUseCaseInterface interface {
	CreateInventoryRecord(ctx context.Context, productID int64, quantity int) (*InventoryRecord, error)
	DeleteInventoryRecordByProductID(ctx context.Context, productID int64) error
	GetCombined(ctx context.Context, productID int64) (*InventoryView, error)
	List(ctx context.Context, req paging.Request) (*paging.Page[InventoryView], error)
	Purchase(ctx context.Context, productID int64, amount int) (*InventoryRecord, error)
}

// InventoryHandler contains the inventory HTTP handlers.
type InventoryHandler struct {
	useCase InventoryUseCaseInterface
	logger  *zap.Logger
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(useCase InventoryUseCaseInterface, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// RegisterRoutes mounts the inventory routes, all behind the service key.
func (h *InventoryHandler) RegisterRoutes(r gin.IRouter, requireKey gin.HandlerFunc) {
	inventory := r.Group("/inventory", requireKey)
	inventory.POST("", h.CreateInventoryRecord)
	inventory.GET("", h.List)
	inventory.GET("/product/:productId", h.GetCombined)
	inventory.DELETE("/product/:productId", h.DeleteInventoryRecord)
	inventory.PUT("/product/:productId/purchase", h.Purchase)
}

func (h *InventoryHandler) CreateInventoryRecord(c *gin.Context) {
	var req CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, errors.BadRequestf("invalid body: %v", err))
		return
	}

	record, err := h.useCase.CreateInventoryRecord(c.Request.Context(), req.ProductID, *req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

func (h *InventoryHandler) DeleteInventoryRecord(c *gin.Context) {
	productID, err := httpapi.ParseID(c, "productId")
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.useCase.DeleteInventoryRecordByProductID(c.Request.Context(), productID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *InventoryHandler) GetCombined(c *gin.Context) {
	productID, err := httpapi.ParseID(c, "productId")
	if err != nil {
		h.respondError(c, err)
		return
	}

	view, err := h.useCase.GetCombined(c.Request.Context(), productID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Purchase answers with the combined view of the updated record.
func (h *InventoryHandler) Purchase(c *gin.Context) {
	productID, err := httpapi.ParseID(c, "productId")
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, errors.BadRequestf("invalid body: %v", err))
		return
	}

	if _, err := h.useCase.Purchase(c.Request.Context(), productID, req.Quantity); err != nil {
		h.respondError(c, err)
		return
	}

	view, err := h.useCase.GetCombined(c.Request.Context(), productID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *InventoryHandler) List(c *gin.Context) {
	req, err := httpapi.ParsePageRequest(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	page, err := h.useCase.List(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *InventoryHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, ErrInsufficientStock) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	httpapi.WriteError(c, h.logger, err)
}
