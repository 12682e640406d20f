// Package inventory implements the inventory ledger: the authoritative stock
// quantity per product, combined reads enriched with product data, and
// purchases.
package inventory

import (
	"time"

	"github.com/juju/errors"
	"github.com/shopspring/decimal"
)

// UnavailableProductName replaces the product name when the registry could
// not be reached for a combined read.
const UnavailableProductName = "product details unavailable"

// ErrInsufficientStock marks purchases that ask for more than is in stock.
const ErrInsufficientStock = errors.ConstError("insufficient stock")

// InventoryRecord holds the current stock of one product.
type InventoryRecord struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewInventoryRecord creates an unsaved InventoryRecord.
func NewInventoryRecord(productID int64, quantity int) *InventoryRecord {
	now := time.Now().UTC()
	return &InventoryRecord{
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Withdraw takes amount units out of stock. The record is left unchanged when
// the stock does not cover amount.
func (r *InventoryRecord) Withdraw(amount int) error {
	if amount <= 0 {
		return errors.NotValidf("purchase quantity %d", amount)
	}
	if amount > r.Quantity {
		return errors.WithType(
			errors.Errorf("requested quantity (%d) exceeds available stock (%d)", amount, r.Quantity),
			ErrInsufficientStock,
		)
	}
	r.Quantity -= amount
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// ProductSnapshot is the product data fetched from the registry for display.
type ProductSnapshot struct {
	ID    int64            `json:"id"`
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

// InventoryView is a stock record combined with its product snapshot.
type InventoryView struct {
	InventoryID int64           `json:"inventoryId"`
	ProductID   int64           `json:"productId"`
	Quantity    int             `json:"quantity"`
	Product     ProductSnapshot `json:"product"`
	// Degraded is set when Product is a placeholder.
	Degraded bool `json:"degraded"`
}

// CreateInventoryRequest is the JSON body of POST /inventory.
type CreateInventoryRequest struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  *int  `json:"quantity" binding:"required,gte=0,lte=2147483647"`
}

// PurchaseRequest is the JSON body of the purchase endpoint.
type PurchaseRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0,lte=2147483647"`
}
