// Package products implements the product registry: the catalog of product
// identities and the choreography that keeps inventory records in step with it.
package products

import (
	"math"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/shopspring/decimal"
)

// PriceScale is the number of decimal places a price may carry.
const PriceScale = 5

// maxPrice is the first value the NUMERIC(20,5) price column cannot hold.
var maxPrice = decimal.New(1, 20-PriceScale)

// Product represents one catalog entry. Quantity is the stock declared at
// creation and is not kept in sync with the inventory ledger afterwards.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ProductFields are the mutable attributes of a product.
type ProductFields struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// NewProduct creates an unsaved Product from validated fields.
func NewProduct(fields ProductFields) *Product {
	now := time.Now().UTC()
	return &Product{
		Name:      fields.Name,
		Price:     fields.Price,
		Quantity:  fields.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply overwrites the mutable attributes of p.
func (p *Product) Apply(fields ProductFields) {
	p.Name = fields.Name
	p.Price = fields.Price
	p.Quantity = fields.Quantity
	p.UpdatedAt = time.Now().UTC()
}

// ProductRequest is the JSON body of create and update calls. Price accepts
// either a JSON number or a decimal string.
type ProductRequest struct {
	Name     *string          `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *int             `json:"quantity"`
}

// Fields validates the request and returns the product attributes it carries.
func (r ProductRequest) Fields() (ProductFields, error) {
	if r.Name == nil || strings.TrimSpace(*r.Name) == "" {
		return ProductFields{}, errors.NotValidf("empty product name")
	}
	if r.Price == nil {
		return ProductFields{}, errors.NotValidf("missing product price")
	}
	if r.Price.IsNegative() {
		return ProductFields{}, errors.NotValidf("negative product price %s", r.Price)
	}
	if !r.Price.Equal(r.Price.Round(PriceScale)) {
		return ProductFields{}, errors.NotValidf("product price %s (more than %d decimal places)", r.Price, PriceScale)
	}
	if r.Price.GreaterThanOrEqual(maxPrice) {
		return ProductFields{}, errors.NotValidf("product price %s (must be below %s)", r.Price, maxPrice)
	}
	if r.Quantity == nil {
		return ProductFields{}, errors.NotValidf("missing product quantity")
	}
	if *r.Quantity < 0 {
		return ProductFields{}, errors.NotValidf("negative product quantity %d", *r.Quantity)
	}
	if *r.Quantity > math.MaxInt32 {
		return ProductFields{}, errors.NotValidf("product quantity %d (must not exceed %d)", *r.Quantity, math.MaxInt32)
	}
	return ProductFields{
		Name:     strings.TrimSpace(*r.Name),
		Price:    *r.Price,
		Quantity: *r.Quantity,
	}, nil
}
