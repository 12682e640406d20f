package products

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/remote"
)

// InventoryClient is the registry's view of the inventory ledger.
type InventoryClient interface {
	CreateStock(ctx context.Context, productID int64, quantity int) error
	// DeleteStock succeeds when the ledger holds no record for productID.
	DeleteStock(ctx context.Context, productID int64) error
}

type createStockRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// HTTPInventoryClient calls the inventory ledger over HTTP.
type HTTPInventoryClient struct {
	remote *remote.Client
}

// NewInventoryClient creates a new HTTPInventoryClient on top of client.
func NewInventoryClient(client *remote.Client) *HTTPInventoryClient {
	return &HTTPInventoryClient{remote: client}
}

func (c *HTTPInventoryClient) CreateStock(ctx context.Context, productID int64, quantity int) error {
	_, err := c.remote.Call(ctx, "CreateStock", func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetBody(createStockRequest{ProductID: productID, Quantity: quantity}).
			Post("/inventory")
	})
	return err
}

func (c *HTTPInventoryClient) DeleteStock(ctx context.Context, productID int64) error {
	_, err := c.remote.Call(ctx, "DeleteStock", func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetPathParam("productId", strconv.FormatInt(productID, 10)).
			Delete("/inventory/product/{productId}")
	})
	if remote.StatusCode(err) == http.StatusNotFound {
		return nil
	}
	return err
}
