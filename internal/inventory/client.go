package inventory

import (
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/juju/errors"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/remote"
)

// ProductsClient is the ledger's view of the product registry.
type ProductsClient interface {
	FetchSnapshot(ctx context.Context, productID int64) (*ProductSnapshot, error)
}

// HTTPProductsClient calls the product registry over HTTP.
type HTTPProductsClient struct {
	remote *remote.Client
}

// NewProductsClient creates a new HTTPProductsClient on top of client.
func NewProductsClient(client *remote.Client) *HTTPProductsClient {
	return &HTTPProductsClient{remote: client}
}

func (c *HTTPProductsClient) FetchSnapshot(ctx context.Context, productID int64) (*ProductSnapshot, error) {
	resp, err := c.remote.Call(ctx, "FetchSnapshot", func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetPathParam("id", strconv.FormatInt(productID, 10)).
			SetResult(&ProductSnapshot{}).
			Get("/products/internal/{id}")
	})
	if err != nil {
		return nil, err
	}

	snapshot, ok := resp.Result().(*ProductSnapshot)
	if !ok || snapshot.ID != productID {
		return nil, errors.Errorf("unexpected snapshot for product %d: %s", productID, resp.String())
	}
	return snapshot, nil
}
