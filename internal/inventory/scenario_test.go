package inventory_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/httpapi"
	"github.com/inZane-Dev/microservicios--producto--inventario/internal/inventory"
	"github.com/inZane-Dev/microservicios--producto--inventario/internal/paging"
	"github.com/inZane-Dev/microservicios--producto--inventario/internal/products"
	"github.com/inZane-Dev/microservicios--producto--inventario/internal/remote"
)

const (
	apiKeyHeader = "SERVICE_API_KEY"
	apiKey       = "shared-secret"
)

// cluster runs both services against in-memory storage. Either side can be
// taken down to answer 503 on every request.
type cluster struct {
	t             *testing.T
	productsURL   string
	inventoryURL  string
	productsDown  atomic.Bool
	inventoryDown atomic.Bool
}

func newCluster(t *testing.T) *cluster {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c := &cluster{t: t}
	var productsRouter, inventoryRouter http.Handler

	productsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.productsDown.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		productsRouter.ServeHTTP(w, r)
	}))
	t.Cleanup(productsSrv.Close)
	inventorySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.inventoryDown.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		inventoryRouter.ServeHTTP(w, r)
	}))
	t.Cleanup(inventorySrv.Close)
	c.productsURL = productsSrv.URL
	c.inventoryURL = inventorySrv.URL

	logger := zap.NewNop()
	tracer := noop.NewTracerProvider().Tracer("scenario")
	requireKey := httpapi.RequireAPIKey(apiKeyHeader, apiKey)
	remoteOptions := func(service, url string) remote.Options {
		return remote.Options{
			Service:      service,
			BaseURL:      url,
			APIKeyHeader: apiKeyHeader,
			APIKey:       apiKey,
			Timeout:      2 * time.Second,
			Policy:       remote.RetryPolicy{Attempts: 2, Delay: time.Millisecond},
			Logger:       logger,
		}
	}

	productUseCase := products.NewProductUseCase(
		products.NewMemoryProductRepository(),
		products.NewInventoryClient(remote.NewClient(remoteOptions("inventory-service", inventorySrv.URL))),
		tracer, logger,
	)
	pr := httpapi.NewRouter("products-service", logger)
	products.NewProductHandler(productUseCase, logger).RegisterRoutes(pr, requireKey)
	productsRouter = pr

	inventoryUseCase := inventory.NewInventoryUseCase(
		inventory.NewMemoryInventoryRepository(),
		inventory.NewProductsClient(remote.NewClient(remoteOptions("products-service", productsSrv.URL))),
		tracer, logger,
	)
	ir := httpapi.NewRouter("inventory-service", logger)
	inventory.NewInventoryHandler(inventoryUseCase, logger).RegisterRoutes(ir, requireKey)
	inventoryRouter = ir

	return c
}

func (c *cluster) call(method, url, body string, withKey bool) (int, []byte) {
	c.t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if withKey {
		req.Header.Set(apiKeyHeader, apiKey)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var raw json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&raw)
	return resp.StatusCode, raw
}

func (c *cluster) createProduct(name, price string, quantity int) (int, products.Product) {
	c.t.Helper()
	status, body := c.call(http.MethodPost, c.productsURL+"/products",
		fmt.Sprintf(`{"name":%q,"price":%s,"quantity":%d}`, name, price, quantity), false)
	var p products.Product
	if status == http.StatusCreated {
		require.NoError(c.t, json.Unmarshal(body, &p))
	}
	return status, p
}

func (c *cluster) combined(productID int64) (int, inventory.InventoryView) {
	c.t.Helper()
	status, body := c.call(http.MethodGet, fmt.Sprintf("%s/inventory/product/%d", c.inventoryURL, productID), "", true)
	var v inventory.InventoryView
	if status == http.StatusOK {
		require.NoError(c.t, json.Unmarshal(body, &v))
	}
	return status, v
}

func (c *cluster) purchase(productID int64, amount int) (int, []byte) {
	c.t.Helper()
	return c.call(http.MethodPut, fmt.Sprintf("%s/inventory/product/%d/purchase", c.inventoryURL, productID),
		fmt.Sprintf(`{"quantity":%d}`, amount), true)
}

func (c *cluster) deleteProduct(productID int64) (int, []byte) {
	c.t.Helper()
	return c.call(http.MethodDelete, fmt.Sprintf("%s/products/%d", c.productsURL, productID), "", true)
}

func (c *cluster) getProduct(productID int64) int {
	c.t.Helper()
	status, _ := c.call(http.MethodGet, fmt.Sprintf("%s/products/%d", c.productsURL, productID), "", false)
	return status
}

func TestWidgetLifecycle(t *testing.T) {
	c := newCluster(t)

	status, widget := c.createProduct("Widget", "10.00", 50)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, int64(1), widget.ID)

	status, view := c.combined(1)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 50, view.Quantity)
	assert.Equal(t, int64(1), view.Product.ID)
	assert.Equal(t, "Widget", view.Product.Name)
	assert.False(t, view.Degraded)

	status, body := c.purchase(1, 20)
	require.Equal(t, http.StatusOK, status)
	var afterPurchase inventory.InventoryView
	require.NoError(t, json.Unmarshal(body, &afterPurchase))
	assert.Equal(t, 30, afterPurchase.Quantity)
	assert.Equal(t, "Widget", afterPurchase.Product.Name)

	status, body = c.purchase(1, 40)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "(40)")
	assert.Contains(t, string(body), "(30)")
	_, view = c.combined(1)
	assert.Equal(t, 30, view.Quantity)

	status, _ = c.deleteProduct(1)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, http.StatusNotFound, c.getProduct(1))
	status, _ = c.combined(1)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreatedQuantityMatchesCombinedRead(t *testing.T) {
	c := newCluster(t)

	cases := []struct {
		name     string
		price    string
		quantity int
	}{
		{"Bolt", "0", 0},
		{"Nut", "0.25", 1},
		{"Gear", "199.99999", 1000},
	}
	for _, tc := range cases {
		status, p := c.createProduct(tc.name, tc.price, tc.quantity)
		require.Equal(t, http.StatusCreated, status, tc.name)

		status, view := c.combined(p.ID)
		require.Equal(t, http.StatusOK, status, tc.name)
		assert.Equal(t, tc.quantity, view.Quantity, tc.name)
		assert.Equal(t, p.ID, view.Product.ID, tc.name)
		assert.Equal(t, tc.name, view.Product.Name, tc.name)
	}
}

func TestFailedRemoteDeleteKeepsProduct(t *testing.T) {
	c := newCluster(t)
	status, p := c.createProduct("Widget", "10", 5)
	require.Equal(t, http.StatusCreated, status)

	c.inventoryDown.Store(true)
	status, body := c.deleteProduct(p.ID)
	c.inventoryDown.Store(false)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, string(body), "retry the delete")
	assert.Equal(t, http.StatusOK, c.getProduct(p.ID))
	status, view := c.combined(p.ID)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 5, view.Quantity)

	status, _ = c.deleteProduct(p.ID)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestFailedRemoteCreateLeavesRemovableOrphan(t *testing.T) {
	c := newCluster(t)

	c.inventoryDown.Store(true)
	status, body := c.call(http.MethodPost, c.productsURL+"/products", `{"name":"Orphan","price":1,"quantity":3}`, false)
	c.inventoryDown.Store(false)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, string(body), "product 1 created without inventory record")
	assert.Equal(t, http.StatusOK, c.getProduct(1))
	status, _ = c.combined(1)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = c.deleteProduct(1)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, http.StatusNotFound, c.getProduct(1))
}

func TestCombinedReadsDegradeWhenRegistryIsDown(t *testing.T) {
	c := newCluster(t)
	for _, name := range []string{"Widget", "Gadget"} {
		status, _ := c.createProduct(name, "3", 7)
		require.Equal(t, http.StatusCreated, status)
	}

	c.productsDown.Store(true)
	defer c.productsDown.Store(false)

	status, view := c.combined(1)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, view.Degraded)
	assert.Equal(t, 7, view.Quantity)
	assert.Equal(t, int64(1), view.Product.ID)
	assert.Equal(t, inventory.UnavailableProductName, view.Product.Name)

	status, body := c.call(http.MethodGet, c.inventoryURL+"/inventory", "", true)
	require.Equal(t, http.StatusOK, status)
	var page paging.Page[inventory.InventoryView]
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page.Content, 2)
	for _, v := range page.Content {
		assert.True(t, v.Degraded)
		assert.Equal(t, 7, v.Quantity)
	}

	status, _ = c.combined(99)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestInventoryRejectsCallsWithoutKey(t *testing.T) {
	c := newCluster(t)

	status, _ := c.call(http.MethodGet, c.inventoryURL+"/inventory", "", false)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = c.call(http.MethodGet, c.productsURL+"/products/internal/1", "", false)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = c.call(http.MethodGet, c.productsURL+"/products", "", false)
	assert.Equal(t, http.StatusOK, status)
}
