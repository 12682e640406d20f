package products

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/paging"
)

// MockRepository simulates the product repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, product *Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockRepository) Get(ctx context.Context, id int64) (*Product, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, product *Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, req paging.Request) (*paging.Page[Product], error) {
	args := m.Called(ctx, req)
	if p, ok := args.Get(0).(*paging.Page[Product]); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockInventoryClient simulates the inventory ledger
type MockInventoryClient struct {
	mock.Mock
}

func (m *MockInventoryClient) CreateStock(ctx context.Context, productID int64, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

func (m *MockInventoryClient) DeleteStock(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

// MockProductUseCase simulates the use case layer for handler tests
type MockProductUseCase struct {
	mock.Mock
}

func (m *MockProductUseCase) CreateProduct(ctx context.Context, fields ProductFields) (*Product, error) {
	args := m.Called(ctx, fields)
	if p, ok := args.Get(0).(*Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductUseCase) DeleteProduct(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductUseCase) UpdateProduct(ctx context.Context, id int64, fields ProductFields) (*Product, error) {
	args := m.Called(ctx, id, fields)
	if p, ok := args.Get(0).(*Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductUseCase) GetProduct(ctx context.Context, id int64) (*Product, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductUseCase) ListProducts(ctx context.Context, req paging.Request) (*paging.Page[Product], error) {
	args := m.Called(ctx, req)
	if p, ok := args.Get(0).(*paging.Page[Product]); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
