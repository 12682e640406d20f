package inventory

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/paging"
)

// MockProductsClient simulates the product registry
type MockProductsClient struct {
	mock.Mock
}

func (m *MockProductsClient) FetchSnapshot(ctx context.Context, productID int64) (*ProductSnapshot, error) {
	args := m.Called(ctx, productID)
	if s, ok := args.Get(0).(*ProductSnapshot); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockInventoryUseCase simulates the use case layer for handler tests
type MockInventoryUseCase struct {
	mock.Mock
}

func (m *MockInventoryUseCase) CreateInventoryRecord(ctx context.Context, productID int64, quantity int) (*InventoryRecord, error) {
	args := m.Called(ctx, productID, quantity)
	if r, ok := args.Get(0).(*InventoryRecord); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInventoryUseCase) DeleteInventoryRecordByProductID(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockInventoryUseCase) GetCombined(ctx context.Context, productID int64) (*InventoryView, error) {
	args := m.Called(ctx, productID)
	if v, ok := args.Get(0).(*InventoryView); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInventoryUseCase) List(ctx context.Context, req paging.Request) (*paging.Page[InventoryView], error) {
	args := m.Called(ctx, req)
	if p, ok := args.Get(0).(*paging.Page[InventoryView]); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInventoryUseCase) Purchase(ctx context.Context, productID int64, amount int) (*InventoryRecord, error) {
	args := m.Called(ctx, productID, amount)
	if r, ok := args.Get(0).(*InventoryRecord); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
