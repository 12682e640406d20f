package inventory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/juju/errors"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/paging"
)

// MemoryInventoryRepository keeps inventory records in process memory keyed
// by product id. It backs STORAGE=memory and the tests.
type MemoryInventoryRepository struct {
	mu     sync.RWMutex
	m      map[int64]InventoryRecord
	nextID int64

	// writeMu serializes transactions, standing in for the row lock.
	writeMu sync.Mutex
}

// NewMemoryInventoryRepository creates an empty MemoryInventoryRepository.
func NewMemoryInventoryRepository() *MemoryInventoryRepository {
	return &MemoryInventoryRepository{m: make(map[int64]InventoryRecord)}
}

func (r *MemoryInventoryRepository) Exists(_ context.Context, productID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.m[productID]
	return ok, nil
}

func (r *MemoryInventoryRepository) Create(_ context.Context, record *InventoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[record.ProductID]; ok {
		return errors.AlreadyExistsf("inventory for product %d", record.ProductID)
	}
	r.nextID++
	record.ID = r.nextID
	r.m[record.ProductID] = *record
	return nil
}

func (r *MemoryInventoryRepository) GetByProductID(_ context.Context, productID int64) (*InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.m[productID]
	if !ok {
		return nil, errors.NotFoundf("inventory for product %d", productID)
	}
	return &record, nil
}

func (r *MemoryInventoryRepository) DeleteByProductID(_ context.Context, productID int64) (*InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.m[productID]
	if !ok {
		return nil, errors.NotFoundf("inventory for product %d", productID)
	}
	delete(r.m, productID)
	return &record, nil
}

func (r *MemoryInventoryRepository) List(_ context.Context, req paging.Request) (*paging.Page[InventoryRecord], error) {
	if _, err := req.OrderBy(sortColumns); err != nil {
		return nil, err
	}

	r.mu.RLock()
	all := make([]InventoryRecord, 0, len(r.m))
	for _, record := range r.m {
		all = append(all, record)
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b InventoryRecord) int {
		c := compareRecords(a, b, req.Sort)
		if req.Desc {
			c = -c
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		return c
	})

	start := min(req.Offset(), len(all))
	end := min(start+req.Size, len(all))
	return paging.NewPage(req, all[start:end], int64(len(all))), nil
}

func compareRecords(a, b InventoryRecord, key string) int {
	switch key {
	case "productId":
		return cmp.Compare(a.ProductID, b.ProductID)
	case "quantity":
		return cmp.Compare(a.Quantity, b.Quantity)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}

// memoryTx stages quantity updates until Commit.
type memoryTx struct {
	repo   *MemoryInventoryRepository
	staged map[int64]InventoryRecord
	done   bool
}

func (t *memoryTx) Commit() error {
	if t.done {
		return errors.New("transaction already closed")
	}
	t.repo.mu.Lock()
	for productID, record := range t.staged {
		if _, ok := t.repo.m[productID]; ok {
			t.repo.m[productID] = record
		}
	}
	t.repo.mu.Unlock()
	t.close()
	return nil
}

func (t *memoryTx) Rollback() error {
	if !t.done {
		t.close()
	}
	return nil
}

func (t *memoryTx) close() {
	t.done = true
	t.repo.writeMu.Unlock()
}

func (r *MemoryInventoryRepository) BeginTx(_ context.Context) (Tx, error) {
	r.writeMu.Lock()
	return &memoryTx{repo: r, staged: make(map[int64]InventoryRecord)}, nil
}

func (r *MemoryInventoryRepository) GetForUpdate(ctx context.Context, tx Tx, productID int64) (*InventoryRecord, error) {
	if record, ok := tx.(*memoryTx).staged[productID]; ok {
		return &record, nil
	}
	return r.GetByProductID(ctx, productID)
}

func (r *MemoryInventoryRepository) UpdateQuantity(_ context.Context, tx Tx, record *InventoryRecord) error {
	tx.(*memoryTx).staged[record.ProductID] = *record
	return nil
}
