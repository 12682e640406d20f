package products

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/juju/errors"

	"github.com/inZane-Dev/microservicios--producto--inventario/internal/paging"
)

// MemoryProductRepository keeps products in process memory. It backs
// STORAGE=memory and the tests.
type MemoryProductRepository struct {
	mu     sync.RWMutex
	m      map[int64]Product
	nextID int64
}

// NewMemoryProductRepository creates an empty MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{m: make(map[int64]Product)}
}

func (r *MemoryProductRepository) Create(_ context.Context, product *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	product.ID = r.nextID
	r.m[product.ID] = *product
	return nil
}

func (r *MemoryProductRepository) Get(_ context.Context, id int64) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.m[id]
	if !ok {
		return nil, errors.NotFoundf("product %d", id)
	}
	return &p, nil
}

func (r *MemoryProductRepository) Update(_ context.Context, product *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[product.ID]; !ok {
		return errors.NotFoundf("product %d", product.ID)
	}
	r.m[product.ID] = *product
	return nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; !ok {
		return errors.NotFoundf("product %d", id)
	}
	delete(r.m, id)
	return nil
}

func (r *MemoryProductRepository) List(_ context.Context, req paging.Request) (*paging.Page[Product], error) {
	if _, err := req.OrderBy(sortColumns); err != nil {
		return nil, err
	}

	r.mu.RLock()
	all := make([]Product, 0, len(r.m))
	for _, p := range r.m {
		all = append(all, p)
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b Product) int {
		c := compareProducts(a, b, req.Sort)
		if req.Desc {
			c = -c
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		return c
	})

	total := int64(len(all))
	start := min(req.Offset(), len(all))
	end := min(start+req.Size, len(all))
	return paging.NewPage(req, all[start:end], total), nil
}

func compareProducts(a, b Product, key string) int {
	switch key {
	case "name":
		return cmp.Compare(a.Name, b.Name)
	case "price":
		return a.Price.Cmp(b.Price)
	case "quantity":
		return cmp.Compare(a.Quantity, b.Quantity)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}
