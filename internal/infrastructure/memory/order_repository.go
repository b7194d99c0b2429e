package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/paylab/orderpay/internal/domain/order"
)

// OrderRepository is a map-backed adapter for the order repository port.
// It stores and returns clones, so a caller mutating a fetched aggregate
// cannot corrupt the stored state without an explicit Save.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]*domain.Order),
	}
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	entity, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return entity.Clone(), nil
}

func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	_ = ctx
	if order == nil || order.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[order.ID] = order.Clone()
	return nil
}

// Len reports how many orders are stored.
func (r *OrderRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
