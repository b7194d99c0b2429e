package order

import "context"

// Repository is the outbound port for order persistence. GetByID reports an
// unknown id with ErrNotFound, never a zero Order. Implementations hand out
// defensive copies: callers compare by value, not by reference identity.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	Save(ctx context.Context, order *Order) error
}
