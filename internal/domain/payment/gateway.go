package payment

import (
	"context"

	"github.com/paylab/orderpay/internal/domain/order"
)

// Gateway is the outbound port for charging a customer. A successful charge
// returns the gateway transaction id. There is no refund or cancel operation.
type Gateway interface {
	Charge(ctx context.Context, orderID string, amount order.Money) (string, error)
}
