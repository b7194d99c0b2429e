package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	domain "github.com/paylab/orderpay/internal/domain/order"
)

// ChargeRecord is one successful charge as seen by the fake gateway.
type ChargeRecord struct {
	OrderID       string
	Amount        domain.Money
	TransactionID string
}

// FakeGateway is an in-memory adapter for the payment gateway port. It
// records every successful charge and can be switched into a failing mode.
type FakeGateway struct {
	mu       sync.Mutex
	failWith error
	charges  []ChargeRecord
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

// Fail makes subsequent charges return err. Pass nil to restore success.
func (g *FakeGateway) Fail(err error) {
	g.mu.Lock()
	g.failWith = err
	g.mu.Unlock()
}

func (g *FakeGateway) Charge(ctx context.Context, orderID string, amount domain.Money) (string, error) {
	_ = ctx

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failWith != nil {
		return "", g.failWith
	}

	id := uuid.New()
	transactionID := fmt.Sprintf("txn_%x", id[:4])
	g.charges = append(g.charges, ChargeRecord{
		OrderID:       orderID,
		Amount:        amount,
		TransactionID: transactionID,
	})
	return transactionID, nil
}

// Charges returns a copy of the recorded charges.
func (g *FakeGateway) Charges() []ChargeRecord {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]ChargeRecord, len(g.charges))
	copy(out, g.charges)
	return out
}

func (g *FakeGateway) ChargeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.charges)
}
