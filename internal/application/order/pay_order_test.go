package order_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appOrder "github.com/paylab/orderpay/internal/application/order"
	domain "github.com/paylab/orderpay/internal/domain/order"
	domoutbox "github.com/paylab/orderpay/internal/domain/outbox"
	"github.com/paylab/orderpay/internal/infrastructure/memory"
	"github.com/paylab/orderpay/internal/infrastructure/payment"
)

// recordingRepo counts saves going through the port; seeding writes use the
// embedded repository directly and stay uncounted.
type recordingRepo struct {
	*memory.OrderRepository
	saves int
}

func (r *recordingRepo) Save(ctx context.Context, o *domain.Order) error {
	r.saves++
	return r.OrderRepository.Save(ctx, o)
}

type capturePublisher struct {
	events []domoutbox.Event
}

func (p *capturePublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.events = append(p.events, e)
	return nil
}

func usd(t *testing.T, amount string) domain.Money {
	t.Helper()
	m, err := domain.MoneyFromString(amount, "")
	require.NoError(t, err)
	return m
}

func seedOrder(t *testing.T, repo *recordingRepo, id string, lines ...domain.OrderLine) {
	t.Helper()
	o := domain.New(id, "customer-1")
	for _, line := range lines {
		require.NoError(t, o.AddLine(line.ProductID, line.Quantity, line.UnitPrice))
	}
	require.NoError(t, repo.OrderRepository.Save(context.Background(), o))
}

func newFixture() (*recordingRepo, *payment.FakeGateway, *capturePublisher, *appOrder.PayOrderUseCase) {
	repo := &recordingRepo{OrderRepository: memory.NewOrderRepository()}
	gateway := payment.NewFakeGateway()
	publisher := &capturePublisher{}
	uc := appOrder.NewPayOrderUseCase(repo, gateway, publisher, nil)
	return repo, gateway, publisher, uc
}

func TestPayOrderSuccess(t *testing.T) {
	repo, gateway, publisher, uc := newFixture()
	seedOrder(t, repo, "order-1",
		domain.OrderLine{ProductID: "prod-1", Quantity: 2, UnitPrice: usd(t, "10.50")},
		domain.OrderLine{ProductID: "prod-2", Quantity: 1, UnitPrice: usd(t, "5.00")},
	)

	result := uc.Execute(context.Background(), appOrder.PayOrderCommand{OrderID: "order-1"})

	require.True(t, result.Success)
	assert.Equal(t, "order-1", result.OrderID)
	assert.True(t, strings.HasPrefix(result.TransactionID, "txn_"))
	assert.Empty(t, result.ErrorMessage)

	stored, err := repo.GetByID(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, stored.Status)

	require.Equal(t, 1, gateway.ChargeCount())
	charge := gateway.Charges()[0]
	assert.Equal(t, "order-1", charge.OrderID)
	assert.True(t, charge.Amount.Equal(usd(t, "26.00")))
	assert.Equal(t, result.TransactionID, charge.TransactionID)

	require.Len(t, publisher.events, 1)
	paid, ok := publisher.events[0].(domain.OrderPaidEvent)
	require.True(t, ok)
	assert.Equal(t, "order-1", paid.OrderID)
	assert.Equal(t, result.TransactionID, paid.TransactionID)
}

func TestPayOrderEmptyOrder(t *testing.T) {
	repo, gateway, _, uc := newFixture()
	seedOrder(t, repo, "order-2")

	result := uc.Execute(context.Background(), appOrder.PayOrderCommand{OrderID: "order-2"})

	require.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "empty")
	assert.Empty(t, result.TransactionID)
	assert.Equal(t, 0, gateway.ChargeCount())
	assert.Equal(t, 0, repo.saves)

	stored, err := repo.GetByID(context.Background(), "order-2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestPayOrderTwice(t *testing.T) {
	repo, gateway, _, uc := newFixture()
	seedOrder(t, repo, "order-3",
		domain.OrderLine{ProductID: "prod-1", Quantity: 1, UnitPrice: usd(t, "10.00")},
	)

	first := uc.Execute(context.Background(), appOrder.PayOrderCommand{OrderID: "order-3"})
	require.True(t, first.Success)

	second := uc.Execute(context.Background(), appOrder.PayOrderCommand{OrderID: "order-3"})
	require.False(t, second.Success)
	assert.Contains(t, second.ErrorMessage, "already paid")
	assert.Equal(t, 1, gateway.ChargeCount())
}

func TestPayOrderNotFound(t *testing.T) {
	repo, gateway, _, uc := newFixture()

	result := uc.Execute(context.Background(), appOrder.PayOrderCommand{OrderID: "missing"})

	require.False(t, result.Success)
	assert.Equal(t, "Order not found", result.ErrorMessage)
	assert.Equal(t, "missing", result.OrderID)
	assert.Equal(t, 0, gateway.ChargeCount())
	assert.Equal(t, 0, repo.saves)
}

func TestPayOrderGatewayFailure(t *testing.T) {
	repo, gateway, publisher, uc := newFixture()
	seedOrder(t, repo, "order-4",
		domain.OrderLine{ProductID: "prod-1", Quantity: 1, UnitPrice: usd(t, "10.00")},
	)
	gateway.Fail(errors.New("insufficient funds"))

	result := uc.Execute(context.Background(), appOrder.PayOrderCommand{OrderID: "order-4"})

	require.False(t, result.Success)
	assert.Equal(t, "Payment failed: insufficient funds", result.ErrorMessage)
	assert.Equal(t, 0, repo.saves)
	assert.Empty(t, publisher.events)

	// The stored order must remain unpaid after a failed charge.
	stored, err := repo.GetByID(context.Background(), "order-4")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestPayOrderSavesOnlyAfterCharge(t *testing.T) {
	repo, gateway, _, uc := newFixture()
	seedOrder(t, repo, "order-5",
		domain.OrderLine{ProductID: "prod-1", Quantity: 1, UnitPrice: usd(t, "10.00")},
	)

	result := uc.Execute(context.Background(), appOrder.PayOrderCommand{OrderID: "order-5"})

	require.True(t, result.Success)
	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, 1, gateway.ChargeCount())
}

func TestPayOrderWithoutPublisher(t *testing.T) {
	repo := &recordingRepo{OrderRepository: memory.NewOrderRepository()}
	gateway := payment.NewFakeGateway()
	uc := appOrder.NewPayOrderUseCase(repo, gateway, nil, nil)
	seedOrder(t, repo, "order-6",
		domain.OrderLine{ProductID: "prod-1", Quantity: 1, UnitPrice: usd(t, "10.00")},
	)

	result := uc.Execute(context.Background(), appOrder.PayOrderCommand{OrderID: "order-6"})
	require.True(t, result.Success)
}
