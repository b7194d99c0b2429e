package order

import (
	"context"

	domain "github.com/paylab/orderpay/internal/domain/order"
	domoutbox "github.com/paylab/orderpay/internal/domain/outbox"
	"github.com/paylab/orderpay/internal/observability"
	"github.com/paylab/orderpay/internal/observability/logctx"
)

const paidWorker = "paid_order_worker"

// PaidOrderWorker consumes order.paid events and feeds the payment metrics.
type PaidOrderWorker struct {
	subscriber domoutbox.Subscriber
	log        observability.Logger
	paid       observability.Counter // orders_paid_total{currency}
}

func NewPaidOrderWorker(subscriber domoutbox.Subscriber, tel observability.Telemetry) *PaidOrderWorker {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	return &PaidOrderWorker{
		subscriber: subscriber,
		log:        tel.Logger().With(observability.F("component", paidWorker)),
		paid:       tel.Counter(observability.MOrdersPaid),
	}
}

func (w *PaidOrderWorker) Start() {
	if w.subscriber == nil {
		return
	}
	w.subscriber.Subscribe(domain.OrderPaidEvent{}.EventName(), w.handleOrderPaid)
}

func (w *PaidOrderWorker) handleOrderPaid(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domain.OrderPaidEvent)
	if !ok {
		return nil
	}

	w.paid.Add(1, observability.L("currency", evt.Amount.Currency()))

	logger := logctx.FromOr(ctx, w.log)
	logger.Info("order_paid",
		observability.F("order_id", evt.OrderID),
		observability.F("transaction_id", evt.TransactionID),
		observability.F("amount", evt.Amount.String()),
	)
	return nil
}
