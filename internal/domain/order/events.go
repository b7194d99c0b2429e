package order

import "time"

// OrderCreatedEvent is a domain event emitted when a new order is created.
type OrderCreatedEvent struct {
	OrderID    string
	CustomerID string
	LineCount  int
	Total      Money
	OccurredAt time.Time
}

func (OrderCreatedEvent) EventName() string { return "order.created" }

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		LineCount:  o.LineCount(),
		Total:      o.TotalAmount(),
		OccurredAt: time.Now().UTC(),
	}
}

// OrderPaidEvent is emitted after a paid order has been charged and persisted.
type OrderPaidEvent struct {
	OrderID       string
	CustomerID    string
	TransactionID string
	Amount        Money
	OccurredAt    time.Time
}

func (OrderPaidEvent) EventName() string { return "order.paid" }

func NewOrderPaidEvent(o *Order, transactionID string) OrderPaidEvent {
	return OrderPaidEvent{
		OrderID:       o.ID,
		CustomerID:    o.CustomerID,
		TransactionID: transactionID,
		Amount:        o.TotalAmount(),
		OccurredAt:    time.Now().UTC(),
	}
}
