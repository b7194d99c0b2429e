package order

import (
	domainPayment "github.com/paylab/orderpay/internal/domain/payment"
)

type IDGenerator interface {
	NewID() string
}

type PaymentPort interface {
	domainPayment.Gateway
}
