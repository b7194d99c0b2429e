package order

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is assumed whenever a caller does not name one.
const DefaultCurrency = "USD"

var ErrCurrencyMismatch = errors.New("cannot add money with different currencies")

// Money is an immutable amount in a single currency. Compare with Equal,
// never with ==: the underlying decimal has multiple representations of the
// same value.
type Money struct {
	amount   decimal.Decimal
	currency string
}

func NewMoney(amount decimal.Decimal, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{amount: amount, currency: currency}
}

// MoneyFromString parses a decimal string such as "10.50".
func MoneyFromString(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("money: parse amount %q: %w", amount, err)
	}
	return NewMoney(d, currency), nil
}

func ZeroMoney(currency string) Money {
	return NewMoney(decimal.Zero, currency)
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }

// Add returns the sum of two amounts in the same currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Scale multiplies the amount by a quantity. Callers validate that the
// quantity is non-negative; the aggregate never passes a negative one.
func (m Money) Scale(quantity int) Money {
	return Money{
		amount:   m.amount.Mul(decimal.NewFromInt(int64(quantity))),
		currency: m.currency,
	}
}

func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) IsPositive() bool { return m.amount.IsPositive() }

func (m Money) String() string {
	return m.amount.String() + " " + m.currency
}
