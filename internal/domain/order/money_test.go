package order_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paylab/orderpay/internal/domain/order"
)

func usd(t *testing.T, amount string) order.Money {
	t.Helper()
	m, err := order.MoneyFromString(amount, "")
	require.NoError(t, err)
	return m
}

func TestMoneyAdd(t *testing.T) {
	sum, err := usd(t, "10.50").Add(usd(t, "5.00"))
	require.NoError(t, err)
	assert.True(t, sum.Equal(usd(t, "15.50")))
	assert.Equal(t, "USD", sum.Currency())
}

func TestMoneyAddIsCommutative(t *testing.T) {
	a, b := usd(t, "1.25"), usd(t, "3.10")

	ab, err := a.Add(b)
	require.NoError(t, err)
	ba, err := b.Add(a)
	require.NoError(t, err)

	assert.True(t, ab.Equal(ba))
}

func TestMoneyAddCurrencyMismatch(t *testing.T) {
	eur := order.NewMoney(decimal.NewFromInt(5), "EUR")

	_, err := usd(t, "10.00").Add(eur)
	assert.ErrorIs(t, err, order.ErrCurrencyMismatch)
}

func TestMoneyScale(t *testing.T) {
	scaled := usd(t, "10.50").Scale(2)
	assert.True(t, scaled.Equal(usd(t, "21.00")))

	zero := usd(t, "10.50").Scale(0)
	assert.True(t, zero.Equal(order.ZeroMoney("USD")))
}

func TestMoneyEqualIgnoresRepresentation(t *testing.T) {
	assert.True(t, usd(t, "10.5").Equal(usd(t, "10.50")))
	assert.False(t, usd(t, "10.5").Equal(usd(t, "10.51")))
}

func TestMoneyDefaultCurrency(t *testing.T) {
	m := order.NewMoney(decimal.NewFromInt(1), "")
	assert.Equal(t, order.DefaultCurrency, m.Currency())
}

func TestMoneyIsPositive(t *testing.T) {
	assert.True(t, usd(t, "0.01").IsPositive())
	assert.False(t, order.ZeroMoney("USD").IsPositive())
	assert.False(t, usd(t, "-1.00").IsPositive())
}
