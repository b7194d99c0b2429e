package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("order: not found")

	// Invariant violations. Messages surface verbatim through the use case
	// result, so they stay free of package prefixes.
	ErrOrderAlreadyPaid = errors.New("order already paid")
	ErrDuplicateProduct = errors.New("duplicate product")
	ErrEmptyOrder       = errors.New("cannot pay empty order")
	ErrAlreadyPaid      = errors.New("already paid")
	ErrTotalNotPositive = errors.New("total must be positive")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	// StatusCancelled is reserved; no transition targets it yet.
	StatusCancelled Status = "cancelled"
)

// OrderLine is one priced product position within an order. Lines are
// created only through Order.AddLine and never mutated afterwards.
type OrderLine struct {
	ProductID string
	Quantity  int
	UnitPrice Money
}

// Total is computed on demand so it can never go stale.
func (l OrderLine) Total() Money {
	return l.UnitPrice.Scale(l.Quantity)
}

// Order is the aggregate root owning its lines and status. All payment
// invariants are enforced here; I/O stays in the application layer.
type Order struct {
	ID         string
	CustomerID string
	lines      []OrderLine
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func New(id, customerID string) *Order {
	now := time.Now().UTC()
	return &Order{
		ID:         id,
		CustomerID: customerID,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AddLine appends a new product line while the order is still pending.
// Each product may appear at most once, and all lines share one currency.
func (o *Order) AddLine(productID string, quantity int, price Money) error {
	if o.Status == StatusPaid {
		return ErrOrderAlreadyPaid
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	for _, line := range o.lines {
		if line.ProductID == productID {
			return ErrDuplicateProduct
		}
	}
	if len(o.lines) > 0 && price.Currency() != o.lines[0].UnitPrice.Currency() {
		return ErrCurrencyMismatch
	}

	o.lines = append(o.lines, OrderLine{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: price,
	})
	o.touch()
	return nil
}

// TotalAmount sums all line totals. An order without lines totals to
// zero money in the default currency. Read-only.
func (o *Order) TotalAmount() Money {
	if len(o.lines) == 0 {
		return ZeroMoney(DefaultCurrency)
	}
	total := ZeroMoney(o.lines[0].UnitPrice.Currency())
	for _, line := range o.lines {
		// AddLine enforces a single currency per order, so Add cannot fail.
		total, _ = total.Add(line.Total())
	}
	return total
}

// Pay transitions the order to paid. Preconditions are checked in a fixed
// order and the first violation wins. Pay never talks to a gateway; a second
// call fails cleanly without reverting the paid status.
func (o *Order) Pay() error {
	if len(o.lines) == 0 {
		return ErrEmptyOrder
	}
	if o.Status == StatusPaid {
		return ErrAlreadyPaid
	}
	if !o.TotalAmount().IsPositive() {
		return ErrTotalNotPositive
	}

	o.Status = StatusPaid
	o.touch()
	return nil
}

// Lines returns a copy; callers cannot reach the aggregate's own slice.
func (o *Order) Lines() []OrderLine {
	out := make([]OrderLine, len(o.lines))
	copy(out, o.lines)
	return out
}

func (o *Order) LineCount() int { return len(o.lines) }

// Clone returns a deep copy for repository snapshots.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.lines = make([]OrderLine, len(o.lines))
	copy(clone.lines, o.lines)
	return &clone
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
