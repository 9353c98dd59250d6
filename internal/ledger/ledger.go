package ledger

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/puchkadas/orderbot/internal/domain"
)

// LoyaltyAward is the fixed number of points granted per confirmed order.
const LoyaltyAward = 10

var ErrEmptyCart = errors.New("cart is empty, nothing to confirm")

// Ledger is the append-only record of confirmed orders plus per-user
// loyalty balances. It lives independently of session lifetime: entries are
// never mutated or deleted, balances never go down.
type Ledger struct {
	mu     sync.RWMutex
	orders []domain.Order
	points map[string]int
}

func New() *Ledger {
	return &Ledger{
		points: make(map[string]int),
	}
}

// Confirm snapshots the cart into a new order. The cart is copied, so later
// mutation of the caller's slice cannot reach the ledger.
func (l *Ledger) Confirm(userID string, cart []domain.CartLine) (domain.Order, error) {
	if len(cart) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	items := make([]domain.CartLine, len(cart))
	copy(items, cart)

	order := domain.Order{
		ID:          uuid.New(),
		UserID:      userID,
		Items:       items,
		TotalAmount: domain.CartTotal(items),
		ConfirmedAt: time.Now(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.orders = append(l.orders, order)
	return order, nil
}

// Award adds points to the user's balance and returns the new total.
// Non-positive awards are ignored.
func (l *Ledger) Award(userID string, points int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if points > 0 {
		l.points[userID] += points
	}
	return l.points[userID]
}

func (l *Ledger) Points(userID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.points[userID]
}

// Orders returns the confirmed orders for a user, oldest first.
func (l *Ledger) Orders(userID string) []domain.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var orders []domain.Order
	for _, order := range l.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders
}
