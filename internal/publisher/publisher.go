package publisher

import (
	"context"
	"time"

	"github.com/puchkadas/orderbot/internal/domain"
)

type OrderItem struct {
	Name      string `json:"name"`
	Variation string `json:"variation"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"`
	Subtotal  int    `json:"subtotal"`
}

// OrderConfirmedEvent is the payload written to the orders topic after a
// checkout is confirmed.
type OrderConfirmedEvent struct {
	OrderID     string      `json:"order_id"`
	UserID      string      `json:"user_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount int         `json:"total_amount"`
	Currency    string      `json:"currency"`
	ConfirmedAt time.Time   `json:"confirmed_at"`
}

// FromOrder converts a ledger order into its event form.
func FromOrder(order domain.Order) OrderConfirmedEvent {
	items := make([]OrderItem, len(order.Items))
	for i, line := range order.Items {
		items[i] = OrderItem{
			Name:      line.ItemName,
			Variation: line.Variation,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal(),
		}
	}

	return OrderConfirmedEvent{
		OrderID:     order.ID.String(),
		UserID:      order.UserID,
		Items:       items,
		TotalAmount: order.TotalAmount,
		Currency:    "INR",
		ConfirmedAt: order.ConfirmedAt,
	}
}

// Publisher hands confirmed orders to downstream consumers. Publishing is
// fire-and-forget relative to the conversation: a failure is logged by the
// caller, never surfaced to the user.
type Publisher interface {
	Publish(ctx context.Context, event OrderConfirmedEvent) error
}

// Nop discards events; used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, OrderConfirmedEvent) error {
	return nil
}
