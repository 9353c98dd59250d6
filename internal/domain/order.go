package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is one confirmed checkout: an immutable snapshot of the cart at
// confirmation time.
type Order struct {
	ID          uuid.UUID
	UserID      string
	Items       []CartLine
	TotalAmount int
	ConfirmedAt time.Time
}
