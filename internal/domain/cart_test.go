package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartLineSubtotal(t *testing.T) {
	line := CartLine{ItemName: "Pani Puri", Variation: "small", UnitPrice: 20, Quantity: 3}
	assert.Equal(t, 60, line.Subtotal())
}

func TestCartTotal(t *testing.T) {
	cart := []CartLine{
		{UnitPrice: 20, Quantity: 3},
		{UnitPrice: 35, Quantity: 2},
	}
	assert.Equal(t, 130, CartTotal(cart))
	assert.Equal(t, 0, CartTotal(nil))
}

func TestNewSession(t *testing.T) {
	sess := NewSession("911")
	assert.Equal(t, "911", sess.UserID)
	assert.Equal(t, StageGreeting, sess.Stage)
	assert.Empty(t, sess.Cart)
	assert.False(t, sess.CreatedAt.IsZero())
}

func TestSessionClearPending(t *testing.T) {
	sess := NewSession("911")
	sess.PendingItemID = "pani_puri"
	sess.PendingVariation = "small"

	sess.ClearPending()

	assert.Empty(t, sess.PendingItemID)
	assert.Empty(t, sess.PendingVariation)
}
