package engine

import (
	"fmt"
	"strings"

	"github.com/puchkadas/orderbot/internal/domain"
	"github.com/puchkadas/orderbot/internal/ledger"
	"github.com/puchkadas/orderbot/internal/messaging"
)

const rupee = "₹"

func (e *Engine) welcome(userID string) messaging.Message {
	return messaging.Message{
		To:   userID,
		Body: "Welcome to Puchka Das!",
		Options: []messaging.Option{
			{ID: tokenMenu, Title: "Menu"},
			{ID: tokenCart, Title: "Cart"},
			{ID: tokenPoints, Title: "Loyalty Points"},
		},
	}
}

// menuMessage lists the catalog as one option per item, in catalog
// insertion order.
func (e *Engine) menuMessage(userID string) messaging.Message {
	items := e.catalog.Items()
	options := make([]messaging.Option, 0, len(items))
	for _, item := range items {
		options = append(options, messaging.Option{ID: item.ID, Title: item.Name})
	}
	return messaging.Message{To: userID, Body: "Select an item:", Options: options}
}

func variationsMessage(userID string, item domain.CatalogItem) messaging.Message {
	options := make([]messaging.Option, 0, len(item.Variations))
	for _, v := range item.Variations {
		options = append(options, messaging.Option{
			ID:    variationPrefix + v.Name,
			Title: fmt.Sprintf("%s - %s%d", v.Name, rupee, v.Price),
		})
	}
	return messaging.Message{
		To:      userID,
		Body:    fmt.Sprintf("Choose a variation for %s:", item.Name),
		Options: options,
	}
}

func quantityPromptMessage(userID string) messaging.Message {
	return messaging.Message{To: userID, Body: "Enter quantity (e.g. 2)."}
}

func addedMessage(userID string, line domain.CartLine) messaging.Message {
	return messaging.Message{
		To:   userID,
		Body: fmt.Sprintf("Added %dx %s (%s) to cart.", line.Quantity, line.ItemName, line.Variation),
		Options: []messaging.Option{
			{ID: tokenCart, Title: "View Cart"},
			{ID: tokenCheckout, Title: "Checkout"},
		},
	}
}

// renderCart shows one line per cart entry with its subtotal, then the cart
// total. An empty cart renders a distinct message with no total at all.
func renderCart(cart []domain.CartLine) string {
	if len(cart) == 0 {
		return "Your cart is empty."
	}

	var b strings.Builder
	b.WriteString("Your cart:\n")
	for _, line := range cart {
		fmt.Fprintf(&b, "- %dx %s (%s) - %s%d\n", line.Quantity, line.ItemName, line.Variation, rupee, line.Subtotal())
	}
	fmt.Fprintf(&b, "Total: %s%d", rupee, domain.CartTotal(cart))
	return b.String()
}

func cartMessage(sess *domain.Session) messaging.Message {
	return messaging.Message{
		To:   sess.UserID,
		Body: renderCart(sess.Cart),
		Options: []messaging.Option{
			{ID: tokenMenu, Title: "Menu"},
			{ID: tokenCheckout, Title: "Checkout"},
			{ID: tokenReset, Title: "Reset"},
		},
	}
}

func checkoutSummaryMessage(sess *domain.Session) messaging.Message {
	return messaging.Message{
		To:   sess.UserID,
		Body: fmt.Sprintf("Order summary:\n%s\nConfirm to place your order.", renderCart(sess.Cart)),
		Options: []messaging.Option{
			{ID: tokenConfirm, Title: "Confirm"},
			{ID: tokenCancel, Title: "Cancel"},
		},
	}
}

func confirmedMessage(userID string, order domain.Order, balance int) messaging.Message {
	return messaging.Message{
		To: userID,
		Body: fmt.Sprintf("Order confirmed! Total %s%d. You earned %d loyalty points, your balance is %d. Thank you!",
			rupee, order.TotalAmount, ledger.LoyaltyAward, balance),
		Options: []messaging.Option{
			{ID: tokenReset, Title: "Start Over"},
		},
	}
}

func cancelledMessage(userID string) messaging.Message {
	return messaging.Message{
		To:   userID,
		Body: "Checkout cancelled. Your cart is unchanged.",
		Options: []messaging.Option{
			{ID: tokenCart, Title: "View Cart"},
			{ID: tokenCheckout, Title: "Checkout"},
		},
	}
}

func emptyCartMessage(userID string) messaging.Message {
	return messaging.Message{
		To:   userID,
		Body: "Your cart is empty. Add something from the menu first.",
		Options: []messaging.Option{
			{ID: tokenMenu, Title: "Menu"},
		},
	}
}

func pointsMessage(userID string, balance int) messaging.Message {
	return messaging.Message{
		To:   userID,
		Body: fmt.Sprintf("You have %d loyalty points.", balance),
		Options: []messaging.Option{
			{ID: tokenMenu, Title: "Menu"},
		},
	}
}

func resetMessage(userID string) messaging.Message {
	return messaging.Message{
		To:   userID,
		Body: "Session reset. You can start a new order.",
		Options: []messaging.Option{
			{ID: tokenMenu, Title: "Menu"},
		},
	}
}

func invalidSelectionMessage(userID string) messaging.Message {
	return messaging.Message{To: userID, Body: "Invalid selection. Choose an item from the menu."}
}

func invalidVariationMessage(userID string) messaging.Message {
	return messaging.Message{To: userID, Body: "Invalid variation. Try again."}
}

func invalidQuantityMessage(userID string) messaging.Message {
	return messaging.Message{To: userID, Body: "Invalid quantity. Enter a number like 2."}
}

func fallbackMessage(userID string) messaging.Message {
	return messaging.Message{To: userID, Body: "Sorry, I didn't understand that. Type menu to see the menu."}
}
