package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/puchkadas/orderbot/internal/domain"
	"github.com/puchkadas/orderbot/internal/ledger"
	"github.com/puchkadas/orderbot/internal/messaging"
)

func (e *Engine) chooseItem(ctx context.Context, sess *domain.Session, token string) ([]messaging.Message, error) {
	item, ok := e.catalog.Item(token)
	if !ok {
		return msgs(invalidSelectionMessage(sess.UserID)), nil
	}

	// A variation left over from a previous selection must not survive an
	// item switch.
	sess.ClearPending()
	sess.PendingItemID = item.ID
	sess.Stage = domain.StageChoosingVariation
	if err := e.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return msgs(variationsMessage(sess.UserID, item)), nil
}

func (e *Engine) chooseVariation(ctx context.Context, sess *domain.Session, token string) ([]messaging.Message, error) {
	name, ok := strings.CutPrefix(token, variationPrefix)
	if !ok {
		return msgs(invalidVariationMessage(sess.UserID)), nil
	}

	item, ok := e.catalog.Item(sess.PendingItemID)
	if !ok {
		return msgs(invalidVariationMessage(sess.UserID)), nil
	}
	variation, ok := item.Variation(name)
	if !ok {
		return msgs(invalidVariationMessage(sess.UserID)), nil
	}

	sess.PendingVariation = variation.Name
	sess.Stage = domain.StageChoosingQuantity
	if err := e.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return msgs(quantityPromptMessage(sess.UserID)), nil
}

func (e *Engine) chooseQuantity(ctx context.Context, sess *domain.Session, token string) ([]messaging.Message, error) {
	qty, ok := parseQuantity(token)
	if !ok {
		return msgs(invalidQuantityMessage(sess.UserID)), nil
	}

	item, ok := e.catalog.Item(sess.PendingItemID)
	var variation domain.Variation
	if ok {
		variation, ok = item.Variation(sess.PendingVariation)
	}
	if !ok {
		// Pending selection no longer resolves against the catalog; send
		// the user back to the menu rather than invent a price.
		sess.ClearPending()
		sess.Stage = domain.StageChoosingItem
		if err := e.sessions.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		return msgs(invalidSelectionMessage(sess.UserID)), nil
	}

	line := domain.CartLine{
		ItemName:  item.Name,
		Variation: variation.Name,
		UnitPrice: variation.Price,
		Quantity:  qty,
	}
	sess.Cart = append(sess.Cart, line)
	sess.ClearPending()
	sess.Stage = domain.StageOrdering
	if err := e.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return msgs(addedMessage(sess.UserID, line)), nil
}

func (e *Engine) checkout(ctx context.Context, sess *domain.Session) ([]messaging.Message, error) {
	if len(sess.Cart) == 0 {
		return msgs(emptyCartMessage(sess.UserID)), nil
	}

	sess.Stage = domain.StageAwaitingConfirmation
	if err := e.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return msgs(checkoutSummaryMessage(sess)), nil
}

func (e *Engine) resolveConfirmation(ctx context.Context, sess *domain.Session, token string) ([]messaging.Message, error) {
	if token != tokenConfirm {
		sess.Stage = domain.StageOrdering
		if err := e.sessions.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		return msgs(cancelledMessage(sess.UserID)), nil
	}

	// AWAITING_CONFIRMATION is only reachable with a non-empty cart, so
	// Confirm failing here is a real programming error, not user input.
	order, err := e.orders.Confirm(sess.UserID, sess.Cart)
	if err != nil {
		return nil, fmt.Errorf("confirm order: %w", err)
	}
	balance := e.orders.Award(sess.UserID, ledger.LoyaltyAward)

	if err := e.sessions.Delete(ctx, sess.UserID); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}

	e.publish(order)
	return msgs(confirmedMessage(sess.UserID, order, balance)), nil
}
