package engine

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/puchkadas/orderbot/internal/catalog"
	"github.com/puchkadas/orderbot/internal/domain"
	"github.com/puchkadas/orderbot/internal/ledger"
	"github.com/puchkadas/orderbot/internal/messaging"
	"github.com/puchkadas/orderbot/internal/publisher"
	"github.com/puchkadas/orderbot/internal/session"
)

// Tokens recognized regardless of stage. A tapped button and typed free
// text with the same literal value produce the same transition; the webhook
// adapter normalizes both into one token string before events reach here.
const (
	tokenReset    = "reset"
	tokenMenu     = "menu"
	tokenCart     = "cart"
	tokenCheckout = "checkout"
	tokenPoints   = "points"
	tokenConfirm  = "confirm"
	tokenCancel   = "cancel"

	variationPrefix = "variation_"
)

// Engine advances a user's conversation one inbound token at a time.
// Session mutations are committed to the store before any reply is sent,
// so a delivery failure never corrupts conversation state.
type Engine struct {
	catalog  catalog.Catalog
	sessions session.Store
	orders   *ledger.Ledger
	sender   messaging.Sender
	events   publisher.Publisher

	publishWG sync.WaitGroup
}

func New(cat catalog.Catalog, sessions session.Store, orders *ledger.Ledger, sender messaging.Sender, events publisher.Publisher) *Engine {
	if events == nil {
		events = publisher.Nop{}
	}
	return &Engine{
		catalog:  cat,
		sessions: sessions,
		orders:   orders,
		sender:   sender,
		events:   events,
	}
}

// Handle processes one inbound event. The first event from an unseen user
// creates the session and sends the welcome message; the token itself is
// consumed by the greeting.
func (e *Engine) Handle(ctx context.Context, userID, token string) error {
	sess, created, err := e.sessions.GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if created {
		e.deliver(ctx, e.welcome(userID))
		return nil
	}

	replies, err := e.step(ctx, sess, token)
	if err != nil {
		return err
	}

	e.deliver(ctx, replies...)
	return nil
}

// step applies one token against the session and returns the replies to
// send. Precedence: reset and menu first, then the other any-stage tokens,
// then the current stage's pattern, then the fallback with state unchanged.
func (e *Engine) step(ctx context.Context, sess *domain.Session, token string) ([]messaging.Message, error) {
	switch token {
	case tokenReset:
		if err := e.sessions.Delete(ctx, sess.UserID); err != nil {
			return nil, fmt.Errorf("delete session: %w", err)
		}
		return msgs(resetMessage(sess.UserID)), nil

	case tokenMenu:
		sess.Stage = domain.StageChoosingItem
		if err := e.sessions.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		return msgs(e.menuMessage(sess.UserID)), nil

	case tokenCart:
		return msgs(cartMessage(sess)), nil

	case tokenCheckout:
		return e.checkout(ctx, sess)

	case tokenPoints:
		return msgs(pointsMessage(sess.UserID, e.orders.Points(sess.UserID))), nil
	}

	switch sess.Stage {
	case domain.StageChoosingItem:
		return e.chooseItem(ctx, sess, token)
	case domain.StageChoosingVariation:
		return e.chooseVariation(ctx, sess, token)
	case domain.StageChoosingQuantity:
		return e.chooseQuantity(ctx, sess, token)
	case domain.StageAwaitingConfirmation:
		return e.resolveConfirmation(ctx, sess, token)
	default:
		// GREETING and ORDERING react only to the tokens above.
		return msgs(fallbackMessage(sess.UserID)), nil
	}
}

func (e *Engine) deliver(ctx context.Context, replies ...messaging.Message) {
	for _, msg := range replies {
		if err := e.sender.Send(ctx, msg); err != nil {
			log.Printf("send message to %s error: %v", msg.To, err)
		}
	}
}

func (e *Engine) publish(order domain.Order) {
	e.publishWG.Add(1)
	go func() {
		defer e.publishWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.events.Publish(ctx, publisher.FromOrder(order)); err != nil {
			log.Printf("publish order event error: %v", err)
		}
	}()
}

// Drain waits for in-flight event publishes to finish, so shutdown can
// close the publisher without dropping a just-confirmed order.
func (e *Engine) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.publishWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// parseQuantity accepts a token as a quantity iff it parses fully as a
// base-10 integer of at least 1; partial-numeric strings like "2x" are
// rejected.
func parseQuantity(token string) (int, bool) {
	qty, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil || qty < 1 {
		return 0, false
	}
	return qty, true
}

func msgs(m ...messaging.Message) []messaging.Message {
	return m
}
