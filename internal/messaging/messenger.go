package messaging

import "context"

// Option is one selectable reply button. The id is echoed back verbatim as
// the inbound token when the user taps it.
type Option struct {
	ID    string
	Title string
}

// Message is one outbound reply. Empty Options means a plain text message.
type Message struct {
	To      string
	Body    string
	Options []Option
}

// Sender delivers messages to the user. Delivery is fire-and-forget from
// the engine's point of view: conversation state has already been committed
// by the time Send is called, so a delivery failure never corrupts it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// MaxOptionsPerMessage is the WhatsApp interactive-button limit. Senders
// split larger option sets across several messages instead of failing.
const MaxOptionsPerMessage = 3

// SplitOptions chunks options at the given per-message limit, preserving
// order.
func SplitOptions(options []Option, limit int) [][]Option {
	if limit <= 0 || len(options) == 0 {
		return nil
	}

	var chunks [][]Option
	for len(options) > limit {
		chunks = append(chunks, options[:limit])
		options = options[limit:]
	}
	return append(chunks, options)
}
