package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

// WhatsAppSender delivers messages through the WhatsApp Cloud API. Delivery
// goes through a circuit breaker so a broken Graph API endpoint sheds load
// quickly instead of tying up workers on timeouts.
type WhatsAppSender struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	url     string
	token   string
}

func NewWhatsAppSender(apiBaseURL, phoneNumberID, token string) *WhatsAppSender {
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "whatsapp",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &WhatsAppSender{
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: breaker,
		url:     fmt.Sprintf("%s/%s/messages", strings.TrimSuffix(apiBaseURL, "/"), phoneNumberID),
		token:   token,
	}
}

type textPayload struct {
	Body string `json:"body"`
}

type buttonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type button struct {
	Type  string      `json:"type"`
	Reply buttonReply `json:"reply"`
}

type bodyPayload struct {
	Text string `json:"text"`
}

type actionPayload struct {
	Buttons []button `json:"buttons"`
}

type interactivePayload struct {
	Type   string        `json:"type"`
	Body   bodyPayload   `json:"body"`
	Action actionPayload `json:"action"`
}

type outboundPayload struct {
	MessagingProduct string              `json:"messaging_product"`
	RecipientType    string              `json:"recipient_type"`
	To               string              `json:"to"`
	Type             string              `json:"type"`
	Text             *textPayload        `json:"text,omitempty"`
	Interactive      *interactivePayload `json:"interactive,omitempty"`
}

func (s *WhatsAppSender) Send(ctx context.Context, msg Message) error {
	if len(msg.Options) == 0 {
		return s.post(ctx, textMessage(msg.To, msg.Body))
	}

	for i, chunk := range SplitOptions(msg.Options, MaxOptionsPerMessage) {
		body := msg.Body
		if i > 0 {
			body = "More options:"
		}
		if err := s.post(ctx, interactiveMessage(msg.To, body, chunk)); err != nil {
			return err
		}
	}
	return nil
}

func (s *WhatsAppSender) post(ctx context.Context, payload outboundPayload) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		data, err := json.Marshal(payload)
		if err != nil {
			return struct{}{}, fmt.Errorf("marshal payload failed: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(data))
		if err != nil {
			return struct{}{}, fmt.Errorf("build request failed: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+s.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("whatsapp api request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return struct{}{}, fmt.Errorf("whatsapp api returned %d: %s", resp.StatusCode, detail)
		}
		return struct{}{}, nil
	})
	return err
}

func textMessage(to, body string) outboundPayload {
	return outboundPayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             &textPayload{Body: body},
	}
}

func interactiveMessage(to, body string, options []Option) outboundPayload {
	buttons := make([]button, len(options))
	for i, opt := range options {
		buttons[i] = button{
			Type:  "reply",
			Reply: buttonReply{ID: opt.ID, Title: opt.Title},
		}
	}

	return outboundPayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive: &interactivePayload{
			Type:   "button",
			Body:   bodyPayload{Text: body},
			Action: actionPayload{Buttons: buttons},
		},
	}
}
