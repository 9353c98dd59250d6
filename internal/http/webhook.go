package http

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// EventSink accepts normalized inbound events. The dispatcher satisfies
// this; the handler itself never touches conversation state.
type EventSink interface {
	Dispatch(userID, token string)
}

type WebhookHandler struct {
	sink        EventSink
	verifyToken string
}

func NewWebhookHandler(sink EventSink, verifyToken string) *WebhookHandler {
	return &WebhookHandler{
		sink:        sink,
		verifyToken: verifyToken,
	}
}

// Inbound payload shape of the WhatsApp Cloud API webhook. Payloads with
// no messages (delivery status callbacks and the like) are acknowledged
// and otherwise ignored.
type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []inboundMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type inboundMessage struct {
	From string `json:"from"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text"`
	Interactive *struct {
		ButtonReply *struct {
			ID string `json:"id"`
		} `json:"button_reply"`
	} `json:"interactive"`
}

// Verify answers the Meta webhook verification handshake.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("hub.verify_token") == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, r.URL.Query().Get("hub.challenge"))
		return
	}
	w.WriteHeader(http.StatusForbidden)
}

// Receive parses inbound events and hands them to the dispatcher. The
// response is always immediate; processing happens asynchronously so a
// slow conversation never blocks the webhook.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.From == "" {
					continue
				}
				token, ok := normalizeToken(msg)
				if !ok {
					continue
				}
				h.sink.Dispatch(msg.From, token)
			}
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

// normalizeToken unifies free text and button replies into one token
// string: button ids pass through verbatim, free text is trimmed and
// lower-cased. A typed "menu" and a tapped Menu button are identical to
// the engine.
func normalizeToken(msg inboundMessage) (string, bool) {
	if msg.Interactive != nil && msg.Interactive.ButtonReply != nil && msg.Interactive.ButtonReply.ID != "" {
		return msg.Interactive.ButtonReply.ID, true
	}
	if msg.Text != nil {
		token := strings.ToLower(strings.TrimSpace(msg.Text.Body))
		if token != "" {
			return token, true
		}
	}
	return "", false
}

// NewRouter wires the webhook endpoints with the usual middleware stack.
func NewRouter(h *WebhookHandler, requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/webhook", h.Verify)
	r.Post("/webhook", h.Receive)

	return r
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
