package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	path    string
	auth    string
	payload outboundPayload
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, func() []capturedRequest) {
	t.Helper()

	var mu sync.Mutex
	var captured []capturedRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload outboundPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		mu.Lock()
		captured = append(captured, capturedRequest{
			path:    r.URL.Path,
			auth:    r.Header.Get("Authorization"),
			payload: payload,
		})
		mu.Unlock()

		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	return server, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		out := make([]capturedRequest, len(captured))
		copy(out, captured)
		return out
	}
}

func TestWhatsAppSender_SendText(t *testing.T) {
	server, requests := newCaptureServer(t, http.StatusOK)
	sender := NewWhatsAppSender(server.URL, "314159", "secret-token")

	err := sender.Send(context.Background(), Message{To: "911", Body: "hello"})
	require.NoError(t, err)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/314159/messages", reqs[0].path)
	assert.Equal(t, "Bearer secret-token", reqs[0].auth)

	payload := reqs[0].payload
	assert.Equal(t, "whatsapp", payload.MessagingProduct)
	assert.Equal(t, "individual", payload.RecipientType)
	assert.Equal(t, "911", payload.To)
	assert.Equal(t, "text", payload.Type)
	require.NotNil(t, payload.Text)
	assert.Equal(t, "hello", payload.Text.Body)
	assert.Nil(t, payload.Interactive)
}

func TestWhatsAppSender_SendInteractive(t *testing.T) {
	server, requests := newCaptureServer(t, http.StatusOK)
	sender := NewWhatsAppSender(server.URL, "314159", "secret-token")

	err := sender.Send(context.Background(), Message{
		To:   "911",
		Body: "Select an item:",
		Options: []Option{
			{ID: "pani_puri", Title: "Pani Puri"},
			{ID: "bhel_puri", Title: "Bhel Puri"},
		},
	})
	require.NoError(t, err)

	reqs := requests()
	require.Len(t, reqs, 1)

	payload := reqs[0].payload
	assert.Equal(t, "interactive", payload.Type)
	assert.Nil(t, payload.Text)
	require.NotNil(t, payload.Interactive)
	assert.Equal(t, "button", payload.Interactive.Type)
	assert.Equal(t, "Select an item:", payload.Interactive.Body.Text)
	require.Len(t, payload.Interactive.Action.Buttons, 2)
	assert.Equal(t, "reply", payload.Interactive.Action.Buttons[0].Type)
	assert.Equal(t, "pani_puri", payload.Interactive.Action.Buttons[0].Reply.ID)
	assert.Equal(t, "Pani Puri", payload.Interactive.Action.Buttons[0].Reply.Title)
}

func TestWhatsAppSender_SplitsOptionsAcrossMessages(t *testing.T) {
	server, requests := newCaptureServer(t, http.StatusOK)
	sender := NewWhatsAppSender(server.URL, "314159", "secret-token")

	options := make([]Option, 7)
	for i := range options {
		options[i] = Option{ID: string(rune('a' + i)), Title: "Option"}
	}

	err := sender.Send(context.Background(), Message{To: "911", Body: "Pick one:", Options: options})
	require.NoError(t, err)

	reqs := requests()
	require.Len(t, reqs, 3)
	assert.Len(t, reqs[0].payload.Interactive.Action.Buttons, 3)
	assert.Len(t, reqs[1].payload.Interactive.Action.Buttons, 3)
	assert.Len(t, reqs[2].payload.Interactive.Action.Buttons, 1)

	// Only the first chunk carries the real body.
	assert.Equal(t, "Pick one:", reqs[0].payload.Interactive.Body.Text)
	assert.Equal(t, "More options:", reqs[1].payload.Interactive.Body.Text)
	assert.Equal(t, "More options:", reqs[2].payload.Interactive.Body.Text)

	assert.Equal(t, "a", reqs[0].payload.Interactive.Action.Buttons[0].Reply.ID)
	assert.Equal(t, "g", reqs[2].payload.Interactive.Action.Buttons[0].Reply.ID)
}

func TestWhatsAppSender_ErrorStatus(t *testing.T) {
	server, _ := newCaptureServer(t, http.StatusUnauthorized)
	sender := NewWhatsAppSender(server.URL, "314159", "bad-token")

	err := sender.Send(context.Background(), Message{To: "911", Body: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestWhatsAppSender_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server, _ := newCaptureServer(t, http.StatusInternalServerError)
	sender := NewWhatsAppSender(server.URL, "314159", "secret-token")

	msg := Message{To: "911", Body: "hello"}
	for i := 0; i < 5; i++ {
		require.Error(t, sender.Send(context.Background(), msg))
	}

	err := sender.Send(context.Background(), msg)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestSplitOptions(t *testing.T) {
	options := []Option{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}

	chunks := SplitOptions(options, 3)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 3)
	assert.Len(t, chunks[1], 1)
	assert.Equal(t, "a", chunks[0][0].ID)
	assert.Equal(t, "d", chunks[1][0].ID)

	chunks = SplitOptions(options[:2], 3)
	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0], 2)

	assert.Nil(t, SplitOptions(nil, 3))
	assert.Nil(t, SplitOptions(options, 0))
}
