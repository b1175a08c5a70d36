package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookTransport_Send(t *testing.T) {
	t.Run("bare object response", func(t *testing.T) {
		var received map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"answer":"the reply","citationTitle":"A;;;B","citationContent":"a<|||>b"}`))
		}))
		defer server.Close()

		transport := NewWebhookTransport(server.URL)
		reply, err := transport.Send(context.Background(), &Request{
			SessionID: "sess1",
			ChatID:    "chat1",
			UserID:    "user1",
			GroupID:   "group1",
			Content:   "hello",
			TopK:      5,
		})

		require.NoError(t, err)
		assert.Equal(t, "the reply", reply.Answer)
		assert.Equal(t, "A;;;B", reply.CitationTitle)
		assert.Equal(t, "a<|||>b", reply.CitationContent)

		assert.Equal(t, "sendMessage", received["action"])
		assert.Equal(t, "sess1", received["sessionId"])
		assert.Equal(t, "chat1", received["chatId"])
		assert.Equal(t, "hello", received["chatInput"])
		assert.Equal(t, "group1", received["groupId"])
		assert.Equal(t, float64(5), received["topK"])
	})

	t.Run("single element array response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"answer":"from array"}]`))
		}))
		defer server.Close()

		transport := NewWebhookTransport(server.URL)
		reply, err := transport.Send(context.Background(), &Request{Content: "hi"})

		require.NoError(t, err)
		assert.Equal(t, "from array", reply.Answer)
	})

	t.Run("200 with empty body is malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		transport := NewWebhookTransport(server.URL)
		_, err := transport.Send(context.Background(), &Request{Content: "hi"})

		require.ErrorIs(t, err, ErrMalformedResponse)
		assert.Equal(t, ClassEmptyResponse, Classify(err))
	})

	t.Run("missing answer field is malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		}))
		defer server.Close()

		transport := NewWebhookTransport(server.URL)
		_, err := transport.Send(context.Background(), &Request{Content: "hi"})

		require.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("non-2xx status is rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "workflow failed", http.StatusInternalServerError)
		}))
		defer server.Close()

		transport := NewWebhookTransport(server.URL)
		_, err := transport.Send(context.Background(), &Request{Content: "hi"})

		require.ErrorIs(t, err, ErrTransportRejected)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close() // closed before use

		transport := NewWebhookTransport(server.URL)
		_, err := transport.Send(context.Background(), &Request{Content: "hi"})

		require.ErrorIs(t, err, ErrTransportUnreachable)
	})
}
