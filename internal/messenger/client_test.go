package messenger_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagebot/internal/config"
	"pagebot/internal/messenger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newGraphClient(baseURL string, maxRetries int) *messenger.GraphClient {
	return messenger.NewGraphClient(config.MessengerConfig{
		GraphURL:       baseURL,
		PageToken:      "page-token",
		SendTimeout:    5 * time.Second,
		SendMaxRetries: maxRetries,
	}, testLogger())
}

func TestSendDeliversMessage(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/me/messages", r.URL.Path)
		assert.Equal(t, "page-token", r.URL.Query().Get("access_token"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(messenger.SendResult{
			RecipientID: "100",
			MessageID:   "mid.1456970487936:c34767dfe57ee6e339",
		})
	}))
	defer srv.Close()

	client := newGraphClient(srv.URL, 0)

	result, err := client.Send(context.Background(), "100", messenger.Text("hello"))
	require.NoError(t, err)
	assert.Equal(t, "mid.1456970487936:c34767dfe57ee6e339", result.MessageID)
	assert.Equal(t, "100", result.RecipientID)

	recipient, ok := gotBody["recipient"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "100", recipient["id"])
	message, ok := gotBody["message"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hello", message["text"])
}

func TestSendRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(messenger.SendResult{RecipientID: "100", MessageID: "mid.2"})
	}))
	defer srv.Close()

	client := newGraphClient(srv.URL, 3)

	result, err := client.Send(context.Background(), "100", messenger.Text("hello"))
	require.NoError(t, err)
	assert.Equal(t, "mid.2", result.MessageID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSendClientErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "Invalid parameter"}}`))
	}))
	defer srv.Close()

	client := newGraphClient(srv.URL, 3)

	_, err := client.Send(context.Background(), "100", messenger.Text("hello"))
	require.Error(t, err)
	assert.ErrorIs(t, err, messenger.ErrSendFailed)
	assert.Equal(t, int32(1), calls.Load(), "4xx responses must not be retried")
}

func TestSenderAction(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(messenger.SendResult{RecipientID: "100"})
	}))
	defer srv.Close()

	client := newGraphClient(srv.URL, 0)

	require.NoError(t, client.SenderAction(context.Background(), "100", messenger.ActionTypingOn))
	assert.Equal(t, "typing_on", gotBody["sender_action"])
	assert.NotContains(t, gotBody, "message")
}

func TestSendHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newGraphClient(srv.URL, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Send(ctx, "100", messenger.Text("hello"))
	require.Error(t, err)
}
