package assistant_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zezin-crm/client/internal/assistant"
	app_errors "zezin-crm/client/internal/errors"
	"zezin-crm/client/internal/model"
)

func TestNDJSONSource(t *testing.T) {
	t.Run("Fragments then thread id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/assistant/messages", r.URL.Path)
			assert.Equal(t, "application/x-ndjson", r.Header.Get("Accept"))

			w.Header().Set("Content-Type", "application/x-ndjson")
			_, _ = fmt.Fprint(w, "{\"content\":\"Seven \"}\n")
			_, _ = fmt.Fprint(w, "\n")
			_, _ = fmt.Fprint(w, "{\"content\":\"deals\"}\n")
			_, _ = fmt.Fprint(w, "{\"done\":true,\"thread_id\":\"thread-5\"}\n")
			_, _ = fmt.Fprint(w, "{\"content\":\"ignored after terminal\"}\n")
		}))
		defer server.Close()

		events, err := collect(t, assistant.NewNDJSONSource(server.URL, nil), &model.StreamRequest{Message: "Deals?"})

		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, "Seven ", events[0].Content)
		assert.Equal(t, "deals", events[1].Content)
		assert.True(t, events[2].Done)
		assert.Equal(t, "thread-5", events[2].ThreadID)
	})

	t.Run("Corrupt frame ends the stream with an error frame", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = fmt.Fprint(w, "{\"content\":\"Par\"}\n{not json\n{\"content\":\"never\"}\n")
		}))
		defer server.Close()

		events, err := collect(t, assistant.NewNDJSONSource(server.URL, nil), &model.StreamRequest{Message: "Deals?"})

		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.NotEmpty(t, events[1].Error)
	})

	t.Run("Non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		events, err := collect(t, assistant.NewNDJSONSource(server.URL, nil), &model.StreamRequest{Message: "Deals?"})

		assert.Empty(t, events)
		assert.ErrorIs(t, err, app_errors.ErrUpstream)
	})
}
