package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zezin-crm/client/internal/api"
	"zezin-crm/client/internal/config"
	"zezin-crm/client/internal/model"
)

// fakeAssistant answers every question with three fragments in thread-1.
func fakeAssistant(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/v1/threads", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("GET /api/v1/threads/{threadID}/messages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("DELETE /api/v1/threads/{threadID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/v1/assistant/messages", func(w http.ResponseWriter, r *http.Request) {
		var req model.StreamRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		for _, fragment := range []string{"Three ", "listings ", "match."} {
			_, _ = fmt.Fprintf(w, "data: {\"content\":%q}\n\n", fragment)
			if flusher != nil {
				flusher.Flush()
			}
		}
		_, _ = fmt.Fprint(w, "data: {\"done\":true,\"thread_id\":\"thread-1\"}\n\n")
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testConfig(assistantURL string) *config.Config {
	return &config.Config{
		AppPort:          8000,
		AssistantURL:     assistantURL,
		StreamTransport:  "sse",
		StoreBackend:     "memory",
		SessionKey:       "test",
		SessionTTL:       time.Hour,
		RevealTick:       time.Millisecond,
		RevealStep:       4,
		FollowUpDelay:    0,
		FollowUpMinPairs: 2,
		ThreadListLimit:  50,
		TitleMaxWidth:    40,
		RequestTimeout:   5 * time.Second,
		LogLevel:         "DEBUG",
	}
}

func TestNewApp(t *testing.T) {
	ctx := context.Background()

	t.Run("SQLite store", func(t *testing.T) {
		cfg := testConfig("http://localhost:8080")
		cfg.StoreBackend = "sqlite"
		cfg.DatabasePath = filepath.Join(t.TempDir(), "zezin.db")

		app, err := NewApp(ctx, cfg)
		require.NoError(t, err)
		defer app.Close()

		assert.NotNil(t, app.Session)
		assert.Equal(t, ":8000", app.Server.Addr)
		require.NoError(t, app.Store.Set(ctx, "thread-3"))
		stored, err := app.Store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "thread-3", stored)
	})

	t.Run("Memory store and websocket transport", func(t *testing.T) {
		cfg := testConfig("http://localhost:8080")
		cfg.StreamTransport = "websocket"

		app, err := NewApp(ctx, cfg)
		require.NoError(t, err)
		defer app.Close()

		assert.NotNil(t, app.Store)
		assert.NotNil(t, newStreamSource(cfg))
	})

	t.Run("Unreachable redis fails", func(t *testing.T) {
		cfg := testConfig("http://localhost:8080")
		cfg.StoreBackend = "redis"
		cfg.RedisAddr = "127.0.0.1:1"

		app, err := NewApp(ctx, cfg)
		assert.Error(t, err)
		assert.Nil(t, app)
	})
}

func TestAsk(t *testing.T) {
	backend := fakeAssistant(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	app, err := NewApp(ctx, testConfig(backend.URL))
	require.NoError(t, err)
	defer app.Close()
	require.NoError(t, app.Session.Start(ctx))

	var out bytes.Buffer
	require.NoError(t, ask(ctx, app.Session, "Which listings have a pool?", &out))

	assert.Equal(t, "Three listings match.\nthread: thread-1\n", out.String())
	stored, err := app.Store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "thread-1", stored)
}

func TestServe(t *testing.T) {
	backend := fakeAssistant(t)
	ctx := context.Background()

	app, err := NewApp(ctx, testConfig(backend.URL))
	require.NoError(t, err)
	defer app.Close()
	require.NoError(t, app.Session.Start(ctx))

	server := httptest.NewServer(app.Server.Handler)
	defer server.Close()

	getSession := func() api.SessionResponse {
		resp, err := http.Get(server.URL + "/api/v1/session")
		require.NoError(t, err)
		defer resp.Body.Close()
		var snap api.SessionResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
		return snap
	}

	resp, err := http.Post(server.URL+"/api/v1/session/messages", "application/json", strings.NewReader(`{"message":"Which listings have a pool?"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		snap := getSession()
		return snap.State == model.StateActiveThread && !snap.Streaming && snap.Cursor == nil
	}, 5*time.Second, 5*time.Millisecond)

	snap := getSession()
	assert.Equal(t, "thread-1", snap.ActiveThreadID)
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, "Three listings match.", snap.Messages[1].Content)
	require.Len(t, snap.Threads, 1)
	assert.Equal(t, "Which listings have a pool?", snap.Threads[0].Title)

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/v1/threads/thread-1", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	snap = getSession()
	assert.Equal(t, model.StateNewConversation, snap.State)
	assert.Empty(t, snap.Threads)
}

func TestWaitForAssistant(t *testing.T) {
	t.Run("Ready backend", func(t *testing.T) {
		backend := fakeAssistant(t)
		assert.NoError(t, waitForAssistant(context.Background(), backend.URL))
	})

	t.Run("Gives up when the context ends", func(t *testing.T) {
		down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer down.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, waitForAssistant(ctx, down.URL), context.DeadlineExceeded)
	})
}
