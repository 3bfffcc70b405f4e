package api_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"zezin-crm/client/internal/api"
	app_errors "zezin-crm/client/internal/errors"
	"zezin-crm/client/internal/interfaces/mocks"
	"zezin-crm/client/internal/model"
)

func setupRouter(t *testing.T) (http.Handler, *mocks.MockSessionService) {
	mockSvc := mocks.NewMockSessionService(t)
	router := api.NewRouter(api.NewSessionHandler(mockSvc))
	return router, mockSvc
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func streamingView() model.SessionView {
	return model.SessionView{
		State:          model.StateActiveThread,
		ActiveThreadID: "thread-7",
		InFlight: []model.Message{
			{ID: "u1", Role: model.RoleUser, Content: "How many open deals?"},
			{ID: "a1", Role: model.RoleAssistant, Content: "There are 12 open deals."},
		},
		Cursor:    &model.StreamCursor{TargetMessageID: "a1", TrueLength: 24, VisibleLength: 9},
		Streaming: true,
	}
}

func TestSessionHandler_GetSession(t *testing.T) {
	router, mockSvc := setupRouter(t)
	mockSvc.On("View").Return(streamingView())

	rr := serve(router, http.MethodGet, "/api/v1/session", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp api.SessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, model.StateActiveThread, resp.State)
	assert.Equal(t, "thread-7", resp.ActiveThreadID)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "There are", resp.Messages[1].Content, "streaming message is clipped to its revealed length")
}

func TestSessionHandler_SendMessage(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, mockSvc := setupRouter(t)
		mockSvc.On("Send", mock.Anything, "How many open deals?").Return(nil).Once()

		rr := serve(router, http.MethodPost, "/api/v1/session/messages", `{"message":"How many open deals?"}`)

		assert.Equal(t, http.StatusAccepted, rr.Code)
		assert.JSONEq(t, `{"status":"accepted"}`, rr.Body.String())
	})

	t.Run("Failure - Invalid JSON", func(t *testing.T) {
		router, _ := setupRouter(t)
		rr := serve(router, http.MethodPost, "/api/v1/session/messages", `{"message":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Failure - Empty message", func(t *testing.T) {
		router, _ := setupRouter(t)
		rr := serve(router, http.MethodPost, "/api/v1/session/messages", `{"message":""}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "'message' failed on the 'required' tag")
	})

	t.Run("Failure - Answer already streaming", func(t *testing.T) {
		router, mockSvc := setupRouter(t)
		mockSvc.On("Send", mock.Anything, "again").Return(app_errors.ErrStreamInProgress).Once()

		rr := serve(router, http.MethodPost, "/api/v1/session/messages", `{"message":"again"}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), "still streaming")
	})
}

func TestSessionHandler_NewConversationAndRetry(t *testing.T) {
	t.Run("New conversation", func(t *testing.T) {
		router, mockSvc := setupRouter(t)
		mockSvc.On("NewConversation", mock.Anything).Return().Once()
		mockSvc.On("View").Return(model.SessionView{State: model.StateNewConversation}).Once()

		rr := serve(router, http.MethodPost, "/api/v1/session/new", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"state":"new_conversation"`)
	})

	t.Run("Retry with nothing to load", func(t *testing.T) {
		router, mockSvc := setupRouter(t)
		mockSvc.On("RetryLoad", mock.Anything).Return(fmt.Errorf("%w: no conversation is waiting to load", app_errors.ErrConflict)).Once()

		rr := serve(router, http.MethodPost, "/api/v1/session/retry", "")

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestSessionHandler_Threads(t *testing.T) {
	threads := []model.Thread{{ID: "t1", Title: "Pipeline review", MessageCount: 2}}

	t.Run("Search", func(t *testing.T) {
		router, mockSvc := setupRouter(t)
		mockSvc.On("SearchThreads", "pipe").Return(threads).Once()

		rr := serve(router, http.MethodGet, "/api/v1/threads?q=pipe", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp []model.Thread
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, threads[0].ID, resp[0].ID)
	})

	t.Run("Refresh", func(t *testing.T) {
		router, mockSvc := setupRouter(t)
		mockSvc.On("RefreshThreads", mock.Anything).Return(nil).Once()
		mockSvc.On("View").Return(model.SessionView{Threads: threads}).Once()

		rr := serve(router, http.MethodPost, "/api/v1/threads/refresh", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Pipeline review")
	})

	t.Run("Refresh - backend down", func(t *testing.T) {
		router, mockSvc := setupRouter(t)
		mockSvc.On("RefreshThreads", mock.Anything).Return(fmt.Errorf("%w: status 503", app_errors.ErrUpstream)).Once()

		rr := serve(router, http.MethodPost, "/api/v1/threads/refresh", "")

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}

func TestSessionHandler_SelectThread(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, mockSvc := setupRouter(t)
		mockSvc.On("SelectThread", mock.Anything, "thread-42").Return(nil).Once()
		mockSvc.On("View").Return(model.SessionView{State: model.StateActiveThread, ActiveThreadID: "thread-42"}).Once()

		rr := serve(router, http.MethodPost, "/api/v1/threads/thread-42/select", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"active_thread_id":"thread-42"`)
	})

	t.Run("Failure - Deleted thread", func(t *testing.T) {
		router, mockSvc := setupRouter(t)
		mockSvc.On("SelectThread", mock.Anything, "gone").Return(app_errors.ErrNotFound).Once()

		rr := serve(router, http.MethodPost, "/api/v1/threads/gone/select", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Failure - Load failed", func(t *testing.T) {
		router, mockSvc := setupRouter(t)
		mockSvc.On("SelectThread", mock.Anything, "thread-42").Return(fmt.Errorf("could not load thread: %w", app_errors.ErrUpstream)).Once()

		rr := serve(router, http.MethodPost, "/api/v1/threads/thread-42/select", "")

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}

func TestSessionHandler_UpdateThreadTitle(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, mockSvc := setupRouter(t)
		mockSvc.On("RenameThread", mock.Anything, "t1", "Q3 listings").Return(nil).Once()

		rr := serve(router, http.MethodPut, "/api/v1/threads/t1/title", `{"title":"Q3 listings"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - Missing title", func(t *testing.T) {
		router, _ := setupRouter(t)
		rr := serve(router, http.MethodPut, "/api/v1/threads/t1/title", `{}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Failure - Title too long", func(t *testing.T) {
		router, _ := setupRouter(t)
		body := fmt.Sprintf(`{"title":%q}`, strings.Repeat("x", 101))
		rr := serve(router, http.MethodPut, "/api/v1/threads/t1/title", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "'title' failed on the 'max=100' tag")
	})
}

func TestSessionHandler_DeleteThread(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, mockSvc := setupRouter(t)
		mockSvc.On("DeleteThread", mock.Anything, "t1").Return(nil).Once()

		rr := serve(router, http.MethodDelete, "/api/v1/threads/t1", "")

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - Backend error", func(t *testing.T) {
		router, mockSvc := setupRouter(t)
		mockSvc.On("DeleteThread", mock.Anything, "t1").Return(fmt.Errorf("%w: status 500", app_errors.ErrUpstream)).Once()

		rr := serve(router, http.MethodDelete, "/api/v1/threads/t1", "")

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})
}

func TestSessionHandler_StreamSession(t *testing.T) {
	router, mockSvc := setupRouter(t)
	changes := make(chan struct{}, 1)
	unsubscribed := make(chan struct{})
	mockSvc.On("Subscribe").Return((<-chan struct{})(changes), func() { close(unsubscribed) }).Once()
	mockSvc.On("View").Return(model.SessionView{State: model.StateNewConversation}).Once()
	mockSvc.On("View").Return(streamingView())

	srv := httptest.NewServer(router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/session/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	next := func() api.SessionResponse {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if data, ok := strings.CutPrefix(strings.TrimSpace(line), "data: "); ok {
				var snap api.SessionResponse
				require.NoError(t, json.Unmarshal([]byte(data), &snap))
				return snap
			}
		}
	}

	assert.Equal(t, model.StateNewConversation, next().State)

	changes <- struct{}{}
	snap := next()
	assert.True(t, snap.Streaming)
	assert.Equal(t, "There are", snap.Messages[1].Content)

	cancel()
	select {
	case <-unsubscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not unsubscribe after disconnect")
	}
}
