package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	app_errors "zezin-crm/client/internal/errors"
	"zezin-crm/client/internal/interfaces"
	"zezin-crm/client/internal/model"
)

// SessionHandler exposes the conversation session over HTTP.
type SessionHandler struct {
	service interfaces.SessionService
}

func NewSessionHandler(svc interfaces.SessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// GetSession godoc
// @Summary      Get the session
// @Description  Returns the current view: state, active thread, messages, thread list and reveal cursor.
// @Tags         Session
// @Produce      json
// @Success      200  {object}  SessionResponse
// @Router       /v1/session [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, newSessionResponse(h.service.View()))
}

// StreamSession godoc
// @Summary      Watch the session
// @Description  Streams a session snapshot every time the view changes, including every reveal tick. This is a streaming endpoint.
// @Tags         Session
// @Produce      text/event-stream
// @Success      200  {object}  SessionResponse  "Stream of session snapshots"
// @Router       /v1/session/events [get]
func (h *SessionHandler) StreamSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if _, ok := w.(http.Flusher); !ok {
		sendStreamError(w, "Streaming is not supported by this connection")
		return
	}

	changes, unsubscribe := h.service.Subscribe()
	defer unsubscribe()

	if err := writeStreamEvent(w, newSessionResponse(h.service.View())); err != nil {
		slog.Warn("Could not write initial session snapshot", "error", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			slog.Info("Session watcher disconnected.")
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			if err := writeStreamEvent(w, newSessionResponse(h.service.View())); err != nil {
				slog.Warn("Could not write to session stream, client likely disconnected.", "error", err)
				return
			}
		}
	}
}

// SendMessage godoc
// @Summary      Ask the assistant
// @Description  Appends the question to the active view and starts streaming the answer. Watch /v1/session/events for progress.
// @Tags         Session
// @Accept       json
// @Produce      json
// @Param        messageRequest  body      SendMessageRequest  true  "Question"
// @Success      202             {object}  StatusResponse
// @Failure      400             {object}  ErrorResponse
// @Failure      409             {object}  ErrorResponse  "An answer is already streaming or the thread is still loading"
// @Router       /v1/session/messages [post]
func (h *SessionHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.service.Send(r.Context(), req.Message); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, StatusResponse{Status: "accepted"})
}

// NewConversation godoc
// @Summary      Start a new conversation
// @Description  Clears the active view and forgets the remembered thread.
// @Tags         Session
// @Produce      json
// @Success      200  {object}  SessionResponse
// @Router       /v1/session/new [post]
func (h *SessionHandler) NewConversation(w http.ResponseWriter, r *http.Request) {
	h.service.NewConversation(r.Context())
	respondWithJSON(w, http.StatusOK, newSessionResponse(h.service.View()))
}

// RetryLoad godoc
// @Summary      Retry loading the thread
// @Description  Repeats the message fetch of a thread whose load failed.
// @Tags         Session
// @Produce      json
// @Success      200  {object}  SessionResponse
// @Failure      409  {object}  ErrorResponse  "No failed thread load to retry"
// @Failure      502  {object}  ErrorResponse
// @Router       /v1/session/retry [post]
func (h *SessionHandler) RetryLoad(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RetryLoad(r.Context()); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newSessionResponse(h.service.View()))
}

// ListThreads godoc
// @Summary      List threads
// @Description  Returns the local thread list, most recent first. With q, returns fuzzy title matches, best first.
// @Tags         Threads
// @Produce      json
// @Param        q    query     string  false  "Title search"
// @Success      200  {array}   model.Thread
// @Router       /v1/threads [get]
func (h *SessionHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.SearchThreads(r.URL.Query().Get("q")))
}

// RefreshThreads godoc
// @Summary      Refresh threads
// @Description  Reconciles the local thread list with the thread directory.
// @Tags         Threads
// @Produce      json
// @Success      200  {array}   model.Thread
// @Failure      502  {object}  ErrorResponse
// @Router       /v1/threads/refresh [post]
func (h *SessionHandler) RefreshThreads(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RefreshThreads(r.Context()); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, threadsOf(h.service.View()))
}

// SelectThread godoc
// @Summary      Open a thread
// @Description  Makes the thread active and loads its messages.
// @Tags         Threads
// @Produce      json
// @Param        threadID  path      string  true  "Thread ID"
// @Success      200       {object}  SessionResponse
// @Failure      404       {object}  ErrorResponse
// @Failure      502       {object}  ErrorResponse
// @Router       /v1/threads/{threadID}/select [post]
func (h *SessionHandler) SelectThread(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	if err := h.service.SelectThread(r.Context(), threadID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newSessionResponse(h.service.View()))
}

// UpdateThreadTitle godoc
// @Summary      Rename a thread
// @Description  Renames the thread locally and on the thread directory.
// @Tags         Threads
// @Accept       json
// @Produce      json
// @Param        threadID      path      string              true  "Thread ID"
// @Param        titleRequest  body      UpdateTitleRequest  true  "New title"
// @Success      200           {object}  StatusResponse
// @Failure      400           {object}  ErrorResponse
// @Failure      404           {object}  ErrorResponse
// @Failure      502           {object}  ErrorResponse
// @Router       /v1/threads/{threadID}/title [put]
func (h *SessionHandler) UpdateThreadTitle(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")

	var req UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.service.RenameThread(r.Context(), threadID, req.Title); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// DeleteThread godoc
// @Summary      Delete a thread
// @Description  Deletes the thread on the directory. Deleting the active thread starts a new conversation.
// @Tags         Threads
// @Produce      json
// @Param        threadID  path      string  true  "Thread ID"
// @Success      200       {object}  StatusResponse
// @Failure      502       {object}  ErrorResponse
// @Router       /v1/threads/{threadID} [delete]
func (h *SessionHandler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	if err := h.service.DeleteThread(r.Context(), threadID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func threadsOf(view model.SessionView) []model.Thread {
	if view.Threads == nil {
		return []model.Thread{}
	}
	return view.Threads
}
