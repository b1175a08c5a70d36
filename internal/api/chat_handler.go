package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chatdesk/internal/delivery"
	"chatdesk/internal/interfaces"
	"chatdesk/internal/service"
)

// ChatHandler handles HTTP requests for sessions and message delivery.
type ChatHandler struct {
	service interfaces.ChatService
}

func NewChatHandler(svc interfaces.ChatService) *ChatHandler {
	return &ChatHandler{service: svc}
}

// HandleCreateSession godoc
// @Summary      Open a session
// @Description  Creates a new conversation for a tenant group.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        session  body      service.CreateSessionRequest  true  "Session to open"
// @Success      201      {object}  model.Session
// @Failure      400      {object}  ErrorResponse
// @Router       /v1/sessions [post]
func (h *ChatHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload"})
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	session, err := h.service.CreateSession(r.Context(), &req)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, session)
}

// HandleListSessions godoc
// @Summary      List sessions for a group
// @Description  Returns the group's conversations, most recently updated first.
// @Tags         Sessions
// @Produce      json
// @Param        groupID  path      string  true  "Tenant group identifier"
// @Success      200      {array}   model.Session
// @Failure      500      {object}  ErrorResponse
// @Router       /v1/groups/{groupID}/sessions [get]
func (h *ChatHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	sessions, err := h.service.ListSessions(r.Context(), groupID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sessions)
}

// HandleGetSession godoc
// @Summary      Get a session with its messages
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session identifier"
// @Success      200        {object}  model.FullSession
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID} [get]
func (h *ChatHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	fullSession, err := h.service.GetFullSession(r.Context(), sessionID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, fullSession)
}

// HandleUpdateSessionTitle godoc
// @Summary      Rename a session
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string              true  "Session identifier"
// @Param        title      body      UpdateTitleRequest  true  "New title"
// @Success      200        {object}  StatusResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/title [put]
func (h *ChatHandler) HandleUpdateSessionTitle(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	var req UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload"})
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	if err := h.service.UpdateSessionTitle(r.Context(), sessionID, req.Title); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleCloseSession godoc
// @Summary      Close a session
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session identifier"
// @Success      200        {object}  StatusResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/close [post]
func (h *ChatHandler) HandleCloseSession(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.CloseSession)
}

// HandleReopenSession godoc
// @Summary      Reopen a closed or archived session
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session identifier"
// @Success      200        {object}  StatusResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/reopen [post]
func (h *ChatHandler) HandleReopenSession(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.ReopenSession)
}

// HandleArchiveSession godoc
// @Summary      Archive a session
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session identifier"
// @Success      200        {object}  StatusResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID}/archive [post]
func (h *ChatHandler) HandleArchiveSession(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.ArchiveSession)
}

// HandleDeleteSession godoc
// @Summary      Delete a session
// @Description  Permanently removes a session and all its messages and citations.
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session identifier"
// @Success      200        {object}  StatusResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /v1/sessions/{sessionID} [delete]
func (h *ChatHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleSendMessage godoc
// @Summary      Send a message
// @Description  Delivers a user message through the tiered pipeline and streams the reply as server-sent events.
// @Tags         Messages
// @Accept       json
// @Produce      text/event-stream
// @Param        sessionID  path  string                      true  "Session identifier, or 'new' to open one"
// @Param        message    body  service.SendMessageRequest  true  "Message to deliver"
// @Success      200        {object}  delivery.Event  "Stream of delivery events"
// @Failure      400        {object}  ErrorResponse   "Sent as a stream error event"
// @Router       /v1/sessions/{sessionID}/messages [post]
func (h *ChatHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var req service.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Error decoding send message request", "error", err)
		sendStreamError(w, "Invalid request body")
		return
	}
	if sessionID := chi.URLParam(r, "sessionID"); sessionID != "" && sessionID != "new" {
		req.SessionID = sessionID
	}
	if err := validateRequest(&req); err != nil {
		sendStreamError(w, err.Error())
		return
	}

	streamChan := make(chan delivery.Event)
	go h.service.HandleSendMessage(r.Context(), &req, streamChan)

	for event := range streamChan {
		if r.Context().Err() != nil {
			slog.Info("Client disconnected during delivery stream.", "session_id", req.SessionID)
			break
		}
		jsonData, err := json.Marshal(event)
		if err != nil {
			slog.Error("Failed to marshal delivery event", "error", err)
			continue
		}
		if _, err := w.Write([]byte("data: " + string(jsonData) + "\n\n")); err != nil {
			slog.Warn("Failed to write stream chunk", "error", err)
			break
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

// setStatus factors the shared shape of the close/reopen/archive endpoints.
func (h *ChatHandler) setStatus(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, sessionID string) error) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := op(r.Context(), sessionID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}
