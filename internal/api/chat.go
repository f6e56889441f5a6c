package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/datachat/datachat/internal/chat"
	"github.com/datachat/datachat/internal/observability"
)

// genericChatError is the only failure message a caller ever sees for a
// pipeline error. Stage detail, the candidate query and engine diagnostics
// stay in the server-side logs.
const genericChatError = "Sorry, we couldn't process your question. Please try rephrasing it."

type chatTurn struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type chatRequest struct {
	Question  string     `json:"question"`
	UserID    string     `json:"user_id"`
	CompanyID string     `json:"company_id"`
	History   []chatTurn `json:"history"`
	SessionID string     `json:"session_id"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

func handleChat(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Chat == nil {
		writeError(w, http.StatusNotImplemented, "chat is not configured")
		return
	}

	var req chatRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid chat request body")
		return
	}
	if req.Question == "" || req.UserID == "" || req.CompanyID == "" {
		writeError(w, http.StatusBadRequest, "parameters 'question', 'user_id' and 'company_id' are required")
		return
	}

	// The session label only correlates log lines; it carries no authority.
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	history := make([]chat.Turn, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, chat.Turn{Sender: turn.Sender, Text: turn.Text})
	}

	answer, err := deps.Chat.Answer(r.Context(), chat.Request{
		CompanyID: req.CompanyID,
		UserID:    req.UserID,
		Question:  req.Question,
		History:   history,
		SessionID: sessionID,
	})
	if err != nil {
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "chat request failed",
				slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
				slog.String("session_id", sessionID),
				slog.Any("error", err),
			)
		}
		writeError(w, http.StatusInternalServerError, genericChatError)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Answer: answer})
}
