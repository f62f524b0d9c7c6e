package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/domain/entities"
)

const maxChatMessageLength = 1000

// ChatResponder handles one chat turn; it must never fail across its
// boundary.
type ChatResponder interface {
	Respond(ctx context.Context, message string, history []entities.ConversationTurn) entities.ChatResponse
}

// ChatHandler handles chat requests.
type ChatHandler struct {
	service ChatResponder
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(service ChatResponder) *ChatHandler {
	return &ChatHandler{service: service}
}

// HandleChat handles POST /api/chat
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var payload entities.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	payload.Message = strings.TrimSpace(payload.Message)
	if payload.Message == "" {
		respondWithError(w, http.StatusBadRequest, "message is required")
		return
	}
	if len(payload.Message) > maxChatMessageLength {
		respondWithError(w, http.StatusBadRequest, "message is too long")
		return
	}

	turnID := uuid.NewString()
	response := h.service.Respond(r.Context(), payload.Message, payload.History)

	if response.Error != "" {
		log.Error().
			Str("turn_id", turnID).
			Str("error_code", response.Error).
			Msg("chat turn failed")
		respondWithJSON(w, http.StatusInternalServerError, response)
		return
	}

	log.Debug().Str("turn_id", turnID).Int("history_len", len(payload.History)).Msg("chat turn served")
	respondWithJSON(w, http.StatusOK, response)
}
