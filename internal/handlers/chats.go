package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ollama-chat-backend/internal/models"
)

type conversationService interface {
	CreateChat(ctx context.Context, req models.CreateChatRequest) (*models.Chat, error)
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
	ListChats(ctx context.Context) ([]models.Chat, error)
	DeleteChat(ctx context.Context, chatID string) error
	AddMessage(ctx context.Context, chatID string, req models.AddMessageRequest) (*models.Message, error)
}

// ChatsHandler exposes conversation CRUD; it delegates to the store with no
// logic beyond decoding and status mapping.
type ChatsHandler struct {
	conversations conversationService
}

func NewChatsHandler(svc conversationService) *ChatsHandler {
	return &ChatsHandler{conversations: svc}
}

func (h *ChatsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	chat, err := h.conversations.CreateChat(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, chat)
}

func (h *ChatsHandler) List(w http.ResponseWriter, r *http.Request) {
	chats, err := h.conversations.ListChats(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"chats": chats})
}

func (h *ChatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	chat, err := h.conversations.GetChat(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if chat == nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Chat not found", r))
		return
	}

	writeJSON(w, http.StatusOK, chat)
}

func (h *ChatsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.conversations.DeleteChat(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}

	// Deleting an unknown chat is a no-op, so this always succeeds.
	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat deleted"})
}

func (h *ChatsHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	var req models.AddMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	msg, err := h.conversations.AddMessage(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}
