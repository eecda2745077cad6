package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"ollama-chat-backend/internal/models"
)

type chatService interface {
	SendMessage(ctx context.Context, req models.SendMessageRequest) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}

type ChatHandler struct {
	chatService chatService
}

func NewChatHandler(svc chatService) *ChatHandler {
	return &ChatHandler{chatService: svc}
}

// SendMessage forwards the user's message to the inference backend and
// returns the reply. When chat_id is present the exchange is persisted.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	reply, err := h.chatService.SendMessage(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.SendMessageResponse{Response: reply, ChatID: req.ChatID})
}

func (h *ChatHandler) Models(w http.ResponseWriter, r *http.Request) {
	names, err := h.chatService.ListModels(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ModelsResponse{Models: names})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *models.ValidationError:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", e.Fields, r))
	case *models.NotFoundError:
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", e.Message, r))
	case *models.UnavailableError:
		writeJSON(w, http.StatusServiceUnavailable, errorResp("BACKEND_UNAVAILABLE", e.Message, r))
	case *models.UpstreamError:
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_ERROR", e.Message, r))
	case *models.StorageError:
		log.Printf("ERROR: %v (request %s)", e, r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusInternalServerError, errorResp("STORAGE_ERROR", "Database operation failed", r))
	default:
		log.Printf("ERROR: unexpected: %v (request %s)", err, r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
