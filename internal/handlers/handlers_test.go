package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ollama-chat-backend/internal/handlers"
	"ollama-chat-backend/internal/models"
	"ollama-chat-backend/internal/router"
)

// stubService backs both handler interfaces with canned results.
type stubService struct {
	reply      string
	sendErr    error
	chat       *models.Chat
	chats      []models.Chat
	deleted    []string
	addMsgErr  error
	modelsList []string
}

func (s *stubService) SendMessage(_ context.Context, req models.SendMessageRequest) (string, error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", &models.ValidationError{Fields: map[string]string{"message": "Message is required"}}
	}
	if s.sendErr != nil {
		return "", s.sendErr
	}
	return s.reply, nil
}

func (s *stubService) ListModels(_ context.Context) ([]string, error) {
	return s.modelsList, nil
}

func (s *stubService) CreateChat(_ context.Context, req models.CreateChatRequest) (*models.Chat, error) {
	return s.chat, nil
}

func (s *stubService) GetChat(_ context.Context, chatID string) (*models.Chat, error) {
	if s.chat != nil && s.chat.ID.Hex() == chatID {
		return s.chat, nil
	}
	return nil, nil
}

func (s *stubService) ListChats(_ context.Context) ([]models.Chat, error) {
	return s.chats, nil
}

func (s *stubService) DeleteChat(_ context.Context, chatID string) error {
	s.deleted = append(s.deleted, chatID)
	return nil
}

func (s *stubService) AddMessage(_ context.Context, chatID string, req models.AddMessageRequest) (*models.Message, error) {
	if s.addMsgErr != nil {
		return nil, s.addMsgErr
	}
	return &models.Message{ID: primitive.NewObjectID(), Role: req.Role, Content: req.Content}, nil
}

func newTestRouter(svc *stubService) http.Handler {
	return router.New(handlers.NewChatHandler(svc), handlers.NewChatsHandler(svc), "http://localhost:5173", 1000)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp
}

func TestSendMessage_OK(t *testing.T) {
	h := newTestRouter(&stubService{reply: "Hi there"})

	rr := doJSON(t, h, http.MethodPost, "/api/v1/chat", models.SendMessageRequest{Message: "Hello"})

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.SendMessageResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Response != "Hi there" {
		t.Errorf("Expected response 'Hi there', got %q", resp.Response)
	}
}

func TestSendMessage_EmptyMessage(t *testing.T) {
	h := newTestRouter(&stubService{reply: "x"})

	rr := doJSON(t, h, http.MethodPost, "/api/v1/chat", models.SendMessageRequest{Message: "   "})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
	resp := decodeError(t, rr)
	if resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR, got %q", resp.Error.Code)
	}
	if resp.Error.Fields["message"] == "" {
		t.Error("Expected a field-level message error")
	}
}

func TestSendMessage_MalformedBody(t *testing.T) {
	h := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
}

func TestSendMessage_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"backend down", &models.UnavailableError{Message: "Cannot reach Ollama"}, http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE"},
		{"upstream rejection", &models.UpstreamError{Message: "Rate limit exceeded"}, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"unknown chat", &models.NotFoundError{Message: "Chat not found"}, http.StatusNotFound, "NOT_FOUND"},
		{"storage failure", &models.StorageError{Op: "find chat", Err: context.DeadlineExceeded}, http.StatusInternalServerError, "STORAGE_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestRouter(&stubService{sendErr: tc.err})

			rr := doJSON(t, h, http.MethodPost, "/api/v1/chat", models.SendMessageRequest{Message: "Hello"})

			if rr.Code != tc.wantStatus {
				t.Fatalf("Expected %d, got %d", tc.wantStatus, rr.Code)
			}
			resp := decodeError(t, rr)
			if resp.Error.Code != tc.wantCode {
				t.Errorf("Expected code %q, got %q", tc.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestGetChat_NotFound(t *testing.T) {
	h := newTestRouter(&stubService{})

	rr := doJSON(t, h, http.MethodGet, "/api/v1/chats/"+primitive.NewObjectID().Hex(), nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
	resp := decodeError(t, rr)
	if resp.Error.Code != "NOT_FOUND" {
		t.Errorf("Expected NOT_FOUND, got %q", resp.Error.Code)
	}
}

func TestGetChat_OK(t *testing.T) {
	chat := &models.Chat{ID: primitive.NewObjectID(), Title: "Demo", Model: "mistral"}
	h := newTestRouter(&stubService{chat: chat})

	rr := doJSON(t, h, http.MethodGet, "/api/v1/chats/"+chat.ID.Hex(), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var got models.Chat
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode chat: %v", err)
	}
	if got.Title != "Demo" || got.Model != "mistral" {
		t.Errorf("Unexpected chat payload: %+v", got)
	}
}

func TestCreateChat(t *testing.T) {
	chat := &models.Chat{ID: primitive.NewObjectID(), Title: "New Chat", Model: "mistral"}
	h := newTestRouter(&stubService{chat: chat})

	rr := doJSON(t, h, http.MethodPost, "/api/v1/chats", models.CreateChatRequest{})

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rr.Code)
	}
}

func TestListChats(t *testing.T) {
	h := newTestRouter(&stubService{chats: []models.Chat{
		{ID: primitive.NewObjectID(), Title: "a"},
		{ID: primitive.NewObjectID(), Title: "b"},
	}})

	rr := doJSON(t, h, http.MethodGet, "/api/v1/chats", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var resp struct {
		Chats []models.Chat `json:"chats"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}
	if len(resp.Chats) != 2 {
		t.Errorf("Expected 2 chats, got %d", len(resp.Chats))
	}
}

func TestDeleteChat_AlwaysOK(t *testing.T) {
	svc := &stubService{}
	h := newTestRouter(svc)
	id := primitive.NewObjectID().Hex()

	for i := 0; i < 2; i++ {
		rr := doJSON(t, h, http.MethodDelete, "/api/v1/chats/"+id, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("Delete attempt %d: expected 200, got %d", i+1, rr.Code)
		}
	}
	if len(svc.deleted) != 2 {
		t.Errorf("Expected 2 delete calls, got %d", len(svc.deleted))
	}
}

func TestAddMessage_UnknownChat(t *testing.T) {
	h := newTestRouter(&stubService{addMsgErr: &models.NotFoundError{Message: "Chat not found"}})

	rr := doJSON(t, h, http.MethodPost, "/api/v1/chats/"+primitive.NewObjectID().Hex()+"/messages",
		models.AddMessageRequest{Role: models.RoleUser, Content: "hi"})

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
}

func TestModels(t *testing.T) {
	h := newTestRouter(&stubService{modelsList: []string{"mistral", "llama3"}})

	rr := doJSON(t, h, http.MethodGet, "/api/v1/models", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var resp models.ModelsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode models: %v", err)
	}
	if len(resp.Models) != 2 {
		t.Errorf("Expected 2 models, got %d", len(resp.Models))
	}
}

func TestHealth(t *testing.T) {
	h := newTestRouter(&stubService{})

	rr := doJSON(t, h, http.MethodGet, "/health", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Errorf("Unexpected health body: %s", rr.Body.String())
	}
}

func TestRequestIDPropagation(t *testing.T) {
	h := newTestRouter(&stubService{sendErr: &models.UnavailableError{Message: "down"}})

	data, _ := json.Marshal(models.SendMessageRequest{Message: "Hello"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(data))
	req.Header.Set("X-Request-ID", "req-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Header().Get("X-Request-ID") != "req-123" {
		t.Errorf("Expected request id echoed, got %q", rr.Header().Get("X-Request-ID"))
	}
	resp := decodeError(t, rr)
	if resp.Error.RequestID != "req-123" {
		t.Errorf("Expected request id in error payload, got %q", resp.Error.RequestID)
	}
}
