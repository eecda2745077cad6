package models

// SendMessageRequest is the payload of POST /api/v1/chat. ChatID and Model
// are optional; when ChatID is set the exchange is persisted to that chat.
type SendMessageRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
	ChatID  string `json:"chat_id,omitempty"`
}

// SendMessageResponse carries the assistant reply.
type SendMessageResponse struct {
	Response string `json:"response"`
	ChatID   string `json:"chat_id,omitempty"`
}

type CreateChatRequest struct {
	Title string `json:"title"`
	Model string `json:"model"`
}

type AddMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ModelsResponse struct {
	Models []string `json:"models"`
}

type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
