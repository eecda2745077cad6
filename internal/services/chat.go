package services

import (
	"context"
	"log"
	"strings"

	"ollama-chat-backend/internal/models"
)

// ConversationStore is the persistence contract the orchestrator needs.
// Implemented by repository.ChatRepo.
type ConversationStore interface {
	CreateChat(ctx context.Context, title, model string) (*models.Chat, error)
	AddMessage(ctx context.Context, chatID, role, content string) (*models.Message, error)
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
	GetAllChats(ctx context.Context) ([]models.Chat, error)
	DeleteChat(ctx context.Context, chatID string) error
}

// Generator sends a prompt to an inference backend and returns the
// generated text. Model identifiers are provider-specific.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
	ListModels(ctx context.Context) ([]string, error)
}

const defaultChatTitle = "New Chat"

// ChatService orchestrates a chat turn: validate, generate, then
// best-effort persist. It holds no state of its own; every call is a fresh
// lookup against the store.
type ChatService struct {
	store        ConversationStore
	llm          Generator
	defaultModel string
}

func NewChatService(store ConversationStore, llm Generator, defaultModel string) *ChatService {
	return &ChatService{
		store:        store,
		llm:          llm,
		defaultModel: defaultModel,
	}
}

// SendMessage generates a reply for the user's message. When a chat id is
// supplied, the user turn and the assistant turn are recorded in that
// order. Persistence is best-effort: once the reply has been generated it
// is returned to the caller even if recording it fails.
func (s *ChatService) SendMessage(ctx context.Context, req models.SendMessageRequest) (string, error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", &models.ValidationError{Fields: map[string]string{"message": "Message is required"}}
	}

	model := req.Model
	if req.ChatID != "" {
		chat, err := s.store.GetChat(ctx, req.ChatID)
		if err != nil {
			return "", err
		}
		if chat == nil {
			return "", &models.NotFoundError{Message: "Chat not found"}
		}
		if model == "" {
			model = chat.Model
		}
	}
	if model == "" {
		model = s.defaultModel
	}

	reply, err := s.llm.Generate(ctx, model, req.Message)
	if err != nil {
		return "", err
	}

	if req.ChatID != "" {
		if _, err := s.store.AddMessage(ctx, req.ChatID, models.RoleUser, req.Message); err != nil {
			log.Printf("WARNING: failed to record user turn for chat %s: %v", req.ChatID, err)
			return reply, nil
		}
		if _, err := s.store.AddMessage(ctx, req.ChatID, models.RoleAssistant, reply); err != nil {
			log.Printf("WARNING: failed to record assistant turn for chat %s: %v", req.ChatID, err)
		}
	}

	return reply, nil
}

func (s *ChatService) CreateChat(ctx context.Context, req models.CreateChatRequest) (*models.Chat, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultChatTitle
	}
	model := req.Model
	if model == "" {
		model = s.defaultModel
	}
	return s.store.CreateChat(ctx, title, model)
}

// GetChat returns (nil, nil) when the chat does not exist; absence is a
// normal outcome, not an error.
func (s *ChatService) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	return s.store.GetChat(ctx, chatID)
}

func (s *ChatService) ListChats(ctx context.Context) ([]models.Chat, error) {
	return s.store.GetAllChats(ctx)
}

func (s *ChatService) DeleteChat(ctx context.Context, chatID string) error {
	return s.store.DeleteChat(ctx, chatID)
}

func (s *ChatService) AddMessage(ctx context.Context, chatID string, req models.AddMessageRequest) (*models.Message, error) {
	fields := make(map[string]string)
	if !models.ValidRole(req.Role) {
		fields["role"] = "Role must be user, assistant or system"
	}
	if strings.TrimSpace(req.Content) == "" {
		fields["content"] = "Content is required"
	}
	if len(fields) > 0 {
		return nil, &models.ValidationError{Fields: fields}
	}
	return s.store.AddMessage(ctx, chatID, req.Role, req.Content)
}

func (s *ChatService) ListModels(ctx context.Context) ([]string, error) {
	return s.llm.ListModels(ctx)
}
