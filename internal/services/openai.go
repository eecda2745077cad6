package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"ollama-chat-backend/internal/models"
)

const openAISystemPrompt = "You are a helpful assistant."

// OpenAIClient is the cloud inference variant, backed by the OpenAI chat
// completions API.
type OpenAIClient struct {
	api *openai.Client
}

func NewOpenAIClient(token string, timeout time.Duration) (*OpenAIClient, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	cfg := openai.DefaultConfig(token)
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &OpenAIClient{api: openai.NewClientWithConfig(cfg)}, nil
}

func (c *OpenAIClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openAISystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		log.Printf("WARNING: OpenAI returned no choices for model %s", model)
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.ID)
	}
	return names, nil
}

// classifyOpenAIError separates errors the API reported (bad key, rate
// limit) from transport failures where the endpoint was never reached.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return &models.UpstreamError{Message: "Invalid API key. Please check your OPENAI_API_KEY."}
		case http.StatusTooManyRequests:
			return &models.UpstreamError{Message: "Rate limit exceeded. Please try again later."}
		}
		return &models.UpstreamError{Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &models.UpstreamError{Message: reqErr.Error()}
	}

	return &models.UnavailableError{Message: fmt.Sprintf("Cannot reach the OpenAI API: %v", err)}
}
